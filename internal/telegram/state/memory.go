package state

import (
	"context"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStorage keeps telegram sessions in memory. Expired or deleted entries
// stop their transcript forwarding.
type MemoryStorage struct {
	cache *cache.Cache
}

// NewMemoryStorage creates storage whose entries live for ttl after the last write
func NewMemoryStorage(ttl time.Duration) *MemoryStorage {
	c := cache.New(ttl, ttl/2)
	c.OnEvicted(func(_ string, v interface{}) {
		if s, ok := v.(*TelegramSession); ok && s.stop != nil {
			s.stop()
		}
	})

	return &MemoryStorage{cache: c}
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func (m *MemoryStorage) Get(_ context.Context, userID int64) (*TelegramSession, error) {
	v, ok := m.cache.Get(key(userID))
	if !ok {
		return nil, ErrNotFound
	}

	return v.(*TelegramSession), nil
}

func (m *MemoryStorage) Set(_ context.Context, session *TelegramSession) error {
	m.cache.SetDefault(key(session.UserID), session)
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, userID int64) error {
	m.cache.Delete(key(userID))
	return nil
}
