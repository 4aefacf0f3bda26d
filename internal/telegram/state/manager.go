package state

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Manager manages telegram sessions
type Manager struct {
	storage Storage
}

// NewManager creates a new state manager
func NewManager(storage Storage) *Manager {
	return &Manager{
		storage: storage,
	}
}

// GetSession retrieves telegram session from storage
func (m *Manager) GetSession(ctx context.Context, userID int64) (*TelegramSession, error) {
	session, err := m.storage.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get telegram session from storage: %w", err)
	}

	return session, nil
}

// Bind replaces the user's session mapping. The previous mapping is deleted first
// so its forwarding stops; stop is called when the new mapping goes away.
func (m *Manager) Bind(ctx context.Context, userID, chatID int64, sessionID string, stop func()) error {
	if err := m.storage.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete previous telegram session: %w", err)
	}

	now := time.Now()
	session := &TelegramSession{
		UserID:    userID,
		ChatID:    chatID,
		SessionID: sessionID,
		CreatedAt: now,
		UpdatedAt: now,
		stop:      stop,
	}

	if err := m.storage.Set(ctx, session); err != nil {
		return fmt.Errorf("save telegram session to storage: %w", err)
	}

	return nil
}

// UpdateStateData updates state data
func (m *Manager) UpdateStateData(ctx context.Context, userID int64, update func(*StateData)) error {
	session, err := m.GetSession(ctx, userID)
	if err != nil {
		return err
	}

	update(&session.StateData)
	session.UpdatedAt = time.Now()

	if err := m.storage.Set(ctx, session); err != nil {
		return fmt.Errorf("save telegram session to storage: %w", err)
	}

	return nil
}

// DeleteSession removes telegram session from storage
func (m *Manager) DeleteSession(ctx context.Context, userID int64) error {
	if err := m.storage.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete telegram session from storage: %w", err)
	}

	return nil
}

// IsNotFound reports whether err means the user has no session
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
