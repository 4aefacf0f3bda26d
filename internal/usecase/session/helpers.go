package session

import (
	"github.com/futig/coverletter-backend/internal/entity"
)

// lookup finds a live conversation and extends its lifetime
func (uc *SessionUsecase) lookup(sessionID string) (*conversation, error) {
	v, ok := uc.sessions.Get(sessionID)
	if !ok {
		return nil, entity.ErrSessionNotFound
	}

	conv := v.(*conversation)
	uc.sessions.SetDefault(sessionID, conv)
	return conv, nil
}

func (c *conversation) snapshot() *entity.SessionSnapshot {
	return &entity.SessionSnapshot{
		ID:        c.id,
		State:     c.sequencer.State(),
		Messages:  c.transcript.All(),
		CreatedAt: c.createdAt,
	}
}
