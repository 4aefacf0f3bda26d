package state

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("telegram session not found")

// TelegramSession maps a telegram user to the letter session they are answering
type TelegramSession struct {
	UserID    int64
	ChatID    int64
	SessionID string
	StateData StateData
	CreatedAt time.Time
	UpdatedAt time.Time

	// stop ends the transcript forwarding for SessionID
	stop func()
}

// StateData contains telegram-specific UI state
type StateData struct {
	// Confirmation for destructive actions
	PendingConfirmation string
	// Set while the letter is being generated
	IsProcessing      bool
	ProcessingStarted time.Time
}

// Storage defines the interface for telegram session persistence
type Storage interface {
	// Get retrieves telegram session by user ID
	Get(ctx context.Context, userID int64) (*TelegramSession, error)

	// Set saves telegram session
	Set(ctx context.Context, session *TelegramSession) error

	// Delete removes telegram session and stops its forwarding
	Delete(ctx context.Context, userID int64) error
}
