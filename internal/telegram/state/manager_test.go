package state_test

import (
	"context"
	"testing"
	"time"

	"github.com/futig/coverletter-backend/internal/telegram/state"
)

func TestBindReplacesAndStopsPrevious(t *testing.T) {
	ctx := context.Background()
	m := state.NewManager(state.NewMemoryStorage(time.Minute))

	var firstStopped, secondStopped bool
	if err := m.Bind(ctx, 1, 10, "s1", func() { firstStopped = true }); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := m.Bind(ctx, 1, 10, "s2", func() { secondStopped = true }); err != nil {
		t.Fatalf("rebind: %v", err)
	}

	if !firstStopped || secondStopped {
		t.Fatalf("first stopped = %v, second stopped = %v", firstStopped, secondStopped)
	}

	s, err := m.GetSession(ctx, 1)
	if err != nil || s.SessionID != "s2" {
		t.Fatalf("unexpected session %+v, err %v", s, err)
	}

	if err := m.DeleteSession(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !secondStopped {
		t.Fatal("delete must stop forwarding")
	}
	if _, err := m.GetSession(ctx, 1); !state.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateStateData(t *testing.T) {
	ctx := context.Background()
	m := state.NewManager(state.NewMemoryStorage(time.Minute))

	if err := m.UpdateStateData(ctx, 7, func(*state.StateData) {}); !state.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	_ = m.Bind(ctx, 7, 70, "s", nil)
	if err := m.UpdateStateData(ctx, 7, func(d *state.StateData) { d.PendingConfirmation = "cancel" }); err != nil {
		t.Fatalf("update: %v", err)
	}

	s, _ := m.GetSession(ctx, 7)
	if s.StateData.PendingConfirmation != "cancel" {
		t.Fatalf("state data not saved: %+v", s.StateData)
	}
}
