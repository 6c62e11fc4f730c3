package commands

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"copresence/internal/domain"
	"copresence/internal/services/session"
)

type refreshStub struct {
	domain.SessionService
	err error
}

func (s refreshStub) Refresh(context.Context) error { return s.err }

func TestRefreshSession_EndedSessionIsNotAnError(t *testing.T) {
	ctx := context.Background()
	ended := refreshStub{err: fmt.Errorf("refresh: %w", session.ErrNotAdvertising)}
	if err := refreshSession(ctx, ended); err != nil {
		t.Fatalf("refresh after end: %v", err)
	}

	boom := errors.New("boom")
	if err := refreshSession(ctx, refreshStub{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if err := refreshSession(ctx, refreshStub{}); err != nil {
		t.Fatalf("refresh: %v", err)
	}
}
