package interfaces

import (
	"context"
	"time"

	domaintypes "copresence/internal/domain/types"
)

// IdentityService validates and persists the local identifier.
type IdentityService interface {
	SetRollNumber(value string) (domaintypes.PeerID, error)
	RollNumber() (domaintypes.RollNumber, bool, error)
	PeerID() (domaintypes.PeerID, error)
}

// SessionService runs attendance sessions.
type SessionService interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Refresh(ctx context.Context) error
	State() domaintypes.SessionState
	Observations(n int) []domaintypes.Observation
}

// AnchorService scans for attending devices and records what it heard.
type AnchorService interface {
	Scan(ctx context.Context, duration time.Duration) (domaintypes.ScanReport, error)
}
