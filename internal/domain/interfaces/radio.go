package interfaces

import (
	"context"

	"github.com/google/uuid"

	domaintypes "copresence/internal/domain/types"
)

// RadioAdapter is how the engine talks to the short-range radio.
//
// Received frames are posted on the channel handed to StartScan until
// StopScan returns. Implementations must never block indefinitely on that
// channel: a full channel drops the frame.
type RadioAdapter interface {
	StartBroadcast(ctx context.Context, service uuid.UUID, payload []byte) error
	StopBroadcast() error

	StartScan(ctx context.Context, service uuid.UUID, frames chan<- domaintypes.Frame) error
	StopScan() error
}

// StatusSink receives status changes for presentation.
type StatusSink interface {
	Report(report domaintypes.StatusReport)
}

// StatusSinkFunc adapts an ordinary function to a StatusSink.
type StatusSinkFunc func(report domaintypes.StatusReport)

// Report calls f(report).
func (f StatusSinkFunc) Report(report domaintypes.StatusReport) { f(report) }
