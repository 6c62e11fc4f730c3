//go:build !linux

package radio

import (
	"context"
	"log"

	"github.com/google/uuid"

	"copresence/internal/domain"
)

// Gatt is only available on Linux.
type Gatt struct{}

// NewGatt reports ErrNoAdapter on this platform.
func NewGatt(*log.Logger) (*Gatt, error) { return nil, ErrNoAdapter }

func (*Gatt) StartBroadcast(context.Context, uuid.UUID, []byte) error {
	return &domain.AdvertiseError{Code: domain.AdvertiseFeatureUnsupported, Err: ErrNoAdapter}
}
func (*Gatt) StopBroadcast() error { return nil }
func (*Gatt) StartScan(context.Context, uuid.UUID, chan<- domain.Frame) error {
	return ErrNoAdapter
}
func (*Gatt) StopScan() error { return nil }

var _ domain.RadioAdapter = (*Gatt)(nil)
