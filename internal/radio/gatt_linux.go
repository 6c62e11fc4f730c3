//go:build linux

package radio

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paypal/gatt"

	"copresence/internal/domain"
)

// Advertising data field types.
const (
	flagsLEGeneral  = 0x06
	typeServiceData = 0x16
	// advMax is the legacy advertising data limit.
	advMax = 31
)

// Gatt drives the host's Bluetooth LE adapter through HCI.
type Gatt struct {
	log   *log.Logger
	dev   gatt.Device
	ready chan struct{}
	once  sync.Once

	mu       sync.Mutex
	scanning gatt.UUID
	frames   chan<- domain.Frame
}

// NewGatt opens the first available adapter. The adapter powers on in the
// background; broadcasts and scans wait for it.
func NewGatt(logger *log.Logger) (*Gatt, error) {
	if logger == nil {
		logger = log.Default()
	}
	d, err := gatt.NewDevice(gatt.LnxMaxConnections(1), gatt.LnxDeviceID(-1, true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoAdapter, err)
	}
	g := &Gatt{log: logger, dev: d, ready: make(chan struct{})}
	d.Handle(gatt.PeripheralDiscovered(g.onDiscovered))
	if err := d.Init(g.onState); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoAdapter, err)
	}
	return g, nil
}

func (g *Gatt) onState(d gatt.Device, s gatt.State) {
	g.log.Printf("adapter state: %s", s)
	switch s {
	case gatt.StatePoweredOn:
		g.once.Do(func() { close(g.ready) })
	default:
		d.StopScanning()
		_ = d.StopAdvertising()
	}
}

func (g *Gatt) wait(ctx context.Context) error {
	select {
	case <-g.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Gatt) StartBroadcast(ctx context.Context, service uuid.UUID, payload []byte) error {
	alias, ok := service16(service)
	if !ok {
		return &domain.AdvertiseError{
			Code: domain.AdvertiseFeatureUnsupported,
			Err:  fmt.Errorf("service %s has no 16-bit alias", service),
		}
	}
	pkt := (&gatt.AdvPacket{}).
		AppendFlags(flagsLEGeneral).
		AppendField(typeServiceData, serviceData(alias, payload))
	if len(payload) > MaxPayload || pkt.Len() > advMax {
		return &domain.AdvertiseError{Code: domain.AdvertiseDataTooLarge}
	}
	if err := g.wait(ctx); err != nil {
		return &domain.AdvertiseError{Code: domain.AdvertiseInternalError, Err: err}
	}
	if err := g.dev.Advertise(pkt); err != nil {
		return &domain.AdvertiseError{Code: domain.AdvertiseInternalError, Err: err}
	}
	return nil
}

func (g *Gatt) StopBroadcast() error {
	select {
	case <-g.ready:
		return g.dev.StopAdvertising()
	default:
		return nil
	}
}

func (g *Gatt) StartScan(ctx context.Context, service uuid.UUID, frames chan<- domain.Frame) error {
	alias, ok := service16(service)
	if !ok {
		return fmt.Errorf("service %s has no 16-bit alias", service)
	}
	if err := g.wait(ctx); err != nil {
		return err
	}
	g.mu.Lock()
	if g.frames != nil {
		g.mu.Unlock()
		return ErrScanActive
	}
	g.scanning, g.frames = gatt.UUID16(alias), frames
	g.mu.Unlock()

	// Duplicates are wanted: every advertisement is a fresh reading.
	g.dev.Scan([]gatt.UUID{}, true)
	return nil
}

func (g *Gatt) StopScan() error {
	g.mu.Lock()
	g.frames = nil
	g.mu.Unlock()
	select {
	case <-g.ready:
		g.dev.StopScanning()
	default:
	}
	return nil
}

func (g *Gatt) onDiscovered(p gatt.Peripheral, a *gatt.Advertisement, rssi int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.frames == nil {
		return
	}
	for _, sd := range a.ServiceData {
		if !sd.UUID.Equal(g.scanning) {
			continue
		}
		f := domain.Frame{
			Address:    p.ID(),
			Payload:    slices.Clone(sd.Data),
			RSSI:       int8(max(min(rssi, 127), -128)),
			ReceivedAt: time.Now(),
		}
		select {
		case g.frames <- f:
		default:
		}
		return
	}
}

var _ domain.RadioAdapter = (*Gatt)(nil)
