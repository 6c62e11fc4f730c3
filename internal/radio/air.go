package radio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"copresence/internal/domain"
)

// MaxPayload is the largest service data a legacy advertisement can carry
// next to the flags field.
const MaxPayload = 24

// ErrScanActive is returned by StartScan when the radio is already scanning.
var ErrScanActive = errors.New("scan already running")

// Point is a position on the floor in metres.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ParsePoint reads "x,y". The empty string is the origin.
func ParsePoint(s string) (Point, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Point{}, nil
	}
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return Point{}, fmt.Errorf("position %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return Point{}, fmt.Errorf("position %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return Point{}, fmt.Errorf("position %q: %w", s, err)
	}
	return Point{X: x, Y: y}, nil
}

func (p Point) String() string {
	return strconv.FormatFloat(p.X, 'f', -1, 64) + "," + strconv.FormatFloat(p.Y, 'f', -1, 64)
}

// RSSIAt is the signal strength heard meters away from a transmitter whose
// 1 m reference power is txPower. Distances under 10 cm count as 10 cm.
func RSSIAt(txPower int8, meters, pathLoss float64) int8 {
	meters = max(meters, 0.1)
	v := math.Round(float64(txPower) - 10*pathLoss*math.Log10(meters))
	return int8(min(max(v, math.MinInt8), math.MaxInt8))
}

// Air is a shared in-process medium.
type Air struct {
	mu       sync.Mutex
	pathLoss float64
	radios   map[string]*AirRadio
	now      func() time.Time
}

// NewAir returns an empty medium. pathLoss <= 0 selects 2.7.
func NewAir(pathLoss float64) *Air {
	if pathLoss <= 0 {
		pathLoss = 2.7
	}
	return &Air{pathLoss: pathLoss, radios: make(map[string]*AirRadio), now: time.Now}
}

// Radio returns the radio at addr, attaching it at the given position if it
// is new and moving it there otherwise.
func (a *Air) Radio(addr string, at Point) *AirRadio {
	a.mu.Lock()
	defer a.mu.Unlock()
	r, ok := a.radios[addr]
	if !ok {
		r = &AirRadio{air: a, addr: addr}
		a.radios[addr] = r
	}
	r.at = at
	return r
}

// Lookup returns the radio at addr, if attached.
func (a *Air) Lookup(addr string) (*AirRadio, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r, ok := a.radios[addr]
	return r, ok
}

// Deliver lets every scanning radio hear every other radio's current
// broadcast once and returns the number of frames queued.
func (a *Air) Deliver() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	addrs := make([]string, 0, len(a.radios))
	for addr := range a.radios {
		addrs = append(addrs, addr)
	}
	slices.Sort(addrs)

	now := a.now()
	sent := 0
	for _, rx := range addrs {
		scanner := a.radios[rx]
		if scanner.frames == nil {
			continue
		}
		for _, tx := range addrs {
			adv := a.radios[tx]
			if tx == rx || adv.payload == nil || adv.service != scanner.scanService {
				continue
			}
			var ref int8
			if len(adv.payload) > 0 {
				ref = int8(adv.payload[0])
			}
			f := domain.Frame{
				Address:    adv.addr,
				Payload:    slices.Clone(adv.payload),
				RSSI:       RSSIAt(ref, math.Hypot(adv.at.X-scanner.at.X, adv.at.Y-scanner.at.Y), a.pathLoss),
				ReceivedAt: now,
			}
			select {
			case scanner.frames <- f:
				sent++
			default:
			}
		}
	}
	return sent
}

// Run calls Deliver every interval until ctx is done.
func (a *Air) Run(ctx context.Context, every time.Duration) error {
	if every <= 0 {
		return fmt.Errorf("delivery interval must be positive")
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			a.Deliver()
		}
	}
}

// AirRadio is one device attached to an Air.
type AirRadio struct {
	air  *Air
	addr string

	// Guarded by air.mu.
	at          Point
	service     uuid.UUID
	payload     []byte
	scanService uuid.UUID
	frames      chan<- domain.Frame
}

// Addr returns the radio's address on the medium.
func (r *AirRadio) Addr() string { return r.addr }

// Move places the radio at p.
func (r *AirRadio) Move(p Point) {
	r.air.mu.Lock()
	defer r.air.mu.Unlock()
	r.at = p
}

func (r *AirRadio) StartBroadcast(ctx context.Context, service uuid.UUID, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return &domain.AdvertiseError{Code: domain.AdvertiseInternalError, Err: err}
	}
	if len(payload) > MaxPayload {
		return &domain.AdvertiseError{Code: domain.AdvertiseDataTooLarge}
	}
	r.air.mu.Lock()
	defer r.air.mu.Unlock()
	if r.payload != nil {
		return &domain.AdvertiseError{Code: domain.AdvertiseAlreadyStarted}
	}
	r.service = service
	r.payload = append([]byte{}, payload...)
	return nil
}

func (r *AirRadio) StopBroadcast() error {
	r.air.mu.Lock()
	defer r.air.mu.Unlock()
	r.payload = nil
	return nil
}

func (r *AirRadio) StartScan(ctx context.Context, service uuid.UUID, frames chan<- domain.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.air.mu.Lock()
	defer r.air.mu.Unlock()
	if r.frames != nil {
		return ErrScanActive
	}
	r.scanService = service
	r.frames = frames
	return nil
}

func (r *AirRadio) StopScan() error {
	r.air.mu.Lock()
	defer r.air.mu.Unlock()
	r.frames = nil
	return nil
}

var _ domain.RadioAdapter = (*AirRadio)(nil)
