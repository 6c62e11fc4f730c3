package anchor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/google/uuid"

	"copresence/internal/domain"
	"copresence/internal/protocol/distance"
	"copresence/internal/protocol/payload"
)

// Self is the PeerID the anchor's own readings are filed under.
const Self domain.PeerID = 0

// ErrInvalidDuration is returned by Scan for a non-positive duration.
var ErrInvalidDuration = errors.New("scan duration must be positive")

// Config tunes the distance model.
type Config struct {
	ServiceID uuid.UUID
	// PathLoss is the log-distance exponent; <= 0 selects distance.DefaultPathLoss.
	PathLoss float64
	// Tolerance groups samples for distance.Best; <= 0 selects the default.
	Tolerance float64
}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces time.Now for report timestamps.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// Service scans and records attendance.
type Service struct {
	cfg   Config
	radio domain.RadioAdapter
	store domain.AttendanceStore
	log   *log.Logger
	now   func() time.Time
}

// New constructs an anchor Service. store may be nil, in which case reports
// are returned but not saved.
func New(cfg Config, radio domain.RadioAdapter, store domain.AttendanceStore, opts ...Option) *Service {
	s := &Service{cfg: cfg, radio: radio, store: store, log: log.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan listens for duration, or until ctx is done, and returns what was
// heard. A cancelled scan still produces a report of the frames received.
func (s *Service) Scan(ctx context.Context, duration time.Duration) (domain.ScanReport, error) {
	if duration <= 0 {
		return domain.ScanReport{}, ErrInvalidDuration
	}

	frames := make(chan domain.Frame, 64)
	started := s.now()
	if err := s.radio.StartScan(ctx, s.cfg.ServiceID, frames); err != nil {
		return domain.ScanReport{}, fmt.Errorf("start scan: %w", err)
	}
	s.log.Printf("scanning %s for %s", s.cfg.ServiceID, duration)

	c := newCollector(s.cfg.PathLoss, s.cfg.Tolerance)
	timer := time.NewTimer(duration)
	defer timer.Stop()
loop:
	for {
		select {
		case f := <-frames:
			c.ingest(f)
		case <-timer.C:
			break loop
		case <-ctx.Done():
			break loop
		}
	}
	if err := s.radio.StopScan(); err != nil {
		s.log.Printf("stop scan: %v", err)
	}
	// Frames already queued still count.
	for drained := false; !drained; {
		select {
		case f := <-frames:
			c.ingest(f)
		default:
			drained = true
		}
	}

	report := c.report()
	report.ID = domain.ReportID(uuid.NewString())
	report.Service = s.cfg.ServiceID.String()
	report.StartedAt = started.UTC()
	report.EndedAt = s.now().UTC()
	s.log.Printf("scan %s heard %d devices, %d dropped frames", report.ID, len(report.Sightings), c.dropped)

	if s.store != nil {
		// The scan outlives a cancelled ctx, so the save does too.
		if err := s.store.SaveReport(context.WithoutCancel(ctx), report); err != nil {
			return report, fmt.Errorf("save report: %w", err)
		}
	}
	return report, nil
}

// collector accumulates one scan's samples.
type collector struct {
	pathLoss   float64
	matrix     *distance.Matrix
	txPower    map[domain.PeerID]int8
	neighbours map[domain.PeerID]map[domain.PeerID]struct{}
	dropped    int
}

func newCollector(pathLoss, tolerance float64) *collector {
	return &collector{
		pathLoss:   pathLoss,
		matrix:     distance.NewMatrix(tolerance),
		txPower:    make(map[domain.PeerID]int8),
		neighbours: make(map[domain.PeerID]map[domain.PeerID]struct{}),
	}
}

func (c *collector) ingest(f domain.Frame) {
	d, err := payload.DecodeDigest(f.Payload)
	if err != nil || d.Sender == Self {
		c.dropped++
		return
	}
	sender, tx := d.Sender, d.TxPower
	c.txPower[sender] = tx

	for _, r := range d.Readings {
		// A device never ranks itself, so such a reading is corrupt.
		if r.PeerID == sender || r.PeerID == Self {
			continue
		}
		if m := distance.FromRSSI(r.RSSI, tx, c.pathLoss); m > distance.MinMeters {
			c.matrix.Add(sender, r.PeerID, m)
		}
		set := c.neighbours[r.PeerID]
		if set == nil {
			set = make(map[domain.PeerID]struct{})
			c.neighbours[r.PeerID] = set
		}
		set[sender] = struct{}{}
	}
	c.matrix.Add(Self, sender, distance.FromRSSI(f.RSSI, tx, c.pathLoss))
}

func (c *collector) report() domain.ScanReport {
	var r domain.ScanReport
	for id, tx := range c.txPower {
		m, _ := c.matrix.Estimate(Self, id)
		r.Sightings = append(r.Sightings, domain.Sighting{
			PeerID:     id,
			TxPower:    tx,
			Distance:   m,
			Neighbours: len(c.neighbours[id]),
		})
	}
	slices.SortFunc(r.Sightings, func(a, b domain.Sighting) int { return int(a.PeerID) - int(b.PeerID) })
	r.Distances = c.matrix.Pairs()
	return r
}

// Compile-time assertion that Service implements domain.AnchorService.
var _ domain.AnchorService = (*Service)(nil)
