package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"copresence/internal/domain"
	"copresence/internal/protocol/observation"
	"copresence/internal/protocol/payload"
	"copresence/internal/services/identity"
)

var (
	// ErrSessionActive is returned by Start while a session is advertising.
	ErrSessionActive = errors.New("session already advertising")
	// ErrNotAdvertising is returned by Refresh when no session is running.
	ErrNotAdvertising = errors.New("no session is advertising")
	// ErrClosed is returned once Run has exited.
	ErrClosed = errors.New("session service stopped")
	// ErrRunning is returned by a second call to Run.
	ErrRunning = errors.New("session service already running")
)

// frameBuffer bounds the scan frames queued for the event loop.
const frameBuffer = 64

type cmdKind int

const (
	cmdStart cmdKind = iota
	cmdStop
	cmdRefresh
)

type command struct {
	kind  cmdKind
	ctx   context.Context
	reply chan error
}

type timerKind int

const (
	timerTimeout timerKind = iota
	timerRestart
	timerRefresh
)

type timerEvent struct {
	kind timerKind
	gen  uint64
	// token identifies one scheduled restart.
	token uint64
}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the logger; the default logs to the standard logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces time.Now for observation timestamps.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// Service is the attendance session controller.
//
// Run must be running for Start, Stop and Refresh to make progress. The
// StatusSink is called from the Run goroutine and must not call back into
// the Service synchronously.
type Service struct {
	cfg   Config
	radio domain.RadioAdapter
	ids   domain.IdentityStore
	sink  domain.StatusSink
	table *observation.Table
	log   *log.Logger
	now   func() time.Time

	cmds   chan command
	frames chan domain.Frame
	timers chan timerEvent
	done   chan struct{}

	running atomic.Bool
	state   atomic.Int32

	// Owned by the Run goroutine.
	runCtx      context.Context
	self        domain.PeerID
	gen         uint64
	restartSeq  uint64
	restartWant uint64
	timeout     *time.Timer
	restart     *time.Timer
	refresh     *time.Timer
}

// New constructs a session Service. sink may be nil.
func New(
	cfg Config,
	radio domain.RadioAdapter,
	ids domain.IdentityStore,
	sink domain.StatusSink,
	opts ...Option,
) *Service {
	s := &Service{
		cfg:    cfg.withDefaults(),
		radio:  radio,
		ids:    ids,
		sink:   sink,
		table:  observation.NewTable(),
		log:    log.Default(),
		now:    time.Now,
		cmds:   make(chan command),
		frames: make(chan domain.Frame, frameBuffer),
		timers: make(chan timerEvent),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run processes commands, scan frames and timers until ctx is done. A
// session still advertising at that point is ended as by Stop.
func (s *Service) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer close(s.done)
	s.runCtx = ctx

	for {
		select {
		case <-ctx.Done():
			if s.State() == domain.SessionAdvertising {
				s.end(domain.StatusReport{Status: domain.StatusNotMarked})
			}
			return nil
		case c := <-s.cmds:
			c.reply <- s.handle(c)
		case f := <-s.frames:
			s.observe(f)
		case ev := <-s.timers:
			s.fire(ev)
		}
	}
}

// Start begins a session as the stored identifier.
func (s *Service) Start(ctx context.Context) error { return s.do(ctx, cmdStart) }

// Stop ends the current session, if any.
func (s *Service) Stop(ctx context.Context) error { return s.do(ctx, cmdStop) }

// Refresh re-advertises with the current ranking.
func (s *Service) Refresh(ctx context.Context) error { return s.do(ctx, cmdRefresh) }

// State returns the current session state.
func (s *Service) State() domain.SessionState {
	return domain.SessionState(s.state.Load())
}

// Observations returns up to n of the strongest current readings.
func (s *Service) Observations(n int) []domain.Observation {
	return s.table.TopN(n)
}

func (s *Service) do(ctx context.Context, kind cmdKind) error {
	c := command{kind: kind, ctx: ctx, reply: make(chan error, 1)}
	select {
	case s.cmds <- c:
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	// The loop always answers a command it accepted.
	return <-c.reply
}

func (s *Service) handle(c command) error {
	switch c.kind {
	case cmdStart:
		return s.start(c.ctx)
	case cmdStop:
		if s.State() == domain.SessionAdvertising {
			s.log.Printf("session stopped")
			s.end(domain.StatusReport{Status: domain.StatusNotMarked})
		}
		return nil
	case cmdRefresh:
		if s.State() != domain.SessionAdvertising {
			return ErrNotAdvertising
		}
		s.beginRefresh()
		return nil
	default:
		return fmt.Errorf("unknown command %d", c.kind)
	}
}

func (s *Service) start(ctx context.Context) error {
	if s.State() == domain.SessionAdvertising {
		return ErrSessionActive
	}

	self, err := s.loadSelf()
	if err != nil {
		s.report(domain.StatusReport{Status: domain.StatusMissingIdentity, Err: err})
		return fmt.Errorf("start session: %w", err)
	}

	s.table.Clear()
	s.drainFrames()
	s.self = self
	if err := s.radio.StartBroadcast(ctx, s.cfg.ServiceID, s.encode()); err != nil {
		s.report(advertiseFailed(err))
		return fmt.Errorf("start broadcast: %w", err)
	}
	if err := s.radio.StartScan(s.runCtx, s.cfg.ServiceID, s.frames); err != nil {
		s.log.Printf("scan unavailable, advertising only: %v", err)
	}

	s.gen++
	s.state.Store(int32(domain.SessionAdvertising))
	s.timeout = s.after(s.cfg.Window, timerEvent{kind: timerTimeout, gen: s.gen})
	if s.cfg.RefreshEvery > 0 {
		s.refresh = s.after(s.cfg.RefreshEvery, timerEvent{kind: timerRefresh, gen: s.gen})
	}
	s.log.Printf("advertising as %s on %s for %s", self, s.cfg.ServiceID, s.cfg.Window)
	s.report(domain.StatusReport{Status: domain.StatusMarked})
	return nil
}

func (s *Service) loadSelf() (domain.PeerID, error) {
	v, ok, err := s.ids.GetIdentifier()
	if err != nil {
		return 0, fmt.Errorf("load identifier: %w", err)
	}
	if !ok {
		return 0, domain.ErrMissingIdentity
	}
	return identity.Parse(v)
}

// observe applies one scan frame. Frames that do not decode, that come from
// this device, or that arrive outside a session are dropped.
func (s *Service) observe(f domain.Frame) {
	if s.State() != domain.SessionAdvertising {
		return
	}
	h, err := payload.Decode(f.Payload)
	if err != nil || h.Sender == s.self {
		return
	}
	s.table.Upsert(h.Sender, f.RSSI, s.now())
}

// drainFrames discards frames queued by an earlier session's scan.
func (s *Service) drainFrames() {
	for {
		select {
		case <-s.frames:
		default:
			return
		}
	}
}

func (s *Service) fire(ev timerEvent) {
	if ev.gen != s.gen || s.State() != domain.SessionAdvertising {
		return
	}
	switch ev.kind {
	case timerTimeout:
		s.log.Printf("session window of %s elapsed", s.cfg.Window)
		s.end(domain.StatusReport{Status: domain.StatusNotMarked})
	case timerRestart:
		if ev.token != s.restartWant {
			return
		}
		s.restart, s.restartWant = nil, 0
		if err := s.radio.StartBroadcast(s.runCtx, s.cfg.ServiceID, s.encode()); err != nil {
			s.log.Printf("restart broadcast: %v", err)
			s.end(advertiseFailed(err))
		}
	case timerRefresh:
		s.beginRefresh()
		s.refresh = s.after(s.cfg.RefreshEvery, timerEvent{kind: timerRefresh, gen: s.gen})
	}
}

// beginRefresh stops the broadcast and schedules its restart. A refresh
// while a restart is already pending only reschedules it.
func (s *Service) beginRefresh() {
	if s.restart != nil {
		s.restart.Stop()
	} else if err := s.radio.StopBroadcast(); err != nil {
		s.log.Printf("stop broadcast for refresh: %v", err)
	}
	s.restartSeq++
	s.restartWant = s.restartSeq
	s.restart = s.after(s.cfg.RestartDelay, timerEvent{kind: timerRestart, gen: s.gen, token: s.restartWant})
}

// end leaves Advertising and reports r.
func (s *Service) end(r domain.StatusReport) {
	s.gen++
	for _, t := range []*time.Timer{s.timeout, s.restart, s.refresh} {
		if t != nil {
			t.Stop()
		}
	}
	s.timeout, s.restart, s.refresh, s.restartWant = nil, nil, nil, 0

	if err := s.radio.StopBroadcast(); err != nil {
		s.log.Printf("stop broadcast: %v", err)
	}
	if err := s.radio.StopScan(); err != nil {
		s.log.Printf("stop scan: %v", err)
	}
	s.table.Clear()
	s.state.Store(int32(domain.SessionIdle))
	s.report(r)
}

func (s *Service) encode() []byte {
	if s.cfg.MaxAge > 0 {
		s.table.EvictBefore(s.now().Add(-s.cfg.MaxAge))
	}
	return payload.Encode(s.self, s.cfg.TxPower, s.table.TopN(s.cfg.MaxPeers), s.cfg.MaxPeers)
}

// after posts ev to the loop once d has elapsed, unless Run has exited.
func (s *Service) after(d time.Duration, ev timerEvent) *time.Timer {
	return time.AfterFunc(d, func() {
		select {
		case s.timers <- ev:
		case <-s.done:
		}
	})
}

func (s *Service) report(r domain.StatusReport) {
	if s.sink != nil {
		s.sink.Report(r)
	}
}

func advertiseFailed(err error) domain.StatusReport {
	code := domain.AdvertiseInternalError
	var ae *domain.AdvertiseError
	if errors.As(err, &ae) {
		code = ae.Code
	}
	return domain.StatusReport{Status: domain.StatusAdvertiseFailed, Code: code, Err: err}
}

// Compile-time assertion that Service implements domain.SessionService.
var _ domain.SessionService = (*Service)(nil)
