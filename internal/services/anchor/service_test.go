package anchor_test

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"copresence/internal/domain"
	"copresence/internal/protocol/payload"
	"copresence/internal/services/anchor"
)

// replayRadio delivers a fixed set of frames as soon as a scan starts.
type replayRadio struct {
	frames  []domain.Frame
	scanErr error
	stopped int
}

func (r *replayRadio) StartBroadcast(context.Context, uuid.UUID, []byte) error {
	return errors.New("anchor must not broadcast")
}
func (r *replayRadio) StopBroadcast() error { return nil }

func (r *replayRadio) StartScan(_ context.Context, _ uuid.UUID, out chan<- domain.Frame) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	for _, f := range r.frames {
		out <- f
	}
	return nil
}

func (r *replayRadio) StopScan() error { r.stopped++; return nil }

type memLedger struct {
	mu      sync.Mutex
	reports []domain.ScanReport
}

func (m *memLedger) SaveReport(_ context.Context, r domain.ScanReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, r)
	return nil
}

func (m *memLedger) LoadReport(context.Context, domain.ReportID) (domain.ScanReport, bool, error) {
	return domain.ScanReport{}, false, nil
}

func (m *memLedger) ListReports(context.Context, int) ([]domain.ScanReport, error) {
	return m.reports, nil
}

func frame(sender domain.PeerID, rssi int8, readings ...domain.Observation) domain.Frame {
	return domain.Frame{Payload: payload.Encode(sender, -59, readings, 10), RSSI: rssi}
}

func TestScan_BuildsReport(t *testing.T) {
	radio := &replayRadio{frames: []domain.Frame{
		// 3 hears 9 at 10 m and 4 too close to record.
		frame(3, -59, domain.Observation{PeerID: 9, RSSI: -86}, domain.Observation{PeerID: 4, RSSI: -40}),
		frame(9, -86, domain.Observation{PeerID: 3, RSSI: -86}),
		frame(anchor.Self, -30),
		{Payload: []byte{1}, RSSI: -50},
	}}
	ledger := &memLedger{}
	svc := anchor.New(anchor.Config{ServiceID: uuid.New()}, radio, ledger,
		anchor.WithLogger(log.New(io.Discard, "", 0)))

	report, err := svc.Scan(context.Background(), 20*time.Millisecond)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if radio.stopped != 1 {
		t.Fatalf("StopScan calls = %d, want 1", radio.stopped)
	}
	if report.ID == "" || !report.EndedAt.After(report.StartedAt) {
		t.Fatalf("report header = %+v", report)
	}

	want := []domain.Sighting{
		{PeerID: 3, TxPower: -59, Distance: 1, Neighbours: 1},
		{PeerID: 9, TxPower: -59, Distance: 10, Neighbours: 1},
	}
	if len(report.Sightings) != len(want) {
		t.Fatalf("sightings = %+v, want %+v", report.Sightings, want)
	}
	for i := range want {
		if report.Sightings[i] != want[i] {
			t.Fatalf("sighting[%d] = %+v, want %+v", i, report.Sightings[i], want[i])
		}
	}

	wantPairs := []domain.PairDistance{
		{A: 0, B: 3, Meters: 1},
		{A: 0, B: 9, Meters: 10},
		{A: 3, B: 9, Meters: 10},
	}
	if len(report.Distances) != len(wantPairs) {
		t.Fatalf("distances = %+v, want %+v", report.Distances, wantPairs)
	}
	for i := range wantPairs {
		if report.Distances[i] != wantPairs[i] {
			t.Fatalf("distance[%d] = %+v, want %+v", i, report.Distances[i], wantPairs[i])
		}
	}

	if len(ledger.reports) != 1 || ledger.reports[0].ID != report.ID {
		t.Fatalf("saved reports = %+v", ledger.reports)
	}
}

func TestScan_IgnoresSenderRankingItself(t *testing.T) {
	radio := &replayRadio{frames: []domain.Frame{
		frame(5, -59, domain.Observation{PeerID: 5, RSSI: -30}, domain.Observation{PeerID: 6, RSSI: -86}),
		frame(6, -86),
	}}
	svc := anchor.New(anchor.Config{}, radio, nil, anchor.WithLogger(log.New(io.Discard, "", 0)))

	report, err := svc.Scan(context.Background(), 20*time.Millisecond)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []domain.Sighting{
		{PeerID: 5, TxPower: -59, Distance: 1, Neighbours: 0},
		{PeerID: 6, TxPower: -59, Distance: 10, Neighbours: 1},
	}
	if len(report.Sightings) != len(want) {
		t.Fatalf("sightings = %+v, want %+v", report.Sightings, want)
	}
	for i := range want {
		if report.Sightings[i] != want[i] {
			t.Fatalf("sighting[%d] = %+v, want %+v", i, report.Sightings[i], want[i])
		}
	}
	if len(report.Distances) != 3 {
		t.Fatalf("distances = %+v, want three pairs", report.Distances)
	}
}

func TestScan_CancelledStillReports(t *testing.T) {
	radio := &replayRadio{frames: []domain.Frame{frame(5, -59)}}
	svc := anchor.New(anchor.Config{}, radio, nil, anchor.WithLogger(log.New(io.Discard, "", 0)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := svc.Scan(ctx, time.Hour)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(report.Sightings) != 1 || report.Sightings[0].PeerID != 5 {
		t.Fatalf("sightings = %+v", report.Sightings)
	}
}

func TestScan_Errors(t *testing.T) {
	svc := anchor.New(anchor.Config{}, &replayRadio{}, nil)
	if _, err := svc.Scan(context.Background(), 0); !errors.Is(err, anchor.ErrInvalidDuration) {
		t.Fatalf("zero duration: err = %v", err)
	}

	boom := errors.New("no adapter")
	svc = anchor.New(anchor.Config{}, &replayRadio{scanErr: boom}, nil)
	if _, err := svc.Scan(context.Background(), time.Millisecond); !errors.Is(err, boom) {
		t.Fatalf("scan error = %v, want %v", err, boom)
	}
}
