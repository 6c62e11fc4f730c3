package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"copresence/internal/domain"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open("  "); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "attendance.db")
	for i := 0; i < 2; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("close #%d: %v", i+1, err)
		}
	}
}

func TestSaveLoadReportRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	in := sampleReport("r-1", time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC))

	if err := store.SaveReport(ctx, in); err != nil {
		t.Fatalf("save report: %v", err)
	}
	got, ok, err := store.LoadReport(ctx, "r-1")
	if err != nil || !ok {
		t.Fatalf("load report: ok=%v err=%v", ok, err)
	}
	if got.Service != in.Service {
		t.Fatalf("service = %q, want %q", got.Service, in.Service)
	}
	if !got.StartedAt.Equal(in.StartedAt) || !got.EndedAt.Equal(in.EndedAt) {
		t.Fatalf("times = %v..%v, want %v..%v", got.StartedAt, got.EndedAt, in.StartedAt, in.EndedAt)
	}
	if len(got.Sightings) != 2 || got.Sightings[0] != in.Sightings[1] || got.Sightings[1] != in.Sightings[0] {
		t.Fatalf("sightings = %+v, want sorted %+v", got.Sightings, in.Sightings)
	}
	if len(got.Distances) != 1 || got.Distances[0] != in.Distances[0] {
		t.Fatalf("distances = %+v, want %+v", got.Distances, in.Distances)
	}
}

func TestLoadReportMissing(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, ok, err := store.LoadReport(context.Background(), "nope")
	if err != nil {
		t.Fatalf("load report: %v", err)
	}
	if ok {
		t.Fatal("expected missing report")
	}
}

func TestSaveReportRejectsDuplicate(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	r := sampleReport("dup", time.Now())
	if err := store.SaveReport(ctx, r); err != nil {
		t.Fatalf("save report: %v", err)
	}
	if err := store.SaveReport(ctx, r); !errors.Is(err, ErrReportExists) {
		t.Fatalf("duplicate save error = %v, want %v", err, ErrReportExists)
	}
}

func TestListReportsNewestFirst(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	base := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)
	for i, id := range []domain.ReportID{"a", "b", "c"} {
		if err := store.SaveReport(ctx, sampleReport(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	got, err := store.ListReports(ctx, 2)
	if err != nil {
		t.Fatalf("list reports: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "b" {
		t.Fatalf("ids = %v, want [c b]", ids(got))
	}
	if len(got[0].Sightings) != 2 {
		t.Fatalf("sightings not loaded: %+v", got[0])
	}

	all, err := store.ListReports(ctx, 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
}

func TestUpSection(t *testing.T) {
	t.Parallel()

	in := "-- header\n-- +migrate Up\nCREATE TABLE t (x);\n-- +migrate Down\nDROP TABLE t;\n"
	if got := upSection(in); got != "\nCREATE TABLE t (x);\n" {
		t.Fatalf("upSection = %q", got)
	}
	if got := upSection("SELECT 1;"); got != "SELECT 1;" {
		t.Fatalf("upSection without marker = %q", got)
	}
}

func sampleReport(id domain.ReportID, start time.Time) domain.ScanReport {
	start = start.UTC().Truncate(time.Millisecond)
	return domain.ScanReport{
		ID:        id,
		Service:   "0000feed-0000-1000-8000-00805f9b34fb",
		StartedAt: start,
		EndedAt:   start.Add(30 * time.Second),
		Sightings: []domain.Sighting{
			{PeerID: 9, TxPower: -59, Distance: 2.4, Neighbours: 1},
			{PeerID: 3, TxPower: -61, Distance: 1.1, Neighbours: 2},
		},
		Distances: []domain.PairDistance{{A: 3, B: 9, Meters: 1.75}},
	}
}

func ids(rs []domain.ScanReport) []domain.ReportID {
	out := make([]domain.ReportID, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "attendance.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
