package observation_test

import (
	"sync"
	"testing"
	"time"

	"copresence/internal/domain"
	"copresence/internal/protocol/observation"
)

var t0 = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

func ids(obs []domain.Observation) []domain.PeerID {
	out := make([]domain.PeerID, len(obs))
	for i, o := range obs {
		out[i] = o.PeerID
	}
	return out
}

func equalIDs(a, b []domain.PeerID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTopN_SortsByStrengthDescending(t *testing.T) {
	tb := observation.NewTable()
	tb.Upsert(1, -80, t0)
	tb.Upsert(2, -40, t0)
	tb.Upsert(3, -65, t0)
	tb.Upsert(4, -50, t0)

	got := tb.TopN(10)
	if want := []domain.PeerID{2, 4, 3, 1}; !equalIDs(ids(got), want) {
		t.Fatalf("TopN(10) = %v, want %v", ids(got), want)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].RSSI <= got[i].RSSI {
			t.Fatalf("not strictly descending at %d: %+v", i, got)
		}
	}

	if want := []domain.PeerID{2, 4}; !equalIDs(ids(tb.TopN(2)), want) {
		t.Fatalf("TopN(2) = %v, want %v", ids(tb.TopN(2)), want)
	}
	if got := tb.TopN(0); len(got) != 0 {
		t.Fatalf("TopN(0) = %+v, want empty", got)
	}
}

func TestTopN_TieBreaksOnPeerID(t *testing.T) {
	tb := observation.NewTable()
	tb.Upsert(9, -55, t0)
	tb.Upsert(3, -55, t0)
	tb.Upsert(6, -55, t0)
	tb.Upsert(1, -70, t0)

	if want := []domain.PeerID{3, 6, 9, 1}; !equalIDs(ids(tb.TopN(4)), want) {
		t.Fatalf("TopN = %v, want %v", ids(tb.TopN(4)), want)
	}
}

func TestUpsert_LatestWins(t *testing.T) {
	tb := observation.NewTable()
	tb.Upsert(5, -40, t0)
	tb.Upsert(5, -90, t0.Add(time.Second))

	if tb.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tb.Len())
	}
	got := tb.TopN(5)
	if got[0].RSSI != -90 || !got[0].ObservedAt.Equal(t0.Add(time.Second)) {
		t.Fatalf("entry = %+v, want second reading", got[0])
	}
}

func TestClear_Idempotent(t *testing.T) {
	tb := observation.NewTable()
	tb.Clear()
	tb.Upsert(1, -40, t0)
	tb.Clear()
	tb.Clear()
	for _, n := range []int{0, 1, 255} {
		if got := tb.TopN(n); len(got) != 0 {
			t.Fatalf("TopN(%d) after Clear = %+v", n, got)
		}
	}
}

func TestEvictBefore(t *testing.T) {
	tb := observation.NewTable()
	tb.Upsert(1, -40, t0)
	tb.Upsert(2, -50, t0.Add(10*time.Second))
	tb.Upsert(3, -60, t0.Add(20*time.Second))

	if n := tb.EvictBefore(t0.Add(15 * time.Second)); n != 2 {
		t.Fatalf("evicted %d, want 2", n)
	}
	if want := []domain.PeerID{3}; !equalIDs(ids(tb.TopN(10)), want) {
		t.Fatalf("remaining = %v, want %v", ids(tb.TopN(10)), want)
	}
}

func TestTable_ConcurrentUpserts(t *testing.T) {
	tb := observation.NewTable()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				tb.Upsert(domain.PeerID(i%32), int8(-w-i%50), t0)
				_ = tb.TopN(10)
			}
		}(w)
	}
	wg.Wait()
	if tb.Len() != 32 {
		t.Fatalf("Len = %d, want 32", tb.Len())
	}
}
