package distance_test

import (
	"testing"

	"copresence/internal/domain"
	"copresence/internal/protocol/distance"
)

func TestFromRSSI(t *testing.T) {
	cases := []struct {
		rssi, tx int8
		n        float64
		want     float64
	}{
		{-59, -59, 2.7, 1},
		{-86, -59, 2.7, 10},
		{-79, -59, 2.0, 10},
		{-49, -59, 2.0, 0.32},
		{-70, -59, 0, 2.56}, // n <= 0 falls back to DefaultPathLoss
	}
	for _, c := range cases {
		if got := distance.FromRSSI(c.rssi, c.tx, c.n); got != c.want {
			t.Fatalf("FromRSSI(%d, %d, %v) = %v, want %v", c.rssi, c.tx, c.n, got, c.want)
		}
	}
}

func TestBest_PicksLargestCluster(t *testing.T) {
	got := distance.Best([]float64{3.04, 1.0, 3.0, 1.05, 3.02}, 0.1)
	if got != 3.02 {
		t.Fatalf("Best = %v, want 3.02", got)
	}
}

func TestBest_FirstClusterWinsTie(t *testing.T) {
	got := distance.Best([]float64{5.0, 5.05, 2.0, 2.04}, 0.1)
	if got != 2.02 {
		t.Fatalf("Best = %v, want 2.02", got)
	}
}

func TestBest_Empty(t *testing.T) {
	if got := distance.Best(nil, 0.1); got != 0 {
		t.Fatalf("Best(nil) = %v, want 0", got)
	}
}

func TestMatrix_SymmetricPairs(t *testing.T) {
	m := distance.NewMatrix(0)
	m.Add(4, 2, 1.5)
	m.Add(2, 4, 1.52)
	m.Add(0, 4, 3)
	m.Add(7, 7, 9) // self pairs are ignored

	if got, ok := m.Estimate(2, 4); !ok || got != 1.51 {
		t.Fatalf("Estimate(2, 4) = %v, %v; want 1.51, true", got, ok)
	}
	if _, ok := m.Estimate(7, 7); ok {
		t.Fatal("self pair should not be recorded")
	}

	pairs := m.Pairs()
	want := []domain.PairDistance{{A: 0, B: 4, Meters: 3}, {A: 2, B: 4, Meters: 1.51}}
	if len(pairs) != len(want) {
		t.Fatalf("Pairs = %+v, want %+v", pairs, want)
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Fatalf("pair %d = %+v, want %+v", i, pairs[i], want[i])
		}
	}
}
