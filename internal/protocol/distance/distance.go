// Package distance turns RSSI readings into metre estimates and reduces
// noisy repeated estimates to a single value per device pair.
package distance

import (
	"math"
	"slices"
	"sync"

	"copresence/internal/domain"
)

const (
	// DefaultPathLoss is the log-distance exponent used for a classroom.
	DefaultPathLoss = 2.7
	// DefaultTolerance groups samples at most this many metres apart.
	DefaultTolerance = 0.1
	// MinMeters is the shortest digest distance the anchor records.
	MinMeters = 0.5
)

// FromRSSI estimates the distance in metres of a transmitter whose 1 m
// reference power is txPower, heard at rssi, with path loss exponent n.
func FromRSSI(rssi, txPower int8, n float64) float64 {
	if n <= 0 {
		n = DefaultPathLoss
	}
	return round2(math.Pow(10, float64(int(txPower)-int(rssi))/(10*n)))
}

// Best returns the mean of the largest cluster of samples, where a cluster
// is a run of sorted samples whose neighbours lie within tolerance. The
// first largest cluster wins ties. Best of no samples is 0.
func Best(samples []float64, tolerance float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	start, bestStart, bestLen := 0, 0, 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i]-sorted[i-1] <= tolerance {
			continue
		}
		if i-start > bestLen {
			bestStart, bestLen = start, i-start
		}
		start = i
	}

	var sum float64
	for _, v := range sorted[bestStart : bestStart+bestLen] {
		sum += v
	}
	return round2(sum / float64(bestLen))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

type pair struct{ a, b domain.PeerID }

func key(a, b domain.PeerID) pair {
	if a > b {
		a, b = b, a
	}
	return pair{a, b}
}

// Matrix accumulates distance samples per unordered device pair.
type Matrix struct {
	mu        sync.Mutex
	tolerance float64
	samples   map[pair][]float64
}

// NewMatrix returns an empty Matrix; tolerance <= 0 selects DefaultTolerance.
func NewMatrix(tolerance float64) *Matrix {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Matrix{tolerance: tolerance, samples: make(map[pair][]float64)}
}

// Add records one estimate between a and b.
func (m *Matrix) Add(a, b domain.PeerID, meters float64) {
	if a == b {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(a, b)
	m.samples[k] = append(m.samples[k], meters)
}

// Estimate returns the best estimate between a and b and whether any sample
// exists.
func (m *Matrix) Estimate(a, b domain.PeerID) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.samples[key(a, b)]
	if !ok {
		return 0, false
	}
	return Best(s, m.tolerance), true
}

// Pairs returns the best estimate for every pair with samples, ordered by
// (A, B).
func (m *Matrix) Pairs() []domain.PairDistance {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.PairDistance, 0, len(m.samples))
	for k, s := range m.samples {
		out = append(out, domain.PairDistance{A: k.a, B: k.b, Meters: Best(s, m.tolerance)})
	}
	slices.SortFunc(out, func(x, y domain.PairDistance) int {
		if x.A != y.A {
			return int(x.A) - int(y.A)
		}
		return int(x.B) - int(y.B)
	})
	return out
}
