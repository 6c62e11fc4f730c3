package observation

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"copresence/internal/domain"
)

// Table maps peer id to its latest Observation. It is safe for concurrent use.
type Table struct {
	mu      sync.RWMutex
	entries map[domain.PeerID]domain.Observation
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{entries: make(map[domain.PeerID]domain.Observation)}
}

// Upsert records rssi as the latest reading for id.
func (t *Table) Upsert(id domain.PeerID, rssi int8, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[id] = domain.Observation{PeerID: id, RSSI: rssi, ObservedAt: now}
}

// TopN returns at most n observations, strongest first.
func (t *Table) TopN(n int) []domain.Observation {
	if n <= 0 {
		return nil
	}
	t.mu.RLock()
	out := make([]domain.Observation, 0, len(t.entries))
	for _, o := range t.entries {
		out = append(out, o)
	}
	t.mu.RUnlock()

	slices.SortFunc(out, compare)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Clear removes every entry.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.entries)
}

// Len returns the number of peers in the table.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// EvictBefore drops entries observed before cutoff and returns how many
// were removed.
func (t *Table) EvictBefore(cutoff time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for id, o := range t.entries {
		if o.ObservedAt.Before(cutoff) {
			delete(t.entries, id)
			n++
		}
	}
	return n
}

func compare(a, b domain.Observation) int {
	if c := cmp.Compare(b.RSSI, a.RSSI); c != 0 {
		return c
	}
	return cmp.Compare(a.PeerID, b.PeerID)
}
