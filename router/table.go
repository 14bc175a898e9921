// Package router implements C8 of the Ghost Protocol core: an
// entropy-driven neighbor table and weighted next-hop selector. The
// table tracks each neighbor's last known resonance state and last
// seen timestamp, evicting stale entries; next-hop selection draws
// without replacement from C1's weighted sampler over resonance
// strength.
package router

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/LashSesh/ghost-protocol/entropy"
	"github.com/LashSesh/ghost-protocol/resonance"
)

// DefaultStaleAfter is T_neighbor_stale: neighbors not refreshed within
// this interval are evicted on the next UpdateNeighbor/Prune call.
const DefaultStaleAfter = 600 * time.Second

// DefaultMaxNeighbors bounds the table's memory footprint; the oldest
// entry is evicted to make room for a new neighbor once full.
const DefaultMaxNeighbors = 4096

type neighborEntry struct {
	state    resonance.State
	lastSeen time.Time
	attested bool // true once a valid BLS attestation has backed this entry
}

// Table is the router's bounded, single-writer/many-reader neighbor
// set (spec §7 concurrency note: writer lock only for update/evict).
// The bound on hot-set size is enforced by an LRU cache; staleness
// (spec's T_neighbor_stale) is enforced separately via lastSeen scans,
// since recency-of-use and recency-of-update are distinct concerns.
type Table struct {
	mu         sync.RWMutex
	neighbors  *lru.Cache[string, neighborEntry]
	staleAfter time.Duration
	now        func() time.Time
}

// NewTable constructs a neighbor table with the default staleness
// window and capacity. Use Option functions to override either.
func NewTable(opts ...Option) *Table {
	t := &Table{
		staleAfter: DefaultStaleAfter,
		now:        time.Now,
	}
	maxSize := DefaultMaxNeighbors
	for _, opt := range opts {
		opt(t, &maxSize)
	}
	cache, err := lru.New[string, neighborEntry](maxSize)
	if err != nil {
		// Only returned by golang-lru for non-positive size; never the
		// case with DefaultMaxNeighbors or any sane WithMaxNeighbors call.
		cache, _ = lru.New[string, neighborEntry](DefaultMaxNeighbors)
	}
	t.neighbors = cache
	return t
}

// Option configures a Table at construction time.
type Option func(t *Table, maxSize *int)

// WithStaleAfter overrides T_neighbor_stale.
func WithStaleAfter(d time.Duration) Option {
	return func(t *Table, _ *int) { t.staleAfter = d }
}

// WithMaxNeighbors overrides the bounded table size.
func WithMaxNeighbors(n int) Option {
	return func(_ *Table, maxSize *int) { *maxSize = n }
}

// WithClock overrides the table's time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(t *Table, _ *int) { t.now = now }
}

// UpdateNeighbor upserts id's resonance state with the current
// timestamp, pruning stale entries first. If the table is at capacity
// and id is new, the LRU cache evicts its least-recently-used entry to
// make room.
func (t *Table) UpdateNeighbor(id string, s resonance.State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pruneLocked()

	prev, _ := t.neighbors.Peek(id)
	t.neighbors.Add(id, neighborEntry{state: s, lastSeen: t.now(), attested: prev.attested})
}

// MarkAttested records that id's current entry carries a verified BLS
// neighbor attestation (spec supplement, see SPEC_FULL.md §C).
func (t *Table) MarkAttested(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.neighbors.Peek(id); ok {
		e.attested = true
		t.neighbors.Add(id, e)
	}
}

// Prune evicts all neighbors not seen within staleAfter.
func (t *Table) Prune() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pruneLocked()
}

func (t *Table) pruneLocked() {
	cutoff := t.now().Add(-t.staleAfter)
	for _, id := range t.neighbors.Keys() {
		e, ok := t.neighbors.Peek(id)
		if ok && e.lastSeen.Before(cutoff) {
			t.neighbors.Remove(id)
		}
	}
}

// Len reports the current (unpruned) neighbor count.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.neighbors.Len()
}

// Snapshot returns the live neighbor set as Nodes, for resonance
// queries or diagnostics.
func (t *Table) Snapshot() []resonance.Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	keys := t.neighbors.Keys()
	out := make([]resonance.Node, 0, len(keys))
	for _, id := range keys {
		if e, ok := t.neighbors.Peek(id); ok {
			out = append(out, resonance.Node{ID: id, State: e.state})
		}
	}
	return out
}

// SelectNextHops scores every live neighbor by strength(S, targetS, W),
// drops zero scores, and draws up to k distinct ids without
// replacement via src.WeightedIndex (spec §4.8). Deterministic given a
// seeded entropy.Source. Never returns more than k entries, and
// returns fewer if fewer than k neighbors score positively.
func (t *Table) SelectNextHops(targetS resonance.State, w resonance.Window, k int, src entropy.Source) ([]string, error) {
	t.mu.RLock()
	keys := t.neighbors.Keys()
	ids := make([]string, 0, len(keys))
	weights := make([]float64, 0, len(keys))
	for _, id := range keys {
		e, ok := t.neighbors.Peek(id)
		if !ok {
			continue
		}
		strength := resonance.Strength(e.state, targetS, w)
		if strength <= 0 {
			continue
		}
		ids = append(ids, id)
		weights = append(weights, strength)
	}
	t.mu.RUnlock()

	if k <= 0 || len(ids) == 0 {
		return nil, nil
	}
	if k > len(ids) {
		k = len(ids)
	}

	chosen := make([]string, 0, k)
	for len(chosen) < k && len(ids) > 0 {
		idx, err := src.WeightedIndex(weights)
		if err != nil {
			return chosen, err
		}
		chosen = append(chosen, ids[idx])
		ids = append(ids[:idx], ids[idx+1:]...)
		weights = append(weights[:idx], weights[idx+1:]...)
	}
	return chosen, nil
}
