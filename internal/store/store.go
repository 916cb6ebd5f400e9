// Package store holds the observation table the pipeline accumulates from the
// source topic.
package store

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/tonytillet/lumen-indicators/internal/domain"
)

type key struct {
	region string
	date   time.Time
}

// Store is a thread-safe in-memory observation table. Rows are unique per
// (region, date); a later write for the same pair replaces the earlier one.
type Store struct {
	mu      sync.RWMutex
	rows    map[key]domain.Observation
	version uint64
}

// New creates an empty Store.
func New() *Store {
	return &Store{rows: make(map[key]domain.Observation)}
}

// Upsert inserts or replaces observations and returns the store version after
// the write. Rows without a region are ignored.
func (s *Store) Upsert(obs ...domain.Observation) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, o := range obs {
		if o.Region == "" {
			continue
		}
		s.rows[key{region: o.Region, date: o.Date.UTC()}] = o
		changed = true
	}
	if changed {
		s.version++
	}
	return s.version
}

// Version increases on every write that touched at least one row.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Len returns the number of stored rows.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// Table returns a copy of every row ordered by region, then date.
func (s *Store) Table() domain.Table {
	t, _ := s.Snapshot()
	return t
}

// Snapshot returns the table together with the version it reflects.
func (s *Store) Snapshot() (domain.Table, uint64) {
	s.mu.RLock()
	t := make(domain.Table, 0, len(s.rows))
	for _, o := range s.rows {
		t = append(t, o)
	}
	version := s.version
	s.mu.RUnlock()

	slices.SortFunc(t, func(a, b domain.Observation) int {
		if c := cmp.Compare(a.Region, b.Region); c != 0 {
			return c
		}
		return a.Date.Compare(b.Date)
	})
	return t, version
}
