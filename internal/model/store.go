package model

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dm/rul-go/internal/client"
)

// ErrUnknownEngine is returned when an update names an engine outside the fleet.
var ErrUnknownEngine = errors.New("unknown engine")

// FleetEntry pairs an engine with its latest known prediction.
// A nil Result means the engine has not been synced successfully yet; it is
// not an error by itself.
type FleetEntry struct {
	EngineID  string
	Result    *client.PredictionResult
	UpdatedAt time.Time // time of the last successful result
	LastErr   error     // most recent failure, cleared on success
}

// HasResult reports whether the entry holds a prediction.
func (e FleetEntry) HasResult() bool {
	return e.Result != nil
}

// Stale reports whether the last attempt failed while an older result is
// still being shown.
func (e FleetEntry) Stale() bool {
	return e.Result != nil && e.LastErr != nil
}

// StatusCounts tallies engines by health status.
type StatusCounts struct {
	Healthy  int
	Warning  int
	Critical int
}

// Total returns the number of engines with a recognised status.
func (c StatusCounts) Total() int {
	return c.Healthy + c.Warning + c.Critical
}

// Store is the single source of truth for prediction state: one entry per
// fleet engine plus the single-engine "current prediction" slot.
//
// The fleet is fixed at construction. Every mutation is one short critical
// section, and updates for different engines never touch the same entry.
type Store struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*FleetEntry

	currentID     string
	currentResult *client.PredictionResult

	now func() time.Time // injectable for deterministic tests
}

// NewStore creates a Store for the given fleet, in order. Empty or duplicate
// engine IDs are rejected.
func NewStore(engineIDs []string) (*Store, error) {
	s := &Store{
		order:   make([]string, 0, len(engineIDs)),
		entries: make(map[string]*FleetEntry, len(engineIDs)),
		now:     time.Now,
	}
	for i, id := range engineIDs {
		if id == "" {
			return nil, fmt.Errorf("engine %d: empty id", i)
		}
		if _, dup := s.entries[id]; dup {
			return nil, fmt.Errorf("engine %d: duplicate id %q", i, id)
		}
		s.order = append(s.order, id)
		s.entries[id] = &FleetEntry{EngineID: id}
	}
	return s, nil
}

// Len returns the fleet size.
func (s *Store) Len() int {
	return len(s.order)
}

// IDs returns the fleet engine IDs in fleet order.
func (s *Store) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Contains reports whether engineID belongs to the fleet.
func (s *Store) Contains(engineID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[engineID]
	return ok
}

// Upsert records a successful prediction for engineID, superseding any older
// result and clearing the last failure. Callers must not modify result after
// calling Upsert.
func (s *Store) Upsert(engineID string, result *client.PredictionResult) error {
	if result == nil {
		return fmt.Errorf("upsert %q: nil result", engineID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[engineID]
	if !ok {
		return fmt.Errorf("upsert %q: %w", engineID, ErrUnknownEngine)
	}
	e.Result = result
	e.UpdatedAt = s.now()
	e.LastErr = nil
	return nil
}

// RecordFailure notes a failed attempt for engineID. The previous result, if
// any, is kept.
func (s *Store) RecordFailure(engineID string, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[engineID]
	if !ok {
		return fmt.Errorf("record failure %q: %w", engineID, ErrUnknownEngine)
	}
	e.LastErr = err
	return nil
}

// Get returns a copy of the entry for engineID.
func (s *Store) Get(engineID string) (FleetEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[engineID]
	if !ok {
		return FleetEntry{}, false
	}
	return *e, true
}

// Entries returns copies of all entries in fleet order.
func (s *Store) Entries() []FleetEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]FleetEntry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.entries[id])
	}
	return out
}

// CountsByStatus tallies Healthy/Warning/Critical across entries that have a
// result. Engines without a result, or with an unrecognised status, are not
// counted.
func (s *Store) CountsByStatus() StatusCounts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var c StatusCounts
	for _, e := range s.entries {
		if e.Result == nil {
			continue
		}
		switch e.Result.Status {
		case client.StatusHealthy:
			c.Healthy++
		case client.StatusWarning:
			c.Warning++
		case client.StatusCritical:
			c.Critical++
		}
	}
	return c
}

// SetCurrent stores the single-engine view's latest prediction. engineID may
// be empty when the operator did not name the engine.
func (s *Store) SetCurrent(engineID string, result *client.PredictionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentID = engineID
	s.currentResult = result
}

// Current returns the single-engine view's latest prediction, or nil.
func (s *Store) Current() (string, *client.PredictionResult) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentID, s.currentResult
}
