package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dm/rul-go/internal/client"
	"github.com/dm/rul-go/internal/model"
)

// ErrSyncInFlight is returned by SyncAll when another batch has not settled
// yet. Overlapping syncs are rejected rather than merged.
var ErrSyncInFlight = errors.New("fleet sync already in progress")

// Recorder receives sync and prediction observations. metrics.Recorder
// implements it; a nil Recorder in SyncerConfig disables reporting.
type Recorder interface {
	ObservePrediction(d time.Duration, err error)
	SetSyncing(syncing bool)
	ObserveCounts(c model.StatusCounts)
}

// SyncerConfig holds the collaborators of a Syncer.
type SyncerConfig struct {
	Client   client.PredictClient
	Store    *model.Store
	Source   WindowSource
	Recorder Recorder
	// Concurrency caps in-flight requests. 0 sends every request at once.
	Concurrency int
	Logger      zerolog.Logger
}

// Syncer fans one prediction request per fleet engine out concurrently and
// reconciles each outcome into the store independently.
type Syncer struct {
	client      client.PredictClient
	store       *model.Store
	source      WindowSource
	rec         Recorder
	concurrency int
	log         zerolog.Logger

	syncing atomic.Bool
	now     func() time.Time
}

// NewSyncer constructs a Syncer. Client, Store and Source are required.
func NewSyncer(cfg SyncerConfig) (*Syncer, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("NewSyncer: client is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("NewSyncer: store is required")
	}
	if cfg.Source == nil {
		return nil, fmt.Errorf("NewSyncer: window source is required")
	}
	if cfg.Concurrency < 0 {
		return nil, fmt.Errorf("NewSyncer: concurrency must be >= 0")
	}
	rec := cfg.Recorder
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Syncer{
		client:      cfg.Client,
		store:       cfg.Store,
		source:      cfg.Source,
		rec:         rec,
		concurrency: cfg.Concurrency,
		log:         cfg.Logger,
		now:         time.Now,
	}, nil
}

// Syncing reports whether a batch is in flight: true from before the first
// request is dispatched until the last one settles.
func (s *Syncer) Syncing() bool {
	return s.syncing.Load()
}

// Outcome is one engine's settled result within a batch. Exactly one of
// Result and Err is set.
type Outcome struct {
	EngineID string
	Result   *client.PredictionResult
	Err      error
}

// SyncReport describes a settled batch. Outcomes are in fleet order.
type SyncReport struct {
	Outcomes   []Outcome
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns the wall time of the batch.
func (r *SyncReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Succeeded returns the number of engines whose prediction was stored.
func (r *SyncReport) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of engines whose request failed.
func (r *SyncReport) Failed() int {
	return len(r.Outcomes) - r.Succeeded()
}

// Errors returns the failed outcomes in fleet order.
func (r *SyncReport) Errors() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// SyncAll issues one prediction per fleet engine and waits for all of them to
// settle. Each engine is handled independently: a failure is logged and
// recorded against that engine only, its previous result stays in place, and
// no sibling request is cancelled or delayed.
//
// SyncAll returns ErrSyncInFlight, without touching any state, when another
// batch is still running. Otherwise the error is always nil; per-engine
// failures are in the report.
func (s *Syncer) SyncAll(ctx context.Context) (*SyncReport, error) {
	if !s.syncing.CompareAndSwap(false, true) {
		return nil, ErrSyncInFlight
	}
	s.rec.SetSyncing(true)
	defer func() {
		s.syncing.Store(false)
		s.rec.SetSyncing(false)
	}()

	ids := s.store.IDs()
	report := &SyncReport{
		Outcomes:  make([]Outcome, len(ids)),
		StartedAt: s.now(),
	}

	// A plain Group (not WithContext): one engine's error must never cancel
	// the others, so every goroutine returns nil.
	var g errgroup.Group
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for i, id := range ids {
		g.Go(func() error {
			report.Outcomes[i] = s.syncOne(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = s.now()
	counts := s.store.CountsByStatus()
	s.rec.ObserveCounts(counts)

	s.log.Info().
		Int("engines", len(ids)).
		Int("succeeded", report.Succeeded()).
		Int("failed", report.Failed()).
		Int("critical", counts.Critical).
		Int("warning", counts.Warning).
		Dur("took", report.Duration()).
		Msg("fleet sync settled")

	return report, nil
}

// syncOne runs a single engine's build → predict → reconcile step.
func (s *Syncer) syncOne(ctx context.Context, engineID string) Outcome {
	w, err := s.source(ctx, engineID)
	if err != nil {
		err = fmt.Errorf("build window: %w", err)
		s.fail(engineID, err)
		return Outcome{EngineID: engineID, Err: err}
	}

	start := s.now()
	res, err := s.client.Predict(ctx, w, engineID)
	s.rec.ObservePrediction(s.now().Sub(start), err)
	if err != nil {
		s.fail(engineID, err)
		return Outcome{EngineID: engineID, Err: err}
	}

	if err := s.store.Upsert(engineID, res); err != nil {
		s.fail(engineID, err)
		return Outcome{EngineID: engineID, Err: err}
	}
	s.log.Debug().
		Str("engine", engineID).
		Str("status", res.Status).
		Int("rul", res.PredictedRUL).
		Msg("prediction stored")
	return Outcome{EngineID: engineID, Result: res}
}

func (s *Syncer) fail(engineID string, err error) {
	s.log.Warn().Err(err).Str("engine", engineID).Msg("engine sync failed")
	_ = s.store.RecordFailure(engineID, err)
}

type nopRecorder struct{}

func (nopRecorder) ObservePrediction(time.Duration, error) {}
func (nopRecorder) SetSyncing(bool)                        {}
func (nopRecorder) ObserveCounts(model.StatusCounts)       {}
