package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dm/rul-go/internal/client"
	"github.com/dm/rul-go/internal/model"
)

// Prediction outcome label values.
const (
	OutcomeSuccess      = "success"
	OutcomeNetworkError = "network_error"
	OutcomeServerError  = "server_error"
	OutcomeOther        = "other"
)

// Recorder publishes fleet sync activity as Prometheus metrics.
type Recorder struct {
	predictions *prometheus.CounterVec
	latency     prometheus.Histogram
	syncing     prometheus.Gauge
	syncs       prometheus.Counter
	engines     *prometheus.GaugeVec
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rul_predictions_total",
			Help: "Prediction requests by outcome.",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rul_prediction_duration_seconds",
			Help:    "Round-trip latency of prediction requests.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		syncing: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rul_fleet_syncing",
			Help: "1 while a fleet sync batch is in flight.",
		}),
		syncs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rul_fleet_syncs_total",
			Help: "Fleet sync batches started.",
		}),
		engines: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rul_fleet_engines",
			Help: "Engines by last known health status.",
		}, []string{"status"}),
	}

	for _, c := range []prometheus.Collector{r.predictions, r.latency, r.syncing, r.syncs, r.engines} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObservePrediction counts one request and records its latency.
func (r *Recorder) ObservePrediction(d time.Duration, err error) {
	r.predictions.WithLabelValues(outcome(err)).Inc()
	r.latency.Observe(d.Seconds())
}

// SetSyncing flips the syncing gauge. Each transition to true counts a batch.
func (r *Recorder) SetSyncing(syncing bool) {
	if syncing {
		r.syncs.Inc()
		r.syncing.Set(1)
		return
	}
	r.syncing.Set(0)
}

// ObserveCounts publishes the per-status engine totals after a batch.
func (r *Recorder) ObserveCounts(c model.StatusCounts) {
	r.engines.WithLabelValues(client.StatusHealthy).Set(float64(c.Healthy))
	r.engines.WithLabelValues(client.StatusWarning).Set(float64(c.Warning))
	r.engines.WithLabelValues(client.StatusCritical).Set(float64(c.Critical))
}

func outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	var netErr *client.NetworkError
	if errors.As(err, &netErr) {
		return OutcomeNetworkError
	}
	var srvErr *client.ServerError
	if errors.As(err, &srvErr) {
		return OutcomeServerError
	}
	return OutcomeOther
}
