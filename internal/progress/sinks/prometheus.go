package sinks

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ebrandel/recipepress/internal/progress"
)

// PrometheusSink exports batch progress metrics via Prometheus. It owns all
// collectors for batches started/completed, per-URL outcomes, and the current
// completion percentage.
type PrometheusSink struct {
	batchesStarted   prometheus.Counter
	batchesCompleted prometheus.Counter
	batchRuntime     prometheus.Histogram
	batchPercent     prometheus.Gauge

	recipesExtracted prometheus.Counter
	urlFailures      prometheus.Counter
	fetchAttempts    prometheus.Histogram

	tracker *batchTracker
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		batchesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipepress_batches_started_total",
			Help: "Total recipe batches that have started.",
		}),
		batchesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipepress_batches_completed_total",
			Help: "Total recipe batches completed.",
		}),
		batchRuntime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recipepress_batch_runtime_seconds",
			Help:    "Wall time per completed batch.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		batchPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "recipepress_batch_progress_percent",
			Help: "Completion percentage of the most recent batch activity.",
		}),
		recipesExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipepress_recipes_extracted_total",
			Help: "Total recipes successfully extracted.",
		}),
		urlFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipepress_url_failures_total",
			Help: "Total URLs abandoned after exhausting retries.",
		}),
		fetchAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recipepress_url_attempts",
			Help:    "Fetch attempts spent per finished URL.",
			Buckets: []float64{1, 2, 3},
		}),
		tracker: newBatchTracker(),
	}
	for _, collector := range []prometheus.Collector{
		s.batchesStarted,
		s.batchesCompleted,
		s.batchRuntime,
		s.batchPercent,
		s.recipesExtracted,
		s.urlFailures,
		s.fetchAttempts,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the Prometheus collectors for one event.
func (s *PrometheusSink) Consume(_ context.Context, evt progress.Event) error {
	switch evt.Stage {
	case progress.StageBatchStart:
		if s.tracker.start(evt.BatchID) {
			s.batchesStarted.Inc()
		}
		s.batchPercent.Set(0)
	case progress.StageRecipeExtracted:
		s.recipesExtracted.Inc()
		s.observeURL(evt)
	case progress.StageURLFailed:
		s.urlFailures.Inc()
		s.observeURL(evt)
	case progress.StageBatchDone:
		if s.tracker.complete(evt.BatchID) {
			s.batchesCompleted.Inc()
		}
		if evt.Dur > 0 {
			s.batchRuntime.Observe(evt.Dur.Seconds())
		}
		s.batchPercent.Set(100)
	}
	return nil
}

func (s *PrometheusSink) observeURL(evt progress.Event) {
	if evt.Attempts > 0 {
		s.fetchAttempts.Observe(float64(evt.Attempts))
	}
	s.batchPercent.Set(evt.Percent)
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}

type batchTracker struct {
	mu      sync.Mutex
	running map[[16]byte]struct{}
}

func newBatchTracker() *batchTracker {
	return &batchTracker{running: make(map[[16]byte]struct{})}
}

func (t *batchTracker) start(id [16]byte) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.running[id]; ok {
		return false
	}
	t.running[id] = struct{}{}
	return true
}

func (t *batchTracker) complete(id [16]byte) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.running[id]; !ok {
		return false
	}
	delete(t.running, id)
	return true
}
