package sinks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/ebrandel/recipepress/internal/progress"
)

// TestPrometheusSinkRecordsMetrics ensures counters and the percent gauge move with events.
func TestPrometheusSinkRecordsMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	sink, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	batchID := progress.UUIDToBytes(uuid.New())
	events := []progress.Event{
		{BatchID: batchID, TS: time.Now(), Stage: progress.StageBatchStart, Total: 2},
		{
			BatchID:   batchID,
			TS:        time.Now(),
			Stage:     progress.StageRecipeExtracted,
			URL:       "https://example.com/tea",
			Title:     "Lemon Tea",
			Attempts:  1,
			Processed: 1,
			Total:     2,
			Percent:   50,
		},
		{
			BatchID:   batchID,
			TS:        time.Now(),
			Stage:     progress.StageURLFailed,
			URL:       "https://example.com/404",
			Attempts:  3,
			Processed: 2,
			Total:     2,
			Percent:   100,
		},
		{BatchID: batchID, TS: time.Now(), Stage: progress.StageBatchDone, Processed: 2, Total: 2, Dur: 12 * time.Second},
	}

	for _, evt := range events {
		require.NoError(t, sink.Consume(context.Background(), evt))
	}

	require.Equal(t, 1.0, testutil.ToFloat64(sink.batchesStarted))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.batchesCompleted))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.recipesExtracted))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.urlFailures))
	require.Equal(t, 100.0, testutil.ToFloat64(sink.batchPercent))
	require.Equal(t, 1, testutil.CollectAndCount(sink.batchRuntime, "recipepress_batch_runtime_seconds"))
	require.Equal(t, 1, testutil.CollectAndCount(sink.fetchAttempts, "recipepress_url_attempts"))
}

// TestPrometheusSinkDuplicateLifecycle ensures repeated start/done events count once.
func TestPrometheusSinkDuplicateLifecycle(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	sink, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	batchID := progress.UUIDToBytes(uuid.New())
	start := progress.Event{BatchID: batchID, TS: time.Now(), Stage: progress.StageBatchStart, Total: 1}
	done := progress.Event{BatchID: batchID, TS: time.Now(), Stage: progress.StageBatchDone, Processed: 1, Total: 1}

	require.NoError(t, sink.Consume(context.Background(), start))
	require.NoError(t, sink.Consume(context.Background(), start))
	require.NoError(t, sink.Consume(context.Background(), done))
	require.NoError(t, sink.Consume(context.Background(), done))

	require.Equal(t, 1.0, testutil.ToFloat64(sink.batchesStarted))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.batchesCompleted))
}
