package sinks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ebrandel/recipepress/internal/progress"
)

func TestStoreSinkSnapshotLifecycle(t *testing.T) {
	t.Parallel()

	sink := NewStoreSink()
	id := uuid.New()
	batchID := progress.UUIDToBytes(id)
	started := time.Now()

	require.NoError(t, sink.Consume(context.Background(), progress.Event{
		BatchID: batchID, TS: started, Stage: progress.StageBatchStart, Total: 3,
	}))
	require.NoError(t, sink.Consume(context.Background(), progress.Event{
		BatchID: batchID, TS: started.Add(time.Second), Stage: progress.StageRecipeExtracted,
		URL: "https://example.com/a", Title: "A", Processed: 1, Total: 3, Percent: 100.0 / 3,
	}))
	require.NoError(t, sink.Consume(context.Background(), progress.Event{
		BatchID: batchID, TS: started.Add(2 * time.Second), Stage: progress.StageURLFailed,
		URL: "https://example.com/b", Processed: 2, Total: 3, Percent: 200.0 / 3, Note: "boom",
	}))

	snap, ok := sink.Snapshot(id)
	require.True(t, ok)
	require.Equal(t, 3, snap.Total)
	require.Equal(t, 2, snap.Processed)
	require.Equal(t, 1, snap.Extracted)
	require.Equal(t, 1, snap.Failed)
	require.False(t, snap.Done())

	require.NoError(t, sink.Consume(context.Background(), progress.Event{
		BatchID: batchID, TS: started.Add(3 * time.Second), Stage: progress.StageBatchDone,
		Processed: 3, Total: 3,
	}))

	snap, ok = sink.Snapshot(id)
	require.True(t, ok)
	require.True(t, snap.Done())
	require.Equal(t, 100.0, snap.Percent)

	sink.Reset()
	_, ok = sink.Snapshot(id)
	require.False(t, ok)
}

func TestStoreSinkUnknownBatch(t *testing.T) {
	t.Parallel()

	sink := NewStoreSink()
	_, ok := sink.Snapshot(uuid.New())
	require.False(t, ok)
}
