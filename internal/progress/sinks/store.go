package sinks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ebrandel/recipepress/internal/progress"
)

// BatchSnapshot is the latest known state of one batch.
type BatchSnapshot struct {
	BatchID   uuid.UUID
	Total     int
	Processed int
	Extracted int
	Failed    int
	Percent   float64
	StartedAt time.Time
	DoneAt    time.Time
}

// Done reports whether the batch has emitted its completion event.
func (b BatchSnapshot) Done() bool { return !b.DoneAt.IsZero() }

// StoreSink keeps an in-memory snapshot per batch so callers can query the
// outcome after the hub is closed. Snapshots survive until Reset.
type StoreSink struct {
	mu    sync.Mutex
	state map[uuid.UUID]*BatchSnapshot
}

// NewStoreSink constructs an empty snapshot store.
func NewStoreSink() *StoreSink {
	return &StoreSink{state: make(map[uuid.UUID]*BatchSnapshot)}
}

// Consume folds the event into the batch's snapshot.
func (s *StoreSink) Consume(_ context.Context, evt progress.Event) error {
	id := evt.BatchUUID()
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.state[id]
	if snap == nil {
		snap = &BatchSnapshot{BatchID: id}
		s.state[id] = snap
	}
	switch evt.Stage {
	case progress.StageBatchStart:
		snap.Total = evt.Total
		snap.StartedAt = evt.TS
	case progress.StageRecipeExtracted:
		snap.Extracted++
		snap.Processed = evt.Processed
		snap.Percent = evt.Percent
	case progress.StageURLFailed:
		snap.Failed++
		snap.Processed = evt.Processed
		snap.Percent = evt.Percent
	case progress.StageBatchDone:
		snap.Processed = evt.Processed
		snap.Percent = 100
		snap.DoneAt = evt.TS
	}
	return nil
}

// Snapshot returns a copy of the batch state, if any.
func (s *StoreSink) Snapshot(id uuid.UUID) (BatchSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.state[id]
	if !ok {
		return BatchSnapshot{}, false
	}
	return *snap, true
}

// Reset discards all snapshots.
func (s *StoreSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = make(map[uuid.UUID]*BatchSnapshot)
}

// Close implements the Sink interface; it performs no action.
func (s *StoreSink) Close(context.Context) error {
	return nil
}
