package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/ebrandel/recipepress/internal/progress"
)

// LogSink emits structured logs for debugging progress streams. It is useful
// during development or when no other sink is wired.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs the event using structured fields.
func (s *LogSink) Consume(_ context.Context, evt progress.Event) error {
	s.logger.Info("progress event",
		zap.String("batch_id", evt.BatchUUID().String()),
		zap.String("stage", string(evt.Stage)),
		zap.String("url", evt.URL),
		zap.String("title", evt.Title),
		zap.Int("attempts", evt.Attempts),
		zap.Int("processed", evt.Processed),
		zap.Int("total", evt.Total),
		zap.Float64("percent", evt.Percent),
		zap.Duration("dur", evt.Dur),
		zap.String("note", evt.Note),
	)
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
