package sinks

import (
	"context"
	"fmt"
	"io"

	"github.com/ebrandel/recipepress/internal/progress"
)

// ConsoleSink prints human-readable progress lines, one per milestone. It is
// the sink behind the CLI's percent output.
type ConsoleSink struct {
	w io.Writer
}

// NewConsoleSink writes progress lines to w.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

// Consume renders the event as a single line.
func (s *ConsoleSink) Consume(_ context.Context, evt progress.Event) error {
	if s == nil || s.w == nil {
		return nil
	}
	var err error
	switch evt.Stage {
	case progress.StageBatchStart:
		_, err = fmt.Fprintf(s.w, "Processing %d recipe links...\n", evt.Total)
	case progress.StageRecipeExtracted:
		_, err = fmt.Fprintf(s.w, "[%3.0f%%] extracted: %s\n", evt.Percent, evt.Title)
	case progress.StageURLFailed:
		_, err = fmt.Fprintf(s.w, "[%3.0f%%] failed: %s (%s)\n", evt.Percent, evt.URL, evt.Note)
	case progress.StageBatchDone:
		_, err = fmt.Fprintf(s.w, "Batch done: %d/%d URLs processed\n", evt.Processed, evt.Total)
	case progress.StageBookProgress:
		_, err = fmt.Fprintf(s.w, "[%3.0f%%] chapter added: %s\n", evt.Percent, evt.Title)
	case progress.StageBookDone:
		_, err = fmt.Fprintf(s.w, "Book written: %s\n", evt.Note)
	}
	return err
}

// Close implements the Sink interface; it performs no action.
func (s *ConsoleSink) Close(context.Context) error {
	return nil
}
