// Package progress defines the event stream emitted while a recipe batch is
// fetched, extracted, and assembled into a book.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the type of milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageBatchStart      Stage = "BATCH_START"
	StageRecipeExtracted Stage = "RECIPE_EXTRACTED"
	StageURLFailed       Stage = "URL_FAILED"
	StageBatchDone       Stage = "BATCH_DONE"
	StageBookStart       Stage = "BOOK_START"
	StageBookProgress    Stage = "BOOK_PROGRESS"
	StageBookDone        Stage = "BOOK_DONE"
)

// Event captures a single milestone of batch progress.
type Event struct {
	// BatchID uniquely identifies one batch run using the 16-byte UUID form.
	BatchID [16]byte
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which milestone occurred.
	Stage Stage
	// URL is the page the milestone refers to, for per-URL stages.
	URL string
	// Title is the extracted recipe title, for RECIPE_EXTRACTED.
	Title string
	// Attempts counts fetch attempts spent on the URL, including the first.
	Attempts int
	// Processed counts URLs handled so far, successes and failures alike.
	Processed int
	// Total is the deduplicated batch size.
	Total int
	// Percent is Processed over Total, in the range [0, 100].
	Percent float64
	// Dur captures wall time for per-URL and batch completions.
	Dur time.Duration
	// Note carries low-volume context such as error text or an output path.
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.BatchID == [16]byte{} {
		return errors.New("batch id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageBatchStart:
		if e.Total <= 0 {
			return errors.New("batch start requires a total")
		}
	case StageRecipeExtracted, StageURLFailed:
		if e.URL == "" {
			return fmt.Errorf("%s requires a url", e.Stage)
		}
	case StageBatchDone, StageBookStart, StageBookProgress, StageBookDone:
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Percent < 0 || e.Percent > 100 {
		return errors.New("percent must be within [0, 100]")
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}

// BatchUUID converts the binary batch ID to uuid.UUID.
func (e Event) BatchUUID() uuid.UUID {
	return uuid.UUID(e.BatchID)
}

// UUIDToBytes encodes a uuid.UUID into the Event form.
func UUIDToBytes(id uuid.UUID) [16]byte {
	var dest [16]byte
	copy(dest[:], id[:])
	return dest
}

// PercentOf computes the completion percentage after processed of total URLs.
func PercentOf(processed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(processed) / float64(total) * 100
}
