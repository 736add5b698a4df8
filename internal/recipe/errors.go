package recipe

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying pipeline failures. Per-URL failures wrap these
// and never abort the batch; only ErrEmptyBatch and GenerationError are fatal.
var (
	// ErrRateLimited marks an HTTP 429 response.
	ErrRateLimited = errors.New("rate limited")
	// ErrForbidden marks an HTTP 403 response.
	ErrForbidden = errors.New("forbidden")
	// ErrUnsupportedSite is returned by the scraper registry when no scraper
	// claims the host. The chain treats it as a soft skip.
	ErrUnsupportedSite = errors.New("site unsupported")
	// ErrNoExtractableContent means every strategy was exhausted without a
	// valid result.
	ErrNoExtractableContent = errors.New("no extractable recipe content")
	// ErrEmptyBatch rejects a run with zero URLs.
	ErrEmptyBatch = errors.New("no recipe URLs provided")
)

// FetchError reports a transport failure or an unexpected HTTP status.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// GenerationError reports a packaging failure while writing the book. It is
// batch-fatal.
type GenerationError struct {
	Path string
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s: %v", e.Path, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
