package pipeline

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ebrandel/recipepress/internal/fetch"
	"github.com/ebrandel/recipepress/internal/progress"
	"github.com/ebrandel/recipepress/internal/recipe"
)

type recordingSleeper struct {
	mu     sync.Mutex
	pauses []time.Duration
}

func (s *recordingSleeper) Pause(_ context.Context, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauses = append(s.pauses, delay)
}

func (s *recordingSleeper) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.pauses...)
}

type scriptedFetcher struct {
	mu    sync.Mutex
	fails map[string]int // failures remaining per URL
	calls map[string]int
}

func newScriptedFetcher(fails map[string]int) *scriptedFetcher {
	return &scriptedFetcher{fails: fails, calls: make(map[string]int)}
}

func (f *scriptedFetcher) Fetch(_ context.Context, rawURL string) (*fetch.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[rawURL]++
	if f.fails[rawURL] > 0 {
		f.fails[rawURL]--
		return nil, &recipe.FetchError{URL: rawURL, StatusCode: 500, Err: errors.New("server error")}
	}
	u, _ := url.Parse(rawURL)
	return &fetch.Page{URL: u, StatusCode: 200}, nil
}

type stubExtractor struct {
	incomplete map[string]bool
}

func (e *stubExtractor) Extract(_ context.Context, page *fetch.Page) (*recipe.Recipe, error) {
	r := recipe.New(page.URL.String())
	r.Title = "Recipe at " + page.URL.Path
	r.Ingredients = []string{"salt"}
	if !e.incomplete[page.URL.String()] {
		r.Instructions = []string{"cook"}
	}
	return r, nil
}

type collectingEmitter struct {
	mu     sync.Mutex
	events []progress.Event
}

func (e *collectingEmitter) Emit(evt progress.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, evt)
}

func (e *collectingEmitter) byStage(stage progress.Stage) []progress.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []progress.Event
	for _, evt := range e.events {
		if evt.Stage == stage {
			out = append(out, evt)
		}
	}
	return out
}

func newTestController(f Fetcher, e Extractor, sleeper Sleeper, emitter progress.Emitter) *Controller {
	return NewController(f, e, Config{}, nil, WithSleeper(sleeper), WithEmitter(emitter))
}

// TestRunRetriesWithDoublingBackoff checks that a URL failing twice succeeds
// on the third attempt and that the two backoffs double.
func TestRunRetriesWithDoublingBackoff(t *testing.T) {
	t.Parallel()

	const target = "https://example.com/flaky"
	fetcher := newScriptedFetcher(map[string]int{target: 2})
	sleeper := &recordingSleeper{}
	emitter := &collectingEmitter{}
	ctrl := newTestController(fetcher, &stubExtractor{}, sleeper, emitter)

	res, err := ctrl.Run(context.Background(), []string{target})
	require.NoError(t, err)
	require.Len(t, res.Recipes, 1)
	require.Empty(t, res.Failures)
	require.Equal(t, 3, fetcher.calls[target])

	pauses := sleeper.recorded()
	require.Equal(t, []time.Duration{DefaultRetryDelay, 2 * DefaultRetryDelay}, pauses)

	extracted := emitter.byStage(progress.StageRecipeExtracted)
	require.Len(t, extracted, 1)
	require.Equal(t, 3, extracted[0].Attempts)
}

// TestRunAbandonsAfterMaxRetries checks a persistently failing URL is recorded
// as a failure with initial + MaxRetries attempts.
func TestRunAbandonsAfterMaxRetries(t *testing.T) {
	t.Parallel()

	const target = "https://example.com/dead"
	fetcher := newScriptedFetcher(map[string]int{target: 10})
	sleeper := &recordingSleeper{}
	ctrl := newTestController(fetcher, &stubExtractor{}, sleeper, nil)

	res, err := ctrl.Run(context.Background(), []string{target})
	require.NoError(t, err)
	require.Empty(t, res.Recipes)
	require.Len(t, res.Failures, 1)
	require.Equal(t, 1+DefaultMaxRetries, res.Failures[0].Attempts)
	require.Equal(t, 1+DefaultMaxRetries, fetcher.calls[target])
}

// TestRunIncompleteRecipeRetries checks that a valid-but-incomplete recipe is
// retried like a fetch failure and ultimately abandoned.
func TestRunIncompleteRecipeRetries(t *testing.T) {
	t.Parallel()

	const target = "https://example.com/partial"
	fetcher := newScriptedFetcher(nil)
	extractor := &stubExtractor{incomplete: map[string]bool{target: true}}
	ctrl := newTestController(fetcher, extractor, &recordingSleeper{}, nil)

	res, err := ctrl.Run(context.Background(), []string{target})
	require.NoError(t, err)
	require.Empty(t, res.Recipes)
	require.Len(t, res.Failures, 1)
	require.ErrorIs(t, res.Failures[0].Err, errIncomplete)
	require.Equal(t, 1+DefaultMaxRetries, fetcher.calls[target])
}

// TestRunPolitenessBetweenURLs checks the fixed delay is inserted between
// consecutive successful URLs but not after the last one.
func TestRunPolitenessBetweenURLs(t *testing.T) {
	t.Parallel()

	urls := []string{"https://example.com/a", "https://example.com/b", "https://example.com/c"}
	sleeper := &recordingSleeper{}
	ctrl := newTestController(newScriptedFetcher(nil), &stubExtractor{}, sleeper, nil)

	res, err := ctrl.Run(context.Background(), urls)
	require.NoError(t, err)
	require.Len(t, res.Recipes, 3)

	pauses := sleeper.recorded()
	require.Equal(t, []time.Duration{DefaultPoliteness, DefaultPoliteness}, pauses)
}

// TestRunDeduplicatesURLs checks repeated URLs are fetched once and the batch
// total reflects the unique count.
func TestRunDeduplicatesURLs(t *testing.T) {
	t.Parallel()

	const target = "https://example.com/once"
	fetcher := newScriptedFetcher(nil)
	emitter := &collectingEmitter{}
	ctrl := newTestController(fetcher, &stubExtractor{}, &recordingSleeper{}, emitter)

	res, err := ctrl.Run(context.Background(), []string{target, target, target})
	require.NoError(t, err)
	require.Len(t, res.Recipes, 1)
	require.Equal(t, 1, fetcher.calls[target])

	starts := emitter.byStage(progress.StageBatchStart)
	require.Len(t, starts, 1)
	require.Equal(t, 1, starts[0].Total)
}

// TestRunTrimsURLsBeforeDeduplicating checks a whitespace-padded repeat of a
// URL collapses onto the trimmed original instead of being fetched twice.
func TestRunTrimsURLsBeforeDeduplicating(t *testing.T) {
	t.Parallel()

	const target = "https://example.com/padded"
	fetcher := newScriptedFetcher(nil)
	emitter := &collectingEmitter{}
	ctrl := newTestController(fetcher, &stubExtractor{}, &recordingSleeper{}, emitter)

	res, err := ctrl.Run(context.Background(), []string{target, "  " + target + "  "})
	require.NoError(t, err)
	require.Len(t, res.Recipes, 1)
	require.Empty(t, res.Failures)
	require.Equal(t, 1, fetcher.calls[target])

	starts := emitter.byStage(progress.StageBatchStart)
	require.Len(t, starts, 1)
	require.Equal(t, 1, starts[0].Total)
}

// TestRunEmptyBatch checks empty, all-blank, and whitespace-only inputs.
func TestRunEmptyBatch(t *testing.T) {
	t.Parallel()

	ctrl := newTestController(newScriptedFetcher(nil), &stubExtractor{}, &recordingSleeper{}, nil)

	_, err := ctrl.Run(context.Background(), nil)
	require.ErrorIs(t, err, recipe.ErrEmptyBatch)

	_, err = ctrl.Run(context.Background(), []string{"", ""})
	require.ErrorIs(t, err, recipe.ErrEmptyBatch)

	_, err = ctrl.Run(context.Background(), []string{"   ", "\t\n"})
	require.ErrorIs(t, err, recipe.ErrEmptyBatch)
}

// TestRunProgressPercentMonotonic checks processed counts and percentages
// advance with every URL, success or failure.
func TestRunProgressPercentMonotonic(t *testing.T) {
	t.Parallel()

	urls := []string{"https://example.com/ok", "https://example.com/bad"}
	fetcher := newScriptedFetcher(map[string]int{"https://example.com/bad": 10})
	emitter := &collectingEmitter{}
	ctrl := newTestController(fetcher, &stubExtractor{}, &recordingSleeper{}, emitter)

	res, err := ctrl.Run(context.Background(), urls)
	require.NoError(t, err)
	require.Len(t, res.Recipes, 1)
	require.Len(t, res.Failures, 1)

	extracted := emitter.byStage(progress.StageRecipeExtracted)
	require.Len(t, extracted, 1)
	require.Equal(t, 50.0, extracted[0].Percent)

	failed := emitter.byStage(progress.StageURLFailed)
	require.Len(t, failed, 1)
	require.Equal(t, 100.0, failed[0].Percent)

	done := emitter.byStage(progress.StageBatchDone)
	require.Len(t, done, 1)
	require.Equal(t, 2, done[0].Processed)
}

// TestRunContextCancellation checks cancellation stops the batch and surfaces
// the context error with the partial result.
func TestRunContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ctrl := newTestController(newScriptedFetcher(nil), &stubExtractor{}, &recordingSleeper{}, nil)
	res, err := ctrl.Run(ctx, []string{"https://example.com/a"})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	require.Empty(t, res.Recipes)
}

func TestTimerSleeperHonorsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	TimerSleeper{}.Pause(ctx, time.Minute)
	require.Less(t, time.Since(start), 5*time.Second)
}
