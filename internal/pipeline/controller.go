// Package pipeline drives a batch of recipe URLs through fetch, extraction,
// retry, and pacing, reporting milestones through the progress hub.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ebrandel/recipepress/internal/fetch"
	"github.com/ebrandel/recipepress/internal/progress"
	"github.com/ebrandel/recipepress/internal/recipe"
)

// Defaults for batch pacing.
const (
	DefaultMaxRetries = 2
	DefaultRetryDelay = 3 * time.Second
	DefaultPoliteness = 3 * time.Second
)

// errIncomplete marks an extraction that passed validity but is missing
// ingredients or instructions; the controller retries it like a fetch failure.
var errIncomplete = errors.New("recipe incomplete")

// Fetcher retrieves one page per URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Page, error)
}

// Extractor turns a fetched page into a recipe.
type Extractor interface {
	Extract(ctx context.Context, page *fetch.Page) (*recipe.Recipe, error)
}

// Sleeper abstracts how the controller waits between attempts and URLs.
type Sleeper interface {
	Pause(ctx context.Context, delay time.Duration)
}

// TimerSleeper is the production Sleeper; it honors context cancellation.
type TimerSleeper struct{}

func (TimerSleeper) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Config controls retry and pacing behavior.
type Config struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int
	// RetryDelay is the backoff before the first retry; it doubles per
	// retry and resets for each URL.
	RetryDelay time.Duration
	// Politeness is the delay between consecutive URLs after a success.
	Politeness time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.Politeness <= 0 {
		c.Politeness = DefaultPoliteness
	}
	return c
}

// Failure records one URL abandoned after exhausting retries.
type Failure struct {
	URL      string
	Attempts int
	Err      error
}

// Result is the outcome of one batch run.
type Result struct {
	BatchID  uuid.UUID
	Recipes  []*recipe.Recipe
	Failures []Failure
}

// Controller runs batches sequentially, one URL at a time. Recipe sites
// throttle aggressively, so there is deliberately no URL-level concurrency.
type Controller struct {
	fetcher   Fetcher
	extractor Extractor
	cfg       Config
	sleeper   Sleeper
	emitter   progress.Emitter
	logger    *zap.Logger
	now       func() time.Time
}

// Option customizes a Controller.
type Option func(*Controller)

// WithSleeper replaces the production sleeper; tests use a recording fake.
func WithSleeper(s Sleeper) Option {
	return func(c *Controller) { c.sleeper = s }
}

// WithEmitter wires a progress emitter.
func WithEmitter(e progress.Emitter) Option {
	return func(c *Controller) { c.emitter = e }
}

// NewController builds a Controller. A zero Config gets the defaults.
func NewController(fetcher Fetcher, extractor Extractor, cfg Config, logger *zap.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		fetcher:   fetcher,
		extractor: extractor,
		cfg:       cfg.withDefaults(),
		sleeper:   TimerSleeper{},
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run processes the batch and returns every recipe it could extract. URLs are
// trimmed and deduplicated preserving first-seen order. An empty batch is
// recipe.ErrEmptyBatch; context cancellation returns the partial result
// alongside the context error.
func (c *Controller) Run(ctx context.Context, urls []string) (*Result, error) {
	unique := dedupe(urls)
	if len(unique) == 0 {
		return nil, recipe.ErrEmptyBatch
	}

	res := &Result{BatchID: uuid.New()}
	started := c.now()
	c.emit(progress.Event{
		BatchID: progress.UUIDToBytes(res.BatchID),
		TS:      started.UTC(),
		Stage:   progress.StageBatchStart,
		Total:   len(unique),
	})

	for i, url := range unique {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		urlStart := c.now()
		r, attempts, err := c.processURL(ctx, url)
		processed := i + 1
		percent := progress.PercentOf(processed, len(unique))

		if err != nil {
			res.Failures = append(res.Failures, Failure{URL: url, Attempts: attempts, Err: err})
			c.logger.Warn("url abandoned",
				zap.String("url", url),
				zap.Int("attempts", attempts),
				zap.Error(err),
			)
			c.emit(progress.Event{
				BatchID:   progress.UUIDToBytes(res.BatchID),
				TS:        c.now().UTC(),
				Stage:     progress.StageURLFailed,
				URL:       url,
				Attempts:  attempts,
				Processed: processed,
				Total:     len(unique),
				Percent:   percent,
				Dur:       c.now().Sub(urlStart),
				Note:      err.Error(),
			})
			continue
		}

		res.Recipes = append(res.Recipes, r)
		c.logger.Info("recipe extracted",
			zap.String("url", url),
			zap.String("title", r.Title),
			zap.Int("attempts", attempts),
		)
		c.emit(progress.Event{
			BatchID:   progress.UUIDToBytes(res.BatchID),
			TS:        c.now().UTC(),
			Stage:     progress.StageRecipeExtracted,
			URL:       url,
			Title:     r.Title,
			Attempts:  attempts,
			Processed: processed,
			Total:     len(unique),
			Percent:   percent,
			Dur:       c.now().Sub(urlStart),
		})

		if i < len(unique)-1 {
			c.sleeper.Pause(ctx, c.cfg.Politeness)
		}
	}

	c.emit(progress.Event{
		BatchID:   progress.UUIDToBytes(res.BatchID),
		TS:        c.now().UTC(),
		Stage:     progress.StageBatchDone,
		Processed: len(unique),
		Total:     len(unique),
		Percent:   100,
		Dur:       c.now().Sub(started),
	})
	return res, ctx.Err()
}

// processURL runs the attempt loop for one URL. The backoff starts at
// RetryDelay and doubles per retry; it never carries over to the next URL.
func (c *Controller) processURL(ctx context.Context, url string) (*recipe.Recipe, int, error) {
	delay := c.cfg.RetryDelay
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, attempts, err
		}
		attempts = attempt + 1

		r, err := c.attempt(ctx, url)
		if err == nil {
			return r, attempts, nil
		}
		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, attempts, err
		}
		if attempt < c.cfg.MaxRetries {
			c.logger.Debug("attempt failed, backing off",
				zap.String("url", url),
				zap.Int("attempt", attempts),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
			c.sleeper.Pause(ctx, delay)
			delay *= 2
		}
	}
	return nil, attempts, lastErr
}

// attempt performs one fetch plus extraction. A recipe missing ingredients or
// instructions does not count as success.
func (c *Controller) attempt(ctx context.Context, url string) (*recipe.Recipe, error) {
	page, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	r, err := c.extractor.Extract(ctx, page)
	if err != nil {
		return nil, err
	}
	if !r.Complete() {
		return nil, errIncomplete
	}
	return r, nil
}

func (c *Controller) emit(evt progress.Event) {
	if c.emitter != nil {
		c.emitter.Emit(evt)
	}
}

// dedupe trims each URL and drops blanks and repeats, keeping the first
// occurrence of each.
func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
