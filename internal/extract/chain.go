// Package extract turns a fetched page into a canonical recipe by running an
// ordered chain of extraction strategies.
package extract

import (
	"context"

	"go.uber.org/zap"

	"github.com/ebrandel/recipepress/internal/fetch"
	"github.com/ebrandel/recipepress/internal/recipe"
	"github.com/ebrandel/recipepress/internal/scrape"
)

// Strategy is one way of reading a recipe out of a page.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, page *fetch.Page) (*recipe.Recipe, error)
}

// Chain runs strategies in priority order and returns the first valid
// result. A strategy error is a soft skip, never fatal: the chain records a
// diagnostic and falls through to the next strategy.
type Chain struct {
	strategies []Strategy
	logger     *zap.Logger
}

// NewChain builds a chain over the given strategies, in order.
func NewChain(logger *zap.Logger, strategies ...Strategy) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{strategies: strategies, logger: logger}
}

// Default wires the standard priority order: registry-backed site scrapers,
// then structured data, then CSS heuristics.
func Default(registry *scrape.Registry, logger *zap.Logger) *Chain {
	return NewChain(logger,
		NewLibraryStrategy(registry),
		NewStructuredStrategy(),
		NewSelectorStrategy(),
	)
}

// Extract returns the first valid recipe produced by the chain, or
// recipe.ErrNoExtractableContent once every strategy is exhausted.
func (c *Chain) Extract(ctx context.Context, page *fetch.Page) (*recipe.Recipe, error) {
	for _, s := range c.strategies {
		r, err := s.Extract(ctx, page)
		if err != nil {
			c.logger.Debug("strategy skipped",
				zap.String("strategy", s.Name()),
				zap.String("url", page.URL.String()),
				zap.Error(err),
			)
			continue
		}
		if r.Valid() {
			c.logger.Debug("strategy produced recipe",
				zap.String("strategy", s.Name()),
				zap.String("title", r.Title),
			)
			return r, nil
		}
		c.logger.Debug("strategy result invalid", zap.String("strategy", s.Name()))
	}
	return nil, recipe.ErrNoExtractableContent
}
