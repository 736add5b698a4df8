package extract

import (
	"context"
	"fmt"

	"github.com/ebrandel/recipepress/internal/fetch"
	"github.com/ebrandel/recipepress/internal/normalize"
	"github.com/ebrandel/recipepress/internal/recipe"
	"github.com/ebrandel/recipepress/internal/scrape"
)

// LibraryStrategy delegates to the site scraper registry. A registry miss
// (recipe.ErrUnsupportedSite) or any scraper failure bubbles up for the
// chain to treat as a soft skip.
type LibraryStrategy struct {
	registry *scrape.Registry
}

// NewLibraryStrategy wraps a scraper registry as a chain strategy.
func NewLibraryStrategy(registry *scrape.Registry) *LibraryStrategy {
	return &LibraryStrategy{registry: registry}
}

func (s *LibraryStrategy) Name() string { return "library" }

// Extract scrapes the page via the registry. The title accessor is the only
// required field; every other field falls back to its zero default when the
// accessor fails.
func (s *LibraryStrategy) Extract(ctx context.Context, page *fetch.Page) (*recipe.Recipe, error) {
	res, err := s.registry.Scrape(ctx, page)
	if err != nil {
		return nil, err
	}
	title, err := res.Title()
	if err != nil {
		return nil, fmt.Errorf("scraper title: %w", err)
	}
	r := recipe.New(page.URL.String())
	r.Title = title
	fillOptional(r, res)
	return r, nil
}

// fillOptional transfers the optional fields through one attempt-or-default
// table: an accessor error leaves the destination at its default.
func fillOptional(r *recipe.Recipe, res scrape.Result) {
	stringFields := []struct {
		dst  *string
		get  func() (string, error)
		norm func(string) string
	}{
		{&r.Description, res.Description, nil},
		{&r.PrepTime, res.PrepTime, normalize.Duration},
		{&r.CookTime, res.CookTime, normalize.Duration},
		{&r.TotalTime, res.TotalTime, normalize.Duration},
		{&r.Servings, res.Yields, nil},
		{&r.ImageURL, res.Image, nil},
	}
	for _, f := range stringFields {
		v, err := f.get()
		if err != nil {
			continue
		}
		if f.norm != nil {
			v = f.norm(v)
		}
		*f.dst = v
	}

	if items, err := res.Ingredients(); err == nil {
		r.Ingredients = normalize.Ingredients(items)
	}
	if items, err := res.Instructions(); err == nil {
		r.Instructions = normalize.Instructions(items)
	}
}
