// Package scrape provides the registry-backed site scraper capability.
// Scrapers know the markup of a specific site or recipe plugin and expose
// extracted fields through per-field fallible accessors.
package scrape

import (
	"context"
	"errors"

	"github.com/ebrandel/recipepress/internal/fetch"
	"github.com/ebrandel/recipepress/internal/recipe"
)

// ErrFieldNotFound is returned by a Result accessor when the page carries no
// value for that field. Callers substitute their own default.
var ErrFieldNotFound = errors.New("field not found")

// Result exposes the fields a site scraper extracted. Every accessor is
// fallible; a missing field is an error, not a zero value, so callers can
// distinguish "absent" from "empty".
type Result interface {
	Title() (string, error)
	Description() (string, error)
	Ingredients() ([]string, error)
	Instructions() ([]string, error)
	PrepTime() (string, error)
	CookTime() (string, error)
	TotalTime() (string, error)
	Yields() (string, error)
	Image() (string, error)
}

// Scraper extracts a Result from pages it recognizes.
type Scraper interface {
	// Name identifies the scraper in diagnostics.
	Name() string
	// Match reports whether this scraper understands the page.
	Match(page *fetch.Page) bool
	// Scrape extracts the recipe fields.
	Scrape(ctx context.Context, page *fetch.Page) (Result, error)
}

// Registry holds scrapers in registration order and dispatches a page to the
// first one that matches. An unmatched page is recipe.ErrUnsupportedSite.
type Registry struct {
	scrapers []Scraper
}

// NewRegistry builds a registry over the given scrapers.
func NewRegistry(scrapers ...Scraper) *Registry {
	return &Registry{scrapers: scrapers}
}

// DefaultRegistry returns a registry with the built-in plugin scrapers.
func DefaultRegistry() *Registry {
	return NewRegistry(newWPRMScraper(), newTastyScraper())
}

// Register appends a scraper; later registrations have lower priority.
func (reg *Registry) Register(s Scraper) {
	reg.scrapers = append(reg.scrapers, s)
}

// Scrape dispatches the page to the first matching scraper.
func (reg *Registry) Scrape(ctx context.Context, page *fetch.Page) (Result, error) {
	for _, s := range reg.scrapers {
		if !s.Match(page) {
			continue
		}
		res, err := s.Scrape(ctx, page)
		if err != nil {
			return nil, err
		}
		return res, nil
	}
	return nil, recipe.ErrUnsupportedSite
}
