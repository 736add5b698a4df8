package scrape

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ebrandel/recipepress/internal/fetch"
)

// fieldSelectors maps each Result field onto the CSS selectors of one recipe
// plugin's markup. Empty selectors mean the plugin never emits that field.
type fieldSelectors struct {
	marker       string // presence of this selector identifies the plugin
	title        string
	description  string
	ingredients  string
	instructions string
	prepTime     string
	cookTime     string
	totalTime    string
	yields       string
	image        string
}

// selectorScraper extracts fields by CSS selector. Both built-in scrapers
// are instances of it; site-specific scrapers can be added the same way.
type selectorScraper struct {
	name string
	sel  fieldSelectors
}

func (s *selectorScraper) Name() string { return s.name }

func (s *selectorScraper) Match(page *fetch.Page) bool {
	doc, err := page.Document()
	if err != nil {
		return false
	}
	return doc.Find(s.sel.marker).Length() > 0
}

func (s *selectorScraper) Scrape(_ context.Context, page *fetch.Page) (Result, error) {
	doc, err := page.Document()
	if err != nil {
		return nil, err
	}
	return &selectorResult{doc: doc, page: page, sel: s.sel}, nil
}

// newWPRMScraper recognizes WP Recipe Maker markup, the most common
// WordPress recipe plugin.
func newWPRMScraper() Scraper {
	return &selectorScraper{
		name: "wprm",
		sel: fieldSelectors{
			marker:       ".wprm-recipe-container, .wprm-recipe",
			title:        ".wprm-recipe-name",
			description:  ".wprm-recipe-summary",
			ingredients:  ".wprm-recipe-ingredient",
			instructions: ".wprm-recipe-instruction",
			prepTime:     ".wprm-recipe-prep-time-container .wprm-recipe-time",
			cookTime:     ".wprm-recipe-cook-time-container .wprm-recipe-time",
			totalTime:    ".wprm-recipe-total-time-container .wprm-recipe-time",
			yields:       ".wprm-recipe-servings",
			image:        ".wprm-recipe-image img",
		},
	}
}

// newTastyScraper recognizes Tasty Recipes markup.
func newTastyScraper() Scraper {
	return &selectorScraper{
		name: "tasty",
		sel: fieldSelectors{
			marker:       ".tasty-recipes",
			title:        ".tasty-recipes-title",
			description:  ".tasty-recipes-description",
			ingredients:  ".tasty-recipes-ingredients li",
			instructions: ".tasty-recipes-instructions li",
			prepTime:     ".tasty-recipes-prep-time",
			cookTime:     ".tasty-recipes-cook-time",
			totalTime:    ".tasty-recipes-total-time",
			yields:       ".tasty-recipes-yield",
			image:        ".tasty-recipes-image img",
		},
	}
}

// selectorResult lazily reads fields off the shared document.
type selectorResult struct {
	doc  *goquery.Document
	page *fetch.Page
	sel  fieldSelectors
}

func (r *selectorResult) text(selector string) (string, error) {
	if selector == "" {
		return "", ErrFieldNotFound
	}
	t := strings.TrimSpace(r.doc.Find(selector).First().Text())
	if t == "" {
		return "", ErrFieldNotFound
	}
	return t, nil
}

func (r *selectorResult) list(selector string) ([]string, error) {
	if selector == "" {
		return nil, ErrFieldNotFound
	}
	var items []string
	r.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			items = append(items, t)
		}
	})
	if len(items) == 0 {
		return nil, ErrFieldNotFound
	}
	return items, nil
}

func (r *selectorResult) Title() (string, error)          { return r.text(r.sel.title) }
func (r *selectorResult) Description() (string, error)    { return r.text(r.sel.description) }
func (r *selectorResult) Ingredients() ([]string, error)  { return r.list(r.sel.ingredients) }
func (r *selectorResult) Instructions() ([]string, error) { return r.list(r.sel.instructions) }
func (r *selectorResult) PrepTime() (string, error)       { return r.text(r.sel.prepTime) }
func (r *selectorResult) CookTime() (string, error)       { return r.text(r.sel.cookTime) }
func (r *selectorResult) TotalTime() (string, error)      { return r.text(r.sel.totalTime) }
func (r *selectorResult) Yields() (string, error)         { return r.text(r.sel.yields) }

// Image resolves a relative src against the page URL.
func (r *selectorResult) Image() (string, error) {
	if r.sel.image == "" {
		return "", ErrFieldNotFound
	}
	src, ok := r.doc.Find(r.sel.image).First().Attr("src")
	if !ok || src == "" {
		return "", ErrFieldNotFound
	}
	if r.page != nil && r.page.URL != nil {
		if ref, err := r.page.URL.Parse(src); err == nil {
			return ref.String(), nil
		}
	}
	return src, nil
}
