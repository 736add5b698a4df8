package extract

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ebrandel/recipepress/internal/fetch"
	"github.com/ebrandel/recipepress/internal/normalize"
	"github.com/ebrandel/recipepress/internal/recipe"
)

// Selector lists tried in order; the first selector with a usable match wins.
// They cover the markup conventions common across recipe sites.
var (
	titleSelectors = []string{
		"h1",
		".recipe-title",
		".entry-title",
		"title",
	}

	ingredientSelectors = []string{
		"ul.ingredients li",
		".recipe-ingredients li",
		".ingredients li",
		"[itemprop=\"recipeIngredient\"]",
		".ingredient-list li",
		".wprm-recipe-ingredient",
		".ingredient",
		"[class*=\"ingredient\"]",
		".tasty-recipes-ingredients li",
		".recipe-ingred_str",
		".ERSIngredients li",
		".wpurp-recipe-ingredient",
		"[class*=\"ingredient-list\"] li",
	}

	ingredientContainers = []string{
		".ingredients",
		".recipe-ingredients",
		"[itemprop=\"recipeIngredient\"]",
	}

	instructionSelectors = []string{
		"ol.instructions li",
		".recipe-instructions li",
		".recipe-directions li",
		"[itemprop=\"recipeInstructions\"] li",
		".instruction-list li",
		".wprm-recipe-instruction",
		".preparation-step",
		".recipe-method-step",
		".tasty-recipes-instructions li",
		".ERSInstructions li",
		".recipe-steps li",
		".wpurp-recipe-instruction",
		"[class*=\"instruction-list\"] li",
	}

	instructionContainers = []string{
		".recipe-instructions",
		".recipe-directions",
		".instructions",
		"[itemprop=\"recipeInstructions\"]",
		".method-steps",
		".recipe-method",
		".wprm-recipe-instructions",
		".tasty-recipes-instructions",
		".ERSInstructions",
		".wpurp-recipe-instructions",
		".recipe__method-steps",
		".RecipeInstructions",
		"[class*=\"recipe-steps\"]",
		"[class*=\"cooking-steps\"]",
		"[class*=\"method-steps\"]",
	}

	imageSelectors = []string{
		".recipe-image img",
		".recipe-photo img",
		"[class*=\"recipe\"] img",
		"img[itemprop=\"image\"]",
		".hero-photo img",
	}
)

// SelectorStrategy is the last-resort extractor: generic CSS heuristics over
// the parsed document. It always produces a recipe; the chain's validity gate
// decides whether the result is worth keeping.
type SelectorStrategy struct{}

// NewSelectorStrategy returns the CSS heuristic strategy.
func NewSelectorStrategy() *SelectorStrategy {
	return &SelectorStrategy{}
}

func (s *SelectorStrategy) Name() string { return "css-selectors" }

func (s *SelectorStrategy) Extract(_ context.Context, page *fetch.Page) (*recipe.Recipe, error) {
	doc, err := page.Document()
	if err != nil {
		return nil, err
	}

	r := recipe.New(page.URL.String())
	r.Title = findTitle(doc)
	r.Ingredients = findItems(doc, ingredientSelectors, ingredientContainers)
	r.Instructions = findItems(doc, instructionSelectors, instructionContainers)
	r.ImageURL = findImage(doc, page)
	return r, nil
}

func findTitle(doc *goquery.Document) string {
	for _, sel := range titleSelectors {
		if t := strings.TrimSpace(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return normalize.DefaultTitle
}

// findItems returns the matches of the first item selector that yields any
// non-empty text. Container splitting is a fallback reached only when every
// direct selector comes up empty.
func findItems(doc *goquery.Document, items, containers []string) []string {
	for _, sel := range items {
		if found := collectText(doc.Find(sel)); len(found) > 0 {
			return found
		}
	}
	return containerItems(doc, containers)
}

// containerItems splits one matched container into items: list entries when
// the container holds them, otherwise paragraphs, otherwise raw lines.
func containerItems(doc *goquery.Document, containers []string) []string {
	for _, sel := range containers {
		container := doc.Find(sel).First()
		if container.Length() == 0 {
			continue
		}
		if found := collectText(container.Find("li")); len(found) > 0 {
			return found
		}
		if found := collectText(container.Find("p")); len(found) > 0 {
			return found
		}
		var lines []string
		for _, line := range strings.Split(container.Text(), "\n") {
			if t := strings.TrimSpace(line); t != "" {
				lines = append(lines, t)
			}
		}
		if len(lines) > 0 {
			return lines
		}
	}
	return nil
}

func collectText(sel *goquery.Selection) []string {
	var items []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			items = append(items, t)
		}
	})
	return items
}

func findImage(doc *goquery.Document, page *fetch.Page) string {
	for _, sel := range imageSelectors {
		src, ok := doc.Find(sel).First().Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			continue
		}
		if page.URL != nil {
			if ref, err := page.URL.Parse(src); err == nil {
				return ref.String()
			}
		}
		return src
	}
	return ""
}
