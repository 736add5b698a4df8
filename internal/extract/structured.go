package extract

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"sort"

	"github.com/PuerkitoBio/goquery"

	"github.com/ebrandel/recipepress/internal/fetch"
	"github.com/ebrandel/recipepress/internal/normalize"
	"github.com/ebrandel/recipepress/internal/recipe"
)

// errNoRecipeNode means no script on the page decoded to a Recipe object.
var errNoRecipeNode = errors.New("no json-ld recipe object found")

// controlCharRe matches the control characters some sites leave inside their
// JSON-LD blocks; they are stripped before decoding.
var controlCharRe = regexp.MustCompile(`[\x00-\x1F\x7F]`)

// StructuredStrategy reads schema.org Recipe metadata out of JSON-LD/JSON
// script tags.
type StructuredStrategy struct{}

// NewStructuredStrategy returns the structured-data strategy.
func NewStructuredStrategy() *StructuredStrategy {
	return &StructuredStrategy{}
}

func (s *StructuredStrategy) Name() string { return "structured-data" }

// Extract scans every application/ld+json script in document order, then
// falls back to application/json scripts only when none of them yields a
// Recipe object. Each script is decoded independently; one that fails to
// decode is skipped and the scan continues.
func (s *StructuredStrategy) Extract(_ context.Context, page *fetch.Page) (*recipe.Recipe, error) {
	doc, err := page.Document()
	if err != nil {
		return nil, err
	}

	node, ok := scanScripts(doc, `script[type="application/ld+json"]`)
	if !ok {
		node, ok = scanScripts(doc, `script[type="application/json"]`)
	}
	if !ok {
		return nil, errNoRecipeNode
	}
	return normalize.FromStructured(node, page.URL.String()), nil
}

// scanScripts decodes each matching script and returns the first Recipe
// object found.
func scanScripts(doc *goquery.Document, selector string) (map[string]any, bool) {
	var node map[string]any
	doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		raw := controlCharRe.ReplaceAllString(sel.Text(), "")
		var data any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			// Malformed structured data: skip this script only.
			return true
		}
		if found, ok := findNode(data, isRecipeObject); ok {
			node = found
			return false
		}
		return true
	})
	return node, node != nil
}

// isRecipeObject reports whether a decoded object declares @type "Recipe",
// either directly or as a member of a type list.
func isRecipeObject(obj map[string]any) bool {
	switch t := obj["@type"].(type) {
	case string:
		return t == "Recipe"
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}

// findNode walks a decoded JSON value looking for an object satisfying the
// predicate. The search order is: the object itself, then @graph members,
// then a full recursive descent over object values (in key order, so the
// walk is deterministic) and array elements.
func findNode(v any, pred func(map[string]any) bool) (map[string]any, bool) {
	switch node := v.(type) {
	case map[string]any:
		if pred(node) {
			return node, true
		}
		if graph, ok := node["@graph"].([]any); ok {
			for _, item := range graph {
				if found, ok := findNode(item, pred); ok {
					return found, true
				}
			}
		}
		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if found, ok := findNode(node[k], pred); ok {
				return found, true
			}
		}
	case []any:
		for _, item := range node {
			if found, ok := findNode(item, pred); ok {
				return found, true
			}
		}
	}
	return nil, false
}
