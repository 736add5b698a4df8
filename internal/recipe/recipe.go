// Package recipe defines the canonical recipe record shared across subsystems.
package recipe

import (
	"github.com/google/uuid"
)

// Recipe is the canonical record produced by the extraction pipeline for one
// URL. Time fields are either empty or rendered as "Xh", "Ym", or "Xh Ym".
type Recipe struct {
	ID           uuid.UUID `json:"id"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	PrepTime     string    `json:"prep_time"`
	CookTime     string    `json:"cook_time"`
	TotalTime    string    `json:"total_time"`
	Servings     string    `json:"servings"`
	Ingredients  []string  `json:"ingredients"`
	Instructions []string  `json:"instructions"`
	ImageURL     string    `json:"image_url,omitempty"`
	Category     string    `json:"category,omitempty"`
}

// New returns an empty Recipe for the given source URL with a fresh stable ID.
// The ID keys the editor override table, so it never changes after creation.
func New(url string) *Recipe {
	return &Recipe{ID: uuid.New(), URL: url}
}

// Valid reports whether an extraction result is usable: a non-empty title
// plus at least one of ingredients or instructions. This is the gate applied
// by the strategy chain.
func (r *Recipe) Valid() bool {
	if r == nil || r.Title == "" {
		return false
	}
	return len(r.Ingredients) > 0 || len(r.Instructions) > 0
}

// Complete reports whether the recipe has both ingredients and instructions.
// The retry controller requires Complete before accepting a result; this is
// deliberately stricter than Valid and the two must not be unified.
func (r *Recipe) Complete() bool {
	if r == nil {
		return false
	}
	return len(r.Ingredients) > 0 && len(r.Instructions) > 0
}

// Category groups recipes under one table-of-contents entry. Order is
// significant: chapters are emitted in slice order.
type Category struct {
	Name    string
	Recipes []*Recipe
}

// Book is an ordered set of categories ready for assembly. It produces a
// two-level table of contents: categories at the top, one chapter per recipe
// nested beneath.
type Book struct {
	Title      string
	Categories []Category
}

// Len returns the total number of recipes across all categories.
func (b *Book) Len() int {
	n := 0
	for _, c := range b.Categories {
		n += len(c.Recipes)
	}
	return n
}
