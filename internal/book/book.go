// Package book groups classified recipes into ordered categories and
// assembles them into an EPUB document.
package book

import (
	"sort"

	"github.com/ebrandel/recipepress/internal/recipe"
)

// Group arranges recipes into a Book: categories sorted by name, recipes
// within a category sorted by title. Recipes without a category land in
// "Uncategorized". The input slice is not modified.
func Group(title string, recipes []*recipe.Recipe) recipe.Book {
	byCategory := make(map[string][]*recipe.Recipe)
	for _, r := range recipes {
		if r == nil {
			continue
		}
		name := r.Category
		if name == "" {
			name = "Uncategorized"
		}
		byCategory[name] = append(byCategory[name], r)
	}

	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)

	b := recipe.Book{Title: title}
	for _, name := range names {
		members := append([]*recipe.Recipe(nil), byCategory[name]...)
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].Title < members[j].Title
		})
		b.Categories = append(b.Categories, recipe.Category{Name: name, Recipes: members})
	}
	return b
}
