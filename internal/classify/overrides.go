package classify

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ebrandel/recipepress/internal/recipe"
)

// Overrides holds manual edits keyed by recipe ID: a corrected title, a
// forced category, or both. Safe for concurrent use.
type Overrides struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]Override
}

// Override is one manual edit. Empty fields leave the original value alone.
type Override struct {
	Title    string
	Category string
}

// NewOverrides returns an empty override set.
func NewOverrides() *Overrides {
	return &Overrides{entries: make(map[uuid.UUID]Override)}
}

// Set records or replaces the override for a recipe.
func (o *Overrides) Set(id uuid.UUID, ov Override) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries[id] = ov
}

// Category returns the forced category for a recipe, if any.
func (o *Overrides) Category(id uuid.UUID) (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	ov, ok := o.entries[id]
	if !ok || ov.Category == "" {
		return "", false
	}
	return ov.Category, true
}

// Title returns the corrected title for a recipe, if any.
func (o *Overrides) Title(id uuid.UUID) (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	ov, ok := o.entries[id]
	if !ok || ov.Title == "" {
		return "", false
	}
	return ov.Title, true
}

// ApplyTitles rewrites recipe titles from the override set, in place. Called
// before grouping so chapters and the link cache carry the edited names.
func (o *Overrides) ApplyTitles(recipes []*recipe.Recipe) {
	for _, r := range recipes {
		if r == nil {
			continue
		}
		if title, ok := o.Title(r.ID); ok {
			r.Title = title
		}
	}
}

// Delete removes the override for a recipe.
func (o *Overrides) Delete(id uuid.UUID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.entries, id)
}
