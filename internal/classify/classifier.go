// Package classify assigns recipes to book categories using keyword rules.
package classify

import (
	"strings"

	"github.com/ebrandel/recipepress/internal/recipe"
)

// Category names used by the built-in rules.
const (
	CategoryDessert    = "Dessert"
	CategoryBreakfast  = "Breakfast"
	CategoryAppetizer  = "Appetizer"
	CategorySoup       = "Soup"
	CategorySalad      = "Salad"
	CategoryMainCourse = "Main Course"
	CategoryVegetarian = "Vegetarian"
	CategorySideDish   = "Side Dish"
	CategoryBread      = "Bread"
	CategoryBeverage   = "Beverage"
)

// rule maps a category onto the keywords that indicate it. Rules are matched
// in slice order; for each rule the title is checked before the ingredients.
type rule struct {
	category string
	keywords []string
}

// defaultRules is ordered from most to least specific; "Dessert" must come
// before "Main Course" so that a chocolate chicken cake stays a dessert.
var defaultRules = []rule{
	{CategoryDessert, []string{"cake", "cookie", "pie", "dessert", "sweet", "chocolate", "ice cream", "pudding"}},
	{CategoryBreakfast, []string{"breakfast", "pancake", "waffle", "eggs", "omelette", "oatmeal", "cereal"}},
	{CategoryAppetizer, []string{"appetizer", "snack", "dip", "starter"}},
	{CategorySoup, []string{"soup", "stew", "broth", "chowder"}},
	{CategorySalad, []string{"salad", "slaw"}},
	{CategoryMainCourse, []string{"chicken", "beef", "pork", "fish", "salmon", "pasta", "rice"}},
	{CategoryVegetarian, []string{"tofu", "vegetarian", "vegan"}},
	{CategorySideDish, []string{"side", "vegetable", "potato", "rice"}},
	{CategoryBread, []string{"bread", "roll", "bun", "muffin"}},
	{CategoryBeverage, []string{"drink", "cocktail", "smoothie", "juice"}},
}

// meatKeywords decide the fallback: no meat anywhere means Vegetarian.
var meatKeywords = []string{"chicken", "beef", "pork", "fish", "salmon", "lamb", "turkey"}

// Classifier assigns a category to each recipe. The zero value is not usable;
// construct with New.
type Classifier struct {
	rules     []rule
	overrides *Overrides
}

// Option customizes a Classifier.
type Option func(*Classifier)

// WithOverrides wires manual category assignments that win over the rules.
func WithOverrides(o *Overrides) Option {
	return func(c *Classifier) { c.overrides = o }
}

// New builds a Classifier with the built-in rules.
func New(opts ...Option) *Classifier {
	c := &Classifier{rules: defaultRules}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the category for one recipe. Overrides win; otherwise the
// first rule whose keywords appear in the title, then in any ingredient,
// decides. With no rule hit the recipe is Vegetarian unless an ingredient
// names a meat, in which case it is a main course.
func (c *Classifier) Classify(r *recipe.Recipe) string {
	if c.overrides != nil {
		if cat, ok := c.overrides.Category(r.ID); ok {
			return cat
		}
	}

	title := strings.ToLower(r.Title)
	ingredients := make([]string, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		ingredients[i] = strings.ToLower(ing)
	}

	for _, rl := range c.rules {
		if containsAny(title, rl.keywords) {
			return rl.category
		}
		for _, ing := range ingredients {
			if containsAny(ing, rl.keywords) {
				return rl.category
			}
		}
	}

	for _, ing := range ingredients {
		if containsAny(ing, meatKeywords) {
			return CategoryMainCourse
		}
	}
	return CategoryVegetarian
}

// Apply classifies every recipe in place, filling the Category field.
func (c *Classifier) Apply(recipes []*recipe.Recipe) {
	for _, r := range recipes {
		r.Category = c.Classify(r)
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
