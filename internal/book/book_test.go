package book

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ebrandel/recipepress/internal/recipe"
)

func categorized(title, category string) *recipe.Recipe {
	r := recipe.New("https://example.com/" + title)
	r.Title = title
	r.Category = category
	return r
}

func TestGroupOrdersCategoriesAndTitles(t *testing.T) {
	t.Parallel()

	recipes := []*recipe.Recipe{
		categorized("Zucchini Fritters", "Side Dish"),
		categorized("Apple Pie", "Dessert"),
		categorized("Brownies", "Dessert"),
		categorized("Aioli", "Side Dish"),
	}

	b := Group("Recipe Book", recipes)
	require.Equal(t, "Recipe Book", b.Title)
	require.Len(t, b.Categories, 2)
	require.Equal(t, "Dessert", b.Categories[0].Name)
	require.Equal(t, "Side Dish", b.Categories[1].Name)

	require.Equal(t, "Apple Pie", b.Categories[0].Recipes[0].Title)
	require.Equal(t, "Brownies", b.Categories[0].Recipes[1].Title)
	require.Equal(t, "Aioli", b.Categories[1].Recipes[0].Title)
	require.Equal(t, 4, b.Len())
}

func TestGroupUncategorizedBucket(t *testing.T) {
	t.Parallel()

	recipes := []*recipe.Recipe{categorized("Mystery Dish", "")}
	b := Group("Book", recipes)
	require.Len(t, b.Categories, 1)
	require.Equal(t, "Uncategorized", b.Categories[0].Name)
}

func TestGroupEmpty(t *testing.T) {
	t.Parallel()

	b := Group("Book", nil)
	require.Empty(t, b.Categories)
	require.Equal(t, 0, b.Len())
}
