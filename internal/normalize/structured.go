package normalize

import (
	"github.com/ebrandel/recipepress/internal/recipe"
)

// DefaultTitle is used when a page yields content but no usable title.
const DefaultTitle = "Untitled Recipe"

// FromStructured maps a schema.org Recipe object (decoded JSON-LD) onto the
// canonical record. Field aliases follow what recipe sites actually emit:
// name|headline, recipeYield|yield, recipeIngredient|ingredients|
// recipeIngredients, recipeInstructions|instructions, and
// image|images|thumbnailUrl.
func FromStructured(data map[string]any, url string) *recipe.Recipe {
	r := recipe.New(url)
	r.Title = firstString(data, "name", "headline")
	if r.Title == "" {
		r.Title = DefaultTitle
	}
	r.Description = firstString(data, "description")
	r.Servings = firstString(data, "recipeYield", "yield")

	r.PrepTime = Duration(firstString(data, "prepTime"))
	r.CookTime = Duration(firstString(data, "cookTime"))
	r.TotalTime = Duration(firstString(data, "totalTime"))

	if raw, ok := firstPresent(data, "recipeIngredient", "ingredients", "recipeIngredients"); ok {
		r.Ingredients = Ingredients(raw)
	}
	if raw, ok := firstPresent(data, "recipeInstructions", "instructions"); ok {
		r.Instructions = Instructions(raw)
	}
	if raw, ok := firstPresent(data, "image", "images", "thumbnailUrl"); ok {
		r.ImageURL = imageURL(raw)
	}
	return r
}

// imageURL unwraps the image property: take the first element of a list,
// prefer an object's url/contentUrl, else use the string as-is.
func imageURL(raw any) string {
	if list, ok := raw.([]any); ok {
		if len(list) == 0 {
			return ""
		}
		raw = list[0]
	}
	switch v := raw.(type) {
	case map[string]any:
		if u, ok := v["url"].(string); ok && u != "" {
			return u
		}
		if u, ok := v["contentUrl"].(string); ok {
			return u
		}
	case string:
		return v
	}
	return ""
}

// firstPresent returns the value of the first key present in data.
func firstPresent(data map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := data[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// firstString returns the first present key's value stringified; a list
// value contributes its first element.
func firstString(data map[string]any, keys ...string) string {
	raw, ok := firstPresent(data, keys...)
	if !ok || raw == nil {
		return ""
	}
	if list, isList := raw.([]any); isList {
		if len(list) == 0 {
			return ""
		}
		raw = list[0]
	}
	return stringify(raw)
}
