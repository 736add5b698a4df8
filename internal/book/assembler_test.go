package book

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ebrandel/recipepress/internal/recipe"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{G: 180, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func fullRecipe(title, category, imageURL string) *recipe.Recipe {
	r := recipe.New("https://example.com/" + strings.ToLower(title))
	r.Title = title
	r.Category = category
	r.Description = "A " + title + " everyone loves."
	r.PrepTime = "10m"
	r.CookTime = "30m"
	r.TotalTime = "40m"
	r.Servings = "4"
	r.Ingredients = []string{"2 cups flour", "1 tsp salt"}
	r.Instructions = []string{"Mix everything.", "Bake until done."}
	r.ImageURL = imageURL
	return r
}

// TestAssembleWritesEpub runs the whole path: grouping, cover collage, image
// embedding, and the final write. The output must be a well-formed EPUB zip.
func TestAssembleWritesEpub(t *testing.T) {
	t.Parallel()

	img := pngBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "missing.png") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(img)
	}))
	defer srv.Close()

	recipes := []*recipe.Recipe{
		fullRecipe("Apple Pie", "Dessert", srv.URL+"/pie.png"),
		fullRecipe("Tomato Soup", "Soup", srv.URL+"/soup.png"),
		fullRecipe("Ghost Dish", "Soup", srv.URL+"/missing.png"),
	}
	b := Group("Family Recipes", recipes)

	out := filepath.Join(t.TempDir(), "family.epub")
	asm := NewAssembler(nil)
	require.NoError(t, asm.Assemble(context.Background(), b, out))

	info, err := os.Stat(out)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))

	zr, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer zr.Close()

	names := make(map[string]bool, len(zr.File))
	var mimetype string
	for _, f := range zr.File {
		names[f.Name] = true
		if f.Name == "mimetype" {
			rc, err := f.Open()
			require.NoError(t, err)
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
			mimetype = string(data)
		}
	}
	require.True(t, names["mimetype"])
	require.Equal(t, "application/epub+zip", mimetype)
}

// TestAssembleWithoutImages checks a book with no reachable photos still
// writes; it just ships without a cover.
func TestAssembleWithoutImages(t *testing.T) {
	t.Parallel()

	r := fullRecipe("Plain Rice", "Side Dish", "")
	b := Group("Minimal", []*recipe.Recipe{r})

	out := filepath.Join(t.TempDir(), "minimal.epub")
	require.NoError(t, NewAssembler(nil).Assemble(context.Background(), b, out))

	info, err := os.Stat(out)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestAssembleEmptyBook(t *testing.T) {
	t.Parallel()

	err := NewAssembler(nil).Assemble(context.Background(), recipe.Book{Title: "Empty"}, "unused.epub")
	require.ErrorIs(t, err, ErrEmptyBook)
}

func TestChapterHTMLEscapesContent(t *testing.T) {
	t.Parallel()

	r := recipe.New("https://example.com/x?a=1&b=2")
	r.Title = `Mac & Cheese <deluxe>`
	r.Ingredients = []string{"1 cup cheese & more"}
	r.Instructions = []string{"Heat > medium."}

	body := chapterHTML(r, "")
	require.Contains(t, body, "Mac &amp; Cheese &lt;deluxe&gt;")
	require.Contains(t, body, "1 cup cheese &amp; more")
	require.Contains(t, body, "Heat &gt; medium.")
	require.NotContains(t, body, "<deluxe>")
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	require.Equal(t, "main_course", slugify("Main Course"))
	require.Equal(t, "category", slugify("日本語"))
}
