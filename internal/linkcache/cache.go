// Package linkcache persists the batch's recipe links as a markdown list so a
// later session can pick up where the last one stopped.
package linkcache

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/ebrandel/recipepress/internal/recipe"
)

// DefaultPath is where links land when no path is configured.
const DefaultPath = "recipe_links.md"

// linkRe pulls URLs out of markdown list entries of the form "- [title](url)".
var linkRe = regexp.MustCompile(`- \[.*?\]\((.*?)\)`)

// Cache reads and writes one markdown link file.
type Cache struct {
	path string
	now  func() time.Time
}

// New builds a Cache at path; an empty path means DefaultPath.
func New(path string) *Cache {
	if path == "" {
		path = DefaultPath
	}
	return &Cache{path: path, now: time.Now}
}

// Path returns the backing file path.
func (c *Cache) Path() string { return c.path }

// Load returns the URLs recorded in the file, in file order. A missing file
// is not an error; it just yields no URLs.
func (c *Cache) Load() ([]string, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read link cache: %w", err)
	}
	matches := linkRe.FindAllStringSubmatch(string(data), -1)
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		if u := strings.TrimSpace(m[1]); u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}

// Save replaces the file with the given recipes, one markdown list entry per
// recipe, under a timestamped header.
func (c *Cache) Save(recipes []*recipe.Recipe) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Recipe Links - %s\n\n", c.now().Format("2006-01-02 15:04:05"))
	for _, r := range recipes {
		if r == nil || r.URL == "" {
			continue
		}
		fmt.Fprintf(&sb, "- [%s](%s)\n", sanitizeTitle(r.Title), r.URL)
	}
	if err := os.WriteFile(c.path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write link cache: %w", err)
	}
	return nil
}

// sanitizeTitle keeps titles from breaking the markdown link syntax.
func sanitizeTitle(title string) string {
	title = strings.NewReplacer("[", "(", "]", ")").Replace(title)
	return strings.TrimSpace(title)
}
