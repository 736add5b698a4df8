package book

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-shiori/go-epub"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ebrandel/recipepress/internal/progress"
	"github.com/ebrandel/recipepress/internal/recipe"

	// Cover photos arrive in whatever format the site serves.
	_ "image/gif"
	_ "image/png"
)

// DefaultAuthor is the metadata author when none is configured.
const DefaultAuthor = "Recipe Collector"

// imageFetchTimeout bounds each recipe photo download.
const imageFetchTimeout = 10 * time.Second

// ErrEmptyBook means there are no recipes to assemble.
var ErrEmptyBook = errors.New("no recipes to assemble")

// Assembler writes a grouped Book to an EPUB file. Image downloads are best
// effort: a failed photo never fails the book.
type Assembler struct {
	client  *http.Client
	logger  *zap.Logger
	emitter progress.Emitter
	author  string
}

// Option customizes an Assembler.
type Option func(*Assembler)

// WithHTTPClient replaces the image download client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Assembler) { a.client = c }
}

// WithAuthor sets the EPUB author metadata.
func WithAuthor(author string) Option {
	return func(a *Assembler) { a.author = author }
}

// WithEmitter wires a progress emitter.
func WithEmitter(e progress.Emitter) Option {
	return func(a *Assembler) { a.emitter = e }
}

// NewAssembler builds an Assembler with sane defaults.
func NewAssembler(logger *zap.Logger, opts ...Option) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Assembler{
		client: &http.Client{Timeout: imageFetchTimeout},
		logger: logger,
		author: DefaultAuthor,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble writes the book to outputPath. Scratch files live in a temporary
// directory that is removed on every return path.
func (a *Assembler) Assemble(ctx context.Context, b recipe.Book, outputPath string) error {
	if b.Len() == 0 {
		return ErrEmptyBook
	}

	started := time.Now()
	bookID := progress.UUIDToBytes(uuid.New())
	a.emit(progress.Event{BatchID: bookID, TS: started.UTC(), Stage: progress.StageBookStart, Note: outputPath})

	doc, err := epub.NewEpub(b.Title)
	if err != nil {
		return &recipe.GenerationError{Path: outputPath, Err: err}
	}
	doc.SetIdentifier("recipe-collection")
	doc.SetLang("en")
	doc.SetAuthor(a.author)

	tempDir, err := os.MkdirTemp("", "recipepress-")
	if err != nil {
		return &recipe.GenerationError{Path: outputPath, Err: err}
	}
	defer os.RemoveAll(tempDir)

	cssPath, err := a.addStylesheet(doc, tempDir)
	if err != nil {
		return &recipe.GenerationError{Path: outputPath, Err: err}
	}

	a.addCover(ctx, doc, b, tempDir)

	chapter := 0
	total := b.Len()
	for _, cat := range b.Categories {
		parent, err := doc.AddSection(
			fmt.Sprintf("<h1>%s</h1>", html.EscapeString(cat.Name)),
			cat.Name,
			"category_"+slugify(cat.Name)+".xhtml",
			cssPath,
		)
		if err != nil {
			return &recipe.GenerationError{Path: outputPath, Err: err}
		}
		for _, r := range cat.Recipes {
			imgPath := a.addRecipeImage(ctx, doc, r, tempDir, chapter)
			body := chapterHTML(r, imgPath)
			if _, err := doc.AddSubSection(
				parent,
				body,
				r.Title,
				fmt.Sprintf("chapter_%d.xhtml", chapter),
				cssPath,
			); err != nil {
				return &recipe.GenerationError{Path: outputPath, Err: err}
			}
			chapter++
			a.emit(progress.Event{
				BatchID:   bookID,
				TS:        time.Now().UTC(),
				Stage:     progress.StageBookProgress,
				Title:     r.Title,
				Processed: chapter,
				Total:     total,
				Percent:   progress.PercentOf(chapter, total),
			})
		}
	}

	if err := doc.Write(outputPath); err != nil {
		return &recipe.GenerationError{Path: outputPath, Err: err}
	}

	a.logger.Info("book written",
		zap.String("path", outputPath),
		zap.Int("recipes", b.Len()),
		zap.Int("categories", len(b.Categories)),
	)
	a.emit(progress.Event{
		BatchID: bookID,
		TS:      time.Now().UTC(),
		Stage:   progress.StageBookDone,
		Dur:     time.Since(started),
		Note:    outputPath,
	})
	return nil
}

// addStylesheet stages the shared CSS in the scratch directory and registers
// it with the document.
func (a *Assembler) addStylesheet(doc *epub.Epub, tempDir string) (string, error) {
	cssFile := filepath.Join(tempDir, "style.css")
	if err := os.WriteFile(cssFile, []byte(styleCSS), 0o644); err != nil {
		return "", err
	}
	return doc.AddCSS(cssFile, "style.css")
}

// addCover builds the collage from up to six recipe photos and sets it as the
// cover. Any failure just means the book ships without one.
func (a *Assembler) addCover(ctx context.Context, doc *epub.Epub, b recipe.Book, tempDir string) {
	var images []image.Image
	for _, cat := range b.Categories {
		for _, r := range cat.Recipes {
			if len(images) == coverMaxTile {
				break
			}
			if r.ImageURL == "" {
				continue
			}
			data, _, err := a.fetchImage(ctx, r.ImageURL)
			if err != nil {
				a.logger.Debug("cover image skipped", zap.String("url", r.ImageURL), zap.Error(err))
				continue
			}
			img, _, err := image.Decode(bytes.NewReader(data))
			if err != nil {
				a.logger.Debug("cover image undecodable", zap.String("url", r.ImageURL), zap.Error(err))
				continue
			}
			images = append(images, img)
		}
	}

	collage, err := BuildCover(images)
	if err != nil {
		a.logger.Debug("cover collage skipped", zap.Error(err))
		return
	}
	coverFile := filepath.Join(tempDir, "cover.jpg")
	if err := os.WriteFile(coverFile, collage, 0o644); err != nil {
		a.logger.Debug("cover stage failed", zap.Error(err))
		return
	}
	internal, err := doc.AddImage(coverFile, "cover.jpg")
	if err != nil {
		a.logger.Debug("cover add failed", zap.Error(err))
		return
	}
	if err := doc.SetCover(internal, ""); err != nil {
		a.logger.Debug("cover set failed", zap.Error(err))
	}
}

// addRecipeImage downloads the recipe photo, stages it, and registers it with
// the document. It returns the internal image path, or "" when the recipe has
// no usable photo.
func (a *Assembler) addRecipeImage(ctx context.Context, doc *epub.Epub, r *recipe.Recipe, tempDir string, chapter int) string {
	if r.ImageURL == "" {
		return ""
	}
	data, ext, err := a.fetchImage(ctx, r.ImageURL)
	if err != nil {
		a.logger.Debug("recipe image skipped",
			zap.String("url", r.ImageURL),
			zap.Error(err),
		)
		return ""
	}
	name := fmt.Sprintf("recipe_image_%d.%s", chapter, ext)
	staged := filepath.Join(tempDir, name)
	if err := os.WriteFile(staged, data, 0o644); err != nil {
		a.logger.Debug("recipe image stage failed", zap.Error(err))
		return ""
	}
	internal, err := doc.AddImage(staged, name)
	if err != nil {
		a.logger.Debug("recipe image add failed", zap.Error(err))
		return ""
	}
	return internal
}

// fetchImage downloads one photo and reports its extension from the response
// content type. Unknown types default to jpg.
func (a *Assembler) fetchImage(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("image fetch status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	contentType := resp.Header.Get("Content-Type")
	ext := "jpg"
	switch {
	case strings.Contains(contentType, "png"):
		ext = "png"
	case strings.Contains(contentType, "gif"):
		ext = "gif"
	}
	return data, ext, nil
}

func (a *Assembler) emit(evt progress.Event) {
	if a.emitter != nil {
		a.emitter.Emit(evt)
	}
}

// chapterHTML renders one recipe chapter body.
func chapterHTML(r *recipe.Recipe, imagePath string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<h1>%s</h1>", html.EscapeString(r.Title))

	if r.Description != "" {
		fmt.Fprintf(&sb, "<p><em>%s</em></p>", html.EscapeString(r.Description))
	}
	if imagePath != "" {
		fmt.Fprintf(&sb, `<img src="%s" alt="%s"/>`, imagePath, html.EscapeString(r.Title))
	}

	var meta []string
	if r.PrepTime != "" {
		meta = append(meta, "Prep: "+html.EscapeString(r.PrepTime))
	}
	if r.CookTime != "" {
		meta = append(meta, "Cook: "+html.EscapeString(r.CookTime))
	}
	if r.TotalTime != "" {
		meta = append(meta, "Total: "+html.EscapeString(r.TotalTime))
	}
	if r.Servings != "" {
		meta = append(meta, "Servings: "+html.EscapeString(r.Servings))
	}
	if len(meta) > 0 {
		fmt.Fprintf(&sb, `<div class="recipe-meta">%s</div>`, strings.Join(meta, " | "))
	}

	if len(r.Ingredients) > 0 {
		sb.WriteString(`<h2>Ingredients</h2><div class="ingredients"><ul>`)
		for _, ing := range r.Ingredients {
			fmt.Fprintf(&sb, "<li>%s</li>", html.EscapeString(ing))
		}
		sb.WriteString("</ul></div>")
	}

	if len(r.Instructions) > 0 {
		sb.WriteString(`<h2>Instructions</h2><div class="instructions"><ol>`)
		for _, step := range r.Instructions {
			fmt.Fprintf(&sb, `<li class="instruction">%s</li>`, html.EscapeString(step))
		}
		sb.WriteString("</ol></div>")
	}

	if r.URL != "" {
		fmt.Fprintf(&sb, `<br/><p><small>Source: <a href="%s">%s</a></small></p>`,
			html.EscapeString(r.URL), html.EscapeString(r.URL))
	}
	return sb.String()
}

// slugify turns a category name into a safe internal filename fragment.
func slugify(s string) string {
	s = strings.ToLower(s)
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "category"
	}
	return sb.String()
}
