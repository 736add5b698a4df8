// Package fetch retrieves recipe pages over HTTP using a Colly collector.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/ebrandel/recipepress/internal/recipe"
)

// DefaultTimeout bounds a single page fetch.
const DefaultTimeout = 15 * time.Second

// defaultUserAgent mirrors a desktop Chrome so recipe sites serve the same
// markup they serve browsers.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// browserHeaders is the fixed header set sent with every request.
var browserHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.5",
	"Cache-Control":             "max-age=0",
	"DNT":                       "1",
	"Upgrade-Insecure-Requests": "1",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
	"Referer":                   "https://www.google.com/",
}

// Page is the outcome of one successful fetch. The goquery document is
// parsed lazily and exactly once; every extraction strategy shares it.
type Page struct {
	URL        *url.URL
	StatusCode int
	Headers    http.Header
	Body       []byte

	docOnce sync.Once
	doc     *goquery.Document
	docErr  error
}

// Document parses the body into a goquery document on first use.
func (p *Page) Document() (*goquery.Document, error) {
	p.docOnce.Do(func() {
		p.doc, p.docErr = goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
	})
	return p.doc, p.docErr
}

// Config controls Fetcher behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetcher performs one GET per URL with fixed browser-like headers and
// classifies the response. It has no other side effects.
type Fetcher struct {
	base   *colly.Collector
	logger *zap.Logger
}

// New constructs a Fetcher. A zero Config gets the default user agent and
// timeout.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	base := colly.NewCollector(colly.UserAgent(cfg.UserAgent))
	base.AllowURLRevisit = true
	base.SetRequestTimeout(cfg.Timeout)
	return &Fetcher{base: base, logger: logger}
}

type fetchResult struct {
	page *Page
	err  error
}

// Fetch retrieves one page. HTTP 429 maps to recipe.ErrRateLimited and 403
// to recipe.ErrForbidden; any other non-2xx status or transport failure
// yields a *recipe.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	collector := f.base.Clone()
	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() { resultCh <- res })
	}

	collector.OnRequest(func(r *colly.Request) {
		for k, v := range browserHeaders {
			r.Headers.Set(k, v)
		}
	})

	collector.OnResponse(func(r *colly.Response) {
		headers := http.Header{}
		if r.Headers != nil {
			for k, v := range *r.Headers {
				cp := make([]string, len(v))
				copy(cp, v)
				headers[k] = cp
			}
		}
		send(fetchResult{page: &Page{
			URL:        r.Request.URL,
			StatusCode: r.StatusCode,
			Headers:    headers,
			Body:       append([]byte{}, r.Body...),
		}})
	})

	collector.OnError(func(r *colly.Response, err error) {
		send(fetchResult{err: classify(rawURL, r, err)})
	})

	if err := collector.Visit(rawURL); err != nil {
		return nil, &recipe.FetchError{URL: rawURL, Err: err}
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if res.err != nil {
			f.logger.Debug("fetch failed", zap.String("url", rawURL), zap.Error(res.err))
		}
		return res.page, res.err
	default:
		return nil, &recipe.FetchError{URL: rawURL, Err: errors.New("fetch produced no result")}
	}
}

// classify maps an HTTP error response onto the failure taxonomy.
func classify(rawURL string, r *colly.Response, err error) error {
	status := 0
	if r != nil {
		status = r.StatusCode
	}
	switch status {
	case http.StatusTooManyRequests:
		return &recipe.FetchError{URL: rawURL, StatusCode: status, Err: recipe.ErrRateLimited}
	case http.StatusForbidden:
		return &recipe.FetchError{URL: rawURL, StatusCode: status, Err: recipe.ErrForbidden}
	}
	if err == nil {
		err = errors.New("request failed")
	}
	return &recipe.FetchError{URL: rawURL, StatusCode: status, Err: err}
}
