package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ebrandel/recipepress/internal/recipe"
)

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchSuccess(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, http.StatusOK, "<html><title>Hi</title></html>")
	f := New(Config{Timeout: 5 * time.Second}, nil)

	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, page.StatusCode)
	require.Contains(t, string(page.Body), "Hi")

	doc, err := page.Document()
	require.NoError(t, err)
	require.Equal(t, "Hi", doc.Find("title").Text())
}

func TestFetchSendsBrowserHeaders(t *testing.T) {
	t.Parallel()

	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	f := New(Config{}, nil)
	_, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "https://www.google.com/", got.Get("Referer"))
	require.Equal(t, "1", got.Get("DNT"))
	require.Contains(t, got.Get("Accept"), "text/html")
}

func TestFetchClassifiesRateLimited(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, http.StatusTooManyRequests, "slow down")
	f := New(Config{}, nil)

	_, err := f.Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, recipe.ErrRateLimited)
}

func TestFetchClassifiesForbidden(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, http.StatusForbidden, "nope")
	f := New(Config{}, nil)

	_, err := f.Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, recipe.ErrForbidden)
}

func TestFetchOtherStatusIsFetchError(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, http.StatusInternalServerError, "boom")
	f := New(Config{}, nil)

	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	require.NotErrorIs(t, err, recipe.ErrRateLimited)
	require.NotErrorIs(t, err, recipe.ErrForbidden)

	var fe *recipe.FetchError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, http.StatusInternalServerError, fe.StatusCode)
}
