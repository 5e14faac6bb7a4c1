package main

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Seednode/storyteller/catalog"
	"github.com/Seednode/storyteller/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// onePixelPNG is a valid 1x1 PNG.
const onePixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func newTestServer(t *testing.T, cfg *Config, cards *catalog.Catalog, store *history.Store) *httptest.Server {
	t.Helper()

	if cards == nil {
		cards = catalog.Synthetic(cfg.syntheticCards)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 64)

	mux, _ := newRouter(ctx, cfg, cards, store, errs)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	return srv
}

func noRedirect(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()

	client := &http.Client{CheckRedirect: noRedirect}
	res, err := client.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return res, string(body)
}

func TestStaticRoutes(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil, nil)

	res, body := get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "Ok\n", body)

	res, body = get(t, srv.URL+"/version")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "storyteller v"+releaseVersion+"\n", body)

	res, body = get(t, srv.URL+"/robots.txt")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Disallow: /cards/")

	res, body = get(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `href="/storyteller"`)
	assert.Equal(t, "default-src 'self'", res.Header.Get("Content-Security-Policy"))

	res, body = get(t, srv.URL+"/assets/storyteller/app.js")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/javascript; charset=utf-8", res.Header.Get("Content-Type"))
	assert.Contains(t, body, "WebSocket")

	res, _ = get(t, srv.URL+"/assets/storyteller/missing.js")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, _ = get(t, srv.URL+"/assets/storyteller/app.css")
	assert.Equal(t, "text/css; charset=utf-8", res.Header.Get("Content-Type"))

	res, body = get(t, srv.URL+"/favicon.svg")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "image/svg+xml", res.Header.Get("Content-Type"))
	assert.Contains(t, body, "<svg")

	res, _ = get(t, srv.URL+"/favicons/site.webmanifest")
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestPrefix(t *testing.T) {
	cfg := testConfig()
	cfg.prefix = "/games"
	srv := newTestServer(t, cfg, nil, nil)

	res, _ := get(t, srv.URL+"/games/healthz")
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	_, body := get(t, srv.URL+"/games/robots.txt")
	assert.Contains(t, body, "User-agent: GPTBot\nDisallow: /\n")
	assert.Contains(t, body, "Disallow: /games/cards/\n")
	assert.Contains(t, body, "Disallow: /games/storyteller/\n")

	res, _ = get(t, srv.URL+"/games/storyteller")
	assert.Equal(t, http.StatusTemporaryRedirect, res.StatusCode)
	assert.True(t, strings.HasPrefix(res.Header.Get("Location"), "/games/storyteller/"))
}

func TestNewGameRedirect(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil, nil)

	res, _ := get(t, srv.URL+"/storyteller")
	require.Equal(t, http.StatusTemporaryRedirect, res.StatusCode)

	loc := res.Header.Get("Location")
	require.True(t, strings.HasPrefix(loc, "/storyteller/"))
	assert.Len(t, strings.TrimPrefix(loc, "/storyteller/"), 8)

	res, body := get(t, srv.URL+loc)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "app.js")
	assert.Contains(t, res.Header.Get("Content-Security-Policy"), "connect-src 'self' ws: wss:")
	assert.NotEmpty(t, res.Cookies())

	res, _ = get(t, srv.URL+loc+"/qr")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "image/png", res.Header.Get("Content-Type"))
}

func TestCards(t *testing.T) {
	dir := t.TempDir()
	images := filepath.Join(dir, "images")
	require.NoError(t, os.Mkdir(images, 0o755))

	data, err := base64.StdEncoding.DecodeString(onePixelPNG)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(images, "5.png"), data, 0o644))

	cards, err := catalog.Load(filepath.Join(dir, "cards.json"), images)
	require.NoError(t, err)

	srv := newTestServer(t, testConfig(), cards, nil)

	res, body := get(t, srv.URL+"/cards/5")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "image/png", res.Header.Get("Content-Type"))
	assert.Equal(t, string(data), body)

	res, _ = get(t, srv.URL+"/cards/6")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, _ = get(t, srv.URL+"/cards/five")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestSyntheticCardsHaveNoImage(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil, nil)

	res, _ := get(t, srv.URL+"/cards/1")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestHistoryDisabled(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil, nil)

	res, body := get(t, srv.URL+"/storyteller/abcdefgh/history")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Contains(t, body, "history is not enabled")
}

func TestHumanReadableSize(t *testing.T) {
	assert.Equal(t, "999 B", humanReadableSize(999))
	assert.Equal(t, "1.5 kB", humanReadableSize(1500))
	assert.Equal(t, "2.0 MB", humanReadableSize(2_000_000))
}
