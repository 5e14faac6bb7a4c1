/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"embed"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
)

//go:embed assets/*
var assets embed.FS

// Crawlers that may not index anything, including card images.
var blockedCrawlers = []string{
	"Amazonbot",
	"Applebot-Extended",
	"Bytespider",
	"CCBot",
	"ClaudeBot",
	"Google-Extended",
	"GPTBot",
	"meta-externalagent",
}

var assetTypes = map[string]string{
	".css":         "text/css; charset=utf-8",
	".html":        "text/html; charset=utf-8",
	".js":          "text/javascript; charset=utf-8",
	".svg":         "image/svg+xml",
	".webmanifest": "application/manifest+json",
}

func cacheFor(w http.ResponseWriter, d time.Duration) {
	w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(int(d.Seconds())))
	w.Header().Set("Expires", time.Now().Add(d).UTC().Format(http.TimeFormat))
}

// robots lists the crawler rules. Game tables and card images are never
// worth indexing, so every agent is kept out of those.
func robots(prefix string) string {
	var b strings.Builder

	for _, agent := range blockedCrawlers {
		b.WriteString("User-agent: " + agent + "\nDisallow: /\n\n")
	}

	b.WriteString("User-agent: *\n")
	for _, p := range []string{"/cards/", "/storyteller/", "/pprof/"} {
		b.WriteString("Disallow: " + prefix + p + "\n")
	}

	return b.String()
}

func serveHomePage(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		if _, err := io.WriteString(w, newPage(cfg, "Storyteller", "Seat a new table")); err != nil {
			errs <- err
		}
	}
}

func serveHealthCheck(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		if _, err := io.WriteString(w, "Ok\n"); err != nil {
			errs <- err
		}
	}
}

// serveAssets serves the embedded spectator page files under
// /assets/*filepath.
func serveAssets(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		name := path.Join("assets", path.Clean("/"+p.ByName("filepath")))

		data, err := assets.ReadFile(name)
		if err != nil {
			http.NotFound(w, r)

			return
		}

		if kind, ok := assetTypes[strings.ToLower(path.Ext(name))]; ok {
			w.Header().Set("Content-Type", kind)
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		cacheFor(w, time.Hour)
		securityHeaders(cfg, w)

		if _, err := w.Write(data); err != nil {
			errs <- err
		}
	}
}

func serveRobots(cfg *Config, errs chan<- error) httprouter.Handle {
	data := robots(cfg.prefix)

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		cacheFor(w, time.Hour)
		securityHeaders(cfg, w)

		if _, err := io.WriteString(w, data); err != nil {
			errs <- err
		}
	}
}
