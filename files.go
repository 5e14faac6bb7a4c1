/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Seednode/storyteller/catalog"
	"github.com/julienschmidt/httprouter"
)

func humanReadableSize(bytes int64) string {
	const unit int64 = 1000
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := unit, 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB",
		float64(bytes)/float64(div),
		"kMGTPE"[exp])
}

// serveCard writes the picture of one catalog card. Synthetic cards have no
// picture and are reported as missing.
func serveCard(cfg *Config, cards *catalog.Catalog, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		key, err := strconv.Atoi(p.ByName("key"))
		if err != nil {
			http.Error(w, "invalid card key", http.StatusBadRequest)

			return
		}

		encoded, err := cards.Encoded(key)
		if err != nil || encoded == "" {
			http.NotFound(w, r)

			return
		}

		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			http.Error(w, "corrupt card image", http.StatusInternalServerError)
			errs <- fmt.Errorf("decode card %d: %w", key, err)

			return
		}

		cacheFor(w, 24*time.Hour)
		w.Header().Set("Content-Type", http.DetectContentType(data))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		written, err := w.Write(data)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Card #%d (%s) to %s in %s",
			key,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}
