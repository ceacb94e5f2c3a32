package api

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/rpupo63/portfolio-site-backend/media"
	"github.com/rs/zerolog/log"
)

const assetCacheDuration = 24 * time.Hour

// newAssetHandler serves uploaded media from a local store at /uploads/*.
func newAssetHandler(store *media.LocalStore) http.Handler {
	logger := log.With().Str("handlerName", "assetHandler").Logger()
	logger.Info().Str("root", store.Root()).Msg("serving uploads")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rel := strings.TrimPrefix(r.URL.Path, "/")
		if !media.IsUploadPath(rel) || strings.Contains(rel, "..") || strings.HasPrefix(path.Base(rel), ".") {
			http.NotFound(w, r)
			return
		}

		full, err := store.FullPath(rel)
		if err != nil {
			logger.Warn().Str("path", r.URL.Path).Msg("asset request outside media root")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		info, err := os.Stat(full)
		if os.IsNotExist(err) || (err == nil && info.IsDir()) {
			http.NotFound(w, r)
			return
		} else if err != nil {
			logger.Error().Err(err).Str("path", full).Msg("error stating asset")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(assetCacheDuration.Seconds())))
		w.Header().Set("Expires", time.Now().Add(assetCacheDuration).UTC().Format(http.TimeFormat))
		w.Header().Set("X-Content-Type-Options", "nosniff")

		http.ServeFile(w, r, full)
	})
}
