package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const assetCacheDuration = 24 * time.Hour

// AssetServer serves stored files from dir. It must be mounted on a route
// ending in "/*"; the wildcard is the path relative to dir.
//
//	r.Get("/uploads/*", AssetServer(cfg.UploadsPath, log))
func AssetServer(dir string, log logrus.FieldLogger) http.HandlerFunc {
	assetDir := filepath.Clean(dir)

	return func(w http.ResponseWriter, r *http.Request) {
		relativePath := chi.URLParam(r, "*")
		if relativePath == "" || strings.Contains(relativePath, "..") {
			writeError(w, http.StatusBadRequest, "Invalid asset path")
			return
		}

		assetPath := filepath.Join(assetDir, filepath.FromSlash(relativePath))
		if rel, err := filepath.Rel(assetDir, assetPath); err != nil || strings.HasPrefix(rel, "..") {
			log.WithFields(logrus.Fields{"request": r.URL.Path, "resolved": assetPath}).
				Warn("attempted asset access outside designated directory")
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}

		info, err := os.Stat(assetPath)
		if os.IsNotExist(err) || (err == nil && info.IsDir()) {
			writeError(w, http.StatusNotFound, "Asset not found")
			return
		} else if err != nil {
			log.WithError(err).WithField("path", assetPath).Error("error stating asset file")
			writeError(w, http.StatusInternalServerError, msgInternalError)
			return
		}

		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(assetCacheDuration.Seconds())))
		w.Header().Set("Expires", time.Now().Add(assetCacheDuration).Format(http.TimeFormat))
		http.ServeFile(w, r, assetPath)
	}
}
