package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const assetCacheDuration = 24 * time.Hour

// AssetServer serves stored files from baseStoragePath/subDir. It must be
// mounted on a wildcard route, e.g.
//
//	r.Get("/evidencias/*", AssetServer(cfg.MediaStoragePath, "evidencias", logger))
func AssetServer(baseStoragePath, subDir string, logger *zap.Logger) http.HandlerFunc {
	fullAssetDirPath := filepath.Clean(filepath.Join(baseStoragePath, subDir))
	logger.Info("serving assets", zap.String("route", "/"+subDir+"/*"), zap.String("dir", fullAssetDirPath))

	return func(w http.ResponseWriter, r *http.Request) {
		relativePath := chi.URLParam(r, "*")
		if relativePath == "" || strings.Contains(relativePath, "..") {
			writeError(w, http.StatusBadRequest, "Ruta de archivo inválida", nil)
			return
		}

		cleanedAssetPath := filepath.Clean(filepath.Join(fullAssetDirPath, filepath.FromSlash(relativePath)))
		if !strings.HasPrefix(cleanedAssetPath, fullAssetDirPath+string(filepath.Separator)) {
			logger.Warn("asset access outside designated directory",
				zap.String("request", r.URL.Path),
				zap.String("resolved", cleanedAssetPath),
			)
			writeError(w, http.StatusForbidden, msgForbidden, nil)
			return
		}

		info, err := os.Stat(cleanedAssetPath)
		if os.IsNotExist(err) || (err == nil && info.IsDir()) {
			writeError(w, http.StatusNotFound, "Archivo no encontrado", nil)
			return
		} else if err != nil {
			logger.Error("failed to stat asset", zap.String("path", cleanedAssetPath), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Error al obtener el archivo", nil)
			return
		}

		w.Header().Set("Cache-Control", fmt.Sprintf("private, max-age=%d", int(assetCacheDuration.Seconds())))
		http.ServeFile(w, r, cleanedAssetPath)
	}
}
