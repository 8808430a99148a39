package web

import (
	_ "embed"
	"net/http"

	"go.uber.org/zap"
)

//go:embed static/index.html
var indexHTML []byte

// IndexHandler serves the search page.
func IndexHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(indexHTML); err != nil {
			logger.Error("failed to write index page", zap.Error(err))
		}
	}
}
