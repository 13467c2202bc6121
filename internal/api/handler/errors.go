package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gysagsohn/game-tracker-server/internal/api/apierr"
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// writeError writes err, logging it first when it maps to a server error
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if apierr.Status(err) >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	apierr.WriteError(w, err)
}

// pathVar returns a route variable
func pathVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}
