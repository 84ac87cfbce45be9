package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/tendant/edu-content/pkg/educontent"
)

// errorResponse is the JSON body for every failed request. It names the
// violated constraint and nothing else.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps service errors to HTTP status codes in one place:
// validation failures are 400, unresolved ids 404, blocked deletes 409,
// storage faults 502, everything else 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	var validationErr *educontent.ValidationError
	var storageErr *educontent.StorageError

	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.Is(err, educontent.ErrCourseNotFound),
		errors.Is(err, educontent.ErrVideoNotFound),
		errors.Is(err, educontent.ErrQuestionNotFound),
		errors.Is(err, educontent.ErrFeatureNotFound):
		status = http.StatusNotFound
	case errors.Is(err, educontent.ErrCourseHasVideos):
		status = http.StatusConflict
	case errors.As(err, &storageErr):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		slog.Info("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}

	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: err.Error()})
}
