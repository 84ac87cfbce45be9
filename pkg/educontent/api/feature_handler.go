package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/edu-content/pkg/educontent"
)

// FeatureHandler handles the miscellaneous media-feed endpoints
type FeatureHandler struct {
	service educontent.Service
}

// NewFeatureHandler creates a new feature handler
func NewFeatureHandler(service educontent.Service) *FeatureHandler {
	return &FeatureHandler{service: service}
}

// Routes returns the router for feature endpoints
func (h *FeatureHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/create", h.CreateFeature)
	r.Get("/get-all", h.ListFeatures)
	r.Delete("/{id}", h.DeleteFeature)
	return r
}

// CreateFeature creates a feature with up to ten image or video files.
func (h *FeatureHandler) CreateFeature(w http.ResponseWriter, r *http.Request) {
	files, closeFiles, err := openUploads(r, "files")
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer closeFiles()

	req := educontent.CreateFeatureRequest{
		Title:    formValue(r, "title"),
		Notes:    formValue(r, "notes"),
		Category: formValue(r, "category"),
		Files:    files,
	}
	if req.Title == "" {
		writeError(w, r, &educontent.ValidationError{Reason: "title is required"})
		return
	}

	feature, err := h.service.CreateFeature(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("feature created", "feature_id", feature.ID, "files", len(feature.Files))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, feature)
}

func (h *FeatureHandler) ListFeatures(w http.ResponseWriter, r *http.Request) {
	features, err := h.service.ListFeatures(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, features)
}

func (h *FeatureHandler) DeleteFeature(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.DeleteFeature(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("feature deleted", "feature_id", id)

	render.NoContent(w, r)
}
