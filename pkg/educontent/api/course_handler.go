package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/tendant/edu-content/pkg/educontent"
)

// CourseHandler handles course and course-video endpoints
type CourseHandler struct {
	service educontent.Service
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(service educontent.Service) *CourseHandler {
	return &CourseHandler{service: service}
}

// Routes returns the router for course endpoints
func (h *CourseHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/create", h.CreateCourse)
	r.Post("/get-all", h.ListCourses)
	r.Get("/{id}", h.GetCourse)
	r.Put("/{id}/update", h.UpdateCourse)
	r.Delete("/{id}", h.DeleteCourse)

	// Video endpoints live under the course tree.
	r.Post("/{courseID}/video", h.AddVideo)
	r.Get("/get-all/{courseID}", h.ListVideos)
	r.Put("/edit/{id}", h.UpdateVideo)
	return r
}

func parseID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, &educontent.ValidationError{Reason: "invalid id"}
	}
	return id, nil
}

// CreateCourse creates a course from a multipart form with up to five images.
func (h *CourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	images, closeFiles, err := openUploads(r, "images")
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer closeFiles()

	req := educontent.CreateCourseRequest{
		Name:     formValue(r, "name"),
		Category: formValue(r, "category"),
		Images:   images,
	}
	if req.Name == "" {
		writeError(w, r, &educontent.ValidationError{Reason: "name is required"})
		return
	}
	if raw := formValue(r, "price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, r, &educontent.ValidationError{Reason: "price must be a number"})
			return
		}
		req.Price = price
	}

	course, err := h.service.CreateCourse(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("course created", "course_id", course.ID, "images", len(course.Images))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, course)
}

func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	course, err := h.service.GetCourse(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, course)
}

func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.ListCourses(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, courses)
}

// UpdateCourse applies field updates; supplying images replaces the stored
// gallery wholesale.
func (h *CourseHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	images, closeFiles, err := openUploads(r, "images")
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer closeFiles()

	req := educontent.UpdateCourseRequest{
		ID:       id,
		Name:     formValue(r, "name"),
		Category: formValue(r, "category"),
		Images:   images,
	}
	if raw := formValue(r, "price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, r, &educontent.ValidationError{Reason: "price must be a number"})
			return
		}
		req.Price = &price
	}

	course, err := h.service.UpdateCourse(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, course)
}

func (h *CourseHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.DeleteCourse(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("course deleted", "course_id", id)

	render.NoContent(w, r)
}

// AddVideo uploads a single video file and binds it to the course in the URL.
func (h *CourseHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseID(r, "courseID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	file, closeFiles, err := openSingleUpload(r, "file")
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer closeFiles()

	req := educontent.AddVideoRequest{
		CourseID: courseID,
		Chapter:  formValue(r, "chapter"),
		Content:  formValue(r, "content"),
		File:     file,
	}

	video, err := h.service.AddVideo(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("video added", "video_id", video.ID, "course_id", courseID)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, video)
}

func (h *CourseHandler) ListVideos(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseID(r, "courseID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	videos, err := h.service.ListVideosByCourse(r.Context(), courseID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, videos)
}

// UpdateVideo applies field updates; supplying a file replaces the stored one.
func (h *CourseHandler) UpdateVideo(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	file, closeFiles, err := openSingleUpload(r, "file")
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer closeFiles()

	req := educontent.UpdateVideoRequest{
		ID:      id,
		Chapter: formValue(r, "chapter"),
		Content: formValue(r, "content"),
		File:    file,
	}

	video, err := h.service.UpdateVideo(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, video)
}
