package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/edu-content/pkg/educontent"
)

// QuestionHandler handles question-bank endpoints
type QuestionHandler struct {
	service educontent.Service
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(service educontent.Service) *QuestionHandler {
	return &QuestionHandler{service: service}
}

// Routes returns the router for question endpoints
func (h *QuestionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/add", h.AddQuestion)
	r.Post("/get-all", h.ListQuestions)
	r.Post("/{id}/detail", h.GetQuestion)
	r.Get("/get-subjects", h.ListSubjects)
	return r
}

// AddQuestion creates a question with up to ten document attachments.
func (h *QuestionHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	attachments, closeFiles, err := openUploads(r, "attachments")
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer closeFiles()

	req := educontent.AddQuestionRequest{
		Subject:     formValue(r, "subject"),
		Body:        formValue(r, "body"),
		Attachments: attachments,
	}
	if req.Subject == "" {
		writeError(w, r, &educontent.ValidationError{Reason: "subject is required"})
		return
	}

	question, err := h.service.AddQuestion(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("question added", "question_id", question.ID, "subject", question.Subject)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, question)
}

func (h *QuestionHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	question, err := h.service.GetQuestion(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, question)
}

func (h *QuestionHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.ListQuestions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, questions)
}

// ListSubjects returns the distinct subjects in the question bank.
func (h *QuestionHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.service.ListSubjects(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if subjects == nil {
		subjects = []string{}
	}

	render.JSON(w, r, subjects)
}
