package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tendant/edu-content/pkg/educontent"
)

// Options tunes the HTTP server wrapper.
type Options struct {
	// Environment enables permissive CORS when set to "development".
	Environment string

	// UploadDir, when set, is served read-only under UploadURLPrefix so
	// locally stored files resolve over HTTP.
	UploadDir       string
	UploadURLPrefix string
}

// Server wires the content service handlers into one HTTP router.
type Server struct {
	service educontent.Service
	opts    Options
}

// NewServer creates a new HTTP server wrapper
func NewServer(service educontent.Service, opts Options) *Server {
	return &Server{service: service, opts: opts}
}

// Routes sets up the HTTP routes
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	if s.opts.Environment == "development" {
		r.Use(corsAllowAll)
	}

	r.Get("/healthz", s.handleHealth)

	r.Mount("/courses", NewCourseHandler(s.service).Routes())
	r.Mount("/question", NewQuestionHandler(s.service).Routes())
	r.Mount("/features", NewFeatureHandler(s.service).Routes())

	if s.opts.UploadDir != "" && s.opts.UploadURLPrefix != "" {
		prefix := "/" + strings.Trim(s.opts.UploadURLPrefix, "/")
		fileServer := http.StripPrefix(prefix, http.FileServer(http.Dir(s.opts.UploadDir)))
		r.Get(prefix+"/*", fileServer.ServeHTTP)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// corsAllowAll is the permissive development CORS policy.
func corsAllowAll(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
