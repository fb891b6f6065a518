// Package server exposes the REST boundary: document upload, status polling,
// audit retrieval of the stored model response and semantic graph, and XLSX
// export. The pipeline itself runs behind the async queue; upload returns as
// soon as the document row exists and the job is queued.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"propdoc/internal/async"
	"propdoc/internal/common"
	"propdoc/internal/export"
	"propdoc/internal/repository"
)

type Config struct {
	MaxUploadBytes int64
	TempDir        string
}

type Server struct {
	cfg     Config
	docs    repository.DocumentRepository
	records repository.ExtractionRecordRepository
	queue   *async.Queue
	export  *export.Service
	logger  *slog.Logger
}

func New(
	cfg Config,
	docs repository.DocumentRepository,
	records repository.ExtractionRecordRepository,
	queue *async.Queue,
	exporter *export.Service,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		docs:    docs,
		records: records,
		queue:   queue,
		export:  exporter,
		logger:  logger,
	}
}

// Routes builds the chi router for the API surface.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/documents/upload", s.handleUpload)
		r.Get("/documents", s.handleList)
		r.Get("/documents/{id}", s.handleGet)
		r.Get("/documents/{id}/model-response", s.handleModelResponse)
		r.Get("/documents/{id}/semantic", s.handleSemantic)
		r.Delete("/documents/{id}", s.handleDelete)
		r.Get("/export/xlsx", s.handleExportXLSX)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("response encode failed", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// statusFromErr maps repository sentinels to HTTP codes.
func statusFromErr(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
