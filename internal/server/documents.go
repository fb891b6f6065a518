package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"propdoc/constants"
	"propdoc/internal/async"
	"propdoc/internal/entity"
)

// handleUpload accepts one multipart PDF, creates the document row and queues
// the pipeline run. The response returns before processing starts; callers
// poll GET /api/documents/{id} for the terminal state.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("document")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.logger.Warn("upload rejected: payload too large", "limit_bytes", tooLarge.Limit)
			s.writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds the %d byte limit", tooLarge.Limit))
			return
		}
		s.logger.Warn("upload rejected: bad multipart form", "error", err)
		s.writeError(w, http.StatusBadRequest, "multipart field 'document' is required")
		return
	}
	defer func() { _ = file.Close() }()

	mediaType := header.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = mt
	}
	if mediaType != constants.AcceptedMediaType || !constants.IsAllowedExt(filepath.Ext(header.Filename)) {
		s.logger.Warn("upload rejected: unsupported media type",
			"filename", header.Filename, "media_type", mediaType)
		s.writeError(w, http.StatusUnsupportedMediaType, "only application/pdf uploads are accepted")
		return
	}

	tmp, err := os.CreateTemp(s.cfg.TempDir, "propdoc-upload-*.pdf")
	if err != nil {
		s.logger.Error("upload temp file create failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}
	size, err := io.Copy(tmp, file)
	cerr := tmp.Close()
	if err != nil || cerr != nil {
		_ = os.Remove(tmp.Name())
		s.logger.Error("upload write failed", "error", err, "close_error", cerr)
		s.writeError(w, http.StatusBadRequest, "upload payload could not be read")
		return
	}

	doc := &entity.Document{
		ID:           uuid.New(),
		OriginalName: header.Filename,
		FileSize:     size,
		MediaType:    constants.AcceptedMediaType,
		Status:       constants.StatusUploaded,
		UploadedAt:   time.Now().UTC(),
	}
	if err := s.docs.Create(r.Context(), doc); err != nil {
		_ = os.Remove(tmp.Name())
		s.logger.Error("document create failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "could not create document")
		return
	}

	if err := s.queue.Enqueue(r.Context(), async.Job{
		DocumentID:   doc.ID,
		OriginalName: doc.OriginalName,
		TempPath:     tmp.Name(),
		SubmittedAt:  time.Now().UTC(),
	}); err != nil {
		// the run was never dispatched: roll the upload back rather than
		// leaving a document stuck in uploaded with a leaked temp file
		_ = os.Remove(tmp.Name())
		if derr := s.docs.Delete(r.Context(), doc.ID); derr != nil {
			s.logger.Error("upload rollback failed", "document_id", doc.ID, "error", derr)
		}
		s.logger.Error("enqueue failed", "document_id", doc.ID, "error", err)
		s.writeError(w, http.StatusServiceUnavailable, "service is shutting down, retry the upload")
		return
	}

	s.logger.Info("document uploaded", "document_id", doc.ID, "filename", doc.OriginalName, "bytes", size)
	s.writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	docs, err := s.docs.List(r.Context())
	if err != nil {
		s.logger.Error("list documents failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "could not list documents")
		return
	}
	if docs == nil {
		docs = []*entity.Document{}
	}
	s.writeJSON(w, http.StatusOK, docs)
}

// documentView is the detail payload: the document plus, once completed, the
// canonical property data.
type documentView struct {
	*entity.Document
	PropertyData *entity.CanonicalRecord `json:"propertyData,omitempty"`
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}
	doc, err := s.docs.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, statusFromErr(err), "document not found")
		return
	}

	view := documentView{Document: doc}
	if doc.Status == constants.StatusCompleted {
		if rec, err := s.records.Get(r.Context(), id); err == nil {
			view.PropertyData = rec.Canonical
		}
	}
	s.writeJSON(w, http.StatusOK, view)
}

// handleModelResponse serves the stored RawModelResponse verbatim — the audit
// boundary for later re-normalization without re-invoking the model.
func (s *Server) handleModelResponse(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}
	doc, err := s.docs.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, statusFromErr(err), "document not found")
		return
	}
	rec, err := s.records.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, statusFromErr(err), fmt.Sprintf("no model response for document in status %q", doc.Status))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"document":          doc,
		"fullModelResponse": rec.Raw,
	})
}

func (s *Server) handleSemantic(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}
	rec, err := s.records.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, statusFromErr(err), "no semantic graph for this document")
		return
	}
	s.writeJSON(w, http.StatusOK, rec.Graph)
}

// handleDelete removes a document in a terminal state. Deleting while the
// pipeline is in flight is rejected; the run always reaches a terminal state
// first.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}
	status, err := s.docs.GetStatus(r.Context(), id)
	if err != nil {
		s.writeError(w, statusFromErr(err), "document not found")
		return
	}
	if !status.Terminal() {
		s.writeError(w, http.StatusConflict, fmt.Sprintf("document is %s; wait for a terminal state before deleting", status))
		return
	}
	if err := s.docs.Delete(r.Context(), id); err != nil {
		s.writeError(w, statusFromErr(err), "delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	data, err := s.export.ExportXLSX(r.Context())
	if err != nil {
		s.logger.Error("xlsx export failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="properties.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
