package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"propdoc/constants"
	"propdoc/internal/common"
	"propdoc/internal/entity"
)

// DocumentRepository is the persistence boundary the pipeline depends on.
// UpdateStatus is only ever called by the orchestrator for a document's
// single pipeline run.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status constants.ProcessingStatus, errorMessage *string, completedAt *time.Time) error
	GetStatus(ctx context.Context, id uuid.UUID) (constants.ProcessingStatus, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	List(ctx context.Context) ([]*entity.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentRepo struct {
	db  *sql.DB
	log *slog.Logger
}

func NewDocumentRepository(db *sql.DB, log *slog.Logger) DocumentRepository {
	if log == nil {
		log = slog.Default()
	}
	return &documentRepo{db: db, log: log}
}

func (r *documentRepo) Create(ctx context.Context, doc *entity.Document) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, original_name, file_size, media_type, status, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID.String(), doc.OriginalName, doc.FileSize, doc.MediaType, string(doc.Status), doc.UploadedAt.UTC(),
	)
	if err != nil {
		r.log.Error("document create failed", "document_id", doc.ID, "error", err)
		return common.WrapError(err, "create document")
	}
	r.log.Info("document created", "document_id", doc.ID, "name", doc.OriginalName, "size", doc.FileSize)
	return nil
}

// UpdateStatus advances the document state machine. Transitions out of a
// terminal state are rejected, never applied.
func (r *documentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status constants.ProcessingStatus, errorMessage *string, completedAt *time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return common.WrapError(err, "begin status update")
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	if err := tx.QueryRowContext(ctx, `SELECT status FROM documents WHERE id = ?`, id.String()).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		return common.WrapError(err, "read current status")
	}
	if !constants.CanTransition(constants.ProcessingStatus(current), status) {
		return fmt.Errorf("illegal transition %s -> %s: %w", current, status, common.ErrConflict)
	}

	var completed any
	if completedAt != nil {
		completed = completedAt.UTC()
	}
	var msg any
	if errorMessage != nil {
		msg = *errorMessage
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET status = ?, error_message = ?, completed_at = ? WHERE id = ?`,
		string(status), msg, completed, id.String(),
	); err != nil {
		return common.WrapError(err, "update status")
	}
	if err := tx.Commit(); err != nil {
		return common.WrapError(err, "commit status update")
	}

	r.log.Info("document status updated", "document_id", id, "from", current, "to", string(status))
	return nil
}

func (r *documentRepo) GetStatus(ctx context.Context, id uuid.UUID) (constants.ProcessingStatus, error) {
	var s string
	err := r.db.QueryRowContext(ctx, `SELECT status FROM documents WHERE id = ?`, id.String()).Scan(&s)
	if errors.Is(err, sql.ErrNoRows) {
		return "", common.ErrNotFound
	}
	if err != nil {
		return "", common.WrapError(err, "get status")
	}
	return constants.ProcessingStatus(s), nil
}

func (r *documentRepo) Get(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, original_name, file_size, media_type, status, uploaded_at, completed_at, error_message
		 FROM documents WHERE id = ?`, id.String())
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "get document")
	}
	return doc, nil
}

func (r *documentRepo) List(ctx context.Context) ([]*entity.Document, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, original_name, file_size, media_type, status, uploaded_at, completed_at, error_message
		 FROM documents ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, common.WrapError(err, "list documents")
	}
	defer rows.Close()

	var out []*entity.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, common.WrapError(err, "scan document")
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Delete removes the document and its extraction record in one transaction,
// so a completed document can never outlive its record triple.
func (r *documentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return common.WrapError(err, "begin delete")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM extraction_records WHERE document_id = ?`, id.String()); err != nil {
		return common.WrapError(err, "delete extraction record")
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id.String())
	if err != nil {
		return common.WrapError(err, "delete document")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return common.WrapError(err, "commit delete")
	}
	r.log.Info("document deleted", "document_id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*entity.Document, error) {
	var (
		doc       entity.Document
		idStr     string
		status    string
		completed sql.NullTime
		errMsg    sql.NullString
	)
	if err := row.Scan(&idStr, &doc.OriginalName, &doc.FileSize, &doc.MediaType, &status, &doc.UploadedAt, &completed, &errMsg); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse document id %q: %w", idStr, err)
	}
	doc.ID = id
	doc.Status = constants.ProcessingStatus(status)
	if completed.Valid {
		t := completed.Time
		doc.CompletedAt = &t
	}
	if errMsg.Valid {
		m := errMsg.String
		doc.ErrorMessage = &m
	}
	return &doc, nil
}
