package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"propdoc/internal/common"
	"propdoc/internal/entity"
)

// ExtractionRecordRepository stores the three result payloads of a successful
// pipeline run. They are written in a single row so either all three exist
// (document completed) or none do.
type ExtractionRecordRepository interface {
	Create(ctx context.Context, docID uuid.UUID, canonical *entity.CanonicalRecord, raw *entity.RawModelResponse, graph *entity.SemanticGraph) error
	Get(ctx context.Context, docID uuid.UUID) (*ExtractionRecord, error)
}

// ExtractionRecord is the stored triple, returned verbatim for audit export.
type ExtractionRecord struct {
	DocumentID uuid.UUID
	Canonical  *entity.CanonicalRecord
	Raw        *entity.RawModelResponse
	Graph      *entity.SemanticGraph
	CreatedAt  time.Time
}

type extractionRecordRepo struct {
	db  *sql.DB
	log *slog.Logger
}

func NewExtractionRecordRepository(db *sql.DB, log *slog.Logger) ExtractionRecordRepository {
	if log == nil {
		log = slog.Default()
	}
	return &extractionRecordRepo{db: db, log: log}
}

func (r *extractionRecordRepo) Create(ctx context.Context, docID uuid.UUID, canonical *entity.CanonicalRecord, raw *entity.RawModelResponse, graph *entity.SemanticGraph) error {
	cb, err := json.Marshal(canonical)
	if err != nil {
		return common.WrapError(err, "encode canonical record")
	}
	rb, err := json.Marshal(raw)
	if err != nil {
		return common.WrapError(err, "encode raw response")
	}
	gb, err := json.Marshal(graph)
	if err != nil {
		return common.WrapError(err, "encode semantic graph")
	}

	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO extraction_records (document_id, canonical_json, raw_response_json, semantic_json, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		docID.String(), string(cb), string(rb), string(gb), time.Now().UTC(),
	); err != nil {
		r.log.Error("extraction record create failed", "document_id", docID, "error", err)
		return common.WrapError(err, "create extraction record")
	}
	r.log.Info("extraction record created", "document_id", docID,
		"canonical_bytes", len(cb), "raw_bytes", len(rb), "semantic_bytes", len(gb))
	return nil
}

func (r *extractionRecordRepo) Get(ctx context.Context, docID uuid.UUID) (*ExtractionRecord, error) {
	var (
		cb, rb, gb string
		createdAt  time.Time
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT canonical_json, raw_response_json, semantic_json, created_at
		 FROM extraction_records WHERE document_id = ?`, docID.String(),
	).Scan(&cb, &rb, &gb, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "get extraction record")
	}

	rec := &ExtractionRecord{DocumentID: docID, CreatedAt: createdAt}
	if err := json.Unmarshal([]byte(cb), &rec.Canonical); err != nil {
		return nil, common.WrapError(err, "decode canonical record")
	}
	if err := json.Unmarshal([]byte(rb), &rec.Raw); err != nil {
		return nil, common.WrapError(err, "decode raw response")
	}
	if err := json.Unmarshal([]byte(gb), &rec.Graph); err != nil {
		return nil, common.WrapError(err, "decode semantic graph")
	}
	return rec, nil
}
