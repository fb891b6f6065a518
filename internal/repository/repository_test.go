package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propdoc/constants"
	"propdoc/internal/common"
	"propdoc/internal/entity"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), Config{
		Path:        filepath.Join(t.TempDir(), "propdoc.db"),
		DialTimeout: 5 * time.Second,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestDocument() *entity.Document {
	return &entity.Document{
		ID:           uuid.New(),
		OriginalName: "deed.pdf",
		FileSize:     1234,
		MediaType:    constants.AcceptedMediaType,
		Status:       constants.StatusUploaded,
		UploadedAt:   time.Now().UTC().Truncate(time.Second),
	}
}

func TestDocumentLifecycle(t *testing.T) {
	db := openTestDB(t)
	repo := NewDocumentRepository(db, nil)
	ctx := context.Background()

	doc := newTestDocument()
	require.NoError(t, repo.Create(ctx, doc))

	got, err := repo.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, "deed.pdf", got.OriginalName)
	assert.Equal(t, constants.StatusUploaded, got.Status)
	assert.Nil(t, got.CompletedAt)
	assert.Nil(t, got.ErrorMessage)

	require.NoError(t, repo.UpdateStatus(ctx, doc.ID, constants.StatusProcessing, nil, nil))

	completedAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateStatus(ctx, doc.ID, constants.StatusCompleted, nil, &completedAt))

	got, err = repo.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
}

func TestUpdateStatusRejectsIllegalTransitions(t *testing.T) {
	db := openTestDB(t)
	repo := NewDocumentRepository(db, nil)
	ctx := context.Background()

	doc := newTestDocument()
	require.NoError(t, repo.Create(ctx, doc))

	// uploaded cannot jump straight to completed
	err := repo.UpdateStatus(ctx, doc.ID, constants.StatusCompleted, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConflict))

	// terminal states are frozen
	msg := "model call timeout after 90s"
	require.NoError(t, repo.UpdateStatus(ctx, doc.ID, constants.StatusFailed, &msg, nil))
	err = repo.UpdateStatus(ctx, doc.ID, constants.StatusProcessing, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConflict))

	status, err := repo.GetStatus(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusFailed, status)

	got, err := repo.Get(ctx, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ErrorMessage)
	assert.Contains(t, *got.ErrorMessage, "timeout")
}

func TestUpdateStatusUnknownDocument(t *testing.T) {
	db := openTestDB(t)
	repo := NewDocumentRepository(db, nil)

	err := repo.UpdateStatus(context.Background(), uuid.New(), constants.StatusProcessing, nil, nil)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestListOrdersNewestFirst(t *testing.T) {
	db := openTestDB(t)
	repo := NewDocumentRepository(db, nil)
	ctx := context.Background()

	older := newTestDocument()
	older.UploadedAt = time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	newer := newTestDocument()
	newer.OriginalName = "appraisal.pdf"

	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	docs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "appraisal.pdf", docs[0].OriginalName)
	assert.Equal(t, "deed.pdf", docs[1].OriginalName)
}

func TestDeleteRemovesDocumentAndRecord(t *testing.T) {
	db := openTestDB(t)
	docs := NewDocumentRepository(db, nil)
	records := NewExtractionRecordRepository(db, nil)
	ctx := context.Background()

	doc := newTestDocument()
	require.NoError(t, docs.Create(ctx, doc))
	require.NoError(t, records.Create(ctx, doc.ID, &entity.CanonicalRecord{Address: "1 Oak St"},
		&entity.RawModelResponse{Model: "grok-2-1212"}, &entity.SemanticGraph{}))

	require.NoError(t, docs.Delete(ctx, doc.ID))

	_, err := docs.Get(ctx, doc.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))
	_, err = records.Get(ctx, doc.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	assert.True(t, errors.Is(docs.Delete(ctx, doc.ID), common.ErrNotFound))
}

func TestDeleteRollsBackRecordWhenDocumentMissing(t *testing.T) {
	db := openTestDB(t)
	docs := NewDocumentRepository(db, nil)
	records := NewExtractionRecordRepository(db, nil)
	ctx := context.Background()

	// a record without its document row; delete must fail without touching it
	orphan := uuid.New()
	require.NoError(t, records.Create(ctx, orphan, &entity.CanonicalRecord{},
		&entity.RawModelResponse{}, &entity.SemanticGraph{}))

	err := docs.Delete(ctx, orphan)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	_, err = records.Get(ctx, orphan)
	assert.NoError(t, err, "record delete must roll back with the failed document delete")
}

func TestExtractionRecordRoundTrip(t *testing.T) {
	db := openTestDB(t)
	docs := NewDocumentRepository(db, nil)
	records := NewExtractionRecordRepository(db, nil)
	ctx := context.Background()

	doc := newTestDocument()
	require.NoError(t, docs.Create(ctx, doc))

	beds := 3
	baths := 2.5
	canonical := &entity.CanonicalRecord{
		Address:      "1 Oak St",
		City:         "Springfield",
		State:        "IL",
		Bedrooms:     &beds,
		Bathrooms:    &baths,
		PropertyType: "townhouse",
	}
	raw := &entity.RawModelResponse{
		Model:        "grok-2-1212",
		PromptTokens: 120,
		TotalTokens:  160,
		Content:      `{"address":"1 Oak St"}`,
		ParsedResult: []byte(`{"address":"1 Oak St"}`),
		Timestamp:    time.Now().UTC().Truncate(time.Second),
	}
	graph := &entity.SemanticGraph{
		RootID:    doc.ID.String() + "_building_1",
		RootClass: constants.TownhouseBuilding,
		Parts:     []entity.GraphPart{},
		Assets:    []entity.GraphAsset{},
	}
	require.NoError(t, records.Create(ctx, doc.ID, canonical, raw, graph))

	rec, err := records.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, rec.DocumentID)
	assert.Equal(t, "1 Oak St", rec.Canonical.Address)
	require.NotNil(t, rec.Canonical.Bedrooms)
	assert.Equal(t, 3, *rec.Canonical.Bedrooms)
	assert.Equal(t, "grok-2-1212", rec.Raw.Model)
	assert.JSONEq(t, `{"address":"1 Oak St"}`, string(rec.Raw.ParsedResult))
	assert.Equal(t, constants.TownhouseBuilding, rec.Graph.RootClass)
	assert.False(t, rec.CreatedAt.IsZero())

	_, err = records.Get(ctx, uuid.New())
	assert.True(t, errors.Is(err, common.ErrNotFound))
}
