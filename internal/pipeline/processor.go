// Package pipeline owns the per-document state machine and sequences the
// extraction stages: acquire text, window it, call the model, normalize,
// project, persist. A run always reaches a terminal state; every fatal error
// is converted to a failed status with a human-readable message, and the
// temporary upload file is removed on every exit path.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"propdoc/constants"
	"propdoc/internal/llm"
	"propdoc/internal/normalize"
	"propdoc/internal/repository"
	"propdoc/internal/semantic"
	"propdoc/internal/textacquire"
)

// TextAcquirer is the text-acquisition stage as the orchestrator sees it.
type TextAcquirer interface {
	AcquireFile(path string) (textacquire.Result, error)
}

// Config holds orchestration knobs.
type Config struct {
	// MaxPromptChars is the model context budget minus instruction and
	// response overhead, in characters of document text.
	MaxPromptChars int
	// ExtractTimeout is the explicit deadline applied around the model call.
	ExtractTimeout time.Duration
}

type Processor struct {
	logger    *slog.Logger
	cfg       Config
	acquirer  TextAcquirer
	extractor llm.Extractor
	docs      repository.DocumentRepository
	records   repository.ExtractionRecordRepository
}

func NewProcessor(
	logger *slog.Logger,
	cfg Config,
	acquirer TextAcquirer,
	extractor llm.Extractor,
	docs repository.DocumentRepository,
	records repository.ExtractionRecordRepository,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxPromptChars <= 0 {
		cfg.MaxPromptChars = 400_000
	}
	if cfg.ExtractTimeout <= 0 {
		cfg.ExtractTimeout = 2 * time.Minute
	}
	return &Processor{
		logger:    logger,
		cfg:       cfg,
		acquirer:  acquirer,
		extractor: extractor,
		docs:      docs,
		records:   records,
	}
}

// ProcessDocument runs the whole pipeline for one uploaded document. It is
// invoked exactly once per document identity; resubmission creates a new
// document. tempPath is the scoped upload file, removed before return.
func (p *Processor) ProcessDocument(ctx context.Context, docID uuid.UUID, originalName, tempPath string) error {
	start := time.Now()
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			p.logger.Warn("pipeline.tempfile.remove_failed", "document_id", docID, "path", tempPath, "error", err)
		}
	}()

	if err := p.docs.UpdateStatus(ctx, docID, constants.StatusProcessing, nil, nil); err != nil {
		p.logger.Error("pipeline.start.failed", "document_id", docID, "error", err)
		return err
	}

	// stage 1: text acquisition
	acq, err := p.acquirer.AcquireFile(tempPath)
	if err != nil {
		return p.fail(ctx, docID, fmt.Sprintf("text acquisition failed: %v", err))
	}
	p.logger.Info("pipeline.acquire.ok",
		"document_id", docID,
		"chars", len(acq.Text),
		"fallback", acq.UsedFallback,
		"likely_unextractable", acq.LikelyUnextractable,
	)

	// stage 2: windowing (pure)
	windowed := llm.Window(acq.Text, p.cfg.MaxPromptChars)
	if len(windowed) < len(acq.Text) {
		p.logger.Info("pipeline.window.truncated",
			"document_id", docID, "from_chars", len(acq.Text), "to_chars", len(windowed))
	}

	// stage 3: model extraction, with an explicit deadline around the call
	extractCtx, cancel := context.WithTimeout(ctx, p.cfg.ExtractTimeout)
	raw, err := p.extractor.Extract(extractCtx, llm.ExtractRequest{
		Text:          windowed,
		DocumentLabel: originalName,
	})
	cancel()
	if err != nil {
		return p.fail(ctx, docID, err.Error())
	}

	// stages 4+5: normalization and projection degrade field-by-field and
	// never fail the run
	canonical := normalize.NormalizeRaw(raw.ParsedResult)
	graph := semantic.Project(canonical, docID)

	// stage 6: persist results, then mark completed
	if err := p.records.Create(ctx, docID, canonical, raw, graph); err != nil {
		return p.fail(ctx, docID, fmt.Sprintf("persist extraction results: %v", err))
	}
	completedAt := time.Now().UTC()
	if err := p.docs.UpdateStatus(ctx, docID, constants.StatusCompleted, nil, &completedAt); err != nil {
		p.logger.Error("pipeline.complete.failed", "document_id", docID, "error", err)
		return err
	}

	p.logger.Info("pipeline.ok",
		"document_id", docID,
		"model", raw.Model,
		"total_tokens", raw.TotalTokens,
		"parts", len(graph.Parts),
		"assets", len(graph.Assets),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// fail records the terminal failed state. The completion timestamp stays
// unset on this path.
func (p *Processor) fail(ctx context.Context, docID uuid.UUID, message string) error {
	p.logger.Error("pipeline.failed", "document_id", docID, "message", message)
	// the terminal write must land even when the run context already expired
	ctx = context.WithoutCancel(ctx)
	if err := p.docs.UpdateStatus(ctx, docID, constants.StatusFailed, &message, nil); err != nil {
		p.logger.Error("pipeline.fail_status.failed", "document_id", docID, "error", err)
		return err
	}
	return fmt.Errorf("pipeline failed for %s: %s", docID, message)
}
