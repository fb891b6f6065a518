// Package textacquire turns raw PDF bytes into the best available plain-text
// rendering. It tries a structured parse first and falls back to a heuristic
// scan of the content streams; content that yields almost nothing either way
// is flagged as likely scanned/image-only rather than failing the pipeline.
package textacquire

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"propdoc/constants"
	"propdoc/internal/common"
)

// Result is the outcome of one acquisition attempt.
type Result struct {
	Text                string
	UsedFallback        bool
	LikelyUnextractable bool
}

// UnextractablePlaceholder prefixes the text handed downstream when both
// extraction paths came up near-empty. Downstream stages still receive
// non-empty text so the run can complete with an empty record.
const UnextractablePlaceholder = "This document appears to contain scanned images or non-extractable content. " +
	"No machine-readable text could be recovered from the PDF."

type Acquirer struct {
	logger       *slog.Logger
	minViableLen int
}

func NewAcquirer(logger *slog.Logger) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Acquirer{logger: logger, minViableLen: constants.MinViableTextLen}
}

// AcquireFile reads the document from disk and acquires its text. A read
// failure is the only fatal outcome.
func (a *Acquirer) AcquireFile(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, common.NewAppError("ACQUIRE_READ", fmt.Sprintf("read %s", path), err)
	}
	return a.Acquire(data), nil
}

// Acquire produces the best available text for the given PDF bytes. It never
// fails: a document with no recoverable text yields a placeholder result with
// LikelyUnextractable set.
func (a *Acquirer) Acquire(data []byte) Result {
	start := time.Now()

	text, err := parseStructured(data)
	if err == nil && len(strings.TrimSpace(text)) >= a.minViableLen {
		a.logger.Info("acquire.structured.ok",
			"chars", len(text),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return Result{Text: strings.TrimSpace(text)}
	}
	if err != nil {
		a.logger.Warn("acquire.structured.failed", "error", err)
	}

	fallback := scanContentStreams(data)
	if len(fallback) >= a.minViableLen {
		a.logger.Info("acquire.fallback.ok",
			"chars", len(fallback),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return Result{Text: fallback, UsedFallback: true}
	}

	a.logger.Warn("acquire.unextractable",
		"recovered_chars", len(fallback),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	text = UnextractablePlaceholder
	if fallback != "" {
		text += " Recovered fragment: " + fallback
	}
	return Result{Text: text, UsedFallback: true, LikelyUnextractable: true}
}

// parseStructured runs the library parser over every page.
func parseStructured(data []byte) (text string, err error) {
	defer func() {
		// ledongthuc/pdf panics on some malformed cross-reference tables;
		// a panic here just routes us to the heuristic fallback.
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(content)
	}
	return b.String(), nil
}
