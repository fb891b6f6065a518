package llm

import (
	"context"
	"fmt"

	"propdoc/internal/entity"
)

// ExtractRequest carries everything the model boundary needs for one call.
type ExtractRequest struct {
	// Text is the (already windowed) document text.
	Text string
	// DocumentLabel is a human hint, typically the original filename.
	DocumentLabel string
}

// Extractor is the interface the pipeline depends on. One operation:
// windowed text in, raw model response (with usage metadata) out, or a
// typed *ExtractionError.
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest) (*entity.RawModelResponse, error)
}

// ExtractionError is the single failure kind the model boundary reports.
// Reason distinguishes transport failures, unparseable output and empty
// results; the pipeline treats all of them as fatal to the run.
type ExtractionError struct {
	Reason string // "http", "timeout", "decode", "empty"
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction %s", e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
