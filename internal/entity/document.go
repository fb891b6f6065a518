package entity

import (
	"time"

	"github.com/google/uuid"

	"propdoc/constants"
)

// Document is one uploaded PDF tracked through the pipeline.
// Mutated only by the orchestrator's status transitions.
type Document struct {
	ID           uuid.UUID                  `json:"id"`
	OriginalName string                     `json:"originalName"`
	FileSize     int64                      `json:"fileSize"`
	MediaType    string                     `json:"mediaType"`
	Status       constants.ProcessingStatus `json:"status"`
	UploadedAt   time.Time                  `json:"uploadedAt"`
	CompletedAt  *time.Time                 `json:"completedAt,omitempty"`
	ErrorMessage *string                    `json:"errorMessage,omitempty"`
}
