package entity

import (
	"encoding/json"
	"time"
)

// CanonicalRecord is the normalized extraction result for one document.
// Every field is optional; a nil pointer means the model did not report the
// field, which is distinct from a zero or false value. Immutable once built.
type CanonicalRecord struct {
	// identity / location
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	County  string `json:"county,omitempty"`

	// physical attributes
	SquareFootage *float64 `json:"squareFootage,omitempty"`
	LotSize       *float64 `json:"lotSize,omitempty"`
	Bedrooms      *int     `json:"bedrooms,omitempty"`
	Bathrooms     *float64 `json:"bathrooms,omitempty"`
	YearBuilt     *int     `json:"yearBuilt,omitempty"`
	Stories       *int     `json:"stories,omitempty"`

	// financial attributes
	SalePrice     *float64 `json:"salePrice,omitempty"`
	AssessedValue *float64 `json:"assessedValue,omitempty"`
	MarketValue   *float64 `json:"marketValue,omitempty"`
	AnnualTax     *float64 `json:"annualTax,omitempty"`

	// legal / identifier attributes
	ParcelNumber     string `json:"parcelNumber,omitempty"`
	LegalDescription string `json:"legalDescription,omitempty"`
	OwnerName        string `json:"ownerName,omitempty"`

	// temporal attributes
	SaleDate      string `json:"saleDate,omitempty"`
	RecordingDate string `json:"recordingDate,omitempty"`

	// condition / feature attributes
	Condition  string `json:"condition,omitempty"`
	Heating    *bool  `json:"heating,omitempty"`
	Cooling    *bool  `json:"cooling,omitempty"`
	HasGarage  *bool  `json:"hasGarage,omitempty"`
	HasPool    *bool  `json:"hasPool,omitempty"`

	// classification
	PropertyType    string `json:"propertyType,omitempty"`
	DocumentType    string `json:"documentType,omitempty"`
	DocumentSubtype string `json:"documentSubtype,omitempty"`

	// Extras keeps top-level keys the model returned that are not part of
	// the canonical set. Preserved, never interpreted.
	Extras map[string]any `json:"extras,omitempty"`
}

// RawModelResponse retains the model call verbatim for auditability.
type RawModelResponse struct {
	Model            string          `json:"model"`
	PromptTokens     int             `json:"promptTokens"`
	CompletionTokens int             `json:"completionTokens"`
	TotalTokens      int             `json:"totalTokens"`
	DurationMs       int64           `json:"responseTimeMs"`
	Content          string          `json:"fullResponseContent"`
	ParsedResult     json.RawMessage `json:"parsedResult,omitempty"`
	Timestamp        time.Time       `json:"timestamp"`
}
