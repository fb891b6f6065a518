package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"propdoc/constants"
	"propdoc/internal/common"
	"propdoc/internal/repository"
)

// Service produces XLSX bytes summarising completed extractions.
type Service struct {
	docs    repository.DocumentRepository
	records repository.ExtractionRecordRepository
	logger  *slog.Logger
}

func NewService(docs repository.DocumentRepository, records repository.ExtractionRecordRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{docs: docs, records: records, logger: logger}
}

// ExportXLSX returns a workbook with one row per completed document.
func (s *Service) ExportXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	docs, err := s.docs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Properties"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{
		"Document",
		"Uploaded At",
		"Property Type",
		"Address",
		"City",
		"State",
		"Zip",
		"Bedrooms",
		"Bathrooms",
		"Square Footage",
		"Year Built",
		"Sale Price (USD)",
		"Parcel Number",
		"Document Type",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	row := 2
	for _, doc := range docs {
		if doc.Status != constants.StatusCompleted {
			continue
		}
		rec, err := s.records.Get(ctx, doc.ID)
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Warn("completed document without extraction record", "document_id", doc.ID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load record %s: %w", doc.ID, err)
		}

		values := []any{
			doc.OriginalName,
			doc.UploadedAt.UTC().Format("2006-01-02 15:04:05"),
			rec.Canonical.PropertyType,
			rec.Canonical.Address,
			rec.Canonical.City,
			rec.Canonical.State,
			rec.Canonical.ZipCode,
			derefInt(rec.Canonical.Bedrooms),
			derefFloat(rec.Canonical.Bathrooms),
			derefFloat(rec.Canonical.SquareFootage),
			derefInt(rec.Canonical.YearBuilt),
			derefFloat(rec.Canonical.SalePrice),
			rec.Canonical.ParcelNumber,
			rec.Canonical.DocumentType,
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	s.logger.Info("export.xlsx.ok", "rows", row-2, "bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

func derefInt(p *int) any {
	if p == nil {
		return ""
	}
	return *p
}

func derefFloat(p *float64) any {
	if p == nil {
		return ""
	}
	return *p
}
