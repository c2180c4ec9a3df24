// Package export produces XLSX workbooks summarizing the documents attached
// to purchase requests and the fields extracted from them.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/wakaflorien/procureToPay/internal/entity"
	"github.com/wakaflorien/procureToPay/internal/repository"
)

// Service is a tiny façade over repositories that produces XLSX bytes.
type Service struct {
	documents repository.DocumentRepository
	jobs      repository.ExtractJobRepository
	logger    *slog.Logger
}

func NewService(docs repository.DocumentRepository, jobs repository.ExtractJobRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{documents: docs, jobs: jobs, logger: logger}
}

// ExportDocumentsXLSX returns a workbook with one row per document attached
// to the request: file metadata plus the latest extraction outcome.
func (s *Service) ExportDocumentsXLSX(ctx context.Context, requestID uuid.UUID) ([]byte, error) {
	start := time.Now()

	docs, err := s.documents.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Documents"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Uploaded",
		"Filename",
		"Document Type",
		"Vendor",
		"Amount",
		"Line Items",
		"Payment Terms",
		"Extraction Method",
		"Job Status",
		"Error",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, d := range docs {
		job, jerr := s.jobs.LatestForDocument(ctx, d.ID)
		var data entity.DocumentData
		method, status, jobErr := "", "", ""
		if jerr == nil && job != nil {
			if job.Method != nil {
				method = *job.Method
			}
			if job.Status != nil {
				status = *job.Status
			}
			if job.ErrorMessage != nil {
				jobErr = *job.ErrorMessage
			}
			if len(job.ExtractedJSON) > 0 {
				if uerr := json.Unmarshal(job.ExtractedJSON, &data); uerr != nil {
					s.logger.Warn("unreadable extracted fields", "document_id", d.ID, "error", uerr)
				}
			}
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, d.UploadedAt.Format("2006-01-02"))
		write(2, d.Filename)
		write(3, d.DocType)
		write(4, data.Vendor)
		if data.Amount != nil {
			write(5, fmt.Sprintf("%.2f", *data.Amount))
		} else {
			write(5, "")
		}
		write(6, len(data.Items))
		write(7, truncate(data.Terms, 140))
		write(8, method)
		write(9, status)
		if data.Error != "" {
			write(10, data.Error)
		} else {
			write(10, jobErr)
		}

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 12) // date
	_ = f.SetColWidth(sheet, "B", "B", 32) // filename
	_ = f.SetColWidth(sheet, "C", "C", 16) // type
	_ = f.SetColWidth(sheet, "D", "D", 28) // vendor
	_ = f.SetColWidth(sheet, "E", "F", 12) // amount, item count
	_ = f.SetColWidth(sheet, "G", "G", 48) // terms
	_ = f.SetColWidth(sheet, "H", "J", 18) // method, status, error

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"request_id", requestID.String(),
		"rows", len(docs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
