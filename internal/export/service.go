// Package export renders stored extraction records as an XLSX workbook for
// manual review of flagged documents.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/seremi5/expense-management/internal/repository"
)

// Service is a tiny façade over the record repository that produces XLSX
// bytes for review exports.
type Service struct {
	records repository.ExtractionRecordRepository
	logger  *slog.Logger
}

func NewService(records repository.ExtractionRecordRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{records: records, logger: logger}
}

// ExportRecordsXLSX returns an XLSX workbook (as bytes) for the most recent
// extraction records, newest first.
func (s *Service) ExportRecordsXLSX(ctx context.Context, limit int) ([]byte, error) {
	start := time.Now()

	recs, err := s.records.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query extraction records: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Extractions"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Extracted At",
		"File",
		"Kind",
		"Status",
		"Validation Errors",
		"Warnings",
		"Failure",
		"Duration (ms)",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.CreatedAt.Format("2006-01-02 15:04:05"))
		write(2, r.FileName)
		write(3, string(r.Kind))
		write(4, string(r.Status))
		write(5, truncate(strings.Join(r.Errors, "; "), 140))
		write(6, truncate(strings.Join(r.Warnings, "; "), 140))
		write(7, truncate(r.Failure, 140))
		write(8, r.DurationMS)

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 20) // timestamp
	_ = f.SetColWidth(sheet, "B", "B", 40) // file
	_ = f.SetColWidth(sheet, "C", "D", 14) // kind, status
	_ = f.SetColWidth(sheet, "E", "G", 48) // findings
	_ = f.SetColWidth(sheet, "H", "H", 14) // duration

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// truncate caps s at n runes, never splitting a multi-byte character.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return string(r[:1])
	}
	return string(r[:n-1]) + "…"
}
