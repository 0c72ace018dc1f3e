// Package export produces XLSX workbooks of submitted pack slips for
// the office's receiving log.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hurricanefence/packslips/constants"
	"github.com/hurricanefence/packslips/internal/repository"
)

// Service is a tiny façade over the repository that produces XLSX bytes
// for exports.
type Service struct {
	repo   repository.PackSlipRepository
	logger *slog.Logger
}

func NewService(repo repository.PackSlipRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ExportSubmittedXLSX returns a workbook with one row per line item
// across all submitted pack slips, newest slip first.
func (s *Service) ExportSubmittedXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	slips, err := s.repo.List(ctx, constants.DocStatusSubmitted, 0)
	if err != nil {
		return nil, fmt.Errorf("query submitted pack slips: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Pack Slips"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// drop the default sheet excelize creates
	if sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Submitted",
		"Vendor",
		"PO / Job",
		"Received Date",
		"SKU",
		"Description",
		"Quantity",
		"Unit",
		"Notes",
		"Source File",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	lineCount := 0
	for _, ps := range slips {
		submitted := ""
		if ps.SubmittedAt != nil {
			submitted = ps.SubmittedAt.Format("2006-01-02")
		}

		vendor := ps.Metadata.Vendor
		if vendor == "" {
			vendor = ps.Vendor.VendorID
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		for _, item := range ps.LineItems {
			write(1, submitted)
			write(2, vendor)
			write(3, ps.Metadata.POOrJob)
			write(4, ps.Metadata.ReceivedDate)
			write(5, item.SKU)
			write(6, truncate(item.Description, 140))
			write(7, item.Quantity)
			write(8, item.Unit)
			write(9, truncate(item.Notes, 140))
			write(10, ps.FileName)
			row++
			lineCount++
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 12) // submitted
	_ = f.SetColWidth(sheet, "B", "B", 24) // vendor
	_ = f.SetColWidth(sheet, "C", "D", 16) // po/job, received
	_ = f.SetColWidth(sheet, "E", "E", 16) // sku
	_ = f.SetColWidth(sheet, "F", "F", 48) // description
	_ = f.SetColWidth(sheet, "G", "H", 10) // qty, unit
	_ = f.SetColWidth(sheet, "I", "I", 32) // notes
	_ = f.SetColWidth(sheet, "J", "J", 36) // file

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"pack_slips", len(slips),
		"line_items", lineCount,
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
