// Package export produces XLSX workbooks of verification records and the
// analytics summary for offline review.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pasecure/idverify/internal/analytics"
	"github.com/pasecure/idverify/internal/record"
	"github.com/pasecure/idverify/internal/repository"
)

// Service is a tiny façade over the records repository that produces XLSX
// bytes for exports.
type Service struct {
	records repository.VerificationRepository
	logger  *slog.Logger
}

func NewService(records repository.VerificationRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{records: records, logger: logger}
}

// ExportXLSX returns a workbook with one sheet of verification records and a
// second sheet of the computed analytics summary.
func (s *Service) ExportXLSX(ctx context.Context, filter repository.ListFilter) ([]byte, error) {
	start := time.Now()

	recs, err := s.records.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	f := excelize.NewFile()
	if err := writeRecordsSheet(f, recs); err != nil {
		return nil, err
	}
	if err := writeSummarySheet(f, recs); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.completed",
		"records", len(recs),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeRecordsSheet(f *excelize.File, recs []*record.Verification) error {
	const sheet = "Verifications"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"ID",
		"Created",
		"Status",
		"Confidence",
		"ID Type",
		"ID Number",
		"Holder Name",
		"Recognition",
		"Processing (ms)",
		"File Path",
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

		write(1, r.ID.String())
		write(2, r.CreatedAt.Format("2006-01-02 15:04:05"))
		write(3, string(r.Status))
		if r.ConfidenceScore != nil {
			write(4, *r.ConfidenceScore)
		}
		if r.DetectedIDType != nil {
			write(5, string(*r.DetectedIDType))
		}
		if r.DetectedIDNumber != nil {
			write(6, *r.DetectedIDNumber)
		}
		if r.DetectedHolderName != nil {
			write(7, *r.DetectedHolderName)
		}
		write(8, string(r.OCRStatus))
		if r.ProcessingTimeMs != nil {
			write(9, *r.ProcessingTimeMs)
		}
		write(10, r.FilePath)

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 38)
	_ = f.SetColWidth(sheet, "B", "B", 20)
	_ = f.SetColWidth(sheet, "C", "C", 12)
	_ = f.SetColWidth(sheet, "E", "G", 22)
	_ = f.SetColWidth(sheet, "J", "J", 50)
	return nil
}

func writeSummarySheet(f *excelize.File, recs []*record.Verification) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	data := make([]record.Verification, len(recs))
	for i, r := range recs {
		data[i] = *r
	}
	ins := analytics.CalculateInsights(data, time.Now())

	rows := [][2]any{
		{"Total", ins.Stats.Total},
		{"Verified", ins.Stats.Verified},
		{"Flagged", ins.Stats.Flagged},
		{"Failed", ins.Stats.Failed},
		{"Pending", ins.Stats.Pending},
		{"Success Rate (%)", ins.Stats.SuccessRate},
		{"Avg Processing (s)", ins.Stats.AvgProcessingTime},
		{"Avg Confidence", ins.AvgConfidence},
		{"Flagged Rate (%)", ins.FlaggedRate},
		{"Peak Hour", ins.PeakHour},
		{"Confidence Trend", string(ins.ConfidenceTrend.Direction)},
	}
	for i, kv := range rows {
		keyCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valCell, _ := excelize.CoordinatesToCellName(2, i+1)
		_ = f.SetCellValue(sheet, keyCell, kv[0])
		_ = f.SetCellValue(sheet, valCell, kv[1])
	}

	recRow := len(rows) + 2
	cell, _ := excelize.CoordinatesToCellName(1, recRow)
	_ = f.SetCellValue(sheet, cell, "Recommendations")
	for i, rec := range ins.Recommendations {
		c, _ := excelize.CoordinatesToCellName(2, recRow+i)
		_ = f.SetCellValue(sheet, c, fmt.Sprintf("[%s] %s", strings.ToUpper(rec.Severity), rec.Message))
	}

	_ = f.SetColWidth(sheet, "A", "A", 24)
	_ = f.SetColWidth(sheet, "B", "B", 70)
	return nil
}
