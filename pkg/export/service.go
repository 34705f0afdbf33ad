package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jordanlanch/talentdb/pkg/domain"
	"github.com/jordanlanch/talentdb/pkg/metrics"
	"github.com/jordanlanch/talentdb/pkg/models"
)

// Service generates candidate exports. Files are streamed back to the
// caller rather than stored server-side.
type Service struct {
	candidates domain.CandidateStore
	metrics    *metrics.Metrics
}

// NewService creates a new export service. metrics may be nil.
func NewService(candidates domain.CandidateStore, m *metrics.Metrics) *Service {
	return &Service{candidates: candidates, metrics: m}
}

// Result is a generated export file.
type Result struct {
	Filename    string
	ContentType string
	Data        []byte
}

var headers = []string{
	"ID", "Name", "Email", "Phone", "Stage", "Role", "Source", "Match Score", "Has CV", "Created At",
}

// ExportCandidates exports all of the user's candidates in the given
// format ("csv" or "excel").
func (s *Service) ExportCandidates(ctx context.Context, userID int, format string) (*Result, error) {
	if format != "csv" && format != "excel" {
		return nil, domain.NewValidationError("invalid format: must be csv or excel")
	}

	candidates, err := s.candidates.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().Format("20060102-150405")

	var result *Result
	if format == "csv" {
		data, err := generateCSV(candidates)
		if err != nil {
			return nil, err
		}
		result = &Result{
			Filename:    fmt.Sprintf("candidates-%s.csv", timestamp),
			ContentType: "text/csv",
			Data:        data,
		}
	} else {
		data, err := generateExcel(candidates)
		if err != nil {
			return nil, err
		}
		result = &Result{
			Filename:    fmt.Sprintf("candidates-%s.xlsx", timestamp),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}
	}

	if s.metrics != nil {
		s.metrics.RecordExportCreated()
	}
	return result, nil
}

func generateCSV(candidates []*models.Candidate) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for _, c := range candidates {
		row := []string{
			strconv.Itoa(c.ID),
			c.Name,
			c.Email,
			c.Phone,
			string(c.Stage),
			c.Role,
			c.Source,
			strconv.Itoa(c.MatchScore()),
			strconv.FormatBool(c.HasCV()),
			c.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func generateExcel(candidates []*models.Candidate) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Candidates"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, c := range candidates {
		row := rowIdx + 2 // Start from row 2 (after header)
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), c.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), c.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), c.Email)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), c.Phone)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), string(c.Stage))
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), c.Role)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), c.Source)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), c.MatchScore())
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), c.HasCV())
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), c.CreatedAt.Format(time.RFC3339))
	}

	for i := range headers {
		col := string(rune('A' + i))
		f.SetColWidth(sheetName, col, col, 18)
	}

	f.SetActiveSheet(index)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
