package pipeline

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/models"
)

// ExcelWriter renders the report as a multi-sheet workbook, one sheet per
// bucket of interest plus the raw input data.
type ExcelWriter struct {
	path string
	mu   sync.Mutex
}

// NewExcelWriter initialises the workbook writer. The file itself is only
// created on Write.
func NewExcelWriter(filename string) (*ExcelWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}
	return &ExcelWriter{path: filename}, nil
}

// Write builds the workbook and saves it in one shot.
func (ew *ExcelWriter) Write(report *models.Report) error {
	ew.mu.Lock()
	defer ew.mu.Unlock()

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	sheets := []struct {
		name string
		rows []models.ScoredRow
	}{
		{"Striking Distance", report.StrikingDistance},
		{"All Checks Passed", report.FullyOptimized},
		{"Keywords Blocked", report.Blocked},
		{"URLs Not Found", report.URLNotFound},
		{"Skipped URLs", report.Skipped},
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return fmt.Errorf("create sheet %q: %w", sheet.name, err)
		}
		if err := writeRowSheet(f, sheet.name, sheet.rows, headerStyle); err != nil {
			return fmt.Errorf("sheet %q: %w", sheet.name, err)
		}
	}

	if _, err := f.NewSheet("All Keyword Data"); err != nil {
		return fmt.Errorf("create sheet %q: %w", "All Keyword Data", err)
	}
	if err := writeDataSheet(f, "All Keyword Data", report.AllData, headerStyle); err != nil {
		return fmt.Errorf("sheet %q: %w", "All Keyword Data", err)
	}

	if err := f.SaveAs(ew.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// Close is a no-op; the workbook is written atomically on Write.
func (ew *ExcelWriter) Close() error {
	return nil
}

// Validate ensures the workbook was written and is non-empty.
func (ew *ExcelWriter) Validate() error {
	info, err := os.Stat(ew.path)
	if err != nil {
		return fmt.Errorf("stat workbook: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("workbook is empty")
	}
	return nil
}

func writeRowSheet(f *excelize.File, name string, rows []models.ScoredRow, headerStyle int) error {
	header := make([]interface{}, len(csvHeader))
	for i, col := range csvHeader {
		header[i] = col
	}
	if err := setSheetHeader(f, name, header, headerStyle); err != nil {
		return err
	}

	widths := map[string]float64{"A": 45, "B": 30, "G": 40, "L": 50}
	for col, width := range widths {
		if err := f.SetColWidth(name, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		values := []interface{}{
			row.URL,
			row.Keyword,
			row.Position,
			row.Impressions,
			row.Clicks,
			row.CTR,
			row.PageTitle,
			row.InTitle,
			row.InHeading,
			row.InBody,
			row.OpportunityScore,
			strings.Join(row.Recommendations, "; "),
			row.Category.String(),
			row.FailureKind,
		}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	return nil
}

func writeDataSheet(f *excelize.File, name string, records []models.KeywordRecord, headerStyle int) error {
	header := []interface{}{"url", "keyword", "position", "impressions", "clicks", "ctr"}
	if err := setSheetHeader(f, name, header, headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(name, "A", "A", 45); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(name, "B", "B", 30); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		values := []interface{}{rec.URL, rec.Keyword, rec.Position, rec.Impressions, rec.Clicks, rec.CTR}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	return nil
}

func setSheetHeader(f *excelize.File, name string, header []interface{}, style int) error {
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	lastCol, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetCellStyle(name, "A1", lastCol, style); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	return nil
}
