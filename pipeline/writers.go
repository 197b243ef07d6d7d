package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/models"
)

// ReportWriter defines the interface for report output.
type ReportWriter interface {
	Write(report *models.Report) error
	Close() error
	Validate() error
}

// NewWriter builds the writer for an output format. Formats are validated by
// config, so an unknown format here is a programming error.
func NewWriter(format, filename string) (ReportWriter, error) {
	switch format {
	case "csv":
		return NewCSVWriter(filename)
	case "json":
		return NewJSONWriter(filename)
	case "xlsx":
		return NewExcelWriter(filename)
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

var csvHeader = []string{
	"url", "keyword", "position", "impressions", "clicks", "ctr",
	"page_title", "in_title", "in_h1", "in_content",
	"opportunity_score", "recommendations", "category", "failure_kind",
}

// CSVWriter flattens every report bucket into one CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter initialises a CSV writer and writes the header row.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(csvHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush csv header: %w", err)
	}

	return &CSVWriter{
		file:   f,
		writer: writer,
	}, nil
}

// Write appends all report buckets, striking-distance rows first, with
// rejected rows last under the "rejected" category.
func (cw *CSVWriter) Write(report *models.Report) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	for _, bucket := range [][]models.ScoredRow{
		report.StrikingDistance,
		report.FullyOptimized,
		report.Blocked,
		report.URLNotFound,
		report.Skipped,
		report.Blocklisted,
		report.OutOfRange,
		report.LowVolume,
	} {
		for _, row := range bucket {
			if err := cw.writer.Write(csvRow(row)); err != nil {
				return fmt.Errorf("write csv record: %w", err)
			}
		}
	}
	for _, rej := range report.Rejected {
		row := models.ScoredRow{KeywordRecord: rej.Record, FailureKind: rej.Reason}
		record := csvRow(row)
		record[12] = "rejected"
		if err := cw.writer.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes and closes the file handle.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return cw.file.Close()
}

// Validate ensures the file has content besides the header.
func (cw *CSVWriter) Validate() error {
	info, err := cw.file.Stat()
	if err != nil {
		return fmt.Errorf("stat csv file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("csv file is empty")
	}
	return nil
}

func csvRow(row models.ScoredRow) []string {
	return []string{
		row.URL,
		row.Keyword,
		strconv.Itoa(row.Position),
		strconv.Itoa(row.Impressions),
		strconv.Itoa(row.Clicks),
		strconv.FormatFloat(row.CTR, 'f', -1, 64),
		row.PageTitle,
		strconv.FormatBool(row.InTitle),
		strconv.FormatBool(row.InHeading),
		strconv.FormatBool(row.InBody),
		strconv.FormatFloat(row.OpportunityScore, 'f', 4, 64),
		strings.Join(row.Recommendations, "; "),
		row.Category.String(),
		row.FailureKind,
	}
}

// JSONWriter writes the whole report as one indented JSON document.
type JSONWriter struct {
	file   *os.File
	writer *bufio.Writer
	mu     sync.Mutex
}

// NewJSONWriter initialises the JSON writer.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}

	return &JSONWriter{
		file:   f,
		writer: bufio.NewWriter(f),
	}, nil
}

// Write encodes the report.
func (jw *JSONWriter) Write(report *models.Report) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	encoder := json.NewEncoder(jw.writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return nil
}

// Close flushes buffers and closes the underlying file.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return jw.file.Close()
}

// Validate ensures the JSON file has data.
func (jw *JSONWriter) Validate() error {
	info, err := jw.file.Stat()
	if err != nil {
		return fmt.Errorf("stat json file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("json file is empty")
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
