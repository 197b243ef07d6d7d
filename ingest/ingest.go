// Package ingest reads keyword-ranking exports into KeywordRecords.
package ingest

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/models"
)

// ReadRecords loads records from a CSV export (header row with at least url,
// keyword, position) or an NDJSON file. The extension decides the format; if
// it is ambiguous, CSV is tried first.
func ReadRecords(path string) ([]models.KeywordRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".ndjson", ".jsonl":
		return readNDJSON(path)
	default:
		if records, err := readCSV(path); err == nil {
			return records, nil
		}
		return readNDJSON(path)
	}
}

func readCSV(path string) ([]models.KeywordRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty csv")
	}

	cols, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]models.KeywordRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := recordFromRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

type columnIndex struct {
	url, keyword, position   int
	impressions, clicks, ctr int
}

func headerIndex(header []string) (columnIndex, error) {
	cols := columnIndex{url: -1, keyword: -1, position: -1, impressions: -1, clicks: -1, ctr: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "url":
			cols.url = i
		case "keyword", "query":
			cols.keyword = i
		case "position", "avg. position", "average position":
			cols.position = i
		case "impressions":
			cols.impressions = i
		case "clicks":
			cols.clicks = i
		case "ctr":
			cols.ctr = i
		}
	}
	if cols.url == -1 || cols.keyword == -1 || cols.position == -1 {
		return cols, fmt.Errorf("csv must contain url, keyword and position columns, found: %v", header)
	}
	return cols, nil
}

func recordFromRow(row []string, cols columnIndex) (models.KeywordRecord, error) {
	field := func(idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	rec := models.KeywordRecord{
		URL:     field(cols.url),
		Keyword: field(cols.keyword),
	}

	posText := field(cols.position)
	if posText != "" {
		// Search Console exports fractional average positions.
		pos, err := strconv.ParseFloat(posText, 64)
		if err != nil {
			return rec, fmt.Errorf("invalid position %q: %w", posText, err)
		}
		rec.Position = int(math.Round(pos))
	}

	if raw := field(cols.impressions); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return rec, fmt.Errorf("invalid impressions %q: %w", raw, err)
		}
		rec.Impressions = v
	}
	if raw := field(cols.clicks); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return rec, fmt.Errorf("invalid clicks %q: %w", raw, err)
		}
		rec.Clicks = v
	}
	if raw := field(cols.ctr); raw != "" {
		raw = strings.TrimSuffix(raw, "%")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return rec, fmt.Errorf("invalid ctr %q: %w", raw, err)
		}
		rec.CTR = v
	}

	return rec, nil
}

func readNDJSON(path string) ([]models.KeywordRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []models.KeywordRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec models.KeywordRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("invalid ndjson line: %w", err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no records found in %s", path)
	}
	return records, nil
}

// ValidateRecord checks the fields a record needs before it can be scheduled.
// Failures are per-record skip reasons, never fatal to the run.
func ValidateRecord(rec models.KeywordRecord) error {
	if strings.TrimSpace(rec.URL) == "" {
		return fmt.Errorf("missing url")
	}
	parsed, err := url.Parse(rec.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid url %q", rec.URL)
	}
	if strings.TrimSpace(rec.Keyword) == "" {
		return fmt.Errorf("missing keyword")
	}
	if rec.Position < 1 {
		return fmt.Errorf("position must be >= 1, got %d", rec.Position)
	}
	if rec.Impressions < 0 {
		return fmt.Errorf("impressions cannot be negative")
	}
	if rec.Clicks < 0 {
		return fmt.Errorf("clicks cannot be negative")
	}
	return nil
}
