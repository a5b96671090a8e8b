package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"bizbuysell-scraper/internal/listing"
)

// DatedPath returns the CSV path for a prefix on a given day,
// e.g. data/listing_urls_20250301.csv.
func DatedPath(dir, prefix string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.csv", prefix, t.Format("20060102")))
}

// LatestFile returns the lexically greatest CSV file matching prefix_*.csv in
// dir. With date-stamped names this is the most recent run. Returns an error
// when no file matches.
func LatestFile(dir, prefix string) (string, error) {
	pattern := filepath.Join(dir, prefix+"_*.csv")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("failed to glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no files matching %s", pattern)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// Writer appends CSV rows to a file, writing the header only when the file is
// new or empty. Every row is flushed immediately so an interrupted run leaves
// complete rows behind.
type Writer struct {
	file   *os.File
	writer *csv.Writer
	Path   string
}

// NewWriter opens path for appending and writes header if the file is empty.
func NewWriter(path string, header []string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	w := &Writer{
		file:   file,
		writer: csv.NewWriter(file),
		Path:   path,
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			file.Close()
			return nil, err
		}
	}

	return w, nil
}

// Write appends one row and flushes it to disk.
func (w *Writer) Write(record []string) error {
	if err := w.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write row to %s: %w", w.Path, err)
	}
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", w.Path, err)
	}
	return nil
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	w.writer.Flush()
	return w.file.Close()
}

// readAll reads a CSV file and returns the header and data rows. A missing
// file yields nil, nil, nil so callers can treat it as an empty prior run.
func readAll(path string) ([]string, [][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	return rows[0], rows[1:], nil
}

// ReadColumn returns the values of the named column from a CSV file. A
// missing file yields nil, nil.
func ReadColumn(path, column string) ([]string, error) {
	header, rows, err := readAll(path)
	if err != nil || header == nil {
		return nil, err
	}

	idx := -1
	for i, name := range header {
		if strings.TrimSpace(name) == column {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("column %q not found in %s", column, path)
	}

	var values []string
	for _, row := range rows {
		if idx < len(row) {
			values = append(values, row[idx])
		}
	}
	return values, nil
}

// ReadStubs reads URL-stage records from a CSV file. Columns are resolved by
// header name so files with reordered columns still load. Malformed rows are
// skipped.
func ReadStubs(path string) ([]listing.Stub, error) {
	header, rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, nil
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	get := func(row []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	var stubs []listing.Stub
	for _, row := range rows {
		rec := []string{
			get(row, "title"),
			get(row, "url"),
			get(row, "listing_id"),
			get(row, "scraped_date"),
		}
		stub, ok := listing.StubFromRecord(rec)
		if !ok {
			continue
		}
		stubs = append(stubs, stub)
	}
	return stubs, nil
}
