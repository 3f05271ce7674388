package exporter

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"econdata/pkg/contracts/domain"
)

const dateLayout = "2006-01-02"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options configures CSV writing behavior.
type Options struct {
	// BOMPrefix adds a UTF-8 BOM so Excel recognizes the encoding.
	BOMPrefix bool
}

// WriteTableCSV writes the table to w with a "date" column followed by
// one column per indicator. Missing cells become empty strings.
func WriteTableCSV(w io.Writer, table *domain.Table, options Options) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	names := table.Columns()
	header := append([]string{"date"}, names...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	columns := make([][]null.Float, len(names))
	for i, name := range names {
		columns[i], _ = table.Column(name)
	}

	for i, date := range table.Dates() {
		record := make([]string, 0, len(names)+1)
		record = append(record, date.Format(dateLayout))
		for _, col := range columns {
			record = append(record, formatCell(col[i]))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// SaveTableCSV writes the table to a CSV file, creating parent
// directories as needed.
func SaveTableCSV(path string, table *domain.Table, options Options) error {
	slog.Info("Writing table CSV",
		slog.String("path", path),
		slog.Int("rows", table.NumRows()),
		slog.Int("columns", table.NumCols()))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := WriteTableCSV(file, table, options); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ReadTableCSV reads a table previously written by WriteTableCSV. A
// leading UTF-8 BOM is tolerated and blank cells become missing values.
func ReadTableCSV(r io.Reader) (*domain.Table, error) {
	buffered := bufio.NewReader(r)
	if prefix, err := buffered.Peek(len(utf8BOM)); err == nil && string(prefix) == string(utf8BOM) {
		buffered.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(buffered)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) == 0 || strings.TrimSpace(header[0]) != "date" {
		return nil, fmt.Errorf("first column must be %q, got %q", "date", strings.Join(header, ","))
	}
	names := header[1:]

	var dates []time.Time
	columns := make([][]null.Float, len(names))
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", row, err)
		}

		date, err := time.Parse(dateLayout, record[0])
		if err != nil {
			return nil, fmt.Errorf("invalid date %q at row %d: %w", record[0], row, err)
		}
		dates = append(dates, domain.Day(date))

		for i, cell := range record[1:] {
			value, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("invalid value %q at row %d column %q: %w", cell, row, names[i], err)
			}
			columns[i] = append(columns[i], value)
		}
	}

	table, err := domain.NewTable(dates)
	if err != nil {
		return nil, fmt.Errorf("invalid date axis: %w", err)
	}
	for i, name := range names {
		if err := table.AddColumn(name, columns[i]); err != nil {
			return nil, fmt.Errorf("failed to add column %q: %w", name, err)
		}
	}
	return table, nil
}

// LoadTableCSV reads a table from a CSV file.
func LoadTableCSV(path string) (*domain.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()
	return ReadTableCSV(file)
}

func formatCell(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'g', -1, 64)
}

func parseCell(s string) (null.Float, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return null.Float{}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return null.Float{}, err
	}
	return null.FloatFrom(f), nil
}
