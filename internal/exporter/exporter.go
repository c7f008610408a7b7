package exporter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"f1insights/pkg/contracts/domain"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var (
	// ErrUnsupportedFormat is returned for formats other than csv and xlsx
	ErrUnsupportedFormat = errors.New("unsupported export format")
	// ErrNoTables is returned when a CSV export is asked of a view without tables
	ErrNoTables = errors.New("view has no tables to export")
)

// ParseFormat accepts "csv" or "xlsx" in any case
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnsupportedFormat)
	}
}

// FormatFromPath derives the format from a file extension
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName returns the download name for an action export
func (f Format) FileName(action string) string {
	return action + "." + string(f)
}

// Exporter renders views to CSV or XLSX
type Exporter struct {
	csv    *CSVWriter
	xlsx   *XLSXWriter
	logger *slog.Logger
}

// New creates an exporter
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		csv:    NewCSVWriter(logger),
		xlsx:   NewXLSXWriter(),
		logger: logger,
	}
}

// Export writes the view in the given format. CSV carries the first table
// only; XLSX carries every table on its own sheet.
func (e *Exporter) Export(w io.Writer, view *domain.View, format Format) error {
	switch format {
	case FormatCSV:
		if len(view.Tables) == 0 {
			return ErrNoTables
		}
		return e.csv.WriteTable(w, view.Tables[0], true)
	case FormatXLSX:
		return e.xlsx.WriteView(w, view)
	default:
		return fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
}

// ExportFile writes the view to path, choosing the format by extension
func (e *Exporter) ExportFile(path string, view *domain.View) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if format == FormatCSV && len(view.Tables) == 0 {
		return ErrNoTables
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := e.Export(file, view, format); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	e.logger.Info("view exported",
		slog.String("action", view.Action),
		slog.String("format", string(format)),
		slog.String("path", path),
		slog.Int("tables", len(view.Tables)))
	return nil
}
