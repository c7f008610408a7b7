// Package exporter writes analytics views to files for download.
//
// This package contains two writers:
//
// CSVWriter: CSV encoding of a single view table, with a UTF-8 BOM so Excel
// recognizes the encoding.
//
// XLSXWriter: an Excel workbook holding a summary sheet (title, metrics,
// messages) followed by one sheet per view table.
//
// Example usage:
//
//	exp := exporter.New(logger)
//
//	// Stream to an HTTP response
//	err := exp.Export(w, view, exporter.FormatXLSX)
//
//	// Or write a file, picking the format from the extension
//	err = exp.ExportFile("reports/head-to-head.csv", view)
package exporter
