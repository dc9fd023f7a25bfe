// Package tsv provides tab-delimited output for converted identifications
package tsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Writer writes a header and rows as tab-separated values.
type Writer struct {
	csv  *csv.Writer
	file *os.File
	rows int
}

// NewWriter creates a writer on w. The caller owns w.
func NewWriter(w io.Writer) *Writer {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	return &Writer{csv: cw}
}

// Create creates (or truncates) the file at path and returns a writer that
// owns it.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	w := NewWriter(f)
	w.file = f
	return w, nil
}

// WriteHeader writes the column names.
func (w *Writer) WriteHeader(columns []string) error {
	return w.csv.Write(columns)
}

// WriteRow writes one data row.
func (w *Writer) WriteRow(fields []string) error {
	if err := w.csv.Write(fields); err != nil {
		return err
	}
	w.rows++
	return nil
}

// Rows returns the number of data rows written.
func (w *Writer) Rows() int {
	return w.rows
}

// Close flushes buffered rows and closes the file if the writer owns one.
func (w *Writer) Close() error {
	w.csv.Flush()
	err := w.csv.Error()
	if w.file != nil {
		if cerr := w.file.Close(); cerr != nil && err == nil {
			err = cerr
		}
		w.file = nil
	}
	if err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}
