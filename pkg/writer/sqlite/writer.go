// Package sqlite provides SQLite database writing for converted identifications
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	// Date format for HeaderTable (ISO 8601)
	headerDateFormat = "2006-01-02 15:04:05"

	psmTable = "PSMTable"
)

// Writer stores converted rows in a PSMTable, one TEXT column per output
// column. All rows are inserted in a single transaction committed by Finalize.
type Writer struct {
	db         *sql.DB
	tx         *sql.Tx
	rowStmt    *sql.Stmt
	outputPath string
	sourceFile string
	columns    int
	rows       int
	closed     bool
}

// NewWriter creates a new SQLite writer, replacing any existing database at
// outputPath.
func NewWriter(outputPath, sourceFile string) (*Writer, error) {
	if err := os.Remove(outputPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to remove existing database: %w", err)
	}
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
		sourceFile: sourceFile,
	}

	if err := w.createHeaderTable(); err != nil {
		db.Close()
		return nil, err
	}
	return w, nil
}

// createHeaderTable creates the table describing the database itself
func (w *Writer) createHeaderTable() error {
	_, err := w.db.Exec(`
	CREATE TABLE IF NOT EXISTS HeaderTable (
		version INTEGER NOT NULL DEFAULT 0,
		CreationDate TEXT,
		SourceFile TEXT,
		RowCount INTEGER
	);
	`)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// ColumnName turns an output column header into an SQL column name.
func ColumnName(header string) string {
	return strings.TrimPrefix(header, "#")
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// WriteHeader creates PSMTable with the given columns and starts the insert
// transaction.
func (w *Writer) WriteHeader(columns []string) error {
	if w.rowStmt != nil {
		return errors.New("header already written")
	}
	if len(columns) == 0 {
		return errors.New("no columns")
	}

	defs := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = quoteIdent(ColumnName(c)) + " TEXT"
		marks[i] = "?"
	}
	schema := fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", psmTable, strings.Join(defs, ",\n\t"))
	if _, err := w.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create %s: %w", psmTable, err)
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s VALUES (%s)", psmTable, strings.Join(marks, ", ")))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare row statement: %w", err)
	}
	w.tx = tx
	w.rowStmt = stmt
	w.columns = len(columns)
	return nil
}

// WriteRow inserts one row.
func (w *Writer) WriteRow(fields []string) error {
	if w.rowStmt == nil {
		return errors.New("row written before header")
	}
	if len(fields) != w.columns {
		return fmt.Errorf("row has %d fields, table has %d columns", len(fields), w.columns)
	}
	args := make([]interface{}, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	if _, err := w.rowStmt.Exec(args...); err != nil {
		return fmt.Errorf("failed to insert row: %w", err)
	}
	w.rows++
	return nil
}

// Finalize commits the rows, writes the header table and closes the database
func (w *Writer) Finalize() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var err error
	if w.rowStmt != nil {
		w.rowStmt.Close()
		if cerr := w.tx.Commit(); cerr != nil {
			err = fmt.Errorf("failed to commit rows: %w", cerr)
		}
	}

	if err == nil {
		_, err = w.db.Exec(`
			INSERT INTO HeaderTable (version, CreationDate, SourceFile, RowCount)
			VALUES (?, ?, ?, ?)
		`, 1, time.Now().Format(headerDateFormat), w.sourceFile, w.rows)
		if err != nil {
			err = fmt.Errorf("failed to insert header: %w", err)
		}
	}

	// Close database
	if cerr := w.db.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("failed to close database: %w", cerr)
	}
	return err
}

// Abort rolls back uncommitted rows, closes the database and removes it, so a
// failed conversion leaves no HeaderTable claiming a complete file.
func (w *Writer) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var err error
	if w.rowStmt != nil {
		w.rowStmt.Close()
		if rerr := w.tx.Rollback(); rerr != nil {
			err = fmt.Errorf("failed to roll back rows: %w", rerr)
		}
	}
	if cerr := w.db.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("failed to close database: %w", cerr)
	}
	if rerr := os.Remove(w.outputPath); rerr != nil && !errors.Is(rerr, os.ErrNotExist) && err == nil {
		err = fmt.Errorf("failed to remove database: %w", rerr)
	}
	return err
}

// Close closes the database connection (alias for Finalize)
func (w *Writer) Close() error {
	return w.Finalize()
}
