package sqlite

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.db")
	header := []string{"#SpecFile", "SpecId", "Protein", "QValue"}
	rows := [][]string{
		{"a.mzML", "scan=1", "P1, P2", "0.0"},
		{"a.mzML", "scan=2", "P3", "1.5E-05"},
	}

	w, err := NewWriter(path, "a.mzid")
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if err := w.WriteHeader(header); err != nil {
		t.Fatalf("WriteHeader() error = %v", err)
	}
	for _, r := range rows {
		if err := w.WriteRow(r); err != nil {
			t.Fatalf("WriteRow() error = %v", err)
		}
	}
	if err := w.WriteRow([]string{"too", "short"}); err == nil {
		t.Error("expected error for short row")
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	res, err := db.Query(`SELECT SpecFile, SpecId, Protein, QValue FROM PSMTable ORDER BY rowid`)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()
	var got [][]string
	for res.Next() {
		r := make([]string, 4)
		if err := res.Scan(&r[0], &r[1], &r[2], &r[3]); err != nil {
			t.Fatal(err)
		}
		got = append(got, r)
	}
	if err := res.Err(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(rows, got); diff != "" {
		t.Errorf("PSMTable mismatch (-want +got):\n%s", diff)
	}

	var source string
	var count int
	if err := db.QueryRow(`SELECT SourceFile, RowCount FROM HeaderTable`).Scan(&source, &count); err != nil {
		t.Fatal(err)
	}
	if source != "a.mzid" || count != 2 {
		t.Errorf("HeaderTable = %q, %d", source, count)
	}
}

func TestWriterReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.db")
	for i := 0; i < 2; i++ {
		w, err := NewWriter(path, "a.mzid")
		if err != nil {
			t.Fatal(err)
		}
		if err := w.WriteHeader([]string{"#SpecFile"}); err != nil {
			t.Fatalf("run %d: WriteHeader() error = %v", i, err)
		}
		if err := w.WriteRow([]string{"a.mzML"}); err != nil {
			t.Fatal(err)
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestAbort(t *testing.T) {
	tests := []struct {
		name   string
		header bool
	}{
		{"after rows", true},
		{"before header", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.db")
			w, err := NewWriter(path, "a.mzid")
			if err != nil {
				t.Fatal(err)
			}
			if tt.header {
				if err := w.WriteHeader([]string{"#SpecFile"}); err != nil {
					t.Fatal(err)
				}
				if err := w.WriteRow([]string{"a.mzML"}); err != nil {
					t.Fatal(err)
				}
			}
			if err := w.Abort(); err != nil {
				t.Fatalf("Abort() error = %v", err)
			}
			if err := w.Finalize(); err != nil {
				t.Errorf("Finalize() after Abort() error = %v", err)
			}
			if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
				t.Errorf("database still present after Abort(): %v", err)
			}
		})
	}
}

func TestWriteRowBeforeHeader(t *testing.T) {
	w, err := NewWriter(filepath.Join(t.TempDir(), "out.db"), "a.mzid")
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.WriteRow([]string{"x"}); err == nil {
		t.Error("expected error writing row before header")
	}
}

func TestColumnName(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"#SpecFile", "SpecFile"},
		{"PrecursorError(ppm)", "PrecursorError(ppm)"},
		{"ScanTime(Min)", "ScanTime(Min)"},
	}
	for _, tt := range tests {
		if got := ColumnName(tt.header); got != tt.want {
			t.Errorf("ColumnName(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
