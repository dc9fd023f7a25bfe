package convert

import (
	"fmt"

	"github.com/PNNL-Comp-Mass-Spec/Mzid-To-Tsv-Converter/internal/logger"
	"github.com/PNNL-Comp-Mass-Spec/Mzid-To-Tsv-Converter/pkg/core"
)

// Source is a single-pass stream of identifications from one file.
type Source interface {
	Metadata() core.FileMetadata
	Next() bool
	Identification() *core.Identification
	Err() error
}

// RowWriter persists a header followed by data rows.
type RowWriter interface {
	WriteHeader(columns []string) error
	WriteRow(fields []string) error
}

// Stats are the counts collected while converting one file.
type Stats struct {
	Identifications int  // Identifications read
	FilteredOut     int  // Rejected by the score filter
	NoRows          int  // Passed the filter but produced no rows
	RowsWritten     int  // Rows handed to the writer
	PeptideFix      bool // Evidence peptides were rebuilt for a known-bad MS-GF+ version
}

// ConversionError reports a failure part way through a file.
type ConversionError struct {
	File        string
	RowsWritten int
	Err         error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion of %s failed after writing %d rows: %v", e.File, e.RowsWritten, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Converter runs the identification-to-row pipeline for one file at a time.
type Converter struct {
	opts Options
	log  *logger.Logger
}

// NewConverter creates a converter. opts must have been validated.
func NewConverter(opts Options, log *logger.Logger) *Converter {
	if log == nil {
		log = logger.Nop()
	}
	return &Converter{opts: opts, log: log}
}

// Convert reads every identification from src and writes the resulting rows
// to w. Identifications are processed one at a time in source order.
func (c *Converter) Convert(src Source, w RowWriter) (Stats, error) {
	var stats Stats
	meta := src.Metadata()
	log := c.log.With("file", meta.SourcePath)

	if NeedsPeptideFix(meta) {
		stats.PeptideFix = true
		log.Warn("MS-GF+ version with known PeptideEvidence bug detected; using the peptide of each identification instead",
			"version", meta.SoftwareVersion)
	}

	scoreFilter := c.opts.ScoreFilter()
	expander := &Expander{
		ShowDecoy:   c.opts.ShowDecoy,
		FixPeptides: stats.PeptideFix,
		MaxMatches:  c.opts.MaxMatchesPerIdent(),
		Genes:       c.opts.GeneExtractor(),
	}
	formatter := &Formatter{
		Extended: !c.opts.NoExtendedFields,
		GeneID:   c.opts.AddGeneID,
	}

	fail := func(err error) (Stats, error) {
		return stats, &ConversionError{File: meta.SourcePath, RowsWritten: stats.RowsWritten, Err: err}
	}

	if err := w.WriteHeader(formatter.Header()); err != nil {
		return fail(fmt.Errorf("failed to write header: %w", err))
	}

	lastScan := 0
	haveLast := false
	for src.Next() {
		id := src.Identification()
		stats.Identifications++

		if c.opts.SingleResultPerSpec {
			if haveLast && id.ScanNum == lastScan {
				continue
			}
			lastScan = id.ScanNum
			haveLast = true
		}

		if !scoreFilter.Accept(id) {
			stats.FilteredOut++
			continue
		}

		rows := expander.Expand(id)
		if len(rows) == 0 {
			stats.NoRows++
			continue
		}
		if c.opts.ProteinList && len(rows) > 1 {
			rows = AggregateProteins(rows, c.opts.ProteinListDelimiter)
		}

		for _, row := range rows {
			if err := w.WriteRow(formatter.Format(row)); err != nil {
				return fail(fmt.Errorf("failed to write row for %s: %w", id.Name(), err))
			}
			stats.RowsWritten++
		}
	}
	if err := src.Err(); err != nil {
		return fail(err)
	}

	stats.Report(log)
	return stats, nil
}

// Report logs the outcome of one file.
func (s Stats) Report(log *logger.Logger) {
	switch {
	case s.Identifications == 0:
		log.Warn("no results found")
	case s.RowsWritten == 0:
		log.Warn("no results passed filters", "identifications", s.Identifications, "filtered", s.FilteredOut)
	default:
		log.Info("conversion finished", "rows", s.RowsWritten, "filtered", s.FilteredOut,
			"identifications", s.Identifications)
	}
}
