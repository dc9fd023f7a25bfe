// Package summary computes descriptive statistics over the identifications of
// one file.
package summary

import (
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/PNNL-Comp-Mass-Spec/Mzid-To-Tsv-Converter/pkg/core"
)

// Source is a stream of identifications.
type Source interface {
	Next() bool
	Identification() *core.Identification
	Err() error
}

// Distribution describes a set of values.
type Distribution struct {
	N      int
	Mean   float64
	StdDev float64
	Median float64
}

// Summary is the result of scanning one file.
type Summary struct {
	Identifications int
	Scans           int
	TargetEvidence  int
	DecoyEvidence   int
	PrecursorError  Distribution // ppm, isotope adjusted
	NeutralMass     Distribution // Da, from the experimental m/z
}

// Collect reads src to the end.
func Collect(src Source) (Summary, error) {
	var s Summary
	scans := make(map[int]struct{})
	var ppm, mass []float64

	for src.Next() {
		id := src.Identification()
		s.Identifications++
		scans[id.ScanNum] = struct{}{}
		for _, ev := range id.Evidence {
			if ev.IsDecoy {
				s.DecoyEvidence++
			} else {
				s.TargetEvidence++
			}
		}
		if id.CalculatedMz != 0 {
			ppm = append(ppm, core.PrecursorErrorPPM(id.ExperimentalMz, id.CalculatedMz, id.IsotopeError, id.Charge))
		}
		if id.Charge != 0 {
			mass = append(mass, core.NeutralMass(id.ExperimentalMz, id.Charge))
		}
	}
	if err := src.Err(); err != nil {
		return s, fmt.Errorf("failed to read identifications: %w", err)
	}

	s.Scans = len(scans)
	s.PrecursorError = Describe(ppm)
	s.NeutralMass = Describe(mass)
	return s, nil
}

// Describe computes the distribution of values. values is sorted in place.
func Describe(values []float64) Distribution {
	d := Distribution{N: len(values)}
	if d.N == 0 {
		return d
	}
	sort.Float64s(values)
	d.Mean = stat.Mean(values, nil)
	d.Median = stat.Quantile(0.5, stat.Empirical, values, nil)
	if d.N > 1 {
		d.StdDev = stat.StdDev(values, nil)
	}
	return d
}

// Print writes the summary as aligned key/value lines.
func (s Summary) Print(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"Identifications:     %d\n"+
			"Distinct scans:      %d\n"+
			"Target evidence:     %d\n"+
			"Decoy evidence:      %d\n"+
			"Precursor error ppm: mean %.3f, sd %.3f, median %.3f (n=%d)\n"+
			"Neutral mass Da:     mean %.4f, sd %.4f, median %.4f (n=%d)\n",
		s.Identifications, s.Scans, s.TargetEvidence, s.DecoyEvidence,
		s.PrecursorError.Mean, s.PrecursorError.StdDev, s.PrecursorError.Median, s.PrecursorError.N,
		s.NeutralMass.Mean, s.NeutralMass.StdDev, s.NeutralMass.Median, s.NeutralMass.N)
	return err
}
