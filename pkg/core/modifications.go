package core

import (
	"sort"
	"strconv"
	"strings"
)

// Modification represents a peptide modification with location and mass shift.
type Modification struct {
	MassDelta float64
	Location  int // 0 for N-term, 1..len(seq) for residues, len(seq)+1 for C-term
}

// FormatModMass renders a mass shift with an explicit sign and 3 decimals.
func FormatModMass(mass float64) string {
	s := strconv.FormatFloat(mass, 'f', 3, 64)
	if mass >= 0 {
		return "+" + s
	}
	return s
}

// SequenceWithNumericMods renders a peptide with each modification mass
// written after the residue it modifies. N-terminal modifications precede the
// first residue and C-terminal ones follow the last.
func SequenceWithNumericMods(sequence string, mods []Modification) string {
	if len(mods) == 0 {
		return sequence
	}

	sorted := make([]Modification, len(mods))
	copy(sorted, mods)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Location < sorted[j].Location
	})

	var b strings.Builder
	k := 0
	for ; k < len(sorted) && sorted[k].Location <= 0; k++ {
		b.WriteString(FormatModMass(sorted[k].MassDelta))
	}
	for i, aa := range sequence {
		b.WriteRune(aa)
		for ; k < len(sorted) && sorted[k].Location == i+1; k++ {
			b.WriteString(FormatModMass(sorted[k].MassDelta))
		}
	}
	for ; k < len(sorted); k++ {
		b.WriteString(FormatModMass(sorted[k].MassDelta))
	}
	return b.String()
}

// WithContext surrounds a peptide with its flanking residues, e.g. K.PEPTIDE.R
func WithContext(pre, peptide, post string) string {
	return pre + "." + peptide + "." + post
}
