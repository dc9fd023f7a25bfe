package convert

import (
	"sort"
	"strings"

	"github.com/PNNL-Comp-Mass-Spec/Mzid-To-Tsv-Converter/pkg/core"
)

const (
	// MaxProteinListLength caps the joined protein list.
	MaxProteinListLength = 100000
	truncationMarker     = "..."
)

// JoinProteins returns the distinct accessions sorted and joined by delimiter.
// Once the running length (accession plus delimiter) would pass
// MaxProteinListLength, the remaining accessions are replaced by the delimiter
// and an ellipsis. The first accession is always kept.
func JoinProteins(accessions []string, delimiter string) string {
	distinct := make(map[string]struct{}, len(accessions))
	sorted := make([]string, 0, len(accessions))
	for _, acc := range accessions {
		if _, ok := distinct[acc]; ok {
			continue
		}
		distinct[acc] = struct{}{}
		sorted = append(sorted, acc)
	}
	sort.Strings(sorted)

	var b strings.Builder
	total := 0
	for i, acc := range sorted {
		total += len(acc) + len(delimiter)
		if i > 0 && total > MaxProteinListLength {
			b.WriteString(delimiter)
			b.WriteString(truncationMarker)
			break
		}
		if i > 0 {
			b.WriteString(delimiter)
		}
		b.WriteString(acc)
	}
	return b.String()
}

// AggregateProteins collapses the rows of one identification into the first
// row, whose Protein becomes the joined protein list.
func AggregateProteins(rows []core.CandidateRow, delimiter string) []core.CandidateRow {
	if len(rows) <= 1 {
		return rows
	}
	accessions := make([]string, len(rows))
	for i, r := range rows {
		accessions[i] = r.Protein
	}
	rows[0].Protein = JoinProteins(accessions, delimiter)
	return rows[:1]
}
