package convert

import (
	"github.com/PNNL-Comp-Mass-Spec/Mzid-To-Tsv-Converter/pkg/core"
	"github.com/PNNL-Comp-Mass-Spec/Mzid-To-Tsv-Converter/pkg/geneid"
)

// Expander turns the protein evidence of one identification into candidate rows.
type Expander struct {
	ShowDecoy   bool
	FixPeptides bool              // Rebuild peptides from the identification (bad MS-GF+ versions)
	MaxMatches  int               // Rows per identification; 0 means unbounded
	Genes       *geneid.Extractor // nil disables gene IDs
}

// Expand returns the candidate rows for id in evidence order. Rows with the
// same peptide and protein are emitted once; duplicates do not count toward
// MaxMatches.
func (x *Expander) Expand(id *core.Identification) []core.CandidateRow {
	var rows []core.CandidateRow
	seen := make(map[string]struct{}, len(id.Evidence))

	for i := range id.Evidence {
		ev := &id.Evidence[i]
		if ev.IsDecoy && !x.ShowDecoy {
			continue
		}

		peptide := ev.PeptideWithMods
		if x.FixPeptides {
			peptide = core.WithContext(ev.Pre, id.Peptide, ev.Post)
		}

		protein := ev.Accession()
		key := peptide + protein
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		row := core.CandidateRow{
			Ident:   id,
			Peptide: peptide,
			Protein: protein,
		}
		if x.Genes != nil && !ev.IsDecoy && ev.Protein != nil {
			if gene, ok := x.Genes.Extract(ev.Protein.SearchText()); ok {
				row.GeneID = gene
			}
		}
		rows = append(rows, row)

		if x.MaxMatches > 0 && len(rows) >= x.MaxMatches {
			break
		}
	}
	return rows
}
