package convert

import "github.com/PNNL-Comp-Mass-Spec/Mzid-To-Tsv-Converter/pkg/core"

// MSGFPlusAccession is the PSI-MS accession for MS-GF+.
const MSGFPlusAccession = "MS:1002048"

// MS-GF+ releases that wrote the wrong peptide into PeptideEvidence elements
// when the peptide has a modification within its first three residues. The
// list mixes version schemes, so it is a plain set lookup.
var badMSGFPlusVersions = map[string]struct{}{
	"v10280":      {},
	"v10282":      {},
	"v2016.01.20": {},
	"v2016.01.21": {},
}

// NeedsPeptideFix reports whether evidence peptides from this file must be
// rebuilt from the identification's own peptide.
func NeedsPeptideFix(meta core.FileMetadata) bool {
	if meta.SoftwareAccession != MSGFPlusAccession {
		return false
	}
	_, bad := badMSGFPlusVersions[meta.SoftwareVersion]
	return bad
}
