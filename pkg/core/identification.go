// Package core provides the intermediate representation (IR) models for
// peptide identifications read from mzIdentML and the rows built from them.
package core

import "fmt"

// DefaultFragMethod is reported when the source does not record the
// dissociation method of a spectrum.
const DefaultFragMethod = "CID"

// FileMetadata describes one identification file as a whole.
type FileMetadata struct {
	SpectrumFile      string // Base name of the searched spectrum file
	SoftwareAccession string // CV accession of the analysis software (e.g. MS:1002048)
	SoftwareVersion   string // Version string recorded by the analysis software
	SourcePath        string // Path the identifications were read from
}

// ProteinRecord is a database sequence shared by every evidence that maps to it.
// It must be treated as read-only once the reader hands it out.
type ProteinRecord struct {
	Accession   string
	Description string
}

// SearchText returns the accession and description joined by a space, which
// is the text gene identifiers are extracted from.
func (p *ProteinRecord) SearchText() string {
	if p.Description == "" {
		return p.Accession
	}
	return p.Accession + " " + p.Description
}

// ProteinEvidence is one candidate protein association for an identification.
type ProteinEvidence struct {
	PeptideWithMods string // Peptide with flanking residues and numeric mods, e.g. K.PEP+79.966TIDE.R
	Pre             string // Residue before the peptide ('-' for protein N-terminus)
	Post            string // Residue after the peptide ('-' for protein C-terminus)
	IsDecoy         bool
	Protein         *ProteinRecord
}

// Accession returns the accession of the referenced protein, or "" if none.
func (e *ProteinEvidence) Accession() string {
	if e.Protein == nil {
		return ""
	}
	return e.Protein.Accession
}

// Identification is one spectrum-to-peptide assignment.
type Identification struct {
	SpecFile        string
	NativeID        string
	ScanNum         int
	ScanTimeMinutes float64
	FragMethod      string
	ExperimentalMz  float64
	CalculatedMz    float64
	IsotopeError    int
	Charge          int

	// Peptide is the identification's own peptide sequence with numeric mods,
	// without flanking residues.
	Peptide string

	DeNovoScore int
	RawScore    float64
	SpecEValue  float64
	EValue      float64
	QValue      float64
	PepQValue   float64

	Evidence []ProteinEvidence
}

// Name returns a short label for log messages.
func (id *Identification) Name() string {
	return fmt.Sprintf("%s/scan %d", id.NativeID, id.ScanNum)
}

// CandidateRow is a working output row for one (identification, evidence) pair.
// Protein may be overwritten when protein lists are collapsed.
type CandidateRow struct {
	Ident   *Identification
	Peptide string
	Protein string
	GeneID  string
}
