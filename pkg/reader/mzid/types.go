package mzid

import (
	"errors"
	"fmt"
)

// Types for decoding the parts of mzIdentML we use. Each is decoded one
// element at a time from the token stream.

type cvParam struct {
	Accession     string `xml:"accession,attr"`
	Name          string `xml:"name,attr"`
	Value         string `xml:"value,attr"`
	UnitAccession string `xml:"unitAccession,attr"`
}

type userParam struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type analysisSoftware struct {
	ID           string `xml:"id,attr"`
	Version      string `xml:"version,attr"`
	SoftwareName struct {
		CvPar   []cvParam   `xml:"cvParam"`
		UserPar []userParam `xml:"userParam"`
	} `xml:"SoftwareName"`
}

type spectraData struct {
	ID       string `xml:"id,attr"`
	Location string `xml:"location,attr"`
	Name     string `xml:"name,attr"`
}

type dbSequence struct {
	ID        string    `xml:"id,attr"`
	Accession string    `xml:"accession,attr"`
	CvPar     []cvParam `xml:"cvParam"`
}

type peptide struct {
	ID              string `xml:"id,attr"`
	PeptideSequence string
	Modification    []modification
}

type modification struct {
	Location int `xml:"location,attr"`
	// Note: monoisotopicMassDelta is optional according to the schema, but
	// there is no other way to determine the mass shift
	MonoisotopicMassDelta float64 `xml:"monoisotopicMassDelta,attr"`
}

type peptideEvidence struct {
	ID            string `xml:"id,attr"`
	DBSequenceRef string `xml:"dBSequence_ref,attr"`
	PeptideRef    string `xml:"peptide_ref,attr"`
	Pre           string `xml:"pre,attr"`
	Post          string `xml:"post,attr"`
	IsDecoy       bool   `xml:"isDecoy,attr"`
}

type spectrumIdentificationResult struct {
	ID                         string `xml:"id,attr"`
	SpectrumID                 string `xml:"spectrumID,attr"`
	SpectraDataRef             string `xml:"spectraData_ref,attr"`
	SpectrumIdentificationItem []spectrumIdentificationItem
	CvPar                      []cvParam   `xml:"cvParam"`
	UserPar                    []userParam `xml:"userParam"`
}

type spectrumIdentificationItem struct {
	ID                       string  `xml:"id,attr"`
	ChargeState              int     `xml:"chargeState,attr"`
	ExperimentalMassToCharge float64 `xml:"experimentalMassToCharge,attr"`
	CalculatedMassToCharge   float64 `xml:"calculatedMassToCharge,attr"`
	PeptideRef               string  `xml:"peptide_ref,attr"`
	Rank                     int     `xml:"rank,attr"`
	PeptideEvidenceRef       []struct {
		Ref string `xml:"peptideEvidence_ref,attr"`
	}
	CvPar   []cvParam   `xml:"cvParam"`
	UserPar []userParam `xml:"userParam"`
}

const rootElement = "MzIdentML"

var (
	// ErrNotMzIdentML is returned when the document root is not MzIdentML.
	ErrNotMzIdentML = errors.New("mzIdentML: root element is not " + rootElement)
	// ErrDuplicateID is matched by every DuplicateIDError.
	ErrDuplicateID = errors.New("mzIdentML: duplicate id")
	// ErrUnknownReference is returned when an element refers to an id that
	// was never defined.
	ErrUnknownReference = errors.New("mzIdentML: unknown reference")
)

// DuplicateIDError reports an id attribute used by more than one element of
// the same kind.
type DuplicateIDError struct {
	Element string
	ID      string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("mzIdentML: duplicate %s id %q", e.Element, e.ID)
}

func (e *DuplicateIDError) Is(target error) bool {
	return target == ErrDuplicateID
}

