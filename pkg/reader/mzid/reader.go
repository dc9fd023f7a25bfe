// Package mzid provides a streaming reader for mzIdentML identification files
package mzid

import (
	"compress/gzip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/PNNL-Comp-Mass-Spec/Mzid-To-Tsv-Converter/pkg/core"
)

// CV accessions read from SpectrumIdentificationItem and
// SpectrumIdentificationResult elements.
const (
	accRawScore     = "MS:1002049" // MS-GF:RawScore
	accDeNovoScore  = "MS:1002050" // MS-GF:DeNovoScore
	accSpecEValue   = "MS:1002052" // MS-GF:SpecEValue
	accEValue       = "MS:1002053" // MS-GF:EValue
	accQValue       = "MS:1002054" // MS-GF:QValue
	accPepQValue    = "MS:1002055" // MS-GF:PepQValue
	accScanNumber   = "MS:1001115" // scan number(s)
	accDescription  = "MS:1001088" // protein description
	unitMinute      = "UO:0000031"
	unitMinuteMS    = "MS:1000038"
	paramFragMethod = "AssumedDissociationMethod"
	paramIsoError   = "IsotopeError"
)

var (
	scanPattern  = regexp.MustCompile(`(?:^|\s)scan=(\d+)`)
	indexPattern = regexp.MustCompile(`(?:^|\s)index=(\d+)`)
)

type peptideInfo struct {
	sequence string // Sequence with numeric mods
}

// Reader provides streaming access to the identifications of one mzIdentML
// file. The sequence collection is read up front; spectrum identification
// results are decoded one at a time.
type Reader struct {
	dec     *xml.Decoder
	closer  io.Closer
	skipDup bool
	meta    core.FileMetadata

	proteins    map[string]*core.ProteinRecord
	peptides    map[string]peptideInfo
	evidence    map[string]peptideEvidence
	spectraData map[string]string
	items       map[string]struct{}

	next    *xml.StartElement // First result element, consumed while reading the header
	pending []*core.Identification
	current *core.Identification
	err     error
}

// NewReader reads the header of an mzIdentML document from r. With
// skipDuplicateIDs set, elements repeating an id are ignored instead of
// failing with a DuplicateIDError.
func NewReader(r io.Reader, skipDuplicateIDs bool) (*Reader, error) {
	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel

	rd := &Reader{
		dec:         d,
		skipDup:     skipDuplicateIDs,
		proteins:    make(map[string]*core.ProteinRecord),
		peptides:    make(map[string]peptideInfo),
		evidence:    make(map[string]peptideEvidence),
		spectraData: make(map[string]string),
		items:       make(map[string]struct{}),
	}
	if err := rd.readHeader(); err != nil {
		return nil, err
	}
	return rd, nil
}

// Open opens an mzIdentML file, decompressing it if it is gzipped. The
// returned reader must be closed.
func Open(path string, skipDuplicateIDs bool) (*Reader, error) {
	rc, err := openFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	rd, err := NewReader(rc, skipDuplicateIDs)
	if err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	rd.closer = rc
	rd.meta.SourcePath = path
	return rd, nil
}

// multiReadCloser closes multiple io.Closers when Close() is called.
type multiReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiReadCloser) Close() error {
	var err error
	for _, c := range m.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func openFile(path string) (io.ReadCloser, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	// Detect gzip by magic number (1F 8B) or by .gz suffix.
	var sig [2]byte
	n, _ := fh.Read(sig[:])
	if _, err := fh.Seek(0, io.SeekStart); err != nil {
		_ = fh.Close()
		return nil, err
	}
	if (n == 2 && sig[0] == 0x1f && sig[1] == 0x8b) || strings.HasSuffix(strings.ToLower(path), ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			_ = fh.Close()
			return nil, err
		}
		return &multiReadCloser{Reader: gr, closers: []io.Closer{gr, fh}}, nil
	}
	return fh, nil
}

// Close releases the underlying file, if the reader owns one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// Metadata describes the file as a whole.
func (r *Reader) Metadata() core.FileMetadata {
	return r.meta
}

// Next advances to the next identification. Returns false at the end of the
// document or on error.
func (r *Reader) Next() bool {
	r.current = nil
	if r.err != nil {
		return false
	}
	for len(r.pending) == 0 {
		ok, err := r.readResult()
		if err != nil {
			r.err = err
			return false
		}
		if !ok {
			return false
		}
	}
	r.current = r.pending[0]
	r.pending = r.pending[1:]
	return true
}

// Identification returns the current identification
func (r *Reader) Identification() *core.Identification {
	return r.current
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// readHeader consumes everything up to the first SpectrumIdentificationResult.
func (r *Reader) readHeader() error {
	sawRoot := false
	for {
		tok, err := r.dec.Token()
		if err == io.EOF {
			if !sawRoot {
				return ErrNotMzIdentML
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to parse XML: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !sawRoot {
			if se.Name.Local != rootElement {
				return fmt.Errorf("%w (found %s)", ErrNotMzIdentML, se.Name.Local)
			}
			sawRoot = true
			continue
		}

		switch se.Name.Local {
		case "AnalysisSoftware":
			var sw analysisSoftware
			if err := r.dec.DecodeElement(&sw, &se); err != nil {
				return fmt.Errorf("failed to decode AnalysisSoftware: %w", err)
			}
			if r.meta.SoftwareAccession == "" && len(sw.SoftwareName.CvPar) > 0 {
				r.meta.SoftwareAccession = sw.SoftwareName.CvPar[0].Accession
				r.meta.SoftwareVersion = sw.Version
			}
		case "DBSequence":
			if err := r.addDBSequence(&se); err != nil {
				return err
			}
		case "Peptide":
			if err := r.addPeptide(&se); err != nil {
				return err
			}
		case "PeptideEvidence":
			if err := r.addPeptideEvidence(&se); err != nil {
				return err
			}
		case "SpectraData":
			var sd spectraData
			if err := r.dec.DecodeElement(&sd, &se); err != nil {
				return fmt.Errorf("failed to decode SpectraData: %w", err)
			}
			name := baseName(sd.Location)
			if name == "" {
				name = sd.Name
			}
			r.spectraData[sd.ID] = name
			if r.meta.SpectrumFile == "" {
				r.meta.SpectrumFile = name
			}
		case "SpectrumIdentificationResult":
			start := se.Copy()
			r.next = &start
			return nil
		}
	}
}

func (r *Reader) duplicate(element, id string) error {
	if r.skipDup {
		return nil
	}
	return &DuplicateIDError{Element: element, ID: id}
}

func (r *Reader) addDBSequence(se *xml.StartElement) error {
	var seq dbSequence
	if err := r.dec.DecodeElement(&seq, se); err != nil {
		return fmt.Errorf("failed to decode DBSequence: %w", err)
	}
	if _, dup := r.proteins[seq.ID]; dup {
		return r.duplicate("DBSequence", seq.ID)
	}
	rec := &core.ProteinRecord{Accession: seq.Accession}
	for _, cv := range seq.CvPar {
		if cv.Accession == accDescription {
			rec.Description = cv.Value
		}
	}
	r.proteins[seq.ID] = rec
	return nil
}

func (r *Reader) addPeptide(se *xml.StartElement) error {
	var pep peptide
	if err := r.dec.DecodeElement(&pep, se); err != nil {
		return fmt.Errorf("failed to decode Peptide: %w", err)
	}
	if _, dup := r.peptides[pep.ID]; dup {
		return r.duplicate("Peptide", pep.ID)
	}
	mods := make([]core.Modification, len(pep.Modification))
	for i, m := range pep.Modification {
		mods[i] = core.Modification{MassDelta: m.MonoisotopicMassDelta, Location: m.Location}
	}
	r.peptides[pep.ID] = peptideInfo{sequence: core.SequenceWithNumericMods(pep.PeptideSequence, mods)}
	return nil
}

func (r *Reader) addPeptideEvidence(se *xml.StartElement) error {
	var ev peptideEvidence
	if err := r.dec.DecodeElement(&ev, se); err != nil {
		return fmt.Errorf("failed to decode PeptideEvidence: %w", err)
	}
	if _, dup := r.evidence[ev.ID]; dup {
		return r.duplicate("PeptideEvidence", ev.ID)
	}
	r.evidence[ev.ID] = ev
	return nil
}

// readResult decodes the next SpectrumIdentificationResult into pending.
// Returns false at the end of the document.
func (r *Reader) readResult() (bool, error) {
	start := r.next
	r.next = nil
	for start == nil {
		tok, err := r.dec.Token()
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to parse XML: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "SpectrumIdentificationResult" {
			start = &se
		}
	}

	var sir spectrumIdentificationResult
	if err := r.dec.DecodeElement(&sir, start); err != nil {
		return false, fmt.Errorf("failed to decode SpectrumIdentificationResult: %w", err)
	}

	specFile := r.meta.SpectrumFile
	if name, ok := r.spectraData[sir.SpectraDataRef]; ok {
		specFile = name
	}
	scanNum := scanNumber(sir)
	scanTime, err := scanTimeMinutes(sir.CvPar)
	if err != nil {
		return false, fmt.Errorf("spectrum %s: %w", sir.SpectrumID, err)
	}

	for i := range sir.SpectrumIdentificationItem {
		item := &sir.SpectrumIdentificationItem[i]
		if _, dup := r.items[item.ID]; dup && item.ID != "" {
			if err := r.duplicate("SpectrumIdentificationItem", item.ID); err != nil {
				return false, err
			}
			continue
		}
		r.items[item.ID] = struct{}{}

		id, err := r.buildIdentification(item, sir.UserPar)
		if err != nil {
			return false, fmt.Errorf("spectrum %s: %w", sir.SpectrumID, err)
		}
		id.SpecFile = specFile
		id.NativeID = sir.SpectrumID
		id.ScanNum = scanNum
		id.ScanTimeMinutes = scanTime
		r.pending = append(r.pending, id)
	}
	return true, nil
}

func (r *Reader) buildIdentification(item *spectrumIdentificationItem, resultParams []userParam) (*core.Identification, error) {
	pep, ok := r.peptides[item.PeptideRef]
	if !ok {
		return nil, fmt.Errorf("%w: peptide %q", ErrUnknownReference, item.PeptideRef)
	}
	id := &core.Identification{
		FragMethod:     core.DefaultFragMethod,
		ExperimentalMz: item.ExperimentalMassToCharge,
		CalculatedMz:   item.CalculatedMassToCharge,
		Charge:         item.ChargeState,
		Peptide:        pep.sequence,
	}

	for _, cv := range item.CvPar {
		var err error
		switch cv.Accession {
		case accRawScore:
			id.RawScore, err = parseFloat(cv.Value)
		case accDeNovoScore:
			id.DeNovoScore, err = parseInt(cv.Value)
		case accSpecEValue:
			id.SpecEValue, err = parseFloat(cv.Value)
		case accEValue:
			id.EValue, err = parseFloat(cv.Value)
		case accQValue:
			id.QValue, err = parseFloat(cv.Value)
		case accPepQValue:
			id.PepQValue, err = parseFloat(cv.Value)
		}
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s (%s): %w", cv.Name, cv.Accession, err)
		}
	}

	// Item parameters win over result parameters.
	params := append(append([]userParam{}, resultParams...), item.UserPar...)
	for _, up := range params {
		switch up.Name {
		case paramFragMethod:
			if up.Value != "" {
				id.FragMethod = up.Value
			}
		case paramIsoError:
			iso, err := parseInt(up.Value)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", paramIsoError, err)
			}
			id.IsotopeError = iso
		}
	}

	for _, ref := range item.PeptideEvidenceRef {
		ev, ok := r.evidence[ref.Ref]
		if !ok {
			return nil, fmt.Errorf("%w: peptide evidence %q", ErrUnknownReference, ref.Ref)
		}
		evPep, ok := r.peptides[ev.PeptideRef]
		if !ok {
			return nil, fmt.Errorf("%w: peptide %q", ErrUnknownReference, ev.PeptideRef)
		}
		protein, ok := r.proteins[ev.DBSequenceRef]
		if !ok {
			return nil, fmt.Errorf("%w: DBSequence %q", ErrUnknownReference, ev.DBSequenceRef)
		}
		id.Evidence = append(id.Evidence, core.ProteinEvidence{
			PeptideWithMods: core.WithContext(ev.Pre, evPep.sequence, ev.Post),
			Pre:             ev.Pre,
			Post:            ev.Post,
			IsDecoy:         ev.IsDecoy,
			Protein:         protein,
		})
	}
	return id, nil
}

// scanNumber takes the scan number from the result's cvParam, falling back to
// the native ID. Returns -1 when neither has one.
func scanNumber(sir spectrumIdentificationResult) int {
	for _, cv := range sir.CvPar {
		if cv.Accession == accScanNumber {
			if n, err := parseInt(cv.Value); err == nil {
				return n
			}
		}
	}
	for _, re := range []*regexp.Regexp{scanPattern, indexPattern} {
		if m := re.FindStringSubmatch(sir.SpectrumID); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n
			}
		}
	}
	return -1
}

// scanTimeMinutes returns the retention time of a result in minutes, or 0.
func scanTimeMinutes(cvs []cvParam) (float64, error) {
	// There are multiple CV terms that can be used to report the
	// retention time. In order of decreasing preference we use:
	// 1. MS:1000016 - scan start time
	// 2. MS:1000894 - retention time
	// 3. MS:1000826 - elution time
	// 4. MS:1001114 - retention time (deprecated)
	priority := map[string]int{
		"MS:1000016": 1,
		"MS:1000894": 2,
		"MS:1000826": 3,
		"MS:1001114": 4,
	}
	best := math.MaxInt32
	minutes := 0.0
	for _, cv := range cvs {
		p, ok := priority[cv.Accession]
		if !ok || p >= best {
			continue
		}
		t, err := parseFloat(cv.Value)
		if err != nil {
			return 0, fmt.Errorf("invalid retention time: %w", err)
		}
		// Seconds unless the unit says minutes
		if cv.UnitAccession != unitMinute && cv.UnitAccession != unitMinuteMS {
			t /= 60
		}
		best = p
		minutes = t
	}
	return minutes, nil
}

// baseName strips Windows and Unix directories from a SpectraData location.
func baseName(location string) string {
	if i := strings.LastIndexAny(location, `/\`); i >= 0 {
		return location[i+1:]
	}
	return location
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, errors.New("not an integer: " + s)
	}
	return int(f), nil
}
