package convert

import (
	"math"
	"strconv"
	"strings"

	"github.com/PNNL-Comp-Mass-Spec/Mzid-To-Tsv-Converter/pkg/core"
)

// Output column names.
const (
	ColSpecFile       = "#SpecFile"
	ColSpecID         = "SpecId"
	ColScanNum        = "ScanNum"
	ColScanTime       = "ScanTime(Min)"
	ColFragMethod     = "FragMethod"
	ColPrecursor      = "Precursor"
	ColIsotopeError   = "IsotopeError"
	ColPrecursorError = "PrecursorError(ppm)"
	ColCharge         = "Charge"
	ColPeptide        = "Peptide"
	ColProtein        = "Protein"
	ColGeneID         = "GeneID"
	ColDeNovoScore    = "DeNovoScore"
	ColMSGFScore      = "MSGFScore"
	ColSpecEValue     = "SpecEValue"
	ColEValue         = "EValue"
	ColQValue         = "QValue"
	ColPepQValue      = "PepQValue"
)

const (
	scoreDigits = 5

	// E-values use plain decimals down to 0.001, Q-values down to 0.00005.
	evalueSciThreshold = 1000
	qvalueSciThreshold = 0.00005

	// Magnitudes at or above this are always written in scientific notation.
	largeSciThreshold = 1e6
)

// Formatter renders candidate rows as ordered string fields.
type Formatter struct {
	Extended bool // Include ScanTime(Min)
	GeneID   bool // Include GeneID

	wroteFirst bool
}

// Header returns the column names in output order.
func (f *Formatter) Header() []string {
	cols := []string{ColSpecFile, ColSpecID, ColScanNum}
	if f.Extended {
		cols = append(cols, ColScanTime)
	}
	cols = append(cols, ColFragMethod, ColPrecursor, ColIsotopeError, ColPrecursorError,
		ColCharge, ColPeptide, ColProtein)
	if f.GeneID {
		cols = append(cols, ColGeneID)
	}
	return append(cols, ColDeNovoScore, ColMSGFScore, ColSpecEValue, ColEValue, ColQValue, ColPepQValue)
}

// Format renders one row. The first row rendered by a Formatter gets "0.0"
// instead of "0" in its score columns.
func (f *Formatter) Format(row core.CandidateRow) []string {
	id := row.Ident

	specEValue := FormatScore(id.SpecEValue, scoreDigits, evalueSciThreshold)
	eValue := FormatScore(id.EValue, scoreDigits, evalueSciThreshold)
	qValue := FormatScore(id.QValue, scoreDigits, qvalueSciThreshold)
	pepQValue := FormatScore(id.PepQValue, scoreDigits, qvalueSciThreshold)
	if !f.wroteFirst {
		specEValue = zeroAsDecimal(specEValue)
		eValue = zeroAsDecimal(eValue)
		qValue = zeroAsDecimal(qValue)
		pepQValue = zeroAsDecimal(pepQValue)
		f.wroteFirst = true
	}

	fields := []string{id.SpecFile, id.NativeID, strconv.Itoa(id.ScanNum)}
	if f.Extended {
		fields = append(fields, FormatDecimal(id.ScanTimeMinutes, 5))
	}
	fields = append(fields,
		id.FragMethod,
		FormatDecimal(id.ExperimentalMz, 5),
		strconv.Itoa(id.IsotopeError),
		FormatDecimal(core.PrecursorErrorPPM(id.ExperimentalMz, id.CalculatedMz, id.IsotopeError, id.Charge), 5),
		strconv.Itoa(id.Charge),
		row.Peptide,
		row.Protein,
	)
	if f.GeneID {
		fields = append(fields, row.GeneID)
	}
	return append(fields,
		strconv.Itoa(id.DeNovoScore),
		strconv.FormatFloat(id.RawScore, 'f', -1, 64),
		specEValue, eValue, qValue, pepQValue,
	)
}

// zeroAsDecimal makes spreadsheet and SQL importers infer a floating point
// column from the first row.
func zeroAsDecimal(s string) string {
	if s == "0" {
		return "0.0"
	}
	return s
}

// FormatScore writes value with the given number of significant digits.
// Values smaller than the threshold bound switch to scientific notation; a
// threshold of 1 or more means 1/threshold, a smaller one is used as is.
func FormatScore(value float64, digits int, threshold float64) string {
	if value == 0 {
		return "0"
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return strconv.FormatFloat(value, 'g', -1, 64)
	}

	lower := threshold
	if threshold >= 1 {
		lower = 1 / threshold
	}
	abs := math.Abs(value)
	if abs < lower || abs >= largeSciThreshold {
		return formatScientific(value, digits)
	}
	return formatSignificant(value, digits)
}

func formatSignificant(value float64, digits int) string {
	magnitude := int(math.Floor(math.Log10(math.Abs(value))))
	decimals := digits - 1 - magnitude
	if decimals < 0 {
		decimals = 0
	}
	return trimFraction(strconv.FormatFloat(value, 'f', decimals, 64))
}

func formatScientific(value float64, digits int) string {
	s := strconv.FormatFloat(value, 'E', digits-1, 64)
	mantissa, exponent, _ := strings.Cut(s, "E")
	return trimFraction(mantissa) + "E" + exponent
}

// FormatDecimal writes value with up to maxDecimals decimals and at least one.
func FormatDecimal(value float64, maxDecimals int) string {
	s := trimFraction(strconv.FormatFloat(value, 'f', maxDecimals, 64))
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	if s == "-0.0" {
		return "0.0"
	}
	return s
}

func trimFraction(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
