package convert

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/PNNL-Comp-Mass-Spec/Mzid-To-Tsv-Converter/pkg/core"
)

func TestFormatScore(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		threshold float64
		want      string
	}{
		{"zero", 0, evalueSciThreshold, "0"},
		{"small evalue", 1.23456789e-5, evalueSciThreshold, "1.2346E-05"},
		{"evalue above bound", 0.0123456, evalueSciThreshold, "0.012346"},
		{"evalue at bound", 0.001, evalueSciThreshold, "0.001"},
		{"evalue tens", 12.3456789, evalueSciThreshold, "12.346"},
		{"half", 0.5, evalueSciThreshold, "0.5"},
		{"large", 2e7, evalueSciThreshold, "2E+07"},
		{"small qvalue", 0.00001, qvalueSciThreshold, "1E-05"},
		{"qvalue above bound", 0.0001, qvalueSciThreshold, "0.0001"},
		{"qvalue", 0.0123, qvalueSciThreshold, "0.0123"},
		{"one", 1, qvalueSciThreshold, "1"},
		{"negative", -0.25, evalueSciThreshold, "-0.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatScore(tt.value, scoreDigits, tt.threshold); got != tt.want {
				t.Errorf("FormatScore(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestFormatScoreNonFinite(t *testing.T) {
	if got := FormatScore(math.NaN(), scoreDigits, evalueSciThreshold); got != "NaN" {
		t.Errorf("FormatScore(NaN) = %q", got)
	}
	if got := FormatScore(math.Inf(1), scoreDigits, evalueSciThreshold); got != "+Inf" {
		t.Errorf("FormatScore(+Inf) = %q", got)
	}
}

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{1234.567891, "1234.56789"},
		{500, "500.0"},
		{0, "0.0"},
		{-0.000001, "0.0"},
		{-3.25, "-3.25"},
		{12.1000001, "12.1"},
	}

	for _, tt := range tests {
		if got := FormatDecimal(tt.value, 5); got != tt.want {
			t.Errorf("FormatDecimal(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestHeader(t *testing.T) {
	tests := []struct {
		name      string
		formatter Formatter
		want      []string
	}{
		{
			name:      "basic",
			formatter: Formatter{},
			want: []string{"#SpecFile", "SpecId", "ScanNum", "FragMethod", "Precursor", "IsotopeError",
				"PrecursorError(ppm)", "Charge", "Peptide", "Protein", "DeNovoScore", "MSGFScore",
				"SpecEValue", "EValue", "QValue", "PepQValue"},
		},
		{
			name:      "extended with gene",
			formatter: Formatter{Extended: true, GeneID: true},
			want: []string{"#SpecFile", "SpecId", "ScanNum", "ScanTime(Min)", "FragMethod", "Precursor",
				"IsotopeError", "PrecursorError(ppm)", "Charge", "Peptide", "Protein", "GeneID",
				"DeNovoScore", "MSGFScore", "SpecEValue", "EValue", "QValue", "PepQValue"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.formatter.Header()); diff != "" {
				t.Errorf("Header() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func formatIdent() *core.Identification {
	return &core.Identification{
		SpecFile:        "Sample.mzML",
		NativeID:        "controllerType=0 controllerNumber=1 scan=1234",
		ScanNum:         1234,
		ScanTimeMinutes: 25.123456,
		FragMethod:      "HCD",
		ExperimentalMz:  650.3125 + core.IsotopeMassUnit/2,
		CalculatedMz:    650.3125,
		IsotopeError:    1,
		Charge:          2,
		Peptide:         "PEPTIDE",
		DeNovoScore:     130,
		RawScore:        123,
		SpecEValue:      1.5e-12,
		EValue:          3.2e-5,
		QValue:          0,
		PepQValue:       0,
	}
}

func TestFormat(t *testing.T) {
	f := &Formatter{Extended: true, GeneID: true}
	row := core.CandidateRow{
		Ident:   formatIdent(),
		Peptide: "K.PEPTIDE.R",
		Protein: "sp|P12345|ABC_HUMAN",
		GeneID:  "ABC",
	}

	want := []string{"Sample.mzML", "controllerType=0 controllerNumber=1 scan=1234", "1234", "25.12346", "HCD",
		"650.81418", "1", "0.0", "2", "K.PEPTIDE.R", "sp|P12345|ABC_HUMAN", "ABC",
		"130", "123", "1.5E-12", "3.2E-05", "0.0", "0.0"}
	if diff := cmp.Diff(want, f.Format(row)); diff != "" {
		t.Errorf("first Format() mismatch (-want +got):\n%s", diff)
	}

	// Only the first row gets decimal zeros.
	got := f.Format(row)
	if got[16] != "0" || got[17] != "0" {
		t.Errorf("second row QValue, PepQValue = %q, %q, want \"0\", \"0\"", got[16], got[17])
	}
}

func TestFormatColumnCountMatchesHeader(t *testing.T) {
	for _, f := range []*Formatter{{}, {Extended: true}, {GeneID: true}, {Extended: true, GeneID: true}} {
		fields := f.Format(core.CandidateRow{Ident: formatIdent()})
		if len(fields) != len(f.Header()) {
			t.Errorf("%+v: %d fields for %d columns", f, len(fields), len(f.Header()))
		}
	}
}
