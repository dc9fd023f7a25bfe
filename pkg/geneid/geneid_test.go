package geneid

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDefaultPattern(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"sp|P02438|KR2A_SHEEP", "KR2A", true},
		{"tr|E9PNT2|E9PNT2_HUMAN", "E9PNT2", true},
		{"sp|P62258|1433E_HUMAN", "1433E", true},
		{"KR2A_SHEEP", "KR2A", true},
		{"sp|P62258|1433E", "", false},
		{"sp|Q9NZD4|AHSP_HUMAN Alpha-hemoglobin-stabilizing protein", "AHSP", true},
		{">sp|Q9Y2K6|UBP20_HUMAN Ubiquitin carboxyl-terminal hydrolase 20 OS=Homo sapiens OX=9606 GN=USP20 PE=1 SV=2", "UBP20", true},
		{"sp|P62266|RS23_HUMAN", "RS23", true},
		{">sp|P62266|RS23_HUMAN", "RS23", true},
		{"sp|P62258|1433E_XX", "1433E", true},
		{"sp|P62258|1433E_X", "", false},
		{"sp|P62258|1433E_", "", false},
		{"sp|Q8WXK4", "", false},
		{"sp|Q8WXK4 Ankyrin repeat and SOCS box protein 12 OS=Homo sapiens OX=9606 GN=ASB12 PE=1 SV=2", "", false},
		{"sp|Q8WXK4|ASB12_HUMAN Ankyrin repeat and SOCS box protein 12 OS=Homo sapiens OX=9606 GN=ASB12 PE=1 SV=2", "ASB12", true},
		{"E9PNT2_HUMAN some other stuff", "E9PNT2", true},
	}

	e, err := New(DefaultPattern, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := e.Extract(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Extract(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Extract(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCustomPatterns(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		input   string
		want    string
	}{
		{"whole match", `GN=[^\s|]+`, "some stuff GN=PNPLA8 some other stuff", "GN=PNPLA8"},
		{"capture group", `GN=([^\s|]+)`, "some stuff GN=PNPLA8 some other stuff", "PNPLA8"},
		{"lookbehind only", `(?<=GN=)[^\s|]+`, "some stuff GN=PNPLA8 some other stuff", "PNPLA8"},
		{"group before literal", `GN=([^\s|]+)\|chr`, "some stuff |GN=KRTAP5-1|chr=11| some other stuff", "KRTAP5-1"},
		{"greedy group", `GN=([^\s]+)\|`, "some stuff |GN=KRTAP5-1|chr=11| some other stuff", "KRTAP5-1|chr=11"},
		{"ensembl gene", `gene:(ENS[^ ]+)`, "ENSP00000364453 pep:known gene:ENSG00000072506 transcript:ENST00000375304", "ENSG00000072506"},
		{"description tail", `[^\s]+ (.+)`, "SO_1211 peptide chain release factor 3, PrfC", "peptide chain release factor 3, PrfC"},
		{"last comma part", `.+, (.+)`, "SO_1211 peptide chain release factor 3, PrfC", "PrfC"},
		{"nested lookbehind", `(?<=(?<=(?<=sp|tr)\|[0-9a-zA-Z\-]{6,}\|)|^)([A-Z0-9]{2,})(?=_[A-Z0-9]{2,})`, "sp|P02438|KR2A_SHEEP some other stuff", "KR2A"},
		{"several groups uses last", `(?<=(sp|tr)\|[0-9A-Z\-]{6,}\|)([A-Z0-9_]{2,})`, "tr|E9PNT2|E9PNT2_HUMAN some other stuff", "E9PNT2_HUMAN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(tt.pattern, false)
			if err != nil {
				t.Fatalf("New(%q): %v", tt.pattern, err)
			}
			got, ok := e.Extract(tt.input)
			if !ok {
				t.Fatalf("Extract(%q) did not match", tt.input)
			}
			if got != tt.want {
				t.Errorf("Extract(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCaseSensitivity(t *testing.T) {
	insensitive, err := New(`gn=([^\s|]+)`, false)
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := insensitive.Extract("GN=USP20 PE=1"); !ok || got != "USP20" {
		t.Errorf("case-insensitive Extract = %q, %v", got, ok)
	}

	sensitive, err := New(`gn=([^\s|]+)`, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := sensitive.Extract("GN=USP20 PE=1"); ok {
		t.Errorf("case-sensitive pattern matched different case")
	}
}

func TestInvalidPattern(t *testing.T) {
	_, err := New(`GN=([^\s|]+`, false)
	if err == nil {
		t.Fatal("expected error for unbalanced pattern")
	}
	if !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("error %v is not ErrInvalidPattern", err)
	}
}

func TestMatchTimeout(t *testing.T) {
	e, err := New(`^(a+)+$`, true)
	if err != nil {
		t.Fatal(err)
	}
	if e.re.MatchTimeout != MatchTimeout {
		t.Errorf("MatchTimeout = %v, want %v", e.re.MatchTimeout, MatchTimeout)
	}

	e.re.MatchTimeout = 50 * time.Millisecond
	start := time.Now()
	if _, ok := e.Extract(strings.Repeat("a", 40) + "!"); ok {
		t.Error("backtracking pattern reported a match")
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("Extract took %v, want it bounded by the match timeout", elapsed)
	}
}
