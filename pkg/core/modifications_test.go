package core

import "testing"

func TestSequenceWithNumericMods(t *testing.T) {
	tests := []struct {
		name     string
		sequence string
		mods     []Modification
		want     string
	}{
		{"no mods", "PEPTIDE", nil, "PEPTIDE"},
		{"residue mod", "PEPTIDE", []Modification{{MassDelta: 79.966331, Location: 4}}, "PEPT+79.966IDE"},
		{"n-term mod", "PEPTIDE", []Modification{{MassDelta: 42.010565, Location: 0}}, "+42.011PEPTIDE"},
		{"c-term mod", "PEPTIDE", []Modification{{MassDelta: -0.984016, Location: 8}}, "PEPTIDE-0.984"},
		{
			name:     "unordered and stacked",
			sequence: "MCK",
			mods: []Modification{
				{MassDelta: 57.021464, Location: 2},
				{MassDelta: 15.994915, Location: 1},
				{MassDelta: 42.010565, Location: 1},
			},
			want: "M+15.995+42.011C+57.021K",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SequenceWithNumericMods(tt.sequence, tt.mods)
			if got != tt.want {
				t.Errorf("SequenceWithNumericMods() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWithContext(t *testing.T) {
	if got := WithContext("K", "PEPTIDE", "-"); got != "K.PEPTIDE.-" {
		t.Errorf("WithContext() = %q", got)
	}
}

func TestProteinRecordSearchText(t *testing.T) {
	p := &ProteinRecord{Accession: "sp|P02438|KR2A_SHEEP", Description: "Keratin"}
	if got := p.SearchText(); got != "sp|P02438|KR2A_SHEEP Keratin" {
		t.Errorf("SearchText() = %q", got)
	}
	p.Description = ""
	if got := p.SearchText(); got != "sp|P02438|KR2A_SHEEP" {
		t.Errorf("SearchText() = %q", got)
	}
}
