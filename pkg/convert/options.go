// Package convert turns identification records into delimited output rows:
// score filtering, match expansion, protein list aggregation and formatting.
package convert

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/PNNL-Comp-Mass-Spec/Mzid-To-Tsv-Converter/pkg/filter"
	"github.com/PNNL-Comp-Mass-Spec/Mzid-To-Tsv-Converter/pkg/geneid"
)

// DefaultProteinDelimiter separates protein names in protein list mode.
const DefaultProteinDelimiter = ", "

// ErrNoInputFiles is returned when input discovery finds nothing to convert.
var ErrNoInputFiles = errors.New("no input files found")

// Options configures a conversion. The yaml tags are the keys accepted in a
// parameter file.
type Options struct {
	ShowDecoy             bool    `yaml:"showDecoy"`
	UnrollResults         bool    `yaml:"unroll"`
	SingleResultPerSpec   bool    `yaml:"singleResult"`
	ProteinList           bool    `yaml:"proteinList"`
	ProteinListDelimiter  string  `yaml:"proteinListDelimiter"`
	MaxSpecEValue         float64 `yaml:"maxSpecEValue"`
	MaxEValue             float64 `yaml:"maxEValue"`
	MaxQValue             float64 `yaml:"maxQValue"`
	AddGeneID             bool    `yaml:"geneId"`
	GeneIDRegex           string  `yaml:"geneIdRegex"`
	GeneIDCaseSensitive   bool    `yaml:"geneIdCaseSensitive"`
	SkipDuplicateSourceID bool    `yaml:"skipDupIds"`
	NoExtendedFields      bool    `yaml:"noExtended"`
	SQLite                bool    `yaml:"sqlite"`
	Recurse               bool    `yaml:"recurse"`

	geneExtractor *geneid.Extractor
}

// DefaultOptions returns the options used when nothing is specified.
func DefaultOptions() Options {
	return Options{
		ProteinListDelimiter: DefaultProteinDelimiter,
		GeneIDRegex:          geneid.DefaultPattern,
	}
}

// LoadOptionsFile reads a YAML parameter file on top of opts.
func LoadOptionsFile(path string, opts *Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read parameter file: %w", err)
	}
	if err := yaml.Unmarshal(data, opts); err != nil {
		return fmt.Errorf("failed to parse parameter file %s: %w", path, err)
	}
	return nil
}

// Validate normalizes the options and compiles the gene ID pattern. It must be
// called before conversion; a pattern error is a configuration error and no
// file should be processed.
func (o *Options) Validate() error {
	if o.ProteinListDelimiter == "" {
		o.ProteinListDelimiter = DefaultProteinDelimiter
	}
	if o.GeneIDRegex == "" {
		o.GeneIDRegex = geneid.DefaultPattern
	}
	// Protein lists need every match, so they take precedence over unrolling.
	if o.ProteinList {
		o.UnrollResults = false
	}

	o.geneExtractor = nil
	if o.AddGeneID {
		e, err := geneid.New(o.GeneIDRegex, o.GeneIDCaseSensitive)
		if err != nil {
			return err
		}
		o.geneExtractor = e
	}
	return nil
}

// MaxMatchesPerIdent returns how many rows an identification may produce
// before aggregation; 0 means unbounded.
func (o *Options) MaxMatchesPerIdent() int {
	if o.ProteinList || o.UnrollResults {
		return 0
	}
	return 1
}

// ScoreFilter returns the filter configuration for these options.
func (o *Options) ScoreFilter() filter.Config {
	return filter.Config{
		MaxSpecEValue: o.MaxSpecEValue,
		MaxEValue:     o.MaxEValue,
		MaxQValue:     o.MaxQValue,
	}
}

// GeneExtractor returns the compiled gene ID extractor, or nil when gene IDs
// are not requested.
func (o *Options) GeneExtractor() *geneid.Extractor {
	return o.geneExtractor
}
