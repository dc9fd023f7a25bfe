// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/PNNL-Comp-Mass-Spec/Mzid-To-Tsv-Converter/internal/logger"
	"github.com/PNNL-Comp-Mass-Spec/Mzid-To-Tsv-Converter/pkg/convert"
	"github.com/PNNL-Comp-Mass-Spec/Mzid-To-Tsv-Converter/pkg/geneid"
)

var (
	// Flags for the convert (root) command
	inputPath  string
	outputPath string
	configFile string
	flagOpts   convert.Options

	// Persistent flags
	verbose bool
	quiet   bool
)

// Short aliases accepted for compatibility with the Windows converter.
var flagAliases = map[string]string{
	"sd":   "showDecoy",
	"pl":   "proteinList",
	"1":    "singleResult",
	"gene": "geneId",
}

var flagNames = []string{
	"mzid", "tsv", "config", "unroll", "showDecoy", "singleResult", "proteinList",
	"proteinListDelimiter", "maxSpecEValue", "maxEValue", "maxQValue", "geneId",
	"geneIdRegex", "geneIdCaseSensitive", "skipDupIds", "noExtended", "sqlite",
	"recurse", "verbose", "quiet",
}

// canonicalFlags maps lower case flag names to their registered spelling.
var canonicalFlags = func() map[string]string {
	m := make(map[string]string, len(flagNames)+len(flagAliases))
	for _, name := range flagNames {
		m[strings.ToLower(name)] = name
	}
	for alias, name := range flagAliases {
		m[strings.ToLower(alias)] = name
	}
	return m
}()

var rootCmd = &cobra.Command{
	Use:   "mzidtotsv [mzid path...]",
	Short: "mzidtotsv - mzIdentML to TSV converter",
	Long: `mzidtotsv converts MS-GF+ mzIdentML results (.mzid or .mzid.gz) to
tab-separated text, one row per peptide identification.

Supports:
- Unrolling results to one row per peptide/protein combination
- Protein lists collapsing every protein of an identification into one row
- SpecEValue, EValue and QValue filtering
- Gene ID extraction from protein names
- Directory and wildcard input, optional SQLite output

Examples:
  # Convert one file; writes Dataset.tsv next to it
  mzidtotsv -i Dataset.mzid.gz

  # Unroll results and keep decoys
  mzidtotsv -i Dataset.mzid -o results/Dataset.tsv -u --showDecoy

  # Convert a directory with a protein list and a QValue filter
  mzidtotsv -i results/ --proteinList --maxQValue 0.01`,
	Version:       "1.5.0",
	Args:          cobra.ArbitraryArgs,
	RunE:          runConvert,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(summarizeCmd)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug messages")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log errors")
	rootCmd.PersistentFlags().BoolVar(&flagOpts.SkipDuplicateSourceID, "skipDupIds", false,
		"Ignore repeated ids in the mzIdentML file instead of failing")

	f := rootCmd.Flags()
	f.StringVarP(&inputPath, "mzid", "i", "", "mzid[.gz] file, directory or wildcard to convert")
	f.StringVarP(&outputPath, "tsv", "o", "", "Output tsv file, or directory when converting several files (default: next to the input)")
	f.StringVar(&configFile, "config", "", "YAML parameter file; flags given on the command line take precedence")
	f.BoolVarP(&flagOpts.UnrollResults, "unroll", "u", false, "One row per unique peptide/protein combination of each identification")
	f.BoolVar(&flagOpts.ShowDecoy, "showDecoy", false, "Include decoy results")
	f.BoolVar(&flagOpts.SingleResultPerSpec, "singleResult", false, "Only keep the first identification of each spectrum")
	f.BoolVar(&flagOpts.ProteinList, "proteinList", false, "One row per identification listing all of its proteins (overrides --unroll)")
	f.StringVar(&flagOpts.ProteinListDelimiter, "proteinListDelimiter", convert.DefaultProteinDelimiter, "Separator between proteins in --proteinList mode")
	f.Float64Var(&flagOpts.MaxSpecEValue, "maxSpecEValue", 0, "Maximum SpecEValue; between 0 and 1, 0 disables")
	f.Float64Var(&flagOpts.MaxEValue, "maxEValue", 0, "Maximum EValue; 0 disables")
	f.Float64Var(&flagOpts.MaxQValue, "maxQValue", 0, "Maximum QValue; between 0 and 1, 0 disables")
	f.BoolVar(&flagOpts.AddGeneID, "geneId", false, "Add a GeneID column extracted from the protein name")
	f.StringVar(&flagOpts.GeneIDRegex, "geneIdRegex", geneid.DefaultPattern, "Pattern used to extract gene IDs")
	f.BoolVar(&flagOpts.GeneIDCaseSensitive, "geneIdCaseSensitive", false, "Match --geneIdRegex case sensitively")
	f.BoolVar(&flagOpts.NoExtendedFields, "noExtended", false, "Omit the ScanTime(Min) column")
	f.BoolVar(&flagOpts.SQLite, "sqlite", false, "Also write each result to an SQLite database")
	f.BoolVar(&flagOpts.Recurse, "recurse", false, "Search subdirectories when --mzid is a directory or wildcard")

	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)
}

// normalizeFlagName matches flag names case insensitively and resolves aliases.
func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	if canonical, ok := canonicalFlags[strings.ToLower(name)]; ok {
		return pflag.NormalizedName(canonical)
	}
	return pflag.NormalizedName(name)
}

// newLogger builds the logger selected by --verbose / --quiet.
func newLogger() (*logger.Logger, error) {
	level := logger.LevelDefault
	switch {
	case verbose:
		level = logger.LevelVerbose
	case quiet:
		level = logger.LevelQuiet
	}
	log, err := logger.New(level)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

// resolveOptions layers defaults, the parameter file and the flags that were
// set explicitly, then validates the result.
func resolveOptions(flags *pflag.FlagSet, paramFile string, fromFlags convert.Options) (convert.Options, error) {
	opts := convert.DefaultOptions()
	if paramFile != "" {
		if err := convert.LoadOptionsFile(paramFile, &opts); err != nil {
			return opts, err
		}
	}

	flags.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "unroll":
			opts.UnrollResults = fromFlags.UnrollResults
		case "showDecoy":
			opts.ShowDecoy = fromFlags.ShowDecoy
		case "singleResult":
			opts.SingleResultPerSpec = fromFlags.SingleResultPerSpec
		case "proteinList":
			opts.ProteinList = fromFlags.ProteinList
		case "proteinListDelimiter":
			opts.ProteinListDelimiter = fromFlags.ProteinListDelimiter
		case "maxSpecEValue":
			opts.MaxSpecEValue = fromFlags.MaxSpecEValue
		case "maxEValue":
			opts.MaxEValue = fromFlags.MaxEValue
		case "maxQValue":
			opts.MaxQValue = fromFlags.MaxQValue
		case "geneId":
			opts.AddGeneID = fromFlags.AddGeneID
		case "geneIdRegex":
			opts.GeneIDRegex = fromFlags.GeneIDRegex
		case "geneIdCaseSensitive":
			opts.GeneIDCaseSensitive = fromFlags.GeneIDCaseSensitive
		case "skipDupIds":
			opts.SkipDuplicateSourceID = fromFlags.SkipDuplicateSourceID
		case "noExtended":
			opts.NoExtendedFields = fromFlags.NoExtendedFields
		case "sqlite":
			opts.SQLite = fromFlags.SQLite
		case "recurse":
			opts.Recurse = fromFlags.Recurse
		}
	})

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// logOptions echoes the effective options.
func logOptions(log *logger.Logger, opts convert.Options) {
	scoreFilter := opts.ScoreFilter()
	log.Info("using options",
		"unroll", opts.UnrollResults,
		"showDecoy", opts.ShowDecoy,
		"singleResult", opts.SingleResultPerSpec,
		"proteinList", opts.ProteinList,
		"scoreFilter", scoreFilter.String(),
		"geneId", opts.AddGeneID,
		"sqlite", opts.SQLite,
	)
	if opts.ProteinList {
		log.Debug("protein list delimiter", "delimiter", opts.ProteinListDelimiter)
	}
	if opts.AddGeneID {
		log.Debug("gene ID pattern", "pattern", opts.GeneIDRegex, "caseSensitive", opts.GeneIDCaseSensitive)
	}
}
