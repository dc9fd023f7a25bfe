package cmd

import (
	"github.com/spf13/cobra"

	"github.com/PNNL-Comp-Mass-Spec/Mzid-To-Tsv-Converter/pkg/reader/mzid"
	"github.com/PNNL-Comp-Mass-Spec/Mzid-To-Tsv-Converter/pkg/summary"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Summarize an mzIdentML file",
	Long: `Print summary statistics about an mzIdentML file: identification and scan
counts, target and decoy evidence, and the precursor mass error distribution.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		rd, err := mzid.Open(args[0], flagOpts.SkipDuplicateSourceID)
		if err != nil {
			return err
		}
		defer rd.Close()

		meta := rd.Metadata()
		log.Debug("reading", "file", args[0], "spectra", meta.SpectrumFile,
			"software", meta.SoftwareAccession, "version", meta.SoftwareVersion)

		s, err := summary.Collect(rd)
		if err != nil {
			return err
		}
		return s.Print(cmd.OutOrStdout())
	},
}
