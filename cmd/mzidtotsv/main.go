// mzidtotsv - mzIdentML to tab-separated values converter
package main

import (
	"fmt"
	"os"

	"github.com/PNNL-Comp-Mass-Spec/Mzid-To-Tsv-Converter/cmd/mzidtotsv/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
