package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PNNL-Comp-Mass-Spec/Mzid-To-Tsv-Converter/internal/logger"
	"github.com/PNNL-Comp-Mass-Spec/Mzid-To-Tsv-Converter/pkg/convert"
	"github.com/PNNL-Comp-Mass-Spec/Mzid-To-Tsv-Converter/pkg/reader/mzid"
	"github.com/PNNL-Comp-Mass-Spec/Mzid-To-Tsv-Converter/pkg/writer/sqlite"
	"github.com/PNNL-Comp-Mass-Spec/Mzid-To-Tsv-Converter/pkg/writer/tsv"
)

func runConvert(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	opts, err := resolveOptions(cmd.Flags(), configFile, flagOpts)
	if err != nil {
		return err
	}

	inputs := args
	if inputPath != "" {
		inputs = append([]string{inputPath}, args...)
	}
	if len(inputs) == 0 {
		return errors.New("an mzid path must be specified (--mzid)")
	}

	var files []string
	batch := len(inputs) > 1
	for _, in := range inputs {
		found, multi, err := discoverInputs(in, opts.Recurse)
		if err != nil {
			return err
		}
		files = append(files, found...)
		batch = batch || multi
	}

	if batch && outputPath != "" {
		if err := os.MkdirAll(outputPath, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	logOptions(log, opts)
	converted := 0
	for _, file := range files {
		out := outputPathFor(file, outputPath, batch)
		log.Info("converting", "mzid", file, "tsv", out)

		if _, err := convertFile(file, out, opts, log); err != nil {
			reportFailure(log, file, err)
			continue
		}
		converted++
	}

	if converted == 0 {
		return fmt.Errorf("none of the %d input files could be converted", len(files))
	}
	if failed := len(files) - converted; failed > 0 {
		log.Warn("some files failed", "converted", converted, "failed", failed)
	}
	return nil
}

func reportFailure(log *logger.Logger, file string, err error) {
	var convErr *convert.ConversionError
	switch {
	case errors.Is(err, mzid.ErrDuplicateID):
		log.Error("duplicate ids in source file; rerun with --skipDupIds to keep the first of each",
			"file", file, "error", err)
	case errors.As(err, &convErr):
		log.Error("conversion failed", "file", file, "rows", convErr.RowsWritten, "error", convErr.Err)
	default:
		log.Error("conversion failed", "file", file, "error", err)
	}
}

// convertFile converts one mzid file. Every writer is closed before it
// returns, whatever the outcome.
func convertFile(path, out string, opts convert.Options, log *logger.Logger) (stats convert.Stats, err error) {
	rd, err := mzid.Open(path, opts.SkipDuplicateSourceID)
	if err != nil {
		return stats, err
	}
	defer rd.Close()

	tw, err := tsv.Create(out)
	if err != nil {
		return stats, err
	}
	closers := []func(failed bool) error{func(bool) error { return tw.Close() }}
	writers := []convert.RowWriter{tw}
	defer func() {
		for _, c := range closers {
			if cerr := c(err != nil); cerr != nil && err == nil {
				err = cerr
			}
		}
	}()

	if opts.SQLite {
		db, err := sqlite.NewWriter(databasePathFor(out), filepath.Base(path))
		if err != nil {
			return stats, fmt.Errorf("failed to create output database: %w", err)
		}
		closers = append(closers, func(failed bool) error {
			if failed {
				return db.Abort()
			}
			return db.Finalize()
		})
		writers = append(writers, db)
	}

	return convert.NewConverter(opts, log).Convert(rd, convert.MultiRowWriter(writers...))
}

// discoverInputs expands a file, directory or wildcard into sorted mzid
// paths. multi reports whether the argument named more than a single file.
func discoverInputs(arg string, recurse bool) (files []string, multi bool, err error) {
	if strings.ContainsAny(arg, "*?[") {
		dir, pattern := filepath.Split(arg)
		dir = filepath.Clean(dir)
		files, err = walkMatching(dir, recurse, func(name string) (bool, error) {
			return filepath.Match(pattern, name)
		})
		if err != nil {
			return nil, true, err
		}
		return checkFound(arg, files)
	}

	info, err := os.Stat(arg)
	if err != nil {
		return nil, false, fmt.Errorf("mzid path does not exist: %w", err)
	}
	if !info.IsDir() {
		return []string{arg}, false, nil
	}

	files, err = walkMatching(arg, recurse, func(name string) (bool, error) {
		return isMzidName(name), nil
	})
	if err != nil {
		return nil, true, err
	}
	return checkFound(arg, files)
}

func checkFound(arg string, files []string) ([]string, bool, error) {
	if len(files) == 0 {
		return nil, true, fmt.Errorf("%w matching %s", convert.ErrNoInputFiles, arg)
	}
	sort.Strings(files)
	return files, true, nil
}

func walkMatching(root string, recurse bool, match func(name string) (bool, error)) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && !recurse {
				return filepath.SkipDir
			}
			return nil
		}
		ok, err := match(d.Name())
		if err != nil {
			return err
		}
		if ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", root, err)
	}
	return files, nil
}

func isMzidName(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".mzid") || strings.HasSuffix(lower, ".mzid.gz")
}

// outputPathFor derives the tsv path of an input: .gz is dropped and the
// extension replaced with .tsv. An explicit tsv path is used as is for a
// single input, and as the output directory in batch mode or when it names
// an existing directory.
func outputPathFor(input, tsvPath string, batch bool) string {
	derived := input
	if strings.HasSuffix(strings.ToLower(derived), ".gz") {
		derived = derived[:len(derived)-len(".gz")]
	}
	derived = strings.TrimSuffix(derived, filepath.Ext(derived)) + ".tsv"

	if tsvPath == "" {
		return derived
	}
	if info, err := os.Stat(tsvPath); batch || (err == nil && info.IsDir()) {
		return filepath.Join(tsvPath, filepath.Base(derived))
	}
	return tsvPath
}

// databasePathFor returns the SQLite path written next to a tsv output.
func databasePathFor(tsvPath string) string {
	return strings.TrimSuffix(tsvPath, filepath.Ext(tsvPath)) + ".db"
}
