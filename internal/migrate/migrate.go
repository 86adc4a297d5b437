// internal/migrate/migrate.go

// Package migrate reorganizes the legacy experiment layout
// ({old}/{name}_data and {old}/{name}_results) into the current data/ and
// results/ trees. Existing files are never overwritten.
package migrate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

const (
	dataDirSuffix    = "_data"
	resultsDirSuffix = "_results"
)

var (
	planColor = color.New(color.FgCyan)
	doneColor = color.New(color.FgGreen)
	skipColor = color.New(color.FgYellow)
)

// Options configures a migration run.
type Options struct {
	OldDir     string
	DataDir    string
	ResultsDir string
	// DryRun prints the planned actions without copying anything.
	DryRun bool
}

// Run migrates data files and then result files. Missing source directories
// are reported and skipped, not errors.
func Run(out io.Writer, opts Options) error {
	if opts.DryRun {
		planColor.Fprintln(out, "DRY RUN - no files will be copied")
	}

	if err := migrateData(out, opts); err != nil {
		return err
	}
	return migrateResults(out, opts)
}

// migrateData copies {old}/{name}_data/*.json to {data}/{name}/.
func migrateData(out io.Writer, opts Options) error {
	entries, err := os.ReadDir(opts.OldDir)
	if err != nil {
		if os.IsNotExist(err) {
			skipColor.Fprintf(out, "source directory not found: %s\n", opts.OldDir)
			return nil
		}
		return fmt.Errorf("reading %s: %w", opts.OldDir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasSuffix(entry.Name(), dataDirSuffix) {
			continue
		}
		datasetName := strings.TrimSuffix(entry.Name(), dataDirSuffix)
		sourceDir := filepath.Join(opts.OldDir, entry.Name())
		targetDir := filepath.Join(opts.DataDir, datasetName)

		planColor.Fprintf(out, "migrating %s -> %s\n", sourceDir, targetDir)
		if err := copyJSONFiles(out, sourceDir, targetDir, "*.json", opts.DryRun); err != nil {
			return err
		}
	}
	return nil
}

// migrateResults copies {old}/{name}_results/{model}/*_res.json to
// {results}/{name}/{model}/.
func migrateResults(out io.Writer, opts Options) error {
	entries, err := os.ReadDir(opts.OldDir)
	if err != nil {
		if os.IsNotExist(err) {
			skipColor.Fprintf(out, "source directory not found: %s\n", opts.OldDir)
			return nil
		}
		return fmt.Errorf("reading %s: %w", opts.OldDir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasSuffix(entry.Name(), resultsDirSuffix) {
			continue
		}
		datasetName := strings.TrimSuffix(entry.Name(), resultsDirSuffix)
		sourceDir := filepath.Join(opts.OldDir, entry.Name())

		modelEntries, err := os.ReadDir(sourceDir)
		if err != nil {
			return fmt.Errorf("reading %s: %w", sourceDir, err)
		}
		for _, modelEntry := range modelEntries {
			if !modelEntry.IsDir() {
				continue
			}
			modelSource := filepath.Join(sourceDir, modelEntry.Name())
			modelTarget := filepath.Join(opts.ResultsDir, datasetName, modelEntry.Name())

			planColor.Fprintf(out, "migrating %s -> %s\n", modelSource, modelTarget)
			if err := copyJSONFiles(out, modelSource, modelTarget, "*_res.json", opts.DryRun); err != nil {
				return err
			}
		}
	}
	return nil
}

// copyJSONFiles copies every file matching pattern, skipping files that
// already exist at the destination.
func copyJSONFiles(out io.Writer, sourceDir, targetDir, pattern string, dryRun bool) error {
	matches, err := filepath.Glob(filepath.Join(sourceDir, pattern))
	if err != nil {
		return err
	}

	for _, source := range matches {
		target := filepath.Join(targetDir, filepath.Base(source))
		if _, err := os.Stat(target); err == nil {
			skipColor.Fprintf(out, "   skipping %s (already exists)\n", filepath.Base(source))
			continue
		}

		if dryRun {
			planColor.Fprintf(out, "   would copy %s\n", filepath.Base(source))
			continue
		}

		if err := os.MkdirAll(targetDir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", targetDir, err)
		}
		if err := copyFile(source, target); err != nil {
			return fmt.Errorf("copying %s: %w", source, err)
		}
		doneColor.Fprintf(out, "   copied %s\n", filepath.Base(source))
	}
	return nil
}

func copyFile(source, target string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
