package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-notes-etl/internal/datagen"
	"github.com/pgEdge/pgedge-notes-etl/internal/logging"
)

var (
	sampleRows     int
	sampleSeed     uint64
	sampleNegative int
	sampleOutput   string
	sampleForce    bool
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write a synthetic notes export",
	Long: `Write a synthetic notes export in the column layout produced by
mongoexport, suitable as input for the pipeline. Notes are attributed to a
fixed set of ten users and are mostly positive with a share of negative
ones. An existing file is only replaced with --force.

Example:
  notes-etl sample --rows 500 --seed 42 --output data/smartnotes.notes.csv`,
	Args: cobra.NoArgs,
	RunE: runSample,
}

func init() {
	defaults := datagen.DefaultSampleOptions()
	sampleCmd.Flags().IntVar(&sampleRows, "rows", defaults.Rows,
		"number of notes to generate")
	sampleCmd.Flags().Uint64Var(&sampleSeed, "seed", 0,
		"random seed (0 = random)")
	sampleCmd.Flags().IntVar(&sampleNegative, "negative-percent", defaults.NegativePercent,
		"percentage of negative notes")
	sampleCmd.Flags().StringVar(&sampleOutput, "output", "",
		"output file (default: configured input path)")
	sampleCmd.Flags().BoolVar(&sampleForce, "force", false,
		"overwrite the output file if it already exists")
}

func runSample(cmd *cobra.Command, args []string) error {
	path := sampleOutput
	if path == "" {
		path = cfg.Input.Path
	}

	opts := datagen.DefaultSampleOptions()
	opts.Rows = sampleRows
	opts.NegativePercent = sampleNegative

	faker := datagen.NewFaker()
	if sampleSeed != 0 {
		faker = datagen.NewFakerWithSeed(sampleSeed)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !sampleForce {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s already exists; use --force to overwrite it", path)
	}
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := datagen.WriteSample(w, faker, opts); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	logging.Info().
		Str("path", path).
		Int("rows", opts.Rows).
		Msg("Sample export written")
	return nil
}
