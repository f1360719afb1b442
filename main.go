package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ternarybob/banner"

	"pdftriage/internal/batch"
	"pdftriage/internal/config"
	"pdftriage/internal/pdfdoc"
	"pdftriage/internal/toolset"
)

// exitError carries the process exit code out of RunE. A nil err means the
// message was already printed.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// cliFlags holds the values bound to the root command's flags.
type cliFlags struct {
	input, output, format string
	workers               int
	configs               []string
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the root command with args and maps the outcome to an exit
// code: 0 on success, 1 on runtime failures, 2 on usage errors.
func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)

	cmd, err := root.ExecuteC()
	if err == nil {
		return 0
	}

	var exit *exitError
	if errors.As(err, &exit) {
		if exit.err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", exit.err)
		}
		if exit.code == 2 {
			fmt.Fprint(os.Stderr, cmd.UsageString())
		}
		return exit.code
	}

	// Flag parsing and required-flag errors come back from cobra untyped.
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	fmt.Fprint(os.Stderr, cmd.UsageString())
	return 2
}

func newRootCmd() *cobra.Command {
	flags := &cliFlags{}

	cmd := &cobra.Command{
		Use:   "pdftriage",
		Short: "Split PDFs into pages and report drawing and image statistics",
		Long: `Split every PDF in the input directory into single-page files, count the
vector drawing instructions and raster images of each page, save the largest
image per page and write pdf_statistics.csv to the output directory.`,
		Version:       config.FullVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTriage(flags)
		},
	}

	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "Directory containing PDF files")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Directory for split pages, images and the report")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "",
		"Largest image format: "+strings.Join(toolset.Formats(), ", ")+" (default tiff)")
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "Documents processed in parallel (default 1)")
	cmd.Flags().StringArrayVarP(&flags.configs, "config", "c", nil,
		"Configuration file (can be specified multiple times, later files override earlier ones)")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runTriage(flags *cliFlags) error {
	cfg, err := config.LoadFromFiles(flags.configs...)
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	config.ApplyFlagOverrides(cfg, flags.input, flags.output, flags.format, flags.workers)
	if err := cfg.Validate(); err != nil {
		return &exitError{code: 2, err: err}
	}

	if info, err := os.Stat(cfg.Input); err != nil || !info.IsDir() {
		return &exitError{code: 1, err: fmt.Errorf("Input directory '%s' does not exist or is not a directory", cfg.Input)}
	}
	if err := os.MkdirAll(cfg.Output, 0755); err != nil {
		return &exitError{code: 1, err: fmt.Errorf("Failed to create output directory '%s': %w", cfg.Output, err)}
	}

	banner.Print("pdftriage", config.Version)
	logger := config.SetupLogger(cfg)

	logger.Info().
		Str("input", cfg.Input).
		Str("output", cfg.Output).
		Str("format", cfg.Format).
		Msg("Using image format " + cfg.Format)

	_, err = batch.New(cfg, logger, pdfdoc.NewOpener(pdfdoc.NewConfiguration())).Run()
	switch {
	case err == nil, errors.Is(err, batch.ErrNoDocuments), errors.Is(err, batch.ErrNoStatistics):
		return nil
	default:
		logger.Error().Err(err).Msg("Batch failed")
		return &exitError{code: 1}
	}
}
