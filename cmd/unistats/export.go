package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"unistats/internal/charts"
	"unistats/internal/dataprocessing"
	"unistats/internal/exporter"
	"unistats/internal/files"
	"unistats/pkg/contracts/domain"
)

type exportOptions struct {
	dimensions  []string
	outputDir   string
	concurrency int
	jsonReport  bool
}

func newExportCmd(env *runtimeEnv) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the global and per-source charts as PNG files",
		Long: `export draws, for every dimension, one chart comparing all sources and
one chart per source, and writes them as PNG images. Charts that lack data
are reported as skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, env, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.dimensions, "dimension", "d", nil, "limit the export to these dimensions")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "image directory (default from config)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 4, "charts rendered in parallel")
	cmd.Flags().BoolVar(&opts.jsonReport, "json", false, "print the report as JSON")
	return cmd
}

func runExport(cmd *cobra.Command, env *runtimeEnv, opts *exportOptions) error {
	ctx := cmd.Context()

	dims := env.dims
	if len(opts.dimensions) > 0 {
		dims = make([]domain.Dimension, 0, len(opts.dimensions))
		for _, name := range opts.dimensions {
			dim, err := env.dimension(name)
			if err != nil {
				return err
			}
			dims = append(dims, dim)
		}
	}

	outputDir := env.paths.OutputDir
	if opts.outputDir != "" {
		outputDir = opts.outputDir
	}
	if err := env.requireWorkbooks(); err != nil {
		return err
	}
	if err := env.check.ValidateOutputDirectory(outputDir); err != nil {
		return err
	}

	namer, err := exporter.NewImageNamer(env.cfg.Analysis.GlobalImageName, env.cfg.Analysis.IndividualImageName)
	if err != nil {
		return err
	}
	analysis := env.cfg.Analysis
	batch := exporter.NewBatchExporter(
		dataprocessing.NewNormalizer(env.paths.DataDir, env.logger),
		charts.NewRenderer(analysis.ChartWidth, analysis.ChartHeight),
		namer,
		files.NewManager(env.paths, env.logger),
		exporter.BatchOptions{
			FocusSource: analysis.FocusSource,
			OutputDir:   outputDir,
			Concurrency: opts.concurrency,
		},
		env.logger,
		nil,
	)

	report, err := batch.Export(ctx, dims)
	if err != nil {
		return fmt.Errorf("export charts: %w", err)
	}

	out := cmd.OutOrStdout()
	if opts.jsonReport {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	for _, img := range report.Images {
		fmt.Fprintf(out, "wrote %s\n", img.Path)
	}
	for _, s := range report.Skipped {
		name := s.Dimension
		if s.Source != "" {
			name += "/" + s.Source
		}
		fmt.Fprintf(out, "skipped %s %s: %s\n", s.Kind, name, s.Reason)
	}
	fmt.Fprintf(out, "%d images, %d skipped in %s\n", len(report.Images), len(report.Skipped), report.Duration.Round(time.Millisecond))
	return nil
}
