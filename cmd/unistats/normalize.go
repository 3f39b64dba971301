package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"unistats/internal/dataprocessing"
	"unistats/internal/exporter"
	"unistats/internal/files"
)

type normalizeOptions struct {
	dimension string
	output    string
	bom       bool
}

func newNormalizeCmd(env *runtimeEnv) *cobra.Command {
	opts := &normalizeOptions{}

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Write one sheet of every workbook as a long-format CSV table",
		Example: `  unistats normalize --dimension graduate-students
  unistats normalize -d Postdoctorates -o exports/postdocs.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNormalize(cmd, env, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dimension, "dimension", "d", "", "dimension key or sheet name (required)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file; stdout when empty")
	cmd.Flags().BoolVar(&opts.bom, "bom", false, "prefix stdout output with a UTF-8 byte order mark (files always carry one)")
	_ = cmd.MarkFlagRequired("dimension")
	return cmd
}

func runNormalize(cmd *cobra.Command, env *runtimeEnv, opts *normalizeOptions) error {
	ctx := cmd.Context()

	dim, err := env.dimension(opts.dimension)
	if err != nil {
		return err
	}

	if err := env.requireWorkbooks(); err != nil {
		return err
	}
	normalizer := dataprocessing.NewNormalizer(env.paths.DataDir, env.logger, dataprocessing.WithoutCache())
	res, err := normalizer.NormalizeWithStats(ctx, dim.Sheet)
	if err != nil {
		return fmt.Errorf("normalize %s: %w", dim.Sheet, err)
	}
	env.logger.InfoContext(ctx, "sheet normalized",
		slog.String("sheet", dim.Sheet),
		slog.Int("rows", len(res.Rows)),
		slog.Int("files", res.Files),
		slog.Int("skipped", res.Skipped))

	writer := exporter.NewCSVWriter(files.NewManager(env.paths, env.logger), env.logger)
	if opts.output == "" {
		return writer.WriteObservations(cmd.OutOrStdout(), res.Rows, exporter.WriteOptions{BOMPrefix: opts.bom})
	}
	if err := writer.WriteObservationsFile(opts.output, res.Rows); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	return nil
}
