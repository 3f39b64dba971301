package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"unistats/internal/dataprocessing"
	"unistats/internal/files"
)

type mergeOptions struct {
	backup    bool
	backupDir string
	file      string
}

func newMergeCmd(env *runtimeEnv) *cobra.Command {
	opts := &mergeOptions{}

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Combine part-time and full-time graduate sheets",
		Long: `merge adds the part-time and full-time graduate student sheets of every
workbook cell by cell and saves the sum as the combined graduate students
sheet, replacing any previous one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMerge(cmd, env, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.backup, "backup", false, "copy each workbook before rewriting it")
	cmd.Flags().StringVar(&opts.backupDir, "backup-dir", "", "backup directory (default <export dir>/backup)")
	cmd.Flags().StringVar(&opts.file, "file", "", "merge a single workbook instead of the whole data directory")
	return cmd
}

func runMerge(cmd *cobra.Command, env *runtimeEnv, opts *mergeOptions) error {
	ctx := cmd.Context()

	mopts := dataprocessing.DefaultMergeOptions()
	if opts.backup || opts.backupDir != "" {
		mopts.BackupDir = opts.backupDir
		if mopts.BackupDir == "" {
			mopts.BackupDir = filepath.Join(env.paths.ExportDir, "backup")
		}
	}
	merger := dataprocessing.NewMerger(mopts, env.logger, nil, files.NewManager(env.paths, env.logger))

	var results []dataprocessing.MergeResult
	if opts.file != "" {
		if err := env.check.ValidateWorkbook(opts.file); err != nil {
			return err
		}
		res, _ := merger.MergeWorkbook(ctx, opts.file)
		results = append(results, res)
	} else {
		if err := env.requireWorkbooks(); err != nil {
			return err
		}
		var err error
		results, err = merger.MergeDirectory(ctx, env.paths.DataDir)
		if err != nil {
			return fmt.Errorf("merge %s: %w", env.paths.DataDir, err)
		}
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, res := range results {
		if res.Success {
			fmt.Fprintf(out, "merged %s (%d rows)\n", res.File, res.Rows)
			continue
		}
		failed++
		fmt.Fprintf(out, "failed %s: %s\n", res.File, res.Error)
	}

	env.logger.InfoContext(ctx, "merge finished",
		slog.Int("workbooks", len(results)),
		slog.Int("failed", failed))
	if failed > 0 {
		return fmt.Errorf("%d of %d workbooks could not be merged", failed, len(results))
	}
	return nil
}
