package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"unistats/internal/config"
	"unistats/internal/infrastructure"
	"unistats/internal/validation"
	"unistats/pkg/contracts/domain"
)

type rootOptions struct {
	configFile string
	dataDir    string
	logLevel   string
}

// runtimeEnv is the configuration every subcommand shares. It is filled in
// by the root command before a subcommand runs.
type runtimeEnv struct {
	cfg    *config.Config
	paths  *config.Paths
	dims   []domain.Dimension
	logger *slog.Logger
	check  *validation.FileValidator
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	env := &runtimeEnv{}

	cmd := &cobra.Command{
		Use:   "unistats",
		Short: "Compare university statistics across source workbooks",
		Long: `unistats reads one workbook per university, reshapes its sheets into
long-format observations and charts them against a focus university.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return env.load(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "directory holding the source workbooks")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newMergeCmd(env),
		newNormalizeCmd(env),
		newExportCmd(env),
		newHierarchyCmd(env),
		newServeCmd(env),
		newVersionCmd(),
	)
	return cmd
}

func (e *runtimeEnv) load(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := config.LoadFrom(opts.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.dataDir != "" {
		cfg.Paths.DataDir = opts.dataDir
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	paths, err := cfg.ResolvedPaths()
	if err != nil {
		return fmt.Errorf("resolve paths: %w", err)
	}
	dims, err := config.LoadDimensions(cfg.Analysis.HierarchyFile)
	if err != nil {
		return fmt.Errorf("load dimensions: %w", err)
	}

	e.cfg = cfg
	e.paths = paths
	e.dims = dims
	// stdout carries command output, so logs go to stderr.
	logger := infrastructure.NewJSONLogger(cmd.ErrOrStderr(), cfg.Logging.Level)
	e.logger = infrastructure.WithComponent(logger, "cli").With(slog.String("command", cmd.Name()))
	cmd.SetContext(infrastructure.EnsureTraceID(cmd.Context()))
	e.check = validation.NewFileValidator(e.logger)
	return nil
}

// requireWorkbooks fails unless the data directory holds at least one
// source workbook.
func (e *runtimeEnv) requireWorkbooks() error {
	_, err := e.check.ValidateDataDirectory(e.paths.DataDir)
	return err
}

// dimension looks up a dimension by key, or by sheet name when no key
// matches.
func (e *runtimeEnv) dimension(name string) (domain.Dimension, error) {
	if dim, ok := config.FindDimension(e.dims, name); ok {
		return dim, nil
	}
	for _, dim := range e.dims {
		if dim.Sheet == name {
			return dim, nil
		}
	}
	return domain.Dimension{}, fmt.Errorf("unknown dimension %q", name)
}
