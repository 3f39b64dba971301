package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"unistats/internal/app"
	"unistats/internal/config"
)

func newServeCmd(env *runtimeEnv) *cobra.Command {
	var (
		port    int
		noWatch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := env.cfg
			if port > 0 {
				cfg.Server.Port = port
			}
			if noWatch {
				cfg.Watch.Enabled = false
			}

			application, err := app.NewApplication(cfg)
			if err != nil {
				return err
			}
			return application.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload views when workbooks change")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// version needs no configuration
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", config.AppName, app.Version)
			return err
		},
	}
}
