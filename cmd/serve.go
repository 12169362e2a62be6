package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	configtoml "github.com/bnema/lineserver/internal/adapters/config/toml"
	"github.com/bnema/lineserver/internal/application"
	"github.com/spf13/cobra"
)

var serveFlagKeys = map[string]string{
	configtoml.KeyServerAddr:         "addr",
	configtoml.KeyServerLineFile:     "file",
	configtoml.KeyFailOnSessionError: "fail-on-session-error",
	configtoml.KeyDrainTimeout:       "drain-timeout",
	configtoml.KeyControlBuffer:      "control-buffer",
	configtoml.KeyLogLevel:           "log-level",
	configtoml.KeyLogFormat:          "log-format",
}

func newServeCmd(app *app) *cobra.Command {
	defaults := configtoml.Default()

	serveCmd := &cobra.Command{
		Use:   "serve [FILE]",
		Short: "Load a line file and serve it over TCP",
		Long:  "Load FILE (or --file) into memory, then accept connections until a client sends SHUTDOWN or the process receives SIGINT or SIGTERM.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := cmd.Flags().Set("file", args[0]); err != nil {
					return err
				}
			}

			cfg, err := app.loadConfig(cmd, serveFlagKeys)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := newLogger(cmd.ErrOrStderr(), cfg.Log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := application.NewServer(app.newSource(cfg.Server.LineFile), application.ServerConfig{
				Addr: cfg.Server.Addr,
				Coordinator: application.CoordinatorConfig{
					FailOnSessionError: cfg.Server.FailOnSessionError,
					DrainTimeout:       cfg.Server.DrainTimeout,
					ControlBuffer:      cfg.Server.ControlBuffer,
				},
			}, log)

			coordinator, err := server.Start(ctx)
			if err != nil {
				return err
			}

			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", coordinator.Addr()); err != nil {
				return err
			}

			return coordinator.Run(ctx)
		},
	}

	flags := serveCmd.Flags()
	flags.String("file", "", "Path of the text file to serve")
	flags.String("addr", defaults.Server.Addr, "Listen address (host:port)")
	flags.Bool("fail-on-session-error", defaults.Server.FailOnSessionError, "Stop the server when any session fails with an I/O error")
	flags.Duration("drain-timeout", defaults.Server.DrainTimeout, "How long shutdown waits for sessions to exit (negative disables waiting)")
	flags.Int("control-buffer", defaults.Server.ControlBuffer, "Capacity of the control message queue")
	flags.String("log-level", defaults.Log.Level, "Log level (debug, info, warn, error)")
	flags.String("log-format", defaults.Log.Format, "Log format (text or json)")

	return serveCmd
}
