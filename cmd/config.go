package cmd

import (
	"fmt"

	configtoml "github.com/bnema/lineserver/internal/adapters/config/toml"
	"github.com/spf13/cobra"
)

func newConfigCmd(app *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the lineserver config file",
	}

	configCmd.AddCommand(newConfigShowCmd(app), newConfigInitCmd())
	return configCmd
}

func newConfigShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd, nil)
			if err != nil {
				return err
			}

			data, err := configtoml.Marshal(cfg)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var path string
	var lineFile string
	var force bool

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				defaultPath, err := configtoml.DefaultPath()
				if err != nil {
					return err
				}
				path = defaultPath
			}

			cfg := configtoml.Default()
			cfg.Server.LineFile = lineFile
			if err := configtoml.Write(path, cfg, force); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return err
		},
	}

	initCmd.Flags().StringVar(&path, "path", "", "Destination file (defaults to the user config directory)")
	initCmd.Flags().StringVar(&lineFile, "file", "", "Line file to record as server.line_file")
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return initCmd
}
