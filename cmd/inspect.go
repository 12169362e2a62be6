package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	configtoml "github.com/bnema/lineserver/internal/adapters/config/toml"
	inspectadapter "github.com/bnema/lineserver/internal/adapters/render/inspect"
	"github.com/spf13/cobra"
)

var inspectFlagKeys = map[string]string{
	configtoml.KeyServerLineFile: "file",
}

func newInspectCmd(app *app) *cobra.Command {
	var preview int
	var width int
	var asJSON bool

	inspectCmd := &cobra.Command{
		Use:   "inspect [FILE]",
		Short: "Load a line file and summarize it without serving",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := cmd.Flags().Set("file", args[0]); err != nil {
					return err
				}
			}

			cfg, err := app.loadConfig(cmd, inspectFlagKeys)
			if err != nil {
				return err
			}
			if cfg.Server.LineFile == "" {
				return errors.New("line file is required: pass FILE or --file")
			}

			source := app.newSource(cfg.Server.LineFile)
			lines, err := source.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load lines from %s: %w", source.Describe(), err)
			}

			summary := inspectadapter.Summarize(source.Describe(), lines, preview)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}

			rendered, err := app.inspectRenderer(summary, inspectadapter.RenderOptions{MaxWidth: width})
			if err != nil {
				return fmt.Errorf("render summary: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	inspectCmd.Flags().String("file", "", "Path of the text file to inspect")
	inspectCmd.Flags().IntVar(&preview, "preview", 5, "Number of leading lines to show")
	inspectCmd.Flags().IntVar(&width, "width", 0, "Truncate preview lines to this many characters")
	inspectCmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")

	return inspectCmd
}
