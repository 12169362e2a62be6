package cmd

import (
	"context"
	"fmt"

	tcpclient "github.com/bnema/lineserver/internal/adapters/client/tcp"
	configtoml "github.com/bnema/lineserver/internal/adapters/config/toml"
	"github.com/spf13/cobra"
)

var clientFlagKeys = map[string]string{
	configtoml.KeyServerAddr: "addr",
}

func newGetCmd(app *app) *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get INDEX",
		Short: "Fetch one line from a running server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withClient(cmd, func(ctx context.Context, client *tcpclient.Client) error {
				line, err := client.GetRaw(ctx, args[0])
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
					return err
				}
				return client.Quit(ctx)
			})
		},
	}

	addAddrFlag(getCmd)
	return getCmd
}

func newShutdownCmd(app *app) *cobra.Command {
	shutdownCmd := &cobra.Command{
		Use:   "shutdown",
		Short: "Ask a running server to stop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.withClient(cmd, func(ctx context.Context, client *tcpclient.Client) error {
				if err := client.Shutdown(ctx); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "shutdown requested")
				return err
			})
		},
	}

	addAddrFlag(shutdownCmd)
	return shutdownCmd
}

func addAddrFlag(cmd *cobra.Command) {
	cmd.Flags().String("addr", configtoml.DefaultAddr, "Server address (host:port)")
}

func (a *app) withClient(cmd *cobra.Command, fn func(context.Context, *tcpclient.Client) error) error {
	cfg, err := a.loadConfig(cmd, clientFlagKeys)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), a.clientTimeout)
	defer cancel()

	client, err := tcpclient.Dial(ctx, cfg.Server.Addr)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	return fn(ctx, client)
}
