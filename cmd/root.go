package cmd

import "github.com/spf13/cobra"

const configFlag = "config"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lineserver",
		Short:         "Serve the lines of a text file over TCP",
		Long:          "lineserver loads a text file into memory and answers GET, QUIT and SHUTDOWN commands from many concurrent TCP clients. It also ships a small client and an offline inspector for line files.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().String(configFlag, "", "Path to a lineserver.toml config file")

	app := wireApp()

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(app),
		newGetCmd(app),
		newShutdownCmd(app),
		newInspectCmd(app),
		newConfigCmd(app),
	)

	return rootCmd
}
