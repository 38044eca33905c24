// Package cmd contains the command line applications for the project.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yeisme/sociojustice/pkg/app"
	"github.com/yeisme/sociojustice/pkg/configs"
)

var (
	configPath string
	debug      bool

	rootCmd = &cobra.Command{
		Use:           "sociojustice",
		Short:         "Case-law archive backend: Judilibre import, keywords and PDF archives",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.InitConfig(configPath); err != nil {
				return err
			}

			if debug {
				configs.GetConfig().Server.Debug = true
			}

			return nil
		},
		RunE: serve,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "start the HTTP server",
		RunE:  serve,
	}
)

func serve(cmd *cobra.Command, _ []string) error {
	a, err := app.NewApp(cmd.Context())
	if err != nil {
		return err
	}

	return a.Run(cmd.Context())
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "config file or directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug mode")

	rootCmd.AddCommand(serveCmd)
	registerConfigsCommands()
	registerDBCommands()
	registerKVCommands()
	registerMQCommands()
	registerImportCommands()
	registerUserCommands()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
