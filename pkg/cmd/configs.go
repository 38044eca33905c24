package cmd

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/yeisme/sociojustice/pkg/configs"
	"github.com/yeisme/sociojustice/pkg/rule"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate the configuration",
	}

	configPathCmd = &cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		RunE: func(cmd *cobra.Command, _ []string) error {
			file := ""
			if v := configs.GetViper(); v != nil {
				file = v.ConfigFileUsed()
			}

			if file == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no config file, using defaults and SOCIOJUSTICE_* env")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), file)

			return nil
		},
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := sonic.ConfigStd.MarshalIndent(configs.GetConfig().Redacted(), "", "  ")
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(b))

			return nil
		},
	}

	configValidateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration against its rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rule.ValidateStruct(configs.GetConfig()); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "config ok")

			return nil
		},
	}
)

func registerConfigsCommands() {
	configCmd.AddCommand(configPathCmd, configShowCmd, configValidateCmd)
	rootCmd.AddCommand(configCmd)
}
