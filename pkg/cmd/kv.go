package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yeisme/sociojustice/pkg/internal/storage/kv"
)

var (
	kvCmd = &cobra.Command{
		Use:   "kv",
		Short: "Inspect the key-value store used for the upstream token cache",
	}

	kvTypesCmd = &cobra.Command{
		Use:     "types",
		Short:   "print the supported kv backends",
		Aliases: []string{"ls"},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(kv.Types(), "\n"))
		},
	}

	kvKeysCmd = &cobra.Command{
		Use:   "keys [pattern]",
		Short: "list keys matching a glob pattern (default sj:*)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := "sj:*"
			if len(args) == 1 {
				pattern = args[0]
			}

			client, err := kv.NewKVClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			keys, err := client.Scan(cmd.Context(), pattern)
			if err != nil {
				return err
			}

			sort.Strings(keys)

			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}

			return nil
		},
	}

	kvDelCmd = &cobra.Command{
		Use:   "del <key>...",
		Short: "delete keys, e.g. to drop a cached Judilibre token",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := kv.NewKVClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			for _, k := range args {
				if err := client.Delete(cmd.Context(), k); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d key(s)\n", len(args))

			return nil
		},
	}
)

func registerKVCommands() {
	rootCmd.AddCommand(kvCmd)
	kvCmd.AddCommand(kvTypesCmd, kvKeysCmd, kvDelCmd)
}
