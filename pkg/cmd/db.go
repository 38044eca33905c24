package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/sociojustice/pkg/internal/model"
	"github.com/yeisme/sociojustice/pkg/internal/storage/db"
)

var (
	dbCmd = &cobra.Command{
		Use:   "db",
		Short: "Database related commands",
	}

	dbListCmd = &cobra.Command{
		Use:   "ls",
		Short: "print the database drivers compiled into this binary",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, f := range db.Families() {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
		},
	}

	dbMigrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "create or update the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := db.New(cmd.Context())
			if err != nil {
				return err
			}

			if err := model.Migrate(client.WithContext(cmd.Context())); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "migrated %d tables\n", len(model.All()))

			return nil
		},
	}
)

// registerDBCommands 注册数据库相关命令.
func registerDBCommands() {
	rootCmd.AddCommand(dbCmd)

	dbCmd.AddCommand(dbListCmd)
	dbCmd.AddCommand(dbMigrateCmd)
}
