package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/sociojustice/pkg/app"
	ctxPkg "github.com/yeisme/sociojustice/pkg/context"
	"github.com/yeisme/sociojustice/pkg/internal/service"
)

var (
	adminEmail    string
	adminPassword string

	userCmd = &cobra.Command{
		Use:   "user",
		Short: "User management commands",
	}

	userAdminCmd = &cobra.Command{
		Use:   "admin",
		Short: "create or promote an approved admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := app.Bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer manager.Close()

			ctx := ctxPkg.WithStorageManager(cmd.Context(), manager)

			u, err := service.NewUserService(ctx).EnsureAdmin(ctx, adminEmail, adminPassword)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "admin %s (%s) ready\n", u.Email, u.ID)

			return nil
		},
	}
)

// registerUserCommands 注册用户管理命令.
func registerUserCommands() {
	userAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email")
	userAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password, at least 8 characters")
	_ = userAdminCmd.MarkFlagRequired("email")
	_ = userAdminCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userAdminCmd)
	rootCmd.AddCommand(userCmd)
}
