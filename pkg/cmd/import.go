package cmd

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/yeisme/sociojustice/pkg/app"
	"github.com/yeisme/sociojustice/pkg/configs"
	ctxPkg "github.com/yeisme/sociojustice/pkg/context"
	"github.com/yeisme/sociojustice/pkg/internal/service"
	"github.com/yeisme/sociojustice/pkg/internal/types"
)

var (
	importReq types.ImportRequest

	importCmd = &cobra.Command{
		Use:   "import",
		Short: "import decisions from Judilibre once and print the summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			if importReq.DateDecisionMax == "" {
				importReq.DateDecisionMax = time.Now().UTC().Format(types.DateLayout)
			}

			manager, err := app.Bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer manager.Close()

			upstream, err := app.NewUpstream(configs.GetConfig(), manager)
			if err != nil {
				return err
			}

			ctx := ctxPkg.WithUpstream(ctxPkg.WithStorageManager(cmd.Context(), manager), upstream)

			resp, err := service.NewImportService(ctx).Import(ctx, &importReq, service.TriggerCLI)
			if err != nil {
				return err
			}

			b, err := sonic.ConfigStd.MarshalIndent(resp, "", "  ")
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(b))

			return nil
		},
	}
)

// registerImportCommands 注册一次性导入命令.
func registerImportCommands() {
	f := importCmd.Flags()
	f.StringVar(&importReq.DateDecisionMin, "from", "", "first decision date, YYYY-MM-DD")
	f.StringVar(&importReq.DateDecisionMax, "to", "", "last decision date, YYYY-MM-DD (default today)")
	f.StringVar(&importReq.Jurisdiction, "jurisdiction", "", "jurisdiction code, e.g. cc or ca")
	f.StringVar(&importReq.CaseType, "case-type", "", "decision type code")
	f.StringVar(&importReq.Query, "query", "", "full-text query")
	_ = importCmd.MarkFlagRequired("from")

	rootCmd.AddCommand(importCmd)
}
