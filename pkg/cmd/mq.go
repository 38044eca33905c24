package cmd

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yeisme/sociojustice/pkg/internal/storage/mq"
	"github.com/yeisme/sociojustice/pkg/queue"
)

var (
	mqCmd = &cobra.Command{
		Use:   "mq",
		Short: "Message queue and domain event commands",
	}

	mqTypesCmd = &cobra.Command{
		Use:     "types",
		Short:   "print the supported mq backends",
		Aliases: []string{"ls"},
		Run: func(cmd *cobra.Command, _ []string) {
			for _, t := range mq.GetRegisteredMQTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
		},
	}

	mqTopicsCmd = &cobra.Command{
		Use:   "topics",
		Short: "print the domain event topics",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(queue.AllTopics(), "\n"))
		},
	}

	// tail 仅对跨进程的后端有意义，memory 后端只能看到本进程发布的消息.
	mqTailCmd = &cobra.Command{
		Use:   "tail <topic>",
		Short: "print events published on a topic until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client, err := mq.New(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			ch, err := client.Subscribe(ctx, args[0])
			if err != nil {
				return err
			}

			for msg := range ch {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", msg.UUID, msg.Payload)
				msg.Ack()
			}

			return nil
		},
	}
)

func registerMQCommands() {
	rootCmd.AddCommand(mqCmd)
	mqCmd.AddCommand(mqTypesCmd, mqTopicsCmd, mqTailCmd)
}
