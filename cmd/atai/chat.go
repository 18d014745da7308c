package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AlbeMasera/ATAI/internal/chat"
	"github.com/AlbeMasera/ATAI/internal/core"
)

var chatAlias string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the agent on the console",
	Long:  "Reads one question per line from stdin and answers on stdout until input ends.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		cfg.Chat.PollIntervalMS = 200

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		agent, err := core.NewAgentFromConfig(ctx, cfg)
		if err != nil {
			return err
		}
		defer agent.Close(context.Background())

		console := chat.NewConsoleTransport(os.Stdin, cmd.OutOrStdout(), chatAlias)
		listener := chat.NewListener(console, agent, cfg.Chat)

		go func() {
			<-console.Done()
			for !console.Drained() {
				select {
				case <-ctx.Done():
					return
				case <-time.After(cfg.Chat.PollInterval()):
				}
			}
			cancel()
		}()

		if err := listener.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatAlias, "alias", "atai", "Name the agent introduces itself with")
}
