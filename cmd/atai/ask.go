package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AlbeMasera/ATAI/internal/core"
	"github.com/AlbeMasera/ATAI/internal/logging"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a single question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		ctx := logging.ContextWithRequestID(cmd.Context(), logging.NewRequestID())

		agent, err := core.NewAgentFromConfig(ctx, cfg)
		if err != nil {
			return err
		}
		defer agent.Close(context.Background())

		answer := agent.Answer(ctx, strings.Join(args, " "))
		fmt.Fprintln(cmd.OutOrStdout(), answer.Text())
		return nil
	},
}
