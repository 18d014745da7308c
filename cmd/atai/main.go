package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/AlbeMasera/ATAI/internal/config"
	"github.com/AlbeMasera/ATAI/internal/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "atai",
	Short:         "Movie knowledge graph question answering agent",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.toml", "Path to the TOML configuration")
	rootCmd.AddCommand(askCmd, chatCmd, crowdCmd, graphCmd)
}

// loadConfig reads the configuration file, falling back to defaults when it
// is missing, and applies environment overrides.
func loadConfig() *config.Config {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		logging.Warn().Err(err).Str("path", configPath).Msg("using default configuration")
		cfg = config.Default()
	}
	cfg.ApplyEnv()
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	return cfg
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
