package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/thejerf/suture/v4"

	"github.com/AlbeMasera/ATAI/internal/chat"
	"github.com/AlbeMasera/ATAI/internal/config"
	"github.com/AlbeMasera/ATAI/internal/core"
	"github.com/AlbeMasera/ATAI/internal/logging"
	"github.com/AlbeMasera/ATAI/internal/metrics"
	"github.com/AlbeMasera/ATAI/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logging.Info().Msg("no .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logging.Warn().Err(err).Str("path", cfgPath).Msg("using default configuration")
		cfg = config.Default()
	}
	cfg.ApplyEnv()
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = metrics.EnablePrometheus()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	agent, err := core.NewAgentFromConfig(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build agent")
	}
	defer func() {
		if err := agent.Close(context.Background()); err != nil {
			logging.Warn().Err(err).Msg("failed to close agent")
		}
	}()

	gin.SetMode(cfg.Server.Mode)
	router := server.NewServer(agent, metricsHandler).SetupRouter()
	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sup := suture.New("atai", suture.Spec{
		EventHook: func(e suture.Event) {
			logging.Warn().Str("event", e.String()).Msg("supervisor event")
		},
		Timeout: 10 * time.Second,
	})
	sup.Add(server.NewService(httpServer, 10*time.Second))
	if cfg.Chat.Enabled {
		console := chat.NewConsoleTransport(os.Stdin, os.Stdout, "atai")
		sup.Add(chat.NewListener(console, agent, cfg.Chat))
	}

	logging.Info().Str("port", cfg.Server.Port).Bool("chat", cfg.Chat.Enabled).Msg("starting server")
	if err := sup.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor stopped")
	}
	logging.Info().Msg("server stopped")
}
