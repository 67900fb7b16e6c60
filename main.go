package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"personachat/internal/app"
	"personachat/internal/chat"
	"personachat/internal/config"
	"personachat/internal/db"
	"personachat/internal/history"
	"personachat/internal/llm"
	"personachat/internal/llm/gemini"
	"personachat/internal/llm/openrouter"
	"personachat/internal/store"
	"personachat/internal/tools"
	"personachat/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logFile, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()

	conn, err := db.OpenPersonaDB(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer conn.Close()

	ctx := context.Background()

	var defs []tools.Definition
	if cfg.EnableTools {
		defs = tools.Definitions
	}
	provider, err := newProvider(ctx, cfg, defs)
	if err != nil {
		return fmt.Errorf("connect model backend: %w", err)
	}
	slog.Info("starting", "provider", provider.Name(), "data_dir", cfg.DataDir, "tools", cfg.EnableTools)

	st := store.New(conn)
	writer := store.NewWriter(st)
	defer writer.Close()

	ctl := app.NewController(
		st.LoadSettings(),
		history.Load(st, writer),
		writer,
		provider,
		chat.NewReducer(tools.NewRegistry()),
	)

	p := ui.NewProgram(ctl)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func setupLogging(cfg *config.Config) (*os.File, error) {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return f, nil
}

func newProvider(ctx context.Context, cfg *config.Config, defs []tools.Definition) (llm.Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenRouter:
		return openrouter.NewProvider(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.Model, defs), nil
	default:
		p, err := gemini.NewProvider(ctx, cfg.GeminiAPIKey, cfg.Model, defs)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}
