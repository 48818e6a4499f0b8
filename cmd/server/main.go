package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/arturoeanton/devmind-gateway/internal/adapter/ai"
	"github.com/arturoeanton/devmind-gateway/internal/adapter/store"
	"github.com/arturoeanton/devmind-gateway/internal/auth"
	"github.com/arturoeanton/devmind-gateway/internal/handler"
	"github.com/arturoeanton/devmind-gateway/internal/service"
	"github.com/arturoeanton/devmind-gateway/pkg/config"
	"github.com/joho/godotenv"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("🚀 Starting DevMind Gateway",
		"port", cfg.Port,
		"ai_service", cfg.AIServiceURL,
		"ai_timeout", cfg.AITimeout,
	)

	// ── Credential store ─────────────────────────────────────────────────
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	// ── Services ─────────────────────────────────────────────────────────
	tokens := auth.NewTokenService(
		[]byte(cfg.JWTSecret),
		time.Duration(cfg.JWTExpiration)*24*time.Hour,
	)
	authService := service.NewAuthService(pgStore, tokens)
	forwarder := ai.NewClient(cfg.AIServiceURL)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := handler.NewApp(handler.RouterDeps{
		AppName:     cfg.AppName,
		AuthService: authService,
		Tokens:      tokens,
		Store:       pgStore,
		Forwarder:   forwarder,
		Audit:       pgStore,
		AITimeout:   cfg.AITimeout,
		CORSOrigin:  cfg.FrontendURL,
	})

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
