// Command server runs the macro-genius HTTP API: a Gin server backed by
// SQLite that stores Excel VBA macros, generates new ones via OpenAI (or a
// built-in static generator when no key is configured), and renders
// downloadable .xlsx workbooks.
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
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tsubouchi/macro-genius/internal/config"
	"github.com/tsubouchi/macro-genius/internal/export"
	"github.com/tsubouchi/macro-genius/internal/genai"
	httpapi "github.com/tsubouchi/macro-genius/internal/http"
	"github.com/tsubouchi/macro-genius/internal/observability"
	"github.com/tsubouchi/macro-genius/internal/repo"
	"github.com/tsubouchi/macro-genius/internal/sysutil"
)

// version is injected at build time via -ldflags "-X main.version=...".
var version = "dev"

const shutdownGrace = 10 * time.Second

func main() {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Info().
		Str("version", version).
		Str("gin_mode", cfg.GinMode).
		Str("db_path", cfg.DBPath).
		Msg("starting macro-genius")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := shutdownOTel(c); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}
	if err := repo.SeedTemplates(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("seed templates")
	}

	var gen genai.Generator
	if cfg.OpenAI.APIKey != "" {
		g, err := genai.NewOpenAIGenerator(genai.Settings{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("openai generator")
		}
		gen = g
		log.Info().Str("model", cfg.OpenAI.Model).Msg("using OpenAI generator")
	} else {
		gen = genai.StaticGenerator{}
		log.Warn().Msg("OPENAI_API_KEY not set; falling back to static macro generator")
	}

	exp, err := export.NewXLSXExporter(cfg.ExportDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.ExportDir).Msg("export directory")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, gen, exp, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("base_path", cfg.APIBasePath).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		_ = srv.Close()
	}
	log.Info().Msg("server stopped")
}
