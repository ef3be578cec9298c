// Command movienight runs the movie-night bot: a Discord event pipeline that
// tracks movie references, likes, and watched state in SQLite, plus a small
// read-only ops HTTP API (health, metrics, catalog, suggestion preview).
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
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/kinoclub/movienight/internal/bot"
	"github.com/kinoclub/movienight/internal/bot/discord"
	"github.com/kinoclub/movienight/internal/config"
	httpapi "github.com/kinoclub/movienight/internal/http"
	"github.com/kinoclub/movienight/internal/observability"
	"github.com/kinoclub/movienight/internal/omdb"
	"github.com/kinoclub/movienight/internal/repo"
	"github.com/kinoclub/movienight/internal/services"
	"github.com/kinoclub/movienight/internal/sysutil"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Local development convenience; absent .env files are not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	// Logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	// Storage
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("could not open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	if cfg.OTEL.Enabled {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			log.Fatal().Err(err).Msg("could not enable db tracing")
		}
	}

	// Services
	resolver := &omdb.Resolver{Meta: omdb.NewClient(cfg.OMDbAPIKey, cfg.OMDbTimeout)}
	movieSvc := &services.MovieService{DB: db, Resolver: resolver}
	suggestSvc := &services.SuggestService{DB: db}

	// Discord gateway
	adapter, err := discord.New(cfg.DiscordToken)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create discord session")
	}
	reactor := &bot.Reactor{
		Movies:          movieSvc,
		Suggest:         suggestSvc,
		Gateway:         adapter,
		ChannelIDs:      cfg.TrackedChannels(),
		OwnerID:         cfg.OwnerID,
		ReportChannelID: cfg.MovieChannel,
	}
	adapter.Bind(reactor)
	if err := adapter.Open(); err != nil {
		log.Fatal().Err(err).Msg("could not connect to discord")
	}
	// The session's own identity is only known after Open.
	reactor.SelfID = adapter.SelfID()
	log.Info().
		Str("self_id", reactor.SelfID).
		Strs("channels", reactor.ChannelIDs).
		Msg("reactor bound")

	// Ops HTTP server
	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, db, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("ops server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("ops server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	if err := adapter.Close(); err != nil {
		log.Warn().Err(err).Msg("discord session close failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("ops server shutdown failed")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("otel shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("bye")
}
