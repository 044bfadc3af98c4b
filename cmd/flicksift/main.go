package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/flicksift/flicksift/internal/api"
	"github.com/flicksift/flicksift/internal/collections"
	"github.com/flicksift/flicksift/internal/config"
	"github.com/flicksift/flicksift/internal/database"
	"github.com/flicksift/flicksift/internal/logger"
	"github.com/flicksift/flicksift/internal/scheduler"
	"github.com/flicksift/flicksift/internal/search"
	"github.com/flicksift/flicksift/internal/tmdb"
	"github.com/flicksift/flicksift/internal/websocket"
)

func main() {
	// .env is optional; real env vars always win.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer log.Close()

	log.Info().
		Str("version", config.Version).
		Str("logLevel", cfg.Logging.Level).
		Msg("starting FlickSift")

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	log.Info().Msg("running database migrations")
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	if cfg.TMDB.APIKey == "" {
		log.Warn().Msg("TMDB API key not configured, searches will fail until FLICKSIFT_TMDB_API_KEY is set")
	}

	hub := websocket.NewHub()
	go hub.Run()

	tmdbClient := tmdb.NewClient(cfg.TMDB, log.Logger)

	searchService := search.NewService(tmdbClient, cfg.Search, log.Logger)
	searchService.SetDetailer(tmdbClient)

	checker := collections.NewChecker(tmdbClient, cfg.Discovery.LookbackDays, log.Logger)
	store := collections.NewStore(db.Conn())
	collectionsService := collections.NewService(store, checker, hub, log.Logger)

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}

	err = sched.RegisterTask(scheduler.TaskConfig{
		ID:         "collection-discovery",
		Name:       "Collection auto-discovery",
		Cron:       cfg.Discovery.Cron,
		RunOnStart: cfg.Discovery.RunOnStart,
		Func:       collectionsService.RefreshDue,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register discovery task")
	}

	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	server := api.NewServer(cfg, searchService, collectionsService, hub, log.Logger)

	go func() {
		if err := server.Start(cfg.Server.Address()); err != nil {
			log.Info().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	if err := sched.Stop(); err != nil {
		log.Warn().Err(err).Msg("scheduler shutdown failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
