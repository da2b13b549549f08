package main

import (
	"context"
	"database/sql"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"aproz_tours/internal/adapters/assets"
	"aproz_tours/internal/adapters/observability"
	redisad "aproz_tours/internal/adapters/redis"
	"aproz_tours/internal/adapters/remote"
	"aproz_tours/internal/app"
	"aproz_tours/internal/domain"
	"aproz_tours/internal/shared"
	mysqlrepo "aproz_tours/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.AssetsBaseURL).
		Str("dir", cfg.AssetsDir).
		Int("workers", cfg.Workers).
		Msg("ingestor starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	var fetcher domain.Fetcher = assets.Bundled()
	switch {
	case cfg.AssetsBaseURL != "":
		client, err := remote.New(cfg.AssetsBaseURL, cfg.FetchRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize assets client")
		}
		fetcher = client
	case cfg.AssetsDir != "":
		d, err := assets.Dir(cfg.AssetsDir)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid ASSETS_DIR")
		}
		fetcher = d
	}

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		cache = rc
	}

	src := app.NewResourceSource(fetcher, app.CatalogResource, observability.Sys("catalog"))
	ing := app.NewIngestionService(src, repo, cache, cfg.Workers, observability.Sys("ingest"))

	rep, err := ing.IngestCatalog(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("ingestion failed")
	}
	log.Info().Int("upserted", rep.Upserted).Int64("pruned", rep.Pruned).Msg("ingestion completed")
}
