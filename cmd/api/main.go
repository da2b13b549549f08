package main

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"aproz_tours/internal/adapters/assets"
	server "aproz_tours/internal/adapters/http_server"
	"aproz_tours/internal/adapters/observability"
	redisad "aproz_tours/internal/adapters/redis"
	"aproz_tours/internal/adapters/remote"
	"aproz_tours/internal/app"
	"aproz_tours/internal/domain"
	"aproz_tours/internal/shared"
	mysqlrepo "aproz_tours/internal/storage/mysql"
	"aproz_tours/web"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher := newFetcher(cfg)

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, shared cache disabled")
		} else {
			cache = rc
			defer rc.Close()
		}
	}

	var src domain.TourSource = app.NewResourceSource(fetcher, app.CatalogResource, observability.Sys("catalog"))
	if cfg.CatalogSource == shared.CatalogFromMySQL {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("database connection ok")
		defer db.Close()
		src = mysqlrepo.New(db)
	}

	catalog := app.NewCatalogService(src, cache, cfg.CacheTTL, observability.Sys("catalog"))
	renderer, err := app.NewRenderer(app.RenderOptions{Extended: cfg.Extended})
	if err != nil {
		log.Fatal().Err(err).Msg("templates failed to parse")
	}
	a := app.New(app.Options{
		WhatsAppNumber: cfg.WhatsAppNumber,
		Extended:       cfg.Extended,
	}, fetcher, catalog, renderer, app.ClockScheduler{}, observability.Sys("app"))
	if err := a.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("init interrupted")
	}

	sessions := app.NewSessionStore(a, cfg.SessionIdle)
	go sessions.Run(ctx)

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		App:      a,
		Sessions: sessions,
		Static:   staticFS(cfg),
		Secure:   cfg.CookieSecure,
	})

	log.Info().Str("addr", cfg.HTTPAddr).Bool("extended", cfg.Extended).Msg("site listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("site stopped")
}

// newFetcher picks where i18n and catalog resources come from:
// a remote base URL, a directory, or the bundled copy.
func newFetcher(cfg shared.Config) domain.Fetcher {
	if cfg.AssetsBaseURL != "" {
		c, err := remote.New(cfg.AssetsBaseURL, cfg.FetchRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid ASSETS_BASE_URL")
		}
		return c
	}
	if cfg.AssetsDir != "" {
		d, err := assets.Dir(cfg.AssetsDir)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid ASSETS_DIR")
		}
		return d
	}
	return assets.Bundled()
}

func staticFS(cfg shared.Config) fs.FS {
	if cfg.AssetsDir != "" {
		if d, err := assets.Dir(cfg.AssetsDir); err == nil {
			return d.FSys()
		}
	}
	return web.Static()
}
