package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MetricsAddr    string
	AssetsDir      string // empty: bundled assets
	AssetsBaseURL  string // non-empty: fetch i18n/catalog over HTTP
	CatalogSource  string // resource|mysql
	MySQLDSN       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	CacheTTL       time.Duration
	WhatsAppNumber string
	Extended       bool
	FetchRPS       int
	Workers        int
	SessionIdle    time.Duration
	CookieSecure   bool // always mark cookies Secure, even on plain http requests
}

const (
	CatalogFromResource = "resource"
	CatalogFromMySQL    = "mysql"
)

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ":9100"),
		AssetsDir:      env("ASSETS_DIR", ""),
		AssetsBaseURL:  env("ASSETS_BASE_URL", ""),
		CatalogSource:  env("CATALOG_SOURCE", CatalogFromResource),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/aproz?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:      env("REDIS_ADDR", ""),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		WhatsAppNumber: env("WHATSAPP_NUMBER", "573106352840"),
		Extended:       envBool("FEATURE_EXTENDED", true),
		FetchRPS:       atoi("FETCH_RPS", 5),
		Workers:        atoi("INGEST_WORKERS", 4),
		SessionIdle:    time.Duration(atoi("SESSION_IDLE_SECONDS", 1800)) * time.Second,
		CookieSecure:   envBool("COOKIE_SECURE", false),
	}
	if c.CatalogSource != CatalogFromResource && c.CatalogSource != CatalogFromMySQL {
		log.Warn().Str("source", c.CatalogSource).Msg("unknown CATALOG_SOURCE, using resource")
		c.CatalogSource = CatalogFromResource
	}
	if c.RedisAddr == "" {
		log.Info().Msg("REDIS_ADDR is empty, shared cache disabled")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
