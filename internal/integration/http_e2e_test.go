//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"aproz_tours/internal/adapters/assets"
	server "aproz_tours/internal/adapters/http_server"
	redisad "aproz_tours/internal/adapters/redis"
	"aproz_tours/internal/app"
	mysqlrepo "aproz_tours/internal/storage/mysql"
)

// ---------- helpers ----------

func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir()

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=aproz",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/aproz?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	applyMigrations(t, db)
	return db
}

// ---------- the test ----------

// Snapshots the bundled catalog into MySQL, then serves the site from the
// database through the shared redis cache.
func TestHTTP_EndToEnd_CatalogFromMySQL(t *testing.T) {
	db := startMySQL(t)
	ctx := context.Background()
	l := zerolog.Nop()

	mr := miniredis.RunT(t)
	cache := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = cache.Close() })

	repo := mysqlrepo.New(db)
	f := assets.Bundled()
	ing := app.NewIngestionService(app.NewResourceSource(f, "", l), repo, cache, 2, l)
	rep, err := ing.IngestCatalog(ctx)
	if err != nil {
		t.Fatalf("IngestCatalog: %v", err)
	}
	if rep.Upserted != 3 || rep.Pruned != 0 {
		t.Fatalf("unexpected report: %+v", rep)
	}

	catalog := app.NewCatalogService(repo, cache, time.Minute, l)
	renderer, err := app.NewRenderer(app.RenderOptions{Extended: true})
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	a := app.New(app.Options{WhatsAppNumber: "573106352840", Extended: true}, f, catalog, renderer, nil, l)
	if err := a.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !mr.Exists("aproz:catalog:v1") {
		t.Fatalf("catalog should be cached after the first load")
	}

	sessions := app.NewSessionStore(a, time.Minute)
	t.Cleanup(sessions.Close)
	srv := server.New()
	srv.MountHandlers(&server.Handlers{App: a, Sessions: sessions})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/api/tours?lang=en")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}

	var body struct {
		Language string `json:"language"`
		Tours    []struct {
			Slug  string `json:"slug"`
			Title string `json:"title"`
			Price string `json:"price"`
		} `json:"tours"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Language != "en" || len(body.Tours) != 3 {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.Tours[0].Slug != "laguna-de-tota" || body.Tours[0].Title != "Tota Lake" || body.Tours[1].Price != "TBD" {
		t.Fatalf("unexpected tours: %+v", body.Tours)
	}
}
