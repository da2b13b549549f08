package remote_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"aproz_tours/internal/adapters/remote"
	"aproz_tours/internal/domain"
)

func TestClient_Fetch_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			_, _ = w.Write([]byte(`[{"slug":"a"}]`))
		}
	}))
	defer ts.Close()

	cl, err := remote.New(ts.URL, 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	got, err := cl.Fetch(ctx, "data/tours.json")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if string(got) != `[{"slug":"a"}]` {
		t.Fatalf("unexpected payload: %s", got)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_Fetch_CacheBustingAndPath(t *testing.T) {
	var path, bust, cc string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		bust = r.URL.Query().Get("_")
		cc = r.Header.Get("Cache-Control")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	cl, err := remote.New(ts.URL+"/site", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := cl.Fetch(context.Background(), "/i18n/i18n.json"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if path != "/site/i18n/i18n.json" {
		t.Fatalf("resolved path: %s", path)
	}
	if bust == "" || cc != "no-store" {
		t.Fatalf("expected cache busting, got _=%q cache-control=%q", bust, cc)
	}
}

func TestClient_Fetch_404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl, err := remote.New(ts.URL, 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = cl.Fetch(ctx, "data/tours.json")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNew_RejectsRelativeBase(t *testing.T) {
	if _, err := remote.New("assets", 1); err == nil {
		t.Fatalf("expected error for relative base url")
	}
}
