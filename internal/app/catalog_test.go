package app

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"aproz_tours/internal/domain"
)

func TestResourceSource(t *testing.T) {
	f := newMemFetcher(map[string]string{
		CatalogResource: `[{"slug":"a","title":{"es":"A"}},{"slug":"b"}]`,
		"bad.json":      `{"a":1}`,
	})
	l := zerolog.Nop()

	tours, err := NewResourceSource(f, "", l).ListTours(context.Background())
	if err != nil || len(tours) != 2 {
		t.Fatalf("ListTours: %v %+v", err, tours)
	}
	if _, err := NewResourceSource(f, "bad.json", l).ListTours(context.Background()); !errors.Is(err, domain.ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog, got %v", err)
	}
	if _, err := NewResourceSource(f, "nope.json", l).ListTours(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCatalogService_LoadsOnce(t *testing.T) {
	src := &stubSource{tours: makeTours(3)}
	s := NewCatalogService(src, nil, 0, zerolog.Nop())
	if s.Tours() != nil {
		t.Fatalf("nothing before Load")
	}
	for i := 0; i < 3; i++ {
		if got := s.Load(context.Background()); len(got) != 3 {
			t.Fatalf("load %d: %d tours", i, len(got))
		}
	}
	if src.calls != 1 {
		t.Fatalf("source read %d times", src.calls)
	}
	if tr, ok := s.Find(makeTours(3)[1].Slug); !ok || tr.Title.EN == "" {
		t.Fatalf("Find: %+v %v", tr, ok)
	}
	if _, ok := s.Find("missing"); ok {
		t.Fatalf("unexpected find")
	}
}

func TestCatalogService_FailureRendersNothing(t *testing.T) {
	src := &stubSource{err: errors.New("boom")}
	s := NewCatalogService(src, nil, 0, zerolog.Nop())
	got := s.Load(context.Background())
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil catalog, got %#v", got)
	}
	s.Load(context.Background())
	if src.calls != 1 {
		t.Fatalf("failed loads are not retried, got %d calls", src.calls)
	}
}

func TestCatalogService_SharedCache(t *testing.T) {
	cache := newMemCache()
	src := &stubSource{tours: makeTours(2)}

	first := NewCatalogService(src, cache, 0, zerolog.Nop())
	first.Load(context.Background())
	if cache.sets != 1 {
		t.Fatalf("expected cache fill, sets=%d", cache.sets)
	}

	// another process start is served from the cache
	second := NewCatalogService(src, cache, 0, zerolog.Nop())
	if got := second.Load(context.Background()); len(got) != 2 || got[0].Slug != makeTours(2)[0].Slug {
		t.Fatalf("cached load: %+v", got)
	}
	if src.calls != 1 {
		t.Fatalf("source read %d times", src.calls)
	}

	if err := InvalidateShared(context.Background(), cache); err != nil {
		t.Fatal(err)
	}
	NewCatalogService(src, cache, 0, zerolog.Nop()).Load(context.Background())
	if src.calls != 2 {
		t.Fatalf("expected refetch after invalidation, calls=%d", src.calls)
	}
	if err := InvalidateShared(context.Background(), nil); err != nil {
		t.Fatalf("nil cache: %v", err)
	}
}
