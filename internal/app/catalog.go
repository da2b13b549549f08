package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"aproz_tours/internal/adapters/observability"
	"aproz_tours/internal/domain"
)

const (
	// CatalogResource is the default catalog resource name.
	CatalogResource = "data/tours.json"

	catalogCacheKey = "catalog:v1"
)

// ResourceSource reads the catalog from a static resource.
type ResourceSource struct {
	f    domain.Fetcher
	name string
	log  zerolog.Logger
}

var _ domain.TourSource = (*ResourceSource)(nil)

func NewResourceSource(f domain.Fetcher, name string, l zerolog.Logger) *ResourceSource {
	if name == "" {
		name = CatalogResource
	}
	return &ResourceSource{f: f, name: name, log: l}
}

func (s *ResourceSource) ListTours(ctx context.Context) ([]domain.Tour, error) {
	b, err := s.f.Fetch(ctx, s.name)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.name, err)
	}
	return decodeCatalog(b, s.log)
}

// CatalogService loads the catalog once and keeps it for the process lifetime.
// An optional shared cache sits in front of the source.
type CatalogService struct {
	src      domain.TourSource
	cache    domain.Cache
	cacheTTL time.Duration
	log      zerolog.Logger

	mu     sync.RWMutex
	loaded bool
	tours  []domain.Tour
	bySlug map[string]int
}

func NewCatalogService(src domain.TourSource, c domain.Cache, ttl time.Duration, l zerolog.Logger) *CatalogService {
	return &CatalogService{src: src, cache: c, cacheTTL: ttl, log: l}
}

// Load returns the cached catalog, fetching it on first use. Failures yield
// an empty catalog and are not retried.
func (s *CatalogService) Load(ctx context.Context) []domain.Tour {
	s.mu.RLock()
	if s.loaded {
		defer s.mu.RUnlock()
		return s.tours
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.tours
	}
	tours, err := s.fetch(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("could not load tour catalog, rendering none")
		observability.ObserveLoad("catalog", false)
		tours = []domain.Tour{}
	} else {
		observability.ObserveLoad("catalog", true)
		s.log.Info().Int("tours", len(tours)).Msg("catalog loaded")
	}
	s.install(tours)
	return s.tours
}

func (s *CatalogService) fetch(ctx context.Context) ([]domain.Tour, error) {
	var cached []domain.Tour
	if s.cache != nil {
		if ok, err := s.cache.Get(ctx, catalogCacheKey, &cached); err == nil && ok {
			return cached, nil
		} else if err != nil {
			s.log.Warn().Err(err).Msg("catalog cache read failed")
		}
	}
	tours, err := s.src.ListTours(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, catalogCacheKey, tours, int(s.cacheTTL.Seconds())); err != nil {
			s.log.Warn().Err(err).Msg("catalog cache write failed")
		}
	}
	return tours, nil
}

func (s *CatalogService) install(tours []domain.Tour) {
	s.tours = tours
	s.bySlug = make(map[string]int, len(tours))
	for i, t := range tours {
		if _, dup := s.bySlug[t.Slug]; !dup {
			s.bySlug[t.Slug] = i
		}
	}
	s.loaded = true
}

// Tours returns the cached catalog without fetching; nil before Load.
func (s *CatalogService) Tours() []domain.Tour {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tours
}

// Find looks a tour up by slug in the cached catalog.
func (s *CatalogService) Find(slug string) (domain.Tour, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.bySlug[slug]
	if !ok {
		return domain.Tour{}, false
	}
	return s.tours[i], true
}

// InvalidateShared drops the shared cache entry so the next process start refetches.
func InvalidateShared(ctx context.Context, c domain.Cache) error {
	if c == nil {
		return nil
	}
	return c.Del(ctx, catalogCacheKey)
}
