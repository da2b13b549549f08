package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"aproz_tours/internal/domain"
)

type IngestionService struct {
	src     domain.TourSource
	repo    domain.TourRepository
	cache   domain.Cache
	workers int
	log     zerolog.Logger
}

func NewIngestionService(src domain.TourSource, r domain.TourRepository, cache domain.Cache, workers int, l zerolog.Logger) *IngestionService {
	if workers <= 0 {
		workers = 4
	}
	return &IngestionService{src: src, repo: r, cache: cache, workers: workers, log: l}
}

// IngestReport summarizes one catalog snapshot.
type IngestReport struct {
	Upserted int
	Pruned   int64
}

// IngestCatalog snapshots the catalog into the repository in display order,
// removes tours that left the catalog and drops the shared catalog cache.
// Unlike page rendering, a failing source is an error here: an empty
// snapshot would prune every tour.
func (s *IngestionService) IngestCatalog(ctx context.Context) (IngestReport, error) {
	tours, err := s.src.ListTours(ctx)
	if err != nil {
		return IngestReport{}, fmt.Errorf("read catalog: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, t := range tours {
		i, t := i, t
		g.Go(func() error {
			if err := s.repo.UpsertTour(gctx, t, i); err != nil {
				return fmt.Errorf("upsert tour %s: %w", t.Slug, err)
			}
			s.log.Debug().Str("slug", t.Slug).Int("position", i).Msg("tour upserted")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return IngestReport{}, err
	}

	keep := make([]string, 0, len(tours))
	for _, t := range tours {
		keep = append(keep, t.Slug)
	}
	pruned, err := s.repo.PruneTours(ctx, keep)
	if err != nil {
		return IngestReport{}, fmt.Errorf("prune tours: %w", err)
	}

	// the catalog changed for every language: evict the shared snapshot
	if err := InvalidateShared(ctx, s.cache); err != nil {
		s.log.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
	return IngestReport{Upserted: len(tours), Pruned: pruned}, nil
}
