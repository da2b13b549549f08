package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"aproz_tours/internal/domain"
)

type Options struct {
	WhatsAppNumber     string
	Extended           bool
	DictionaryResource string
}

// App is the explicit application context: loaded dictionary, cached
// catalog, renderer and link settings shared by every UI session.
type App struct {
	opts     Options
	log      zerolog.Logger
	fetcher  domain.Fetcher
	catalog  *CatalogService
	renderer *Renderer
	links    LinkUpdater
	sched    domain.Scheduler
	now      func() time.Time

	mu  sync.RWMutex
	loc *Localizer
}

func New(opts Options, f domain.Fetcher, catalog *CatalogService, r *Renderer, sched domain.Scheduler, l zerolog.Logger) *App {
	if opts.DictionaryResource == "" {
		opts.DictionaryResource = DictionaryResource
	}
	if sched == nil {
		sched = ClockScheduler{}
	}
	return &App{
		opts:     opts,
		log:      l,
		fetcher:  f,
		catalog:  catalog,
		renderer: r,
		links:    LinkUpdater{Number: opts.WhatsAppNumber},
		sched:    sched,
		now:      time.Now,
		loc:      NewLocalizer(domain.EmptyDictionary()),
	}
}

// Init loads the dictionary and the catalog concurrently. Both degrade to
// empty values on failure, so Init itself only fails on ctx cancellation.
func (a *App) Init(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d := LoadDictionary(gctx, a.fetcher, a.opts.DictionaryResource, a.log)
		a.mu.Lock()
		a.loc = NewLocalizer(d)
		a.mu.Unlock()
		return nil
	})
	g.Go(func() error {
		a.catalog.Load(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (a *App) Options() Options            { return a.opts }
func (a *App) Catalog() *CatalogService    { return a.catalog }
func (a *App) Renderer() *Renderer         { return a.renderer }
func (a *App) Links() LinkUpdater          { return a.links }
func (a *App) Scheduler() domain.Scheduler { return a.sched }

func (a *App) Localizer() *Localizer {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loc
}

// SetClock overrides the wall clock used for the footer year.
func (a *App) SetClock(now func() time.Time) { a.now = now }

// Tours is the cached catalog.
func (a *App) Tours() []domain.Tour { return a.catalog.Tours() }
