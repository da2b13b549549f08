package app

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"aproz_tours/internal/domain"
)

// ---- manual scheduler ----

type manualTimer struct {
	s       *manualScheduler
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// manualScheduler is a virtual clock. Callbacks run on Advance, outside
// the scheduler lock, so they may arm new timers.
type manualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) domain.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTimer{s: s, at: s.now + d, seq: s.seq, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock forward, firing due timers in deadline order.
func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()
	for {
		s.mu.Lock()
		var next *manualTimer
		for _, t := range s.timers {
			if t.stopped || t.fired || t.at > target {
				continue
			}
			if next == nil || t.at < next.at || (t.at == next.at && t.seq < next.seq) {
				next = t
			}
		}
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		next.fired = true
		s.now = next.at
		s.mu.Unlock()
		next.f()
	}
}

// Pending counts armed timers.
func (s *manualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// ---- preference store ----

type memPrefs map[string]string

func (m memPrefs) Get(k string) (string, bool) {
	v, ok := m[k]
	return v, ok
}

func (m memPrefs) Set(k, v string) { m[k] = v }

// ---- fetcher ----

type memFetcher struct {
	mu    sync.Mutex
	files map[string][]byte
	calls map[string]int
}

func newMemFetcher(files map[string]string) *memFetcher {
	f := &memFetcher{files: map[string][]byte{}, calls: map[string]int{}}
	for k, v := range files {
		f.files[k] = []byte(v)
	}
	return f
}

func (f *memFetcher) Fetch(_ context.Context, name string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	b, ok := f.files[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

func (f *memFetcher) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

// ---- cache ----

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
	dels int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memCache) Set(_ context.Context, key string, v any, _ int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	c.sets++
	return nil
}

func (c *memCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.dels++
	return nil
}

// ---- tour source / repository ----

type stubSource struct {
	mu    sync.Mutex
	tours []domain.Tour
	err   error
	calls int
}

func (s *stubSource) ListTours(context.Context) ([]domain.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.tours, s.err
}

type memRepo struct {
	mu        sync.Mutex
	positions map[string]int
	tours     map[string]domain.Tour
}

func newMemRepo() *memRepo {
	return &memRepo{positions: map[string]int{}, tours: map[string]domain.Tour{}}
}

func (r *memRepo) UpsertTour(_ context.Context, t domain.Tour, position int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tours[t.Slug] = t
	r.positions[t.Slug] = position
	return nil
}

func (r *memRepo) PruneTours(_ context.Context, keep []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := map[string]bool{}
	for _, s := range keep {
		k[s] = true
	}
	var n int64
	for slug := range r.tours {
		if !k[slug] {
			delete(r.tours, slug)
			delete(r.positions, slug)
			n++
		}
	}
	return n, nil
}

func (r *memRepo) ListTours(context.Context) ([]domain.Tour, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Tour, 0, len(r.tours))
	for _, t := range r.tours {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return r.positions[out[i].Slug] < r.positions[out[j].Slug] })
	return out, nil
}

// ---- fixtures ----

func makeTours(n int) []domain.Tour {
	out := make([]domain.Tour, n)
	for i := range out {
		slug := "tour-" + string(rune('a'+i%26)) + string(rune('a'+i/26))
		out[i] = domain.Tour{
			Slug:   slug,
			Images: []string{"img/" + slug + "-1.jpg", "img/" + slug + "-2.jpg"},
			Title:  domain.Localized{ES: "Tour " + slug, EN: "Trip " + slug},
		}
	}
	return out
}

const testDictionary = `{
  "es": {"nav.tours": "Tours", "tours.more": "Ver más", "tours.less": "Ver menos", "modal.close": "Cerrar"},
  "en": {"nav.tours": "Tours", "tours.more": "See more", "tours.less": "See less", "modal.close": "Close"}
}`

// newTestApp builds an initialized App over tours with a manual clock.
func newTestApp(t *testing.T, tours []domain.Tour, extended bool) (*App, *manualScheduler) {
	t.Helper()
	l := zerolog.Nop()
	sched := &manualScheduler{}
	f := newMemFetcher(map[string]string{DictionaryResource: testDictionary})
	r, err := NewRenderer(RenderOptions{Extended: extended})
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	cat := NewCatalogService(&stubSource{tours: tours}, nil, 0, l)
	a := New(Options{WhatsAppNumber: "573106352840", Extended: extended}, f, cat, r, sched, l)
	if err := a.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return a, sched
}
