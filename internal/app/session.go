package app

import (
	"context"
	"html/template"
	"sync"
	"time"

	"github.com/google/uuid"

	"aproz_tours/internal/adapters/observability"
	"aproz_tours/internal/domain"
)

// Session is one visitor's page: grid pagination, live carousels, card
// expansion board and info modal. Re-rendering the grid destroys the
// previous carousels before creating new ones.
type Session struct {
	ID  string
	app *App

	mu        sync.Mutex
	lang      domain.Lang
	width     int
	grid      *Grid
	carousels map[string]*Carousel
	lastSeen  time.Time

	boardOnce sync.Once
	board     *Board
	modal     *InfoModal
}

func (a *App) NewSession(id string, lang domain.Lang) *Session {
	s := &Session{
		ID:        id,
		app:       a,
		lang:      lang,
		width:     DefaultGridWidth,
		carousels: map[string]*Carousel{},
		lastSeen:  time.Now(),
	}
	s.grid = NewGrid(len(a.Tours()), s.capFor(DefaultGridWidth))
	s.modal = NewInfoModal(a.catalog.Find)
	return s
}

func (s *Session) capFor(width int) int {
	if s.app.opts.Extended {
		return ComputeCap(width)
	}
	return BasicCap
}

// Board returns the card interaction board, created once per session.
func (s *Session) Board() *Board {
	s.boardOnce.Do(func() { s.board = NewBoard() })
	return s.board
}

func (s *Session) Modal() *InfoModal { return s.modal }

func (s *Session) Lang() domain.Lang {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

func (s *Session) SetLang(l domain.Lang) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lang = l
}

func (s *Session) GridState() GridState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.State()
}

func (s *Session) GridCap() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Cap()
}

// Carousel returns the live carousel of a rendered card.
func (s *Session) Carousel(slug string) (*Carousel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carousels[slug]
	return c, ok
}

// Rendered lists the slugs of the cards currently on the page, in order.
func (s *Session) Rendered() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	tours := s.app.Tours()
	n := s.grid.Visible()
	out := make([]string, 0, n)
	for _, t := range tours[:min(n, len(tours))] {
		out = append(out, t.Slug)
	}
	return out
}

// RenderGrid re-renders the grid for the given width (0 keeps the last one).
func (s *Session) RenderGrid(width int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if width > 0 {
		s.width = width
		s.grid.Resize(s.capFor(width))
	}
	return s.renderGridLocked()
}

// ToggleGrid flips see more/see less and re-renders.
func (s *Session) ToggleGrid() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid.Toggle()
	observability.ObserveUI("grid_" + s.grid.State().String())
	return s.renderGridLocked()
}

func (s *Session) renderGridLocked() (string, error) {
	tours := s.app.Tours()
	s.grid.SetTotal(len(tours))
	visible := tours[:s.grid.Visible()]

	s.destroyCarouselsLocked()
	keep := make(map[string]bool, len(visible))
	r := s.app.renderer
	cards := make([]template.HTML, 0, len(visible))
	for _, t := range visible {
		keep[t.Slug] = true
		if old, ok := s.carousels[t.Slug]; ok {
			old.Destroy()
		}
		s.carousels[t.Slug] = NewCarousel(len(t.Images), s.app.sched, s.app.opts.Extended)
		card, err := r.RenderCard(t, s.lang, CardState{Expanded: s.Board().IsExpanded(t.Slug)})
		if err != nil {
			return "", err
		}
		cards = append(cards, template.HTML(card))
	}
	s.Board().Forget(keep)

	lb := labelsFor(s.lang)
	label := lb.SeeMore
	if s.grid.State() == Expanded {
		label = lb.SeeLess
	}
	out, err := r.execute("grid", gridView{
		Cap:         s.grid.Cap(),
		Cards:       cards,
		LabelKey:    s.grid.LabelKey(),
		Label:       label,
		ShowControl: s.grid.ControlVisible(),
	})
	if err != nil {
		return "", err
	}
	return s.app.postProcess(out, s.lang, true)
}

func (s *Session) destroyCarouselsLocked() {
	for slug, c := range s.carousels {
		c.Destroy()
		delete(s.carousels, slug)
	}
}

// RenderCard renders one card with its live state.
func (s *Session) RenderCard(slug string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carousels[slug]
	if !ok {
		return "", domain.ErrNotFound
	}
	t, ok := s.app.catalog.Find(slug)
	if !ok {
		return "", domain.ErrNotFound
	}
	out, err := s.app.renderer.RenderCard(t, s.lang, CardState{
		Expanded: s.Board().IsExpanded(slug),
		Index:    c.Index(),
	})
	if err != nil {
		return "", err
	}
	return s.app.postProcess(out, s.lang, true)
}

// Click feeds a click on region of card slug through the dispatch table.
// The basic variant has no info modal, so info clicks do nothing there.
func (s *Session) Click(slug string, r Region) (ClickAction, error) {
	if r != RegionOutside {
		if _, ok := s.Carousel(slug); !ok {
			return ActionNone, domain.ErrNotFound
		}
	}
	if r == RegionInfo && !s.app.opts.Extended {
		return ActionNone, nil
	}
	a := s.Board().Click(slug, r)
	if a == ActionOpenInfo {
		s.modal.Open(slug)
	}
	observability.ObserveUI("click_" + string(r))
	return a, nil
}

// Key feeds a key press on a focused card.
func (s *Session) Key(slug, key string) (bool, error) {
	if _, ok := s.Carousel(slug); !ok {
		return false, domain.ErrNotFound
	}
	observability.ObserveUI("key")
	return s.Board().Key(slug, key), nil
}

// OpenInfo opens the modal for slug; unknown slugs are ignored.
func (s *Session) OpenInfo(slug string) bool {
	if !s.app.opts.Extended {
		return false
	}
	observability.ObserveUI("modal_open")
	return s.modal.Open(slug)
}

func (s *Session) CloseModal(via CloseVia) {
	observability.ObserveUI("modal_close_" + string(via))
	s.modal.Close(via)
}

// RenderModal renders the modal in its current state.
func (s *Session) RenderModal() (string, error) {
	lang := s.Lang()
	out, err := s.app.renderer.execute("modal", s.modal.View(s.app.renderer, lang))
	if err != nil {
		return "", err
	}
	return s.app.postProcess(out, lang, true)
}

// RenderPage renders the whole page: grid, modal, translations, links, year.
func (s *Session) RenderPage() (string, error) {
	grid, err := s.RenderGrid(0)
	if err != nil {
		return "", err
	}
	lang := s.Lang()
	v := pageView{
		Lang:     lang,
		Grid:     template.HTML(grid),
		Extended: s.app.opts.Extended,
	}
	if v.Extended {
		m, err := s.app.renderer.execute("modal", s.modal.View(s.app.renderer, lang))
		if err != nil {
			return "", err
		}
		v.Modal = template.HTML(m)
	}
	out, err := s.app.renderer.execute("page", v)
	if err != nil {
		return "", err
	}
	return s.app.postProcess(out, lang, false)
}

// Destroy cancels every timer of the session.
func (s *Session) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyCarouselsLocked()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// SessionStore keeps UI sessions in memory and evicts idle ones.
type SessionStore struct {
	app  *App
	idle time.Duration
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore(a *App, idle time.Duration) *SessionStore {
	if idle <= 0 {
		idle = 30 * time.Minute
	}
	return &SessionStore{app: a, idle: idle, now: time.Now, sessions: map[string]*Session{}}
}

// Get returns a live session and marks it as used.
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	st.mu.Unlock()
	if ok {
		s.touch(st.now())
	}
	return s, ok
}

// Create starts a session in lang.
func (st *SessionStore) Create(lang domain.Lang) *Session {
	s := st.app.NewSession(uuid.NewString(), lang)
	s.touch(st.now())
	st.mu.Lock()
	st.sessions[s.ID] = s
	n := len(st.sessions)
	st.mu.Unlock()
	observability.ActiveSessions.Set(float64(n))
	return s
}

// Sweep evicts sessions idle for longer than the configured duration.
func (st *SessionStore) Sweep() int {
	now := st.now()
	var evicted []*Session
	st.mu.Lock()
	for id, s := range st.sessions {
		if s.idleSince(now) > st.idle {
			evicted = append(evicted, s)
			delete(st.sessions, id)
		}
	}
	n := len(st.sessions)
	st.mu.Unlock()

	for _, s := range evicted {
		s.Destroy()
	}
	observability.ActiveSessions.Set(float64(n))
	return len(evicted)
}

// Run sweeps periodically until ctx is done, then destroys every session.
func (st *SessionStore) Run(ctx context.Context) {
	t := time.NewTicker(max(st.idle/4, time.Second))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			st.Close()
			return
		case <-t.C:
			if n := st.Sweep(); n > 0 {
				st.app.log.Debug().Int("evicted", n).Msg("idle sessions swept")
			}
		}
	}
}

func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *SessionStore) Close() {
	st.mu.Lock()
	all := st.sessions
	st.sessions = map[string]*Session{}
	st.mu.Unlock()
	for _, s := range all {
		s.Destroy()
	}
	observability.ActiveSessions.Set(0)
}

// SetClock overrides the clock used for idle tracking.
func (st *SessionStore) SetClock(now func() time.Time) { st.now = now }
