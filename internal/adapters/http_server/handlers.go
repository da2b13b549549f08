package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"aproz_tours/internal/adapters/observability"
	"aproz_tours/internal/app"
	"aproz_tours/internal/domain"
)

type Handlers struct {
	App      *app.App
	Sessions *app.SessionStore
	Static   fs.FS
	Secure   bool // force Secure cookies; otherwise only on https requests
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	if h.Static != nil {
		files := http.FileServer(http.FS(h.Static))
		s.mux.Handle("/static/*", http.StripPrefix("/static/", files))
		// catalog image paths are relative to the site root
		s.mux.Handle("/img/*", files)
	}

	s.mux.Get("/", h.page)
	s.mux.Post("/lang/toggle", h.toggleLang)
	s.mux.Get("/tours/grid", h.grid)
	s.mux.Post("/tours/grid/toggle", h.toggleGrid)
	s.mux.Get("/tours/{slug}/info", h.info)
	s.mux.Post("/modal/close", h.closeModal)
	s.mux.Get("/api/tours", h.listTours)

	s.mux.Route("/cards/{slug}", func(r chi.Router) {
		r.Post("/click", h.click)
		r.Post("/key", h.key)
		r.Post("/pointer", h.pointer)
		r.Post("/dots/{index}", h.dot)
		r.Post("/swipe", h.swipe)
		r.Get("/carousel", h.carousel)
		r.Get("/slides", h.slides)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeErr(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "card is not on this page")
		return
	}
	log.Error().Err(err).Msg("request failed")
	writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
}

func writeHTML(w http.ResponseWriter, markup string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(markup)); err != nil {
		log.Error().Err(err).Msg("failed to write html body")
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write json body")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// session resolves the visitor's UI session, creating it on first visit,
// and syncs it with the persisted language.
func (h *Handlers) session(w http.ResponseWriter, r *http.Request) (*app.Session, *cookiePrefs) {
	prefs := newCookiePrefs(w, r, h.Secure)
	if v := r.URL.Query().Get("lang"); v != "" {
		if l, ok := domain.ParseLang(v); ok {
			app.SetLang(prefs, l)
		}
	}
	lang := app.CurrentLang(prefs)

	if c, err := r.Cookie(sessionCookie); err == nil {
		if s, ok := h.Sessions.Get(c.Value); ok {
			s.SetLang(lang)
			return s, prefs
		}
	}
	s := h.Sessions.Create(lang)
	setSessionCookie(w, s.ID, prefs.secure)
	return s, prefs
}

// fragment answers htmx with markup and anything else with state.
func fragment(w http.ResponseWriter, r *http.Request, render func() (string, error), state func() any) {
	if !IsHTMX(r.Context()) {
		writeJSON(w, state())
		return
	}
	out, err := render()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeHTML(w, out)
}

// ---- page ----

func (h *Handlers) page(w http.ResponseWriter, r *http.Request) {
	s, _ := h.session(w, r)
	out, err := s.RenderPage()
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Language", string(s.Lang()))
	writeHTML(w, out)
}

func (h *Handlers) toggleLang(w http.ResponseWriter, r *http.Request) {
	s, prefs := h.session(w, r)
	s.SetLang(app.ToggleLang(prefs))
	if IsHTMX(r.Context()) {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	out, err := s.RenderPage()
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Language", string(s.Lang()))
	writeHTML(w, out)
}

// ---- grid ----

type gridState struct {
	State    string   `json:"state"`
	Cap      int      `json:"cap"`
	Rendered []string `json:"rendered"`
}

func gridStateOf(s *app.Session) any {
	return gridState{State: s.GridState().String(), Cap: s.GridCap(), Rendered: s.Rendered()}
}

func (h *Handlers) grid(w http.ResponseWriter, r *http.Request) {
	width := 0
	if v := r.URL.Query().Get("w"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid width", "w must be a positive integer")
			return
		}
		width = n
	}
	s, _ := h.session(w, r)
	out, err := s.RenderGrid(width)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !IsHTMX(r.Context()) {
		writeJSON(w, gridStateOf(s))
		return
	}
	writeHTML(w, out)
}

func (h *Handlers) toggleGrid(w http.ResponseWriter, r *http.Request) {
	s, _ := h.session(w, r)
	out, err := s.ToggleGrid()
	if err != nil {
		writeErr(w, err)
		return
	}
	if !IsHTMX(r.Context()) {
		writeJSON(w, gridStateOf(s))
		return
	}
	writeHTML(w, out)
}

// ---- cards ----

type boardState struct {
	Action   string   `json:"action"`
	Expanded []string `json:"expanded"`
	Modal    string   `json:"modal,omitempty"`
}

func (h *Handlers) click(w http.ResponseWriter, r *http.Request) {
	region, err := app.ParseRegion(r.FormValue("region"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid region", err.Error())
		return
	}
	slug := chi.URLParam(r, "slug")
	s, _ := h.session(w, r)
	before := s.Board().Expanded()

	action, err := s.Click(slug, region)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !IsHTMX(r.Context()) {
		st := boardState{Action: action.String(), Expanded: s.Board().Expanded()}
		if open, ok := s.Modal().Current(); ok {
			st.Modal = open
		}
		writeJSON(w, st)
		return
	}

	switch action {
	case app.ActionToggle:
		out, err := s.RenderCard(slug)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeHTML(w, out)
	case app.ActionOpenInfo:
		out, err := s.RenderModal()
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("HX-Retarget", "#tourModal")
		w.Header().Set("HX-Reswap", "outerHTML")
		writeHTML(w, out)
	case app.ActionCollapseAll:
		// collapsed cards are swapped out of band, the trigger swaps nothing
		var b strings.Builder
		for _, sl := range before {
			out, err := s.RenderCard(sl)
			if err != nil {
				continue
			}
			b.WriteString(strings.Replace(out, "<article ", `<article hx-swap-oob="true" `, 1))
		}
		writeHTML(w, b.String())
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handlers) key(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	s, _ := h.session(w, r)
	toggled, err := s.Key(slug, r.FormValue("key"))
	if err != nil {
		writeErr(w, err)
		return
	}
	if !toggled && IsHTMX(r.Context()) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	fragment(w, r,
		func() (string, error) { return s.RenderCard(slug) },
		func() any { return boardState{Action: app.ActionNone.String(), Expanded: s.Board().Expanded()} })
}

type carouselState struct {
	Slug  string `json:"slug"`
	Index int    `json:"index"`
	Len   int    `json:"len"`
	State string `json:"state"`
	Dots  []bool `json:"dots"`
}

func carouselStateOf(slug string, c *app.Carousel) any {
	return carouselState{Slug: slug, Index: c.Index(), Len: c.Len(), State: c.State().String(), Dots: c.Dots()}
}

// liveCarousel looks up the carousel of a card rendered in the visitor's session.
func (h *Handlers) liveCarousel(w http.ResponseWriter, r *http.Request) (*app.Session, *app.Carousel, bool) {
	slug := chi.URLParam(r, "slug")
	s, _ := h.session(w, r)
	c, ok := s.Carousel(slug)
	if !ok {
		writeErr(w, domain.ErrNotFound)
		return nil, nil, false
	}
	return s, c, true
}

var pointerEvents = map[string]func(*app.Carousel){
	"enter":      (*app.Carousel).PointerEnter,
	"leave":      (*app.Carousel).PointerLeave,
	"focusin":    (*app.Carousel).FocusIn,
	"focusout":   (*app.Carousel).FocusOut,
	"touchstart": (*app.Carousel).TouchStart,
}

func (h *Handlers) pointer(w http.ResponseWriter, r *http.Request) {
	ev := r.FormValue("event")
	fn, ok := pointerEvents[ev]
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid event", "event must be enter, leave, focusin, focusout or touchstart")
		return
	}
	_, c, ok := h.liveCarousel(w, r)
	if !ok {
		return
	}
	fn(c)
	observability.ObserveUI("pointer_" + ev)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) dot(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid index", "index must be an integer")
		return
	}
	s, c, ok := h.liveCarousel(w, r)
	if !ok {
		return
	}
	c.SelectDot(i)
	observability.ObserveUI("dot")
	slug := chi.URLParam(r, "slug")
	fragment(w, r,
		func() (string, error) { return s.RenderCard(slug) },
		func() any { return carouselStateOf(slug, c) })
}

func (h *Handlers) swipe(w http.ResponseWriter, r *http.Request) {
	dy, err := strconv.ParseFloat(r.FormValue("dy"), 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid dy", "dy must be a number")
		return
	}
	moved, err := strconv.ParseBool(r.FormValue("moved"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid moved", "moved must be a boolean")
		return
	}
	s, c, ok := h.liveCarousel(w, r)
	if !ok {
		return
	}
	c.TouchEnd(dy, moved, r.FormValue("region") == string(app.RegionMedia))
	observability.ObserveUI("swipe")
	slug := chi.URLParam(r, "slug")
	fragment(w, r,
		func() (string, error) { return s.RenderCard(slug) },
		func() any { return carouselStateOf(slug, c) })
}

func (h *Handlers) carousel(w http.ResponseWriter, r *http.Request) {
	_, c, ok := h.liveCarousel(w, r)
	if !ok {
		return
	}
	writeJSON(w, carouselStateOf(chi.URLParam(r, "slug"), c))
}

func (h *Handlers) slides(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.liveCarousel(w, r)
	if !ok {
		return
	}
	out, err := s.RenderCard(chi.URLParam(r, "slug"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeHTML(w, out)
}

// ---- modal ----

type modalState struct {
	Open bool   `json:"open"`
	Slug string `json:"slug,omitempty"`
}

func modalStateOf(s *app.Session) any {
	slug, open := s.Modal().Current()
	return modalState{Open: open, Slug: slug}
}

func (h *Handlers) info(w http.ResponseWriter, r *http.Request) {
	s, _ := h.session(w, r)
	if !s.OpenInfo(chi.URLParam(r, "slug")) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	fragment(w, r, s.RenderModal, func() any { return modalStateOf(s) })
}

func (h *Handlers) closeModal(w http.ResponseWriter, r *http.Request) {
	via, err := app.ParseCloseVia(r.FormValue("via"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid control", err.Error())
		return
	}
	s, _ := h.session(w, r)
	s.CloseModal(via)
	fragment(w, r, s.RenderModal, func() any { return modalStateOf(s) })
}

// ---- api ----

type tourOut struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	Images      []string `json:"images"`
	WhatsApp    string   `json:"whatsapp"`
}

type toursOut struct {
	Language string    `json:"language"`
	Tours    []tourOut `json:"tours"`
}

func (h *Handlers) listTours(w http.ResponseWriter, r *http.Request) {
	prefs := newCookiePrefs(w, r, h.Secure)
	lang := app.CurrentLang(prefs)
	if v := r.URL.Query().Get("lang"); v != "" {
		l, ok := domain.ParseLang(v)
		if !ok {
			writeProblem(w, http.StatusBadRequest, "Invalid lang", "lang must be es or en")
			return
		}
		lang = l
	}

	links := h.App.Links()
	tours := h.App.Tours()
	resp := toursOut{Language: string(lang), Tours: make([]tourOut, 0, len(tours))}
	for _, t := range tours {
		title := app.DisplayTitle(t, lang)
		resp.Tours = append(resp.Tours, tourOut{
			Slug:        t.Slug,
			Title:       title,
			Description: string(h.App.Renderer().Description(t, lang)),
			Price:       app.PriceText(t, lang),
			Images:      append([]string{}, t.Images...),
			WhatsApp:    app.BuildWhatsLink(links.Number, links.Message(lang, title)),
		})
	}

	etag, body := calcETagAndBody(resp)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Language", resp.Language)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write listTours body")
	}
}
