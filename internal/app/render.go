package app

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/microcosm-cc/bluemonday"

	"aproz_tours/internal/domain"
	"aproz_tours/web"
)

// PlaceholderImage is the card background when a tour has no images.
const PlaceholderImage = "img/icon/LOGO.png"

// RenderOptions toggles the extended card variant (price badge + info button).
type RenderOptions struct {
	Extended bool
}

// CardState is the interactive state a card is drawn with.
type CardState struct {
	Expanded bool
	Index    int
}

type slideView struct{ Src, Alt string }

type dotView struct {
	Index  int
	Active bool
}

type cardView struct {
	Slug       string
	Title      string
	Desc       template.HTML
	Background string
	Slides     []slideView
	Dots       []dotView
	Offset     int
	Expanded   bool
	WhatsText  string
	AriaWhats  string
	Extended   bool
	Price      string
	InfoText   string
}

// Renderer turns tours into card markup.
type Renderer struct {
	tmpl   *template.Template
	policy *bluemonday.Policy
	opts   RenderOptions
}

func NewRenderer(opts RenderOptions) (*Renderer, error) {
	return newRenderer(web.Templates(), opts)
}

func newRenderer(fsys fs.FS, opts RenderOptions) (*Renderer, error) {
	tmpl, err := template.ParseFS(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	// descriptions may carry inline emphasis; anything else is stripped
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "strong", "i", "em", "br")
	return &Renderer{tmpl: tmpl, policy: p, opts: opts}, nil
}

func (r *Renderer) Options() RenderOptions { return r.opts }

// DisplayTitle is title[lang] || name || "Tour".
func DisplayTitle(t domain.Tour, lang domain.Lang) string {
	if s := t.Title.In(lang); s != "" {
		return s
	}
	if t.Name != "" {
		return t.Name
	}
	return labelsFor(lang).DefaultTitle
}

// PriceText is price[lang] or the localized "to be defined" placeholder.
func PriceText(t domain.Tour, lang domain.Lang) string {
	if s := t.Price.In(lang); s != "" {
		return s
	}
	return labelsFor(lang).PriceTBD
}

// Description returns the sanitized description for lang.
func (r *Renderer) Description(t domain.Tour, lang domain.Lang) template.HTML {
	return template.HTML(r.policy.Sanitize(t.Desc.In(lang)))
}

// RenderTourCard renders a card in its initial state.
func (r *Renderer) RenderTourCard(t domain.Tour, lang domain.Lang) (string, error) {
	return r.RenderCard(t, lang, CardState{})
}

// RenderCard renders a card with the given interactive state.
func (r *Renderer) RenderCard(t domain.Tour, lang domain.Lang, st CardState) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "card", r.cardView(t, lang, st)); err != nil {
		return "", fmt.Errorf("render card %s: %w", t.Slug, err)
	}
	return buf.String(), nil
}

func (r *Renderer) cardView(t domain.Tour, lang domain.Lang, st CardState) cardView {
	lb := labelsFor(lang)
	title := DisplayTitle(t, lang)
	v := cardView{
		Slug:       t.Slug,
		Title:      title,
		Desc:       r.Description(t, lang),
		Background: PlaceholderImage,
		Slides:     make([]slideView, 0, len(t.Images)),
		Dots:       make([]dotView, 0, len(t.Images)),
		Expanded:   st.Expanded,
		WhatsText:  lb.WhatsText,
		AriaWhats:  lb.WhatsAria,
		Extended:   r.opts.Extended,
		InfoText:   lb.InfoText,
	}
	if len(t.Images) > 0 {
		v.Background = t.Images[0]
	}
	idx := st.Index
	if idx < 0 || idx >= len(t.Images) {
		idx = 0
	}
	v.Offset = -idx * 100
	for i, src := range t.Images {
		v.Slides = append(v.Slides, slideView{Src: src, Alt: fmt.Sprintf("%s %d", title, i+1)})
		v.Dots = append(v.Dots, dotView{Index: i, Active: i == idx})
	}
	if r.opts.Extended {
		v.Price = PriceText(t, lang)
	}
	return v
}
