package app

import (
	"fmt"
	"html/template"
	"sync"

	"aproz_tours/internal/domain"
)

// CloseVia names the control that closed the info modal.
type CloseVia string

const (
	CloseButton   CloseVia = "button"
	CloseBackdrop CloseVia = "backdrop"
	CloseEscape   CloseVia = "escape"
)

func ParseCloseVia(s string) (CloseVia, error) {
	switch v := CloseVia(s); v {
	case CloseButton, CloseBackdrop, CloseEscape:
		return v, nil
	}
	return "", fmt.Errorf("unknown close control %q", s)
}

// ModalView is what the modal shows.
type ModalView struct {
	Open      bool
	Slug      string
	Title     string
	Desc      template.HTML
	Price     string
	CloseText string
}

// InfoModal is the single shared tour detail overlay. While open the page
// scroll is locked.
type InfoModal struct {
	mu     sync.Mutex
	lookup func(slug string) (domain.Tour, bool)
	slug   string
	open   bool
}

func NewInfoModal(lookup func(slug string) (domain.Tour, bool)) *InfoModal {
	return &InfoModal{lookup: lookup}
}

// Open shows tour slug. Unknown slugs are ignored and leave the modal as it was.
func (m *InfoModal) Open(slug string) bool {
	if _, ok := m.lookup(slug); !ok {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slug = slug
	m.open = true
	return true
}

// Close hides the modal and restores page scroll.
func (m *InfoModal) Close(CloseVia) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	m.slug = ""
}

func (m *InfoModal) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Current reports the tour on display.
func (m *InfoModal) Current() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slug, m.open
}

// ScrollLocked mirrors IsOpen; the rendered modal carries scroll-lock meanwhile,
// so every swap of the modal also releases or takes the page lock.
func (m *InfoModal) ScrollLocked() bool { return m.IsOpen() }

// View populates the modal for lang using the renderer's sanitizing policy.
func (m *InfoModal) View(r *Renderer, lang domain.Lang) ModalView {
	m.mu.Lock()
	open, slug := m.open, m.slug
	m.mu.Unlock()

	v := ModalView{CloseText: labelsFor(lang).ModalClose}
	if !open {
		return v
	}
	t, ok := m.lookup(slug)
	if !ok {
		return v
	}
	v.Open = true
	v.Slug = slug
	v.Title = DisplayTitle(t, lang)
	v.Desc = r.Description(t, lang)
	v.Price = PriceText(t, lang)
	return v
}
