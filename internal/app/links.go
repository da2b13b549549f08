package app

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"aproz_tours/internal/domain"
)

const whatsPrefix = "https://wa.me/"

// BuildWhatsLink returns the wa.me deep link carrying message as prefilled text.
func BuildWhatsLink(number, message string) string {
	return whatsPrefix + number + "?text=" + encodeURIComponent(message)
}

// encodeURIComponent percent-encodes s for a query value, spaces as %20.
func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// LinkUpdater points every WhatsApp control in the markup at the configured number.
type LinkUpdater struct {
	Number string
}

// Message composes the prefilled text; an empty subject yields the generic greeting.
func (u LinkUpdater) Message(lang domain.Lang, subject string) string {
	lb := labelsFor(lang)
	if subject == "" {
		return lb.Greeting + " - " + Brand
	}
	return lb.Greeting + " " + lb.About + ": " + subject + " - " + Brand
}

// Apply rewrites .btn-whats buttons (subject from data-tour, else the previous
// sibling's text) and the contact, floating and social links. Missing targets are skipped.
func (u LinkUpdater) Apply(root *goquery.Selection, lang domain.Lang) {
	lb := labelsFor(lang)
	root.Find(".btn-whats").Each(func(_ int, btn *goquery.Selection) {
		subject := strings.TrimSpace(btn.AttrOr("data-tour", ""))
		if subject == "" {
			subject = strings.TrimSpace(btn.Prev().Text())
		}
		if subject == "" {
			subject = lb.FallbackTour
		}
		btn.SetAttr("href", BuildWhatsLink(u.Number, u.Message(lang, subject)))
	})

	generic := BuildWhatsLink(u.Number, u.Message(lang, ""))
	for _, id := range []string{"#contactWhats", "#floatWhats", "#socialWhats"} {
		root.Find(id).SetAttr("href", generic)
	}
}
