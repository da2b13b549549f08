package app

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"aproz_tours/internal/domain"
)

type gridView struct {
	Cap         int
	Cards       []template.HTML
	LabelKey    string
	Label       string
	ShowControl bool
}

type pageView struct {
	Lang     domain.Lang
	Grid     template.HTML
	Modal    template.HTML
	Extended bool
}

func (r *Renderer) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// postProcess applies the dictionary and WhatsApp links to rendered markup,
// the server-side counterpart of rewriting the live document. A fragment
// comes back without the html/body wrapper the parser adds.
func (a *App) postProcess(markup string, lang domain.Lang, fragment bool) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("parse markup: %w", err)
	}
	a.Localizer().Apply(doc.Selection, lang)
	a.links.Apply(doc.Selection, lang)
	if fragment {
		return doc.Find("body").Html()
	}
	doc.Find("#year").SetText(strconv.Itoa(a.now().Year()))
	return doc.Html()
}
