package app

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"

	"aproz_tours/internal/adapters/observability"
	"aproz_tours/internal/domain"
)

// DictionaryResource is the default localization resource name.
const DictionaryResource = "i18n/i18n.json"

// LoadDictionary fetches and decodes the localization resource once.
// Any failure is logged and yields the empty dictionary; it never errors.
func LoadDictionary(ctx context.Context, f domain.Fetcher, name string, l zerolog.Logger) domain.Dictionary {
	d, err := fetchDictionary(ctx, f, name)
	if err != nil {
		l.Warn().Err(err).Str("resource", name).
			Msg("could not load localization resource, using literal page text")
		observability.ObserveLoad("dictionary", false)
		return domain.EmptyDictionary()
	}
	observability.ObserveLoad("dictionary", true)
	l.Info().Int("es", len(d[domain.LangES])).Int("en", len(d[domain.LangEN])).Msg("dictionary loaded")
	return d
}

func fetchDictionary(ctx context.Context, f domain.Fetcher, name string) (domain.Dictionary, error) {
	b, err := f.Fetch(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	return decodeDictionary(name, b)
}

func decodeDictionary(name string, b []byte) (domain.Dictionary, error) {
	var d domain.Dictionary
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &d); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
	default:
		if err := json.Unmarshal(b, &d); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}

// Localizer applies a dictionary to rendered markup.
type Localizer struct{ dict domain.Dictionary }

func NewLocalizer(d domain.Dictionary) *Localizer {
	if d == nil {
		d = domain.EmptyDictionary()
	}
	return &Localizer{dict: d}
}

// Text returns the dictionary text for key, or fallback.
func (l *Localizer) Text(lang domain.Lang, key, fallback string) string {
	if v, ok := l.dict.Lookup(lang, key); ok {
		return v
	}
	return fallback
}

// Apply rewrites every [data-i18n] element under root that has a translation
// and relabels #langLabel. Elements without a translation keep their text.
func (l *Localizer) Apply(root *goquery.Selection, lang domain.Lang) {
	root.Find("[data-i18n]").Each(func(_ int, el *goquery.Selection) {
		key, _ := el.Attr("data-i18n")
		if v, ok := l.dict.Lookup(lang, key); ok {
			el.SetText(v)
		}
	})
	root.Find("#langLabel").SetText(lang.Label())
}
