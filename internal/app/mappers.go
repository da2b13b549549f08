package app

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"aproz_tours/internal/domain"
)

/********** alias registry (single source of truth) **********/

var tourAliases = map[string][]string{
	"slug":   {"slug", "id", "key"},
	"name":   {"name", "nombre"},
	"images": {"images", "photos", "gallery"},
	"title":  {"title", "titulo"},
	"desc":   {"desc", "description", "descripcion"},
	"price":  {"price", "precio"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// firstAlias returns the first present value for a named alias set.
func firstAlias(m map[string]any, key string) any {
	for _, p := range tourAliases[key] {
		if v := lookupAny(m, p); v != nil {
			return v
		}
	}
	return nil
}

// aliasString: first non-empty string (numbers are formatted) for an alias set.
func aliasString(m map[string]any, key string) string {
	for _, p := range tourAliases[key] {
		switch v := lookupAny(m, p).(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return fmt.Sprintf("%g", v)
		}
	}
	return ""
}

// stringSlice: accept []any with either strings or {url/src}.
func stringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, it := range raw {
		switch t := it.(type) {
		case string:
			if t != "" {
				out = append(out, t)
			}
		case map[string]any:
			if u, ok := t["url"].(string); ok && u != "" {
				out = append(out, u)
				continue
			}
			if u, ok := t["src"].(string); ok && u != "" {
				out = append(out, u)
			}
		}
	}
	return out
}

// localized accepts {es,en} objects or a bare string used for both languages.
func localized(v any) (domain.Localized, bool) {
	switch t := v.(type) {
	case string:
		if t == "" {
			return domain.Localized{}, false
		}
		return domain.Localized{ES: t, EN: t}, true
	case map[string]any:
		l := domain.Localized{}
		if s, ok := t["es"].(string); ok {
			l.ES = s
		}
		if s, ok := t["en"].(string); ok {
			l.EN = s
		}
		return l, l.ES != "" || l.EN != ""
	}
	return domain.Localized{}, false
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// slugify lower-cases, strips accents and joins words with '-'.
func slugify(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

/********** catalog mapper **********/

// decodeCatalog turns the catalog payload into tours. The payload must be a
// JSON array; non-object entries are skipped.
func decodeCatalog(b []byte, l zerolog.Logger) ([]domain.Tour, error) {
	var payload any
	if err := json.Unmarshal(b, &payload); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	items, ok := payload.([]any)
	if !ok {
		return nil, domain.ErrInvalidCatalog
	}

	out := make([]domain.Tour, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			l.Warn().Int("index", i).Msg("skipping non-object catalog entry")
			continue
		}
		t := mapTour(m)
		if seen[t.Slug] {
			l.Warn().Str("slug", t.Slug).Msg("duplicate slug in catalog")
			t.Slug = uniqueSlug(t.Slug, seen)
		}
		seen[t.Slug] = true
		out = append(out, t)
	}
	return out, nil
}

// uniqueSlug suffixes base with the first -N not taken yet.
func uniqueSlug(base string, seen map[string]bool) string {
	for n := 2; ; n++ {
		if s := fmt.Sprintf("%s-%d", base, n); !seen[s] {
			return s
		}
	}
}

func mapTour(m map[string]any) domain.Tour {
	t := domain.Tour{
		Name:   aliasString(m, "name"),
		Images: stringSlice(firstAlias(m, "images")),
	}
	if t.Images == nil {
		t.Images = []string{}
	}
	if v, ok := localized(firstAlias(m, "title")); ok {
		t.Title = v
	}
	if v, ok := localized(firstAlias(m, "desc")); ok {
		t.Desc = v
	}
	if v, ok := localized(firstAlias(m, "price")); ok {
		t.Price = &v
	}

	// Slug → prefer explicit; else derive from name/title; else a stable hash.
	t.Slug = slugify(aliasString(m, "slug"))
	if t.Slug == "" {
		t.Slug = slugify(t.Name)
	}
	if t.Slug == "" {
		t.Slug = slugify(t.Title.ES)
	}
	if t.Slug == "" {
		raw, _ := json.Marshal(m)
		sum := sha1.Sum(raw)
		t.Slug = "tour-" + hex.EncodeToString(sum[:4])
	}
	return t
}
