package domain

import (
	"strings"

	"golang.org/x/text/language"
)

// Lang is one of the two bundled site languages.
type Lang string

const (
	LangES Lang = "es"
	LangEN Lang = "en"

	DefaultLang = LangES
)

// Langs lists the supported languages in toggle order.
var Langs = []Lang{LangES, LangEN}

// Other returns the language the toggle switches to.
func (l Lang) Other() Lang {
	if l == LangEN {
		return LangES
	}
	return LangEN
}

// Label is the code shown on the language toggle.
func (l Lang) Label() string { return strings.ToUpper(string(l)) }

// ParseLang normalizes a language code or BCP 47 tag ("en-US", "ES") to a
// supported Lang. ok is false for anything outside es/en.
func ParseLang(s string) (Lang, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	switch Lang(base.String()) {
	case LangES:
		return LangES, true
	case LangEN:
		return LangEN, true
	}
	return "", false
}
