package domain_test

import (
	"testing"

	"aproz_tours/internal/domain"
)

func TestParseLang(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Lang
		ok   bool
	}{
		{"es", domain.LangES, true},
		{"EN", domain.LangEN, true},
		{"en-US", domain.LangEN, true},
		{"es-CO", domain.LangES, true},
		{"fr", "", false},
		{"", "", false},
		{"not a tag!", "", false},
	}
	for _, tt := range tests {
		got, ok := domain.ParseLang(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ParseLang(%q) = %q,%v want %q,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLangOther(t *testing.T) {
	if domain.LangES.Other() != domain.LangEN || domain.LangEN.Other() != domain.LangES {
		t.Fatalf("toggle must swap es and en")
	}
	if domain.LangEN.Label() != "EN" {
		t.Fatalf("label: %s", domain.LangEN.Label())
	}
}

func TestDictionaryLookupAndValidate(t *testing.T) {
	d := domain.Dictionary{domain.LangES: {"hero": "Hola", "empty": ""}}
	if v, ok := d.Lookup(domain.LangES, "hero"); !ok || v != "Hola" {
		t.Fatalf("lookup: %q %v", v, ok)
	}
	if _, ok := d.Lookup(domain.LangES, "empty"); ok {
		t.Fatalf("empty text must not count as a translation")
	}
	if _, ok := d.Lookup(domain.LangEN, "hero"); ok {
		t.Fatalf("missing language must miss")
	}
	if err := d.Validate(); err == nil {
		t.Fatalf("expected validation error without en")
	}
	if err := domain.EmptyDictionary().Validate(); err != nil {
		t.Fatalf("empty dictionary should validate: %v", err)
	}
}
