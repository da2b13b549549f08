package app

import (
	"testing"

	"aproz_tours/internal/domain"
)

func TestCurrentLang_Defaults(t *testing.T) {
	if got := CurrentLang(nil); got != domain.LangES {
		t.Fatalf("nil store: %s", got)
	}
	if got := CurrentLang(memPrefs{}); got != domain.LangES {
		t.Fatalf("empty store: %s", got)
	}
	if got := CurrentLang(memPrefs{LangKey: "de"}); got != domain.LangES {
		t.Fatalf("unsupported value: %s", got)
	}
	if got := CurrentLang(memPrefs{LangKey: "en"}); got != domain.LangEN {
		t.Fatalf("stored en: %s", got)
	}
}

func TestSetLang_Idempotent(t *testing.T) {
	p := memPrefs{}
	SetLang(p, domain.LangEN)
	SetLang(p, domain.LangEN)
	if p[LangKey] != "en" || CurrentLang(p) != domain.LangEN {
		t.Fatalf("unexpected store: %v", p)
	}
}

func TestToggleLang_Twice(t *testing.T) {
	p := memPrefs{}
	if got := ToggleLang(p); got != domain.LangEN {
		t.Fatalf("first toggle: %s", got)
	}
	if got := ToggleLang(p); got != domain.LangES {
		t.Fatalf("second toggle: %s", got)
	}
	if p[LangKey] != "es" {
		t.Fatalf("persisted %q", p[LangKey])
	}
}
