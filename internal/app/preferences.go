package app

import "aproz_tours/internal/domain"

// LangKey is the persisted preference holding the active language.
const LangKey = "aproz-lang"

// CurrentLang reads the persisted language, defaulting to es.
func CurrentLang(store domain.PreferenceStore) domain.Lang {
	if store == nil {
		return domain.DefaultLang
	}
	v, ok := store.Get(LangKey)
	if !ok {
		return domain.DefaultLang
	}
	if l, ok := domain.ParseLang(v); ok {
		return l
	}
	return domain.DefaultLang
}

// SetLang persists lang.
func SetLang(store domain.PreferenceStore, lang domain.Lang) {
	if store == nil {
		return
	}
	store.Set(LangKey, string(lang))
}

// ToggleLang swaps the persisted language and returns the new one.
func ToggleLang(store domain.PreferenceStore) domain.Lang {
	next := CurrentLang(store).Other()
	SetLang(store, next)
	return next
}
