package domain

// Dictionary maps a language to its translation keys. Read-only once loaded.
type Dictionary map[Lang]map[string]string

// EmptyDictionary is the fallback used when the localization resource is unusable.
func EmptyDictionary() Dictionary {
	return Dictionary{LangES: {}, LangEN: {}}
}

// Lookup returns the non-empty text for key in lang.
func (d Dictionary) Lookup(lang Lang, key string) (string, bool) {
	v, ok := d[lang][key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Validate requires both bundled languages to be present.
func (d Dictionary) Validate() error {
	for _, l := range Langs {
		if _, ok := d[l]; !ok {
			return ErrInvalidDictionary
		}
	}
	return nil
}
