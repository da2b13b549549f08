package domain

// Localized carries one text per bundled language.
type Localized struct {
	ES string `json:"es,omitempty"`
	EN string `json:"en,omitempty"`
}

// In returns the text for lang, "" when absent.
func (l *Localized) In(lang Lang) string {
	if l == nil {
		return ""
	}
	if lang == LangEN {
		return l.EN
	}
	return l.ES
}

// Tour is one catalog entry. Slug is its identity.
type Tour struct {
	Slug   string     `json:"slug"`
	Name   string     `json:"name,omitempty"`
	Images []string   `json:"images"`
	Title  Localized  `json:"title"`
	Desc   Localized  `json:"desc"`
	Price  *Localized `json:"price,omitempty"`
}
