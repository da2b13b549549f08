package app

import "aproz_tours/internal/domain"

// Brand is appended to every WhatsApp message.
const Brand = "APROZOBOQ"

// labels are the strings the page needs even when the dictionary is empty.
type labels struct {
	Greeting     string
	About        string
	FallbackTour string
	WhatsText    string
	WhatsAria    string
	PriceTBD     string
	InfoText     string
	SeeMore      string
	SeeLess      string
	ModalClose   string
	DefaultTitle string
}

var builtin = map[domain.Lang]labels{
	domain.LangES: {
		Greeting:     "¡Hola! Quiero más información",
		About:        "sobre",
		FallbackTour: "Servicio/Tour",
		WhatsText:    "Contáctanos",
		WhatsAria:    "Contactar por WhatsApp",
		PriceTBD:     "Por definir",
		InfoText:     "Más info",
		SeeMore:      "Ver más",
		SeeLess:      "Ver menos",
		ModalClose:   "Cerrar",
		DefaultTitle: "Tour",
	},
	domain.LangEN: {
		Greeting:     "Hello! I want more information",
		About:        "about",
		FallbackTour: "Service/Tour",
		WhatsText:    "Contact us",
		WhatsAria:    "Contact via WhatsApp",
		PriceTBD:     "TBD",
		InfoText:     "More info",
		SeeMore:      "See more",
		SeeLess:      "See less",
		ModalClose:   "Close",
		DefaultTitle: "Tour",
	},
}

func labelsFor(lang domain.Lang) labels {
	if l, ok := builtin[lang]; ok {
		return l
	}
	return builtin[domain.DefaultLang]
}
