package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidCatalog    = errors.New("catalog payload is not an array")
	ErrInvalidDictionary = errors.New("dictionary must carry es and en")
)
