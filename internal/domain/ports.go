package domain

import (
	"context"
	"time"
)

// Fetcher reads a named static resource (e.g. "data/tours.json").
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// TourSource yields the catalog in display order.
type TourSource interface {
	ListTours(ctx context.Context) ([]Tour, error)
}

type TourRepository interface {
	TourSource

	// Write paths
	UpsertTour(ctx context.Context, t Tour, position int) error
	PruneTours(ctx context.Context, keep []string) (int64, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// PreferenceStore is the per-visitor key/value store holding the language choice.
type PreferenceStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// Scheduler arms one-shot callbacks. Production code uses the wall clock;
// tests drive a manual one.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}
