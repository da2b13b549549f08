package app

import (
	"time"

	"aproz_tours/internal/domain"
)

// ClockScheduler arms callbacks on the wall clock.
type ClockScheduler struct{}

var _ domain.Scheduler = ClockScheduler{}

func (ClockScheduler) AfterFunc(d time.Duration, f func()) domain.Timer {
	return time.AfterFunc(d, f)
}
