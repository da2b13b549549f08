package app

import (
	"math"
	"sync"
	"time"

	"aproz_tours/internal/domain"
)

const (
	AutoplayInterval = 4500 * time.Millisecond
	ResumeDelay      = 1200 * time.Millisecond
	SwipeThreshold   = 30.0
)

type CarouselState int

const (
	Paused CarouselState = iota
	Autoplaying
)

func (s CarouselState) String() string {
	if s == Autoplaying {
		return "autoplaying"
	}
	return "paused"
}

// Carousel is the per-card slide state: current index plus the autoplay and
// resume timers. Timers are only armed through the Scheduler and every one
// is cancelled before a replacement is armed or when the card goes away.
type Carousel struct {
	mu        sync.Mutex
	sched     domain.Scheduler
	n         int
	index     int
	mediaOnly bool
	destroyed bool

	// generations invalidate callbacks of timers that fired while being replaced
	tickGen   uint64
	resumeGen uint64
	tick      domain.Timer
	resume    domain.Timer
}

// NewCarousel starts on slide 0 and autoplays when there is more than one image.
// mediaOnlySwipe limits swipe gestures to ones starting over the card image.
func NewCarousel(images int, sched domain.Scheduler, mediaOnlySwipe bool) *Carousel {
	c := &Carousel{sched: sched, n: images, mediaOnly: mediaOnlySwipe}
	c.mu.Lock()
	c.startAuto()
	c.mu.Unlock()
	return c
}

func (c *Carousel) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

func (c *Carousel) Len() int { return c.n }

func (c *Carousel) State() CarouselState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tick != nil {
		return Autoplaying
	}
	return Paused
}

// Dots reports which indicator is active.
func (c *Carousel) Dots() []bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]bool, c.n)
	if c.n > 0 {
		out[c.index] = true
	}
	return out
}

func (c *Carousel) PointerEnter() { c.pause() }
func (c *Carousel) PointerLeave() { c.play() }
func (c *Carousel) FocusIn()      { c.pause() }
func (c *Carousel) FocusOut()     { c.play() }
func (c *Carousel) TouchStart()   { c.pause() }

// SelectDot jumps to slide i and resumes autoplay after ResumeDelay.
// Out of range indexes are ignored.
func (c *Carousel) SelectDot(i int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed || i < 0 || i >= c.n {
		return false
	}
	c.stopAuto()
	c.index = i
	c.scheduleResume()
	return true
}

// TouchEnd finishes a touch gesture. A moved gesture of at least
// SwipeThreshold px goes to the next slide when swiping up (dy < 0) and to
// the previous one when swiping down, wrapping at both ends.
func (c *Carousel) TouchEnd(dy float64, moved, overMedia bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return false
	}
	c.stopAuto()
	defer c.scheduleResume()
	if !moved || math.Abs(dy) < SwipeThreshold || c.n == 0 {
		return false
	}
	if c.mediaOnly && !overMedia {
		return false
	}
	dir := -1
	if dy < 0 {
		dir = 1
	}
	c.index = (c.index + dir + c.n) % c.n
	return true
}

// Destroy cancels every timer; later events are ignored.
func (c *Carousel) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopAuto()
	c.cancelResume()
	c.destroyed = true
}

func (c *Carousel) pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	c.cancelResume()
	c.stopAuto()
}

func (c *Carousel) play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	c.cancelResume()
	c.startAuto()
}

// the helpers below expect c.mu held

func (c *Carousel) startAuto() {
	c.stopAuto()
	if c.n <= 1 {
		return
	}
	c.armTick()
}

func (c *Carousel) armTick() {
	c.tickGen++
	gen := c.tickGen
	c.tick = c.sched.AfterFunc(AutoplayInterval, func() { c.onTick(gen) })
}

func (c *Carousel) onTick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed || c.tick == nil || gen != c.tickGen {
		return
	}
	c.index = (c.index + 1) % c.n
	c.armTick()
}

func (c *Carousel) stopAuto() {
	if c.tick != nil {
		c.tick.Stop()
		c.tick = nil
	}
}

func (c *Carousel) scheduleResume() {
	c.cancelResume()
	c.resumeGen++
	gen := c.resumeGen
	c.resume = c.sched.AfterFunc(ResumeDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.destroyed || c.resume == nil || gen != c.resumeGen {
			return
		}
		c.resume = nil
		c.startAuto()
	})
}

func (c *Carousel) cancelResume() {
	if c.resume != nil {
		c.resume.Stop()
		c.resume = nil
	}
}
