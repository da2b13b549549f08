package app

import (
	"fmt"
	"sort"
	"sync"
)

// Region is the part of the page a click landed on.
type Region string

const (
	RegionMedia   Region = "media"   // image/carousel area of a card
	RegionCard    Region = "card"    // the card element itself
	RegionContent Region = "content" // title and description overlay
	RegionWhats   Region = "whats"   // WhatsApp button
	RegionInfo    Region = "info"    // info button (extended variant)
	RegionOutside Region = "outside" // anywhere but a card
)

// ParseRegion validates a region name coming from the client.
func ParseRegion(s string) (Region, error) {
	r := Region(s)
	if _, ok := clickTable[r]; !ok {
		return "", fmt.Errorf("unknown region %q", s)
	}
	return r, nil
}

// ClickAction is what a click on a region does.
type ClickAction int

const (
	ActionNone ClickAction = iota
	ActionToggle
	ActionCollapseAll
	ActionOpenInfo
)

func (a ClickAction) String() string {
	switch a {
	case ActionToggle:
		return "toggle"
	case ActionCollapseAll:
		return "collapse_all"
	case ActionOpenInfo:
		return "open_info"
	}
	return "none"
}

// clickTable is the whole click contract of the card grid.
var clickTable = map[Region]ClickAction{
	RegionMedia:   ActionToggle,
	RegionCard:    ActionToggle,
	RegionContent: ActionNone,
	RegionWhats:   ActionNone,
	RegionInfo:    ActionOpenInfo,
	RegionOutside: ActionCollapseAll,
}

// ActionFor looks a region up in the dispatch table.
func ActionFor(r Region) ClickAction { return clickTable[r] }

// Board tracks which cards are expanded.
type Board struct {
	mu       sync.Mutex
	expanded map[string]bool
}

func NewBoard() *Board { return &Board{expanded: map[string]bool{}} }

// Click applies the dispatch table for a click on region of card slug
// (slug is ignored for RegionOutside) and returns the action taken.
func (b *Board) Click(slug string, r Region) ClickAction {
	a := ActionFor(r)
	switch a {
	case ActionToggle:
		b.Toggle(slug)
	case ActionCollapseAll:
		b.CollapseAll()
	}
	return a
}

// Key handles a key press while card slug has focus: Enter and Space toggle.
func (b *Board) Key(slug, key string) bool {
	switch key {
	case "Enter", " ", "Space", "Spacebar":
		b.Toggle(slug)
		return true
	}
	return false
}

func (b *Board) Toggle(slug string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.expanded[slug] {
		delete(b.expanded, slug)
		return false
	}
	b.expanded[slug] = true
	return true
}

func (b *Board) CollapseAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.expanded)
}

func (b *Board) IsExpanded(slug string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.expanded[slug]
}

// Expanded lists expanded cards, sorted.
func (b *Board) Expanded() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.expanded))
	for s := range b.expanded {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Forget drops cards that are no longer rendered.
func (b *Board) Forget(keep map[string]bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.expanded {
		if !keep[s] {
			delete(b.expanded, s)
		}
	}
}
