// Package theme defines the color palette for the TUI.
package theme

import "sync"

// Theme defines the color palette for the TUI.
type Theme struct {
	Name   string
	IsDark bool

	// Semantic colors
	Primary   string // lipgloss.Color is a string type
	Secondary string

	// Background hierarchy (dark→light)
	BgBase    string
	BgMantle  string
	BgSurface string
	BgOverlay string

	// Foreground hierarchy (dim→bright)
	FgMuted  string
	FgSubtle string
	FgBase   string

	// Status colors
	Success string
	Warning string
	Error   string
	Info    string

	// Borders
	BorderDefault string

	// Diff colors (unsaved-change summary)
	DiffInsertFg string
	DiffDeleteFg string
}

var (
	mu      sync.RWMutex
	current *Theme
)

func init() {
	current = NewCatppuccinMocha()
}

// Current returns the active theme.
func Current() *Theme {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Set replaces the active theme.
func Set(t *Theme) {
	mu.Lock()
	defer mu.Unlock()
	current = t
}
