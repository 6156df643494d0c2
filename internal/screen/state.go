// Package screen drives the weather screen: it owns the settings, the current
// snapshot and the load lifecycle, and derives the view model the client
// renders.
package screen

import (
	"time"

	"github.com/nimbusview/nimbus/internal/location"
	"github.com/nimbusview/nimbus/internal/weather"
)

// Phase is the load lifecycle phase.
type Phase string

const (
	PhaseIdle               Phase = "idle"
	PhaseInitialLoading     Phase = "initial_loading"
	PhaseBackgroundUpdating Phase = "background_updating"
	PhaseRefreshing         Phase = "refreshing"
	PhaseReady              Phase = "ready"
	PhaseFailed             Phase = "failed"
)

// Loading reports whether a load is outstanding in this phase.
func (p Phase) Loading() bool {
	return p == PhaseInitialLoading || p == PhaseBackgroundUpdating || p == PhaseRefreshing
}

// Theme is the screen color scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme validates a theme name.
func ParseTheme(s string) (Theme, bool) {
	switch Theme(s) {
	case ThemeDark, ThemeLight:
		return Theme(s), true
	default:
		return "", false
	}
}

// Settings are the user's screen choices. They live for the process only.
type Settings struct {
	LocationKey string
	Unit        weather.Unit
	Theme       Theme
	Colorblind  bool
}

// DefaultSettings returns the settings a fresh screen starts with.
func DefaultSettings() Settings {
	return Settings{
		LocationKey: location.CurrentLocationKey,
		Unit:        weather.Celsius,
		Theme:       ThemeDark,
	}
}

// Lifecycle is the phase plus, for PhaseFailed, the error kind.
type Lifecycle struct {
	Phase Phase
	Err   ErrorKind
}

// State is one immutable revision of the screen. Every change produces a new
// value with a higher Revision; nothing mutates a published State.
type State struct {
	Revision  uint64
	Settings  Settings
	Lifecycle Lifecycle

	// Snapshot is the last good reading, nil until the first load succeeds.
	Snapshot *weather.Snapshot

	// Location is where Snapshot was taken.
	Location *location.Location

	// TransientError is set when a reload failed and the old snapshot stayed.
	TransientError ErrorKind

	// Notice is a dismissible user-facing message.
	Notice string

	// Now is the clock reading the view model is rendered against.
	Now time.Time

	// seq is the most recently issued load tag.
	seq uint64
}

// HasData reports whether a snapshot is held.
func (s State) HasData() bool {
	return s.Snapshot != nil
}

// Sequence returns the most recently issued load tag.
func (s State) Sequence() uint64 {
	return s.seq
}

func initialState(settings Settings, now time.Time) State {
	return State{
		Revision:  1,
		Settings:  settings,
		Lifecycle: Lifecycle{Phase: PhaseIdle},
		Now:       now,
	}
}
