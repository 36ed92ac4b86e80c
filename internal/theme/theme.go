// Package theme stores the user's light/dark/auto preference, resolves it
// against the operating system's color scheme and applies the result to the
// terminal renderer.
package theme

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dendrite-io/dendrite-echo/internal/constants"
	log "github.com/sirupsen/logrus"
)

// Preference is the persisted theme choice.
type Preference string

// Preferences a user can choose from.
const (
	Light Preference = "light"
	Dark  Preference = "dark"
	Auto  Preference = "auto"
)

// Resolved is the theme actually in effect. It is never "auto".
type Resolved string

// Resolved themes.
const (
	ResolvedLight Resolved = "light"
	ResolvedDark  Resolved = "dark"
)

// ErrInvalidPreference is returned for values other than light, dark and auto.
var ErrInvalidPreference = errors.New("invalid theme preference, use light, dark or auto")

// Preferences returns every valid preference in display order.
func Preferences() []Preference {
	return []Preference{Light, Dark, Auto}
}

// Valid reports whether p is light, dark or auto.
func (p Preference) Valid() bool {
	return p == Light || p == Dark || p == Auto
}

// ParsePreference parses user input, ignoring case and surrounding space.
func ParsePreference(s string) (Preference, error) {
	p := Preference(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPreference, s)
	}

	return p, nil
}

// Storage is the key-value capability the preference is persisted in.
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
}

// Detector reports the operating system color scheme. ok is false when the
// signal is unavailable.
type Detector interface {
	Detect() (dark, ok bool)
}

// Presenter shows the resolved theme, e.g. by switching the renderer to a
// dark background.
type Presenter interface {
	SetDark(dark bool)
}

// Environment holds the capabilities of the host. A nil Storage or
// Presenter means the host is not interactive.
type Environment struct {
	Storage   Storage
	Detector  Detector
	Presenter Presenter
	Logger    log.FieldLogger
}

// Manager reads, resolves and applies theme preferences.
type Manager struct {
	env Environment
}

// NewManager creates a manager for env.
func NewManager(env Environment) *Manager {
	if env.Logger == nil {
		env.Logger = log.StandardLogger()
	}

	return &Manager{env: env}
}

// Interactive reports whether the host can both persist and present a theme.
func (m *Manager) Interactive() bool {
	return m.env.Storage != nil && m.env.Presenter != nil
}

// GetStoredTheme returns the persisted preference, or Auto when nothing valid
// is stored or the host is not interactive.
func (m *Manager) GetStoredTheme(ctx context.Context) Preference {
	if !m.Interactive() {
		return Auto
	}

	value, found, err := m.env.Storage.GetItem(ctx, constants.ThemeStorageKey)
	if err != nil {
		m.env.Logger.WithError(err).Warn("failed to read theme preference")

		return Auto
	}

	p := Preference(value)
	if !found || !p.Valid() {
		return Auto
	}

	return p
}

// ResolveTheme maps p to the theme in effect. Anything other than Light or
// Dark follows the operating system, defaulting to light.
func (m *Manager) ResolveTheme(p Preference) Resolved {
	switch p {
	case Light:
		return ResolvedLight
	case Dark:
		return ResolvedDark
	}

	if m.env.Detector != nil {
		if dark, ok := m.env.Detector.Detect(); ok && dark {
			return ResolvedDark
		}
	}

	return ResolvedLight
}

// ApplyTheme presents the resolved theme and persists p. It does nothing on a
// non-interactive host.
func (m *Manager) ApplyTheme(ctx context.Context, p Preference) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPreference, string(p))
	}

	if !m.Interactive() {
		return nil
	}

	resolved := m.ResolveTheme(p)
	m.env.Presenter.SetDark(resolved == ResolvedDark)

	err := m.env.Storage.SetItem(ctx, constants.ThemeStorageKey, string(p))
	if err != nil {
		return fmt.Errorf("persisting theme preference: %w", err)
	}

	m.env.Logger.WithFields(log.Fields{
		"preference": p,
		"resolved":   resolved,
	}).Debug("theme applied")

	return nil
}
