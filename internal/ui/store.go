// Package ui holds the presentation state shared by the views: the theme
// preference, the dashboard-open token and the state of API calls.
package ui

import (
	"context"
	"sync"

	"github.com/dendrite-io/dendrite-echo/internal/theme"
)

type listener struct {
	fn func(token uint64)
}

// Store is the UI state. It is safe for concurrent use.
type Store struct {
	manager *theme.Manager

	mu         sync.RWMutex
	preference theme.Preference
	token      uint64
	listeners  []*listener
}

// NewStore creates a store whose preference starts as the stored one.
func NewStore(ctx context.Context, manager *theme.Manager) *Store {
	return &Store{
		manager:    manager,
		preference: manager.GetStoredTheme(ctx),
	}
}

// ThemePreference returns the current preference.
func (s *Store) ThemePreference() theme.Preference {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.preference
}

// ResolvedTheme resolves the current preference.
func (s *Store) ResolvedTheme() theme.Resolved {
	return s.manager.ResolveTheme(s.ThemePreference())
}

// SetTheme updates the preference and applies it. Invalid preferences leave
// the state unchanged.
func (s *Store) SetTheme(ctx context.Context, p theme.Preference) error {
	if !p.Valid() {
		return s.manager.ApplyTheme(ctx, p)
	}

	s.mu.Lock()
	s.preference = p
	s.mu.Unlock()

	return s.manager.ApplyTheme(ctx, p)
}

// DashboardOpenToken returns how many times the dashboard was opened.
func (s *Store) DashboardOpenToken() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// MarkDashboardOpen increments the dashboard-open token and notifies the
// subscribers synchronously, in subscription order.
func (s *Store) MarkDashboardOpen() uint64 {
	s.mu.Lock()
	s.token++
	token := s.token
	snapshot := make([]*listener, len(s.listeners))
	copy(snapshot, s.listeners)
	s.mu.Unlock()

	for _, l := range snapshot {
		l.fn(token)
	}

	return token
}

// OnDashboardOpen subscribes fn to dashboard-open events and returns a
// function that cancels the subscription.
func (s *Store) OnDashboardOpen(fn func(token uint64)) func() {
	entry := &listener{fn: fn}

	s.mu.Lock()
	s.listeners = append(s.listeners, entry)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		for i, l := range s.listeners {
			if l == entry {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)

				return
			}
		}
	}
}
