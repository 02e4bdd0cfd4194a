package app

import (
	"context"

	"github.com/tobeck/manasink/internal/store"
	"github.com/tobeck/manasink/models"
)

// SetColorFilters replaces the discovery color filters wholesale. Like
// every other mutation the change commits optimistically; a failed
// durable save restores the previous filter set and surfaces an error
// notification.
func (s *Store) SetColorFilters(ctx context.Context, colorFilters []string) {
	s.mu.Lock()
	prior := s.preferences.ColorFilters
	s.preferences.ColorFilters = append([]string(nil), colorFilters...)
	prefs := s.preferences
	s.mu.Unlock()
	s.notifySubscribers()

	s.savePreferences(ctx, prefs, prior)
}

// ToggleColorFilter flips one color symbol in the filter set. Two
// toggles of the same symbol restore the original set exactly.
func (s *Store) ToggleColorFilter(ctx context.Context, color string) {
	s.mu.Lock()
	prior := s.preferences.ColorFilters
	next := make([]string, 0, len(prior)+1)
	removed := false
	for _, symbol := range prior {
		if symbol == color {
			removed = true
			continue
		}
		next = append(next, symbol)
	}
	if !removed {
		next = append(next, color)
	}
	s.preferences.ColorFilters = next
	prefs := s.preferences
	s.mu.Unlock()
	s.notifySubscribers()

	s.savePreferences(ctx, prefs, prior)
}

func (s *Store) savePreferences(ctx context.Context, prefs models.Preferences, prior []string) {
	s.dispatch(ctx, mutation{
		name: "save preferences",
		effect: func(ctx context.Context, backend store.Backend) error {
			return backend.SavePreferences(ctx, prefs)
		},
		onFailure:  func() { s.preferences.ColorFilters = prior },
		failureMsg: MsgFailedToSavePreferences,
	})
}
