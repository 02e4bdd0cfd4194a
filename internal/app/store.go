// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app holds the process-wide application state: the in-memory
// snapshot of liked commanders, decks, preferences, view selection and
// transient notifications.
//
// Every mutating intent follows one protocol: the new snapshot is
// committed in memory immediately, the durable write runs in the
// background, and on failure the literal pre-mutation value is restored
// together with an error notification. The durable copy lives behind
// the persistence backend; the store never mutates it directly.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/tobeck/manasink/internal/config"
	"github.com/tobeck/manasink/internal/logger"
	"github.com/tobeck/manasink/internal/store"
	"github.com/tobeck/manasink/models"
)

// Phase is the initialization state of the store.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseReady
)

// View identifies which screen the UI currently shows. The store owns
// it because some mutations change it atomically with domain state,
// such as deleting the active deck.
type View string

const (
	ViewSwipe       View = "swipe"
	ViewLiked       View = "liked"
	ViewDecks       View = "decks"
	ViewDeckBuilder View = "deckbuilder"
)

const defaultNotificationTTL = 4 * time.Second

// BackendProvider supplies the active persistence backend. The backend
// selector satisfies it; tests substitute a fake.
type BackendProvider interface {
	Backend(ctx context.Context) (store.Backend, error)
	Reset()
}

// Store is the single shared application state container. Construct it
// once with [NewStore] and pass it to the UI root; all mutation goes
// through its methods.
type Store struct {
	provider BackendProvider
	logger   *logger.Logger
	ttl      time.Duration

	mu             sync.Mutex
	phase          Phase
	gen            int64
	liked          []models.Card
	decks          []models.Deck
	preferences    models.Preferences
	notifications  []models.Notification
	view           View
	activeDeckID   string
	filterModal    bool
	nextNotifyID   int64
	subs           map[int64]func()
	nextSub        int64

	// pending tracks in-flight durable writes so Flush can join them
	pending sync.WaitGroup
}

// NewStore constructs the application state store on top of the given
// backend provider.
func NewStore(provider BackendProvider, cfg config.App, log *logger.Logger) *Store {
	ttl := cfg.NotificationTTL
	if ttl <= 0 {
		ttl = defaultNotificationTTL
	}

	return &Store{
		provider:    provider,
		logger:      log,
		ttl:         ttl,
		liked:       []models.Card{},
		decks:       []models.Deck{},
		preferences: models.DefaultPreferences(),
		view:        ViewSwipe,
		subs:        map[int64]func(){},
	}
}

// Initialize loads liked commanders, decks and preferences from the
// active backend. It is idempotent: calling it while loading or ready
// is a no-op. The three fetches run concurrently and fail
// independently; any failure leaves that collection at its structural
// default and raises a single error notification, but the store still
// reaches the ready phase.
func (s *Store) Initialize(ctx context.Context) {
	s.mu.Lock()
	if s.phase != PhaseUninitialized {
		s.mu.Unlock()
		return
	}
	s.phase = PhaseLoading
	gen := s.gen
	s.mu.Unlock()
	s.notifySubscribers()

	liked := []models.Card{}
	decks := []models.Deck{}
	preferences := models.DefaultPreferences()
	failed := false

	backend, err := s.provider.Backend(ctx)
	if err != nil {
		s.logger.Err(err).Str("func", "Store.Initialize").Msg("failed to select backend")
		failed = true
	} else {
		var (
			wg                             sync.WaitGroup
			likedErr, decksErr, prefsErr   error
			gotLiked                       []models.Card
			gotDecks                       []models.Deck
			gotPrefs                       models.Preferences
		)
		wg.Add(3)
		go func() {
			defer wg.Done()
			gotLiked, likedErr = backend.GetLikedCommanders(ctx)
		}()
		go func() {
			defer wg.Done()
			gotDecks, decksErr = backend.GetDecks(ctx)
		}()
		go func() {
			defer wg.Done()
			gotPrefs, prefsErr = backend.GetPreferences(ctx)
		}()
		wg.Wait()

		if likedErr != nil {
			s.logger.Err(likedErr).Str("func", "Store.Initialize").Msg("failed to load liked commanders")
			failed = true
		} else if gotLiked != nil {
			liked = gotLiked
		}
		if decksErr != nil {
			s.logger.Err(decksErr).Str("func", "Store.Initialize").Msg("failed to load decks")
			failed = true
		} else if gotDecks != nil {
			decks = gotDecks
		}
		if prefsErr != nil {
			s.logger.Err(prefsErr).Str("func", "Store.Initialize").Msg("failed to load preferences")
			failed = true
		} else {
			preferences = gotPrefs
		}
	}

	s.mu.Lock()
	if s.gen != gen {
		// Reset ran while the loads were in flight: these results belong
		// to the previous identity, discard them
		s.mu.Unlock()
		return
	}
	s.liked = liked
	s.decks = decks
	s.preferences = preferences
	s.phase = PhaseReady
	if failed {
		s.addNotificationLocked(models.NotificationError, MsgFailedToLoadData)
	}
	s.mu.Unlock()
	s.notifySubscribers()
}

// Reset returns the store to its uninitialized state and discards the
// memoized backend, so the next Initialize re-selects and re-derives
// data for the new identity. Call it on every auth-state change.
func (s *Store) Reset() {
	s.mu.Lock()
	s.gen++
	s.phase = PhaseUninitialized
	s.liked = []models.Card{}
	s.decks = []models.Deck{}
	s.preferences = models.DefaultPreferences()
	s.activeDeckID = ""
	s.view = ViewSwipe
	s.mu.Unlock()

	s.provider.Reset()
	s.notifySubscribers()
}

// Flush blocks until every in-flight durable write has settled. Meant
// for shutdown and tests; the UI never needs it.
func (s *Store) Flush() {
	s.pending.Wait()
}

// Subscribe registers a callback invoked after every state change. The
// returned function unsubscribes. Callbacks run outside the store lock
// and may read any accessor, but must not block.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// ── snapshot accessors ───────────────────────────────────────────────────────

// Phase reports the initialization phase.
func (s *Store) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// LikedCommanders returns the liked list, newest first.
func (s *Store) LikedCommanders() []models.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Card(nil), s.liked...)
}

// Decks returns the deck list in display order.
func (s *Store) Decks() []models.Deck {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Deck(nil), s.decks...)
}

// Preferences returns the current preferences snapshot.
func (s *Store) Preferences() models.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefs := s.preferences
	prefs.ColorFilters = append([]string(nil), prefs.ColorFilters...)
	return prefs
}

// Notifications returns the visible notifications in emission order.
func (s *Store) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.notifications...)
}

// View returns the current view selection.
func (s *Store) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetView switches the UI view.
func (s *Store) SetView(view View) {
	s.mu.Lock()
	s.view = view
	s.mu.Unlock()
	s.notifySubscribers()
}

// FilterModalOpen reports whether the color-filter dialog is shown.
func (s *Store) FilterModalOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterModal
}

// SetFilterModalOpen shows or hides the color-filter dialog.
func (s *Store) SetFilterModalOpen(open bool) {
	s.mu.Lock()
	s.filterModal = open
	s.mu.Unlock()
	s.notifySubscribers()
}

// ── durable-write plumbing ───────────────────────────────────────────────────

// mutation describes the durable half of an optimistic state change.
// effect runs against the active backend; exactly one of onSuccess or
// onFailure then runs under the store lock, followed by the matching
// notification when a message is set.
type mutation struct {
	name       string
	effect     func(context.Context, store.Backend) error
	onSuccess  func()
	onFailure  func()
	successMsg string
	failureMsg string
}

// dispatch runs a mutation's durable write in the background. Failing
// to obtain a backend counts as a write failure so the optimistic
// change is rolled back the same way.
func (s *Store) dispatch(ctx context.Context, m mutation) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		backend, err := s.provider.Backend(ctx)
		if err == nil {
			err = m.effect(ctx, backend)
		}

		s.mu.Lock()
		if err != nil {
			s.logger.Err(err).Str("func", "Store.dispatch").Str("mutation", m.name).Msg("durable write failed")
			if m.onFailure != nil {
				m.onFailure()
			}
			if m.failureMsg != "" {
				s.addNotificationLocked(models.NotificationError, m.failureMsg)
			}
		} else {
			if m.onSuccess != nil {
				m.onSuccess()
			}
			if m.successMsg != "" {
				s.addNotificationLocked(models.NotificationSuccess, m.successMsg)
			}
		}
		s.mu.Unlock()
		s.notifySubscribers()
	}()
}

func (s *Store) notifySubscribers() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
