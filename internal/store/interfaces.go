package store

import (
	"context"

	"github.com/tobeck/manasink/models"
)

// UserResolver resolves the currently authenticated user. The auth
// collaborator implements it; a nil user with a nil error means nobody
// is signed in.
type UserResolver interface {
	CurrentUser(ctx context.Context) (*models.User, error)
}

// Backend is the data-access contract shared by the local and remote
// persistence variants. The state store talks to exactly one Backend at
// a time and never cares which variant is behind it.
//
// Read operations degrade instead of failing where the data simply is
// not there: they return empty collections (or structural defaults) for
// missing keys and, on the remote variant, for unauthenticated callers.
// Mutating operations on the remote variant return
// [ErrNotAuthenticated] when no user is resolved.
type Backend interface {
	// CurrentUser reports the identity the backend operates as. The
	// local variant always resolves to no user.
	CurrentUser(ctx context.Context) (*models.User, error)

	// GetLikedCommanders returns liked cards newest-liked first.
	GetLikedCommanders(ctx context.Context) ([]models.Card, error)

	// LikeCommander records a like. Liking an already-liked card is a
	// no-op, never an error.
	LikeCommander(ctx context.Context, commander models.Card) error

	// UnlikeCommander removes a like. Unliking a card that is not
	// present is a no-op.
	UnlikeCommander(ctx context.Context, commanderID string) error

	// GetDecks returns the user's decks most-recently-updated first.
	GetDecks(ctx context.Context) ([]models.Deck, error)

	// CreateDeck stores a new deck built around commander and returns
	// the freshly assigned deck id. Identifiers are never reused.
	CreateDeck(ctx context.Context, commander models.Card, cards []models.Card) (string, error)

	// UpdateDeck applies a partial update. Fields absent from update
	// stay untouched. Updates to a deck the current user does not own
	// are a silent no-op.
	UpdateDeck(ctx context.Context, deckID string, update models.DeckUpdate) error

	// DeleteDeck removes a deck. Idempotent.
	DeleteDeck(ctx context.Context, deckID string) error

	// GetPreferences returns the stored preferences or the structural
	// default when none are stored.
	GetPreferences(ctx context.Context) (models.Preferences, error)

	// SavePreferences overwrites the preferences wholesale.
	SavePreferences(ctx context.Context, prefs models.Preferences) error

	// RecordSwipeAction appends a swipe record. Callers treat failures
	// as non-critical: a lost history row must never block the swipe
	// path.
	RecordSwipeAction(ctx context.Context, action models.SwipeAction) error

	// GetSwipeHistory returns recorded swipes, newest first.
	GetSwipeHistory(ctx context.Context) ([]models.SwipeAction, error)
}

// KV is the namespaced on-device key-value store the local backend
// persists through. Values are serialized structured text.
type KV interface {
	// Get returns the value stored under key and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, overwriting any previous value.
	// Returns [ErrQuotaExceeded] when the store is out of capacity.
	Set(ctx context.Context, key string, value string) error

	// Remove deletes the key. Removing an absent key is a no-op.
	Remove(ctx context.Context, key string) error

	// Close releases the resources behind the store.
	Close() error
}
