package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tobeck/manasink/internal/logger"
	"github.com/tobeck/manasink/models"
)

// Keys used in the on-device key-value store. The "manasink:" namespace
// keeps them clear of anything else the host persists.
const (
	keyLiked       = "manasink:liked"
	keyDecks       = "manasink:decks"
	keyHistory     = "manasink:history"
	keyPreferences = "manasink:preferences"
)

// localBackend is the on-device implementation of [Backend]. Collections
// are stored as JSON documents in a [KV], one key per collection, so a
// write always replaces the whole document — the same shape the data has
// in memory.
//
// The current user always resolves to "no user": local data belongs to
// whoever holds the device.
type localBackend struct {
	kv     KV
	logger *logger.Logger
}

// NewLocalBackend constructs the local [Backend] variant on top of kv.
func NewLocalBackend(kv KV, log *logger.Logger) Backend {
	return &localBackend{kv: kv, logger: log}
}

func (l *localBackend) CurrentUser(_ context.Context) (*models.User, error) {
	return nil, nil
}

func (l *localBackend) GetLikedCommanders(ctx context.Context) ([]models.Card, error) {
	return readJSON(ctx, l, keyLiked, []models.Card{}), nil
}

func (l *localBackend) LikeCommander(ctx context.Context, commander models.Card) error {
	liked := readJSON(ctx, l, keyLiked, []models.Card{})
	for _, c := range liked {
		if c.ID == commander.ID {
			return nil
		}
	}
	return l.writeJSON(ctx, keyLiked, append([]models.Card{commander}, liked...))
}

func (l *localBackend) UnlikeCommander(ctx context.Context, commanderID string) error {
	liked := readJSON(ctx, l, keyLiked, []models.Card{})
	kept := liked[:0]
	for _, c := range liked {
		if c.ID != commanderID {
			kept = append(kept, c)
		}
	}
	return l.writeJSON(ctx, keyLiked, kept)
}

func (l *localBackend) GetDecks(ctx context.Context) ([]models.Deck, error) {
	decks := readJSON(ctx, l, keyDecks, []models.Deck{})
	sort.SliceStable(decks, func(i, j int) bool {
		return decks[i].UpdatedAt > decks[j].UpdatedAt
	})
	return decks, nil
}

func (l *localBackend) CreateDeck(ctx context.Context, commander models.Card, cards []models.Card) (string, error) {
	decks := readJSON(ctx, l, keyDecks, []models.Deck{})

	now := time.Now().UnixMilli()
	deck := models.Deck{
		ID:        uuid.NewString(),
		Name:      models.DefaultDeckName(commander),
		Commander: commander,
		Cards:     append([]models.Card{}, cards...),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := l.writeJSON(ctx, keyDecks, append([]models.Deck{deck}, decks...)); err != nil {
		return "", err
	}
	return deck.ID, nil
}

func (l *localBackend) UpdateDeck(ctx context.Context, deckID string, update models.DeckUpdate) error {
	decks := readJSON(ctx, l, keyDecks, []models.Deck{})

	for i := range decks {
		if decks[i].ID != deckID {
			continue
		}
		applyDeckUpdate(&decks[i], update)
		return l.writeJSON(ctx, keyDecks, decks)
	}

	// unknown deck id: a no-op, consistent with the remote variant's
	// row-filtered update
	l.logger.Debug().Str("func", "localBackend.UpdateDeck").Str("deck_id", deckID).Msg("update matched no deck")
	return nil
}

func (l *localBackend) DeleteDeck(ctx context.Context, deckID string) error {
	decks := readJSON(ctx, l, keyDecks, []models.Deck{})
	kept := decks[:0]
	for _, d := range decks {
		if d.ID != deckID {
			kept = append(kept, d)
		}
	}
	return l.writeJSON(ctx, keyDecks, kept)
}

func (l *localBackend) GetPreferences(ctx context.Context) (models.Preferences, error) {
	return readJSON(ctx, l, keyPreferences, models.DefaultPreferences()), nil
}

func (l *localBackend) SavePreferences(ctx context.Context, prefs models.Preferences) error {
	return l.writeJSON(ctx, keyPreferences, prefs)
}

func (l *localBackend) RecordSwipeAction(ctx context.Context, action models.SwipeAction) error {
	history := readJSON(ctx, l, keyHistory, []models.SwipeAction{})
	history = append(history, action)
	if len(history) > models.SwipeHistoryLimit {
		history = history[len(history)-models.SwipeHistoryLimit:]
	}

	err := l.writeJSON(ctx, keyHistory, history)
	if errors.Is(err, ErrQuotaExceeded) {
		// even the trimmed history does not fit: keep only the new record
		return l.writeJSON(ctx, keyHistory, []models.SwipeAction{action})
	}
	return err
}

func (l *localBackend) GetSwipeHistory(ctx context.Context) ([]models.SwipeAction, error) {
	// the document is append-ordered; the read-back contract is newest
	// first, matching the remote variant's created_at ordering
	history := readJSON(ctx, l, keyHistory, []models.SwipeAction{})
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	return history, nil
}

// Close releases the underlying key-value store.
func (l *localBackend) Close() error {
	return l.kv.Close()
}

// readJSON loads and decodes the document under key. Missing keys,
// unreadable storage and corrupt documents all produce the fallback:
// reads on this backend never fail, they degrade.
func readJSON[T any](ctx context.Context, l *localBackend, key string, fallback T) T {
	raw, ok, err := l.kv.Get(ctx, key)
	if err != nil {
		l.logger.Err(err).Str("func", "localBackend.readJSON").Str("key", key).Msg("failed to read key, using fallback")
		return fallback
	}
	if !ok {
		return fallback
	}

	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		l.logger.Err(err).Str("func", "localBackend.readJSON").Str("key", key).Msg("corrupt document, using fallback")
		return fallback
	}
	return value
}

// writeJSON encodes value and stores it under key. When the store is out
// of capacity the swipe history — the least essential, most disposable
// record — is evicted and the write retried once before the failure is
// reported.
func (l *localBackend) writeJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	err = l.kv.Set(ctx, key, string(raw))
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrQuotaExceeded) {
		return err
	}

	l.logger.Warn().Str("func", "localBackend.writeJSON").Str("key", key).Msg("storage quota exceeded, evicting swipe history")
	if removeErr := l.kv.Remove(ctx, keyHistory); removeErr != nil {
		return err
	}
	return l.kv.Set(ctx, key, string(raw))
}

// applyDeckUpdate copies present fields of update onto deck and stamps
// the update time.
func applyDeckUpdate(deck *models.Deck, update models.DeckUpdate) {
	if update.Name != nil {
		deck.Name = *update.Name
	}
	if update.Cards != nil {
		deck.Cards = append([]models.Card{}, (*update.Cards)...)
	}
	if update.Commander != nil {
		deck.Commander = *update.Commander
	}
	deck.UpdatedAt = time.Now().UnixMilli()
}
