package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tobeck/manasink/internal/store"
	"github.com/tobeck/manasink/models"
)

// tempDeckIDPrefix marks deck identifiers assigned optimistically,
// before the backend confirms the authoritative one.
const tempDeckIDPrefix = "temp-"

// CreateDeck builds a new deck around the given commander and switches
// the UI into the deck builder. The returned identifier is a temporary
// placeholder, observable in state immediately; once the backend
// confirms, the deck is patched in place with the authoritative id and
// no other field changes. On failure the whole optimistic insertion is
// withdrawn.
func (s *Store) CreateDeck(ctx context.Context, commander models.Card, cards []models.Card) string {
	cards = append([]models.Card{}, cards...)
	now := time.Now().UnixMilli()
	tempID := tempDeckIDPrefix + uuid.NewString()
	deck := models.Deck{
		ID:        tempID,
		Name:      models.DefaultDeckName(commander),
		Commander: commander,
		Cards:     cards,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	priorDecks := s.decks
	priorActive := s.activeDeckID
	priorView := s.view
	s.decks = append([]models.Deck{deck}, priorDecks...)
	s.activeDeckID = tempID
	s.view = ViewDeckBuilder
	s.mu.Unlock()
	s.notifySubscribers()

	s.dispatch(ctx, mutation{
		name: "create deck",
		effect: func(ctx context.Context, backend store.Backend) error {
			newID, err := backend.CreateDeck(ctx, commander, cards)
			if err != nil {
				return err
			}
			s.mu.Lock()
			for i := range s.decks {
				if s.decks[i].ID == tempID {
					s.decks[i].ID = newID
					break
				}
			}
			if s.activeDeckID == tempID {
				s.activeDeckID = newID
			}
			s.mu.Unlock()
			return nil
		},
		onFailure: func() {
			s.decks = priorDecks
			s.activeDeckID = priorActive
			s.view = priorView
		},
		successMsg: MsgDeckCreated,
		failureMsg: MsgFailedToCreateDeck,
	})

	return tempID
}

// UpdateDeck applies a partial update to a deck. Only the fields set in
// the update change; updatedAt is stamped as part of the same in-memory
// mutation. An unknown deck id is a no-op.
func (s *Store) UpdateDeck(ctx context.Context, deckID string, update models.DeckUpdate) {
	if update.Empty() {
		return
	}

	s.mu.Lock()
	prior := s.decks
	found := false
	next := make([]models.Deck, len(prior))
	for i, deck := range prior {
		if deck.ID == deckID {
			applyDeckUpdate(&deck, update)
			found = true
		}
		next[i] = deck
	}
	if !found {
		s.mu.Unlock()
		return
	}
	s.decks = next
	s.mu.Unlock()
	s.notifySubscribers()

	s.dispatch(ctx, mutation{
		name: "update deck",
		effect: func(ctx context.Context, backend store.Backend) error {
			return backend.UpdateDeck(ctx, deckID, update)
		},
		onFailure:  func() { s.decks = prior },
		failureMsg: MsgFailedToUpdateDeck,
	})
}

// DeleteDeck removes a deck. Deleting the active deck also clears the
// selection and navigates back to the deck list in the same mutation,
// so no intermediate state points at a deleted deck.
func (s *Store) DeleteDeck(ctx context.Context, deckID string) {
	s.mu.Lock()
	priorDecks := s.decks
	priorActive := s.activeDeckID
	priorView := s.view

	next := make([]models.Deck, 0, len(priorDecks))
	for _, deck := range priorDecks {
		if deck.ID != deckID {
			next = append(next, deck)
		}
	}
	s.decks = next
	if priorActive == deckID {
		s.activeDeckID = ""
		s.view = ViewDecks
	}
	s.mu.Unlock()
	s.notifySubscribers()

	s.dispatch(ctx, mutation{
		name: "delete deck",
		effect: func(ctx context.Context, backend store.Backend) error {
			return backend.DeleteDeck(ctx, deckID)
		},
		onFailure: func() {
			s.decks = priorDecks
			s.activeDeckID = priorActive
			s.view = priorView
		},
		successMsg: MsgDeckDeleted,
		failureMsg: MsgFailedToDeleteDeck,
	})
}

// SetActiveDeck selects a deck for editing and opens the deck builder;
// an empty id clears the selection and returns to the deck list.
func (s *Store) SetActiveDeck(deckID string) {
	s.mu.Lock()
	s.activeDeckID = deckID
	if deckID == "" {
		s.view = ViewDecks
	} else {
		s.view = ViewDeckBuilder
	}
	s.mu.Unlock()
	s.notifySubscribers()
}

// ActiveDeck returns the currently selected deck, or nil when none is
// selected.
func (s *Store) ActiveDeck() *models.Deck {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, deck := range s.decks {
		if deck.ID == s.activeDeckID {
			copied := deck
			copied.Cards = append([]models.Card(nil), deck.Cards...)
			return &copied
		}
	}
	return nil
}

// AddCardToDeck appends a card to a deck's list. It reports false and
// leaves state untouched, without any backend call, when the deck is
// unknown, already holds the format limit of non-commander cards, or
// already contains the card and the card is not a basic land.
func (s *Store) AddCardToDeck(ctx context.Context, deckID string, card models.Card) bool {
	s.mu.Lock()
	deck, ok := s.findDeckLocked(deckID)
	if !ok {
		s.mu.Unlock()
		return false
	}
	if len(deck.Cards) >= models.MaxDeckCards {
		s.mu.Unlock()
		return false
	}
	if !card.IsBasicLand() {
		for _, existing := range deck.Cards {
			if existing.ID == card.ID {
				s.mu.Unlock()
				return false
			}
		}
	}
	cards := append(append([]models.Card(nil), deck.Cards...), card)
	s.mu.Unlock()

	s.UpdateDeck(ctx, deckID, models.DeckUpdate{Cards: &cards})
	return true
}

// RemoveCardFromDeck drops every copy of the card from the deck's list.
// An unknown deck is a no-op.
func (s *Store) RemoveCardFromDeck(ctx context.Context, deckID string, cardID string) {
	s.mu.Lock()
	deck, ok := s.findDeckLocked(deckID)
	if !ok {
		s.mu.Unlock()
		return
	}
	cards := make([]models.Card, 0, len(deck.Cards))
	for _, existing := range deck.Cards {
		if existing.ID != cardID {
			cards = append(cards, existing)
		}
	}
	s.mu.Unlock()

	s.UpdateDeck(ctx, deckID, models.DeckUpdate{Cards: &cards})
}

func (s *Store) findDeckLocked(deckID string) (models.Deck, bool) {
	for _, deck := range s.decks {
		if deck.ID == deckID {
			return deck, true
		}
	}
	return models.Deck{}, false
}

func applyDeckUpdate(deck *models.Deck, update models.DeckUpdate) {
	if update.Name != nil {
		deck.Name = *update.Name
	}
	if update.Cards != nil {
		deck.Cards = append([]models.Card(nil), (*update.Cards)...)
	}
	if update.Commander != nil {
		deck.Commander = *update.Commander
	}
	deck.UpdatedAt = time.Now().UnixMilli()
}
