package models

import "fmt"

// MaxDeckCards is the number of non-commander cards a deck may hold.
// 99 cards plus the commander makes the 100-card format limit.
const MaxDeckCards = 99

// Deck is a user-built commander deck. The commander reference is
// immutable once set; name and card list are mutable.
type Deck struct {
	// ID is assigned by the active backend on creation. Between the
	// optimistic creation and the backend confirmation the store holds
	// a temporary placeholder id here.
	ID string `json:"id"`

	Name string `json:"name"`

	Commander Card `json:"commander"`

	// Cards holds the non-commander cards in insertion order, which is
	// also display order.
	Cards []Card `json:"cards"`

	// CreatedAt and UpdatedAt are milliseconds since the Unix epoch.
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// DeckUpdate is a partial deck change. Nil fields are left untouched
// by the backend; only present fields are written.
type DeckUpdate struct {
	Name      *string `json:"name,omitempty"`
	Cards     *[]Card `json:"cards,omitempty"`
	Commander *Card   `json:"commander,omitempty"`
}

// Empty reports whether the update carries no fields at all.
func (u DeckUpdate) Empty() bool {
	return u.Name == nil && u.Cards == nil && u.Commander == nil
}

// DefaultDeckName derives the initial deck name from its commander.
func DefaultDeckName(commander Card) string {
	return fmt.Sprintf("%s Deck", commander.Name)
}

// TableName returns the name of the database table
// associated with the Deck model.
func (d Deck) TableName() string {
	return "decks"
}
