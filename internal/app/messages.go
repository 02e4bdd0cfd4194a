// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package app

// All Msg* constants are human-readable message strings surfaced to the
// user through transient notifications. Keeping them in one place
// ensures consistent wording throughout the application.
const (
	// MsgFailedToLoadData is emitted when initialization cannot fetch
	// the user's data and the store falls back to structural defaults.
	MsgFailedToLoadData = "Failed to load your data"

	// MsgFailedToLikeCommander is emitted when the durable write behind
	// a like is rejected and the optimistic entry is rolled back.
	MsgFailedToLikeCommander = "Failed to like commander"

	// MsgFailedToRemoveCommander is emitted when an unlike cannot be
	// persisted.
	MsgFailedToRemoveCommander = "Failed to remove commander"

	// MsgDeckCreated confirms a deck creation after the backend has
	// assigned its authoritative identifier.
	MsgDeckCreated = "Deck created"

	// MsgFailedToCreateDeck is emitted when deck creation is rejected
	// and the temporary deck is withdrawn.
	MsgFailedToCreateDeck = "Failed to create deck"

	// MsgFailedToUpdateDeck is emitted when a deck rename or card-list
	// change cannot be persisted.
	MsgFailedToUpdateDeck = "Failed to update deck"

	// MsgDeckDeleted confirms a deck deletion.
	MsgDeckDeleted = "Deck deleted"

	// MsgFailedToSavePreferences is emitted when a color-filter change
	// cannot be persisted and the previous filter set is restored.
	MsgFailedToSavePreferences = "Failed to save preferences"

	// MsgFailedToDeleteDeck is emitted when a deck deletion is rejected
	// and the deck is restored.
	MsgFailedToDeleteDeck = "Failed to delete deck"
)
