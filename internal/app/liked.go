package app

import (
	"context"
	"time"

	"github.com/tobeck/manasink/internal/store"
	"github.com/tobeck/manasink/models"
)

// LikeCommander adds a commander to the liked list, newest first. The
// entry appears immediately; if the durable write fails the prior list
// is restored and an error notification raised. Liking an already-liked
// commander is a no-op.
func (s *Store) LikeCommander(ctx context.Context, commander models.Card) {
	s.mu.Lock()
	for _, liked := range s.liked {
		if liked.ID == commander.ID {
			s.mu.Unlock()
			return
		}
	}
	prior := s.liked
	s.liked = append([]models.Card{commander}, prior...)
	s.mu.Unlock()
	s.notifySubscribers()

	s.dispatch(ctx, mutation{
		name: "like",
		effect: func(ctx context.Context, backend store.Backend) error {
			if err := backend.LikeCommander(ctx, commander); err != nil {
				return err
			}
			s.recordSwipe(ctx, backend, commander, models.SwipeLike)
			return nil
		},
		onFailure:  func() { s.liked = prior },
		failureMsg: MsgFailedToLikeCommander,
	})
}

// UnlikeCommander removes a commander from the liked list. Unliking a
// commander that is not present still issues the durable delete, which
// is idempotent on both backends.
func (s *Store) UnlikeCommander(ctx context.Context, commanderID string) {
	s.mu.Lock()
	prior := s.liked
	next := make([]models.Card, 0, len(prior))
	for _, liked := range prior {
		if liked.ID != commanderID {
			next = append(next, liked)
		}
	}
	s.liked = next
	s.mu.Unlock()
	s.notifySubscribers()

	s.dispatch(ctx, mutation{
		name: "unlike",
		effect: func(ctx context.Context, backend store.Backend) error {
			return backend.UnlikeCommander(ctx, commanderID)
		},
		onFailure:  func() { s.liked = prior },
		failureMsg: MsgFailedToRemoveCommander,
	})
}

// PassCommander records a pass in the swipe history. Passes have no
// in-memory representation, so there is nothing to roll back; failures
// are logged and never surfaced.
func (s *Store) PassCommander(ctx context.Context, commander models.Card) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		backend, err := s.provider.Backend(ctx)
		if err != nil {
			s.logger.Err(err).Str("func", "Store.PassCommander").Msg("failed to select backend")
			return
		}
		s.recordSwipe(ctx, backend, commander, models.SwipePass)
	}()
}

// SwipeHistory reads back the recorded swipe actions, newest first.
func (s *Store) SwipeHistory(ctx context.Context) ([]models.SwipeAction, error) {
	backend, err := s.provider.Backend(ctx)
	if err != nil {
		return nil, err
	}
	return backend.GetSwipeHistory(ctx)
}

// recordSwipe appends a swipe-history record. History is
// analytics-grade data: failure must never reach the caller's critical
// path, so errors are logged only.
func (s *Store) recordSwipe(ctx context.Context, backend store.Backend, commander models.Card, verb models.SwipeVerb) {
	action := models.SwipeAction{
		CommanderID: commander.ID,
		Action:      verb,
		Timestamp:   time.Now().UnixMilli(),
		Commander:   &commander,
	}
	if err := backend.RecordSwipeAction(ctx, action); err != nil {
		s.logger.Err(err).
			Str("func", "Store.recordSwipe").
			Str("commander_id", commander.ID).
			Str("action", string(verb)).
			Msg("failed to record swipe action")
	}
}
