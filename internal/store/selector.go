// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"io"
	"sync"

	"github.com/tobeck/manasink/internal/config"
	"github.com/tobeck/manasink/internal/logger"
)

// Selector picks which [Backend] variant the process uses and memoizes
// the choice: the remote variant when remote configuration is present
// and well-formed, the local variant otherwise.
//
// The memoized instance must be discarded with [Selector.Reset] whenever
// the authenticated identity changes (login, logout, account switch),
// because the remote variant caches the resolved user. The next call to
// [Selector.Backend] then re-selects and re-resolves identity.
type Selector struct {
	cfg      *config.Config
	resolver UserResolver
	logger   *logger.Logger

	// constructors are fields so tests can substitute fakes
	newLocal  func(ctx context.Context) (Backend, error)
	newRemote func(ctx context.Context) (Backend, error)

	mu      sync.Mutex
	backend Backend
}

// NewSelector constructs a Selector deciding between the SQLite-backed
// local variant and the Postgres-backed remote variant.
func NewSelector(cfg *config.Config, resolver UserResolver, log *logger.Logger) *Selector {
	return &Selector{
		cfg:      cfg,
		resolver: resolver,
		logger:   log,
		newLocal: func(ctx context.Context) (Backend, error) {
			kv, err := NewSQLiteKV(ctx, cfg.Local, log)
			if err != nil {
				return nil, err
			}
			return NewLocalBackend(kv, log), nil
		},
		newRemote: func(ctx context.Context) (Backend, error) {
			return NewRemoteBackend(ctx, cfg.Remote, resolver, log)
		},
	}
}

// Backend returns the selected backend, constructing it on first use.
func (s *Selector) Backend(ctx context.Context) (Backend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend != nil {
		return s.backend, nil
	}

	var (
		backend Backend
		err     error
	)
	if s.cfg.RemoteConfigured() {
		s.logger.Info().Str("func", "Selector.Backend").Msg("selecting remote backend")
		backend, err = s.newRemote(ctx)
	} else {
		s.logger.Info().Str("func", "Selector.Backend").Msg("selecting local backend")
		backend, err = s.newLocal(ctx)
	}
	if err != nil {
		return nil, err
	}

	s.backend = backend
	return s.backend, nil
}

// Reset discards the memoized backend. The discarded instance is closed
// when it holds resources.
func (s *Selector) Reset() {
	s.mu.Lock()
	backend := s.backend
	s.backend = nil
	s.mu.Unlock()

	if closer, ok := backend.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			s.logger.Err(err).Str("func", "Selector.Reset").Msg("failed to close discarded backend")
		}
	}
}
