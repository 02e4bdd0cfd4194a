// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package manasink wires the commander-discovery core into a single
// explicitly-constructed application context: configuration, logging,
// the auth session, the backend selector, the card-catalog client and
// the application state store.
//
// A UI runtime constructs one [App] with [New], calls
// [App.Store].Initialize once authentication has settled, and renders
// from the store's snapshot accessors. Identity changes reported
// through the auth session automatically reset the store and the
// backend selection.
package manasink

import (
	"fmt"

	"github.com/tobeck/manasink/internal/app"
	"github.com/tobeck/manasink/internal/auth"
	"github.com/tobeck/manasink/internal/catalog"
	"github.com/tobeck/manasink/internal/config"
	"github.com/tobeck/manasink/internal/logger"
	"github.com/tobeck/manasink/internal/store"
	"github.com/tobeck/manasink/models"
)

// App aggregates the long-lived components of one application instance.
type App struct {
	Config  *config.Config
	Logger  *logger.Logger
	Session *auth.Session
	Store   *app.Store
	Catalog *catalog.Client

	selector    *store.Selector
	unsubscribe func()
}

// New assembles an application context from environment, optional JSON
// file and built-in defaults.
func New() (*App, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig assembles an application context from an already
// validated configuration. Tests and embedders use it to inject their
// own settings.
func NewWithConfig(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}

	log := logger.NewLogger(cfg.App.Role)
	session := auth.NewSession(cfg.Auth, log)
	selector := store.NewSelector(cfg, session, log)
	stateStore := app.NewStore(selector, cfg.App, log)

	// identity transitions invalidate both the in-memory snapshot and
	// the memoized backend, so the next Initialize re-derives everything
	unsubscribe := session.OnChange(func(*models.User) {
		stateStore.Reset()
	})

	return &App{
		Config:      cfg,
		Logger:      log,
		Session:     session,
		Store:       stateStore,
		Catalog:     catalog.NewClient(cfg.Catalog, log),
		selector:    selector,
		unsubscribe: unsubscribe,
	}, nil
}

// Close flushes pending durable writes and releases the active backend.
func (a *App) Close() {
	a.unsubscribe()
	a.Store.Flush()
	a.selector.Reset()
}
