// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"net/url"
	"time"
)

// Config is the top-level configuration container for the manasink core.
// It aggregates all sub-configurations and is populated by merging values
// from environment variables, an optional JSON file, and built-in defaults.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type Config struct {
	// App holds application-level settings such as the notification
	// lifetime and the log role label.
	App App `envPrefix:"APP_"`

	// Remote holds the remote (Postgres) persistence settings. When this
	// section is present and well-formed the backend selector picks the
	// remote variant; otherwise the local variant is used.
	Remote Remote `envPrefix:"REMOTE_"`

	// Local holds the on-device (SQLite) persistence settings.
	Local Local `envPrefix:"LOCAL_"`

	// Catalog holds settings for the external card-catalog client.
	Catalog Catalog `envPrefix:"CATALOG_"`

	// Auth holds token verification settings for the auth session.
	Auth Auth `envPrefix:"AUTH_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables.
	// Populated via the CONFIG environment variable.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level settings of the state store.
type App struct {
	// NotificationTTL is how long a notification stays visible before it
	// auto-expires. Env: APP_NOTIFICATION_TTL
	NotificationTTL time.Duration `env:"NOTIFICATION_TTL"`

	// Role is the label attached to every log entry produced by the
	// library. Env: APP_ROLE
	Role string `env:"ROLE"`
}

// Remote holds the remote relational store settings.
type Remote struct {
	// DatabaseURI is the Postgres connection string scoped to the
	// project's data store. Leaving it empty keeps the library on the
	// local backend. Env: REMOTE_DATABASE_URI
	DatabaseURI string `env:"DATABASE_URI"`
}

// Local holds the on-device key-value store settings.
type Local struct {
	// DBPath is the SQLite database file path. Env: LOCAL_DB_PATH
	DBPath string `env:"DB_PATH"`

	// QuotaBytes caps the total size of stored values. Zero means no
	// quota. Env: LOCAL_QUOTA_BYTES
	QuotaBytes int64 `env:"QUOTA_BYTES"`
}

// Catalog holds the card-catalog client settings.
type Catalog struct {
	// BaseURL is the catalog API root. Env: CATALOG_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// RequestInterval is the minimum spacing between catalog requests.
	// Env: CATALOG_REQUEST_INTERVAL
	RequestInterval time.Duration `env:"REQUEST_INTERVAL"`
}

// Auth holds verification settings for identity-provider tokens.
type Auth struct {
	// TokenSignKey is the secret key used to verify token signatures.
	// Must be kept confidential. Env: AUTH_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the expected "iss" claim of accepted tokens.
	// Env: AUTH_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`
}

// RemoteConfigured reports whether the remote section is present and
// well-formed. The check is purely structural; reachability of the
// database is established later, when the backend connects.
func (cfg *Config) RemoteConfigured() bool {
	if cfg.Remote.DatabaseURI == "" {
		return false
	}
	u, err := url.Parse(cfg.Remote.DatabaseURI)
	if err != nil {
		return false
	}
	return u.Scheme == "postgres" || u.Scheme == "postgresql"
}

// GetConfig assembles the final configuration from environment variables,
// an optional JSON file, and built-in defaults, then validates it.
func GetConfig() (*Config, error) {
	return newConfigBuilder().
		withEnv().
		withJSON().
		withDefaults().
		build()
}
