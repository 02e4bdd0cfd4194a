// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

// validate checks that the final merged [Config] satisfies all invariants
// before it is used at startup.
//
// Returns nil if the configuration is valid, or a sentinel error otherwise.
func (cfg *Config) validate() error {
	if cfg.Local.DBPath == "" || cfg.Local.QuotaBytes < 0 {
		return ErrInvalidLocalConfigs
	}

	if cfg.Remote.DatabaseURI != "" && !cfg.RemoteConfigured() {
		return ErrInvalidRemoteConfigs
	}

	if cfg.Catalog.BaseURL == "" || cfg.Catalog.RequestInterval <= 0 {
		return ErrInvalidCatalogConfigs
	}

	if cfg.App.NotificationTTL <= 0 {
		return ErrInvalidAppConfigs
	}

	return nil
}
