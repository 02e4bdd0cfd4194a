package config

import "errors"

// Validation errors returned by [Config.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidLocalConfigs indicates invalid local storage settings
	// (for example, an empty database path or a negative quota).
	ErrInvalidLocalConfigs = errors.New("invalid local storage configuration")
	// ErrInvalidRemoteConfigs indicates a remote database URI that is
	// present but not a parseable postgres connection string.
	ErrInvalidRemoteConfigs = errors.New("invalid remote storage configuration")
	// ErrInvalidCatalogConfigs indicates invalid card-catalog settings
	// (for example, an empty base URL or zero request interval).
	ErrInvalidCatalogConfigs = errors.New("invalid catalog configuration")
	// ErrInvalidAppConfigs indicates invalid application-level settings
	// (for example, a non-positive notification lifetime).
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
)
