// Package config provides configuration loading, merging, and validation
// facilities for the manasink core.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources fill only fields still unset):
//  1. Environment variables
//  2. JSON config file (path taken from the CONFIG environment variable)
//  3. Built-in defaults
//
// The main entry point is [GetConfig]. Whether the remote persistence
// backend is used at all is decided by [Config.RemoteConfigured].
package config
