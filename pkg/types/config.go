// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for requests to the directory.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "sparos/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// DirectoryConfig holds settings for the Bungie.net directory gateway.
type DirectoryConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIBase is the platform root, e.g. "https://www.bungie.net/Platform".
	APIBase string `json:"api_base" yaml:"api_base"`

	// APIKey is sent in the X-API-Key header on every request.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// ResolverConfig holds settings for the user resolver and backup search.
type ResolverConfig struct {
	// MaxPages caps backup search pagination (default 100).
	MaxPages int `json:"max_pages" yaml:"max_pages"`
}

// StoreConfig holds settings for the persisted job record.
type StoreConfig struct {
	// StateDir is the directory holding the job database (default ".sparos").
	StateDir string `json:"state_dir" yaml:"state_dir"`
}

// Config groups all settings loaded from sparos.yaml, SPAROS_* variables,
// and flags.
type Config struct {
	Directory DirectoryConfig `json:"directory" yaml:"directory"`
	Resolver  ResolverConfig  `json:"resolver" yaml:"resolver"`
	Store     StoreConfig     `json:"store" yaml:"store"`
}

// Defaults used when a setting is absent.
const (
	DefaultAPIBase   = "https://www.bungie.net/Platform"
	DefaultTimeout   = 15 * time.Second
	DefaultUserAgent = "sparos/0.1"
	DefaultMaxPages  = 100
	DefaultStateDir  = ".sparos"
)
