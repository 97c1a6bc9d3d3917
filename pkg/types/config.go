package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "zenodo-fetch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// APIConfig holds settings for the Zenodo REST and OAI-PMH clients.
type APIConfig struct {
	HTTPConfig `yaml:",inline"`

	// PageSize is the number of hits requested per result page
	// (default 100).
	PageSize int `json:"page_size" yaml:"page_size"`

	// MaxRetries bounds the retry attempts on rate-limited requests
	// (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// DownloadConfig holds settings for deposit downloads.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline"`

	// PreferGithub selects the linked GitHub release over Zenodo's own
	// file storage when one is available (default true).
	PreferGithub bool `json:"prefer_github" yaml:"prefer_github"`

	// Unwrap flattens a single wrapping top-level directory after
	// unpacking (default true).
	Unwrap bool `json:"unwrap" yaml:"unwrap"`
}

// CatalogConfig holds settings for the local deposit catalog.
type CatalogConfig struct {
	// Dir is the directory holding the catalog database
	// (contains catalog.db).
	Dir string `json:"dir" yaml:"dir"`
}
