// Package config loads runtime configuration for the registry CLI.
//
// Sources and precedence:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
package config

import "time"

// Upload modes. "api" goes through the registry's multipart endpoints,
// "s3" writes straight to the bucket with static credentials.
const (
	UploadModeAPI = "api"
	UploadModeS3  = "s3"
)

// Config holds runtime settings for the registry CLI.
type Config struct {
	// ServerBaseURL is the root of the registry API, e.g.
	// "https://registro.example.com".
	ServerBaseURL string
	// DatabasePath is where the local SQLite database lives.
	DatabasePath string
	// OnlineCheckInterval is how often the client probes server reachability.
	OnlineCheckInterval time.Duration
	// ReconnectDebounce is how long connectivity must hold after a
	// reconnect before a sync is triggered.
	ReconnectDebounce time.Duration
	// MaxItemRetries bounds how many times a failed queue item is retried
	// before it needs a manual retry.
	MaxItemRetries int
	// UploadMode selects the attachment upload path: UploadModeAPI or
	// UploadModeS3.
	UploadMode string

	// Direct-to-bucket upload settings, used only when UploadMode is "s3".
	S3Region        string
	S3Bucket        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:3000"
	c.DatabasePath = "registro.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.ReconnectDebounce = 1 * time.Second
	c.MaxItemRetries = 3
	c.UploadMode = UploadModeAPI
	c.S3Region = "us-east-1"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
