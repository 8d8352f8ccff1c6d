// SPDX-License-Identifier: MIT

// Package config assembles the SnapCast runtime configuration from the
// environment, with an optional YAML file overlay.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Size limits enforced at file selection time.
const (
	DefaultMaxVideoBytes     = 500 * 1024 * 1024 // 500 MB
	DefaultMaxThumbnailBytes = 10 * 1024 * 1024  // 10 MB
)

// StreamConfig describes the external stream host (video placeholder
// creation, byte upload, metadata sync, playback embed).
type StreamConfig struct {
	BaseURL      string `yaml:"baseURL"`
	EmbedBaseURL string `yaml:"embedBaseURL"`
	LibraryID    string `yaml:"libraryID"`
	AccessKey    string `yaml:"accessKey"`
}

// StorageConfig describes the external object host for thumbnails.
type StorageConfig struct {
	BaseURL    string `yaml:"baseURL"`
	CDNBaseURL string `yaml:"cdnBaseURL"`
	AccessKey  string `yaml:"accessKey"`
}

// Config is the fully resolved application configuration.
type Config struct {
	ListenAddr string `yaml:"listenAddr"`
	DBPath     string `yaml:"dbPath"`

	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`

	Stream  StreamConfig  `yaml:"stream"`
	Storage StorageConfig `yaml:"storage"`

	MaxVideoBytes     int64 `yaml:"maxVideoBytes"`
	MaxThumbnailBytes int64 `yaml:"maxThumbnailBytes"`

	// Per-user fixed-window limit on metadata commits.
	CommitWindow       time.Duration `yaml:"commitWindow"`
	CommitMaxPerWindow int           `yaml:"commitMaxPerWindow"`

	// Global per-IP request limit applied at the HTTP ingress.
	APIRequestLimit int           `yaml:"apiRequestLimit"`
	APIRequestWindow time.Duration `yaml:"apiRequestWindow"`

	ListCacheTTL time.Duration `yaml:"listCacheTTL"`

	// SessionTokens maps bearer tokens to user IDs. The identity provider
	// itself is external; this is the minimal session contract the service
	// consumes.
	SessionTokens map[string]string `yaml:"sessionTokens"`
}

// FromEnv builds a Config from SNAPCAST_* environment variables.
func FromEnv() Config {
	return Config{
		ListenAddr: ParseString("SNAPCAST_LISTEN_ADDR", ":8080"),
		DBPath:     ParseString("SNAPCAST_DB_PATH", "snapcast.db"),

		RedisAddr:     ParseString("SNAPCAST_REDIS_ADDR", ""),
		RedisPassword: ParseString("SNAPCAST_REDIS_PASSWORD", ""),
		RedisDB:       ParseInt("SNAPCAST_REDIS_DB", 0),

		Stream: StreamConfig{
			BaseURL:      ParseString("SNAPCAST_STREAM_BASE_URL", "https://video.bunnycdn.com/library"),
			EmbedBaseURL: ParseString("SNAPCAST_STREAM_EMBED_URL", "https://iframe.mediadelivery.net/embed"),
			LibraryID:    ParseString("SNAPCAST_STREAM_LIBRARY_ID", ""),
			AccessKey:    ParseString("SNAPCAST_STREAM_ACCESS_KEY", ""),
		},
		Storage: StorageConfig{
			BaseURL:    ParseString("SNAPCAST_STORAGE_BASE_URL", "https://storage.bunnycdn.com/snapcast"),
			CDNBaseURL: ParseString("SNAPCAST_STORAGE_CDN_URL", "https://snapcast.b-cdn.net"),
			AccessKey:  ParseString("SNAPCAST_STORAGE_ACCESS_KEY", ""),
		},

		MaxVideoBytes:     ParseInt64("SNAPCAST_MAX_VIDEO_BYTES", DefaultMaxVideoBytes),
		MaxThumbnailBytes: ParseInt64("SNAPCAST_MAX_THUMBNAIL_BYTES", DefaultMaxThumbnailBytes),

		CommitWindow:       ParseDuration("SNAPCAST_COMMIT_WINDOW", time.Minute),
		CommitMaxPerWindow: ParseInt("SNAPCAST_COMMIT_MAX_PER_WINDOW", 2),

		APIRequestLimit:  ParseInt("SNAPCAST_API_REQUEST_LIMIT", 600),
		APIRequestWindow: ParseDuration("SNAPCAST_API_REQUEST_WINDOW", time.Minute),

		ListCacheTTL: ParseDuration("SNAPCAST_LIST_CACHE_TTL", time.Minute),

		SessionTokens: parseSessionTokens(ParseString("SNAPCAST_SESSION_TOKENS", "")),
	}
}

// parseSessionTokens parses "token=userID,token2=userID2" pairs.
func parseSessionTokens(csv string) map[string]string {
	if csv == "" {
		return nil
	}
	out := make(map[string]string)
	for _, pair := range strings.Split(csv, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, user, ok := strings.Cut(pair, "=")
		if !ok || token == "" || user == "" {
			continue
		}
		out[token] = user
	}
	return out
}

// Validate checks the configuration for values the service cannot run without.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("config: listen address must not be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("config: database path must not be empty")
	}
	if c.Stream.LibraryID == "" {
		return fmt.Errorf("config: stream library ID must not be empty")
	}
	if c.Stream.AccessKey == "" {
		return fmt.Errorf("config: stream access key must not be empty")
	}
	if c.Storage.AccessKey == "" {
		return fmt.Errorf("config: storage access key must not be empty")
	}
	if c.MaxVideoBytes <= 0 || c.MaxThumbnailBytes <= 0 {
		return fmt.Errorf("config: size limits must be positive")
	}
	if c.CommitWindow <= 0 || c.CommitMaxPerWindow <= 0 {
		return fmt.Errorf("config: commit rate limit must be positive")
	}
	return nil
}
