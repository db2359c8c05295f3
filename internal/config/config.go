// Package config loads the JSON configuration spec.md §6.6 adds:
// hostname, listen port, TLS material, database path, policy pattern
// lists, and connection limits.
//
// Grounded on the teacher's internal/config/config.go (MainConfig/
// ServerConfig shape, sensible-defaults constructor), trimmed of the
// teacher's multi-provider NNTP-client-fetching configuration (out of
// scope per spec.md's peering Non-goal) and its web-template settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const (
	// DefaultMaxArticleSize mirrors the teacher's 32KB default.
	DefaultMaxArticleSize = 32 * 1024
	DefaultMaxConns       = 500
	DefaultReadTimeout    = 60 * time.Second
)

// MainConfig is the top-level configuration for postus-server.
type MainConfig struct {
	AppVersion string         `json:"app_version"`
	Server     ServerConfig   `json:"server"`
	Database   DatabaseConfig `json:"database"`
	Identity   IdentityConfig `json:"identity"`
	Policy     PolicyConfig   `json:"policy"`
	Status     StatusConfig   `json:"status"`
}

// ServerConfig holds the NNTP listener configuration.
type ServerConfig struct {
	Hostname   string `json:"hostname"` // used for Path headers and synthesized Message-IDs
	Port       int    `json:"port"`
	TLSPort    int    `json:"tls_port"`
	TLSCert    string `json:"tls_cert"`
	TLSKey     string `json:"tls_key"`
	MaxConns   int    `json:"max_connections"`
	MaxArtSize int    `json:"max_article_size"`
}

// DatabaseConfig selects and configures the store.Store backend.
type DatabaseConfig struct {
	Driver string `json:"driver"` // "memory" or "sqlite"
	Path   string `json:"path"`   // sqlite file path, ignored for "memory"
}

// IdentityConfig configures the bcryptidentity backend.
type IdentityConfig struct {
	Path string `json:"path"` // sqlite file path for the nntp_users table
}

// PolicyConfig is the declarative source for patternpolicy.New.
type PolicyConfig struct {
	Send            []string `json:"send"`
	Exclude         []string `json:"exclude"`
	Reject          []string `json:"reject"`
	PostingSubjects []string `json:"posting_subjects"`
	IHaveSubjects   []string `json:"ihave_subjects"`
}

// StatusConfig configures the optional postus-statusd HTTP surface.
type StatusConfig struct {
	Enabled    bool   `json:"enabled"`
	ListenAddr string `json:"listen_addr"`
}

// NewDefaultConfig returns a configuration with sensible defaults,
// mirroring the teacher's NewDefaultConfig.
func NewDefaultConfig() *MainConfig {
	return &MainConfig{
		Server: ServerConfig{
			Port:       1119,
			MaxConns:   DefaultMaxConns,
			MaxArtSize: DefaultMaxArticleSize,
		},
		Database: DatabaseConfig{
			Driver: "memory",
			Path:   "data/postus.sq3",
		},
		Identity: IdentityConfig{
			Path: "data/postus-users.sq3",
		},
		Status: StatusConfig{
			Enabled:    false,
			ListenAddr: ":8780",
		},
	}
}

// Load reads path as JSON over NewDefaultConfig's defaults. A missing
// file is not an error: the caller gets the defaults.
func Load(path string) (*MainConfig, error) {
	cfg := NewDefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
