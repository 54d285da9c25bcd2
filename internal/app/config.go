package app

import (
	"fmt"
	"net"
	"path/filepath"
	"time"

	"github.com/raysh454/favicond/internal/batch"
	"github.com/raysh454/favicond/internal/cache"
	"github.com/raysh454/favicond/internal/favicon"
	"github.com/raysh454/favicond/internal/logging"
	"github.com/raysh454/favicond/internal/store"
	"github.com/raysh454/favicond/internal/webclient"
)

// DefaultListenAddr is where the HTTP service listens unless configured.
const DefaultListenAddr = ":3000"

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
	ListenAddr      string        `yaml:"listen_addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBatchSize rejects larger requests with 413. Zero means no limit.
	MaxBatchSize int `yaml:"max_batch_size"`

	// AllowedOrigin is sent as Access-Control-Allow-Origin.
	AllowedOrigin string `yaml:"allowed_origin"`
}

// Config contains the runtime configuration of every component. Each
// section is the owning package's own Config type.
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	WebClient webclient.Config `yaml:"webclient"`
	Favicon   favicon.Config   `yaml:"favicon"`
	Batch     batch.Config     `yaml:"batch"`
	Cache     cache.Config     `yaml:"cache"`
	Store     store.Config     `yaml:"store"`
	Logging   logging.Config   `yaml:"logging"`
}

// DefaultConfig returns a Config populated with the service defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:      DefaultListenAddr,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    5 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
			MaxBatchSize:    500,
			AllowedOrigin:   "*",
		},
		WebClient: webclient.DefaultConfig(),
		Favicon:   favicon.DefaultConfig(),
		Batch:     batch.Config{MaxConcurrency: 0},
		Cache:     cache.DefaultConfig(),
		Store: store.Config{
			Backend:    store.BackendNone,
			Dir:        filepath.Join(DataDir(), "favicons"),
			SQLitePath: filepath.Join(DataDir(), "favicond.db"),
		},
		Logging: logging.DefaultConfig(),
	}
}

// Validate checks the configuration and returns the first problem found.
// The returned error wraps one of the sentinel errors in errors.go.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return ErrInvalidListenAddr
	}
	if _, _, err := net.SplitHostPort(c.Server.ListenAddr); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidListenAddr, err)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return ErrInvalidServerTimeout
	}
	if c.Server.MaxBatchSize < 0 {
		return ErrInvalidBatchSize
	}
	if c.WebClient.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.WebClient.MaxRedirects < 0 {
		return ErrInvalidRedirects
	}
	if c.WebClient.MaxBodyBytes < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.Favicon.MaxCandidates < 0 {
		return ErrInvalidMaxCandidates
	}
	if c.Batch.MaxConcurrency < 0 {
		return ErrInvalidConcurrency
	}
	if c.Cache.Enabled && (c.Cache.MaxBytes <= 0 || c.Cache.TTL < 0) {
		return ErrInvalidCache
	}
	switch c.Store.Backend {
	case "", store.BackendNone:
	case store.BackendDir:
		if c.Store.Dir == "" {
			return ErrMissingStorePath
		}
	case store.BackendSQLite:
		if c.Store.SQLitePath == "" {
			return ErrMissingStorePath
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStoreBackend, c.Store.Backend)
	}
	return nil
}
