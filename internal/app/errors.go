package app

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	ErrInvalidListenAddr    = errors.New("invalid listen address: expected host:port")
	ErrInvalidServerTimeout = errors.New("invalid server timeout: must be non-negative")
	ErrInvalidBatchSize     = errors.New("invalid max batch size: must be non-negative")
	ErrInvalidTimeout       = errors.New("invalid fetch timeout: must be positive")
	ErrInvalidRedirects     = errors.New("invalid redirect cap: must be non-negative")
	ErrInvalidMaxBodySize   = errors.New("invalid max body size: must be non-negative")
	ErrInvalidMaxCandidates = errors.New("invalid max candidates: must be non-negative")
	ErrInvalidConcurrency   = errors.New("invalid max concurrency: must be non-negative")
	ErrInvalidCache         = errors.New("invalid cache: max_bytes must be positive and ttl non-negative")
	ErrInvalidStoreBackend  = errors.New("invalid store backend: use none, dir or sqlite")
	ErrMissingStorePath     = errors.New("store backend requires a path")

	// ErrConfigNotFound is returned when an explicitly named config file
	// does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
