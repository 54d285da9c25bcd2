// Package store persists resolved favicons. Backends share the file naming
// of EntryName so that a directory, a zip archive and the database agree on
// what a site's favicon is called.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raysh454/favicond/internal/logging"
	"github.com/raysh454/favicond/internal/mimetype"
	"github.com/raysh454/favicond/internal/model"
	"github.com/raysh454/favicond/internal/utils"
)

var (
	// ErrNotStored is returned by Get for a site that was never saved.
	ErrNotStored = errors.New("favicon not stored")

	// ErrUnknownBackend is returned by Open for an unrecognized backend.
	ErrUnknownBackend = errors.New("unknown store backend")
)

// Store saves a favicon and returns where it was written.
type Store interface {
	Save(ctx context.Context, fav *model.Favicon) (string, error)
}

// Reader reads favicons back.
type Reader interface {
	Get(ctx context.Context, site string) (*model.Favicon, error)
	List(ctx context.Context, limit int) ([]Record, error)
}

// Record describes a stored favicon without its bytes.
type Record struct {
	ID        string        `json:"id"`
	Site      string        `json:"site"`
	SourceURL string        `json:"source_url,omitempty"`
	Mime      mimetype.Kind `json:"mime"`
	Size      int           `json:"size"`
	FetchedAt time.Time     `json:"fetched_at"`
}

type Backend string

const (
	BackendNone   Backend = "none"
	BackendDir    Backend = "dir"
	BackendSQLite Backend = "sqlite"
)

type Config struct {
	Backend Backend `yaml:"backend"`

	// Dir is the output directory of the dir backend.
	Dir string `yaml:"dir"`

	// SQLitePath is the database file of the sqlite backend.
	SQLitePath string `yaml:"sqlite_path"`
}

// Persistent is a Store that can also be read back and closed.
type Persistent interface {
	Store
	Reader
	Close() error
}

// Open builds the configured backend. BackendNone returns a nil Persistent
// and no error.
func Open(cfg Config, logger logging.Logger) (Persistent, error) {
	switch cfg.Backend {
	case BackendNone, "":
		return nil, nil
	case BackendDir:
		s, err := NewDirStore(cfg.Dir, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendSQLite:
		db, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		s, err := NewSQLiteStore(db, logger)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// EntryName is the file name used for a favicon: the sanitized site plus
// the extension of its kind.
func EntryName(fav *model.Favicon) string {
	return utils.SanitizeFilename(fav.Site) + fav.Mime.Extension()
}
