package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/raysh454/favicond/internal/logging"
	"github.com/raysh454/favicond/internal/mimetype"
	"github.com/raysh454/favicond/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

// OpenSQLite opens (creating if needed) the database at path with a single
// connection, WAL journaling and a busy timeout.
func OpenSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure db dir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// SQLiteStore keeps one row per site. Saving a site again replaces the
// favicon but keeps the row id.
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Logger
}

// NewSQLiteStore runs migrations from schema.sql against db.
func NewSQLiteStore(db *sql.DB, logger logging.Logger) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger.With(logging.Field{Key: "store", Value: "sqlite"})}, nil
}

// Save upserts fav and returns its row id as "sqlite:<id>".
func (s *SQLiteStore) Save(ctx context.Context, fav *model.Favicon) (string, error) {
	if fav == nil {
		return "", fmt.Errorf("nil favicon")
	}
	fetched := fav.FetchedAt
	if fetched.IsZero() {
		fetched = time.Now()
	}
	data := fav.Data
	if data == nil {
		data = []byte{}
	}

	var id string
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO favicons (id, site, source_url, mime, data, size, fetched_at, stored_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(site) DO UPDATE SET
             source_url = excluded.source_url,
             mime       = excluded.mime,
             data       = excluded.data,
             size       = excluded.size,
             fetched_at = excluded.fetched_at,
             stored_at  = excluded.stored_at
         RETURNING id`,
		uuid.New().String(), fav.Site, fav.SourceURL, fav.Mime.String(), data, len(data),
		fetched.UnixNano(), time.Now().UnixNano(),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert favicon %s: %w", fav.Site, err)
	}

	s.logger.Debug("saved favicon",
		logging.Field{Key: "site", Value: fav.Site},
		logging.Field{Key: "id", Value: id})
	return "sqlite:" + id, nil
}

// Get returns the stored favicon of site.
func (s *SQLiteStore) Get(ctx context.Context, site string) (*model.Favicon, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT site, source_url, mime, data, fetched_at
         FROM favicons
         WHERE site = ?
         LIMIT 1`,
		site,
	)

	var fav model.Favicon
	var mime string
	var fetched int64
	if err := row.Scan(&fav.Site, &fav.SourceURL, &mime, &fav.Data, &fetched); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", site, ErrNotStored)
		}
		return nil, fmt.Errorf("query favicon %s: %w", site, err)
	}
	fav.Mime = mimetype.Classify(mime)
	fav.FetchedAt = time.Unix(0, fetched).UTC()
	return &fav, nil
}

// List returns stored favicons, most recently stored first. limit <= 0
// means all.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, site, source_url, mime, size, fetched_at
         FROM favicons
         ORDER BY stored_at DESC
         LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list favicons: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var mime string
		var fetched int64
		if err := rows.Scan(&r.ID, &r.Site, &r.SourceURL, &mime, &r.Size, &fetched); err != nil {
			return nil, fmt.Errorf("scan favicon: %w", err)
		}
		r.Mime = mimetype.Classify(mime)
		r.FetchedAt = time.Unix(0, fetched).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
