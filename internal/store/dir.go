package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/raysh454/favicond/internal/logging"
	"github.com/raysh454/favicond/internal/mimetype"
	"github.com/raysh454/favicond/internal/model"
	"github.com/raysh454/favicond/internal/utils"
)

// DirStore writes favicons as files under a root directory:
//
//	root/
//	  example.com.png
//	  github.com.svg
//
// Saving a site again replaces its file, including one with the other
// extension.
type DirStore struct {
	root   string
	logger logging.Logger
}

func NewDirStore(root string, logger logging.Logger) (*DirStore, error) {
	if root == "" {
		return nil, fmt.Errorf("store dir is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("ensure store dir %s: %w", root, err)
	}
	return &DirStore{root: root, logger: logger.With(logging.Field{Key: "store", Value: "dir"})}, nil
}

// Root returns the output directory.
func (d *DirStore) Root() string { return d.root }

func (d *DirStore) Save(ctx context.Context, fav *model.Favicon) (string, error) {
	if fav == nil {
		return "", fmt.Errorf("nil favicon")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stem := utils.SanitizeFilename(fav.Site)
	path := filepath.Join(d.root, EntryName(fav))

	tmp, err := os.CreateTemp(d.root, "."+stem+"-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(fav.Data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("rename %s: %w", path, err)
	}

	for _, ext := range []string{".svg", ".png"} {
		if other := filepath.Join(d.root, stem+ext); other != path {
			_ = os.Remove(other)
		}
	}

	d.logger.Debug("saved favicon",
		logging.Field{Key: "site", Value: fav.Site},
		logging.Field{Key: "path", Value: path})
	return path, nil
}

// Get reads the file saved for site. The kind is inferred from the
// extension, so non-SVG favicons come back as PNG.
func (d *DirStore) Get(_ context.Context, site string) (*model.Favicon, error) {
	stem := utils.SanitizeFilename(site)
	for _, ext := range []string{".svg", ".png"} {
		path := filepath.Join(d.root, stem+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		return &model.Favicon{
			Site:      site,
			Data:      data,
			Mime:      kindForExt(ext),
			FetchedAt: info.ModTime().UTC(),
		}, nil
	}
	return nil, fmt.Errorf("%s: %w", site, ErrNotStored)
}

// List returns stored files, newest first. limit <= 0 means all.
func (d *DirStore) List(_ context.Context, limit int) ([]Record, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}

	var out []Record
	for _, e := range entries {
		name := e.Name()
		ext := filepath.Ext(name)
		if e.IsDir() || strings.HasPrefix(name, ".") || (ext != ".svg" && ext != ".png") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Record{
			ID:        name,
			Site:      strings.TrimSuffix(name, ext),
			Mime:      kindForExt(ext),
			Size:      int(info.Size()),
			FetchedAt: info.ModTime().UTC(),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].FetchedAt.After(out[j].FetchedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (d *DirStore) Close() error { return nil }

func kindForExt(ext string) mimetype.Kind {
	if ext == ".svg" {
		return mimetype.SVG
	}
	return mimetype.PNG
}
