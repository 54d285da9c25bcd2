package store

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/raysh454/favicond/internal/model"
)

// WriteZip writes favicons into a zip archive in input order. Entry names
// follow EntryName; a repeated name gets a -2, -3, ... suffix.
func WriteZip(w io.Writer, favicons []*model.Favicon) error {
	zw := zip.NewWriter(w)
	used := map[string]int{}

	for _, fav := range favicons {
		if fav == nil {
			continue
		}
		name := uniqueName(EntryName(fav), used)

		hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
		if !fav.FetchedAt.IsZero() {
			hdr.Modified = fav.FetchedAt
		}
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("create zip entry %s: %w", name, err)
		}
		if _, err := fw.Write(fav.Data); err != nil {
			return fmt.Errorf("write zip entry %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish zip: %w", err)
	}
	return nil
}

func uniqueName(name string, used map[string]int) string {
	used[name]++
	n := used[name]
	if n == 1 {
		return name
	}
	ext := path.Ext(name)
	candidate := strings.TrimSuffix(name, ext) + "-" + strconv.Itoa(n) + ext
	// A site may sanitize to a name that already carries a suffix.
	for used[candidate] > 0 {
		n++
		candidate = strings.TrimSuffix(name, ext) + "-" + strconv.Itoa(n) + ext
	}
	used[name] = n
	used[candidate]++
	return candidate
}
