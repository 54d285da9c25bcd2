package model

import (
	"time"

	"github.com/raysh454/favicond/internal/mimetype"
)

// CandidateIcon is an icon location declared by a <link> element.
// DeclaredSize is the leading number of the sizes attribute, 0 when absent
// or unparsable, and math.MaxUint32 for SVG icons.
type CandidateIcon struct {
	URL          string `json:"url"`
	DeclaredSize uint32 `json:"declared_size"`
	MimeHint     string `json:"mime_hint"`
}

// Favicon is a retrieved icon. Data is passed through unmodified.
type Favicon struct {
	// Site is the identifier the caller asked for.
	Site string `json:"site"`

	// SourceURL is the URL the bytes were fetched from.
	SourceURL string `json:"source_url"`

	Data      []byte        `json:"-"`
	Mime      mimetype.Kind `json:"mime"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// Size returns the payload length in bytes.
func (f *Favicon) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Data)
}
