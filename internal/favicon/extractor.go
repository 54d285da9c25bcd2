package favicon

import (
	"bytes"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/raysh454/favicond/internal/mimetype"
	"github.com/raysh454/favicond/internal/model"
	"github.com/raysh454/favicond/internal/utils"
)

const (
	svgIconSelector   = `link[rel~="icon"][type="image/svg+xml"]`
	iconSelector      = `link[rel~="icon"]` // also matches rel="shortcut icon"
	appleIconSelector = `link[rel~="apple-touch-icon"]`

	// svgSize ranks scalable icons above any raster size.
	svgSize = math.MaxUint32
)

// ExtractFunc turns an HTML document into ranked icon candidates.
type ExtractFunc func(doc []byte, base *url.URL) []model.CandidateIcon

// ExtractCandidates finds icon <link> elements in doc and ranks them by
// declared size, largest first. SVG icons always rank first. Hrefs are
// resolved against base; links without a usable href are skipped.
func ExtractCandidates(doc []byte, base *url.URL) []model.CandidateIcon {
	root, err := goquery.NewDocumentFromReader(bytes.NewReader(doc))
	if err != nil {
		return nil
	}

	var out []model.CandidateIcon
	seen := map[*html.Node]struct{}{}

	add := func(s *goquery.Selection, size uint32, mime string) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		resolved, err := utils.ResolveReference(base, href)
		if err != nil {
			return
		}
		out = append(out, model.CandidateIcon{URL: resolved, DeclaredSize: size, MimeHint: mime})
	}

	root.Find(svgIconSelector).Each(func(_ int, s *goquery.Selection) {
		seen[s.Nodes[0]] = struct{}{}
		add(s, svgSize, mimetype.ContentTypeSVG)
	})

	root.Find(iconSelector).Each(func(_ int, s *goquery.Selection) {
		if _, dup := seen[s.Nodes[0]]; dup {
			return
		}
		mime := mimetype.ContentTypeXIcon
		if t, ok := s.Attr("type"); ok {
			mime = t
		}
		add(s, parseSize(s.AttrOr("sizes", "")), mime)
	})

	root.Find(appleIconSelector).Each(func(_ int, s *goquery.Selection) {
		add(s, parseSize(s.AttrOr("sizes", "")), mimetype.ContentTypePNG)
	})

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DeclaredSize > out[j].DeclaredSize
	})
	return out
}

// parseSize reads the width of a sizes attribute such as "32x32". Only the
// text before the first 'x' counts; "any" and malformed values are 0.
func parseSize(sizes string) uint32 {
	width, _, _ := strings.Cut(sizes, "x")
	n, err := strconv.ParseUint(width, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}
