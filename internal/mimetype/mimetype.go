// Package mimetype classifies favicon content types into a closed set of
// image kinds with an Unknown fallback that keeps the original string.
package mimetype

// Content types recognized by Classify. Matching is exact and case-sensitive.
const (
	ContentTypePNG     = "image/png"
	ContentTypeSVG     = "image/svg+xml"
	ContentTypeXIcon   = "image/x-icon"
	ContentTypeMSIcon  = "image/vnd.microsoft.icon"
	ContentTypeGIF     = "image/gif"
	ContentTypeJPEG    = "image/jpeg"
	ContentTypeWEBP    = "image/webp"
	contentTypeUnknown = ""
)

type code uint8

const (
	codeUnknown code = iota
	codePNG
	codeSVG
	codeICO
	codeGIF
	codeJPEG
	codeWEBP
)

// Kind is the image kind of a resolved favicon. Values are comparable, so
// callers can write k == mimetype.PNG. The zero value is Unknown("").
type Kind struct {
	code code
	raw  string
}

// Known kinds.
var (
	PNG  = Kind{code: codePNG}
	SVG  = Kind{code: codeSVG}
	ICO  = Kind{code: codeICO}
	GIF  = Kind{code: codeGIF}
	JPEG = Kind{code: codeJPEG}
	WEBP = Kind{code: codeWEBP}
)

// Unknown wraps a content type outside the closed set.
func Unknown(raw string) Kind {
	return Kind{code: codeUnknown, raw: raw}
}

// Classify maps a declared content type to a Kind. It does no normalization:
// "IMAGE/PNG" and "image/png; charset=x" are both Unknown.
func Classify(raw string) Kind {
	switch raw {
	case ContentTypePNG:
		return PNG
	case ContentTypeSVG:
		return SVG
	case ContentTypeXIcon, ContentTypeMSIcon:
		return ICO
	case ContentTypeGIF:
		return GIF
	case ContentTypeJPEG:
		return JPEG
	case ContentTypeWEBP:
		return WEBP
	default:
		return Unknown(raw)
	}
}

// Known reports whether k is one of the closed-set kinds.
func (k Kind) Known() bool {
	return k.code != codeUnknown
}

// Raw returns the unrecognized content type of an Unknown kind, or "" for
// known kinds.
func (k Kind) Raw() string {
	return k.raw
}

// String returns the canonical content type. Both ICO aliases render as
// image/x-icon; Unknown renders its raw string.
func (k Kind) String() string {
	switch k.code {
	case codePNG:
		return ContentTypePNG
	case codeSVG:
		return ContentTypeSVG
	case codeICO:
		return ContentTypeXIcon
	case codeGIF:
		return ContentTypeGIF
	case codeJPEG:
		return ContentTypeJPEG
	case codeWEBP:
		return ContentTypeWEBP
	case codeUnknown:
		return k.raw
	}
	return contentTypeUnknown
}

// Extension is the file extension used when persisting a favicon of this
// kind: ".svg" for SVG and ".png" for everything else.
func (k Kind) Extension() string {
	if k.code == codeSVG {
		return ".svg"
	}
	return ".png"
}

// MarshalText renders the content type, so Kind encodes as a JSON string.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText classifies the text.
func (k *Kind) UnmarshalText(text []byte) error {
	*k = Classify(string(text))
	return nil
}
