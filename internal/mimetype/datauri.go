package mimetype

import (
	"encoding/base64"
	"strings"
)

// DataURI encodes data as a data URI of kind k. Binary kinds are base64
// encoded; SVG is embedded as UTF-8 text with invalid sequences replaced.
// It returns false for Unknown kinds, which have no trustworthy type.
func DataURI(k Kind, data []byte) (string, bool) {
	switch k.code {
	case codeSVG:
		return "data:" + ContentTypeSVG + ";utf8," + strings.ToValidUTF8(string(data), "�"), true
	case codePNG, codeICO, codeGIF, codeJPEG, codeWEBP:
		return "data:" + k.String() + ";base64," + base64.StdEncoding.EncodeToString(data), true
	case codeUnknown:
		return "", false
	}
	return "", false
}
