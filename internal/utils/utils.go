package utils

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

// ErrInvalidIdentifier is returned when a site identifier cannot be turned
// into a well-formed URL.
var ErrInvalidIdentifier = errors.New("invalid site identifier")

const (
	wwwPrefix     = "www."
	defaultScheme = "https://"
)

// ResolveSiteURL turns a site identifier (bare host or URL) into the origin
// URL that should be fetched.
//
// Examples:
//
//	"example.com"              -> https://www.example.com
//	"https://example.com/a"    -> https://www.example.com/a
//	"www.example.com"          -> https://www.example.com
//	"https://www.example.com"  -> https://www.example.com
//	"Bücher.example"           -> https://www.xn--bcher-kva.example
//
// Most sites redirect bare domains to www, so prefixing saves a round trip;
// the fetch step still follows redirects when a site does the opposite.
func ResolveSiteURL(identifier string) (*url.URL, error) {
	raw := strings.TrimSpace(identifier)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty identifier", ErrInvalidIdentifier)
	}

	if strings.HasPrefix(raw, wwwPrefix) {
		raw = defaultScheme + raw
	} else {
		rest := strings.TrimPrefix(raw, "https://")
		rest = strings.TrimPrefix(rest, "http://")
		if !strings.HasPrefix(rest, wwwPrefix) {
			rest = wwwPrefix + rest
		}
		raw = defaultScheme + rest
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidIdentifier, identifier, err)
	}
	if bare := strings.TrimPrefix(u.Hostname(), wwwPrefix); bare == "" || bare == "." {
		return nil, fmt.Errorf("%w %q: missing host", ErrInvalidIdentifier, identifier)
	}

	host := strings.ToLower(u.Hostname())
	if puny, err := idna.Lookup.ToASCII(host); err == nil {
		host = puny
	}
	if port := u.Port(); port != "" {
		u.Host = net.JoinHostPort(host, port)
	} else {
		u.Host = host
	}
	u.Fragment = ""

	return u, nil
}

// ResolveReference resolves href against base. Surrounding whitespace is
// ignored, as browsers do.
func ResolveReference(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("parse href %q: %w", href, err)
	}
	if base == nil {
		if !ref.IsAbs() {
			return "", fmt.Errorf("relative href %q without base", href)
		}
		return ref.String(), nil
	}
	return base.ResolveReference(ref).String(), nil
}

const maxFilenameBytes = 255

// windowsReserved are device names that cannot be used as file names on
// Windows, with or without an extension.
var windowsReserved = map[string]struct{}{
	"con": {}, "prn": {}, "aux": {}, "nul": {},
	"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {}, "com6": {}, "com7": {}, "com8": {}, "com9": {},
	"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {}, "lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
}

// SanitizeFilename turns a site identifier into a portable file name stem.
// The scheme is dropped and characters that are illegal on common
// filesystems are removed.
//
// Examples:
//
//	"https://example.com"      -> "example.com"
//	"example.com/a/b?x=1"      -> "example.comabx=1"
//	"http://host:8080"         -> "host8080"
//	"con"                      -> "_con"
func SanitizeFilename(site string) string {
	s := strings.ReplaceAll(site, "https://", "")
	s = strings.ReplaceAll(s, "http://", "")

	var b strings.Builder
	for _, r := range s {
		switch {
		case r < 0x20 || r == 0x7f:
		case strings.ContainsRune(`/\?<>:*|"`, r):
		default:
			b.WriteRune(r)
		}
	}
	out := strings.TrimRight(b.String(), ". ")

	if out == "" || out == "." || out == ".." {
		return "_"
	}
	stem, _, _ := strings.Cut(out, ".")
	if _, reserved := windowsReserved[strings.ToLower(stem)]; reserved {
		out = "_" + out
	}
	return truncateUTF8(out, maxFilenameBytes)
}

func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
