package favicon_test

import (
	"math"
	"net/url"
	"testing"

	"github.com/raysh454/favicond/internal/favicon"
	"github.com/raysh454/favicond/internal/model"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func TestExtractCandidates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want []model.CandidateIcon
	}{
		{
			name: "no links",
			html: `<html><head><title>x</title></head></html>`,
			want: nil,
		},
		{
			name: "svg ranks above larger raster",
			html: `<head>
<link rel="icon" sizes="512x512" href="/big.png" type="image/png">
<link rel="icon" type="image/svg+xml" href="/icon.svg">
</head>`,
			want: []model.CandidateIcon{
				{URL: "https://www.example.com/icon.svg", DeclaredSize: math.MaxUint32, MimeHint: "image/svg+xml"},
				{URL: "https://www.example.com/big.png", DeclaredSize: 512, MimeHint: "image/png"},
			},
		},
		{
			name: "sizes descending and type default",
			html: `<head>
<link rel="icon" sizes="16x16" href="/16.ico">
<link rel="shortcut icon" sizes="32x32" href="/32.ico">
<link rel="icon" sizes="any" href="/any.ico">
</head>`,
			want: []model.CandidateIcon{
				{URL: "https://www.example.com/32.ico", DeclaredSize: 32, MimeHint: "image/x-icon"},
				{URL: "https://www.example.com/16.ico", DeclaredSize: 16, MimeHint: "image/x-icon"},
				{URL: "https://www.example.com/any.ico", DeclaredSize: 0, MimeHint: "image/x-icon"},
			},
		},
		{
			name: "apple touch icon is always png",
			html: `<head><link rel="apple-touch-icon" sizes="180x180" type="image/webp" href="apple.webp"></head>`,
			want: []model.CandidateIcon{
				{URL: "https://www.example.com/blog/apple.webp", DeclaredSize: 180, MimeHint: "image/png"},
			},
		},
		{
			name: "missing and unresolvable hrefs are skipped",
			html: `<head>
<link rel="icon" sizes="64x64">
<link rel="icon" sizes="48x48" href="http://[::1">
<link rel="icon" sizes="8x8" href="/ok.png" type="image/png">
</head>`,
			want: []model.CandidateIcon{
				{URL: "https://www.example.com/ok.png", DeclaredSize: 8, MimeHint: "image/png"},
			},
		},
		{
			name: "ties keep document order",
			html: `<head>
<link rel="icon" href="/a.ico">
<link rel="icon" href="/b.ico">
<link rel="apple-touch-icon" href="/c.png">
</head>`,
			want: []model.CandidateIcon{
				{URL: "https://www.example.com/a.ico", MimeHint: "image/x-icon"},
				{URL: "https://www.example.com/b.ico", MimeHint: "image/x-icon"},
				{URL: "https://www.example.com/c.png", MimeHint: "image/png"},
			},
		},
		{
			name: "only the leading width counts",
			html: `<head>
<link rel="icon" sizes="16x16 96x96" href="/multi.png" type="image/png">
<link rel="icon" sizes="24" href="/bare.png" type="image/png">
<link rel="icon" sizes="64X64" href="/upper.png" type="image/png">
</head>`,
			want: []model.CandidateIcon{
				{URL: "https://www.example.com/bare.png", DeclaredSize: 24, MimeHint: "image/png"},
				{URL: "https://www.example.com/multi.png", DeclaredSize: 16, MimeHint: "image/png"},
				{URL: "https://www.example.com/upper.png", DeclaredSize: 0, MimeHint: "image/png"},
			},
		},
		{
			name: "absolute and protocol relative hrefs",
			html: `<head>
<link rel="icon" sizes="32x32" href="//cdn.example.net/i.png" type="image/png">
<link rel="icon" sizes="16x16" href="  https://static.example.org/s.gif " type="image/gif">
</head>`,
			want: []model.CandidateIcon{
				{URL: "https://cdn.example.net/i.png", DeclaredSize: 32, MimeHint: "image/png"},
				{URL: "https://static.example.org/s.gif", DeclaredSize: 16, MimeHint: "image/gif"},
			},
		},
		{
			name: "unrelated rel values ignored",
			html: `<head>
<link rel="stylesheet" href="/style.css">
<link rel="mask-icon" href="/mask.svg">
<link rel="manifest" href="/site.webmanifest">
</head>`,
			want: nil,
		},
	}

	base := mustURL(t, "https://www.example.com/blog/")
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := favicon.ExtractCandidates([]byte(tt.html), base)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d candidates %+v, want %d", len(got), got, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("candidate %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExtractCandidates_SVGNotDuplicated(t *testing.T) {
	t.Parallel()

	got := favicon.ExtractCandidates(
		[]byte(`<link rel="icon" type="image/svg+xml" sizes="16x16" href="/i.svg">`),
		mustURL(t, "https://www.example.com/"),
	)
	if len(got) != 1 {
		t.Fatalf("got %+v, want a single svg candidate", got)
	}
	if got[0].DeclaredSize != math.MaxUint32 {
		t.Errorf("svg size = %d", got[0].DeclaredSize)
	}
}

func TestExtractCandidates_GarbageInput(t *testing.T) {
	t.Parallel()

	got := favicon.ExtractCandidates([]byte("\x00\xff<<<not html"), mustURL(t, "https://www.example.com/"))
	if len(got) != 0 {
		t.Errorf("got %+v, want none", got)
	}
}
