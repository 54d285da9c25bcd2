package mimetype_test

import (
	"encoding/json"
	"testing"

	"github.com/raysh454/favicond/internal/mimetype"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want mimetype.Kind
	}{
		{"image/png", mimetype.PNG},
		{"image/svg+xml", mimetype.SVG},
		{"image/x-icon", mimetype.ICO},
		{"image/vnd.microsoft.icon", mimetype.ICO},
		{"image/gif", mimetype.GIF},
		{"image/jpeg", mimetype.JPEG},
		{"image/webp", mimetype.WEBP},
		{"application/unknown-icon", mimetype.Unknown("application/unknown-icon")},
		{"IMAGE/PNG", mimetype.Unknown("IMAGE/PNG")},
		{"image/png; charset=binary", mimetype.Unknown("image/png; charset=binary")},
		{"", mimetype.Unknown("")},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			got := mimetype.Classify(tt.raw)
			if got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestKind_UnknownKeepsRaw(t *testing.T) {
	t.Parallel()

	k := mimetype.Classify("application/unknown-icon")
	if k.Known() {
		t.Fatal("expected unknown kind")
	}
	if k.Raw() != "application/unknown-icon" {
		t.Errorf("Raw() = %q", k.Raw())
	}
	if k.String() != "application/unknown-icon" {
		t.Errorf("String() = %q", k.String())
	}
	if mimetype.PNG.Raw() != "" || !mimetype.PNG.Known() {
		t.Error("PNG should be known with empty raw")
	}
}

func TestKind_StringAndExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind mimetype.Kind
		str  string
		ext  string
	}{
		{mimetype.PNG, "image/png", ".png"},
		{mimetype.SVG, "image/svg+xml", ".svg"},
		{mimetype.Classify("image/vnd.microsoft.icon"), "image/x-icon", ".png"},
		{mimetype.WEBP, "image/webp", ".png"},
		{mimetype.Unknown("text/html"), "text/html", ".png"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.str {
			t.Errorf("String() = %q, want %q", got, tt.str)
		}
		if got := tt.kind.Extension(); got != tt.ext {
			t.Errorf("%s Extension() = %q, want %q", tt.str, got, tt.ext)
		}
	}
}

func TestKind_JSON(t *testing.T) {
	t.Parallel()

	out, err := json.Marshal(struct {
		Mime mimetype.Kind `json:"mime"`
	}{mimetype.SVG})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"mime":"image/svg+xml"}` {
		t.Errorf("unexpected JSON: %s", out)
	}

	var back struct {
		Mime mimetype.Kind `json:"mime"`
	}
	if err := json.Unmarshal([]byte(`{"mime":"image/gif"}`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Mime != mimetype.GIF {
		t.Errorf("got %v, want GIF", back.Mime)
	}
}

func TestDataURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		kind   mimetype.Kind
		data   []byte
		want   string
		wantOK bool
	}{
		{"png", mimetype.PNG, []byte{0x89, 'P', 'N', 'G'}, "data:image/png;base64,iVBORw==", true},
		{"ico alias", mimetype.Classify("image/vnd.microsoft.icon"), []byte("ico"), "data:image/x-icon;base64,aWNv", true},
		{"svg", mimetype.SVG, []byte(`<svg/>`), "data:image/svg+xml;utf8,<svg/>", true},
		{"svg invalid utf8", mimetype.SVG, []byte{'<', 0xff, '>'}, "data:image/svg+xml;utf8,<�>", true},
		{"unknown", mimetype.Unknown("text/plain"), []byte("x"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := mimetype.DataURI(tt.kind, tt.data)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("DataURI = %q, want %q", got, tt.want)
			}
		})
	}
}
