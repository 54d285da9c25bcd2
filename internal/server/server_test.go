package server_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/raysh454/favicond/internal/app"
	"github.com/raysh454/favicond/internal/server"
	"github.com/raysh454/favicond/internal/store"
	"github.com/raysh454/favicond/internal/testutil"
)

func page(links string) string {
	return `<!doctype html><html><head>` + links + `</head><body></body></html>`
}

func fixtureRoutes() map[string]testutil.DummyRoute {
	return map[string]testutil.DummyRoute{
		"https://www.example.com":             {Body: page("")},
		"https://www.example.com/favicon.ico": {Body: "ICO"},

		"https://www.svg.test":          {Body: page(`<link rel="icon" type="image/svg+xml" href="/icon.svg">`)},
		"https://www.svg.test/icon.svg": {ContentType: "image/svg+xml", Body: "<svg/>"},

		"https://www.bmp.test":          {Body: page(`<link rel="icon" type="image/bmp" href="/icon.bmp">`)},
		"https://www.bmp.test/icon.bmp": {Body: "BM"},

		"https://www.evil.test":   {Body: page(`<link rel="icon" type="text/html" href="/x">`)},
		"https://www.evil.test/x": {ContentType: "text/html", Body: "<script>alert(document.domain)</script>"},

		"https://www.missing.test": {Body: page("")},
		"https://www.down.test":    {Fail: true},
	}
}

func newTestServer(t *testing.T, mutate func(*app.Config)) *server.Server {
	t.Helper()

	cfg := app.DefaultConfig()
	cfg.Cache.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}
	a, err := app.NewApplication(cfg, &testutil.DummyLogger{},
		app.WithWebClient(&testutil.DummyWebClient{Routes: fixtureRoutes()}),
		app.WithMetricsRegistry(prometheus.NewRegistry()))
	if err != nil {
		t.Fatalf("NewApplication: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	s, err := server.NewServer(server.Config{App: a, Logger: &testutil.DummyLogger{}})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func doJSON(t *testing.T, s http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON response: %v (body: %s)", err, rec.Body.String())
	}
}

// ─── CORS ──────────────────────────────────────────────────────────────

func TestServer_CORS_HeaderPresent(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	rec := doJSON(t, s, "GET", "/healthz", "")

	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("expected CORS origin *, got %q", origin)
	}
}

func TestServer_CORS_ConfiguredOriginAndPreflight(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, func(c *app.Config) { c.Server.AllowedOrigin = "https://ui.example" })

	rec := doJSON(t, s, "OPTIONS", "/favicons/json", "")

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://ui.example" {
		t.Errorf("origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "POST" {
		t.Errorf("methods = %q", got)
	}
}

// ─── Batches ───────────────────────────────────────────────────────────

func TestServer_FaviconsZip(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	rec := doJSON(t, s, "POST", "/favicons", `["example.com","svg.test","missing.test","down.test"]`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "favicons.zip") {
		t.Errorf("content disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	if rec.Header().Get("X-Batch-ID") == "" {
		t.Error("missing batch id header")
	}

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	want := []string{"example.com.png", "svg.test.svg"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("archive entries = %v, want %v", names, want)
	}
}

func TestServer_FaviconsZip_GETWithQuery(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	rec := doJSON(t, s, "GET", "/favicons?site=example.com", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	if len(zr.File) != 1 {
		t.Fatalf("entries = %d, want 1", len(zr.File))
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "ICO" {
		t.Errorf("entry data = %q", data)
	}
}

func TestServer_FaviconsJSON(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	rec := doJSON(t, s, "POST", "/favicons/json", `["example.com","missing.test","down.test","","example.com"]`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out []server.OutcomeResponse
	decodeJSON(t, rec, &out)
	if len(out) != 5 {
		t.Fatalf("got %d outcomes, want 5", len(out))
	}

	want := []struct{ url, status string }{
		{"example.com", "found"},
		{"missing.test", "not_found"},
		{"down.test", "transport_error"},
		{"", "not_found"},
		{"example.com", "found"},
	}
	for i, w := range want {
		if out[i].URL != w.url || out[i].Status != w.status {
			t.Errorf("outcome[%d] = %s/%s, want %s/%s", i, out[i].URL, out[i].Status, w.url, w.status)
		}
	}
	if out[0].Mime != "image/x-icon" || out[0].SourceURL != "https://www.example.com/favicon.ico" || out[0].Size != 3 {
		t.Errorf("found outcome = %+v", out[0])
	}
	if out[2].Error == "" {
		t.Error("transport error should carry a message")
	}
}

func TestServer_FaviconsDataURI(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	rec := doJSON(t, s, "POST", "/favicons/datauri", `["example.com","svg.test","bmp.test","missing.test"]`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out []server.DataURIResponse
	decodeJSON(t, rec, &out)
	if len(out) != 4 {
		t.Fatalf("got %d outcomes", len(out))
	}
	if out[0].DataURI != "data:image/x-icon;base64,SUNP" {
		t.Errorf("ico data uri = %q", out[0].DataURI)
	}
	if out[1].DataURI != "data:image/svg+xml;utf8,<svg/>" {
		t.Errorf("svg data uri = %q", out[1].DataURI)
	}
	if out[2].Status != server.StatusUnsupportedMime || out[2].DataURI != "" {
		t.Errorf("unknown kind = %+v", out[2])
	}
	if out[3].Status != "not_found" || out[3].DataURI != "" {
		t.Errorf("missing = %+v", out[3])
	}
}

func TestServer_BadInput(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, func(c *app.Config) { c.Server.MaxBatchSize = 2 })

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"invalid json", "POST", "/favicons/json", `{invalid}`, http.StatusBadRequest},
		{"object not array", "POST", "/favicons/datauri", `{"sites":["a"]}`, http.StatusBadRequest},
		{"empty list", "POST", "/favicons", `[]`, http.StatusBadRequest},
		{"empty body", "GET", "/favicons", ``, http.StatusBadRequest},
		{"too many", "POST", "/favicons/json", `["a","b","c"]`, http.StatusRequestEntityTooLarge},
		{"ws without sites", "GET", "/ws/favicons", ``, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
			var e server.ErrorResponse
			decodeJSON(t, rec, &e)
			if e.Error == "" {
				t.Error("error payload missing message")
			}
		})
	}
}

// ─── Single site ───────────────────────────────────────────────────────

func TestServer_SingleFavicon(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	tests := []struct {
		site     string
		want     int
		wantType string
		wantBody string
	}{
		{"svg.test", http.StatusOK, "image/svg+xml", "<svg/>"},
		{"example.com", http.StatusOK, "image/x-icon", "ICO"},
		{"missing.test", http.StatusNotFound, "application/json", ""},
		{"down.test", http.StatusBadGateway, "application/json", ""},
	}
	for _, tt := range tests {
		t.Run(tt.site, func(t *testing.T) {
			rec := doJSON(t, s, "GET", "/favicons/"+tt.site, "")
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != tt.wantType {
				t.Errorf("content type = %q, want %q", ct, tt.wantType)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q", rec.Body.String())
			}
		})
	}
}

func TestServer_SingleFavicon_SafeHeaders(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	tests := []struct {
		site     string
		wantType string
		wantCSP  string
	}{
		{"evil.test", "application/octet-stream", ""},
		{"bmp.test", "application/octet-stream", ""},
		{"svg.test", "image/svg+xml", "sandbox"},
		{"example.com", "image/x-icon", ""},
	}
	for _, tt := range tests {
		t.Run(tt.site, func(t *testing.T) {
			rec := doJSON(t, s, "GET", "/favicons/"+tt.site, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != tt.wantType {
				t.Errorf("content type = %q, want %q", ct, tt.wantType)
			}
			if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
				t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
			}
			if got := rec.Header().Get("Content-Security-Policy"); got != tt.wantCSP {
				t.Errorf("Content-Security-Policy = %q, want %q", got, tt.wantCSP)
			}
		})
	}
}

// ─── Stored ────────────────────────────────────────────────────────────

func TestServer_Stored_Disabled(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	if rec := doJSON(t, s, "GET", "/stored", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestServer_Stored_RoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := newTestServer(t, func(c *app.Config) {
		c.Store = store.Config{Backend: store.BackendSQLite, SQLitePath: filepath.Join(dir, "f.db")}
	})

	if rec := doJSON(t, s, "POST", "/favicons/json", `["example.com","svg.test"]`); rec.Code != http.StatusOK {
		t.Fatalf("batch failed: %d", rec.Code)
	}

	rec := doJSON(t, s, "GET", "/stored?limit=10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var records []store.Record
	decodeJSON(t, rec, &records)
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}

	rec = doJSON(t, s, "GET", "/stored/svg.test", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "<svg/>" {
		t.Errorf("stored svg = %d %q", rec.Code, rec.Body.String())
	}
	if rec := doJSON(t, s, "GET", "/stored/never.test", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown site, got %d", rec.Code)
	}
}

// ─── Operations ────────────────────────────────────────────────────────

func TestServer_HealthAndMetrics(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	rec := doJSON(t, s, "GET", "/healthz", "")
	var h server.HealthResponse
	decodeJSON(t, rec, &h)
	if h.Status != "ok" {
		t.Errorf("health = %+v", h)
	}

	doJSON(t, s, "POST", "/favicons/json", `["example.com"]`)

	rec = doJSON(t, s, "GET", "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`favicond_resolutions_total{status="found"} 1`,
		`favicond_http_requests_total{code="2xx",route="/healthz"} 1`,
		`favicond_batches_total 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestServer_Swagger(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	rec := doJSON(t, s, "GET", "/swagger/doc.json", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var doc map[string]any
	decodeJSON(t, rec, &doc)
	paths, _ := doc["paths"].(map[string]any)
	if _, ok := paths["/favicons/json"]; !ok {
		t.Error("swagger document lacks /favicons/json")
	}
}

// ─── WebSocket ─────────────────────────────────────────────────────────

func TestServer_WebSocketStream(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)
	ts := httptest.NewServer(s)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/favicons?site=example.com&site=missing.test&site=down.test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	seen := map[int]string{}
	for {
		var msg server.StreamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if msg.Type == "done" {
			if msg.Total != 3 || msg.Found != 1 || msg.BatchID == "" {
				t.Errorf("done message = %+v", msg)
			}
			break
		}
		if msg.Type != "outcome" || msg.Outcome == nil {
			t.Fatalf("unexpected message %+v", msg)
		}
		seen[msg.Index] = msg.Outcome.Status
	}

	want := map[int]string{0: "found", 1: "not_found", 2: "transport_error"}
	for i, status := range want {
		if seen[i] != status {
			t.Errorf("index %d status = %q, want %q", i, seen[i], status)
		}
	}
}
