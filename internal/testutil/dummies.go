// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/raysh454/favicond/internal/logging"
	"github.com/raysh454/favicond/internal/model"
	"github.com/raysh454/favicond/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// WarnCount returns the number of recorded warnings.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// DebugContains reports whether a debug message contains substr.
func (l *DummyLogger) DebugContains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.Debugs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

// ─── WebClient ─────────────────────────────────────────────────────────

// ErrDummyTransport is returned for routes marked Fail.
var ErrDummyTransport = errors.New("dummy transport failure")

// DummyRoute describes the canned response for one URL.
type DummyRoute struct {
	Status      int
	ContentType string
	Body        string
	// FinalURL overrides the post-redirect URL. Defaults to the request URL.
	FinalURL string
	Fail     bool
}

// DummyWebClient implements webclient.WebClient from a route table keyed by
// absolute URL. Unknown URLs get a 404.
type DummyWebClient struct {
	ResponseDelay time.Duration
	Routes        map[string]DummyRoute

	mu       sync.Mutex
	Requests []*webclient.Request
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	route, ok := d.Routes[req.URL]
	if !ok {
		route = DummyRoute{Status: http.StatusNotFound, Body: "not found"}
	}
	if route.Fail {
		return nil, ErrDummyTransport
	}
	if route.Status == 0 {
		route.Status = http.StatusOK
	}
	final := route.FinalURL
	if final == "" {
		final = req.URL
	}

	hdr := http.Header{}
	if route.ContentType != "" {
		hdr.Set("Content-Type", route.ContentType)
	}
	return &webclient.Response{
		Request:    req,
		Headers:    hdr,
		Body:       []byte(route.Body),
		StatusCode: route.Status,
		FinalURL:   final,
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Close() error { return nil }

// Calls returns how many requests were made for url.
func (d *DummyWebClient) Calls(url string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, r := range d.Requests {
		if r.URL == url {
			n++
		}
	}
	return n
}

// RequestCount returns the total number of requests made.
func (d *DummyWebClient) RequestCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Requests)
}

// ─── Favicon source ────────────────────────────────────────────────────

// DummySource resolves identifiers from a fixed table. Identifiers missing
// from Favicons fail with Errs[id], or NotFoundErr when that is nil too.
type DummySource struct {
	Favicons    map[string]*model.Favicon
	Errs        map[string]error
	NotFoundErr error
	Delay       map[string]time.Duration

	mu    sync.Mutex
	calls map[string]int
}

func (s *DummySource) Resolve(ctx context.Context, id string) (*model.Favicon, error) {
	s.mu.Lock()
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[id]++
	s.mu.Unlock()

	if d := s.Delay[id]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fav, ok := s.Favicons[id]; ok {
		cp := *fav
		return &cp, nil
	}
	if err, ok := s.Errs[id]; ok {
		return nil, err
	}
	if s.NotFoundErr != nil {
		return nil, s.NotFoundErr
	}
	return nil, errors.New("dummy: no favicon for " + id)
}

// Calls returns how often id was resolved.
func (s *DummySource) Calls(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[id]
}

// ─── Store ─────────────────────────────────────────────────────────────

// DummyStore records saved favicons in memory. Sites listed in FailSites
// fail with ErrDummyStore.
type DummyStore struct {
	FailSites map[string]bool

	mu    sync.Mutex
	Saved []*model.Favicon
}

// ErrDummyStore is returned for sites in DummyStore.FailSites.
var ErrDummyStore = errors.New("dummy store failure")

func (s *DummyStore) Save(_ context.Context, fav *model.Favicon) (string, error) {
	if s.FailSites[fav.Site] {
		return "", ErrDummyStore
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Saved = append(s.Saved, fav)
	return "mem://" + fav.Site, nil
}

// SavedCount returns the number of saved favicons.
func (s *DummyStore) SavedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Saved)
}
