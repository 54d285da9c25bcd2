// Package batch resolves many sites concurrently. Every site gets its own
// goroutine and its own outcome slot; a failing or slow site never affects
// the others.
package batch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/raysh454/favicond/internal/favicon"
	"github.com/raysh454/favicond/internal/logging"
	"github.com/raysh454/favicond/internal/model"
	"github.com/raysh454/favicond/internal/store"
)

type Config struct {
	// MaxConcurrency caps in-flight resolutions per batch. Zero means one
	// goroutine per site with no cap.
	MaxConcurrency int `yaml:"max_concurrency"`
}

// Recorder observes batch activity, typically for metrics.
type Recorder interface {
	ObserveResolution(status model.OutcomeStatus, elapsed time.Duration)
	ObserveBatch(size int, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveResolution(model.OutcomeStatus, time.Duration) {}
func (nopRecorder) ObserveBatch(int, time.Duration)                      {}

// Coordinator fans a list of identifiers out to a favicon.Source.
type Coordinator struct {
	source   favicon.Source
	cfg      Config
	store    store.Store
	recorder Recorder
	logger   logging.Logger
}

type Option func(*Coordinator)

// WithStore persists every found favicon. Save failures are recorded on the
// outcome and do not change its status.
func WithStore(s store.Store) Option {
	return func(c *Coordinator) { c.store = s }
}

func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) {
		if r != nil {
			c.recorder = r
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(source favicon.Source, cfg Config, opts ...Option) *Coordinator {
	c := &Coordinator{
		source:   source,
		cfg:      cfg,
		recorder: nopRecorder{},
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logging.Field{Key: "component", Value: "batch"})
	return c
}

// Result holds one outcome per input identifier, in input order.
type Result struct {
	ID       uuid.UUID       `json:"id"`
	Outcomes []model.Outcome `json:"outcomes"`
	Elapsed  time.Duration   `json:"elapsed"`
}

// ByIdentifier maps each identifier to its outcome. When an identifier
// appears more than once the last occurrence wins.
func (r Result) ByIdentifier() map[string]model.Outcome {
	out := make(map[string]model.Outcome, len(r.Outcomes))
	for _, o := range r.Outcomes {
		out[o.Site] = o
	}
	return out
}

// Favicons returns the found favicons in input order.
func (r Result) Favicons() []*model.Favicon {
	var out []*model.Favicon
	for _, o := range r.Outcomes {
		if o.Found() {
			out = append(out, o.Favicon)
		}
	}
	return out
}

// Found counts found outcomes.
func (r Result) Found() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Found() {
			n++
		}
	}
	return n
}

// ResolveAll resolves every identifier and waits for all of them.
func (c *Coordinator) ResolveAll(ctx context.Context, ids []string) Result {
	return c.ResolveEach(ctx, ids, nil)
}

// ResolveEach is ResolveAll with a callback invoked as each outcome
// completes. Calls to fn are serialized but arrive in completion order.
func (c *Coordinator) ResolveEach(ctx context.Context, ids []string, fn func(index int, o model.Outcome)) Result {
	start := time.Now()
	res := Result{ID: uuid.New(), Outcomes: make([]model.Outcome, len(ids))}
	logger := c.logger.With(logging.Field{Key: "batch_id", Value: res.ID.String()})

	logger.Info("starting batch",
		logging.Field{Key: "sites", Value: len(ids)},
		logging.Field{Key: "max_concurrency", Value: c.cfg.MaxConcurrency})

	// No WithContext: a failed site must not cancel its siblings.
	var g errgroup.Group
	if c.cfg.MaxConcurrency > 0 {
		g.SetLimit(c.cfg.MaxConcurrency)
	}

	var emitMu sync.Mutex
	for i, id := range ids {
		g.Go(func() error {
			o := c.resolveOne(ctx, logger, id)
			res.Outcomes[i] = o
			if fn != nil {
				emitMu.Lock()
				fn(i, o)
				emitMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	res.Elapsed = time.Since(start)
	c.recorder.ObserveBatch(len(ids), res.Elapsed)
	logger.Info("batch complete",
		logging.Field{Key: "sites", Value: len(ids)},
		logging.Field{Key: "found", Value: res.Found()},
		logging.Field{Key: "elapsed", Value: res.Elapsed.String()})
	return res
}

func (c *Coordinator) resolveOne(ctx context.Context, logger logging.Logger, id string) model.Outcome {
	started := time.Now()

	var o model.Outcome
	if err := ctx.Err(); err != nil {
		o = OutcomeFor(id, nil, err)
	} else {
		fav, err := c.source.Resolve(ctx, id)
		o = OutcomeFor(id, fav, err)
	}

	if o.Found() && c.store != nil {
		loc, err := c.store.Save(ctx, o.Favicon)
		if err != nil {
			o.PersistErr = err.Error()
			logger.Warn("failed to persist favicon",
				logging.Field{Key: "site", Value: id},
				logging.Field{Key: "error", Value: err.Error()})
		} else {
			o.StoredAt = loc
		}
	}

	elapsed := time.Since(started)
	c.recorder.ObserveResolution(o.Status, elapsed)
	logger.Debug("site resolved",
		logging.Field{Key: "site", Value: id},
		logging.Field{Key: "status", Value: string(o.Status)},
		logging.Field{Key: "elapsed", Value: elapsed.String()})
	return o
}

// OutcomeFor maps a resolution result to its batch outcome. A failed HTML
// fetch or an abandoned context is a transport error; every other failure
// is not_found.
func OutcomeFor(site string, fav *model.Favicon, err error) model.Outcome {
	o := model.Outcome{Site: site}
	switch {
	case err == nil && fav != nil:
		o.Status = model.OutcomeFound
		o.Favicon = fav
	case err == nil:
		o.Status = model.OutcomeNotFound
		o.Err = favicon.ErrNotFound.Error()
	case errors.Is(err, favicon.ErrTransport),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		o.Status = model.OutcomeTransportError
		o.Err = err.Error()
	default:
		o.Status = model.OutcomeNotFound
		o.Err = err.Error()
	}
	return o
}
