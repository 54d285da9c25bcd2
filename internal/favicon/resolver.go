// Package favicon resolves a site identifier to the bytes of its favicon.
//
// Resolution runs through a fixed sequence of states:
//
//	start -> fetching_html -> probing_well_known -> probing_declared -> found | not_found
//
// The well-known path is probed before the HTML is parsed, and only the
// best ranked declared candidate is tried unless Config.MaxCandidates says
// otherwise.
package favicon

import (
	"context"
	"fmt"
	"net/url"

	"github.com/raysh454/favicond/internal/logging"
	"github.com/raysh454/favicond/internal/mimetype"
	"github.com/raysh454/favicond/internal/model"
	"github.com/raysh454/favicond/internal/utils"
	"github.com/raysh454/favicond/internal/webclient"
)

// Source resolves a site identifier to its favicon.
type Source interface {
	Resolve(ctx context.Context, identifier string) (*model.Favicon, error)
}

type state string

const (
	stateFetchingHTML     state = "fetching_html"
	stateProbingWellKnown state = "probing_well_known"
	stateProbingDeclared  state = "probing_declared"
	stateFound            state = "found"
	stateNotFound         state = "not_found"
)

// Resolver is the default Source. It is safe for concurrent use.
type Resolver struct {
	cfg     Config
	fetcher *Fetcher
	extract ExtractFunc
	logger  logging.Logger
}

type Option func(*Resolver)

// WithExtractor replaces ExtractCandidates.
func WithExtractor(fn ExtractFunc) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.extract = fn
		}
	}
}

func NewResolver(cfg Config, wc webclient.WebClient, logger logging.Logger, opts ...Option) *Resolver {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	cfg = cfg.withDefaults()
	logger = logger.With(logging.Field{Key: "component", Value: "favicon"})
	r := &Resolver{
		cfg:     cfg,
		fetcher: NewFetcher(wc, cfg.UserAgent, logger),
		extract: ExtractCandidates,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) enter(site string, s state, fields ...logging.Field) {
	r.logger.Debug("resolver state "+string(s),
		append([]logging.Field{{Key: "site", Value: site}}, fields...)...)
}

// Resolve returns the favicon of identifier. Errors wrap ErrInvalidIdentifier,
// ErrTransport, ErrNoCandidate, ErrNotFound or the context error.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (*model.Favicon, error) {
	base, err := utils.ResolveSiteURL(identifier)
	if err != nil {
		return nil, err
	}

	r.enter(identifier, stateFetchingHTML, logging.Field{Key: "url", Value: base.String()})
	page, err := r.fetcher.FetchPage(ctx, base.String(), r.cfg.RenderHTML)
	if err != nil {
		r.enter(identifier, stateNotFound, logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("fetch html %s: %w: %w", base, ErrTransport, err)
	}

	final := base
	if page.FinalURL != "" {
		if u, err := url.Parse(page.FinalURL); err == nil && u.IsAbs() {
			final = u
		}
	}

	wellKnown, err := utils.ResolveReference(final, r.cfg.WellKnownPath)
	if err == nil {
		r.enter(identifier, stateProbingWellKnown, logging.Field{Key: "url", Value: wellKnown})
		if resp, ok := r.fetcher.FetchIcon(ctx, wellKnown); ok {
			return r.found(identifier, wellKnown, resp, mimetype.ICO), nil
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.enter(identifier, stateProbingDeclared)
	candidates := r.extract(page.Body, final)
	if len(candidates) == 0 {
		r.enter(identifier, stateNotFound)
		return nil, fmt.Errorf("%s: %w", identifier, ErrNoCandidate)
	}

	limit := min(r.cfg.MaxCandidates, len(candidates))
	for _, c := range candidates[:limit] {
		if resp, ok := r.fetcher.FetchIcon(ctx, c.URL); ok {
			return r.found(identifier, c.URL, resp, mimetype.Classify(c.MimeHint)), nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	r.enter(identifier, stateNotFound)
	return nil, fmt.Errorf("%s: tried %d of %d candidates: %w", identifier, limit, len(candidates), ErrNotFound)
}

func (r *Resolver) found(site, src string, resp *webclient.Response, kind mimetype.Kind) *model.Favicon {
	r.enter(site, stateFound,
		logging.Field{Key: "url", Value: src},
		logging.Field{Key: "mime", Value: kind.String()},
		logging.Field{Key: "bytes", Value: len(resp.Body)})
	return &model.Favicon{
		Site:      site,
		SourceURL: src,
		Data:      resp.Body,
		Mime:      kind,
		FetchedAt: resp.FetchedAt,
	}
}
