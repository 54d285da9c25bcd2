package favicon

import (
	"context"
	"net/http"

	"github.com/raysh454/favicond/internal/logging"
	"github.com/raysh454/favicond/internal/webclient"
)

// Fetcher issues GET requests with a browser User-Agent. Icon probes never
// fail hard: a transport error or non-2xx status means the icon is absent.
type Fetcher struct {
	wc        webclient.WebClient
	userAgent string
	logger    logging.Logger
}

func NewFetcher(wc webclient.WebClient, userAgent string, logger logging.Logger) *Fetcher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Fetcher{wc: wc, userAgent: userAgent, logger: logger}
}

func (f *Fetcher) request(url string, render bool) *webclient.Request {
	req := &webclient.Request{
		Method:  http.MethodGet,
		URL:     url,
		Headers: http.Header{"User-Agent": []string{f.userAgent}},
	}
	if render {
		req.Options = map[string]string{webclient.OptionRender: "true"}
	}
	return req
}

// FetchIcon retrieves url and reports whether it is present. The response
// is returned for callers that need headers or the final URL.
func (f *Fetcher) FetchIcon(ctx context.Context, url string) (*webclient.Response, bool) {
	resp, err := f.wc.Do(ctx, f.request(url, false))
	if err != nil {
		f.logger.Warn("icon fetch failed",
			logging.Field{Key: "url", Value: url},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, false
	}
	if !resp.OK() {
		f.logger.Debug("icon absent",
			logging.Field{Key: "url", Value: url},
			logging.Field{Key: "status", Value: resp.StatusCode})
		return nil, false
	}
	return resp, true
}

// Fetch returns the body of url, or false when it is absent.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, bool) {
	resp, ok := f.FetchIcon(ctx, url)
	if !ok {
		return nil, false
	}
	return resp.Body, true
}

// FetchPage retrieves an HTML document. Only transport failures are
// returned as errors; a response with any status is handed back so the
// caller can still use its final URL and body.
func (f *Fetcher) FetchPage(ctx context.Context, url string, render bool) (*webclient.Response, error) {
	resp, err := f.wc.Do(ctx, f.request(url, render))
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		f.logger.Debug("page status not ok",
			logging.Field{Key: "url", Value: url},
			logging.Field{Key: "status", Value: resp.StatusCode})
	}
	return resp, nil
}
