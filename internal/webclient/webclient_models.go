package webclient

import (
	"net/http"
	"time"
)

// OptionRender asks a rendering backend to execute page scripts before
// returning the document. Backends that cannot render ignore it.
const OptionRender = "render"

type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
	// Options contains backend-specific options like "render": "true" for chromedp
	Options map[string]string
}

// WantsRender reports whether the request carries OptionRender=true.
func (r *Request) WantsRender() bool {
	return r != nil && r.Options[OptionRender] == "true"
}

type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int
	// FinalURL is the URL that produced the response after redirects.
	FinalURL  string
	FetchedAt time.Time
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// ContentType returns the Content-Type header exactly as sent.
func (r *Response) ContentType() string {
	if r == nil {
		return ""
	}
	return r.Headers.Get("Content-Type")
}
