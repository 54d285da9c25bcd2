// Package webclient is the HTTP transport used for every page and icon
// retrieval. Backends are pluggable and selected by name from Config.
package webclient

import (
	"context"
	"errors"
)

// ErrBodyTooLarge is returned when a response body exceeds Config.MaxBodyBytes.
var ErrBodyTooLarge = errors.New("response body too large")

// WebClient performs a single request and returns the fully read response.
// Implementations must be safe for concurrent use.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	Close() error
}
