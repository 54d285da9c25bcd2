package webclient

import "time"

type Client string

const (
	ClientNetHTTP  Client = "nethttp"
	ClientChromedp Client = "chromedp"
)

// Config is the transport configuration shared by all backends.
type Config struct {
	Client Client `yaml:"client"`

	// Timeout bounds a single request including redirects and body read.
	Timeout time.Duration `yaml:"timeout"`

	// MaxRedirects caps followed redirects. Zero or less disables following,
	// so the redirect response itself is returned.
	MaxRedirects int `yaml:"max_redirects"`

	// MaxBodyBytes caps the body read per response. Zero means unlimited.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// RenderIdle is how long the chromedp backend waits for the network to
	// go quiet before reading the DOM.
	RenderIdle time.Duration `yaml:"render_idle"`

	// Headless runs Chrome without a window. Only read by chromedp.
	Headless bool `yaml:"headless"`
}

// DefaultConfig returns the net/http backend with a 30s timeout and a
// 15 redirect cap.
func DefaultConfig() Config {
	return Config{
		Client:       ClientNetHTTP,
		Timeout:      30 * time.Second,
		MaxRedirects: 15,
		MaxBodyBytes: 10 << 20,
		RenderIdle:   2 * time.Second,
		Headless:     true,
	}
}
