package favicon

// DefaultUserAgent is sent on every request. Some sites refuse clients that
// do not look like a desktop browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

// Config controls the resolution strategy.
type Config struct {
	UserAgent string `yaml:"user_agent"`

	// WellKnownPath is probed against the final page URL before any HTML
	// parsing.
	WellKnownPath string `yaml:"well_known_path"`

	// MaxCandidates is how many ranked <link> candidates are tried. The
	// default of 1 tries only the best one.
	MaxCandidates int `yaml:"max_candidates"`

	// RenderHTML asks the transport to render the page before extraction.
	// Only the chromedp backend honors it.
	RenderHTML bool `yaml:"render_html"`
}

func DefaultConfig() Config {
	return Config{
		UserAgent:     DefaultUserAgent,
		WellKnownPath: "/favicon.ico",
		MaxCandidates: 1,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.WellKnownPath == "" {
		c.WellKnownPath = d.WellKnownPath
	}
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = d.MaxCandidates
	}
	return c
}
