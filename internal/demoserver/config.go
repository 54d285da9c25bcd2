package demoserver

// Config holds configuration for the demo server.
type Config struct {
	// Port is the port on which the demo server listens.
	Port int

	// Domain is appended to every fixture host, so "svg" is served for
	// www.svg.<Domain>. Requests whose Host matches no fixture get 404.
	Domain string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:   9999,
		Domain: "demo.test",
	}
}
