package webclient

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/raysh454/favicond/internal/logging"
)

// ErrUnknownClient is returned by New when no constructor is registered for
// the configured Client.
var ErrUnknownClient = errors.New("unknown web client")

// Constructor builds the WebClient for one Client kind.
type Constructor func(cfg Config, logger logging.Logger) (WebClient, error)

var (
	mu           sync.RWMutex
	constructors = map[Client]Constructor{}
)

// normalize lower-cases and trims c. The empty Client means ClientNetHTTP.
func (c Client) normalize() Client {
	n := Client(strings.ToLower(strings.TrimSpace(string(c))))
	if n == "" {
		return ClientNetHTTP
	}
	return n
}

// Register installs ctor for c, replacing any earlier constructor.
func Register(c Client, ctor Constructor) {
	c = c.normalize()
	if ctor == nil {
		return
	}
	mu.Lock()
	constructors[c] = ctor
	mu.Unlock()
}

// RegisterBuiltins installs the net/http and chromedp clients. It is safe to
// call more than once.
func RegisterBuiltins() {
	Register(ClientNetHTTP, func(cfg Config, logger logging.Logger) (WebClient, error) {
		return NewNetHTTPClient(cfg, logger, nil)
	})
	Register(ClientChromedp, func(cfg Config, logger logging.Logger) (WebClient, error) {
		return NewChromedpClient(cfg, logger)
	})
}

// New builds the WebClient selected by cfg.Client.
func New(cfg Config, logger logging.Logger) (WebClient, error) {
	c := cfg.Client.normalize()

	mu.RLock()
	ctor := constructors[c]
	mu.RUnlock()
	if ctor == nil {
		return nil, fmt.Errorf("%w %q (have %v)", ErrUnknownClient, c, Clients())
	}

	wc, err := ctor(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create %s web client: %w", c, err)
	}
	if wc == nil {
		return nil, fmt.Errorf("create %s web client: constructor returned nil", c)
	}
	return wc, nil
}

// Clients lists the registered Client kinds in sorted order.
func Clients() []Client {
	mu.RLock()
	out := make([]Client, 0, len(constructors))
	for c := range constructors {
		out = append(out, c)
	}
	mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
