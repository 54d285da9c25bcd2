package favicon

import (
	"errors"

	"github.com/raysh454/favicond/internal/utils"
)

var (
	// ErrInvalidIdentifier means the site string is not a usable URL.
	ErrInvalidIdentifier = utils.ErrInvalidIdentifier

	// ErrTransport means the site's HTML page could not be retrieved.
	ErrTransport = errors.New("html fetch failed")

	// ErrNoCandidate means the page declares no icon links and the
	// well-known path was absent.
	ErrNoCandidate = errors.New("no icon declared")

	// ErrNotFound means every attempted icon location was absent.
	ErrNotFound = errors.New("favicon not found")
)
