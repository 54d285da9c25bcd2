package model

// OutcomeStatus is the per-site result of a batch.
type OutcomeStatus string

const (
	OutcomeFound          OutcomeStatus = "found"
	OutcomeNotFound       OutcomeStatus = "not_found"
	OutcomeTransportError OutcomeStatus = "transport_error"
)

// Outcome records what happened to one site of a batch.
type Outcome struct {
	Site    string        `json:"url"`
	Status  OutcomeStatus `json:"status"`
	Favicon *Favicon      `json:"favicon,omitempty"`
	Err     string        `json:"error,omitempty"`

	// StoredAt is where the favicon was persisted, if a store is configured.
	StoredAt string `json:"stored_at,omitempty"`

	// PersistErr is set when the favicon was found but could not be saved.
	PersistErr string `json:"persist_error,omitempty"`
}

// Found reports whether the outcome carries a favicon.
func (o Outcome) Found() bool {
	return o.Status == OutcomeFound && o.Favicon != nil
}
