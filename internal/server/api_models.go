package server

import (
	"github.com/raysh454/favicond/internal/mimetype"
	"github.com/raysh454/favicond/internal/model"
)

// StatusUnsupportedMime marks a found favicon whose type cannot be written
// as a data URI.
const StatusUnsupportedMime = "unsupported_mime"

// SitesRequest is the body accepted by the batch endpoints: a JSON array of
// site identifiers.
type SitesRequest []string

// OutcomeResponse is one site of a JSON batch response.
type OutcomeResponse struct {
	URL       string `json:"url" example:"example.com"`
	Status    string `json:"status" example:"found"`
	Mime      string `json:"mime,omitempty" example:"image/png"`
	SourceURL string `json:"source_url,omitempty" example:"https://www.example.com/favicon.png"`
	Size      int    `json:"size,omitempty" example:"1150"`
	Error     string `json:"error,omitempty"`
	StoredAt  string `json:"stored_at,omitempty"`
}

// DataURIResponse is one site of a data URI batch response.
type DataURIResponse struct {
	URL     string `json:"url" example:"example.com"`
	Status  string `json:"status" example:"found"`
	DataURI string `json:"data_uri,omitempty" example:"data:image/png;base64,iVBORw0KGgo="`
}

// StreamMessage is sent over /ws/favicons. Type is "outcome" for each
// completed site, then "done" once, or "error" if the batch was rejected.
type StreamMessage struct {
	Type      string           `json:"type" example:"outcome"`
	Index     int              `json:"index"`
	Outcome   *OutcomeResponse `json:"outcome,omitempty"`
	BatchID   string           `json:"batch_id,omitempty"`
	Found     int              `json:"found,omitempty"`
	Total     int              `json:"total,omitempty"`
	ElapsedMS int64            `json:"elapsed_ms,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"no sites given"`
}

func toOutcomeResponse(o model.Outcome) OutcomeResponse {
	out := OutcomeResponse{
		URL:      o.Site,
		Status:   string(o.Status),
		Error:    o.Err,
		StoredAt: o.StoredAt,
	}
	if o.Favicon != nil {
		out.Mime = o.Favicon.Mime.String()
		out.SourceURL = o.Favicon.SourceURL
		out.Size = o.Favicon.Size()
	}
	if o.PersistErr != "" && out.Error == "" {
		out.Error = o.PersistErr
	}
	return out
}

func toDataURIResponse(o model.Outcome) DataURIResponse {
	out := DataURIResponse{URL: o.Site, Status: string(o.Status)}
	if !o.Found() {
		return out
	}
	uri, ok := mimetype.DataURI(o.Favicon.Mime, o.Favicon.Data)
	if !ok {
		out.Status = StatusUnsupportedMime
		return out
	}
	out.DataURI = uri
	return out
}
