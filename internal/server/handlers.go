package server

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/raysh454/favicond/internal/batch"
	"github.com/raysh454/favicond/internal/favicon"
	"github.com/raysh454/favicond/internal/logging"
	"github.com/raysh454/favicond/internal/mimetype"
	"github.com/raysh454/favicond/internal/model"
	"github.com/raysh454/favicond/internal/store"
)

const (
	archiveName = "favicons.zip"
	octetStream = "application/octet-stream"
)

// handleFaviconsZip resolves a batch and returns the found favicons as a zip.
//
// @Summary Resolve favicons as a zip archive
// @Tags favicons
// @Accept json
// @Produce application/zip
// @Param sites body SitesRequest true "Site identifiers"
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Router /favicons [post]
func (s *Server) handleFaviconsZip(w http.ResponseWriter, r *http.Request) {
	sites, ok := s.readSites(w, r)
	if !ok {
		return
	}

	res := s.app.Batch.ResolveAll(r.Context(), sites)

	var buf bytes.Buffer
	if err := store.WriteZip(&buf, res.Favicons()); err != nil {
		s.logger.Error("writing archive", logging.Field{Key: "batch_id", Value: res.ID.String()}, logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "could not build archive")
		return
	}

	s.logger.Info("served archive",
		logging.Field{Key: "batch_id", Value: res.ID.String()},
		logging.Field{Key: "sites", Value: len(sites)},
		logging.Field{Key: "found", Value: res.Found()})

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+archiveName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Batch-ID", res.ID.String())
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// handleFaviconsJSON resolves a batch and reports every outcome.
//
// @Summary Resolve favicons and report outcomes
// @Tags favicons
// @Accept json
// @Produce json
// @Param sites body SitesRequest true "Site identifiers"
// @Success 200 {array} OutcomeResponse
// @Failure 400 {object} ErrorResponse
// @Router /favicons/json [post]
func (s *Server) handleFaviconsJSON(w http.ResponseWriter, r *http.Request) {
	sites, ok := s.readSites(w, r)
	if !ok {
		return
	}

	res := s.app.Batch.ResolveAll(r.Context(), sites)
	out := make([]OutcomeResponse, len(res.Outcomes))
	for i, o := range res.Outcomes {
		out[i] = toOutcomeResponse(o)
	}
	w.Header().Set("X-Batch-ID", res.ID.String())
	writeJSON(w, http.StatusOK, out)
}

// handleFaviconsDataURI resolves a batch and encodes each favicon inline.
//
// @Summary Resolve favicons as data URIs
// @Tags favicons
// @Accept json
// @Produce json
// @Param sites body SitesRequest true "Site identifiers"
// @Success 200 {array} DataURIResponse
// @Failure 400 {object} ErrorResponse
// @Router /favicons/datauri [post]
func (s *Server) handleFaviconsDataURI(w http.ResponseWriter, r *http.Request) {
	sites, ok := s.readSites(w, r)
	if !ok {
		return
	}

	res := s.app.Batch.ResolveAll(r.Context(), sites)
	out := make([]DataURIResponse, len(res.Outcomes))
	for i, o := range res.Outcomes {
		out[i] = toDataURIResponse(o)
	}
	w.Header().Set("X-Batch-ID", res.ID.String())
	writeJSON(w, http.StatusOK, out)
}

// handleFavicon resolves one site and returns the raw icon.
//
// @Summary Resolve one favicon
// @Tags favicons
// @Produce image/png,image/svg+xml,image/x-icon,application/octet-stream
// @Param site path string true "Site identifier"
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /favicons/{site} [get]
func (s *Server) handleFavicon(w http.ResponseWriter, r *http.Request) {
	site, err := url.PathUnescape(chi.URLParam(r, "site"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid site")
		return
	}

	start := time.Now()
	fav, err := s.app.Source.Resolve(r.Context(), site)
	o := batch.OutcomeFor(site, fav, err)
	s.app.Metrics.ObserveResolution(o.Status, time.Since(start))

	switch {
	case errors.Is(err, favicon.ErrInvalidIdentifier):
		writeError(w, http.StatusBadRequest, o.Err)
		return
	case o.Status == model.OutcomeTransportError:
		writeError(w, http.StatusBadGateway, o.Err)
		return
	case !o.Found():
		writeError(w, http.StatusNotFound, "favicon not found")
		return
	}

	writeFavicon(w, fav)
}

// handleListStored lists persisted favicons, newest first.
//
// @Summary List stored favicons
// @Tags stored
// @Produce json
// @Param limit query int false "Maximum records"
// @Success 200 {array} store.Record
// @Failure 404 {object} ErrorResponse
// @Router /stored [get]
func (s *Server) handleListStored(w http.ResponseWriter, r *http.Request) {
	if s.app.Store == nil {
		writeError(w, http.StatusNotFound, "persistence is disabled")
		return
	}

	limit := 0
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if v, err := strconv.Atoi(ls); err == nil && v > 0 {
			limit = v
		}
	}

	records, err := s.app.Store.List(r.Context(), limit)
	if err != nil {
		s.logger.Warn("listing stored favicons", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []store.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

// handleGetStored returns a persisted favicon without resolving it again.
//
// @Summary Get a stored favicon
// @Tags stored
// @Produce image/png,image/svg+xml,image/x-icon,application/octet-stream
// @Param site path string true "Site identifier"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /stored/{site} [get]
func (s *Server) handleGetStored(w http.ResponseWriter, r *http.Request) {
	if s.app.Store == nil {
		writeError(w, http.StatusNotFound, "persistence is disabled")
		return
	}
	site, err := url.PathUnescape(chi.URLParam(r, "site"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid site")
		return
	}

	fav, err := s.app.Store.Get(r.Context(), site)
	if errors.Is(err, store.ErrNotStored) {
		writeError(w, http.StatusNotFound, "favicon not stored")
		return
	}
	if err != nil {
		s.logger.Warn("reading stored favicon", logging.Field{Key: "site", Value: site}, logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeFavicon(w, fav)
}

// @Summary Liveness probe
// @Tags operations
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// writeFavicon serves the icon bytes. Unknown kinds carry a content type
// chosen by the remote page, so they go out as opaque octets.
func writeFavicon(w http.ResponseWriter, fav *model.Favicon) {
	ct := fav.Mime.String()
	if !fav.Mime.Known() || ct == "" {
		ct = octetStream
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if fav.Mime == mimetype.SVG {
		w.Header().Set("Content-Security-Policy", "sandbox")
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(fav.Data)))
	if fav.SourceURL != "" {
		w.Header().Set("X-Favicon-Source", fav.SourceURL)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(fav.Data)
}
