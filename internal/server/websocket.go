package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/raysh454/favicond/internal/logging"
	"github.com/raysh454/favicond/internal/model"
)

const wsWriteWait = 10 * time.Second

// handleFaviconsWS streams one message per site as it completes.
//
// @Summary Stream batch outcomes
// @Tags favicons
// @Param site query []string true "Site identifiers" collectionFormat(multi)
// @Success 101 {object} StreamMessage
// @Failure 400 {object} ErrorResponse
// @Router /ws/favicons [get]
func (s *Server) handleFaviconsWS(w http.ResponseWriter, r *http.Request) {
	sites := r.URL.Query()["site"]
	if len(sites) == 0 {
		writeError(w, http.StatusBadRequest, "no sites given")
		return
	}
	if limit := s.cfg.MaxBatchSize; limit > 0 && len(sites) > limit {
		writeError(w, http.StatusRequestEntityTooLarge, "too many sites")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Drain client frames so a close from the peer cancels the batch.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	var (
		mu     sync.Mutex
		broken bool
	)
	send := func(msg StreamMessage) {
		mu.Lock()
		defer mu.Unlock()
		if broken {
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(msg); err != nil {
			s.logger.Warn("writing websocket message", logging.Field{Key: "error", Value: err.Error()})
			broken = true
			cancel()
		}
	}

	res := s.app.Batch.ResolveEach(ctx, sites, func(i int, o model.Outcome) {
		out := toOutcomeResponse(o)
		send(StreamMessage{Type: "outcome", Index: i, Outcome: &out})
	})

	send(StreamMessage{
		Type:      "done",
		BatchID:   res.ID.String(),
		Found:     res.Found(),
		Total:     len(res.Outcomes),
		ElapsedMS: res.Elapsed.Milliseconds(),
	})
	s.logger.Info("streamed batch",
		logging.Field{Key: "batch_id", Value: res.ID.String()},
		logging.Field{Key: "sites", Value: len(sites)},
		logging.Field{Key: "found", Value: res.Found()})
}
