package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aretw0/historyviewer/pkg/domain"
	"github.com/oapi-codegen/runtime"
)

// SubscribeEventsParams are the query parameters of GET /events.
type SubscribeEventsParams struct {
	SessionID string  `form:"session_id" json:"session_id"`
	Watch     *string `form:"watch,omitempty" json:"watch,omitempty"`
}

// SubscribeEvents handles the GET /events request (SSE).
// Every selection change of the session is sent as a JSON delta.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	var params SubscribeEventsParams
	if err := runtime.BindQueryParameter("form", true, true, "session_id", r.URL.Query(), &params.SessionID); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "watch", r.URL.Query(), &params.Watch); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sessionID := params.SessionID
	s.logger.Info("SSE: Subscribing to selection updates", "session_id", sessionID)

	ch, cancel := s.Viewer.Subscribe(sessionID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	var watchList []string
	if params.Watch != nil {
		watchList = strings.Split(*params.Watch, ",")
	}

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE client disconnected", "session_id", sessionID)
			return
		case u, ok := <-ch:
			if !ok {
				return
			}
			if u.Delta == nil || !watches(watchList, u.Delta) {
				continue
			}
			payload, err := json.Marshal(u.Delta)
			if err != nil {
				s.logger.Error("SSE: delta encode failed", "err", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// watches reports whether the delta touches any watched part of the
// selection. An empty list watches everything.
func watches(watchList []string, d *domain.SelectionDelta) bool {
	if len(watchList) == 0 {
		return true
	}
	for _, field := range watchList {
		switch strings.TrimSpace(field) {
		case "phase":
			if d.Phase != nil {
				return true
			}
		case "active":
			if d.Active != nil {
				return true
			}
		case "from":
			if d.VersionFrom != nil {
				return true
			}
		case "to":
			if d.VersionTo != nil {
				return true
			}
		case "current":
			if d.Current != nil {
				return true
			}
		}
	}
	return false
}
