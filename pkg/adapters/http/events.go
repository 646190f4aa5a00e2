package http

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// SubscribeEvents handles GET /sessions/{id}/events (SSE).
// Each snapshot is sent as an "event: snapshot" message. The stream ends when
// the client disconnects or the session is closed.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	updates, cancel := sess.Subscribe()
	defer cancel()

	s.logger.Info("SSE: subscribed", "session_id", sess.ID())
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "session_id", sess.ID())
			return
		case snap, ok := <-updates:
			if !ok {
				fmt.Fprintf(w, "event: closed\ndata: %s\n\n", sess.ID())
				flusher.Flush()
				return
			}
			data, err := json.Marshal(snap)
			if err != nil {
				s.logger.Error("SSE: encode snapshot", "err", err)
				continue
			}
			fmt.Fprintf(w, "id: %d\nevent: snapshot\ndata: %s\n\n", snap.Version, data)
			flusher.Flush()
		}
	}
}
