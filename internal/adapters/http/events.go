package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/easel/pkg/domain"
)

// subscribeEvents streams interaction events as server-sent events. With an
// attached observability stream every hook event goes out under its event
// type, filterable through ?watch=type,type. Without one the handler falls
// back to the loader's change signal and emits bare reload events.
func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	if s.Stream == nil {
		s.watchReloads(w, r, flusher)
		return
	}

	var wanted map[domain.EventType]bool
	if raw := r.URL.Query().Get("watch"); raw != "" {
		wanted = make(map[domain.EventType]bool)
		for _, t := range strings.Split(raw, ",") {
			wanted[domain.EventType(strings.TrimSpace(t))] = true
		}
	}

	events, cancel := s.Stream.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if wanted != nil && !wanted[e.Type] {
				continue
			}
			data, err := json.Marshal(e.Payload)
			if err != nil {
				slog.Error("marshal event", "type", e.Type, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, data)
			flusher.Flush()
		}
	}
}

func (s *Server) watchReloads(w http.ResponseWriter, r *http.Request, flusher http.Flusher) {
	changes, err := s.Engine.Watch(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotImplemented)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: reload\ndata: {}\n\n")
			flusher.Flush()
		}
	}
}
