package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/cado/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // NotebookID -> Set of Channels
	logger      *slog.Logger
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a channel for the notebook. The returned func
// unregisters and closes it.
func (sm *StreamManager) Subscribe(notebookID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[notebookID]; !ok {
		sm.subscribers[notebookID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[notebookID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[notebookID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, notebookID)
			}
		}
	}
}

// Broadcast sends msg to every subscriber of the notebook.
func (sm *StreamManager) Broadcast(notebookID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[notebookID] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "notebook", notebookID)
		}
	}
}

// Observe is a session.Observer publishing notebook diffs.
func (sm *StreamManager) Observe(_ context.Context, diff *domain.NotebookDiff) {
	data, err := json.Marshal(diff)
	if err != nil {
		sm.logger.Error("SSE: diff encode failed", "notebook", diff.NotebookID, "err", err)
		return
	}
	sm.Broadcast(diff.NotebookID, string(data))
}

// SubscribeEvents handles the GET /notebooks/{id}/events request (SSE).
// The optional watch parameter ("cells,order,name") drops diffs that touch
// none of the listed fields.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := s.Manager.Load(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	var watchList []string
	if watch := r.URL.Query().Get("watch"); watch != "" {
		watchList = strings.Split(watch, ",")
	}

	s.logger.Info("SSE: Subscribing to notebook updates", "notebook", id)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "notebook", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watchList) > 0 && !watched(msg, watchList) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func watched(msg string, fields []string) bool {
	var diff domain.NotebookDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range fields {
		switch strings.TrimSpace(field) {
		case "cells":
			if len(diff.Cells) > 0 || len(diff.Removed) > 0 {
				return true
			}
		case "order":
			if diff.Order != nil {
				return true
			}
		case "name":
			if diff.Name != nil {
				return true
			}
		}
	}
	return false
}
