package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"lection/internal/service"

	"github.com/gorilla/mux"
)

// ObserveHandler serves the live snapshot streams over SSE. Each
// connection gets its own polling loop from the broadcaster; the stream
// ends when the client disconnects.
type ObserveHandler struct {
	broadcaster *service.Broadcaster
}

// NewObserveHandler creates a new observe handler
func NewObserveHandler(broadcaster *service.Broadcaster) *ObserveHandler {
	return &ObserveHandler{broadcaster: broadcaster}
}

// Host handles GET /v1/lobbies/{joincode}/host. Disconnecting this stream
// closes the lobby.
func (h *ObserveHandler) Host(w http.ResponseWriter, r *http.Request) {
	joincode, ok := joinCodeVar(w, r)
	if !ok {
		return
	}

	flusher, ok := sseHeaders(w)
	if !ok {
		return
	}

	for snap := range h.broadcaster.ObserveHost(r.Context(), joincode) {
		writeEvent(w, flusher, snap)
	}
}

// Participant handles GET /v1/lobbies/{joincode}/participant/{userid}
func (h *ObserveHandler) Participant(w http.ResponseWriter, r *http.Request) {
	joincode, ok := joinCodeVar(w, r)
	if !ok {
		return
	}
	userid := mux.Vars(r)["userid"]

	flusher, ok := sseHeaders(w)
	if !ok {
		return
	}

	for snap := range h.broadcaster.ObserveParticipant(r.Context(), joincode, userid) {
		writeEvent(w, flusher, snap)
	}
}

func sseHeaders(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return nil, false
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return flusher, true
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, snap any) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data:%s\n\n", data)
	flusher.Flush()
}
