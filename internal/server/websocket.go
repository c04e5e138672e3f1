// Package server implements a live monitor of the detector: an HTTP +
// WebSocket service that broadcasts emitted pulse/gap packages and the
// attenuation histogram to connected clients.
package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local development / LAN monitor, not public-facing
	},
}

// WSMessage is the envelope every broadcast message uses.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// PackagePayload reports one emitted pulse.PulseData package.
type PackagePayload struct {
	Code            string `json:"code"`
	SampleRate      int    `json:"sampleRate"`
	Offset          int64  `json:"offset"`
	NumPulses       int    `json:"numPulses"`
	FSKF1Est        int    `json:"fskF1Est,omitempty"`
	FSKF2Est        int    `json:"fskF2Est,omitempty"`
	OOKLowEstimate  int    `json:"ookLowEstimate"`
	OOKHighEstimate int    `json:"ookHighEstimate"`
}

// HistogramPayload reports the current attenuation histogram, re-sent
// periodically rather than per-sample.
type HistogramPayload struct {
	Buckets []int `json:"buckets"`
	Total   int   `json:"total"`
}

// WSHub tracks connected monitor clients and fans out broadcasts to all of
// them.
type WSHub struct {
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewWSHub creates an empty hub.
func NewWSHub() *WSHub {
	return &WSHub{clients: make(map[*websocket.Conn]bool)}
}

// AddClient registers a newly upgraded connection.
func (h *WSHub) AddClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
	log.Info().Int("clients", len(h.clients)).Msg("monitor client connected")
}

// RemoveClient unregisters and closes a connection.
func (h *WSHub) RemoveClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	conn.Close()
	log.Info().Int("clients", len(h.clients)).Msg("monitor client disconnected")
}

// Broadcast sends msg to every connected client, dropping any that error
// (they're cleaned up asynchronously via RemoveClient).
func (h *WSHub) Broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("marshal monitor message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			go h.RemoveClient(conn)
		}
	}
}

// BroadcastPackage pushes one emitted package event to all clients.
func (h *WSHub) BroadcastPackage(p PackagePayload) {
	h.Broadcast(WSMessage{Type: "package", Payload: p})
}

// BroadcastHistogram pushes the current attenuation histogram snapshot.
func (h *WSHub) BroadcastHistogram(p HistogramPayload) {
	h.Broadcast(WSMessage{Type: "histogram", Payload: p})
}
