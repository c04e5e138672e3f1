package server

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Server is the monitor's API-only HTTP server: a mux, its route handler,
// and the address it listens on.
type Server struct {
	mux     *http.ServeMux
	handler *Handlers
	addr    string
}

// NewServer builds a Server wired to handler's routes.
func NewServer(addr string, handler *Handlers) *Server {
	s := &Server{
		mux:     http.NewServeMux(),
		handler: handler,
		addr:    addr,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/status", s.handler.HandleStatus)
	s.mux.HandleFunc("/ws", s.handler.HandleWebSocket)
}

// Start runs the HTTP server, blocking until it exits or errors.
func (s *Server) Start() error {
	log.Info().Str("addr", s.addr).Msg("starting pulse monitor")
	fmt.Printf("\n  Pulse monitor running at http://%s\n\n", s.addr)
	return http.ListenAndServe(s.addr, s.mux)
}
