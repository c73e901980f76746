/*
Package stub provides an in-memory, protocol-conformant chat server double.

This file defines the HTTP surface of the double: a chi router exposing the
websocket endpoint at / (where the real server lives) plus a health check,
wrapped in CORS and request logging middleware so browser clients can be
pointed at it during development.
*/
package stub

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"tabchat/internal/pkg/logx"
)

// Server is the stub chat server: a Hub behind a websocket endpoint.
type Server struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewServer creates a stub server with an empty hub. Origin checks are
// disabled; the stub is a development and test double, never deployed.
func NewServer() *Server {
	return &Server{
		hub: NewHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Hub exposes the stub's state, for test assertions.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Router returns the stub's HTTP routing table: the websocket endpoint on /
// and a health check on /healthz.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	})
	r.Use(corsHandler.Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/", s.handleWebSocket)

	return r
}

// handleWebSocket upgrades the connection and services it until it closes.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logx.Error(err, "Failed to upgrade connection to websocket")
		return
	}

	sess := newSession(s.hub, conn)
	sess.run()
}
