/*
Package stub provides an in-memory, protocol-conformant chat server double.

This file defines the session struct, one client connection: its read and
write pumps and the handling of inbound command frames.
*/
package stub

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"tabchat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the websocket connection.
	sessionWriteWait = 10 * time.Second

	// maximum allowed size (in bytes) of a frame sent by the client.
	sessionMaxFrameSize = 8192

	// capacity of the per-session outbound frame queue.
	sessionSendBuffer = 64
)

// session represents one connected client of the stub server.
type session struct {
	// the hub this session belongs to.
	hub *Hub

	// underlying websocket connection object.
	conn *websocket.Conn

	// username is set by the session's set_username frame; empty before.
	username string

	// a buffered channel used to queue frames waiting to be sent.
	send chan []byte

	// structured logger with session context.
	logger zerolog.Logger
}

// commandFrame is the superset envelope of every client command shape.
type commandFrame struct {
	Type      string `json:"type"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	Recipient string `json:"recipient"`
	OtherUser string `json:"otherUser"`
}

// newSession constructs a session for an accepted connection.
func newSession(hub *Hub, conn *websocket.Conn) *session {
	return &session{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sessionSendBuffer),
		logger: logx.Logger().With().Str("component", "stub_session").Logger(),
	}
}

// run services the connection until it closes, then unregisters the session.
func (s *session) run() {
	go s.writePump()
	s.readPump()
	s.hub.unregister(s)
}

// readPump reads command frames from the client and dispatches them.
// Malformed frames are logged and dropped, mirroring the real server's
// tolerance.
func (s *session) readPump() {
	defer s.conn.Close()

	s.conn.SetReadLimit(sessionMaxFrameSize)

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Info().Err(err).Msg("Session read error")
			}
			return
		}

		s.handleCommand(raw)
	}
}

// handleCommand applies one client command to the hub.
func (s *session) handleCommand(raw []byte) {
	var frame commandFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		s.logger.Warn().Err(err).Bytes("frame", raw).Msg("Client sent invalid JSON")
		return
	}

	switch frame.Type {
	case "set_username":
		if frame.Username == "" || s.username != "" {
			s.logger.Warn().Str("username", frame.Username).Msg("Ignoring invalid set_username")
			return
		}
		s.username = frame.Username
		s.hub.register(s, frame.Username)

	case "chat_message":
		if s.username == "" || frame.Text == "" {
			return
		}
		s.hub.broadcastMain(s.username, frame.Text)

	case "private_message":
		if s.username == "" || frame.Text == "" || frame.Recipient == "" {
			return
		}
		s.hub.routePrivate(s.username, frame.Recipient, frame.Text)

	case "get_private_history":
		if s.username == "" || frame.OtherUser == "" {
			return
		}
		s.hub.sendPrivateHistory(s, frame.OtherUser)

	default:
		s.logger.Warn().Str("frame_type", frame.Type).Msg("Client sent unsupported frame type")
	}
}

// writePump writes queued frames to the websocket connection.
func (s *session) writePump() {
	defer s.conn.Close()

	for frame := range s.send {
		if err := s.conn.SetWriteDeadline(time.Now().Add(sessionWriteWait)); err != nil {
			s.logger.Error().Err(err).Msg("Failed to set write deadline")
			return
		}

		if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			s.logger.Error().Err(err).Msg("Error writing frame")
			return
		}
	}
}

// deliver places a frame onto the outbound queue without blocking. Frames
// for a slow session are dropped to keep the hub responsive.
func (s *session) deliver(frame []byte) {
	select {
	case s.send <- frame:
	default:
		s.logger.Warn().Str("username", s.username).Msg("Session send queue full, dropping frame")
	}
}

// kick closes a session that was replaced by a newer connection under the
// same username.
func (s *session) kick() {
	s.logger.Warn().Str("username", s.username).Msg("Kicking replaced session")
	s.conn.Close()
}
