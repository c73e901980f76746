/*
Package client contains the core logic of the chat client: the websocket
transport and the synchronization controller binding it to the conversation
store.

This file defines the Transport struct, owning one websocket connection to
the chat server. It manages the connection lifecycle, the read and write
pumps, and heartbeats. Reconnection is never automatic: a lost connection is
terminal for the attempt, and a fresh Dial is a distinct attempt decided by
the caller.
*/
package client

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"tabchat/internal/pkg/errs"
	"tabchat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the websocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed to wait for a Pong message from the server.
	pongWait = 60 * time.Second

	// frequency at which the client sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the server.
	maxMessageSize = 8192

	// capacity of the outbound frame queue.
	sendChannelBuffer = 256
)

// Transport owns one bidirectional websocket connection. Inbound frames and
// the connection-closed signal are delivered through the callbacks given at
// construction; the close callback fires exactly once per successful Dial,
// whether the connection ended normally or on error.
type Transport struct {
	// handshakeTimeout bounds the websocket dial.
	handshakeTimeout time.Duration

	// onFrame receives every raw inbound frame, in arrival order.
	onFrame func(raw []byte)

	// onClose receives the terminal error of the connection, or nil on a
	// locally initiated close.
	onClose func(cause *errs.CustomError)

	// mu protects the per-connection fields below.
	mu sync.Mutex

	// underlying websocket connection object, nil while disconnected.
	conn *websocket.Conn

	// a buffered channel used to queue frames waiting to be written.
	send chan []byte

	// done is closed when the current connection tears down.
	done chan struct{}

	// closeOnce guards the teardown of the current connection.
	closeOnce *sync.Once

	// structured logger with transport context.
	logger zerolog.Logger
}

// NewTransport constructs a Transport delivering frames and the close signal
// through the given callbacks. Neither callback may be nil.
func NewTransport(handshakeTimeout time.Duration, onFrame func([]byte), onClose func(*errs.CustomError)) *Transport {
	return &Transport{
		handshakeTimeout: handshakeTimeout,
		onFrame:          onFrame,
		onClose:          onClose,
		logger:           logx.Logger().With().Str("component", "transport").Logger(),
	}
}

// Dial establishes the websocket connection and starts the read and write
// pumps. Dialing while a connection is live is rejected.
func (t *Transport) Dial(ctx context.Context, serverURL string) *errs.CustomError {
	t.mu.Lock()
	if t.conn != nil {
		t.mu.Unlock()
		return errs.NewError(errs.ErrAlreadyConnected)
	}
	t.mu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: t.handshakeTimeout}

	conn, _, err := dialer.DialContext(ctx, serverURL, nil)
	if err != nil {
		t.logger.Warn().Err(err).Str("server_url", serverURL).Msg("Dial failed")
		return errs.NewError(errs.ErrConnectFailed)
	}

	t.mu.Lock()
	if t.conn != nil {
		// A concurrent Dial won the race; this connection is surplus.
		t.mu.Unlock()
		conn.Close()
		return errs.NewError(errs.ErrAlreadyConnected)
	}
	t.conn = conn
	t.send = make(chan []byte, sendChannelBuffer)
	t.done = make(chan struct{})
	t.closeOnce = &sync.Once{}
	send, done, once := t.send, t.done, t.closeOnce
	t.mu.Unlock()

	t.logger.Info().Str("server_url", serverURL).Msg("Connection established")

	go t.writePump(conn, send, done)
	go t.readPump(conn, done, once)

	return nil
}

// Send queues one frame for writing. Frames are dropped, never buffered
// across connections: sending while disconnected or with a full queue fails.
func (t *Transport) Send(frame []byte) *errs.CustomError {
	t.mu.Lock()
	conn, send := t.conn, t.send
	t.mu.Unlock()

	if conn == nil {
		return errs.NewError(errs.ErrNotConnected)
	}

	select {
	case send <- frame:
		return nil
	default:
		t.logger.Warn().Int("queue_len", len(send)).Msg("Send queue full, dropping frame")
		return errs.NewError(errs.ErrWriteFailed)
	}
}

// Close tears down the current connection, if any. The close callback fires
// with a nil cause.
func (t *Transport) Close() {
	t.mu.Lock()
	conn, once := t.conn, t.closeOnce
	t.mu.Unlock()

	if conn == nil {
		return
	}

	t.teardown(conn, once, nil)
}

// readPump reads frames from the websocket connection and hands them to the
// frame callback in arrival order. It owns the read deadline and the Pong
// handler, and triggers teardown when the connection dies.
func (t *Transport) readPump(conn *websocket.Conn, done chan struct{}, once *sync.Once) {
	conn.SetReadLimit(maxMessageSize)

	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		t.logger.Error().Err(err).Msg("Failed to set read deadline")
		t.teardown(conn, once, errs.NewError(errs.ErrConnectionClosed))
		return
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			var cause *errs.CustomError
			select {
			case <-done:
				// Locally initiated close; the cause was already reported.
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					t.logger.Warn().Err(err).Msg("Connection lost")
				} else {
					t.logger.Info().Err(err).Msg("Connection closed by server")
				}
				cause = errs.NewError(errs.ErrConnectionClosed)
			}
			t.teardown(conn, once, cause)
			return
		}

		t.onFrame(frame)
	}
}

// writePump writes queued frames to the websocket connection and sends
// periodic Ping messages to maintain the heartbeat.
func (t *Transport) writePump(conn *websocket.Conn, send chan []byte, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame := <-send:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				t.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				t.logger.Error().Err(err).Msg("Error writing frame")
				return
			}

		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				t.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				t.logger.Error().Err(err).Msg("Error writing ping")
				return
			}

		case <-done:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")); err != nil {
				t.logger.Debug().Err(err).Msg("Error writing close message")
			}
			return
		}
	}
}

// teardown closes the connection exactly once, detaches it from the
// transport, and fires the close callback with the given cause.
func (t *Transport) teardown(conn *websocket.Conn, once *sync.Once, cause *errs.CustomError) {
	once.Do(func() {
		t.mu.Lock()
		if t.conn == conn {
			t.conn = nil
			t.send = nil
			close(t.done)
			t.done = nil
		}
		t.mu.Unlock()

		if err := conn.Close(); err != nil {
			t.logger.Debug().Err(err).Msg("Connection close error")
		}

		t.logger.Info().Msg("Connection teardown complete")
		t.onClose(cause)
	})
}
