/*
Package stub provides an in-memory, protocol-conformant chat server double.

It exists for integration tests and local development of rendering layers;
it implements the same wire protocol the real server speaks (set_username,
chat_message, private_message, get_private_history and their event
counterparts) but stores everything in process memory.

This file defines the Hub struct, the shared state of the double: the set of
named sessions, the main-channel history, and the per-pair private
histories.
*/
package stub

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tabchat/internal/app/protocol"
	"tabchat/internal/pkg/logx"
)

// Hub holds the shared chat state of the stub server.
type Hub struct {
	// mu protects all fields below.
	mu sync.RWMutex

	// sessions maps usernames to their live connections. A session appears
	// here only after its set_username frame.
	sessions map[string]*session

	// mainHistory is the append-only main-channel log.
	mainHistory []protocol.Message

	// privateHistory maps a pair key (both names, sorted) to that pair's log.
	privateHistory map[string][]protocol.PrivateMessage

	// now supplies timestamps; tests may pin it.
	now func() time.Time

	// structured logger with hub context.
	logger zerolog.Logger
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		sessions:       make(map[string]*session),
		privateHistory: make(map[string][]protocol.PrivateMessage),
		now:            time.Now,
		logger:         logx.Logger().With().Str("component", "stub_hub").Logger(),
	}
}

// pairKey builds the canonical map key for a two-party conversation.
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// timestamp returns the current time in Unix milliseconds, the protocol's
// timestamp unit.
func (h *Hub) timestamp() int64 {
	return h.now().UnixMilli()
}

// register names a session and brings it up to date: it receives the main
// history, and everyone receives a fresh roster.
func (h *Hub) register(s *session, username string) {
	h.mu.Lock()

	if existing, ok := h.sessions[username]; ok && existing != s {
		h.logger.Warn().Str("username", username).Msg("Username already connected, replacing old session")
		existing.kick()
	}

	h.sessions[username] = s
	history := append([]protocol.Message(nil), h.mainHistory...)
	h.mu.Unlock()

	// An empty history must still marshal as [], never null.
	if history == nil {
		history = []protocol.Message{}
	}

	s.deliver(encodeEvent(struct {
		Type     protocol.EventType `json:"type"`
		Messages []protocol.Message `json:"messages"`
	}{protocol.EventChatHistory, history}))

	h.broadcastRoster()

	h.logger.Info().Str("username", username).Msg("User joined")
}

// unregister removes a session, if it was the one registered under its
// name, and refreshes everyone's roster.
func (h *Hub) unregister(s *session) {
	if s.username == "" {
		return
	}

	h.mu.Lock()
	current, ok := h.sessions[s.username]
	if ok && current == s {
		delete(h.sessions, s.username)
	}
	h.mu.Unlock()

	if ok && current == s {
		h.broadcastRoster()
		h.logger.Info().Str("username", s.username).Msg("User left")
	}
}

// broadcastMain appends a main-channel message and fans it out to every
// named session, the author included.
func (h *Hub) broadcastMain(author, text string) {
	msg := protocol.Message{
		Username:  author,
		Text:      text,
		Timestamp: h.timestamp(),
	}

	frame := encodeEvent(struct {
		Type    protocol.EventType `json:"type"`
		Message protocol.Message   `json:"message"`
	}{protocol.EventChatMessage, msg})

	h.mu.Lock()
	h.mainHistory = append(h.mainHistory, msg)
	targets := h.allSessions()
	h.mu.Unlock()

	for _, s := range targets {
		s.deliver(frame)
	}
}

// routePrivate appends a private message to the pair history and echoes it
// to both endpoints. The sender always receives the echo; the client relies
// on it instead of an optimistic local append.
func (h *Hub) routePrivate(sender, recipient, text string) {
	msg := protocol.PrivateMessage{
		Sender:    sender,
		Recipient: recipient,
		Text:      text,
		Timestamp: h.timestamp(),
	}

	frame := encodeEvent(struct {
		Type    protocol.EventType      `json:"type"`
		Message protocol.PrivateMessage `json:"message"`
	}{protocol.EventPrivateMessage, msg})

	key := pairKey(sender, recipient)

	h.mu.Lock()
	h.privateHistory[key] = append(h.privateHistory[key], msg)
	senderSession := h.sessions[sender]
	recipientSession := h.sessions[recipient]
	h.mu.Unlock()

	if senderSession != nil {
		senderSession.deliver(frame)
	}
	if recipientSession != nil && recipient != sender {
		recipientSession.deliver(frame)
	}
}

// sendPrivateHistory replies to one session with the stored history of its
// conversation with otherUser.
func (h *Hub) sendPrivateHistory(s *session, otherUser string) {
	h.mu.RLock()
	history := append([]protocol.PrivateMessage(nil), h.privateHistory[pairKey(s.username, otherUser)]...)
	h.mu.RUnlock()

	if history == nil {
		history = []protocol.PrivateMessage{}
	}

	s.deliver(encodeEvent(struct {
		Type      protocol.EventType        `json:"type"`
		OtherUser string                    `json:"otherUser"`
		History   []protocol.PrivateMessage `json:"history"`
	}{protocol.EventPrivateHistory, otherUser, history}))
}

// broadcastRoster fans the sorted list of online usernames out to every
// named session.
func (h *Hub) broadcastRoster() {
	h.mu.RLock()
	users := make([]string, 0, len(h.sessions))
	for username := range h.sessions {
		users = append(users, username)
	}
	targets := h.allSessions()
	h.mu.RUnlock()

	sort.Strings(users)

	frame := encodeEvent(struct {
		Type  protocol.EventType `json:"type"`
		Users []string           `json:"users"`
	}{protocol.EventUserList, users})

	for _, s := range targets {
		s.deliver(frame)
	}
}

// MainHistory returns a copy of the main-channel log, for test assertions.
func (h *Hub) MainHistory() []protocol.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return append([]protocol.Message(nil), h.mainHistory...)
}

// OnlineUsers returns the sorted usernames of the named sessions.
func (h *Hub) OnlineUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]string, 0, len(h.sessions))
	for username := range h.sessions {
		users = append(users, username)
	}
	sort.Strings(users)

	return users
}

// SeedMainHistory preloads the main-channel log, for tests that need prior
// messages before any client connects.
func (h *Hub) SeedMainHistory(msgs []protocol.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.mainHistory = append([]protocol.Message(nil), msgs...)
}

// allSessions snapshots the named sessions. Callers hold h.mu.
func (h *Hub) allSessions() []*session {
	targets := make([]*session, 0, len(h.sessions))
	for _, s := range h.sessions {
		targets = append(targets, s)
	}
	return targets
}

// encodeEvent marshals a server event frame. The shapes are fixed structs,
// so marshaling cannot fail; a failure would be a programming error.
func encodeEvent(frame any) []byte {
	raw, err := json.Marshal(frame)
	if err != nil {
		logx.Fatal(err, "Failed to encode stub server event")
	}
	return raw
}
