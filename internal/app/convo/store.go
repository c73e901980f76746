/*
Package convo contains the in-memory conversation model of the chat client.

This file defines the Store struct, holding the main channel log, every open
private conversation, and the current roster. Mutations are total functions
of current state and event; logs are append-only and only an explicit close
removes a conversation. The Store performs no I/O and emits no commands:
deciding when to fetch or send is the controller's job.
*/
package convo

import (
	"sort"
	"sync"

	"tabchat/internal/app/protocol"
)

// MainKey is the conversation key of the main channel. Private conversations
// are keyed by the counterpart's display name, which is never empty.
const MainKey = ""

// conversation is one open private channel.
type conversation struct {
	// messages is the append-only log, in arrival order.
	messages []protocol.PrivateMessage

	// historyRequested marks that a history fetch was issued for the current
	// open span of this conversation.
	historyRequested bool
}

// Store is the in-memory model of all conversations. It is owned by the
// controller; rendering layers read it only through the copying accessors.
type Store struct {
	// mu protects all fields below. Reads from the rendering layer may be
	// concurrent with controller mutations.
	mu sync.RWMutex

	// users is the latest roster snapshot, replaced wholesale.
	users []string

	// main is the main-channel log.
	main []protocol.Message

	// private maps counterpart display names to their open conversations.
	private map[string]*conversation
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		private: make(map[string]*conversation),
	}
}

// ReplaceRoster overwrites the set of online users.
func (s *Store) ReplaceRoster(users []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = append([]string(nil), users...)
}

// AppendMain appends one message to the main-channel log.
func (s *Store) AppendMain(msg protocol.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.main = append(s.main, msg)
}

// ReplaceMainHistory overwrites the main-channel log wholesale. The server
// sends the history once, right after the identity handshake.
func (s *Store) ReplaceMainHistory(msgs []protocol.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.main = append([]protocol.Message(nil), msgs...)
}

// RoutePrivate appends a private message to the conversation with its
// counterpart, creating the conversation if absent. The counterpart is
// whichever of sender and recipient is not the local identity, so the
// sender's echo and the recipient's copy land in the same conversation.
// It returns the counterpart key the message was routed to.
func (s *Store) RoutePrivate(msg protocol.PrivateMessage, localIdentity string) string {
	counterpart := msg.Counterpart(localIdentity)

	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.private[counterpart]
	if !ok {
		conv = &conversation{}
		s.private[counterpart] = conv
	}
	conv.messages = append(conv.messages, msg)

	return counterpart
}

// ReplacePrivateHistory overwrites the log of the conversation with
// counterpart. A history arriving for a conversation that is no longer open
// is ignored; it reports whether the history was applied.
func (s *Store) ReplacePrivateHistory(counterpart string, msgs []protocol.PrivateMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.private[counterpart]
	if !ok {
		return false
	}

	conv.messages = append([]protocol.PrivateMessage(nil), msgs...)
	return true
}

// OpenPrivate creates the conversation with counterpart if absent. It
// reports whether a history fetch is needed, which is true only the first
// time the conversation opens; reopening an already-open conversation never
// re-fetches.
func (s *Store) OpenPrivate(counterpart string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.private[counterpart]
	if !ok {
		conv = &conversation{}
		s.private[counterpart] = conv
	}

	if conv.historyRequested {
		return false
	}
	conv.historyRequested = true
	return true
}

// ClosePrivate removes the conversation with counterpart and reports whether
// it existed. A later open starts a fresh conversation with a fresh history
// fetch.
func (s *Store) ClosePrivate(counterpart string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.private[counterpart]; !ok {
		return false
	}

	delete(s.private, counterpart)
	return true
}

// HasConversation reports whether a private conversation with counterpart is open.
func (s *Store) HasConversation(counterpart string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.private[counterpart]
	return ok
}

// Users returns a copy of the current roster.
func (s *Store) Users() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.users...)
}

// MainMessages returns a copy of the main-channel log.
func (s *Store) MainMessages() []protocol.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]protocol.Message(nil), s.main...)
}

// PrivateMessages returns a copy of the log of the conversation with
// counterpart, and whether that conversation is open.
func (s *Store) PrivateMessages(counterpart string) ([]protocol.PrivateMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.private[counterpart]
	if !ok {
		return nil, false
	}

	return append([]protocol.PrivateMessage(nil), conv.messages...), true
}

// Conversations returns the sorted counterpart keys of all open private
// conversations, for tab rendering.
func (s *Store) Conversations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.private))
	for key := range s.private {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}
