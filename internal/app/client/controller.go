/*
Package client contains the core logic of the chat client: the websocket
transport and the synchronization controller binding it to the conversation
store.

This file defines the Controller struct, the state machine that owns the
connection lifecycle, classifies inbound protocol events, routes them to
conversation-store mutations, and builds outbound commands from user
intents. Events and intents are each handled to completion under one lock,
so store mutations are atomic and applied in arrival order.
*/
package client

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tabchat/internal/app/convo"
	"tabchat/internal/app/protocol"
	"tabchat/internal/pkg/errs"
	"tabchat/internal/pkg/limiter"
	"tabchat/internal/pkg/logx"
	"tabchat/internal/pkg/randx"
)

// ConnectionState describes the transport link as seen by rendering layers.
type ConnectionState int

const (
	// StateDisconnected means no live connection. Terminal for a connection
	// attempt; only an explicit Connect leaves it.
	StateDisconnected ConnectionState = iota

	// StateConnecting means a dial is in flight.
	StateConnecting

	// StateConnected means the link is up.
	StateConnected
)

// String returns the display name of the connection state.
func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// connection is the transport surface the Controller drives. It is satisfied
// by *Transport and by test fakes.
type connection interface {
	Dial(ctx context.Context, serverURL string) *errs.CustomError
	Send(frame []byte) *errs.CustomError
	Close()
}

// Controller is the synchronization state machine of the chat client. It
// exclusively owns the conversation store and the transport; rendering
// layers read state through the accessors and submit intents through the
// exported methods.
type Controller struct {
	// conn is the transport the controller drives.
	conn connection

	// store holds all conversation state.
	store *convo.Store

	// sendLimiter throttles outbound chat and private-message commands.
	sendLimiter *limiter.SendLimiter

	// serverURL is the websocket endpoint to dial.
	serverURL string

	// intents and inbound events serialize on this semaphore; each event
	// runs to completion before the next is dispatched.
	sem chan struct{}

	// connState mirrors the transport link for display.
	connState ConnectionState

	// identity is the confirmed local display name, empty until set. Once
	// set it is immutable for the session.
	identity string

	// activeKey is the conversation the rendering layer currently shows:
	// convo.MainKey or a private counterpart.
	activeKey string

	// lastErr is the most recent transport error, surfaced for display.
	lastErr *errs.CustomError

	// notify coalesces change notifications for renderers.
	notify chan struct{}

	// structured logger with controller context.
	logger zerolog.Logger
}

// Options configures a Controller.
type Options struct {
	// ServerURL is the websocket endpoint of the chat server.
	ServerURL string

	// HandshakeTimeout bounds the websocket dial.
	HandshakeTimeout time.Duration

	// SendRate and SendBurst parameterize the outbound send throttle.
	SendRate  float64
	SendBurst int
}

// NewController constructs a Controller with its own Transport. The
// transport's lifecycle is tied to the controller; it is never shared.
func NewController(opts Options) *Controller {
	c := newController(nil, opts)
	c.conn = NewTransport(opts.HandshakeTimeout, c.handleFrame, c.handleTransportClose)
	return c
}

// newController wires everything but the transport; tests inject fakes here.
func newController(conn connection, opts Options) *Controller {
	c := &Controller{
		conn:        conn,
		store:       convo.NewStore(),
		sendLimiter: limiter.NewSendLimiter(opts.SendRate, opts.SendBurst),
		serverURL:   opts.ServerURL,
		sem:         make(chan struct{}, 1),
		activeKey:   convo.MainKey,
		notify:      make(chan struct{}, 1),
		logger:      logx.Logger().With().Str("component", "controller").Logger(),
	}
	return c
}

// acquire serializes event handling; release must follow.
func (c *Controller) acquire() { c.sem <- struct{}{} }
func (c *Controller) release() { <-c.sem }

// Connect dials the chat server. Connection loss is terminal for the
// attempt; callers decide if and when to call Connect again. On a re-dial
// the session's identity, once set, is registered with the server anew.
func (c *Controller) Connect(ctx context.Context) *errs.CustomError {
	c.acquire()
	if c.connState != StateDisconnected {
		c.release()
		return errs.NewError(errs.ErrAlreadyConnected)
	}
	c.connState = StateConnecting
	c.release()
	c.signal()

	err := c.conn.Dial(ctx, c.serverURL)

	c.acquire()
	if err != nil {
		c.connState = StateDisconnected
		c.lastErr = err
	} else if c.connState == StateConnecting {
		// The transport close callback may have raced the dial return; only
		// a still-pending attempt is promoted to Connected.
		c.connState = StateConnected
		c.lastErr = nil

		// The server tracks names per connection, so a re-dial of an
		// already-identified session must register the name again. Failure
		// here surfaces through the transport close callback.
		if c.identity != "" {
			_ = c.sendCommand(protocol.SetUsernameCommand{Username: c.identity})
		}
	}
	c.release()
	c.signal()

	return err
}

// Disconnect closes the connection. The transport close callback moves the
// state machine to Disconnected.
func (c *Controller) Disconnect() {
	c.conn.Close()
}

// SubmitIdentity registers the trimmed display name with the server. The
// name must be non-empty, the transport connected, and the identity not yet
// set: identity is immutable for the session. Confirmation is optimistic;
// the protocol has no explicit acknowledgement for it.
func (c *Controller) SubmitIdentity(name string) *errs.CustomError {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewError(errs.ErrEmptyInput)
	}

	c.acquire()
	defer c.release()

	if c.connState != StateConnected {
		return errs.NewError(errs.ErrNotConnected)
	}
	if c.identity != "" {
		return errs.NewError(errs.ErrIdentityAlreadySet)
	}

	if err := c.sendCommand(protocol.SetUsernameCommand{Username: name}); err != nil {
		return err
	}

	c.identity = name
	c.logger.Info().Str("identity", name).Msg("Identity submitted")
	c.signal()

	return nil
}

// SendMessage sends text to the currently active conversation: the main
// channel, or the active private counterpart.
func (c *Controller) SendMessage(text string) *errs.CustomError {
	c.acquire()
	key := c.activeKey
	c.release()

	if key == convo.MainKey {
		return c.SendMain(text)
	}
	return c.SendPrivate(text, key)
}

// SendMain sends text to the main channel. No optimistic local append is
// made: the log changes only when the server's own broadcast arrives.
func (c *Controller) SendMain(text string) *errs.CustomError {
	text = strings.TrimSpace(text)
	if text == "" {
		return errs.NewError(errs.ErrEmptyInput)
	}

	c.acquire()
	defer c.release()

	if err := c.requireReady(); err != nil {
		return err
	}
	if err := c.sendLimiter.Allow(); err != nil {
		return err
	}

	return c.sendCommand(protocol.ChatMessageCommand{
		Text:   text,
		TempID: randx.TempID(),
	})
}

// SendPrivate sends text to one recipient. Like main-channel sends it is
// echo-only: the conversation log changes when the server echoes the
// message back as a private_message event.
func (c *Controller) SendPrivate(text, recipient string) *errs.CustomError {
	text = strings.TrimSpace(text)
	if text == "" {
		return errs.NewError(errs.ErrEmptyInput)
	}

	c.acquire()
	defer c.release()

	if err := c.requireReady(); err != nil {
		return err
	}
	if err := c.sendLimiter.Allow(); err != nil {
		return err
	}

	return c.sendCommand(protocol.PrivateMessageCommand{
		Text:      text,
		Recipient: recipient,
		TempID:    randx.TempID(),
	})
}

// OpenConversation opens (creating if absent) and activates the private
// conversation with user, issuing the one-shot history fetch on first open.
// Opening a conversation with the local identity is rejected.
func (c *Controller) OpenConversation(user string) *errs.CustomError {
	c.acquire()
	defer c.release()

	if err := c.requireReady(); err != nil {
		return err
	}
	if user == c.identity {
		return errs.NewError(errs.ErrSelfConversation)
	}

	needsFetch := c.store.OpenPrivate(user)
	c.activeKey = user

	if needsFetch {
		if err := c.sendCommand(protocol.GetPrivateHistoryCommand{OtherUser: user}); err != nil {
			c.signal()
			return err
		}
		c.logger.Debug().Str("counterpart", user).Msg("Private history requested")
	}

	c.signal()
	return nil
}

// CloseConversation removes the private conversation with user. Closing the
// active conversation falls the view back to the main channel. An in-flight
// history request is not cancelled; its late response is ignored.
func (c *Controller) CloseConversation(user string) *errs.CustomError {
	c.acquire()
	defer c.release()

	if !c.store.ClosePrivate(user) {
		return errs.NewError(errs.ErrUnknownConversation, user)
	}

	if c.activeKey == user {
		c.activeKey = convo.MainKey
	}

	c.signal()
	return nil
}

// SetActiveConversation switches the rendered conversation. The main
// channel is always a valid target; a private key is opened first if needed.
func (c *Controller) SetActiveConversation(key string) *errs.CustomError {
	if key == convo.MainKey {
		c.acquire()
		c.activeKey = convo.MainKey
		c.release()
		c.signal()
		return nil
	}

	return c.OpenConversation(key)
}

// requireReady checks the preconditions shared by all outbound chat
// commands: a live connection and a confirmed identity.
func (c *Controller) requireReady() *errs.CustomError {
	if c.connState != StateConnected {
		return errs.NewError(errs.ErrNotConnected)
	}
	if c.identity == "" {
		return errs.NewError(errs.ErrIdentityNotSet)
	}
	return nil
}

// sendCommand encodes a command and hands it to the transport. Callers hold
// the event semaphore.
func (c *Controller) sendCommand(cmd protocol.Command) *errs.CustomError {
	frame, err := protocol.Encode(cmd)
	if err != nil {
		c.logger.Error().Err(err).Str("command", string(cmd.CommandType())).Msg("Failed to encode command")
		return err
	}

	if err := c.conn.Send(frame); err != nil {
		c.logger.Warn().Err(err).Str("command", string(cmd.CommandType())).Msg("Command dropped")
		return err
	}

	return nil
}

// handleFrame classifies one raw inbound frame and applies it to the store.
// Malformed and unknown frames are logged and dropped; they change nothing.
func (c *Controller) handleFrame(raw []byte) {
	event, err := protocol.Decode(raw)
	if err != nil {
		c.logger.Warn().Err(err).Bytes("frame", raw).Msg("Dropping undecodable frame")
		return
	}

	c.acquire()
	defer c.release()

	switch ev := event.(type) {
	case protocol.ChatMessageEvent:
		c.store.AppendMain(ev.Message)

	case protocol.UserListEvent:
		c.store.ReplaceRoster(ev.Users)

	case protocol.ChatHistoryEvent:
		c.store.ReplaceMainHistory(ev.Messages)

	case protocol.PrivateMessageEvent:
		counterpart := c.store.RoutePrivate(ev.Message, c.identity)
		c.logger.Debug().Str("counterpart", counterpart).Msg("Private message routed")

	case protocol.PrivateHistoryEvent:
		if !c.store.ReplacePrivateHistory(ev.OtherUser, ev.History) {
			c.logger.Debug().Str("counterpart", ev.OtherUser).Msg("History for closed conversation ignored")
			return
		}
	}

	c.signal()
}

// handleTransportClose marks the session disconnected. No retry, no
// buffering: any command attempted from here on is dropped until the caller
// explicitly reconnects.
func (c *Controller) handleTransportClose(cause *errs.CustomError) {
	c.acquire()
	c.connState = StateDisconnected
	if cause != nil {
		c.lastErr = cause
		c.logger.Warn().Err(cause).Msg("Disconnected from server")
	} else {
		c.logger.Info().Msg("Disconnected from server")
	}
	c.release()
	c.signal()
}

// signal coalesces a change notification for renderers.
func (c *Controller) signal() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// ConnectionState returns the current transport link state.
func (c *Controller) ConnectionState() ConnectionState {
	c.acquire()
	defer c.release()
	return c.connState
}

// Identity returns the confirmed local display name, empty if unset.
func (c *Controller) Identity() string {
	c.acquire()
	defer c.release()
	return c.identity
}

// ActiveConversation returns the key of the conversation the rendering
// layer should show: convo.MainKey or a private counterpart.
func (c *Controller) ActiveConversation() string {
	c.acquire()
	defer c.release()
	return c.activeKey
}

// LastError returns the most recent transport error, nil if none.
func (c *Controller) LastError() *errs.CustomError {
	c.acquire()
	defer c.release()
	return c.lastErr
}

// Store returns the conversation store for read-only snapshot access. Its
// accessors return copies; rendering layers must never mutate through it.
func (c *Controller) Store() *convo.Store {
	return c.store
}

// Updates returns a coalescing channel that receives a token after state
// changes, for renderers to redraw on.
func (c *Controller) Updates() <-chan struct{} {
	return c.notify
}
