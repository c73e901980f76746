/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific failures of the chat client, grouped by
the layer in which they occur: transport, protocol, and user preconditions.
*/
package errs

// 1xxx: Transport Errors
const (
	// ErrConnectFailed indicates that dialing the chat server failed.
	ErrConnectFailed = 1001

	// ErrConnectionClosed indicates that the connection to the server was lost.
	ErrConnectionClosed = 1002

	// ErrWriteFailed indicates that writing a frame to the connection failed.
	ErrWriteFailed = 1003

	// ErrAlreadyConnected indicates a connect attempt on a transport that
	// already holds a live connection.
	ErrAlreadyConnected = 1004
)

// 2xxx: Protocol Errors
const (
	// ErrMalformedFrame indicates an inbound frame that could not be parsed,
	// or whose payload did not match its declared type.
	ErrMalformedFrame = 2001

	// ErrUnknownFrameType indicates an inbound frame whose type discriminator
	// is outside the known event set.
	ErrUnknownFrameType = 2002

	// ErrEncodeFailed indicates that an outbound command could not be serialized.
	ErrEncodeFailed = 2003
)

// 3xxx: Precondition Errors
const (
	// ErrNotConnected indicates an action that requires a live connection.
	ErrNotConnected = 3001

	// ErrIdentityNotSet indicates a send attempted before the username handshake.
	ErrIdentityNotSet = 3002

	// ErrIdentityAlreadySet indicates an attempt to change the username after
	// it was already submitted for this session.
	ErrIdentityAlreadySet = 3003

	// ErrEmptyInput indicates an empty or whitespace-only username or message.
	ErrEmptyInput = 3004

	// ErrSelfConversation indicates an attempt to open a private conversation
	// with the local user themselves.
	ErrSelfConversation = 3005

	// ErrSendThrottled indicates an outbound command dropped by the send
	// rate limiter.
	ErrSendThrottled = 3006

	// ErrUnknownConversation indicates an action addressed to a private
	// conversation that is not open.
	ErrUnknownConversation = 3007
)

// 5xxx: Internal Errors
const (
	// ErrUnknown represents an unclassified internal error.
	ErrUnknown = 5000
)
