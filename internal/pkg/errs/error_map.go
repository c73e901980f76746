/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to
standardize error construction and reporting throughout the client.
*/
package errs

// errorMap stores the detailed CustomError struct corresponding to every
// application error code. The key is the error code (int).
var errorMap = map[int]CustomError{
	// 1xxx: Transport Errors
	ErrConnectFailed:    {Code: ErrConnectFailed, Kind: KindTransport, Message: "Could not connect to the chat server."},
	ErrConnectionClosed: {Code: ErrConnectionClosed, Kind: KindTransport, Message: "Connection to the chat server was lost."},
	ErrWriteFailed:      {Code: ErrWriteFailed, Kind: KindTransport, Message: "Failed to send data to the chat server."},
	ErrAlreadyConnected: {Code: ErrAlreadyConnected, Kind: KindTransport, Message: "Already connected to the chat server."},

	// 2xxx: Protocol Errors
	ErrMalformedFrame:   {Code: ErrMalformedFrame, Kind: KindProtocol, Message: "Received a malformed frame from the server."},
	ErrUnknownFrameType: {Code: ErrUnknownFrameType, Kind: KindProtocol, Message: "Received a frame of unknown type %q."},
	ErrEncodeFailed:     {Code: ErrEncodeFailed, Kind: KindProtocol, Message: "Failed to encode outbound command."},

	// 3xxx: Precondition Errors
	ErrNotConnected:        {Code: ErrNotConnected, Kind: KindPrecondition, Message: "Not connected to the chat server."},
	ErrIdentityNotSet:      {Code: ErrIdentityNotSet, Kind: KindPrecondition, Message: "Choose a username before sending messages."},
	ErrIdentityAlreadySet:  {Code: ErrIdentityAlreadySet, Kind: KindPrecondition, Message: "Username is already set for this session."},
	ErrEmptyInput:          {Code: ErrEmptyInput, Kind: KindPrecondition, Message: "Input must not be empty."},
	ErrSelfConversation:    {Code: ErrSelfConversation, Kind: KindPrecondition, Message: "Cannot open a private chat with yourself."},
	ErrSendThrottled:       {Code: ErrSendThrottled, Kind: KindPrecondition, Message: "Sending too fast. Message dropped."},
	ErrUnknownConversation: {Code: ErrUnknownConversation, Kind: KindPrecondition, Message: "No open conversation with %q."},

	// 5xxx: Internal Errors
	ErrUnknown: {Code: ErrUnknown, Kind: KindInternal, Message: "Something went wrong."},
}
