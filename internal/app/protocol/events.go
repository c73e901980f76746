/*
Package protocol implements the JSON wire protocol spoken with the chat server.

This file defines the closed set of inbound events and the Decode function
that classifies raw frames into them. Malformed or unrecognized frames
produce a structured protocol error and never a panic; the caller logs and
drops them while the connection stays open.
*/
package protocol

import (
	"encoding/json"

	"tabchat/internal/pkg/errs"
)

// EventType is the wire discriminator of an inbound frame.
type EventType string

const (
	// EventChatMessage carries one new message for the main channel.
	EventChatMessage EventType = "chat_message"

	// EventUserList carries a full roster snapshot.
	EventUserList EventType = "user_list"

	// EventChatHistory carries the full main-channel history.
	EventChatHistory EventType = "chat_history"

	// EventPrivateMessage carries one new private message. Both the sender's
	// echo and the recipient's copy arrive as this event.
	EventPrivateMessage EventType = "private_message"

	// EventPrivateHistory carries the full history of one private conversation.
	EventPrivateHistory EventType = "private_history"
)

// Event is one decoded inbound frame. It is a closed set: the only
// implementations are the event structs in this file.
type Event interface {
	EventType() EventType
}

// ChatMessageEvent is a new message on the main channel.
type ChatMessageEvent struct {
	Message Message
}

// UserListEvent is a wholesale roster replacement.
type UserListEvent struct {
	Users []string
}

// ChatHistoryEvent is a wholesale main-channel history replacement.
type ChatHistoryEvent struct {
	Messages []Message
}

// PrivateMessageEvent is a new message on a private conversation.
type PrivateMessageEvent struct {
	Message PrivateMessage
}

// PrivateHistoryEvent is a wholesale history replacement for the private
// conversation with OtherUser.
type PrivateHistoryEvent struct {
	OtherUser string
	History   []PrivateMessage
}

func (ChatMessageEvent) EventType() EventType    { return EventChatMessage }
func (UserListEvent) EventType() EventType       { return EventUserList }
func (ChatHistoryEvent) EventType() EventType    { return EventChatHistory }
func (PrivateMessageEvent) EventType() EventType { return EventPrivateMessage }
func (PrivateHistoryEvent) EventType() EventType { return EventPrivateHistory }

// inboundFrame is the superset envelope of every inbound frame shape. The
// payload fields sit at the top level next to the type discriminator;
// Message stays raw because its shape depends on the type.
type inboundFrame struct {
	Type      string           `json:"type"`
	Message   json.RawMessage  `json:"message"`
	Users     []string         `json:"users"`
	Messages  []Message        `json:"messages"`
	OtherUser string           `json:"otherUser"`
	History   []PrivateMessage `json:"history"`
}

// Decode parses a raw frame and classifies it into one of the known events.
// Invalid JSON, a missing discriminator, or a known type with a payload that
// does not match its shape yield ErrMalformedFrame; a discriminator outside
// the known set yields ErrUnknownFrameType.
func Decode(raw []byte) (Event, *errs.CustomError) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, errs.NewError(errs.ErrMalformedFrame)
	}

	if frame.Type == "" {
		return nil, errs.NewError(errs.ErrMalformedFrame)
	}

	switch EventType(frame.Type) {
	case EventChatMessage:
		if len(frame.Message) == 0 {
			return nil, errs.NewError(errs.ErrMalformedFrame)
		}
		var msg Message
		if err := json.Unmarshal(frame.Message, &msg); err != nil {
			return nil, errs.NewError(errs.ErrMalformedFrame)
		}
		return ChatMessageEvent{Message: msg}, nil

	case EventUserList:
		if frame.Users == nil {
			return nil, errs.NewError(errs.ErrMalformedFrame)
		}
		return UserListEvent{Users: frame.Users}, nil

	case EventChatHistory:
		if frame.Messages == nil {
			return nil, errs.NewError(errs.ErrMalformedFrame)
		}
		return ChatHistoryEvent{Messages: frame.Messages}, nil

	case EventPrivateMessage:
		if len(frame.Message) == 0 {
			return nil, errs.NewError(errs.ErrMalformedFrame)
		}
		var msg PrivateMessage
		if err := json.Unmarshal(frame.Message, &msg); err != nil {
			return nil, errs.NewError(errs.ErrMalformedFrame)
		}
		return PrivateMessageEvent{Message: msg}, nil

	case EventPrivateHistory:
		if frame.OtherUser == "" || frame.History == nil {
			return nil, errs.NewError(errs.ErrMalformedFrame)
		}
		return PrivateHistoryEvent{OtherUser: frame.OtherUser, History: frame.History}, nil

	default:
		return nil, errs.NewError(errs.ErrUnknownFrameType, frame.Type)
	}
}
