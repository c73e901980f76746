/*
Package protocol implements the JSON wire protocol spoken with the chat server.

This file defines the closed set of outbound commands and the Encode
function producing their wire representation. Encoding is total: every valid
command value is representable.
*/
package protocol

import (
	"encoding/json"

	"tabchat/internal/pkg/errs"
)

// CommandType is the wire discriminator of an outbound frame.
type CommandType string

const (
	// CommandSetUsername registers the local identity with the server.
	CommandSetUsername CommandType = "set_username"

	// CommandChatMessage sends a message to the main channel.
	CommandChatMessage CommandType = "chat_message"

	// CommandPrivateMessage sends a message to one recipient.
	CommandPrivateMessage CommandType = "private_message"

	// CommandGetPrivateHistory requests the history of one private conversation.
	CommandGetPrivateHistory CommandType = "get_private_history"
)

// Command is one outbound frame before encoding. It is a closed set: the
// only implementations are the command structs in this file.
type Command interface {
	CommandType() CommandType
}

// SetUsernameCommand registers the chosen display name.
type SetUsernameCommand struct {
	Username string
}

// ChatMessageCommand sends text to the main channel. TempID is a
// client-assigned correlation id; servers that do not understand it ignore it.
type ChatMessageCommand struct {
	Text   string
	TempID string
}

// PrivateMessageCommand sends text to one recipient.
type PrivateMessageCommand struct {
	Text      string
	Recipient string
	TempID    string
}

// GetPrivateHistoryCommand requests the stored history of the conversation
// with OtherUser.
type GetPrivateHistoryCommand struct {
	OtherUser string
}

func (SetUsernameCommand) CommandType() CommandType       { return CommandSetUsername }
func (ChatMessageCommand) CommandType() CommandType       { return CommandChatMessage }
func (PrivateMessageCommand) CommandType() CommandType    { return CommandPrivateMessage }
func (GetPrivateHistoryCommand) CommandType() CommandType { return CommandGetPrivateHistory }

// Encode serializes a command into its wire representation.
func Encode(cmd Command) ([]byte, *errs.CustomError) {
	var frame any

	switch c := cmd.(type) {
	case SetUsernameCommand:
		frame = struct {
			Type     CommandType `json:"type"`
			Username string      `json:"username"`
		}{CommandSetUsername, c.Username}

	case ChatMessageCommand:
		frame = struct {
			Type   CommandType `json:"type"`
			Text   string      `json:"text"`
			TempID string      `json:"tempId,omitempty"`
		}{CommandChatMessage, c.Text, c.TempID}

	case PrivateMessageCommand:
		frame = struct {
			Type      CommandType `json:"type"`
			Text      string      `json:"text"`
			Recipient string      `json:"recipient"`
			TempID    string      `json:"tempId,omitempty"`
		}{CommandPrivateMessage, c.Text, c.Recipient, c.TempID}

	case GetPrivateHistoryCommand:
		frame = struct {
			Type      CommandType `json:"type"`
			OtherUser string      `json:"otherUser"`
		}{CommandGetPrivateHistory, c.OtherUser}

	default:
		return nil, errs.NewError(errs.ErrEncodeFailed)
	}

	raw, err := json.Marshal(frame)
	if err != nil {
		return nil, errs.NewError(errs.ErrEncodeFailed)
	}

	return raw, nil
}
