/*
Package protocol implements the JSON wire protocol spoken with the chat server.

This file defines the message payload structures shared by events and
commands. Timestamps are Unix milliseconds, matching what the server emits.
*/
package protocol

// Message is one entry of the main (broadcast) channel.
type Message struct {
	// Username is the display name of the author.
	Username string `json:"username"`

	// Text is the message body.
	Text string `json:"text"`

	// Timestamp is the server-assigned send time in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// PrivateMessage is one entry of a two-party conversation. Unlike Message it
// carries both endpoints, so either side can derive the counterpart.
type PrivateMessage struct {
	// Sender is the display name of the author.
	Sender string `json:"sender"`

	// Recipient is the display name of the addressee.
	Recipient string `json:"recipient"`

	// Text is the message body.
	Text string `json:"text"`

	// Timestamp is the server-assigned send time in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// Counterpart returns the endpoint of the private message that is not the
// local identity. Both the sender's echo and the recipient's copy of the
// same message resolve to the same conversation key this way.
func (m PrivateMessage) Counterpart(localIdentity string) string {
	if m.Sender == localIdentity {
		return m.Recipient
	}
	return m.Sender
}
