package stub_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabchat/internal/app/client"
	"tabchat/internal/app/protocol"
	"tabchat/internal/stub"
)

const (
	waitFor = 3 * time.Second
	tick    = 20 * time.Millisecond
)

// startStub serves a stub server over httptest and returns it with its
// ws:// URL.
func startStub(t *testing.T) (*stub.Server, string) {
	t.Helper()

	stubServer := stub.NewServer()
	httpServer := httptest.NewServer(stubServer.Router())
	t.Cleanup(httpServer.Close)

	return stubServer, "ws" + strings.TrimPrefix(httpServer.URL, "http")
}

// join connects a fresh controller to the stub and registers it under name.
func join(t *testing.T, url, name string) *client.Controller {
	t.Helper()

	ctrl := client.NewController(client.Options{
		ServerURL:        url,
		HandshakeTimeout: 5 * time.Second,
		SendRate:         1000,
		SendBurst:        1000,
	})
	require.Nil(t, ctrl.Connect(context.Background()))
	t.Cleanup(ctrl.Disconnect)
	require.Nil(t, ctrl.SubmitIdentity(name))

	return ctrl
}

func TestHealthz(t *testing.T) {
	stubServer := stub.NewServer()
	httpServer := httptest.NewServer(stubServer.Router())
	defer httpServer.Close()

	resp, err := http.Get(httpServer.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestJoin_RosterAndHistory(t *testing.T) {
	stubServer, url := startStub(t)
	stubServer.Hub().SeedMainHistory([]protocol.Message{
		{Username: "carol", Text: "m1", Timestamp: 1},
		{Username: "carol", Text: "m2", Timestamp: 2},
	})

	alice := join(t, url, "alice")

	assert.Eventually(t, func() bool {
		return len(alice.Store().MainMessages()) == 2
	}, waitFor, tick, "main history replayed on join")

	msgs := alice.Store().MainMessages()
	assert.Equal(t, "m1", msgs[0].Text)
	assert.Equal(t, "m2", msgs[1].Text)

	assert.Eventually(t, func() bool {
		users := alice.Store().Users()
		return len(users) == 1 && users[0] == "alice"
	}, waitFor, tick, "roster contains the joined user")
}

func TestJoin_EmptyServerHistoryDecodes(t *testing.T) {
	_, url := startStub(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"set_username","username":"alice"}`)))

	// The first frame of an unseeded join carries a zero-length history;
	// it must still pass the client codec.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(waitFor)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	event, derr := protocol.Decode(raw)
	require.Nil(t, derr, "join frame decodes: %s", raw)
	history, ok := event.(protocol.ChatHistoryEvent)
	require.True(t, ok)
	assert.Empty(t, history.Messages)
}

func TestMainChannel_BroadcastIncludesAuthorEcho(t *testing.T) {
	_, url := startStub(t)

	alice := join(t, url, "alice")
	bob := join(t, url, "bob")

	require.Eventually(t, func() bool {
		return len(alice.Store().Users()) == 2 && len(bob.Store().Users()) == 2
	}, waitFor, tick)

	require.Nil(t, bob.SendMain("hi"))

	for name, ctrl := range map[string]*client.Controller{"alice": alice, "bob": bob} {
		assert.Eventually(t, func() bool {
			msgs := ctrl.Store().MainMessages()
			return len(msgs) == 1 && msgs[0].Username == "bob" && msgs[0].Text == "hi"
		}, waitFor, tick, "%s sees bob's message", name)
	}
}

func TestPrivateConversation_EndToEnd(t *testing.T) {
	_, url := startStub(t)

	alice := join(t, url, "alice")
	bob := join(t, url, "bob")

	require.Eventually(t, func() bool {
		return len(alice.Store().Users()) == 2
	}, waitFor, tick)

	// Opening issues exactly one history request; the stub answers with an
	// empty history which arrives as an applied replacement.
	require.Nil(t, alice.OpenConversation("bob"))

	require.Eventually(t, func() bool {
		msgs, ok := alice.Store().PrivateMessages("bob")
		return ok && len(msgs) == 0
	}, waitFor, tick, "empty private history arrives")

	require.Nil(t, alice.SendPrivate("yo bob", "bob"))

	// Echo-only: alice's log fills through the server echo; bob's
	// conversation is auto-created, keyed by alice.
	assert.Eventually(t, func() bool {
		msgs, ok := alice.Store().PrivateMessages("bob")
		return ok && len(msgs) == 1 && msgs[0].Text == "yo bob"
	}, waitFor, tick, "alice sees her echoed message")

	assert.Eventually(t, func() bool {
		msgs, ok := bob.Store().PrivateMessages("alice")
		return ok && len(msgs) == 1 && msgs[0].Sender == "alice"
	}, waitFor, tick, "bob receives the private message")
}

func TestPrivateHistory_SurvivesReopen(t *testing.T) {
	_, url := startStub(t)

	alice := join(t, url, "alice")
	bob := join(t, url, "bob")

	require.Eventually(t, func() bool {
		return len(alice.Store().Users()) == 2
	}, waitFor, tick)

	require.Nil(t, alice.OpenConversation("bob"))
	require.Nil(t, alice.SendPrivate("m1", "bob"))

	// The two senders are on independent connections, so m1 must land at
	// the hub before bob's reply is released.
	require.Eventually(t, func() bool {
		msgs, ok := alice.Store().PrivateMessages("bob")
		return ok && len(msgs) == 1
	}, waitFor, tick, "m1 echoed before the reply is sent")

	require.Nil(t, bob.SendPrivate("m2", "alice"))

	require.Eventually(t, func() bool {
		msgs, ok := alice.Store().PrivateMessages("bob")
		return ok && len(msgs) == 2
	}, waitFor, tick)

	// Closing drops the local log; reopening is a fresh span with a fresh
	// history fetch answered from the stub's stored pair history.
	require.Nil(t, alice.CloseConversation("bob"))

	require.Nil(t, alice.OpenConversation("bob"))
	assert.Eventually(t, func() bool {
		msgs, ok := alice.Store().PrivateMessages("bob")
		return ok && len(msgs) == 2 && msgs[0].Text == "m1" && msgs[1].Text == "m2"
	}, waitFor, tick, "reopen replays the stored history")
}

func TestServerSideState(t *testing.T) {
	stubServer, url := startStub(t)

	alice := join(t, url, "alice")
	require.Nil(t, alice.SendMain("hello"))

	assert.Eventually(t, func() bool {
		history := stubServer.Hub().MainHistory()
		return len(history) == 1 && history[0].Username == "alice"
	}, waitFor, tick)

	assert.Equal(t, []string{"alice"}, stubServer.Hub().OnlineUsers())
}

func TestDisconnect_RemovesFromRoster(t *testing.T) {
	stubServer, url := startStub(t)

	alice := join(t, url, "alice")
	bob := join(t, url, "bob")

	require.Eventually(t, func() bool {
		return len(alice.Store().Users()) == 2
	}, waitFor, tick)

	bob.Disconnect()

	assert.Eventually(t, func() bool {
		users := stubServer.Hub().OnlineUsers()
		return len(users) == 1 && users[0] == "alice"
	}, waitFor, tick, "stub drops the departed user")

	assert.Eventually(t, func() bool {
		users := alice.Store().Users()
		return len(users) == 1 && users[0] == "alice"
	}, waitFor, tick, "alice's roster is refreshed")
}
