package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Gateway tests drive the event handler directly, without a transport,
// reading outbound traffic from each client's buffered send channel.

func testClient(id string) *Client {
	return &Client{
		id:   id,
		send: make(chan any, 16),
	}
}

func drain(c *Client) []any {
	var out []any
	for {
		select {
		case msg := <-c.send:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func testGateway() (*Gateway, *Config) {
	return newGateway(), &Config{}
}

func connect(g *Gateway, cfg *Config, id string) *Client {
	c := testClient(id)
	g.handle(cfg, event{typ: "register", client: c})
	return c
}

func createLobby(t *testing.T, g *Gateway, cfg *Config, c *Client, name string) string {
	t.Helper()

	g.handle(cfg, event{typ: "createLobby", client: c, msg: ClientMessage{PlayerName: name}})

	out := drain(c)
	require.Len(t, out, 1)
	created, ok := out[0].(LobbyCreatedMessage)
	require.True(t, ok, "expected lobbyCreated, got %T", out[0])
	return created.LobbyID
}

func TestGatewayCreateLobby(t *testing.T) {
	g, cfg := testGateway()
	alice := connect(g, cfg, "conn-a")

	g.handle(cfg, event{typ: "createLobby", client: alice, msg: ClientMessage{PlayerName: "Alice"}})

	out := drain(alice)
	require.Len(t, out, 1)
	created := out[0].(LobbyCreatedMessage)
	assert.Equal(t, "lobbyCreated", created.Type)
	require.Len(t, created.Players, 1)
	assert.Equal(t, "Alice", created.Players[0].Name)
	assert.True(t, created.Players[0].IsHost)
	assert.Equal(t, created.LobbyID, g.lobbyFor["conn-a"])
}

func TestGatewayJoinBroadcastsRoster(t *testing.T) {
	g, cfg := testGateway()
	alice := connect(g, cfg, "conn-a")
	bob := connect(g, cfg, "conn-b")
	code := createLobby(t, g, cfg, alice, "Alice")

	g.handle(cfg, event{typ: "joinLobby", client: bob, msg: ClientMessage{PlayerName: "Bob", LobbyID: code}})

	bobOut := drain(bob)
	require.Len(t, bobOut, 2)
	joined := bobOut[0].(JoinedLobbyMessage)
	assert.Equal(t, code, joined.LobbyID)
	assert.False(t, joined.IsHost)
	require.Len(t, joined.Players, 2)

	roster := bobOut[1].(PlayerJoinedMessage)
	assert.Equal(t, "playerJoined", roster.Type)

	aliceOut := drain(alice)
	require.Len(t, aliceOut, 1)
	aliceRoster := aliceOut[0].(PlayerJoinedMessage)
	require.Len(t, aliceRoster.Players, 2)
	assert.Equal(t, "Alice", aliceRoster.Players[0].Name)
	assert.True(t, aliceRoster.Players[0].IsHost)
	assert.Equal(t, "Bob", aliceRoster.Players[1].Name)
}

func TestGatewayJoinUnknownLobby(t *testing.T) {
	g, cfg := testGateway()
	bob := connect(g, cfg, "conn-b")

	g.handle(cfg, event{typ: "joinLobby", client: bob, msg: ClientMessage{PlayerName: "Bob", LobbyID: "ZZZZZ"}})

	out := drain(bob)
	require.Len(t, out, 1)
	assert.Equal(t, SimpleMessage{Type: "lobbyNotFound"}, out[0])
	assert.Empty(t, g.lobbyFor)
	assert.Empty(t, g.registry.lobbies)
}

func TestGatewayClassicRound(t *testing.T) {
	g, cfg := testGateway()
	alice := connect(g, cfg, "conn-a")
	bob := connect(g, cfg, "conn-b")
	code := createLobby(t, g, cfg, alice, "Alice")
	g.handle(cfg, event{typ: "joinLobby", client: bob, msg: ClientMessage{PlayerName: "Bob", LobbyID: code}})
	drain(alice)
	drain(bob)

	g.handle(cfg, event{typ: "startGame", client: alice, msg: ClientMessage{Theme: "classic", GameMode: "classic"}})

	// Alice acts first, so she sees the room copy plus her targeted copy.
	aliceOut := drain(alice)
	require.Len(t, aliceOut, 3)
	started := aliceOut[0].(GameStartedMessage)
	require.Len(t, started.Session.Prompts, 2)
	assert.Equal(t, []string{"", ""}, started.Session.Answers)

	roomTurn := aliceOut[1].(NextTurnMessage)
	assert.Equal(t, "Alice", roomTurn.CurrentPlayerName)
	assert.Equal(t, started.Session.Prompts[0], roomTurn.Prompt)
	assert.False(t, roomTurn.IsMyTurn)

	myTurn := aliceOut[2].(NextTurnMessage)
	assert.True(t, myTurn.IsMyTurn)
	assert.Equal(t, roomTurn.Prompt, myTurn.Prompt)

	bobOut := drain(bob)
	require.Len(t, bobOut, 2)
	assert.IsType(t, GameStartedMessage{}, bobOut[0])
	assert.False(t, bobOut[1].(NextTurnMessage).IsMyTurn)

	// Out-of-turn submissions are dropped on the floor.
	g.handle(cfg, event{typ: "submitAnswer", client: bob, msg: ClientMessage{Answer: "too eager"}})
	assert.Empty(t, drain(bob))
	assert.Equal(t, []string{"", ""}, started.Session.Answers)

	g.handle(cfg, event{typ: "submitAnswer", client: alice, msg: ClientMessage{Answer: "a vision"}})

	bobOut = drain(bob)
	require.Len(t, bobOut, 2)
	assert.False(t, bobOut[0].(NextTurnMessage).IsMyTurn)
	assert.True(t, bobOut[1].(NextTurnMessage).IsMyTurn)
	drain(alice)

	g.handle(cfg, event{typ: "submitAnswer", client: bob, msg: ClientMessage{Answer: "a reckoning"}})

	for _, c := range []*Client{alice, bob} {
		out := drain(c)
		require.Len(t, out, 1)
		reveal := out[0].(RevealMessage)
		assert.Equal(t, "revealProphecies", reveal.Type)
		assert.Equal(t, []string{"a vision", "a reckoning"}, reveal.Session.Answers)
	}
}

func TestGatewayPassAndBuildRound(t *testing.T) {
	g, cfg := testGateway()
	alice := connect(g, cfg, "conn-a")
	bob := connect(g, cfg, "conn-b")
	code := createLobby(t, g, cfg, alice, "Alice")
	g.handle(cfg, event{typ: "joinLobby", client: bob, msg: ClientMessage{PlayerName: "Bob", LobbyID: code}})
	drain(alice)
	drain(bob)

	g.handle(cfg, event{typ: "startGame", client: alice, msg: ClientMessage{Theme: "fantasy", GameMode: "pass-and-build"}})
	drain(alice)
	drain(bob)

	session := g.registry.Lookup(code).Session
	require.NotNil(t, session)
	require.Len(t, session.Grid, 2)

	// Actor order for 2 seats: Alice, Bob, then rotated Bob, Alice.
	turns := []struct {
		client *Client
		answer string
	}{
		{alice, "alice r0"},
		{bob, "bob r0"},
		{bob, "bob r1"},
		{alice, "alice r1"},
	}

	for i, turn := range turns {
		g.handle(cfg, event{typ: "submitAnswer", client: turn.client, msg: ClientMessage{Answer: turn.answer}})
		if i < len(turns)-1 {
			drain(alice)
			drain(bob)
		}
	}

	// Rows are rounds, columns are submitting seats.
	out := drain(bob)
	require.Len(t, out, 1)
	reveal := out[0].(RevealMessage)
	assert.Equal(t, [][]string{
		{"alice r0", "bob r0"},
		{"alice r1", "bob r1"},
	}, reveal.Session.Grid)
}

func TestGatewayRestartReturnsToLobby(t *testing.T) {
	g, cfg := testGateway()
	alice := connect(g, cfg, "conn-a")
	code := createLobby(t, g, cfg, alice, "Alice")

	g.handle(cfg, event{typ: "startGame", client: alice, msg: ClientMessage{Theme: "cringe", GameMode: "classic"}})
	drain(alice)
	require.NotNil(t, g.registry.Lookup(code).Session)

	g.handle(cfg, event{typ: "restartGame", client: alice})

	assert.Nil(t, g.registry.Lookup(code).Session)
	out := drain(alice)
	require.Len(t, out, 1)
	assert.Equal(t, SimpleMessage{Type: "returnToLobby"}, out[0])
}

func TestGatewayDisconnectReassignsHost(t *testing.T) {
	g, cfg := testGateway()
	alice := connect(g, cfg, "conn-a")
	bob := connect(g, cfg, "conn-b")
	code := createLobby(t, g, cfg, alice, "Alice")
	g.handle(cfg, event{typ: "joinLobby", client: bob, msg: ClientMessage{PlayerName: "Bob", LobbyID: code}})
	drain(alice)
	drain(bob)

	g.handle(cfg, event{typ: "disconnect", client: alice})

	out := drain(bob)
	require.Len(t, out, 1)
	roster := out[0].(PlayerJoinedMessage)
	require.Len(t, roster.Players, 1)
	assert.Equal(t, "Bob", roster.Players[0].Name)
	assert.True(t, roster.Players[0].IsHost)

	assert.NotContains(t, g.lobbyFor, "conn-a")
	assert.NotContains(t, g.clients, "conn-a")
}

func TestGatewayDisconnectLastPlayerDeletesLobby(t *testing.T) {
	g, cfg := testGateway()
	alice := connect(g, cfg, "conn-a")
	code := createLobby(t, g, cfg, alice, "Alice")

	g.handle(cfg, event{typ: "disconnect", client: alice})

	assert.Nil(t, g.registry.Lookup(code))
	assert.Empty(t, g.registry.lobbies)
}

func TestGatewayCreateWhileSeatedLeavesOldLobby(t *testing.T) {
	g, cfg := testGateway()
	alice := connect(g, cfg, "conn-a")
	bob := connect(g, cfg, "conn-b")
	code := createLobby(t, g, cfg, alice, "Alice")
	g.handle(cfg, event{typ: "joinLobby", client: bob, msg: ClientMessage{PlayerName: "Bob", LobbyID: code}})
	drain(alice)
	drain(bob)

	newCode := createLobby(t, g, cfg, bob, "Bob")

	require.NotEqual(t, code, newCode)
	assert.Equal(t, newCode, g.lobbyFor["conn-b"])

	// Bob holds exactly one seat: host of his new lobby, gone from the old.
	old := g.registry.Lookup(code)
	require.NotNil(t, old)
	require.Len(t, old.Players, 1)
	assert.Equal(t, "Alice", old.Players[0].Name)
	assert.True(t, old.Players[0].IsHost)

	aliceOut := drain(alice)
	require.Len(t, aliceOut, 1)
	assert.Len(t, aliceOut[0].(PlayerJoinedMessage).Players, 1)
}

func TestGatewayJoinWhileSeatedLeavesOldLobby(t *testing.T) {
	g, cfg := testGateway()
	alice := connect(g, cfg, "conn-a")
	bob := connect(g, cfg, "conn-b")
	carol := connect(g, cfg, "conn-c")
	oldCode := createLobby(t, g, cfg, alice, "Alice")
	g.handle(cfg, event{typ: "joinLobby", client: bob, msg: ClientMessage{PlayerName: "Bob", LobbyID: oldCode}})
	newCode := createLobby(t, g, cfg, carol, "Carol")
	drain(alice)
	drain(bob)

	g.handle(cfg, event{typ: "joinLobby", client: bob, msg: ClientMessage{PlayerName: "Bob", LobbyID: newCode}})

	assert.Equal(t, newCode, g.lobbyFor["conn-b"])
	require.Len(t, g.registry.Lookup(oldCode).Players, 1)
	require.Len(t, g.registry.Lookup(newCode).Players, 2)

	// The old room saw Bob leave before the new one saw him arrive.
	aliceOut := drain(alice)
	require.Len(t, aliceOut, 1)
	assert.Len(t, aliceOut[0].(PlayerJoinedMessage).Players, 1)
}

func TestGatewayJoinUnknownWhileSeatedKeepsSeat(t *testing.T) {
	g, cfg := testGateway()
	alice := connect(g, cfg, "conn-a")
	code := createLobby(t, g, cfg, alice, "Alice")

	g.handle(cfg, event{typ: "joinLobby", client: alice, msg: ClientMessage{PlayerName: "Alice", LobbyID: "ZZZZZ"}})

	out := drain(alice)
	require.Len(t, out, 1)
	assert.Equal(t, SimpleMessage{Type: "lobbyNotFound"}, out[0])
	assert.Equal(t, code, g.lobbyFor["conn-a"])
	require.Len(t, g.registry.Lookup(code).Players, 1)
}

func TestGatewayGameActionsWithoutLobbyIgnored(t *testing.T) {
	g, cfg := testGateway()
	loner := connect(g, cfg, "conn-x")

	g.handle(cfg, event{typ: "startGame", client: loner, msg: ClientMessage{Theme: "classic", GameMode: "classic"}})
	g.handle(cfg, event{typ: "submitAnswer", client: loner, msg: ClientMessage{Answer: "into the void"}})
	g.handle(cfg, event{typ: "restartGame", client: loner})

	assert.Empty(t, drain(loner))
	assert.Empty(t, g.registry.lobbies)
}

func TestGatewaySubmitWithoutSessionIgnored(t *testing.T) {
	g, cfg := testGateway()
	alice := connect(g, cfg, "conn-a")
	createLobby(t, g, cfg, alice, "Alice")

	g.handle(cfg, event{typ: "submitAnswer", client: alice, msg: ClientMessage{Answer: "premature"}})

	assert.Empty(t, drain(alice))
}
