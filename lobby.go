package main

import (
	"crypto/rand"
)

// Player holds the data we store server-side for one lobby member.
// ID is the connection identity assigned at websocket upgrade.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

// Lobby is a room of players plus at most one active game session.
type Lobby struct {
	Code    string
	Players []Player
	Session *GameSession
}

// LobbyRegistry is the process-wide store of lobbies, keyed by join code.
// It is only ever touched from the gateway's event loop, so it carries no
// lock of its own.
type LobbyRegistry struct {
	lobbies map[string]*Lobby
}

func newLobbyRegistry() *LobbyRegistry {
	return &LobbyRegistry{
		lobbies: make(map[string]*Lobby),
	}
}

const lobbyCodeLength = 5

// newLobbyCode generates a short uppercase alphanumeric join code,
// regenerating until it doesn't collide with a live lobby.
func (reg *LobbyRegistry) newLobbyCode() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	for {
		buf := make([]byte, lobbyCodeLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, lobbyCodeLength)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		code := string(out)

		if _, exists := reg.lobbies[code]; !exists {
			return code
		}
	}
}

// Create makes a new lobby whose sole member, the requester, is host.
func (reg *LobbyRegistry) Create(connID, playerName string) *Lobby {
	lobby := &Lobby{
		Code: reg.newLobbyCode(),
		Players: []Player{{
			ID:     connID,
			Name:   playerName,
			IsHost: true,
		}},
	}
	reg.lobbies[lobby.Code] = lobby
	return lobby
}

// Lookup resolves a join code to its lobby, if one exists.
func (reg *LobbyRegistry) Lookup(code string) *Lobby {
	return reg.lobbies[code]
}

// Join appends a non-host player to an existing lobby. Returns false when
// the code doesn't resolve; the registry is left untouched in that case.
func (reg *LobbyRegistry) Join(connID, playerName, code string) (*Lobby, bool) {
	lobby, ok := reg.lobbies[code]
	if !ok {
		return nil, false
	}

	lobby.Players = append(lobby.Players, Player{
		ID:   connID,
		Name: playerName,
	})
	return lobby, true
}

// RemoveConnection scans all lobbies for the disconnected player and drops
// them. If the host left and players remain, host status passes to the new
// first player. An emptied lobby is deleted on the spot. Returns the lobby
// the player was removed from (nil if it was deleted or never found) and
// whether a removal happened.
func (reg *LobbyRegistry) RemoveConnection(connID string) (*Lobby, bool) {
	for code, lobby := range reg.lobbies {
		idx := -1
		for i, p := range lobby.Players {
			if p.ID == connID {
				idx = i
				break
			}
		}
		if idx == -1 {
			continue
		}

		wasHost := lobby.Players[idx].IsHost
		lobby.Players = append(lobby.Players[:idx], lobby.Players[idx+1:]...)

		if len(lobby.Players) == 0 {
			delete(reg.lobbies, code)
			return nil, true
		}

		if wasHost {
			lobby.Players[0].IsHost = true
		}
		return lobby, true
	}

	return nil, false
}
