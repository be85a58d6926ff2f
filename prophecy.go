// Prophecybox Prophecy Game
//
// Players join a shared lobby by short code, the host starts a themed round,
// and players take sequential turns contributing text that is finally
// revealed as a collective "prophecy".
//
// Features:
// - Single WebSocket endpoint; lobby membership is an explicit
//   connection -> lobby map owned by the gateway, never inferred from the
//   transport layer
// - 5-char uppercase join codes via crypto/rand, regenerated on collision
// - First player in a lobby is host; host passes to the next player in
//   join order when the host disconnects
// - An emptied lobby is deleted immediately
// - Two game modes: classic (one prompt per player) and pass-and-build
//   (every player visits every prophecy chain across N rounds)
// - Turn notices go to the whole room, plus a targeted copy flagged
//   isMyTurn to the acting player
// - All events for a gateway run on one goroutine, handled to completion,
//   so lobby and session mutations never need locks
// - In-browser QR button to share a lobby join link, backed by go-qrcode

package main

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// Messages coming from clients
type ClientMessage struct {
	Type       string `json:"type"` // "createLobby", "joinLobby", "startGame", "submitAnswer", "restartGame"
	PlayerName string `json:"playerName,omitempty"`
	LobbyID    string `json:"lobbyId,omitempty"`
	Theme      string `json:"theme,omitempty"`
	GameMode   string `json:"gameMode,omitempty"`
	Answer     string `json:"answer,omitempty"`
}

// Messages sent to clients
type LobbyCreatedMessage struct {
	Type    string   `json:"type"` // "lobbyCreated"
	LobbyID string   `json:"lobbyId"`
	Players []Player `json:"players"`
}

type JoinedLobbyMessage struct {
	Type    string   `json:"type"` // "joinedLobby"
	LobbyID string   `json:"lobbyId"`
	Players []Player `json:"players"`
	IsHost  bool     `json:"isHost"`
}

type PlayerJoinedMessage struct {
	Type    string   `json:"type"` // "playerJoined"
	Players []Player `json:"players"`
}

type GameStartedMessage struct {
	Type    string       `json:"type"` // "gameStarted"
	Session *GameSession `json:"session"`
}

type NextTurnMessage struct {
	Type              string `json:"type"` // "nextTurn"
	CurrentPlayerName string `json:"currentPlayerName"`
	Prompt            string `json:"prompt"`
	IsMyTurn          bool   `json:"isMyTurn"`
}

type RevealMessage struct {
	Type    string       `json:"type"` // "revealProphecies"
	Session *GameSession `json:"session"`
}

// SimpleMessage is for bare signals ("lobbyNotFound", "returnToLobby")
type SimpleMessage struct {
	Type string `json:"type"`
}

type Client struct {
	conn *websocket.Conn
	send chan any
	id   string
}

type event struct {
	typ    string // "register", "disconnect", or a ClientMessage type
	client *Client
	msg    ClientMessage
}

// Gateway accepts realtime connections and routes every inbound event to
// the registry and scheduler. It is the sole owner of the connection ->
// lobby association and of the registry itself; both are only touched from
// run's goroutine.
type Gateway struct {
	registry *LobbyRegistry
	clients  map[string]*Client // connID -> client
	lobbyFor map[string]string  // connID -> lobby code
	events   chan event
}

func newGateway() *Gateway {
	return &Gateway{
		registry: newLobbyRegistry(),
		clients:  make(map[string]*Client),
		lobbyFor: make(map[string]string),
		events:   make(chan event),
	}
}

// run processes events one at a time, each handled to completion before the
// next. Events from the same connection arrive in the order they were sent.
func (g *Gateway) run(cfg *Config) {
	for ev := range g.events {
		g.handle(cfg, ev)
	}
}

func (g *Gateway) handle(cfg *Config, ev event) {
	c := ev.client

	switch ev.typ {
	case "register":
		g.clients[c.id] = c

	case "disconnect":
		if _, ok := g.clients[c.id]; ok {
			delete(g.clients, c.id)
			close(c.send)
		}
		g.leaveLobby(c)

	case "createLobby":
		g.leaveLobby(c)

		lobby := g.registry.Create(c.id, ev.msg.PlayerName)
		g.lobbyFor[c.id] = lobby.Code
		logf(cfg, "GAMES: Player %q created lobby %s", ev.msg.PlayerName, lobby.Code)

		g.sendTo(c.id, LobbyCreatedMessage{
			Type:    "lobbyCreated",
			LobbyID: lobby.Code,
			Players: lobby.Players,
		})

	case "joinLobby":
		if g.registry.Lookup(ev.msg.LobbyID) == nil {
			g.sendTo(c.id, SimpleMessage{Type: "lobbyNotFound"})
			return
		}
		g.leaveLobby(c)

		lobby, ok := g.registry.Join(c.id, ev.msg.PlayerName, ev.msg.LobbyID)
		if !ok {
			return
		}
		g.lobbyFor[c.id] = lobby.Code
		logf(cfg, "GAMES: Player %q joined lobby %s", ev.msg.PlayerName, lobby.Code)

		g.sendTo(c.id, JoinedLobbyMessage{
			Type:    "joinedLobby",
			LobbyID: lobby.Code,
			Players: lobby.Players,
			IsHost:  false,
		})
		g.broadcast(lobby, PlayerJoinedMessage{
			Type:    "playerJoined",
			Players: lobby.Players,
		})

	case "startGame":
		lobby := g.lobbyOf(c)
		if lobby == nil {
			return
		}

		lobby.Session = newGameSession(Theme(ev.msg.Theme), GameMode(ev.msg.GameMode), lobby.Players)
		logf(cfg, "GAMES: Lobby %s started a %s round (theme %q)", lobby.Code, ev.msg.GameMode, ev.msg.Theme)

		g.broadcast(lobby, GameStartedMessage{
			Type:    "gameStarted",
			Session: lobby.Session,
		})
		g.announceTurn(lobby)

	case "submitAnswer":
		lobby := g.lobbyOf(c)
		if lobby == nil || lobby.Session == nil {
			return
		}

		actor, _ := lobby.Session.CurrentTurn()
		if actor.ID != c.id {
			return
		}

		if lobby.Session.Submit(ev.msg.Answer) {
			logf(cfg, "GAMES: Lobby %s finished its round", lobby.Code)
			g.broadcast(lobby, RevealMessage{
				Type:    "revealProphecies",
				Session: lobby.Session,
			})
			return
		}
		g.announceTurn(lobby)

	case "restartGame":
		lobby := g.lobbyOf(c)
		if lobby == nil {
			return
		}

		lobby.Session = nil
		g.broadcast(lobby, SimpleMessage{Type: "returnToLobby"})
	}
}

// leaveLobby drops whatever seat the connection currently holds, so that
// creating or joining a lobby while already seated can never leave a ghost
// member behind. The shrunken roster goes out to whoever remains.
func (g *Gateway) leaveLobby(c *Client) {
	if _, ok := g.lobbyFor[c.id]; !ok {
		return
	}
	delete(g.lobbyFor, c.id)

	lobby, removed := g.registry.RemoveConnection(c.id)
	if removed && lobby != nil {
		g.broadcast(lobby, PlayerJoinedMessage{
			Type:    "playerJoined",
			Players: lobby.Players,
		})
	}
}

func (g *Gateway) lobbyOf(c *Client) *Lobby {
	code, ok := g.lobbyFor[c.id]
	if !ok {
		return nil
	}
	return g.registry.Lookup(code)
}

// announceTurn tells the whole room whose turn it is, then sends the acting
// player their own copy with isMyTurn set. The actor receives both.
func (g *Gateway) announceTurn(lobby *Lobby) {
	actor, prompt := lobby.Session.CurrentTurn()

	msg := NextTurnMessage{
		Type:              "nextTurn",
		CurrentPlayerName: actor.Name,
		Prompt:            prompt,
	}
	g.broadcast(lobby, msg)

	msg.IsMyTurn = true
	g.sendTo(actor.ID, msg)
}

// broadcast fans a message out to every lobby member. Delivery is
// fire-and-forget; a member with no live connection is skipped.
func (g *Gateway) broadcast(lobby *Lobby, msg any) {
	for _, p := range lobby.Players {
		g.sendTo(p.ID, msg)
	}
}

func (g *Gateway) sendTo(connID string, msg any) {
	c, ok := g.clients[connID]
	if !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(g.clients, connID)
		close(c.send)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		log.Println("rand.Read error:", err)
		return ""
	}
	return hex.EncodeToString(buf)
}

// WebSocket handler: every connection gets a fresh identity and feeds the
// gateway's event loop.
func serveWSForGateway(cfg *Config, g *Gateway) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		connID := newConnID()
		if connID == "" {
			http.Error(w, "unable to assign connection id", http.StatusInternalServerError)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := &Client{
			conn: conn,
			send: make(chan any, 8),
			id:   connID,
		}

		g.events <- event{typ: "register", client: client}

		go client.writePump()
		client.readPump(g)
	}
}

func (c *Client) readPump(g *Gateway) {
	defer func() {
		g.events <- event{typ: "disconnect", client: c}
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "createLobby", "joinLobby", "startGame", "submitAnswer", "restartGame":
			g.events <- event{typ: msg.Type, client: c, msg: msg}
		default:
			// ignore unknown types
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for a lobby join URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	lobbyID := ps.ByName("lobbyid")
	if lobbyID == "" {
		http.Error(w, "missing lobby id", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:lobbyid/qr; strip trailing "/qr" to get the join URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// registerProphecyGame sets up routes so that:
//   - /ws                  → WebSocket for all lobbies
//   - /play/:lobbyid       → HTML client, join code prefilled from the URL
//   - /play/:lobbyid/qr    → PNG QR code for that join URL
//   - /assets/prophecy/*   → shared client assets
func registerProphecyGame(cfg *Config, mux *httprouter.Router, errs chan<- error) {
	g := newGateway()
	go g.run(cfg)

	mux.GET(cfg.prefix+"/ws", serveWSForGateway(cfg, g))

	mux.GET(cfg.prefix+"/play/:lobbyid", serveHomePage(cfg))

	mux.GET(cfg.prefix+"/play/:lobbyid/qr", qrHandler)

	mux.GET(cfg.prefix+"/assets/prophecy/app.css", serveAssets(cfg, errs))
	mux.GET(cfg.prefix+"/assets/prophecy/app.js", serveAssets(cfg, errs))
}
