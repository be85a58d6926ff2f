package games

// Players gather in a lobby identified by a short code, shared by link or QR
// One of them (whoever created the lobby) is the host and picks a theme and a mode
// Each player is dealt a shuffled prompt, and turns pass in join order
// When the last answer lands, the full set is revealed as a collective prophecy

// Modes:
// - classic: one prompt per player, answered once by its owner
// - pass-and-build: every player visits every prophecy chain, once per round,
//   so after N rounds each chain holds one line from each player

// Themes: classic, cringe, fantasy, plus "random" drawing from all of them

// Implementation details:
// - One websocket endpoint; the first message creates or joins a lobby
// - Connection identity is assigned server-side at upgrade
// - Disconnects remove the player immediately; the host role passes down
//   the join order, and an empty lobby is deleted
