package main

import (
	"fmt"
	mathrand "math/rand/v2"
)

// GameMode selects how answers accumulate across turns.
type GameMode string

const (
	// ModeClassic: each player answers their own dedicated prompt, once.
	ModeClassic GameMode = "classic"
	// ModePassAndBuild: players rotate through every prompt chain, one
	// answer per chain per round, for N rounds.
	ModePassAndBuild GameMode = "pass-and-build"
)

// GameSession is the active round owned by a lobby. Seats is the roster
// frozen at start; later joins and disconnects never resize the session,
// so turn indexing stays aligned with Prompts/Answers for its whole life.
type GameSession struct {
	Theme              Theme      `json:"theme"`
	Mode               GameMode   `json:"gameMode"`
	CurrentPlayerIndex int        `json:"currentPlayerIndex"`
	CurrentRound       int        `json:"currentRound"`
	Prompts            []string   `json:"prompts"`
	Answers            []string   `json:"answers,omitempty"`
	Grid               [][]string `json:"answerGrid,omitempty"`
	Seats              []Player   `json:"players"`
}

// newGameSession draws the theme's prompts, shuffles them uniformly, and
// truncates to the roster size, then sets up the mode's answer shape:
// a flat slot per seat for classic, a rounds-by-seats matrix otherwise.
func newGameSession(theme Theme, mode GameMode, players []Player) *GameSession {
	prompts := promptsFor(theme)

	// Fisher-Yates
	for i := len(prompts) - 1; i > 0; i-- {
		j := mathrand.IntN(i + 1)
		prompts[i], prompts[j] = prompts[j], prompts[i]
	}

	n := len(players)
	if len(prompts) > n {
		prompts = prompts[:n]
	}

	seats := make([]Player, n)
	copy(seats, players)

	s := &GameSession{
		Theme:   theme,
		Mode:    mode,
		Prompts: prompts,
		Seats:   seats,
	}

	if mode == ModePassAndBuild {
		s.Grid = make([][]string, n)
		for i := range s.Grid {
			s.Grid[i] = make([]string, n)
		}
	} else {
		s.Answers = make([]string, n)
	}

	return s
}

// CurrentTurn computes the acting seat and the prompt to show them.
// In classic mode seat i answers prompt i. In pass-and-build, the actor
// for chain i during round r is seats[(i+r) mod N], and the prompt is
// attributed to the seat whose prophecy the chain builds.
func (s *GameSession) CurrentTurn() (Player, string) {
	n := len(s.Seats)
	if n == 0 || s.CurrentPlayerIndex >= n {
		return Player{}, ""
	}

	var prompt string
	if s.CurrentPlayerIndex < len(s.Prompts) {
		prompt = s.Prompts[s.CurrentPlayerIndex]
	}

	if s.Mode == ModePassAndBuild {
		owner := s.Seats[s.CurrentPlayerIndex]
		actor := s.Seats[(s.CurrentPlayerIndex+s.CurrentRound)%n]
		return actor, fmt.Sprintf("For %s: %s", owner.Name, prompt)
	}

	return s.Seats[s.CurrentPlayerIndex], prompt
}

// Submit writes the answer into the current slot and advances the turn
// pointer. In pass-and-build the cell is [round][submitter's seat], so each
// row holds every seat's answer for that round; reveal reassembles chain i
// from cells [r][(i+r) mod N]. Each cell is visited exactly once, so no
// cell is ever written twice. Returns true when the session is complete.
func (s *GameSession) Submit(answer string) bool {
	n := len(s.Seats)
	if n == 0 {
		return true
	}

	if s.Mode == ModePassAndBuild {
		if s.CurrentRound < n && s.CurrentPlayerIndex < n {
			s.Grid[s.CurrentRound][(s.CurrentPlayerIndex+s.CurrentRound)%n] = answer
		}
		s.CurrentPlayerIndex++
		if s.CurrentPlayerIndex >= n {
			s.CurrentPlayerIndex = 0
			s.CurrentRound++
		}
		return s.CurrentRound >= n
	}

	done := s.CurrentPlayerIndex == n-1
	if s.CurrentPlayerIndex < len(s.Answers) {
		s.Answers[s.CurrentPlayerIndex] = answer
	}
	s.CurrentPlayerIndex++
	return done
}
