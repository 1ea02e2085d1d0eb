package game

import (
	"log"
	"math/rand"

	"bossrush/internal/protocol"
	"bossrush/score"
)

// Mode is the pluggable round-resolution policy. One policy is active per
// lobby; switching modes replaces the object wholesale, so a Mode may keep
// arbitrary round state in its own fields.
type Mode interface {
	Name() string
	MaxPlayers() int

	OnJoin(p *Player)
	OnLeave(p *Player, leftLobby bool)

	// StartGame resolves starting lives, deals the shared seed, derives
	// initial pairings and marks the lobby started.
	StartGame()
	// CheckAllReady is idempotent: a no-op unless every eligible
	// participant is ready, in which case the next round starts.
	CheckAllReady()
	// CheckPVPDone and RecalculateScoreToBeat are the per-hand hooks.
	CheckPVPDone()
	RecalculateScoreToBeat()
	// CheckGameOver detects a sole survivor, announces the winner and
	// resets the lobby to pre-game state without evicting anyone.
	CheckGameOver()
	// RerollEnemies draws a fresh near-perfect matching among living
	// participants; MaybeReroll decides whether one is due mid-game.
	RerollEnemies()
	MaybeReroll()

	// Winner returns the sole surviving player, or nil (team modes
	// arbitrate winners themselves).
	Winner() *Player

	ResetPlayers()
}

// roundStarter is the internal virtual hook between a mode's embedded
// layers: CheckAllReady calls the outermost startRound.
type roundStarter interface {
	startRound()
}

// baseMode carries the shared head-to-head round machinery. Concrete
// modes embed it and keep a self reference so shared code dispatches to
// their overrides.
type baseMode struct {
	self       Mode
	lobby      *Lobby
	name       string
	maxPlayers int
	lives      int
}

func (b *baseMode) init(self Mode, l *Lobby, name string, maxPlayers int) {
	b.self = self
	b.lobby = l
	b.name = name
	b.maxPlayers = maxPlayers
	b.lives = 4
}

func (b *baseMode) Name() string    { return b.name }
func (b *baseMode) MaxPlayers() int { return b.maxPlayers }

// pairwise reports whether rounds resolve between paired players; house
// variants override it and settle against a target instead.
func (b *baseMode) pairwise() bool { return true }

func (b *baseMode) OnJoin(*Player)          {}
func (b *baseMode) OnLeave(*Player, bool)   {}
func (b *baseMode) RecalculateScoreToBeat() {}
func (b *baseMode) ResetPlayers()           {}

func (b *baseMode) StartGame() {
	b.lives = b.lobby.startingLives()

	start := protocol.New(protocol.ActStartGame).Set("deck", "c_multiplayer_1")
	if !b.lobby.optBool(optDifferentSeeds) {
		start.Set("seed", gameSeed())
	}
	b.lobby.Broadcast(start)

	b.lobby.SetPlayersLives(b.lives)
	b.self.RerollEnemies()

	b.lobby.IsStarted = true
	b.lobby.BroadcastLobbyInfo()

	for _, p := range b.lobby.Players {
		p.InMatch = true
		p.IsReady = false
		p.IsReadyPVP = false
	}
	log.Printf("[Lobby %s] Game started (%s, %d lives)", b.lobby.Code, b.name, b.lives)
}

func (b *baseMode) allReadyPVP() bool {
	if !b.lobby.IsStarted {
		return false
	}
	for _, p := range b.lobby.Players {
		if p.InMatch && p.Alive() && !p.IsReadyPVP {
			return false
		}
	}
	return true
}

func (b *baseMode) CheckAllReady() {
	if b.allReadyPVP() {
		b.self.(roundStarter).startRound()
	}
}

// startRound resets per-round counters and opens the next blind for every
// eligible participant.
func (b *baseMode) startRound() {
	for _, p := range b.lobby.Players {
		if !p.Alive() || !p.InMatch {
			continue
		}
		p.IsReady = false
		p.IsReadyPVP = false
		p.Score = score.Zero()
		p.HandsLeft = defaultHandsPerRound
		p.Send(protocol.New(protocol.ActStartBlind))
		p.InPVPBattle = true
	}
}

func (b *baseMode) CheckPVPDone() {}

func (b *baseMode) Winner() *Player {
	var winner *Player
	for _, p := range b.lobby.Players {
		if p.Alive() {
			if winner != nil {
				return nil
			}
			winner = p
		}
	}
	return winner
}

func (b *baseMode) CheckGameOver() {
	if !b.lobby.IsStarted {
		return
	}
	winner := b.self.Winner()
	if winner == nil {
		return
	}

	winner.Send(protocol.New(protocol.ActWinGame))
	if winner.EnemyID != "" {
		winner.requestEndGameJokersFrom(winner.EnemyID)
	}

	b.lobby.ResetPlayers()
	b.lobby.IsStarted = false
	b.lobby.BroadcastLobbyInfo()
	log.Printf("[Lobby %s] Game over, winner %s", b.lobby.Code, winner.ID)
}

// RerollEnemies draws a uniformly random near-perfect matching among
// living players; an odd count leaves exactly one unpaired.
func (b *baseMode) RerollEnemies() {
	living := make([]*Player, 0, len(b.lobby.Players))
	for _, p := range b.lobby.Players {
		if p.Alive() {
			living = append(living, p)
		}
	}

	rand.Shuffle(len(living), func(i, j int) {
		living[i], living[j] = living[j], living[i]
	})

	for len(living) >= 2 {
		a, z := living[0], living[1]
		living = living[2:]
		a.SetEnemy(z)
		z.SetEnemy(a)
	}
	if len(living) == 1 {
		living[0].ClearEnemy()
	}

	b.lobby.BroadcastLobbyInfo()
}

// MaybeReroll runs a fresh pairing pass once every living player is
// currently unpaired.
func (b *baseMode) MaybeReroll() {
	for _, p := range b.lobby.Players {
		if p.Alive() && p.EnemyID != "" {
			return
		}
	}
	b.self.RerollEnemies()
}

// disabledMode is the legacy two-player head-to-head: lobby capped at 2,
// fixed pairing, never re-rolled.
type disabledMode struct {
	baseMode
}

func newDisabledMode(l *Lobby) *disabledMode {
	m := &disabledMode{}
	m.init(m, l, "disabled", 2)

	// Kick overflow players the new cap no longer admits.
	for len(l.Players) > m.maxPlayers {
		p := l.Players[len(l.Players)-1]
		p.Send(protocol.New(protocol.ActKickedFromLobby))
		l.RemovePlayerFromGame(p, true)
		p.SendError("You have been removed from the lobby due to player limit changing.")
	}
	return m
}

func (m *disabledMode) RerollEnemies() {
	if len(m.lobby.Players) >= 2 {
		m.lobby.Players[0].SetEnemy(m.lobby.Players[1])
		m.lobby.Players[1].SetEnemy(m.lobby.Players[0])
	}
	m.lobby.BroadcastLobbyInfo()
}

func (m *disabledMode) MaybeReroll() {}

// nemesisMode is N-player pairwise battle royale with random re-pairing
// between rounds.
type nemesisMode struct {
	baseMode
}

func newNemesisMode(l *Lobby) *nemesisMode {
	m := &nemesisMode{}
	m.init(m, l, "nemesis", 16)
	return m
}
