package game

import (
	"log"
	"strconv"
	"time"

	"bossrush/internal/protocol"
)

// Lobby option keys. Options are an open string-keyed map; values are
// strings or bools.
const (
	optBattleRoyale      = "battle_royale"
	optBRMode            = "br_mode"
	optStartingLives     = "starting_lives"
	optDifferentSeeds    = "different_seeds"
	optDeathOnRoundLoss  = "death_on_round_loss"
	optPotluckMultiplier = "potluck_score_multiplier"
	optPotluckMinimum    = "potluck_minimum_score"
)

// startingLivesByGameMode maps the per-game rule set to its default life
// count; the starting_lives option overrides it.
var startingLivesByGameMode = map[string]int{
	"attrition": 4,
	"showdown":  2,
}

// Lobby owns its players, teams and the active battle-royale mode. Index 0
// of Players is the host.
type Lobby struct {
	Code      string
	GameMode  string
	Players   []*Player
	Mode      Mode
	Options   map[string]any
	IsStarted bool

	registry *Registry
	after    func(time.Duration, func())
}

func newLobby(r *Registry, code, gameMode string) *Lobby {
	if _, known := startingLivesByGameMode[gameMode]; !known {
		gameMode = "attrition"
	}
	l := &Lobby{
		Code:     code,
		GameMode: gameMode,
		Options: map[string]any{
			optBattleRoyale: true,
			optBRMode:       "nemesis",
		},
		registry: r,
		after:    r.after,
	}
	l.Mode = newNemesisMode(l)
	return l
}

func (l *Lobby) attachHost(host *Player) {
	l.Players = []*Player{host}
	host.lobby = l
	host.Send(protocol.New(protocol.ActJoinedLobby).
		Set("code", l.Code).
		Set("type", l.GameMode))
}

func (l *Lobby) PlayerCount() int { return len(l.Players) }

func (l *Lobby) Joinable() bool {
	return len(l.Players) < l.Mode.MaxPlayers() && !l.IsStarted
}

func (l *Lobby) GetPlayer(id string) *Player {
	for _, p := range l.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (l *Lobby) Host() *Player {
	if len(l.Players) == 0 {
		return nil
	}
	return l.Players[0]
}

func (l *Lobby) IsHost(p *Player) bool {
	h := l.Host()
	return h != nil && h.ID == p.ID
}

// LivingPlayers counts players that still hold lives.
func (l *Lobby) LivingPlayers() int {
	n := 0
	for _, p := range l.Players {
		if p.Alive() {
			n++
		}
	}
	return n
}

// Join appends a player if the lobby accepts them, replays the current
// options and broadcasts the new roster.
func (l *Lobby) Join(p *Player) {
	for _, have := range l.Players {
		if have == p {
			return
		}
	}
	if !l.Joinable() {
		p.SendError("Lobby is full, has already started, or does not exist.")
		return
	}

	l.Players = append(l.Players, p)
	p.lobby = l
	p.Send(protocol.New(protocol.ActJoinedLobby).
		Set("code", l.Code).
		Set("type", l.GameMode))
	p.Send(l.optionsMessage())
	l.BroadcastLobbyInfo()

	l.Mode.OnJoin(p)
}

// RemovePlayerFromGame stops the match for the player and, if leaveLobby,
// detaches them from team and roster. The last player leaving destroys
// the lobby; otherwise the active mode reacts, and the match is force-
// ended if fewer than two competitors retain lives.
func (l *Lobby) RemovePlayerFromGame(p *Player, leaveLobby bool) {
	p.Send(protocol.New(protocol.ActStopGame))
	p.InMatch = false
	p.InPVPBattle = false

	if leaveLobby {
		if p.team != nil {
			p.team.RemovePlayer(p)
		}
		for i, have := range l.Players {
			if have == p {
				l.Players = append(l.Players[:i], l.Players[i+1:]...)
				break
			}
		}
		p.lobby = nil
	}

	if len(l.Players) == 0 {
		l.registry.remove(l.Code)
		log.Printf("[Lobby %s] Destroyed", l.Code)
		return
	}

	if l.IsStarted {
		// Handle the abandoned opponent.
		if enemy := l.GetPlayer(p.EnemyID); p.EnemyID != "" && enemy != nil {
			if enemy.InPVPBattle {
				enemy.Send(protocol.New(protocol.ActEndPvP).Set("lost", false))
			}
			enemy.ClearEnemy()
		}

		l.Mode.CheckAllReady()
		l.Mode.RecalculateScoreToBeat()
		l.Mode.CheckPVPDone()
		l.CheckGameOver()

		p.ResetStats()

		if l.LivingPlayers() < 2 {
			l.Broadcast(protocol.New(protocol.ActStopGame))
			l.ResetPlayers()
			l.IsStarted = false
		}
	}

	l.BroadcastLobbyInfo()
	l.Mode.OnLeave(p, leaveLobby)
}

// Broadcast is a synchronous fan-out write to every player.
func (l *Lobby) Broadcast(m protocol.Message) {
	for _, p := range l.Players {
		p.Send(m)
	}
}

// BroadcastLobbyInfo sends each player a roster snapshot plus, once
// started, their currently assigned opponent.
func (l *Lobby) BroadcastLobbyInfo() {
	if len(l.Players) == 0 {
		return
	}

	records := make([]protocol.Message, 0, len(l.Players))
	for _, p := range l.Players {
		records = append(records, protocol.Message{
			"id":       protocol.Escape(p.ID),
			"username": protocol.Escape(p.Username),
			"hash":     protocol.Escape(p.ModHash),
			"isHost":   strconv.FormatBool(l.IsHost(p)),
		})
	}
	roster := protocol.SerializeList(records)

	for _, p := range l.Players {
		msg := protocol.New(protocol.ActLobbyInfo).
			Set("playerId", p.ID).
			Set("players", roster).
			Set("isStarted", l.IsStarted)
		if l.IsStarted && p.EnemyID != "" {
			msg.Set("enemyId", p.EnemyID)
		}
		p.Send(msg)
	}
}

// SetPlayersLives assigns everyone the same life count.
func (l *Lobby) SetPlayersLives(lives int) {
	for _, p := range l.Players {
		p.Lives = lives
	}
	l.Broadcast(protocol.New(protocol.ActPlayerInfo).Set("lives", lives))
}

func (l *Lobby) startingLives() int {
	if s, ok := l.optString(optStartingLives); ok {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return startingLivesByGameMode[l.GameMode]
}

// SetOptions merges coerced values. A change to the battle-royale toggle
// or sub-mode reconstructs the mode object, discarding all of its round
// state; everyone but the host is told the new options.
func (l *Lobby) SetOptions(opts map[string]string) {
	wasEnabled := l.optBool(optBattleRoyale)
	lastMode, _ := l.optString(optBRMode)

	for key, value := range opts {
		switch value {
		case "true", "false":
			l.Options[key] = value == "true"
		default:
			l.Options[key] = value
		}
	}

	nowMode, _ := l.optString(optBRMode)
	if wasEnabled != l.optBool(optBattleRoyale) || lastMode != nowMode {
		l.rebuildMode()
	}

	if host := l.Host(); host != nil {
		l.broadcastOptions(host.ID)
	}
}

// rebuildMode swaps the active mode wholesale. Any in-progress match is
// torn down: carrying lives or scores across a mode switch is not
// supported.
func (l *Lobby) rebuildMode() {
	if l.IsStarted {
		l.Broadcast(protocol.New(protocol.ActStopGame))
		l.ResetPlayers()
		l.IsStarted = false
	}

	// Team membership belongs to the outgoing mode; the new mode re-forms
	// teams if it uses them.
	for _, p := range l.Players {
		p.team = nil
	}

	if !l.optBool(optBattleRoyale) {
		l.Mode = newDisabledMode(l)
		return
	}
	mode, _ := l.optString(optBRMode)
	switch mode {
	case "nemesis":
		l.Mode = newNemesisMode(l)
	case "potluck":
		l.Mode = newPotluckMode(l)
	case "hivemind":
		l.Mode = newHivemindMode(l)
	default:
		l.Mode = newDisabledMode(l)
	}
	log.Printf("[Lobby %s] Mode is now %s", l.Code, l.Mode.Name())
}

func (l *Lobby) optionsMessage() protocol.Message {
	m := protocol.New(protocol.ActLobbyOptions).Set("gamemode", l.GameMode)
	for key, value := range l.Options {
		m.Set(key, value)
	}
	return m
}

func (l *Lobby) broadcastOptions(excludeID string) {
	msg := l.optionsMessage()
	for _, p := range l.Players {
		if p.ID != excludeID {
			p.Send(msg)
		}
	}
}

func (l *Lobby) optBool(key string) bool {
	v, _ := l.Options[key].(bool)
	return v
}

func (l *Lobby) optString(key string) (string, bool) {
	v, ok := l.Options[key].(string)
	return v, ok
}

// optFloat reads a numeric option stored as a string.
func (l *Lobby) optFloat(key string) (float64, bool) {
	s, ok := l.optString(key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ResetPlayers returns everyone (and the mode's own state) to pre-game
// shape without evicting anyone.
func (l *Lobby) ResetPlayers() {
	for _, p := range l.Players {
		p.Reset()
	}
	l.Mode.ResetPlayers()
}

// CheckReroll asks the mode whether a fresh pairing pass is due.
func (l *Lobby) CheckReroll() {
	if !l.IsStarted || len(l.Players) < 2 {
		return
	}
	l.Mode.MaybeReroll()
}

func (l *Lobby) CheckGameOver() {
	l.Mode.CheckGameOver()
}
