package game

import (
	"log"
	"math/rand"

	"bossrush/internal/protocol"
	"bossrush/score"
)

const defaultTeamID = "RED"

// hivemindMode groups players into teams that share a deck, a pooled
// score and a stock of lives, and pits team against team each round.
type hivemindMode struct {
	houseMode
	teams []*Team
}

func newHivemindMode(l *Lobby) *hivemindMode {
	m := &hivemindMode{}
	m.initHouse(m, l, "hivemind", 16)

	red := newTeam(defaultTeamID, l, m)
	m.teams = append(m.teams, red)
	for _, p := range l.Players {
		red.AddPlayer(p)
	}
	return m
}

func (m *hivemindMode) OnJoin(p *Player) {
	m.SetPlayerTeam(p, defaultTeamID)

	// Tell the new player what team everyone else is on.
	for _, other := range m.lobby.Players {
		if other != p && other.team != nil {
			p.Send(protocol.New(protocol.ActSetPlayerTeam).
				Set("playerId", other.ID).
				Set("teamId", other.team.ID))
		}
	}
}

func (m *hivemindMode) OnLeave(p *Player, leftLobby bool) {
	// The departed player no longer gates their old team's readiness.
	for _, t := range m.teams {
		t.CheckAllReady()
	}
	m.self.CheckPVPDone()
}

// SetPlayerTeam moves a player onto the named team, creating it on first
// reference.
func (m *hivemindMode) SetPlayerTeam(p *Player, teamID string) {
	for _, t := range m.teams {
		if t.ID == teamID {
			t.AddPlayer(p)
			return
		}
	}

	t := newTeam(teamID, m.lobby, m)
	m.teams = append(m.teams, t)
	t.AddPlayer(p)
}

func (m *hivemindMode) removeTeam(team *Team) {
	for i, t := range m.teams {
		if t == team {
			m.teams = append(m.teams[:i], m.teams[i+1:]...)
			return
		}
	}
}

func (m *hivemindMode) StartGame() {
	m.baseMode.StartGame()

	lives := m.lobby.startingLives()
	for _, t := range m.teams {
		t.Lives = lives
	}
}

func (m *hivemindMode) RecalculateScoreToBeat() {}

func (m *hivemindMode) CheckAllReady() {
	m.baseMode.CheckAllReady()
	for _, t := range m.teams {
		t.CheckAllReady()
	}
}

func (m *hivemindMode) startRound() {
	// Flush any deck edits queued during the shop phase before play.
	for _, t := range m.teams {
		if t.Deck != nil && t.Deck.PendingCount() > 0 {
			t.Deck.ApplyPending()
			t.broadcastDeck()
		}
	}

	m.baseMode.startRound()

	for _, t := range m.teams {
		t.ResetScore()
		t.InBlind = true
		t.InPVPBlind = true
	}
}

// RerollEnemies draws a random matching among teams still in the fight;
// an odd team out plays the house.
func (m *hivemindMode) RerollEnemies() {
	left := make([]*Team, 0, len(m.teams))
	for _, t := range m.teams {
		if t.Alive() {
			left = append(left, t)
		}
	}

	rand.Shuffle(len(left), func(i, j int) {
		left[i], left[j] = left[j], left[i]
	})

	for len(left) >= 2 {
		a, z := left[0], left[1]
		left = left[2:]
		a.SetEnemy(z)
		z.SetEnemy(a)
	}
	if len(left) == 1 {
		left[0].ClearEnemy()
	}

	m.lobby.BroadcastLobbyInfo()
}

func (m *hivemindMode) CheckPVPDone() {
	if !m.lobby.IsStarted {
		return
	}
	for _, t := range m.teams {
		if !t.AllDoneWithPVP() {
			return
		}
	}

	for _, t := range m.teams {
		if t.Lives <= 0 {
			continue
		}

		t.InPVPBlind = false
		t.InBlind = false

		enemyScore := score.Zero()
		if t.Enemy != nil {
			enemyScore = t.Enemy.Score
		}
		lost := t.Score.Less(enemyScore)

		for _, p := range t.Players {
			p.Send(protocol.New(protocol.ActEndPvP).Set("lost", lost))
			p.IsReady = false
			p.IsReadyPVP = false
			p.FirstReady = false
			p.InPVPBattle = false
		}

		if lost {
			t.LoseLife()
		}
	}

	m.self.RerollEnemies()
}

// winningTeam returns the sole team left standing, or nil while the game
// is still contested.
func (m *hivemindMode) winningTeam() *Team {
	if len(m.teams) == 0 {
		return nil
	}
	if len(m.teams) == 1 {
		return m.teams[0]
	}

	var winner *Team
	for _, t := range m.teams {
		if t.Alive() {
			if winner != nil {
				return nil
			}
			winner = t
		}
	}
	return winner
}

func (m *hivemindMode) Winner() *Player { return nil }

func (m *hivemindMode) CheckGameOver() {
	if !m.lobby.IsStarted {
		return
	}
	winner := m.winningTeam()
	if winner == nil {
		return
	}

	for _, p := range winner.Players {
		p.Send(protocol.New(protocol.ActWinGame))
		if winner.Enemy != nil {
			for _, enemy := range winner.Enemy.Players {
				p.requestEndGameJokersFrom(enemy.ID)
			}
		}
	}

	m.lobby.ResetPlayers()
	m.lobby.IsStarted = false
	m.lobby.BroadcastLobbyInfo()
	log.Printf("[Lobby %s] Game over, team %s wins", m.lobby.Code, winner.ID)
}

func (m *hivemindMode) ResetPlayers() {
	for _, t := range m.teams {
		t.ResetStats()
	}
}
