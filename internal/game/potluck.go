package game

import (
	"bossrush/internal/protocol"
	"bossrush/score"
)

// houseMode plays everyone against a shared house target instead of a
// peer. Pairing is disabled; the "enemy" each client renders is a
// synthetic house record.
type houseMode struct {
	baseMode
}

func (h *houseMode) initHouse(self Mode, l *Lobby, name string, maxPlayers int) {
	h.init(self, l, name, maxPlayers)
}

func (h *houseMode) StartGame() {
	h.baseMode.StartGame()
	h.self.RecalculateScoreToBeat()
}

func (h *houseMode) startRound() {
	h.baseMode.startRound()
	h.self.RecalculateScoreToBeat()
}

// No opponents to draw or redraw against the house.
func (h *houseMode) pairwise() bool { return false }
func (h *houseMode) RerollEnemies() { h.lobby.BroadcastLobbyInfo() }
func (h *houseMode) MaybeReroll()   {}

func (h *houseMode) RecalculateScoreToBeat() {
	for _, p := range h.lobby.Players {
		if p.Alive() {
			p.ScoreToBeat = score.FromFloat(100)
		}
	}
	h.broadcastHouse()
}

// broadcastHouse pushes each player's personal house target as an
// enemyInfo record.
func (h *houseMode) broadcastHouse() {
	for _, p := range h.lobby.Players {
		if !p.Alive() {
			continue
		}
		hands := 0
		for _, o := range h.lobby.Players {
			if o != p && o.Alive() {
				hands += o.HandsLeft
			}
		}
		p.Send(protocol.New(protocol.ActEnemyInfo).
			Set("playerId", "house").
			Set("score", p.ScoreToBeat).
			Set("handsLeft", hands).
			Set("skips", 0).
			Set("lives", 1))
	}
}

// potluckMode is the house variant where every player's target is the
// average of everyone else's current score.
type potluckMode struct {
	houseMode
}

func newPotluckMode(l *Lobby) *potluckMode {
	m := &potluckMode{}
	m.initHouse(m, l, "potluck", 16)
	return m
}

func (m *potluckMode) minimumScore() score.Score {
	if v, ok := m.lobby.optFloat(optPotluckMinimum); ok && v > 0 {
		return score.FromFloat(v)
	}
	return score.FromFloat(100)
}

// scaleTarget applies the lobby multiplier. Score has no multiply, so a
// factor k is applied as a division by 1/k.
func (m *potluckMode) scaleTarget(target score.Score) score.Score {
	mult, ok := m.lobby.optFloat(optPotluckMultiplier)
	if !ok || mult <= 0 || mult == 1 {
		return target
	}
	inv, err := score.FromFloat(1).Div(score.FromFloat(mult))
	if err != nil {
		return target
	}
	scaled, err := target.Div(inv)
	if err != nil {
		return target
	}
	return scaled
}

func (m *potluckMode) RecalculateScoreToBeat() {
	living := 0
	for _, p := range m.lobby.Players {
		if p.Alive() {
			living++
		}
	}
	if living < 2 {
		m.houseMode.RecalculateScoreToBeat()
		return
	}

	min := m.minimumScore()
	for _, p := range m.lobby.Players {
		if !p.Alive() {
			continue
		}
		total := score.Zero()
		for _, o := range m.lobby.Players {
			if o != p && o.Alive() {
				total = total.Add(o.Score)
			}
		}
		target, err := total.Div(score.FromFloat(float64(living - 1)))
		if err != nil || target.Less(min) {
			target = min
		}
		p.ScoreToBeat = m.scaleTarget(target)
	}
	m.broadcastHouse()
}

// roundDone reports whether every living player has either met their
// target or run out of hands.
func (m *potluckMode) roundDone() bool {
	for _, p := range m.lobby.Players {
		if !p.Alive() || !p.InMatch {
			continue
		}
		if !p.InPVPBattle {
			return false
		}
		if p.HandsLeft > 0 && p.Score.Less(p.ScoreToBeat) {
			return false
		}
	}
	return true
}

func (m *potluckMode) CheckPVPDone() {
	if !m.lobby.IsStarted || !m.roundDone() {
		return
	}

	for _, p := range m.lobby.Players {
		if !p.Alive() {
			continue
		}
		lost := p.Score.Less(p.ScoreToBeat)
		if lost {
			p.LoseLife()
		}
		p.Send(protocol.New(protocol.ActEndPvP).Set("lost", lost))
		p.FirstReady = false
		p.InPVPBattle = false
		p.ScoreToBeat = score.Zero()
	}
	m.lobby.CheckGameOver()
}
