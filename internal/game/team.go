package game

import (
	"errors"
	"log"
	"time"

	"bossrush/deck"
	"bossrush/internal/protocol"
	"bossrush/score"
)

const deckRetryInterval = 500 * time.Millisecond

// Team is a group of players sharing one deck, one score pool and one
// stock of lives. Only team modes create them.
type Team struct {
	ID    string
	lobby *Lobby
	mode  *hivemindMode

	Players    []*Player
	Deck       *deck.Deck
	buffer     deck.ChunkBuffer
	HandLevels map[string]int

	Score score.Score
	Lives int
	Skips int

	InBlind    bool
	InPVPBlind bool
	Enemy      *Team

	retryScheduled bool
}

func newTeam(id string, l *Lobby, mode *hivemindMode) *Team {
	return &Team{
		ID:         id,
		lobby:      l,
		mode:       mode,
		HandLevels: make(map[string]int),
		Score:      score.Zero(),
		Lives:      4,
	}
}

func (t *Team) Alive() bool { return t.Lives > 0 && len(t.Players) > 0 }

func (t *Team) AddPlayer(p *Player) {
	if p.team != nil {
		p.team.RemovePlayer(p)
	}

	p.team = t
	t.Players = append(t.Players, p)

	t.lobby.Broadcast(protocol.New(protocol.ActSetPlayerTeam).
		Set("playerId", p.ID).
		Set("teamId", t.ID))
}

func (t *Team) RemovePlayer(p *Player) {
	p.team = nil
	for i, member := range t.Players {
		if member == p {
			t.Players = append(t.Players[:i], t.Players[i+1:]...)
			break
		}
	}

	if len(t.Players) == 0 {
		t.mode.removeTeam(t)
	}
}

func (t *Team) SetDeckType(back, sleeve, stake string) {
	t.send(protocol.New(protocol.ActSetDeckType).
		Set("back", back).
		Set("sleeve", sleeve).
		Set("stake", stake))
}

// DeckChunk feeds one piece of the shared deck upload. The first sender
// owns the transfer; later chunks from teammates are dropped. The
// assembled deck is pushed to the whole team once the final chunk lands.
func (t *Team) DeckChunk(sender *Player, chunk string, last bool) {
	if t.Deck != nil {
		return
	}

	if err := t.buffer.Append(sender.ID, chunk, last); err != nil {
		if !errors.Is(err, deck.ErrTransferOwned) {
			log.Printf("[Team %s] Deck chunk rejected: %v", t.ID, err)
		}
		return
	}

	if !t.buffer.Complete() {
		return
	}

	d, err := t.buffer.Assemble()
	if err != nil {
		log.Printf("[Team %s] Deck assembly failed: %v", t.ID, err)
		return
	}
	t.Deck = d
	t.broadcastDeck()
}

func (t *Team) SetEnemy(enemy *Team) {
	if t.Enemy != nil {
		t.Enemy.Enemy = nil
	}
	t.Enemy = enemy
	if enemy != nil {
		enemy.broadcastStatsToEnemies()
	}
}

func (t *Team) ClearEnemy() {
	if t.Enemy != nil {
		t.Enemy.Enemy = nil
	}
	t.Enemy = nil

	t.send(protocol.New(protocol.ActEnemyInfo).
		Set("playerId", "house").
		Set("score", score.FromFloat(100)).
		Set("handsLeft", 0).
		Set("lives", 4).
		Set("skips", 0))
}

// AddScore folds one member's hand result into the pooled score. Any
// negative delta, or a pool driven negative, clears the pool.
func (t *Team) AddScore(delta score.Score) {
	if delta.Negative() {
		t.ResetScore()
		return
	}

	t.Score = t.Score.Add(delta)
	if t.Score.Negative() {
		t.ResetScore()
		return
	}
	t.broadcastScore()

	if !t.InPVPBlind {
		t.send(protocol.New(protocol.ActEndBlind))
	}
}

func (t *Team) ChangeHandLevel(hand string, amount int) {
	if _, ok := t.HandLevels[hand]; !ok {
		t.HandLevels[hand] = 1
	}
	t.HandLevels[hand] += amount

	t.send(protocol.New(protocol.ActSetHandLevel).
		Set("hand", hand).
		Set("level", t.HandLevels[hand]))
}

func (t *Team) SkipBlind(excludePlayerID string) {
	if t.Lives <= 0 {
		return
	}
	t.Skips++

	for _, p := range t.Players {
		if p.ID != excludePlayerID {
			p.Send(protocol.New(protocol.ActSkipBlind))
		}
	}
	t.broadcastScore()
}

func (t *Team) LoseLife() {
	if t.Lives <= 0 {
		return
	}
	t.Lives--

	t.send(protocol.New(protocol.ActPlayerInfo).Set("lives", t.Lives))
	t.broadcastPlayers()

	if t.Lives > 0 {
		return
	}

	for _, p := range t.Players {
		p.Send(protocol.New(protocol.ActLoseGame))
		if t.Enemy != nil {
			for _, enemy := range t.Enemy.Players {
				p.requestEndGameJokersFrom(enemy.ID)
			}
		}
	}
	t.lobby.CheckGameOver()
}

// CheckAllReady starts the team's next co-op blind once every member is
// ready. If the shared deck upload is still in flight the check is
// retried on a short timer instead of blocking the event loop.
func (t *Team) CheckAllReady() {
	if !t.lobby.IsStarted || t.Lives <= 0 {
		return
	}
	for _, p := range t.Players {
		if !p.IsReady {
			return
		}
	}

	if t.Deck == nil && !t.buffer.Empty() {
		t.scheduleReadyRetry()
		return
	}

	t.ResetScore()
	if t.Deck != nil {
		t.Deck.ApplyPending()
		t.broadcastDeck()
	}

	for _, p := range t.Players {
		p.IsReady = false
		p.Score = score.Zero()
		p.HandsLeft = defaultHandsPerRound
		p.Send(protocol.New(protocol.ActStartBlind))
	}
}

func (t *Team) scheduleReadyRetry() {
	if t.retryScheduled {
		return
	}
	t.retryScheduled = true
	t.lobby.after(deckRetryInterval, func() {
		t.retryScheduled = false
		t.CheckAllReady()
	})
}

// AllDoneWithPVP reports whether this team has nothing left to play in
// the current head-to-head round.
func (t *Team) AllDoneWithPVP() bool {
	if t.Lives <= 0 || t.Enemy == nil {
		return true
	}
	if t.HandsLeft() <= 0 {
		return true
	}
	return !t.Score.Less(t.Enemy.Score) && t.Enemy.HandsLeft() <= 0
}

func (t *Team) HandsLeft() int {
	total := 0
	for _, p := range t.Players {
		total += p.HandsLeft
	}
	return total
}

func (t *Team) broadcastDeck() {
	if t.Deck == nil {
		return
	}
	t.send(protocol.New(protocol.ActSetDeck).Set("deck", t.Deck.String()))
}

func (t *Team) broadcastScore() {
	t.send(protocol.New(protocol.ActSetScore).Set("score", t.Score))
	t.broadcastStatsToEnemies()
}

// broadcastStatsToEnemies renders the whole team as a single synthetic
// opponent on the other side's screens.
func (t *Team) broadcastStatsToEnemies() {
	if t.Enemy == nil {
		return
	}

	shown := t.Score
	if floor := score.FromFloat(100); shown.Less(floor) {
		shown = floor
	}

	for _, enemy := range t.Enemy.Players {
		enemy.Send(protocol.New(protocol.ActEnemyInfo).
			Set("playerId", "house").
			Set("score", shown).
			Set("handsLeft", t.HandsLeft()).
			Set("lives", t.Lives).
			Set("skips", t.Skips))
	}
}

func (t *Team) broadcastPlayers() {
	for _, p := range t.Players {
		t.lobby.Broadcast(protocol.New(protocol.ActEnemyInfo).
			Set("playerId", p.ID).
			Set("score", t.Score).
			Set("handsLeft", p.HandsLeft).
			Set("lives", t.Lives).
			Set("skips", t.Skips))
	}
}

func (t *Team) ResetScore() {
	t.Score = score.Zero()
	t.broadcastScore()
}

func (t *Team) ResetStats() {
	t.Lives = 4
	t.Skips = 0
	t.Deck = nil
	t.HandLevels = make(map[string]int)
	t.Enemy = nil
	t.InBlind = false
	t.InPVPBlind = false
}

func (t *Team) send(m protocol.Message) {
	for _, p := range t.Players {
		p.Send(m)
	}
}
