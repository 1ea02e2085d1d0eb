package game

import (
	"log"

	"github.com/google/uuid"

	"bossrush/internal/protocol"
	"bossrush/score"
)

// Sender is the connection half a player talks through. The gateway
// implements it; tests use no-op or recording fakes.
type Sender interface {
	Send(protocol.Message)
	Close()
}

const defaultHandsPerRound = 4

// Player is one connection's mutable game state. Identity is a random id
// assigned at connect, stable for the connection's lifetime.
type Player struct {
	ID       string
	Username string
	ModHash  string

	conn  Sender
	lobby *Lobby
	team  *Team

	IsReady    bool
	IsReadyPVP bool
	FirstReady bool

	Lives       int
	Score       score.Score
	HandsLeft   int
	Ante        int
	Skips       int
	EnemyID     string // empty = no opponent assigned
	InMatch     bool
	InPVPBattle bool
	ScoreToBeat score.Score
	PhantomKeys []string

	// Debounce guard against losing two lives in one tick.
	LivesBlocker bool

	Location string
}

func newPlayer(conn Sender) *Player {
	return &Player{
		ID:        uuid.NewString(),
		Username:  "Guest",
		ModHash:   "NULL",
		conn:      conn,
		HandsLeft: defaultHandsPerRound,
		Ante:      1,
		Location:  "loc_selecting",
	}
}

func (p *Player) Lobby() *Lobby { return p.lobby }
func (p *Player) Team() *Team   { return p.team }

func (p *Player) Alive() bool { return p.Lives > 0 }

func (p *Player) Send(m protocol.Message) {
	if p.conn != nil {
		p.conn.Send(m)
	}
}

func (p *Player) SendError(msg string) {
	p.Send(protocol.New(protocol.ActError).Set("message", msg))
}

// Enemy resolves the current opponent within the same lobby, or nil.
func (p *Player) Enemy() *Player {
	if p.lobby == nil || p.EnemyID == "" {
		return nil
	}
	return p.lobby.GetPlayer(p.EnemyID)
}

// statsMessage is the enemyInfo record every stat change fans out as.
func (p *Player) statsMessage() protocol.Message {
	return protocol.New(protocol.ActEnemyInfo).
		Set("playerId", p.ID).
		Set("handsLeft", p.HandsLeft).
		Set("score", p.Score).
		Set("skips", p.Skips).
		Set("lives", p.Lives)
}

// BroadcastStats tells the whole lobby this player's current numbers.
func (p *Player) BroadcastStats() {
	if p.lobby != nil {
		p.lobby.Broadcast(p.statsMessage())
	}
}

func (p *Player) SetLocation(location string) {
	p.Location = location
	if p.lobby != nil {
		p.lobby.Broadcast(protocol.New(protocol.ActEnemyLocation).
			Set("playerId", p.ID).
			Set("location", p.Location))
	}
}

// ResetStats is the between-matches soft reset: score, hands, opponent and
// transient effects go, identity and team stay.
func (p *Player) ResetStats() {
	p.Lives = 0
	p.Score = score.Zero()
	p.HandsLeft = defaultHandsPerRound
	p.Ante = 1
	p.Skips = 0
	p.EnemyID = ""
	p.InPVPBattle = false
	p.ScoreToBeat = score.Zero()
	p.PhantomKeys = nil
	p.BroadcastStats()
}

func (p *Player) ResetBlocker() { p.LivesBlocker = false }

func (p *Player) Reset() {
	p.IsReady = false
	p.IsReadyPVP = false
	p.FirstReady = false
	p.InMatch = false
	p.ResetStats()
	p.ResetBlocker()
	p.SetLocation("loc_selecting")
}

// LoseLife deducts one life unless the debounce blocker is set, then runs
// the elimination path if the player is out.
func (p *Player) LoseLife() {
	if !p.LivesBlocker && p.Lives > 0 {
		p.Lives--
		p.LivesBlocker = true
		p.Send(protocol.New(protocol.ActPlayerInfo).Set("lives", p.Lives))
		p.BroadcastStats()
	}

	if p.Lives > 0 {
		return
	}
	p.Send(protocol.New(protocol.ActLoseGame))

	if p.lobby == nil {
		return
	}

	// The would-be winner is asked for its end-of-game payload before the
	// lobby resets on game over.
	var winnerID string
	if w := p.lobby.Mode.Winner(); w != nil {
		winnerID = w.ID
	}
	p.lobby.CheckGameOver()
	if winnerID != "" {
		p.requestEndGameJokersFrom(winnerID)
	}

	if enemy := p.Enemy(); enemy != nil {
		p.requestEndGameJokersFrom(enemy.ID)
		enemy.ClearEnemy()
	}

	p.lobby.Mode.CheckAllReady()
}

// requestEndGameJokersFrom asks another player to hand its end-of-game
// jokers to this one.
func (p *Player) requestEndGameJokersFrom(playerID string) {
	if p.lobby == nil {
		return
	}
	if other := p.lobby.GetPlayer(playerID); other != nil {
		other.Send(protocol.New(protocol.ActGetEndGameJokers).Set("receiverId", p.ID))
	}
}

// SetEnemy assigns a new opponent, moving any transient phantom effects
// from the old opponent to the new one.
func (p *Player) SetEnemy(enemy *Player) {
	if p.lobby == nil {
		return
	}
	if enemy == nil {
		log.Printf("[Game] SetEnemy(nil) on %s; use ClearEnemy", p.ID)
		return
	}

	if p.EnemyID != "" {
		p.removePhantomsFromEnemy()
	}

	p.EnemyID = enemy.ID
	p.lobby.Broadcast(p.statsMessage().Set("enemyId", p.EnemyID))

	for _, key := range p.PhantomKeys {
		enemy.Send(protocol.New(protocol.ActSendPhantom).Set("key", key))
	}
}

// ClearEnemy drops the opponent reference on this side only; pairing code
// is responsible for symmetry.
func (p *Player) ClearEnemy() {
	p.removePhantomsFromEnemy()
	p.EnemyID = ""
	if p.lobby != nil {
		p.lobby.Broadcast(p.statsMessage().Set("enemyId", "None"))
	}
}

func (p *Player) removePhantomsFromEnemy() {
	enemy := p.Enemy()
	if enemy == nil {
		return
	}
	for _, key := range p.PhantomKeys {
		enemy.Send(protocol.New(protocol.ActRemovePhantom).Set("key", key))
	}
}
