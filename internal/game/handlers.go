package game

import (
	"fmt"
	"strconv"
	"strings"

	"bossrush/deck"
	"bossrush/internal/protocol"
)

func (s *Server) dispatch(p *Player, msg protocol.Message) {
	switch msg.Action() {
	case protocol.ActVersion:
		s.handleVersion(p, msg)
	case protocol.ActUsername:
		s.handleUsername(p, msg)
	case protocol.ActSetLocation:
		p.SetLocation(msg.String("location"))
	case protocol.ActCreateLobby:
		s.registry.Create(p, msg.String("gameMode"))
	case protocol.ActJoinLobby:
		s.handleJoinLobby(p, msg)
	case protocol.ActLobbyInfo:
		if l := p.Lobby(); l != nil {
			l.BroadcastLobbyInfo()
		}
	case protocol.ActLeaveLobby:
		if l := p.Lobby(); l != nil {
			l.RemovePlayerFromGame(p, true)
		}
	case protocol.ActReturnToLobby:
		if l := p.Lobby(); l != nil {
			l.RemovePlayerFromGame(p, false)
		}
	case protocol.ActKickPlayer:
		s.handleKickPlayer(p, msg)
	case protocol.ActStartGame:
		s.handleStartGame(p)
	case protocol.ActStopGame:
		if p.Lobby() != nil {
			p.Send(protocol.New(protocol.ActStopGame))
		}
	case protocol.ActSetTeam:
		s.handleSetTeam(p, msg)
	case protocol.ActReadyBlind:
		s.handleReadyBlind(p, msg)
	case protocol.ActUnreadyBlind:
		p.IsReady = false
		p.IsReadyPVP = false
	case protocol.ActPlayHand:
		s.handlePlayHand(p, msg)
	case protocol.ActLobbyOptions:
		s.handleLobbyOptions(p, msg)
	case protocol.ActSendDeckType:
		if t := p.Team(); t != nil {
			t.SetDeckType(msg.String("back"), msg.String("sleeve"), msg.String("stake"))
		}
	case protocol.ActSendDeck:
		if t := p.Team(); t != nil {
			t.DeckChunk(p, msg.String("deck"), msg.Bool("last"))
		}
	case protocol.ActAddCard:
		s.handleAddCard(p, msg)
	case protocol.ActRemoveCard:
		if t := p.Team(); t != nil && t.Deck != nil {
			t.Deck.StageRemove(msg.String("card"))
		}
	case protocol.ActSetCardSuit:
		s.stageCardChange(p, msg, deck.FieldSuit, "suit")
	case protocol.ActSetCardRank:
		s.stageCardChange(p, msg, deck.FieldRank, "rank")
	case protocol.ActSetCardEnhancement:
		s.stageCardChange(p, msg, deck.FieldEnhancement, "enhancement")
	case protocol.ActSetCardEdition:
		s.stageCardChange(p, msg, deck.FieldEdition, "edition")
	case protocol.ActSetCardSeal:
		s.stageCardChange(p, msg, deck.FieldSeal, "seal")
	case protocol.ActChangeHandLevel:
		if t := p.Team(); t != nil {
			t.ChangeHandLevel(msg.String("hand"), msg.Int("amount"))
		}
	case protocol.ActNewRound:
		p.ResetBlocker()
	case protocol.ActFailRound:
		if l := p.Lobby(); l != nil && l.optBool(optDeathOnRoundLoss) {
			p.LoseLife()
		}
	case protocol.ActSetAnte:
		p.Ante = msg.Int("ante")
	case protocol.ActSkip:
		s.handleSkip(p, msg)
	case protocol.ActSendPhantom:
		s.handleSendPhantom(p, msg)
	case protocol.ActRemovePhantom:
		s.handleRemovePhantom(p, msg)
	case protocol.ActAsteroid:
		s.relayToEnemy(p, protocol.New(protocol.ActAsteroid))
	case protocol.ActSoldJoker:
		s.relayToEnemy(p, protocol.New(protocol.ActSoldJoker))
	case protocol.ActMagnet:
		s.relayToEnemy(p, protocol.New(protocol.ActMagnet))
	case protocol.ActMagnetResponse:
		s.relayToEnemy(p, protocol.New(protocol.ActMagnetResponse).Set("key", msg.String("key")))
	case protocol.ActSpentLastShop:
		if l := p.Lobby(); l != nil {
			l.Broadcast(protocol.New(protocol.ActSpentLastShop).
				Set("playerId", p.ID).
				Set("amount", msg.Int("amount")))
		}
	case protocol.ActSendMoneyToPlayer:
		s.handleSendMoney(p, msg)
	case protocol.ActReceiveEndGameJokers:
		s.handleReceiveEndGameJokers(p, msg)
	case protocol.ActStartAnteTimer:
		if l := p.Lobby(); l != nil {
			l.Broadcast(protocol.New(protocol.ActStartAnteTimer).Set("time", msg.Int("time")))
		}
	case protocol.ActFailTimer:
		p.LoseLife()
	case protocol.ActKeepAlive:
		p.Send(protocol.New(protocol.ActKeepAliveAck))
	case protocol.ActKeepAliveAck:
		// Liveness already noted by the transport.
	}
}

// handleVersion warns clients running behind the server. Connections are
// never refused over version skew; old clients just see the notice.
func (s *Server) handleVersion(p *Player, msg protocol.Message) {
	client, ok := parseSemver(msg.String("version"))
	if !ok {
		return
	}
	server, ok := parseSemver(s.Version)
	if !ok {
		return
	}
	for i := range client {
		if client[i] < server[i] {
			p.SendError(fmt.Sprintf("[WARN] Server expecting version %s", s.Version))
			return
		}
		if client[i] > server[i] {
			return
		}
	}
}

// parseSemver extracts leading major.minor.patch, ignoring any suffix.
func parseSemver(v string) ([3]int, bool) {
	var out [3]int
	v, _, _ = strings.Cut(v, "-")
	parts := strings.SplitN(v, ".", 3)
	if len(parts) != 3 {
		return out, false
	}
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return out, false
		}
		out[i] = n
	}
	return out, true
}

func (s *Server) handleUsername(p *Player, msg protocol.Message) {
	p.Username = msg.String("username")
	p.ModHash = msg.String("modHash")
	if l := p.Lobby(); l != nil {
		l.BroadcastLobbyInfo()
	}
}

func (s *Server) handleJoinLobby(p *Player, msg protocol.Message) {
	l := s.registry.Get(msg.String("code"))
	if l == nil {
		p.SendError("Lobby does not exist.")
		return
	}
	l.Join(p)
}

func (s *Server) handleKickPlayer(p *Player, msg protocol.Message) {
	l := p.Lobby()
	if l == nil || !l.IsHost(p) {
		return
	}
	target := l.GetPlayer(msg.String("playerId"))
	if target == nil {
		return
	}
	l.RemovePlayerFromGame(target, true)
	target.Send(protocol.New(protocol.ActKickedFromLobby))
}

func (s *Server) handleStartGame(p *Player) {
	l := p.Lobby()
	if l == nil || !l.IsHost(p) {
		return
	}
	l.Mode.StartGame()
}

func (s *Server) handleSetTeam(p *Player, msg protocol.Message) {
	l := p.Lobby()
	if l == nil {
		return
	}
	if m, ok := l.Mode.(*hivemindMode); ok {
		m.SetPlayerTeam(p, msg.String("teamId"))
	}
}

func (s *Server) handleReadyBlind(p *Player, msg protocol.Message) {
	p.IsReady = true
	if _, ok := msg.Get("isPVP"); ok {
		p.IsReadyPVP = msg.Bool("isPVP")
	} else {
		p.IsReadyPVP = true
	}

	// First player to ready up with an idle opponent gets the speedrun
	// notice.
	enemy := p.Enemy()
	if !p.FirstReady && (enemy == nil || (!enemy.IsReady && !enemy.FirstReady)) {
		p.FirstReady = true
		p.Send(protocol.New(protocol.ActSpeedrun))
	}

	if l := p.Lobby(); l != nil {
		l.Mode.CheckAllReady()
	}
}

func (s *Server) handlePlayHand(p *Player, msg protocol.Message) {
	l := p.Lobby()
	if l == nil || l.PlayerCount() < 2 {
		p.Send(protocol.New(protocol.ActStopGame))
		return
	}

	if sc, err := msg.Score("score"); err == nil {
		p.Score = sc
	}
	p.HandsLeft = msg.Int("handsLeft")

	if t := p.Team(); t != nil {
		if delta, err := msg.Score("scoreDelta"); err == nil {
			t.AddScore(delta)
		}
	} else {
		if !p.InPVPBattle {
			return
		}
		if pm, ok := l.Mode.(interface{ pairwise() bool }); ok && pm.pairwise() {
			s.resolveHeadToHead(p, l)
		}
	}

	l.Mode.RecalculateScoreToBeat()
	l.Mode.CheckPVPDone()
	l.CheckReroll()
}

// resolveHeadToHead settles a pairwise duel after one hand: when either
// side is out of hands and behind, or both are out, the lower score loses
// a life and both are released from the battle.
func (s *Server) resolveHeadToHead(p *Player, l *Lobby) {
	enemy := p.Enemy()
	if enemy == nil {
		// Let them play one hand against no one.
		p.FirstReady = false
		p.InPVPBattle = false
		p.Send(protocol.New(protocol.ActMessage).Set("locKey", "msg_no_enemy"))
		p.Send(protocol.New(protocol.ActEndPvP).Set("lost", false))
		return
	}

	p.BroadcastStats()

	done := (p.HandsLeft == 0 && enemy.Score.Greater(p.Score)) ||
		(enemy.HandsLeft == 0 && p.Score.Greater(enemy.Score)) ||
		(enemy.HandsLeft == 0 && p.HandsLeft == 0)
	if !done {
		return
	}

	winner, loser := p, enemy
	if enemy.Score.Greater(p.Score) {
		winner, loser = enemy, p
	}

	tied := winner.Score.Cmp(loser.Score) == 0
	if !tied {
		loser.LoseLife()
	}

	for _, side := range [2]*Player{winner, loser} {
		side.FirstReady = false
		side.InPVPBattle = false
		side.ClearEnemy()
	}

	winner.Send(protocol.New(protocol.ActEndPvP).Set("lost", false))
	loser.Send(protocol.New(protocol.ActEndPvP).Set("lost", !tied))
}

func (s *Server) handleLobbyOptions(p *Player, msg protocol.Message) {
	l := p.Lobby()
	if l == nil {
		return
	}
	opts := make(map[string]string, len(msg))
	for key, value := range msg {
		if key != protocol.FieldAction {
			opts[key] = value
		}
	}
	l.SetOptions(opts)
}

func (s *Server) handleAddCard(p *Player, msg protocol.Message) {
	t := p.Team()
	if t == nil || t.Deck == nil {
		return
	}
	c, err := deck.ParseCard(msg.String("card"))
	if err != nil {
		p.SendError("Malformed card")
		return
	}
	t.Deck.StageAdd(c)
}

func (s *Server) stageCardChange(p *Player, msg protocol.Message, field deck.Field, key string) {
	if t := p.Team(); t != nil && t.Deck != nil {
		t.Deck.StageChange(msg.String("card"), field, msg.String(key))
	}
}

func (s *Server) handleSkip(p *Player, msg protocol.Message) {
	p.Skips = msg.Int("skips")
	if p.Lobby() == nil {
		return
	}
	p.BroadcastStats()
	if t := p.Team(); t != nil {
		t.SkipBlind(p.ID)
	}
}

func (s *Server) handleSendPhantom(p *Player, msg protocol.Message) {
	enemy := p.Enemy()
	if enemy == nil {
		return
	}
	key := msg.String("key")
	p.PhantomKeys = append(p.PhantomKeys, key)
	enemy.Send(protocol.New(protocol.ActSendPhantom).Set("key", key))
}

func (s *Server) handleRemovePhantom(p *Player, msg protocol.Message) {
	enemy := p.Enemy()
	if enemy == nil {
		return
	}
	key := msg.String("key")
	for i, have := range p.PhantomKeys {
		if have == key {
			p.PhantomKeys = append(p.PhantomKeys[:i], p.PhantomKeys[i+1:]...)
			break
		}
	}
	enemy.Send(protocol.New(protocol.ActRemovePhantom).Set("key", key))
}

func (s *Server) relayToEnemy(p *Player, msg protocol.Message) {
	if enemy := p.Enemy(); enemy != nil {
		enemy.Send(msg)
	}
}

func (s *Server) handleSendMoney(p *Player, msg protocol.Message) {
	l := p.Lobby()
	if l == nil {
		return
	}
	target := l.GetPlayer(msg.String("playerId"))
	if target == nil {
		return
	}
	target.Send(protocol.New(protocol.ActGiveMoney).Set("amount", msg.Int("amount")))
}

func (s *Server) handleReceiveEndGameJokers(p *Player, msg protocol.Message) {
	l := p.Lobby()
	if l == nil {
		return
	}
	receiver := l.GetPlayer(msg.String("receiverId"))
	if receiver == nil {
		return
	}
	receiver.Send(protocol.New(protocol.ActReceiveEndGameJokers).Set("keys", msg.String("keys")))
}
