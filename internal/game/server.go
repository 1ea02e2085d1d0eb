package game

import (
	"log"
	"time"

	"bossrush/internal/protocol"
)

// Server owns every lobby and player. All game state is touched by
// exactly one goroutine, the one draining the event channel in Run;
// transports and timers never mutate state directly, they submit events.
type Server struct {
	Version string

	registry *Registry
	events   chan event
	quit     chan struct{}
}

type event struct {
	player *Player
	msg    protocol.Message
	fn     func()
}

func NewServer(version string) *Server {
	s := &Server{
		Version: version,
		events:  make(chan event, 256),
		quit:    make(chan struct{}),
	}
	s.registry = NewRegistry(s.After)
	return s
}

func (s *Server) Registry() *Registry { return s.registry }

// Run drains the event channel until Stop. It is the only goroutine that
// may touch lobbies, teams or players.
func (s *Server) Run() {
	for {
		select {
		case ev := <-s.events:
			s.handle(ev)
		case <-s.quit:
			return
		}
	}
}

func (s *Server) Stop() { close(s.quit) }

// After schedules fn on the game goroutine after d. Timer callbacks go
// through the event channel like everything else.
func (s *Server) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() { s.submit(event{fn: fn}) })
}

func (s *Server) submit(ev event) {
	select {
	case s.events <- ev:
	case <-s.quit:
	}
}

// Connect attaches a fresh player to a transport connection and sends
// the greeting. Safe to call from transport goroutines: the new player
// is invisible to game state until its first event.
func (s *Server) Connect(conn Sender) *Player {
	p := newPlayer(conn)
	p.Send(protocol.New(protocol.ActConnected))
	p.Send(protocol.New(protocol.ActVersion))
	log.Printf("[Server] Client connected %s", p.ID)
	return p
}

// Disconnect removes the player from its lobby, if any. Called by the
// transport when the connection drops.
func (s *Server) Disconnect(p *Player) {
	s.submit(event{fn: func() {
		log.Printf("[Server] Client disconnected %s", p.ID)
		if l := p.Lobby(); l != nil {
			l.RemovePlayerFromGame(p, true)
		}
	}})
}

// HandleLine parses one wire line from the player and queues it for the
// game goroutine.
func (s *Server) HandleLine(p *Player, line string) {
	msg, err := protocol.Parse(line)
	if err != nil {
		log.Printf("[Server] %s sent malformed line: %v", p.ID, err)
		p.SendError("Failed to parse message")
		return
	}
	s.submit(event{player: p, msg: msg})
}

func (s *Server) handle(ev event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Server] Panic in event handler: %v", r)
		}
	}()

	if ev.fn != nil {
		ev.fn()
		return
	}

	action := ev.msg.Action()
	if action != protocol.ActKeepAlive && action != protocol.ActKeepAliveAck {
		log.Printf("[Server] %s -> %s", ev.player.ID, action)
	}
	s.dispatch(ev.player, ev.msg)
}
