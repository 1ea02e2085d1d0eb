// Package gateway owns the transports: a raw TCP line protocol for the
// native client and a WebSocket endpoint for everything else. Both feed
// identical sessions into the game server.
package gateway

import (
	"bufio"
	"log"
	"net"
	"sync"
	"time"

	"bossrush/internal/game"
	"bossrush/internal/protocol"
)

const sendBuffer = 256

// Gateway accepts connections and bridges them to the game server.
type Gateway struct {
	game *game.Server

	keepAliveInitial time.Duration
	keepAliveRetry   time.Duration
	keepAliveRetries int
}

func New(gs *game.Server, kaInitial, kaRetry time.Duration, kaRetries int) *Gateway {
	return &Gateway{
		game:             gs,
		keepAliveInitial: kaInitial,
		keepAliveRetry:   kaRetry,
		keepAliveRetries: kaRetries,
	}
}

// ServeTCP accepts raw connections until the listener closes.
func (g *Gateway) ServeTCP(ln net.Listener) error {
	log.Printf("[Gateway] Listening on %s", ln.Addr())
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		if tc, ok := conn.(*net.TCPConn); ok {
			// Latency matters more than throughput here.
			tc.SetNoDelay(true)
		}
		go g.runSession(newTCPConn(conn))
	}
}

// lineConn is one ordered stream of protocol lines, however transported.
type lineConn interface {
	ReadLine() (string, error)
	WriteLine(string) error
	Close() error
}

type tcpConn struct {
	conn net.Conn
	r    *bufio.Scanner
}

func newTCPConn(conn net.Conn) *tcpConn {
	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	return &tcpConn{conn: conn, r: sc}
}

func (t *tcpConn) ReadLine() (string, error) {
	if !t.r.Scan() {
		if err := t.r.Err(); err != nil {
			return "", err
		}
		return "", net.ErrClosed
	}
	return t.r.Text(), nil
}

func (t *tcpConn) WriteLine(line string) error {
	_, err := t.conn.Write(append([]byte(line), '\n'))
	return err
}

func (t *tcpConn) Close() error { return t.conn.Close() }

// session pumps one connection: reads feed the game server, writes drain
// the send channel, and the keepalive watches for silence.
type session struct {
	conn lineConn
	send chan string
	done chan struct{}
	once sync.Once

	game   *game.Server
	player *game.Player
	ka     *KeepAlive
}

func (g *Gateway) runSession(conn lineConn) {
	s := &session{
		conn: conn,
		send: make(chan string, sendBuffer),
		done: make(chan struct{}),
		game: g.game,
	}
	s.player = g.game.Connect(s)
	s.ka = NewKeepAlive(g.keepAliveInitial, g.keepAliveRetry, g.keepAliveRetries,
		func() { s.Send(protocol.New(protocol.ActKeepAlive)) },
		func() {
			log.Printf("[Gateway] Keepalive expired for %s", s.player.ID)
			s.Close()
		})

	go s.writePump()
	s.readPump()
}

// Send queues one message for the connection. A full buffer drops the
// message rather than blocking the game goroutine.
func (s *session) Send(m protocol.Message) {
	select {
	case s.send <- protocol.Serialize(m):
	case <-s.done:
	default:
	}
}

func (s *session) Close() {
	s.once.Do(func() {
		close(s.done)
		s.ka.Stop()
		s.conn.Close()
	})
}

func (s *session) readPump() {
	defer func() {
		s.Close()
		s.game.Disconnect(s.player)
	}()

	for {
		line, err := s.conn.ReadLine()
		if err != nil {
			return
		}
		s.ka.Touch()
		if line == "" {
			continue
		}
		s.game.HandleLine(s.player, line)
	}
}

func (s *session) writePump() {
	for {
		select {
		case line := <-s.send:
			if err := s.conn.WriteLine(line); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}
