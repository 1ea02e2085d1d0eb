package gateway

import (
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: Restrict in production
	},
}

// HandleWebSocket upgrades the request and runs a session identical to a
// TCP one. Each text frame carries one or more protocol lines.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] Upgrade error: %v", err)
		return
	}
	go g.runSession(newWSConn(conn))
}

type wsConn struct {
	conn    *websocket.Conn
	pending []string
}

func newWSConn(conn *websocket.Conn) *wsConn {
	conn.SetReadLimit(1 << 20)
	return &wsConn{conn: conn}
}

func (c *wsConn) ReadLine() (string, error) {
	for len(c.pending) == 0 {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Gateway] Read error: %v", err)
			}
			return "", net.ErrClosed
		}
		if messageType != websocket.TextMessage {
			continue
		}
		for _, line := range strings.Split(string(data), "\n") {
			if line != "" {
				c.pending = append(c.pending, line)
			}
		}
	}

	line := c.pending[0]
	c.pending = c.pending[1:]
	return line, nil
}

func (c *wsConn) WriteLine(line string) error {
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteMessage(websocket.TextMessage, []byte(line))
}

func (c *wsConn) Close() error { return c.conn.Close() }
