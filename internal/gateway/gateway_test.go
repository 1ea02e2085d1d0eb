package gateway

import (
	"bufio"
	"net"
	"testing"
	"time"

	"bossrush/internal/game"
	"bossrush/internal/protocol"
)

// dialSession wires a session to one end of an in-memory pipe and returns
// the client end. Keepalive is effectively off unless the test asks for it.
func dialSession(t *testing.T, kaInitial, kaRetry time.Duration, kaRetries int) net.Conn {
	t.Helper()

	gs := game.NewServer("0.2.0-MULTIPLAYER")
	go gs.Run()
	t.Cleanup(gs.Stop)

	g := New(gs, kaInitial, kaRetry, kaRetries)
	client, server := net.Pipe()
	go g.runSession(newTCPConn(server))
	t.Cleanup(func() { client.Close() })

	return client
}

func readMessage(t *testing.T, conn net.Conn, sc *bufio.Scanner) protocol.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if !sc.Scan() {
		t.Fatalf("connection closed while waiting for a line: %v", sc.Err())
	}
	m, err := protocol.Parse(sc.Text())
	if err != nil {
		t.Fatalf("server sent malformed line %q: %v", sc.Text(), err)
	}
	return m
}

func writeLine(t *testing.T, conn net.Conn, line string) {
	t.Helper()
	conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if _, err := conn.Write([]byte(line + "\n")); err != nil {
		t.Fatalf("write %q: %v", line, err)
	}
}

func TestSessionGreetsOnConnect(t *testing.T) {
	conn := dialSession(t, time.Minute, time.Minute, 3)
	sc := bufio.NewScanner(conn)

	if got := readMessage(t, conn, sc).Action(); got != protocol.ActConnected {
		t.Fatalf("first line action = %q, want connected", got)
	}
	if got := readMessage(t, conn, sc).Action(); got != protocol.ActVersion {
		t.Fatalf("second line action = %q, want version", got)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	conn := dialSession(t, time.Minute, time.Minute, 3)
	sc := bufio.NewScanner(conn)
	readMessage(t, conn, sc) // connected
	readMessage(t, conn, sc) // version

	writeLine(t, conn, "action:createLobby,gameMode:attrition")

	m := readMessage(t, conn, sc)
	if m.Action() != protocol.ActJoinedLobby {
		t.Fatalf("action = %q, want joinedLobby", m.Action())
	}
	if m.String("code") == "" || m.String("type") != "attrition" {
		t.Fatalf("joinedLobby payload incomplete: %v", m)
	}
}

func TestSessionReportsParseFailures(t *testing.T) {
	conn := dialSession(t, time.Minute, time.Minute, 3)
	sc := bufio.NewScanner(conn)
	readMessage(t, conn, sc)
	readMessage(t, conn, sc)

	writeLine(t, conn, "this is not a protocol line")

	m := readMessage(t, conn, sc)
	if m.Action() != protocol.ActError || m.String("message") != "Failed to parse message" {
		t.Fatalf("expected parse error, got %v", m)
	}
}

func TestSessionProbesAndSurvivesAck(t *testing.T) {
	conn := dialSession(t, 20*time.Millisecond, 20*time.Millisecond, 3)
	sc := bufio.NewScanner(conn)
	readMessage(t, conn, sc)
	readMessage(t, conn, sc)

	// Stay silent until the server probes, then answer.
	m := readMessage(t, conn, sc)
	if m.Action() != protocol.ActKeepAlive {
		t.Fatalf("action = %q, want keepAlive probe", m.Action())
	}
	writeLine(t, conn, "action:keepAliveAck")

	// The connection is still alive: it keeps probing instead of closing.
	if got := readMessage(t, conn, sc).Action(); got != protocol.ActKeepAlive {
		t.Fatalf("action = %q, want another keepAlive probe", got)
	}
}
