package game

import (
	"math/rand"
	"time"
)

const lobbyCodeLen = 5

// Registry is the process-wide lobby-code registry. It is only touched
// from the dispatch goroutine, so it carries no lock; codes are unique
// among live lobbies by regenerate-on-collision.
type Registry struct {
	lobbies map[string]*Lobby
	after   func(time.Duration, func())
}

func NewRegistry(after func(time.Duration, func())) *Registry {
	if after == nil {
		after = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
	}
	return &Registry{
		lobbies: make(map[string]*Lobby),
		after:   after,
	}
}

// Create allocates a lobby with a fresh code and attaches the host.
func (r *Registry) Create(host *Player, gameMode string) *Lobby {
	l := newLobby(r, r.generateCode(), gameMode)
	r.lobbies[l.Code] = l
	l.attachHost(host)
	return l
}

// Get returns the live lobby with the given code, or nil.
func (r *Registry) Get(code string) *Lobby {
	return r.lobbies[code]
}

func (r *Registry) Count() int { return len(r.lobbies) }

// remove frees the code once the last player has left.
func (r *Registry) remove(code string) {
	delete(r.lobbies, code)
}

func (r *Registry) generateCode() string {
	for {
		b := make([]byte, lobbyCodeLen)
		for i := range b {
			b[i] = byte('A' + rand.Intn(26))
		}
		code := string(b)
		if _, taken := r.lobbies[code]; !taken {
			return code
		}
	}
}

// gameSeed rolls the shared run seed handed to clients on game start.
func gameSeed() string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, 5)
	for i := range b {
		b[i] = chars[rand.Intn(len(chars))]
	}
	return string(b)
}
