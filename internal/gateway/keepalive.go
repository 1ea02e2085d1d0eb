package gateway

import (
	"sync"
	"time"
)

type kaState int

const (
	kaIdle kaState = iota
	kaRetrying
	kaStopped
)

// KeepAlive is the per-connection liveness probe. After Initial of silence
// it fires probe once, then every Retry until either Touch is called or
// Retries probes go unanswered, at which point expire fires once.
type KeepAlive struct {
	initial time.Duration
	retry   time.Duration
	max     int
	probe   func()
	expire  func()

	mu      sync.Mutex
	state   kaState
	retries int
	timer   *time.Timer
}

func NewKeepAlive(initial, retry time.Duration, retries int, probe, expire func()) *KeepAlive {
	k := &KeepAlive{
		initial: initial,
		retry:   retry,
		max:     retries,
		probe:   probe,
		expire:  expire,
	}
	k.timer = time.AfterFunc(initial, k.fire)
	return k
}

// Touch records inbound traffic: any byte from the peer is proof of life.
func (k *KeepAlive) Touch() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.state == kaStopped {
		return
	}
	k.state = kaIdle
	k.retries = 0
	k.timer.Reset(k.initial)
}

func (k *KeepAlive) Stop() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.state = kaStopped
	k.timer.Stop()
}

func (k *KeepAlive) fire() {
	k.mu.Lock()
	var action func()
	switch k.state {
	case kaIdle:
		k.state = kaRetrying
		k.retries = 0
		k.timer.Reset(k.retry)
		action = k.probe
	case kaRetrying:
		k.retries++
		if k.retries >= k.max {
			k.state = kaStopped
			action = k.expire
		} else {
			k.timer.Reset(k.retry)
			action = k.probe
		}
	case kaStopped:
	}
	k.mu.Unlock()

	if action != nil {
		action()
	}
}
