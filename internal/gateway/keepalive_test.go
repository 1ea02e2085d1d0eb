package gateway

import (
	"sync/atomic"
	"testing"
	"time"
)

const kaTick = 5 * time.Millisecond

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestKeepAliveProbesAfterSilence(t *testing.T) {
	var probes, expires atomic.Int32
	k := NewKeepAlive(kaTick, kaTick, 3,
		func() { probes.Add(1) },
		func() { expires.Add(1) })
	defer k.Stop()

	waitFor(t, func() bool { return probes.Load() >= 1 }, "first probe")
	if expires.Load() != 0 {
		t.Fatalf("expired before the retry budget was spent")
	}
}

func TestKeepAliveExpiresAfterUnansweredRetries(t *testing.T) {
	var probes, expires atomic.Int32
	k := NewKeepAlive(kaTick, kaTick, 3,
		func() { probes.Add(1) },
		func() { expires.Add(1) })
	defer k.Stop()

	waitFor(t, func() bool { return expires.Load() == 1 }, "expiry")

	// Initial probe plus the retries that went unanswered before expiry.
	if got := probes.Load(); got != 3 {
		t.Fatalf("probes before expiry = %d, want 3", got)
	}

	// Once expired, nothing fires again.
	time.Sleep(10 * kaTick)
	if expires.Load() != 1 || probes.Load() != 3 {
		t.Fatalf("keepalive kept firing after expiry: probes=%d expires=%d",
			probes.Load(), expires.Load())
	}
}

func TestKeepAliveTouchResetsTheClock(t *testing.T) {
	var probes, expires atomic.Int32
	k := NewKeepAlive(50*time.Millisecond, 50*time.Millisecond, 3,
		func() { probes.Add(1) },
		func() { expires.Add(1) })
	defer k.Stop()

	// Keep touching well inside the initial window; no probe should fire.
	for i := 0; i < 10; i++ {
		time.Sleep(10 * time.Millisecond)
		k.Touch()
	}
	if probes.Load() != 0 || expires.Load() != 0 {
		t.Fatalf("fired despite steady traffic: probes=%d expires=%d",
			probes.Load(), expires.Load())
	}

	// Then go silent and the cycle starts over from the initial delay.
	waitFor(t, func() bool { return probes.Load() >= 1 }, "probe after going silent")
}

func TestKeepAliveTouchDuringRetriesRecovers(t *testing.T) {
	var probes, expires atomic.Int32
	k := NewKeepAlive(kaTick, 50*time.Millisecond, 3,
		func() { probes.Add(1) },
		func() { expires.Add(1) })
	defer k.Stop()

	// Let it enter the retry phase, then answer.
	waitFor(t, func() bool { return probes.Load() >= 1 }, "first probe")
	k.Touch()

	time.Sleep(20 * time.Millisecond)
	if expires.Load() != 0 {
		t.Fatalf("expired after the peer answered a probe")
	}
}

func TestKeepAliveStopSilencesEverything(t *testing.T) {
	var probes, expires atomic.Int32
	k := NewKeepAlive(50*time.Millisecond, kaTick, 3,
		func() { probes.Add(1) },
		func() { expires.Add(1) })
	k.Stop()

	time.Sleep(150 * time.Millisecond)
	if probes.Load() != 0 || expires.Load() != 0 {
		t.Fatalf("fired after Stop: probes=%d expires=%d",
			probes.Load(), expires.Load())
	}
}
