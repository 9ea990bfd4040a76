package panel

import (
	"sync"
	"time"
)

// Guard gates visibility of the secret category. It owns nothing but the
// unlocked flag and the auto-lock countdown handle; the password and the
// category name live in the store.
type Guard struct {
	mu       sync.Mutex
	unlocked bool
	delay    time.Duration
	timer    *time.Timer
	gen      int // bumped on every cancel so a stale expiry is a no-op
	onLock   func() // invoked when the countdown expires; may be nil
}

// NewGuard creates a locked Guard with the given auto-lock delay.
func NewGuard(delay time.Duration, onLock func()) *Guard {
	return &Guard{delay: delay, onLock: onLock}
}

// Unlocked reports whether the secret category is currently visible.
func (g *Guard) Unlocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.unlocked
}

// Unlock compares the submitted password against the stored one. On a
// mismatch the guard stays locked and ErrWrongPassword is returned; the
// surface keeps the typed input.
func (g *Guard) Unlock(submitted, stored string) error {
	if submitted != stored {
		return ErrWrongPassword
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.unlocked = true
	g.cancelCountdownLocked()
	return nil
}

// Lock immediately relocks and cancels any pending countdown.
func (g *Guard) Lock() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.unlocked = false
	g.cancelCountdownLocked()
}

// ViewChanged tells the guard whether the active view is now the secret
// category. Leaving it while unlocked starts the countdown; returning
// before expiry cancels it. Only one countdown exists at a time: the
// handle is always cleared before a new one is scheduled.
func (g *Guard) ViewChanged(onSecret bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.cancelCountdownLocked()
	if g.unlocked && !onSecret {
		gen := g.gen
		g.timer = time.AfterFunc(g.delay, func() { g.expire(gen) })
	}
}

func (g *Guard) expire(gen int) {
	g.mu.Lock()
	// The countdown may have been cancelled between the timer firing and
	// acquiring the lock; a stale generation must not relock.
	if gen != g.gen {
		g.mu.Unlock()
		return
	}
	g.unlocked = false
	g.timer = nil
	onLock := g.onLock
	g.mu.Unlock()

	if onLock != nil {
		onLock()
	}
}

func (g *Guard) cancelCountdownLocked() {
	g.gen++
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}
