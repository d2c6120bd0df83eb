package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// typingStartInterval caps how often typing.start goes out while keys
	// keep flowing.
	typingStartInterval = 2 * time.Second
	// typingIdle is how long after the last keystroke a typing.stop is
	// guaranteed. Receivers rely on this; the tracker itself never expires
	// entries.
	typingIdle = 3 * time.Second
)

// Composer owns the emitting side of the typing contract for one thread:
// rate-limited typing.start on keystrokes, and a typing.stop on idle, blur
// and send.
type Composer struct {
	transport   Transport
	threadID    uuid.UUID
	displayName string

	limiter *rate.Limiter
	idle    time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	typing bool
}

func NewComposer(t Transport, threadID uuid.UUID, displayName string) *Composer {
	return &Composer{
		transport:   t,
		threadID:    threadID,
		displayName: displayName,
		limiter:     rate.NewLimiter(rate.Every(typingStartInterval), 1),
		idle:        typingIdle,
	}
}

// Keystroke reports composer activity. The first call (and at most one per
// interval after that) emits typing.start; every call re-arms the idle stop.
func (c *Composer) Keystroke() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.limiter.Allow() {
		c.transport.StartTyping(c.threadID, c.displayName)
	}
	c.typing = true
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.idle, c.idleStop)
}

// Blur stops the typing indicator immediately, e.g. when the composer loses
// focus.
func (c *Composer) Blur() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// Sent stops the typing indicator after the composed message went out.
func (c *Composer) Sent() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Composer) idleStop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Composer) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if !c.typing {
		return
	}
	c.typing = false
	c.transport.StopTyping(c.threadID)
}
