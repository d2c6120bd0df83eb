package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposerThrottlesTypingStart(t *testing.T) {
	tr := &stubTransport{}
	c := NewComposer(tr, uuid.New(), "Test User")
	c.idle = time.Hour // keep the idle stop out of this test

	for i := 0; i < 10; i++ {
		c.Keystroke()
	}

	// A burst of keystrokes produces a single typing.start.
	assert.Equal(t, 1, tr.startCount())
	assert.Zero(t, tr.stopCount())
}

func TestComposerStopsOnIdle(t *testing.T) {
	tr := &stubTransport{}
	c := NewComposer(tr, uuid.New(), "Test User")
	c.idle = 20 * time.Millisecond

	c.Keystroke()

	require.Eventually(t, func() bool {
		return tr.stopCount() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestComposerKeystrokeReArmsIdleTimer(t *testing.T) {
	tr := &stubTransport{}
	c := NewComposer(tr, uuid.New(), "Test User")
	c.idle = 50 * time.Millisecond

	c.Keystroke()
	time.Sleep(30 * time.Millisecond)
	c.Keystroke()
	time.Sleep(30 * time.Millisecond)

	// 60ms after the first keystroke, but only 30ms after the last one.
	assert.Zero(t, tr.stopCount())
}

func TestComposerBlurStopsOnce(t *testing.T) {
	tr := &stubTransport{}
	c := NewComposer(tr, uuid.New(), "Test User")
	c.idle = time.Hour

	c.Keystroke()
	c.Blur()
	c.Blur()

	assert.Equal(t, 1, tr.stopCount())
}

func TestComposerSentStops(t *testing.T) {
	tr := &stubTransport{}
	c := NewComposer(tr, uuid.New(), "Test User")
	c.idle = time.Hour

	c.Keystroke()
	c.Sent()

	assert.Equal(t, 1, tr.stopCount())

	// No stop without a preceding start.
	c.Sent()
	assert.Equal(t, 1, tr.stopCount())
}
