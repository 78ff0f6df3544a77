package crane

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_SuspendResume(t *testing.T) {
	var g gate

	require.True(t, g.tryEnter())
	g.leave()

	g.suspend()
	assert.True(t, g.suspended())
	assert.False(t, g.tryEnter())

	g.resume()
	assert.False(t, g.suspended())
	require.True(t, g.tryEnter())
	g.leave()
}

func TestGate_Nested(t *testing.T) {
	var g gate

	g.suspend()
	g.suspend()
	g.resume()
	assert.False(t, g.tryEnter(), "one suspension still held")

	g.resume()
	require.True(t, g.tryEnter())
	g.leave()

	// an unmatched resume never goes negative
	g.resume()
	g.suspend()
	assert.False(t, g.tryEnter())
	g.resume()
}

func TestGate_SuspendWaitsForDuty(t *testing.T) {
	var g gate
	require.True(t, g.tryEnter())

	suspended := make(chan struct{})
	go func() {
		g.suspend()
		close(suspended)
	}()

	select {
	case <-suspended:
		t.Fatal("suspend returned while the duty was in flight")
	case <-time.After(20 * time.Millisecond):
	}

	g.leave()

	select {
	case <-suspended:
	case <-time.After(time.Second):
		t.Fatal("suspend did not return after the duty left")
	}
	assert.False(t, g.tryEnter())
}
