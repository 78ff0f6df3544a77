package crane

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSource struct{}

func (failingSource) Instructions() ([]string, error) {
	return nil, errors.New("params unavailable")
}

func TestDriver_Reset(t *testing.T) {
	drv, sim, _ := newTestDriver(t,
		WithSystemParams(InstructionList{"SPEED 30", "SETGRIPSTRENGTH 1"}),
	)
	sim.SetPosition([4]int{5, 5, 5, 5})

	require.NoError(t, drv.Reset())
	assert.True(t, drv.Running())

	writes := sim.Writes()
	require.GreaterOrEqual(t, len(writes), 3)
	assert.Equal(t, []string{"SPEED 30", "SETGRIPSTRENGTH 1"}, writes[:2],
		"no polling before the parameters are in")
	assert.Equal(t, []string{"SPEED 30", "SETGRIPSTRENGTH 1", "HOME"}, commandWrites(writes))
	assert.Equal(t, 30, sim.Speed())
	assert.Equal(t, [4]int{}, sim.Position())

	assert.Eventually(t, func() bool { return drv.Position() == "0, 0, 0, 0" && sim.Count("GETPOS") > 0 }, waitFor, tick)
	assert.False(t, drv.st.posGate.suspended())
	assert.False(t, drv.st.ioGate.suspended())
}

func TestDriver_ResetWithDriverParams(t *testing.T) {
	drv, sim, _ := newTestDriver(t,
		WithSystemParams(InstructionList{"SPEED 30"}),
		WithDriverParams(InstructionList{"Y.P1=20", "P.P1=35"}),
	)

	require.NoError(t, drv.Reset())

	writes := sim.Writes()
	require.GreaterOrEqual(t, len(writes), 6)
	assert.Equal(t, []string{"SPEED 30", "TERMINAL", "Y.P1=20", "P.P1=35", "TERMINAL"}, writes[:5])
	assert.Equal(t, []string{"SPEED 30", "TERMINAL", "Y.P1=20", "P.P1=35", "TERMINAL", "HOME"}, commandWrites(writes))
	assert.Equal(t, []string{"Y.P1=20", "P.P1=35"}, sim.TerminalLines())
	assert.False(t, sim.Terminal())
	assert.NoError(t, drv.LastError())

	assert.Eventually(t, func() bool { return sim.Count("READINP") > 0 }, waitFor, tick)
}

func TestDriver_ResetTwice(t *testing.T) {
	drv, sim, _ := newTestDriver(t)

	require.NoError(t, drv.Reset())
	require.NoError(t, drv.Reset())

	assert.Equal(t, 2, sim.Count("HOME"))
	assert.False(t, drv.st.posGate.suspended())
}

func TestDriver_ResetParamsError(t *testing.T) {
	drv, sim, _ := newTestDriver(t, WithSystemParams(failingSource{}))

	err := drv.Reset()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "params unavailable")
	assert.Zero(t, sim.Count("HOME"))

	// polling is not left suspended by the failed reset
	assert.False(t, drv.st.posGate.suspended())
	assert.False(t, drv.st.ioGate.suspended())
}

func TestDriver_SendDriverParamsEntryEchoChecked(t *testing.T) {
	drv, sim, _ := newStartedDriver(t)

	// TERMINAL entry is echo-checked, so a garbled echo stops the replay
	sim.CorruptNextEcho("TERMINAL")
	err := drv.SendDriverParams(InstructionList{"Y.P1=20"})
	require.ErrorIs(t, err, ErrEchoMismatch)
	assert.NotContains(t, sim.Writes(), "Y.P1=20")
}
