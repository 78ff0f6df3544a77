package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerial_ReadLineAssemblesChunks(t *testing.T) {
	p := newFakePort("GET", "POS\r", "\n1, 3, 5, 7\r\n")
	s := newSerial(p, "fake")

	line, err := s.ReadLine(100 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "GETPOS\r\n", string(line))

	line, err = s.ReadLine(100 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "1, 3, 5, 7\r\n", string(line))
}

func TestSerial_ReadLineKeepsLeftover(t *testing.T) {
	p := newFakePort("HOME\r\n00\x10\r\nREST")
	s := newSerial(p, "fake")

	line, err := s.ReadLine(100 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "HOME\r\n", string(line))

	line, err = s.ReadLine(100 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "00\x10\r\n", string(line))

	// nothing more arrives: the partial tail is returned on timeout
	line, err = s.ReadLine(100 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "REST", string(line))
}

func TestSerial_ReadLineTimeout(t *testing.T) {
	p := newFakePort()
	s := newSerial(p, "fake")

	line, err := s.ReadLine(50 * time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, line)
	require.Len(t, p.timeouts, 1)
	assert.LessOrEqual(t, p.timeouts[0], 50*time.Millisecond)
}

func TestSerial_WriteFlushClose(t *testing.T) {
	p := newFakePort()
	s := newSerial(p, "fake")

	n, err := s.Write([]byte("HOME\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	require.NoError(t, s.Flush())
	assert.Equal(t, "HOME\r\n", string(p.written))
	assert.Equal(t, 1, p.drained)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.True(t, p.closed)

	_, err = s.Write([]byte("HOME\r\n"))
	require.ErrorIs(t, err, ErrClosed)
	_, err = s.ReadLine(time.Millisecond)
	require.ErrorIs(t, err, ErrClosed)
}

func TestOpenSerial_EmptyName(t *testing.T) {
	_, err := OpenSerial(SerialConfig{})
	require.Error(t, err)
}
