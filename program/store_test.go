package program

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(filepath.Join(t.TempDir(), "programs"))
	require.NoError(t, err)

	return s
}

func TestStore_Lifecycle(t *testing.T) {
	s := newTestStore(t)

	names, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, s.Create("Demo"))
	require.ErrorIs(t, s.Create("Demo"), ErrExists)

	data, err := os.ReadFile(filepath.Join(s.Dir(), "Demo"+Ext))
	require.NoError(t, err)
	assert.Equal(t, NewProgramTemplate, string(data))

	require.NoError(t, s.Save("Shuttle", "repeat 2\nmove A\nend\n"))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("x"), 0o600))

	names, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"Demo", "Shuttle"}, names)

	p, err := s.Load("Shuttle")
	require.NoError(t, err)
	require.Len(t, p.Steps, 1)
	assert.Equal(t, "Shuttle", p.Name)

	require.NoError(t, s.Delete("Demo"))
	require.ErrorIs(t, s.Delete("Demo"), ErrNotFound)
	_, err = s.Load("Demo")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_SaveRejectsInvalidProgram(t *testing.T) {
	s := newTestStore(t)

	require.ErrorIs(t, s.Save("bad", "fly away\n"), ErrSyntax)

	names, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestStore_InvalidNames(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"", ".", "..", "../escape", `a\b`} {
		require.ErrorIs(t, s.Create(name), ErrInvalidName, name)
	}
}
