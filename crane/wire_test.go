package crane

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAxis(t *testing.T) {
	for _, s := range []string{"R", "Y", "Z", "P", "r", "p"} {
		a, err := ParseAxis(s)
		require.NoError(t, err, s)
		assert.True(t, a.Valid())
	}

	for _, s := range []string{"", "X", "RY", "1"} {
		_, err := ParseAxis(s)
		require.ErrorIs(t, err, ErrInvalidAxis, s)
	}

	assert.Equal(t, "Z", AxisZ.String())
	assert.False(t, Axis('Q').Valid())
}

func TestInstructionBuilders(t *testing.T) {
	assert.Equal(t, "JOG R,100", jogInstr(AxisR, 100))
	assert.Equal(t, "JOG P,-25", jogInstr(AxisP, -25))
	assert.Equal(t, "MOVE plate1", moveInstr("plate1"))
	assert.Equal(t, "HERE plate1", hereInstr("plate1"))
	assert.Equal(t, "DELETEPOINT plate1", deleteInstr("plate1"))
	assert.Equal(t, "SPEED 50", speedInstr(50))
	assert.Equal(t, "SETGRIPSTRENGTH 3", gripForceInstr(3))
	assert.Equal(t, "READINP 22", readInputInstr(22))
	assert.Equal(t, []byte("HOME\r\n"), frame(instrHome))
	assert.Equal(t, []byte("1, 3, 5, 7"), trimFrame([]byte("1, 3, 5, 7\r\n")))
}

func TestCoords(t *testing.T) {
	c, err := ParseCoords("1, 3, 5, 7")
	require.NoError(t, err)
	assert.Equal(t, Coords{1, 3, 5, 7}, c)
	assert.Equal(t, "1, 3, 5, 7", c.String())
	assert.Equal(t, 5, c.Axis(AxisZ))

	c, err = ParseCoords(" -10,20, -30 ,0")
	require.NoError(t, err)
	assert.Equal(t, Coords{-10, 20, -30, 0}, c)

	for _, s := range []string{"", "1, 2, 3", "1, 2, 3, x", "1, 2, 3, 4, 5"} {
		_, err := ParseCoords(s)
		require.Error(t, err, s)
	}
}

func TestParsePointLine(t *testing.T) {
	tests := []struct {
		line   string
		name   string
		coords Coords
		ok     bool
	}{
		{line: "plate1, 100, -200, 300, 4\r\n", name: "plate1", coords: Coords{100, -200, 300, 4}, ok: true},
		{line: "stack 2, 0, 0, 0, 0\r\n", name: "stack 2", coords: Coords{}, ok: true},
		{line: "nocomma\r\n"},
		{line: ", 1, 2, 3, 4\r\n"},
		{line: "short, 1, 2, 3\r\n"},
		{line: "letters, 1, b, 3, 4\r\n"},
		{line: "\x01\x7f, 1, 2, 3, 4\r\n"},
		{line: "\xff\xfe, 1, 2, 3, 4\r\n"},
	}

	for _, tt := range tests {
		name, c, ok := parsePointLine([]byte(tt.line))
		assert.Equal(t, tt.ok, ok, "%q", tt.line)
		if tt.ok {
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.coords, c)
		}
	}
}

func TestValidatePointName(t *testing.T) {
	require.NoError(t, ValidatePointName("plate1"))
	require.NoError(t, ValidatePointName("stack 2"))

	for _, name := range []string{"", "a,b", "a\r\n", "a\n"} {
		require.ErrorIs(t, ValidatePointName(name), ErrInvalidPointName, "%q", name)
	}
}

func TestPointsClone(t *testing.T) {
	var nilPoints Points
	assert.NotNil(t, nilPoints.Clone())

	p := Points{"a": {1, 2, 3, 4}}
	cp := p.Clone()
	cp["b"] = Coords{}
	assert.Len(t, p, 1)
}

func TestLinkError(t *testing.T) {
	err := &LinkError{
		Op:       "command",
		Sent:     "HOME",
		Got:      []byte("ERR\r\n"),
		Expected: []byte(Terminator),
		Err:      ErrResponseMismatch,
	}

	require.ErrorIs(t, err, ErrResponseMismatch)
	assert.Contains(t, err.Error(), `command "HOME"`)
	assert.Contains(t, err.Error(), `got "ERR\r\n"`)
}
