package program

import (
	"strings"
	"testing"
	"time"

	"github.com/arloliu/go-platecrane/crane"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoSource = `# loop between points A, B and C
speed 60
repeat 3
    move A
    move "stack 2"   # quoted names keep their spaces
    repeat 2
        jog z -25
    end
end

grip
sleep 250ms
release
motors off
motors on
gripforce 2
here "new point"
clear old
home
`

func TestParseString(t *testing.T) {
	p, err := ParseString("demo", demoSource)
	require.NoError(t, err)
	assert.Equal(t, "demo", p.Name)

	ops := make([]Op, 0, len(p.Steps))
	for _, s := range p.Steps {
		ops = append(ops, s.Op)
	}
	assert.Equal(t, []Op{
		OpSpeed, OpRepeat, OpGrip, OpSleep, OpRelease, OpMotorsOff, OpMotorsOn,
		OpGripForce, OpHere, OpClear, OpHome,
	}, ops)

	assert.Equal(t, 60, p.Steps[0].Value)
	assert.Equal(t, 2, p.Steps[0].Line)

	rep := p.Steps[1]
	assert.Equal(t, 3, rep.Value)
	require.Len(t, rep.Body, 3)
	assert.Equal(t, Step{Line: 4, Op: OpMove, Point: "A"}, rep.Body[0])
	assert.Equal(t, "stack 2", rep.Body[1].Point)

	inner := rep.Body[2]
	assert.Equal(t, OpRepeat, inner.Op)
	require.Len(t, inner.Body, 1)
	assert.Equal(t, crane.AxisZ, inner.Body[0].Axis)
	assert.Equal(t, -25, inner.Body[0].Value)

	assert.Equal(t, 250*time.Millisecond, p.Steps[3].Duration)
	assert.Equal(t, "new point", p.Steps[8].Point)
}

func TestParse_Reader(t *testing.T) {
	p, err := Parse("r", strings.NewReader("home\ngrip\n"))
	require.NoError(t, err)
	assert.Len(t, p.Steps, 2)
}

func TestParse_Empty(t *testing.T) {
	p, err := ParseString("empty", "# put your program here\n\n")
	require.NoError(t, err)
	assert.Empty(t, p.Steps)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		src  string
		line string
	}{
		{src: "fly A", line: "line 1"},
		{src: "move", line: "line 1"},
		{src: "move A B", line: "line 1"},
		{src: "home\njog X 10", line: "line 2"},
		{src: "jog R ten", line: "line 1"},
		{src: "speed 101", line: "line 1"},
		{src: "speed -1", line: "line 1"},
		{src: "gripforce 4", line: "line 1"},
		{src: "motors maybe", line: "line 1"},
		{src: "sleep soon", line: "line 1"},
		{src: "grip now", line: "line 1"},
		{src: "home\nrepeat 2\nhome", line: "line 2"},
		{src: "end", line: "line 1"},
		{src: "repeat -1\nend", line: "line 1"},
		{src: `move "unterminated`, line: "line 1"},
		{src: `here "a,b"`, line: "line 1"},
	}

	for _, tt := range tests {
		_, err := ParseString("bad", tt.src)
		require.ErrorIs(t, err, ErrSyntax, tt.src)
		assert.Contains(t, err.Error(), tt.line, tt.src)
	}
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "motors off", OpMotorsOff.String())
	assert.Equal(t, "gripforce", OpGripForce.String())
	assert.Equal(t, "Op(99)", Op(99).String())
}
