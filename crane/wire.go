package crane

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Terminator acknowledges a completed motion or configuration instruction.
const Terminator = "00\x10\r\n"

const crlf = "\r\n"

// Instructions without arguments.
const (
	instrHome       = "HOME"
	instrListPoints = "LISTPOINTS"
	instrClearAll   = "CLEARPOINTS"
	instrGetPos     = "GETPOS"
	instrGrip       = "CLOSE"
	instrRelease    = "OPEN"
	instrTerminal   = "TERMINAL"
	instrMotorsOff  = "LIMP 0"
	instrMotorsOn   = "LIMP 1"
)

var coordsPattern = regexp.MustCompile(`^\s*(-?\d+)\s*,\s*(-?\d+)\s*,\s*(-?\d+)\s*,\s*(-?\d+)\s*$`)

// Coords is a 4-tuple of axis offsets in R, Y, Z, P order.
type Coords [4]int

// String renders c the way the controller does, e.g. "1, 3, 5, 7".
func (c Coords) String() string {
	return fmt.Sprintf("%d, %d, %d, %d", c[0], c[1], c[2], c[3])
}

// Axis returns the offset for a.
func (c Coords) Axis(a Axis) int {
	for i, ax := range Axes {
		if ax == a {
			return c[i]
		}
	}

	return 0
}

// ParseCoords parses "v1, v2, v3, v4".
func ParseCoords(s string) (Coords, error) {
	m := coordsPattern.FindStringSubmatch(s)
	if m == nil {
		return Coords{}, fmt.Errorf("crane: malformed coordinates %q", s)
	}

	var c Coords
	for i := range c {
		v, err := strconv.Atoi(m[i+1])
		if err != nil {
			return Coords{}, fmt.Errorf("crane: malformed coordinates %q: %w", s, err)
		}
		c[i] = v
	}

	return c, nil
}

// Points maps point names to their recorded coordinates.
type Points map[string]Coords

// Clone returns a copy of p; a nil registry clones to an empty one.
func (p Points) Clone() Points {
	out := make(Points, len(p))
	for k, v := range p {
		out[k] = v
	}

	return out
}

// ValidatePointName reports whether name can be sent in a point instruction
// and read back from a point listing.
func ValidatePointName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPointName)
	}
	if strings.ContainsAny(name, ",\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidPointName, name)
	}

	return nil
}

func jogInstr(a Axis, dist int) string {
	return "JOG " + a.String() + "," + strconv.Itoa(dist)
}

func moveInstr(name string) string   { return "MOVE " + name }
func hereInstr(name string) string   { return "HERE " + name }
func deleteInstr(name string) string { return "DELETEPOINT " + name }
func speedInstr(v int) string        { return "SPEED " + strconv.Itoa(v) }
func gripForceInstr(v int) string    { return "SETGRIPSTRENGTH " + strconv.Itoa(v) }
func readInputInstr(ch int) string   { return "READINP " + strconv.Itoa(ch) }

// frame appends CRLF to an instruction.
func frame(instr string) []byte {
	b := make([]byte, 0, len(instr)+len(crlf))
	b = append(b, instr...)

	return append(b, crlf...)
}

// trimFrame strips the trailing line terminator from a reply.
func trimFrame(line []byte) []byte {
	return bytes.TrimRight(line, crlf)
}

func isBlankLine(line []byte) bool {
	return string(line) == crlf
}

// parsePointLine parses one LISTPOINTS record, "<name>, <v1>, <v2>, <v3>, <v4>".
// The name is everything before the first comma.
func parsePointLine(line []byte) (string, Coords, bool) {
	text := trimFrame(line)
	if !utf8.Valid(text) {
		return "", Coords{}, false
	}

	name, values, ok := strings.Cut(string(text), ",")
	if !ok || name == "" {
		return "", Coords{}, false
	}
	for _, r := range name {
		if !unicode.IsPrint(r) {
			return "", Coords{}, false
		}
	}

	c, err := ParseCoords(values)
	if err != nil {
		return "", Coords{}, false
	}

	return name, c, true
}
