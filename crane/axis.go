package crane

import (
	"fmt"
	"strings"
)

// Axis identifies one of the robot's four axes.
type Axis byte

const (
	AxisR Axis = 'R'
	AxisY Axis = 'Y'
	AxisZ Axis = 'Z'
	AxisP Axis = 'P'
)

// Axes lists the axes in coordinate order.
var Axes = [4]Axis{AxisR, AxisY, AxisZ, AxisP}

// ParseAxis parses a single axis letter, case-insensitively.
func ParseAxis(s string) (Axis, error) {
	if len(s) != 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAxis, s)
	}

	a := Axis(strings.ToUpper(s)[0])
	if !a.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAxis, s)
	}

	return a, nil
}

// Valid reports whether a is one of R, Y, Z or P.
func (a Axis) Valid() bool {
	switch a {
	case AxisR, AxisY, AxisZ, AxisP:
		return true
	default:
		return false
	}
}

func (a Axis) String() string {
	if !a.Valid() {
		return fmt.Sprintf("Axis(%d)", byte(a))
	}

	return string(rune(a))
}
