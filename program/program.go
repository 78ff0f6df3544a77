package program

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/arloliu/go-platecrane/crane"
	"github.com/google/shlex"
)

// MaxRepeat bounds the count of a repeat block.
const MaxRepeat = 100000

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("program: syntax error")

// Op identifies a program instruction.
type Op int

const (
	OpMove Op = iota
	OpJog
	OpHere
	OpClear
	OpSpeed
	OpGripForce
	OpGrip
	OpRelease
	OpMotorsOn
	OpMotorsOff
	OpHome
	OpSleep
	OpRepeat
)

var opNames = map[string]Op{
	"move":      OpMove,
	"jog":       OpJog,
	"here":      OpHere,
	"clear":     OpClear,
	"speed":     OpSpeed,
	"gripforce": OpGripForce,
	"grip":      OpGrip,
	"release":   OpRelease,
	"motors":    OpMotorsOn,
	"home":      OpHome,
	"sleep":     OpSleep,
	"repeat":    OpRepeat,
}

func (op Op) String() string {
	switch op {
	case OpMove:
		return "move"
	case OpJog:
		return "jog"
	case OpHere:
		return "here"
	case OpClear:
		return "clear"
	case OpSpeed:
		return "speed"
	case OpGripForce:
		return "gripforce"
	case OpGrip:
		return "grip"
	case OpRelease:
		return "release"
	case OpMotorsOn:
		return "motors on"
	case OpMotorsOff:
		return "motors off"
	case OpHome:
		return "home"
	case OpSleep:
		return "sleep"
	case OpRepeat:
		return "repeat"
	default:
		return "Op(" + strconv.Itoa(int(op)) + ")"
	}
}

// Step is one parsed instruction.
type Step struct {
	Line     int
	Op       Op
	Point    string
	Axis     crane.Axis
	Value    int
	Duration time.Duration
	// Body holds the steps of a repeat block.
	Body []Step
}

// Program is a parsed motion program.
type Program struct {
	Name  string
	Steps []Step
}

// Parse reads a program from r.
func Parse(name string, r io.Reader) (*Program, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("program %s: %w", name, err)
	}

	return ParseString(name, string(src))
}

// ParseString parses program source.
func ParseString(name, src string) (*Program, error) {
	p := &parser{name: name}

	steps, err := p.block(strings.Split(src, "\n"), false)
	if err != nil {
		return nil, err
	}

	return &Program{Name: name, Steps: steps}, nil
}

type parser struct {
	name string
	line int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s line %d: %s", ErrSyntax, p.name, p.line, fmt.Sprintf(format, args...))
}

// block parses lines until end of input, or until "end" when nested.
func (p *parser) block(lines []string, nested bool) ([]Step, error) {
	var steps []Step
	start := p.line

	for p.line < len(lines) {
		text := lines[p.line]
		p.line++

		fields, err := shlex.Split(text)
		if err != nil {
			return nil, p.errorf("%v", err)
		}
		if len(fields) == 0 {
			continue
		}

		word := strings.ToLower(fields[0])
		args := fields[1:]

		if word == "end" {
			if !nested {
				return nil, p.errorf("end without repeat")
			}
			if len(args) != 0 {
				return nil, p.errorf("end takes no arguments")
			}

			return steps, nil
		}

		step, err := p.step(word, args)
		if err != nil {
			return nil, err
		}

		if step.Op == OpRepeat {
			body, err := p.block(lines, true)
			if err != nil {
				return nil, err
			}
			step.Body = body
		}

		steps = append(steps, step)
	}

	if nested {
		p.line = start
		return nil, p.errorf("repeat without end")
	}

	return steps, nil
}

func (p *parser) step(word string, args []string) (Step, error) {
	op, ok := opNames[word]
	if !ok {
		return Step{}, p.errorf("unknown instruction %q", word)
	}

	step := Step{Line: p.line, Op: op}

	switch op {
	case OpMove, OpHere, OpClear:
		if len(args) != 1 {
			return Step{}, p.errorf("%s takes a point name", word)
		}
		if err := crane.ValidatePointName(args[0]); err != nil {
			return Step{}, p.errorf("%v", err)
		}
		step.Point = args[0]

	case OpJog:
		if len(args) != 2 {
			return Step{}, p.errorf("jog takes an axis and a distance")
		}
		axis, err := crane.ParseAxis(args[0])
		if err != nil {
			return Step{}, p.errorf("%v", err)
		}
		dist, err := strconv.Atoi(args[1])
		if err != nil {
			return Step{}, p.errorf("invalid distance %q", args[1])
		}
		step.Axis, step.Value = axis, dist

	case OpSpeed, OpGripForce:
		limit := 100
		if op == OpGripForce {
			limit = 3
		}
		v, err := p.intArg(word, args, 0, limit)
		if err != nil {
			return Step{}, err
		}
		step.Value = v

	case OpGrip, OpRelease, OpHome:
		if len(args) != 0 {
			return Step{}, p.errorf("%s takes no arguments", word)
		}

	case OpMotorsOn:
		if len(args) != 1 {
			return Step{}, p.errorf("motors takes on or off")
		}
		switch strings.ToLower(args[0]) {
		case "on":
		case "off":
			step.Op = OpMotorsOff
		default:
			return Step{}, p.errorf("motors takes on or off, got %q", args[0])
		}

	case OpSleep:
		if len(args) != 1 {
			return Step{}, p.errorf("sleep takes a duration")
		}
		d, err := time.ParseDuration(args[0])
		if err != nil || d < 0 {
			return Step{}, p.errorf("invalid duration %q", args[0])
		}
		step.Duration = d

	case OpRepeat:
		v, err := p.intArg(word, args, 0, MaxRepeat)
		if err != nil {
			return Step{}, err
		}
		step.Value = v
	}

	return step, nil
}

func (p *parser) intArg(word string, args []string, lo, hi int) (int, error) {
	if len(args) != 1 {
		return 0, p.errorf("%s takes one number", word)
	}

	v, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, p.errorf("invalid number %q", args[0])
	}
	if v < lo || v > hi {
		return 0, p.errorf("%s %d out of range [%d, %d]", word, v, lo, hi)
	}

	return v, nil
}
