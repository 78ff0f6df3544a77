package transport

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/arloliu/go-platecrane/internal/pool"
	"github.com/arloliu/go-platecrane/internal/queue"
)

const (
	simTerminator = "00\x10\r\n"
	simVersion    = "PLATECRANE SIMULATOR 1.0"
	simAxes       = "RYZP"
)

// Simulator is an in-memory PlateCrane controller.
//
// It echoes every instruction outside TERMINAL mode, keeps a point registry,
// a position and a digital input table, and answers the motion instructions
// with the normal terminator. Faults can be injected to exercise the driver's
// recovery paths.
//
// Simulator is safe for concurrent use; tests typically drive it from the
// link worker while inspecting it from the test goroutine.
type Simulator struct {
	mu sync.Mutex

	inbuf  []byte
	out    *queue.Queue[[]byte]
	writes []string

	points   map[string][4]int
	pos      [4]int
	inputs   map[int]string
	terminal bool
	termLog  []string
	speed    int
	grip     int
	gripped  bool
	limp     bool

	garbage     []string
	corruptEcho map[string]int
	replies     map[string]string
	latency     time.Duration

	closed  bool
	closeCh chan struct{}
}

var _ Transport = (*Simulator)(nil)

// NewSimulator returns a simulator at the home position with no points.
func NewSimulator() *Simulator {
	return &Simulator{
		out:         queue.New[[]byte](16),
		points:      make(map[string][4]int),
		inputs:      make(map[int]string),
		replies:     make(map[string]string),
		corruptEcho: make(map[string]int),
		speed:       100,
		closeCh:     make(chan struct{}),
	}
}

// Write implements Transport. Complete CRLF lines are executed immediately
// and their echo and reply are queued for ReadLine.
func (s *Simulator) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	s.inbuf = append(s.inbuf, p...)
	for {
		idx := bytes.Index(s.inbuf, []byte("\r\n"))
		if idx < 0 {
			break
		}
		line := string(s.inbuf[:idx])
		s.inbuf = s.inbuf[idx+2:]
		s.execute(line)
	}

	return len(p), nil
}

// Flush implements Transport.
func (s *Simulator) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	return nil
}

// ReadLine implements Transport. With nothing queued it waits out the
// timeout and returns an empty line.
func (s *Simulator) ReadLine(timeout time.Duration) ([]byte, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	latency := s.latency
	line, _ := s.out.Dequeue()
	s.mu.Unlock()

	wait := timeout
	if line != nil {
		wait = latency
	}
	if wait > 0 {
		timer := pool.GetTimer(wait)
		defer pool.PutTimer(timer)

		select {
		case <-timer.C:
		case <-s.closeCh:
			return nil, ErrClosed
		}
	}

	if line == nil {
		return []byte{}, nil
	}

	return line, nil
}

// Close implements Transport.
func (s *Simulator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.closeCh)
	}

	return nil
}

// SetPosition moves the simulated robot without any wire traffic.
func (s *Simulator) SetPosition(c [4]int) {
	s.mu.Lock()
	s.pos = c
	s.mu.Unlock()
}

// Position returns the simulated robot's coordinates.
func (s *Simulator) Position() [4]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pos
}

// SetPoint stores a point in the controller's registry.
func (s *Simulator) SetPoint(name string, c [4]int) {
	s.mu.Lock()
	s.points[name] = c
	s.mu.Unlock()
}

// Points returns a copy of the controller's point registry.
func (s *Simulator) Points() map[string][4]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	pts := make(map[string][4]int, len(s.points))
	for k, v := range s.points {
		pts[k] = v
	}

	return pts
}

// SetInput sets the raw status READINP reports for ch.
func (s *Simulator) SetInput(ch int, value string) {
	s.mu.Lock()
	s.inputs[ch] = value
	s.mu.Unlock()
}

// SetReply overrides the reply to instruction (without CRLF). reply must
// carry its own line terminator; an empty reply makes the controller echo
// the instruction and then stay silent.
func (s *Simulator) SetReply(instruction, reply string) {
	s.mu.Lock()
	s.replies[instruction] = reply
	s.mu.Unlock()
}

// ClearReply removes an override set by SetReply.
func (s *Simulator) ClearReply(instruction string) {
	s.mu.Lock()
	delete(s.replies, instruction)
	s.mu.Unlock()
}

// SetLatency delays every queued line by d.
func (s *Simulator) SetLatency(d time.Duration) {
	s.mu.Lock()
	s.latency = d
	s.mu.Unlock()
}

// InjectCorruptPoints makes LISTPOINTS report lines ahead of the real
// registry until the next CLEARPOINTS, like a controller that lost its
// battery-backed memory.
func (s *Simulator) InjectCorruptPoints(lines ...string) {
	s.mu.Lock()
	s.garbage = append(s.garbage, lines...)
	s.mu.Unlock()
}

// CorruptNextEcho garbles the echo of the next instruction equal to
// instruction (without CRLF).
func (s *Simulator) CorruptNextEcho(instruction string) {
	s.mu.Lock()
	s.corruptEcho[instruction]++
	s.mu.Unlock()
}

// Writes returns every instruction received so far, without CRLF.
func (s *Simulator) Writes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.writes...)
}

// Count returns how many received instructions start with verb.
func (s *Simulator) Count(verb string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, w := range s.writes {
		if w == verb || strings.HasPrefix(w, verb+" ") {
			n++
		}
	}

	return n
}

// ResetWrites forgets the recorded instructions.
func (s *Simulator) ResetWrites() {
	s.mu.Lock()
	s.writes = nil
	s.mu.Unlock()
}

// Terminal reports whether the controller is in TERMINAL mode.
func (s *Simulator) Terminal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.terminal
}

// TerminalLines returns the lines received while in TERMINAL mode.
func (s *Simulator) TerminalLines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.termLog...)
}

// Limp reports whether the motors are de-energized.
func (s *Simulator) Limp() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.limp
}

// Speed returns the last SPEED setting.
func (s *Simulator) Speed() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.speed
}

// Gripped reports whether the gripper is closed, and its strength.
func (s *Simulator) Gripped() (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.gripped, s.grip
}

// execute runs one instruction; s.mu is held.
func (s *Simulator) execute(line string) {
	s.writes = append(s.writes, line)

	if s.terminal {
		if line == "TERMINAL" {
			s.terminal = false
			s.queue(simTerminator)
		} else {
			s.termLog = append(s.termLog, line)
		}

		return
	}

	s.echo(line)

	if reply, ok := s.replies[line]; ok {
		if reply != "" {
			s.queue(reply)
		}

		return
	}

	verb, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch verb {
	case "TERMINAL":
		s.terminal = true
	case "GETPOS":
		s.queue(formatCoords(s.pos) + "\r\n")
	case "LISTPOINTS":
		for _, g := range s.garbage {
			s.queue(g + "\r\n")
		}
		names := make([]string, 0, len(s.points))
		for name := range s.points {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			s.queue(name + ", " + formatCoords(s.points[name]) + "\r\n")
		}
		s.queue("\r\n")
	case "CLEARPOINTS":
		s.points = make(map[string][4]int)
		s.garbage = nil
	case "READINP":
		ch, err := strconv.Atoi(arg)
		if err != nil {
			s.queue("ERROR\r\n")
			return
		}
		v, ok := s.inputs[ch]
		if !ok {
			v = "0"
		}
		s.queue(v + "\r\n")
	case "HOME":
		s.pos = [4]int{}
		s.queue(simTerminator)
	case "JOG":
		if !s.jog(arg) {
			s.queue("ERROR\r\n")
			return
		}
		s.queue(simTerminator)
	case "MOVE":
		c, ok := s.points[arg]
		if !ok {
			s.queue("POINT NOT FOUND\r\n")
			return
		}
		s.pos = c
		s.queue(simTerminator)
	case "HERE":
		s.points[arg] = s.pos
		s.queue(simTerminator)
	case "DELETEPOINT":
		delete(s.points, arg)
		s.queue(simTerminator)
	case "SPEED":
		s.speed, _ = strconv.Atoi(arg)
		s.queue(simTerminator)
	case "SETGRIPSTRENGTH":
		s.grip, _ = strconv.Atoi(arg)
		s.queue(simTerminator)
	case "CLOSE":
		s.gripped = true
		s.queue(simTerminator)
	case "OPEN":
		s.gripped = false
		s.queue(simTerminator)
	case "LIMP":
		s.limp = arg == "0"
		s.queue(simTerminator)
	case "VERSION":
		s.queue(simVersion + "\r\n")
	default:
		s.queue(simTerminator)
	}
}

func (s *Simulator) echo(line string) {
	if s.corruptEcho[line] > 0 {
		s.corruptEcho[line]--
		s.queue("?" + line + "\r\n")

		return
	}
	s.queue(line + "\r\n")
}

func (s *Simulator) queue(line string) {
	s.out.Enqueue([]byte(line))
}

func (s *Simulator) jog(arg string) bool {
	axis, dist, ok := strings.Cut(arg, ",")
	if !ok || len(axis) != 1 {
		return false
	}
	idx := strings.Index(simAxes, axis)
	if idx < 0 {
		return false
	}
	d, err := strconv.Atoi(strings.TrimSpace(dist))
	if err != nil {
		return false
	}
	s.pos[idx] += d

	return true
}

func formatCoords(c [4]int) string {
	return fmt.Sprintf("%d, %d, %d, %d", c[0], c[1], c[2], c[3])
}
