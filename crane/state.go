package crane

import (
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// responsePolicy says what the worker reads after a command's echo.
type responsePolicy int

const (
	// expectNone reads nothing.
	expectNone responsePolicy = iota
	// expectExact reads one non-empty line and compares it with the expected bytes.
	expectExact
	// expectAny reads one non-empty line and captures it.
	expectAny
	// expectDrain reads and discards lines until the link goes quiet.
	expectDrain
)

func (p responsePolicy) String() string {
	switch p {
	case expectNone:
		return "none"
	case expectExact:
		return "exact"
	case expectAny:
		return "any"
	case expectDrain:
		return "drain"
	default:
		return "unknown"
	}
}

// command is one pending instruction and, once done is closed, its outcome.
type command struct {
	instr      string
	policy     responsePolicy
	expected   []byte
	ignoreEcho bool

	reply []byte
	err   error
	done  chan struct{}
}

func newCommand(instr string, policy responsePolicy) *command {
	cmd := &command{
		instr:  instr,
		policy: policy,
		done:   make(chan struct{}),
	}
	if policy == expectExact {
		cmd.expected = []byte(Terminator)
	}

	return cmd
}

// refreshRequest asks the worker for one point registry refresh.
type refreshRequest struct {
	points Points
	err    error
	done   chan struct{}
}

// linkState is the state shared by a Driver and its poll worker. Each field
// group has its own guard so unrelated duties never block each other.
type linkState struct {
	posMu    sync.RWMutex
	position []byte

	pointsMu  sync.RWMutex
	points    Points
	pointsGen uint64

	inputs *xsync.MapOf[int, string]

	pending atomic.Pointer[command]
	cmdSlot chan *command

	refreshReq chan *refreshRequest

	errMu   sync.RWMutex
	lastErr error

	posGate gate
	ioGate  gate

	motorsOff   atomic.Bool
	fastChannel atomic.Int32
}

func newLinkState(fastChannel int) *linkState {
	st := &linkState{
		position:   []byte("0, 0, 0, 0"),
		points:     Points{},
		inputs:     xsync.NewMapOf[int, string](),
		cmdSlot:    make(chan *command, 1),
		refreshReq: make(chan *refreshRequest, 1),
	}
	st.fastChannel.Store(int32(fastChannel)) //nolint:gosec // range checked by Config

	return st
}

func (st *linkState) setPosition(p []byte) {
	cp := make([]byte, len(p))
	copy(cp, p)

	st.posMu.Lock()
	st.position = cp
	st.posMu.Unlock()
}

func (st *linkState) getPosition() string {
	st.posMu.RLock()
	defer st.posMu.RUnlock()

	return string(st.position)
}

// replacePoints swaps in a whole new registry.
func (st *linkState) replacePoints(p Points) {
	st.pointsMu.Lock()
	st.points = p
	st.pointsMu.Unlock()
}

// completeRefresh bumps the refresh generation and returns it with a copy
// of the registry.
func (st *linkState) completeRefresh() (Points, uint64) {
	st.pointsMu.Lock()
	defer st.pointsMu.Unlock()

	st.pointsGen++

	return st.points.Clone(), st.pointsGen
}

func (st *linkState) getPoints() Points {
	st.pointsMu.RLock()
	defer st.pointsMu.RUnlock()

	return st.points.Clone()
}

func (st *linkState) refreshGeneration() uint64 {
	st.pointsMu.RLock()
	defer st.pointsMu.RUnlock()

	return st.pointsGen
}

func (st *linkState) setLastErr(err error) {
	st.errMu.Lock()
	st.lastErr = err
	st.errMu.Unlock()
}

func (st *linkState) getLastErr() error {
	st.errMu.RLock()
	defer st.errMu.RUnlock()

	return st.lastErr
}
