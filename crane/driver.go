package crane

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/arloliu/go-platecrane/internal/pool"
	"github.com/arloliu/go-platecrane/internal/task"
	"github.com/arloliu/go-platecrane/logger"
	"github.com/arloliu/go-platecrane/transport"
)

// Driver is the caller-facing side of a PlateCrane link.
//
// All methods are safe for concurrent use. Commands are executed one at a
// time by the poll worker; a caller submitting while another command is in
// flight waits for its turn.
type Driver struct {
	cfg     *Config
	tr      transport.Transport
	st      *linkState
	metrics *Metrics
	logger  logger.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	taskMgr *task.Manager

	// turn admits one submitting caller at a time.
	turn chan struct{}

	runMu   sync.RWMutex
	stopped chan struct{} // closed when the current poll worker exits

	startMu   sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// NewDriver creates a driver that talks over tr. The poll worker is not
// started; call Reset or Start.
//
// The driver owns tr from now on and closes it in Close.
func NewDriver(ctx context.Context, tr transport.Transport, cfg *Config) (*Driver, error) {
	if tr == nil {
		return nil, errors.New("crane: nil transport")
	}

	if cfg == nil {
		var err error
		if cfg, err = NewConfig(); err != nil {
			return nil, err
		}
	}

	d := &Driver{
		cfg:     cfg,
		tr:      tr,
		st:      newLinkState(cfg.fastChannel),
		metrics: &Metrics{},
		logger:  cfg.logger,
		turn:    make(chan struct{}, 1),
	}
	d.ctx, d.cancel = context.WithCancel(ctx)
	d.taskMgr = task.NewManager(d.ctx, d.logger)

	return d, nil
}

// Start launches the poll worker if it is not running. It does not home
// the robot.
func (d *Driver) Start() error {
	d.startMu.Lock()
	defer d.startMu.Unlock()

	if d.closed.Load() {
		return ErrClosed
	}
	if d.taskMgr.Running(pollWorkerName) {
		return nil
	}

	// a command abandoned by a crashed worker must not run on the new one
	select {
	case cmd := <-d.st.cmdSlot:
		d.st.pending.CompareAndSwap(cmd, nil)
	default:
	}

	w := newWorker(d.taskMgr.Context(), d.tr, d.st, d.cfg, d.metrics, d.logger)
	stopped := make(chan struct{})
	var once sync.Once

	d.runMu.Lock()
	d.stopped = stopped
	d.runMu.Unlock()

	err := d.taskMgr.Start(pollWorkerName, func() (alive bool) {
		defer func() {
			if !alive {
				once.Do(func() { close(stopped) })
			}
		}()

		return w.cycle()
	})
	if err != nil {
		if errors.Is(err, task.ErrStopped) {
			return ErrClosed
		}

		return fmt.Errorf("crane: start poll worker: %w", err)
	}

	d.logger.Info("poll worker started")

	return nil
}

// Running reports whether the poll worker is running.
func (d *Driver) Running() bool {
	return d.taskMgr.Running(pollWorkerName)
}

// Close stops the poll worker, releases blocked callers with ErrClosed and
// closes the transport. It is safe to call more than once.
func (d *Driver) Close() error {
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		d.cancel()
		d.taskMgr.Stop()

		done := make(chan struct{})
		go func() {
			d.taskMgr.Wait()
			close(done)
		}()

		timer := pool.GetTimer(d.cfg.closeTimeout)
		defer pool.PutTimer(timer)

		select {
		case <-done:
		case <-timer.C:
			d.logger.Warn("poll worker did not stop in time", "timeout", d.cfg.closeTimeout)
		}

		if err := d.tr.Close(); err != nil {
			d.closeErr = fmt.Errorf("crane: close transport: %w", err)
		}
		d.logger.Info("driver closed")
	})

	return d.closeErr
}

// Jog moves axis by dist steps relative to the current position.
func (d *Driver) Jog(axis Axis, dist int) error {
	if !axis.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidAxis, axis)
	}

	return d.run(jogInstr(axis, dist))
}

// Move moves to the named point.
func (d *Driver) Move(name string) error {
	if err := ValidatePointName(name); err != nil {
		return err
	}

	return d.run(moveInstr(name))
}

// Here records the current position as the named point, overwriting any
// point with that name.
func (d *Driver) Here(name string) error {
	if err := ValidatePointName(name); err != nil {
		return err
	}

	return d.run(hereInstr(name))
}

// Clear deletes the named point.
func (d *Driver) Clear(name string) error {
	if err := ValidatePointName(name); err != nil {
		return err
	}

	return d.run(deleteInstr(name))
}

// Speed sets the motion speed in percent, 0 to 100.
func (d *Driver) Speed(percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("%w: %d", ErrInvalidSpeed, percent)
	}

	return d.run(speedInstr(percent))
}

// GripForce sets the gripper strength, 0 (low) to 3 (max).
func (d *Driver) GripForce(level int) error {
	if level < 0 || level > 3 {
		return fmt.Errorf("%w: %d", ErrInvalidGripForce, level)
	}

	return d.run(gripForceInstr(level))
}

// Grip closes the gripper.
func (d *Driver) Grip() error {
	return d.run(instrGrip)
}

// Release opens the gripper.
func (d *Driver) Release() error {
	return d.run(instrRelease)
}

// Home homes all axes.
func (d *Driver) Home() error {
	return d.run(instrHome)
}

// MotorsOff de-energizes the motors. Position and input polling are
// suspended first, so their last values are kept until MotorsOn.
//
// When the instruction never reaches the link (ErrNotRunning, ErrClosed)
// the suspension is undone.
func (d *Driver) MotorsOff() error {
	suspended := d.st.motorsOff.CompareAndSwap(false, true)
	if suspended {
		d.st.posGate.suspend()
		d.st.ioGate.suspend()
	}

	err := d.run(instrMotorsOff)
	if suspended && (errors.Is(err, ErrNotRunning) || errors.Is(err, ErrClosed)) {
		if d.st.motorsOff.CompareAndSwap(true, false) {
			d.st.posGate.resume()
			d.st.ioGate.resume()
		}
	}

	return err
}

// MotorsOn energizes the motors and resumes the polling MotorsOff
// suspended. Polling stays suspended if the controller rejects the
// instruction.
func (d *Driver) MotorsOn() error {
	if err := d.run(instrMotorsOn); err != nil {
		return err
	}

	if d.st.motorsOff.CompareAndSwap(true, false) {
		d.st.posGate.resume()
		d.st.ioGate.resume()
	}

	return nil
}

// MotorsAreOff reports whether MotorsOff is in effect.
func (d *Driver) MotorsAreOff() bool {
	return d.st.motorsOff.Load()
}

// Query sends a raw instruction and returns the first reply line after the
// echo, framing trimmed.
func (d *Driver) Query(instr string) (string, error) {
	if err := validateInstr(instr); err != nil {
		return "", err
	}

	cmd := newCommand(instr, expectAny)
	if err := d.submit(cmd); err != nil {
		return "", err
	}

	return string(trimFrame(cmd.reply)), nil
}

// Exec sends a raw instruction that is acknowledged with the terminator.
func (d *Driver) Exec(instr string) error {
	if err := validateInstr(instr); err != nil {
		return err
	}

	return d.run(instr)
}

// Position returns the last position reply, e.g. "1, 3, 5, 7".
func (d *Driver) Position() string {
	return d.st.getPosition()
}

// Coordinates parses Position.
func (d *Driver) Coordinates() (Coords, error) {
	return ParseCoords(d.Position())
}

// Input returns the last status read from channel ch.
func (d *Driver) Input(ch int) (string, bool) {
	return d.st.inputs.Load(ch)
}

// Inputs returns a copy of the input status table.
func (d *Driver) Inputs() map[int]string {
	out := make(map[int]string, d.st.inputs.Size())
	d.st.inputs.Range(func(ch int, v string) bool {
		out[ch] = v
		return true
	})

	return out
}

// InputsString renders the input table as "ch: value" pairs in channel order.
func (d *Driver) InputsString() string {
	parts := make([]string, 0, d.cfg.channelCount)
	for ch := 0; ch < d.cfg.channelCount; ch++ {
		if v, ok := d.st.inputs.Load(ch); ok {
			parts = append(parts, strconv.Itoa(ch)+": "+v)
		}
	}

	return strings.Join(parts, "  ")
}

// SetFastChannel polls ch every cycle in place of the round-robin scan.
func (d *Driver) SetFastChannel(ch int) error {
	if ch < 0 || ch >= d.cfg.channelCount {
		return fmt.Errorf("%w: %d", ErrInvalidChannel, ch)
	}
	d.st.fastChannel.Store(int32(ch)) //nolint:gosec // range checked above

	return nil
}

// ClearFastChannel resumes the round-robin input scan.
func (d *Driver) ClearFastChannel() {
	d.st.fastChannel.Store(NoFastChannel)
}

// FastChannel returns the fast input channel, or NoFastChannel.
func (d *Driver) FastChannel() int {
	return int(d.st.fastChannel.Load())
}

// LastError returns the outcome of the most recent command.
func (d *Driver) LastError() error {
	return d.st.getLastErr()
}

// Pending returns the instruction waiting for the worker, if any.
func (d *Driver) Pending() (string, bool) {
	cmd := d.st.pending.Load()
	if cmd == nil {
		return "", false
	}

	return cmd.instr, true
}

// Metrics returns the driver's counters.
func (d *Driver) Metrics() *Metrics {
	return d.metrics
}

func (d *Driver) run(instr string) error {
	return d.submit(newCommand(instr, expectExact))
}

// submit hands cmd to the poll worker and waits for its outcome.
func (d *Driver) submit(cmd *command) error {
	if d.closed.Load() {
		return ErrClosed
	}
	if !d.Running() {
		return ErrNotRunning
	}

	stopped := d.workerStopped()

	select {
	case d.turn <- struct{}{}:
	case <-d.ctx.Done():
		return ErrClosed
	case <-stopped:
		return ErrNotRunning
	}
	defer func() { <-d.turn }()

	d.logger.Debug("sending", "instruction", cmd.instr, "expect", cmd.policy.String())

	d.st.pending.Store(cmd)
	select {
	case d.st.cmdSlot <- cmd:
	default:
		d.st.pending.CompareAndSwap(cmd, nil)
		return ErrCommandPending
	}

	select {
	case <-cmd.done:
		return cmd.err
	case <-d.ctx.Done():
		return ErrClosed
	case <-stopped:
		return ErrNotRunning
	}
}

func (d *Driver) workerStopped() <-chan struct{} {
	d.runMu.RLock()
	defer d.runMu.RUnlock()

	return d.stopped
}

func validateInstr(instr string) error {
	if strings.TrimSpace(instr) == "" || strings.ContainsAny(instr, "\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidCommand, instr)
	}

	return nil
}
