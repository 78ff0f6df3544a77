package crane

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/arloliu/go-platecrane/internal/pool"
	"github.com/arloliu/go-platecrane/logger"
	"github.com/arloliu/go-platecrane/transport"
)

const pollWorkerName = "pollWorker"

// worker is the only goroutine that touches the transport.
type worker struct {
	ctx     context.Context
	tr      transport.Transport
	st      *linkState
	cfg     *Config
	metrics *Metrics
	logger  logger.Logger

	cursor int
	// desynced is set after an echo mismatch; the next write drains stale
	// input first.
	desynced bool
	// ioFault is set after a transport error and makes the cycle back off.
	ioFault bool
}

func newWorker(ctx context.Context, tr transport.Transport, st *linkState, cfg *Config, m *Metrics, l logger.Logger) *worker {
	return &worker{
		ctx:     ctx,
		tr:      tr,
		st:      st,
		cfg:     cfg,
		metrics: m,
		logger:  l,
	}
}

// cycle services the four duties once. It returns false when the worker
// should stop.
func (w *worker) cycle() bool {
	select {
	case req := <-w.st.refreshReq:
		w.servePoints(req)
	default:
	}

	if w.st.posGate.tryEnter() {
		w.readPosition()
		w.st.posGate.leave()
	}

	select {
	case cmd := <-w.st.cmdSlot:
		w.dispatch(cmd)
	default:
	}

	if w.st.ioGate.tryEnter() {
		w.scanInput()
		w.st.ioGate.leave()
	}

	w.metrics.incCycleCount()

	pause := w.cfg.pollInterval
	if w.ioFault {
		w.ioFault = false
		pause = max(pause, w.cfg.readTimeout)
	}

	return w.sleep(pause)
}

func (w *worker) sleep(d time.Duration) bool {
	if d <= 0 {
		return w.ctx.Err() == nil
	}

	timer := pool.GetTimer(d)
	defer pool.PutTimer(timer)

	select {
	case <-w.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// servePoints runs one registry refresh for req and releases its waiter.
func (w *worker) servePoints(req *refreshRequest) {
	points, err := w.readPoints()
	if err == nil {
		w.st.replacePoints(points)
	} else {
		w.fault("point refresh failed", err)
	}

	req.points, _ = w.st.completeRefresh()
	req.err = err
	w.metrics.incPointRefreshCount()
	close(req.done)
}

// readPoints lists the controller's points. A listing with any malformed
// record is discarded whole and the controller's registry is cleared.
func (w *worker) readPoints() (Points, error) {
	if err := w.send("listpoints", instrListPoints, false); err != nil {
		return nil, err
	}

	points := Points{}
	corrupt := 0
	for {
		line, err := w.tr.ReadLine(w.cfg.readTimeout)
		if err != nil {
			return nil, w.transportErr(err)
		}
		if len(line) == 0 {
			// the rest of the listing may still arrive
			w.desynced = true
			return nil, &LinkError{Op: "listpoints", Sent: instrListPoints, Err: ErrResponseTimeout}
		}
		if isBlankLine(line) {
			break
		}

		name, c, ok := parsePointLine(line)
		if !ok {
			corrupt++
			continue
		}
		points[name] = c
	}

	if corrupt > 0 {
		w.metrics.addCorruptPointCount(corrupt)
		w.logger.Warn("corrupt points in point list, clearing controller registry",
			"corrupt", corrupt, "valid", len(points), "error", ErrCorruptPoint)

		// the controller does not echo reliably in this state
		if err := w.send("clearpoints", instrClearAll, true); err != nil {
			return nil, err
		}
		if err := w.drain(); err != nil {
			return nil, err
		}

		return Points{}, nil
	}

	return points, nil
}

func (w *worker) readPosition() {
	if err := w.send("getpos", instrGetPos, false); err != nil {
		w.fault("position refresh failed", err)
		return
	}

	reply, err := w.readReply()
	if err != nil {
		w.fault("position refresh failed", err)
		return
	}

	w.st.setPosition(trimFrame(reply))
	w.metrics.incPositionReadCount()
}

// dispatch executes cmd and releases its waiter in every case.
func (w *worker) dispatch(cmd *command) {
	w.st.setLastErr(nil)
	w.metrics.incCommandCount()

	err := w.execute(cmd)
	if err != nil {
		w.metrics.incCommandErrCount()
		w.fault("command failed", err)
	}

	cmd.err = err
	w.st.setLastErr(err)
	w.st.pending.CompareAndSwap(cmd, nil)
	close(cmd.done)
}

func (w *worker) execute(cmd *command) error {
	if err := w.send("command", cmd.instr, cmd.ignoreEcho); err != nil {
		return err
	}

	switch cmd.policy {
	case expectNone:
		return nil
	case expectDrain:
		return w.drain()
	}

	reply, err := w.readReply()
	if err != nil {
		return err
	}

	if cmd.policy == expectAny {
		cmd.reply = reply
		return nil
	}

	if !bytes.Equal(reply, cmd.expected) {
		return &LinkError{Op: "command", Sent: cmd.instr, Got: reply, Expected: cmd.expected, Err: ErrResponseMismatch}
	}

	return nil
}

func (w *worker) scanInput() {
	ch := int(w.st.fastChannel.Load())
	fast := ch >= 0
	if !fast {
		ch = w.cursor
		w.cursor = (w.cursor + 1) % w.cfg.channelCount
	}

	if err := w.send("readinp", readInputInstr(ch), false); err != nil {
		w.fault("input scan failed", err, "channel", ch)
		return
	}

	line, err := w.tr.ReadLine(w.cfg.readTimeout)
	if err != nil {
		w.fault("input scan failed", w.transportErr(err), "channel", ch)
		return
	}
	if len(line) == 0 {
		// keep the previous value; a late reply is drained before the next send
		w.desynced = true
		return
	}

	w.st.inputs.Store(ch, string(trimFrame(line)))
	w.metrics.incInputReadCount()
}

// send writes instr and, unless ignoreEcho, checks the echo. A mismatch is
// not retried and no reply is read.
func (w *worker) send(op, instr string, ignoreEcho bool) error {
	if w.desynced {
		w.desynced = false
		if err := w.drain(); err != nil {
			return err
		}
	}

	data := frame(instr)
	if _, err := w.tr.Write(data); err != nil {
		return w.transportErr(err)
	}
	if err := w.tr.Flush(); err != nil {
		return w.transportErr(err)
	}

	if ignoreEcho {
		return nil
	}

	echo, err := w.tr.ReadLine(w.cfg.readTimeout)
	if err != nil {
		return w.transportErr(err)
	}
	if !bytes.Equal(echo, data) {
		w.desynced = true
		w.metrics.incEchoMismatchCount()

		return &LinkError{Op: op, Sent: instr, Got: echo, Expected: data, Err: ErrEchoMismatch}
	}

	return nil
}

// readReply reads until a non-empty line arrives. Timeouts are retried for
// as long as the driver is open.
func (w *worker) readReply() ([]byte, error) {
	for {
		line, err := w.tr.ReadLine(w.cfg.readTimeout)
		if err != nil {
			return nil, w.transportErr(err)
		}
		if len(line) > 0 {
			return line, nil
		}

		if w.ctx.Err() != nil {
			return nil, ErrClosed
		}
	}
}

// drain discards input until a read times out.
func (w *worker) drain() error {
	for {
		line, err := w.tr.ReadLine(w.cfg.readTimeout)
		if err != nil {
			return w.transportErr(err)
		}
		if len(line) == 0 {
			return nil
		}

		w.logger.Debug("drained", "line", string(trimFrame(line)))
	}
}

func (w *worker) transportErr(err error) error {
	w.ioFault = true
	if errors.Is(err, transport.ErrClosed) {
		return ErrClosed
	}

	w.metrics.incTransportErrCount()

	return err
}

func (w *worker) fault(msg string, err error, keysAndValues ...any) {
	if errors.Is(err, ErrClosed) {
		return
	}

	w.logger.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}
