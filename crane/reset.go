package crane

import "fmt"

// Reset brings the controller to a known state: it starts the poll worker,
// replays the system parameters, replays the driver parameters in TERMINAL
// mode when configured, then homes the robot.
//
// Position and input polling stay suspended until the parameters are in.
func (d *Driver) Reset() error {
	d.suspendPolling()
	resumed := false
	resume := func() {
		if !resumed {
			resumed = true
			d.resumePolling()
		}
	}
	defer resume()

	if err := d.Start(); err != nil {
		return err
	}

	d.logger.Info("replaying system parameters")
	if err := d.replay(d.cfg.systemParams); err != nil {
		return fmt.Errorf("crane: system parameters: %w", err)
	}

	if d.cfg.driverParams != nil {
		if err := d.SendDriverParams(d.cfg.driverParams); err != nil {
			return err
		}
	}

	resume()

	return d.Home()
}

// SendDriverParams replays src in TERMINAL mode, with position and input
// polling suspended.
//
// TERMINAL entry is echo-checked and has no reply; the exit does not echo
// and is acknowledged with the terminator.
func (d *Driver) SendDriverParams(src InstructionSource) error {
	lines, err := src.Instructions()
	if err != nil {
		return fmt.Errorf("crane: driver parameters: %w", err)
	}

	d.suspendPolling()
	defer d.resumePolling()

	d.logger.Info("replaying driver parameters", "count", len(lines))

	if err := d.submit(newCommand(instrTerminal, expectNone)); err != nil {
		return fmt.Errorf("crane: enter terminal mode: %w", err)
	}

	var replayErr error
	for _, line := range lines {
		cmd := newCommand(line, expectDrain)
		cmd.ignoreEcho = true
		if replayErr = d.submit(cmd); replayErr != nil {
			replayErr = fmt.Errorf("crane: driver parameter %q: %w", line, replayErr)
			break
		}
	}

	// leave terminal mode even when the replay failed
	exit := newCommand(instrTerminal, expectExact)
	exit.ignoreEcho = true
	if err := d.submit(exit); err != nil {
		return fmt.Errorf("crane: exit terminal mode: %w", err)
	}

	return replayErr
}

func (d *Driver) replay(src InstructionSource) error {
	lines, err := src.Instructions()
	if err != nil {
		return err
	}

	for _, line := range lines {
		cmd := newCommand(line, expectDrain)
		cmd.ignoreEcho = true
		if err := d.submit(cmd); err != nil {
			return fmt.Errorf("%q: %w", line, err)
		}
	}

	return nil
}

func (d *Driver) suspendPolling() {
	d.st.posGate.suspend()
	d.st.ioGate.suspend()
}

func (d *Driver) resumePolling() {
	d.st.posGate.resume()
	d.st.ioGate.resume()
}
