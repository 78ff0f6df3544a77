// Package crane drives a PlateCrane laboratory robot over its serial link.
//
// The controller speaks a half-duplex, echo-based line protocol: every
// instruction is echoed verbatim before any reply, and motion instructions
// are acknowledged with a fixed terminator. A single link therefore has to
// carry motion commands, position polling, digital input scanning and point
// registry refreshes one transaction at a time.
//
// Driver owns that arbitration. A poll worker goroutine is the only user of
// the transport. Each cycle it services, in order:
//
//  1. a point registry refresh, when GetPoints asked for one
//  2. a position refresh, unless position polling is suspended
//  3. the pending command, when a caller submitted one
//  4. one digital input channel, unless input polling is suspended
//
// Caller-facing methods (Jog, Move, Here, Speed, ...) validate their
// arguments, hand a command to the worker and block until it has been
// resolved. Link faults are reported as *LinkError values that match the
// package sentinels with errors.Is.
//
//	tr, _ := transport.OpenSerial(transport.SerialConfig{Port: "/dev/ttyUSB0"})
//	cfg, _ := crane.NewConfig(crane.WithSystemParams(crane.InstructionFile("config/system.params")))
//	drv, _ := crane.NewDriver(ctx, tr, cfg)
//	defer drv.Close()
//
//	if err := drv.Reset(); err != nil {
//	    return err
//	}
//	_ = drv.Move("plate1")
//	fmt.Println(drv.Position())
package crane
