package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Config  string `short:"c" long:"config" default:"platecrane.yaml" description:"Configuration file; a missing file means defaults"`
	Port    string `short:"p" long:"port" description:"Serial port, overrides the configuration and the last used device"`
	Sim     bool   `long:"sim" description:"Use the built-in simulator instead of a serial port"`
	Verbose bool   `short:"v" long:"verbose" description:"Log at debug level"`

	Ports     PortsCommand     `command:"ports" description:"List serial ports"`
	Reset     ResetCommand     `command:"reset" description:"Replay parameters and home the robot"`
	Status    StatusCommand    `command:"status" description:"Show position, inputs and link state"`
	Points    PointsCommand    `command:"points" description:"List the taught points"`
	Jog       JogCommand       `command:"jog" description:"Move one axis by a relative distance"`
	Move      MoveCommand      `command:"move" description:"Move to a taught point"`
	Here      HereCommand      `command:"here" description:"Teach the current position as a point"`
	Clear     ClearCommand     `command:"clear" description:"Delete a taught point"`
	Speed     SpeedCommand     `command:"speed" description:"Set the motion speed (0-100)"`
	GripForce GripForceCommand `command:"grip-force" description:"Set the grip strength (0-3)"`
	Grip      GripCommand      `command:"grip" description:"Close the gripper"`
	Release   ReleaseCommand   `command:"release" description:"Open the gripper"`
	Home      HomeCommand      `command:"home" description:"Home all axes"`
	Motors    MotorsCommand    `command:"motors" description:"Energize or de-energize the motors"`
	Raw       RawCommand       `command:"raw" description:"Send a raw instruction"`
	Run       RunCommand       `command:"run" description:"Run a stored motion program"`
	Programs  ProgramsCommand  `command:"programs" alias:"prog" description:"Manage stored motion programs"`
}

var (
	opts   Options
	parser = flags.NewParser(&opts, flags.Default)
	appCtx = context.Background()
)

func main() {
	parser.LongDescription = "platecrane - PlateCrane plate handler control CLI"

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	appCtx = ctx

	_, err := parser.Parse()
	stop()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}
