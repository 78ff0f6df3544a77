package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/arloliu/go-platecrane/crane"
	"github.com/arloliu/go-platecrane/transport"
)

type PortsCommand struct{}

func (c *PortsCommand) Execute(args []string) error {
	ports, err := transport.ListPorts()
	if err != nil {
		return err
	}

	if len(ports) == 0 {
		fmt.Println(dimStyle.Render("no serial ports found"))
		return nil
	}
	for _, p := range ports {
		fmt.Println(p)
	}

	return nil
}

type ResetCommand struct{}

func (c *ResetCommand) Execute(args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Println(successStyle.Render("reset complete"))
	fmt.Println(renderStatus(s.drv))

	return nil
}

type StatusCommand struct {
	Wait time.Duration `short:"w" long:"wait" default:"1s" description:"How long to poll before reporting"`
}

func (c *StatusCommand) Execute(args []string) error {
	return withDriver(func(d *crane.Driver) error {
		if err := sleepCtx(c.Wait); err != nil {
			return err
		}
		fmt.Println(renderStatus(d))

		return nil
	})
}

type PointsCommand struct{}

func (c *PointsCommand) Execute(args []string) error {
	return withDriver(func(d *crane.Driver) error {
		pts, err := d.GetPoints()
		if err != nil {
			return err
		}
		fmt.Println(renderPoints(pts))

		return nil
	})
}

type JogCommand struct {
	Args struct {
		Axis     string `positional-arg-name:"axis" description:"R, Y, Z or P"`
		Distance int    `positional-arg-name:"distance" description:"Signed distance; put -- before negative values"`
	} `positional-args:"yes" required:"yes"`
}

func (c *JogCommand) Execute(args []string) error {
	axis, err := crane.ParseAxis(c.Args.Axis)
	if err != nil {
		return err
	}

	return withDriver(func(d *crane.Driver) error {
		return d.Jog(axis, c.Args.Distance)
	})
}

type pointArgs struct {
	Name string `positional-arg-name:"point" description:"Point name"`
}

type MoveCommand struct {
	Args pointArgs `positional-args:"yes" required:"yes"`
}

func (c *MoveCommand) Execute(args []string) error {
	return withDriver(func(d *crane.Driver) error {
		return d.Move(c.Args.Name)
	})
}

type HereCommand struct {
	Args pointArgs `positional-args:"yes" required:"yes"`
}

func (c *HereCommand) Execute(args []string) error {
	return withDriver(func(d *crane.Driver) error {
		return d.Here(c.Args.Name)
	})
}

type ClearCommand struct {
	Args pointArgs `positional-args:"yes" required:"yes"`
}

func (c *ClearCommand) Execute(args []string) error {
	return withDriver(func(d *crane.Driver) error {
		return d.Clear(c.Args.Name)
	})
}

type SpeedCommand struct {
	Args struct {
		Percent int `positional-arg-name:"percent"`
	} `positional-args:"yes" required:"yes"`
}

func (c *SpeedCommand) Execute(args []string) error {
	return withDriver(func(d *crane.Driver) error {
		return d.Speed(c.Args.Percent)
	})
}

type GripForceCommand struct {
	Args struct {
		Level int `positional-arg-name:"level"`
	} `positional-args:"yes" required:"yes"`
}

func (c *GripForceCommand) Execute(args []string) error {
	return withDriver(func(d *crane.Driver) error {
		return d.GripForce(c.Args.Level)
	})
}

type GripCommand struct{}

func (c *GripCommand) Execute(args []string) error {
	return withDriver(func(d *crane.Driver) error {
		return d.Grip()
	})
}

type ReleaseCommand struct{}

func (c *ReleaseCommand) Execute(args []string) error {
	return withDriver(func(d *crane.Driver) error {
		return d.Release()
	})
}

type HomeCommand struct{}

func (c *HomeCommand) Execute(args []string) error {
	return withDriver(func(d *crane.Driver) error {
		return d.Home()
	})
}

type MotorsCommand struct {
	Args struct {
		State string `positional-arg-name:"on|off"`
	} `positional-args:"yes" required:"yes"`
}

func (c *MotorsCommand) Execute(args []string) error {
	var op func(d *crane.Driver) error
	switch strings.ToLower(c.Args.State) {
	case "on":
		op = (*crane.Driver).MotorsOn
	case "off":
		op = (*crane.Driver).MotorsOff
	default:
		return fmt.Errorf("motors: want on or off, got %q", c.Args.State)
	}

	return withDriver(op)
}

type RawCommand struct {
	Exec bool `short:"e" long:"exec" description:"Expect the plain terminator instead of printing the reply"`
	Args struct {
		Instruction []string `positional-arg-name:"instruction" required:"1"`
	} `positional-args:"yes"`
}

func (c *RawCommand) Execute(args []string) error {
	instr := strings.Join(c.Args.Instruction, " ")

	return withDriver(func(d *crane.Driver) error {
		if c.Exec {
			return d.Exec(instr)
		}

		reply, err := d.Query(instr)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, reply)

		return nil
	})
}

func sleepCtx(d time.Duration) error {
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-appCtx.Done():
		return appCtx.Err()
	}
}
