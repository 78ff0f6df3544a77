package program

import (
	"context"
	"fmt"
	"time"

	"github.com/arloliu/go-platecrane/crane"
	"github.com/arloliu/go-platecrane/internal/pool"
	"github.com/arloliu/go-platecrane/logger"
)

// Robot is the part of the driver a program can reach.
type Robot interface {
	Move(name string) error
	Jog(axis crane.Axis, dist int) error
	Here(name string) error
	Clear(name string) error
	Speed(percent int) error
	GripForce(level int) error
	Grip() error
	Release() error
	MotorsOn() error
	MotorsOff() error
	Home() error
}

var _ Robot = (*crane.Driver)(nil)

// Runner executes programs against a Robot.
type Runner struct {
	robot  Robot
	logger logger.Logger
}

// NewRunner creates a Runner. A nil logger uses the package default.
func NewRunner(robot Robot, l logger.Logger) *Runner {
	if l == nil {
		l = logger.GetLogger()
	}

	return &Runner{robot: robot, logger: l}
}

// Run executes p step by step. It stops at the first failing step, or when
// ctx is done; a motion already sent to the robot is not interrupted.
func (r *Runner) Run(ctx context.Context, p *Program) error {
	l := r.logger.With("program", p.Name)
	l.Info("program started")

	start := time.Now()
	if err := r.steps(ctx, l, p.Steps); err != nil {
		l.Error("program failed", "error", err)
		return fmt.Errorf("program %s: %w", p.Name, err)
	}

	l.Info("program finished", "elapsed", time.Since(start))

	return nil
}

func (r *Runner) steps(ctx context.Context, l logger.Logger, steps []Step) error {
	for i := range steps {
		step := &steps[i]

		if err := ctx.Err(); err != nil {
			return err
		}

		if step.Op == OpRepeat {
			for n := 0; n < step.Value; n++ {
				if err := r.steps(ctx, l, step.Body); err != nil {
					return err
				}
			}

			continue
		}

		l.Debug("step", "line", step.Line, "op", step.Op.String())
		if err := r.exec(ctx, step); err != nil {
			return fmt.Errorf("line %d: %s: %w", step.Line, step.Op, err)
		}
	}

	return nil
}

func (r *Runner) exec(ctx context.Context, step *Step) error {
	switch step.Op {
	case OpMove:
		return r.robot.Move(step.Point)
	case OpJog:
		return r.robot.Jog(step.Axis, step.Value)
	case OpHere:
		return r.robot.Here(step.Point)
	case OpClear:
		return r.robot.Clear(step.Point)
	case OpSpeed:
		return r.robot.Speed(step.Value)
	case OpGripForce:
		return r.robot.GripForce(step.Value)
	case OpGrip:
		return r.robot.Grip()
	case OpRelease:
		return r.robot.Release()
	case OpMotorsOn:
		return r.robot.MotorsOn()
	case OpMotorsOff:
		return r.robot.MotorsOff()
	case OpHome:
		return r.robot.Home()
	case OpSleep:
		return sleep(ctx, step.Duration)
	default:
		return fmt.Errorf("unsupported instruction %s", step.Op)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := pool.GetTimer(d)
	defer pool.PutTimer(timer)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
