package program

import (
	"github.com/arloliu/go-platecrane/crane"
	"github.com/stretchr/testify/mock"
)

// mockRobot is a testify mock implementing Robot.
type mockRobot struct {
	mock.Mock
}

var _ Robot = (*mockRobot)(nil)

func (m *mockRobot) Move(name string) error           { return m.Called(name).Error(0) }
func (m *mockRobot) Jog(axis crane.Axis, d int) error { return m.Called(axis, d).Error(0) }
func (m *mockRobot) Here(name string) error           { return m.Called(name).Error(0) }
func (m *mockRobot) Clear(name string) error          { return m.Called(name).Error(0) }
func (m *mockRobot) Speed(percent int) error          { return m.Called(percent).Error(0) }
func (m *mockRobot) GripForce(level int) error        { return m.Called(level).Error(0) }
func (m *mockRobot) Grip() error                      { return m.Called().Error(0) }
func (m *mockRobot) Release() error                   { return m.Called().Error(0) }
func (m *mockRobot) MotorsOn() error                  { return m.Called().Error(0) }
func (m *mockRobot) MotorsOff() error                 { return m.Called().Error(0) }
func (m *mockRobot) Home() error                      { return m.Called().Error(0) }
