package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/arloliu/go-platecrane/crane"
	"github.com/arloliu/go-platecrane/program"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Width(14)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

const inputColumns = 8

func renderStatus(d *crane.Driver) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("PlateCrane"))
	b.WriteString("\n")

	row := func(label, value string) {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value))
		b.WriteString("\n")
	}

	row("position", d.Position())

	motors := successStyle.Render("on")
	if d.MotorsAreOff() {
		motors = errorStyle.Render("off")
	}
	row("motors", motors)

	fast := dimStyle.Render("off")
	if ch := d.FastChannel(); ch != crane.NoFastChannel {
		fast = strconv.Itoa(ch)
	}
	row("fast channel", fast)

	lastErr := dimStyle.Render("none")
	if err := d.LastError(); err != nil {
		lastErr = errorStyle.Render(err.Error())
	}
	row("last error", lastErr)

	m := d.Metrics()
	row("cycles", fmt.Sprintf("%d (%d commands, %d errors)",
		m.CycleCount.Load(), m.CommandCount.Load(), m.CommandErrCount.Load()))

	b.WriteString(renderInputs(d.Inputs()))

	return b.String()
}

// renderInputs lays the scanned channels out in rows of inputColumns.
func renderInputs(inputs map[int]string) string {
	if len(inputs) == 0 {
		return dimStyle.Render("no inputs scanned yet")
	}

	chans := make([]int, 0, len(inputs))
	for ch := range inputs {
		chans = append(chans, ch)
	}
	sort.Ints(chans)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle)

	var cells []string
	for _, ch := range chans {
		cells = append(cells, fmt.Sprintf("%2d: %s", ch, inputs[ch]))
		if len(cells) == inputColumns {
			t.Row(cells...)
			cells = nil
		}
	}
	if len(cells) > 0 {
		t.Row(cells...)
	}

	return t.Render()
}

func renderPoints(pts crane.Points) string {
	if len(pts) == 0 {
		return dimStyle.Render("no points taught")
	}

	names := make([]string, 0, len(pts))
	for name := range pts {
		names = append(names, name)
	}
	sort.Strings(names)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("POINT", "R", "Y", "Z", "P").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			if col == 0 {
				return lipgloss.NewStyle().Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
		})

	for _, name := range names {
		c := pts[name]
		t.Row(name, strconv.Itoa(c[0]), strconv.Itoa(c[1]), strconv.Itoa(c[2]), strconv.Itoa(c[3]))
	}

	return t.Render()
}

func renderProgram(p *program.Program) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(p.Name))
	b.WriteString("\n")
	writeSteps(&b, p.Steps, 0)

	return strings.TrimRight(b.String(), "\n")
}

func writeSteps(b *strings.Builder, steps []program.Step, depth int) {
	indent := strings.Repeat("  ", depth)
	for i := range steps {
		s := &steps[i]
		line := dimStyle.Render(fmt.Sprintf("%4d ", s.Line))

		switch s.Op {
		case program.OpMove, program.OpHere, program.OpClear:
			fmt.Fprintf(b, "%s%s%s %q\n", line, indent, s.Op, s.Point)
		case program.OpJog:
			fmt.Fprintf(b, "%s%s%s %s %d\n", line, indent, s.Op, s.Axis, s.Value)
		case program.OpSpeed, program.OpGripForce:
			fmt.Fprintf(b, "%s%s%s %d\n", line, indent, s.Op, s.Value)
		case program.OpSleep:
			fmt.Fprintf(b, "%s%s%s %v\n", line, indent, s.Op, s.Duration)
		case program.OpRepeat:
			fmt.Fprintf(b, "%s%s%s %d\n", line, indent, s.Op, s.Value)
			writeSteps(b, s.Body, depth+1)
			fmt.Fprintf(b, "%s%send\n", dimStyle.Render("     "), indent)
		default:
			fmt.Fprintf(b, "%s%s%s\n", line, indent, s.Op)
		}
	}
}
