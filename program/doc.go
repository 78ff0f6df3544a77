// Package program parses and runs PlateCrane motion programs.
//
// A program is a plain text file with one instruction per line. Arguments
// are split shell-style, so point names with spaces can be quoted, and
// everything after a '#' is a comment:
//
//	# shuttle a plate between the stacks
//	speed 60
//	repeat 3
//	    move A
//	    move "stack 2"
//	end
//	grip
//	release
//
// Instructions: move, here and clear take a point name; jog takes an axis
// and a distance; speed (0-100) and gripforce (0-3) take a number; motors
// takes on or off; sleep takes a duration such as 500ms; repeat n opens a
// block closed by end. grip, release and home take no argument.
//
// A Runner only ever sees a Robot, the motion subset of the driver API.
package program
