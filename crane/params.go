package crane

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"
)

// InstructionSource supplies a list of raw instructions to replay, one per
// element, without line terminators.
type InstructionSource interface {
	Instructions() ([]string, error)
}

// InstructionFile reads instructions from a file with one instruction per
// line. Carriage returns are trimmed and blank lines ignored.
type InstructionFile string

// Instructions implements InstructionSource.
func (f InstructionFile) Instructions() ([]string, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, fmt.Errorf("crane: read instructions: %w", err)
	}

	var out []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("crane: read instructions %s: %w", string(f), err)
	}

	return out, nil
}

// InstructionList is an in-memory InstructionSource. Empty entries are skipped.
type InstructionList []string

// Instructions implements InstructionSource.
func (l InstructionList) Instructions() ([]string, error) {
	out := make([]string, 0, len(l))
	for _, s := range l {
		if s != "" {
			out = append(out, s)
		}
	}

	return out, nil
}
