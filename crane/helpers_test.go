package crane

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/arloliu/go-platecrane/logger"
	"github.com/arloliu/go-platecrane/transport"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 2 * time.Millisecond
)

// newTestConfig creates a Config with short timeouts suitable for tests.
func newTestConfig(t *testing.T, opts ...Option) (*Config, *logger.MockLogger) {
	t.Helper()

	lg := logger.NewMockLogger().AllowAll()
	defaults := []Option{
		WithReadTimeout(MinReadTimeout), // 10ms
		WithPollInterval(time.Millisecond),
		WithCloseTimeout(time.Second),
		WithLogger(lg),
	}

	cfg, err := NewConfig(append(defaults, opts...)...)
	require.NoError(t, err)

	return cfg, lg
}

// newTestDriver creates a Driver over a fresh simulator. The worker is not
// started.
func newTestDriver(t *testing.T, opts ...Option) (*Driver, *transport.Simulator, *logger.MockLogger) {
	t.Helper()

	sim := transport.NewSimulator()
	cfg, lg := newTestConfig(t, opts...)

	drv, err := NewDriver(context.Background(), sim, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = drv.Close() })

	return drv, sim, lg
}

// newStartedDriver is newTestDriver with the poll worker running.
func newStartedDriver(t *testing.T, opts ...Option) (*Driver, *transport.Simulator, *logger.MockLogger) {
	t.Helper()

	drv, sim, lg := newTestDriver(t, opts...)
	require.NoError(t, drv.Start())

	return drv, sim, lg
}

// commandWrites filters out the instructions issued by the poll duties.
func commandWrites(writes []string) []string {
	var out []string
	for _, w := range writes {
		if w == instrGetPos || w == instrListPoints || strings.HasPrefix(w, "READINP ") {
			continue
		}
		out = append(out, w)
	}

	return out
}

// scriptTransport replays canned lines. An empty string in the script, or
// an exhausted script, reads as a timeout.
type scriptTransport struct {
	mu     sync.Mutex
	script []string
	writes []string
	reads  int
	closed bool
}

var _ transport.Transport = (*scriptTransport)(nil)

func newScriptTransport(lines ...string) *scriptTransport {
	return &scriptTransport{script: lines}
}

func (s *scriptTransport) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, transport.ErrClosed
	}
	s.writes = append(s.writes, string(p))

	return len(p), nil
}

func (s *scriptTransport) Flush() error { return nil }

func (s *scriptTransport) ReadLine(_ time.Duration) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, transport.ErrClosed
	}
	s.reads++
	if len(s.script) == 0 {
		return []byte{}, nil
	}
	line := s.script[0]
	s.script = s.script[1:]

	return []byte(line), nil
}

func (s *scriptTransport) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	return nil
}

func (s *scriptTransport) push(lines ...string) {
	s.mu.Lock()
	s.script = append(s.script, lines...)
	s.mu.Unlock()
}

func (s *scriptTransport) readCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.reads
}

func (s *scriptTransport) written() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.writes...)
}

// newTestWorker wires a worker to tr without starting any goroutine, so
// tests can drive single duties.
func newTestWorker(t *testing.T, tr transport.Transport, opts ...Option) (*worker, *linkState) {
	t.Helper()

	cfg, lg := newTestConfig(t, opts...)
	st := newLinkState(cfg.fastChannel)

	return newWorker(context.Background(), tr, st, cfg, &Metrics{}, lg), st
}
