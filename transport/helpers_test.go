package transport

import (
	"sync"
	"time"
)

// fakePort is a scripted serial port. Each Read returns the next chunk;
// an exhausted script reads as a timeout.
type fakePort struct {
	mu       sync.Mutex
	chunks   [][]byte
	written  []byte
	timeouts []time.Duration
	drained  int
	closed   bool
}

func newFakePort(chunks ...string) *fakePort {
	p := &fakePort{}
	for _, c := range chunks {
		p.chunks = append(p.chunks, []byte(c))
	}

	return p
}

func (p *fakePort) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.chunks) == 0 {
		return 0, nil
	}
	n := copy(b, p.chunks[0])
	if n < len(p.chunks[0]) {
		p.chunks[0] = p.chunks[0][n:]
	} else {
		p.chunks = p.chunks[1:]
	}

	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.written = append(p.written, b...)

	return len(b), nil
}

func (p *fakePort) Drain() error {
	p.mu.Lock()
	p.drained++
	p.mu.Unlock()

	return nil
}

func (p *fakePort) SetReadTimeout(t time.Duration) error {
	p.mu.Lock()
	p.timeouts = append(p.timeouts, t)
	p.mu.Unlock()

	return nil
}

func (p *fakePort) ResetInputBuffer() error { return nil }

func (p *fakePort) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	return nil
}
