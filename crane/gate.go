package crane

import "sync"

// gate arbitrates a poll duty between the worker and callers that want the
// duty suspended.
//
// The worker enters with tryEnter and never blocks. suspend waits for an
// in-flight duty to finish, then keeps the duty skipped until the matching
// resume. Suspensions nest.
type gate struct {
	busy sync.Mutex

	mu    sync.Mutex
	holds int
}

func (g *gate) tryEnter() bool {
	if !g.busy.TryLock() {
		return false
	}

	g.mu.Lock()
	held := g.holds > 0
	g.mu.Unlock()

	if held {
		g.busy.Unlock()
		return false
	}

	return true
}

func (g *gate) leave() {
	g.busy.Unlock()
}

func (g *gate) suspend() {
	g.busy.Lock()
	g.mu.Lock()
	g.holds++
	g.mu.Unlock()
	g.busy.Unlock()
}

func (g *gate) resume() {
	g.mu.Lock()
	if g.holds > 0 {
		g.holds--
	}
	g.mu.Unlock()
}

func (g *gate) suspended() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.holds > 0
}
