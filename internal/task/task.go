// Package task manages the lifecycle of long-running goroutines.
package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arloliu/go-platecrane/logger"
)

// startTimeout bounds how long Start waits for a goroutine to report that it runs.
const startTimeout = 5 * time.Second

// ErrStopped is returned by Start after Stop has been called and before Wait
// has re-armed the manager.
var ErrStopped = errors.New("task manager already stopped")

// Func is one iteration of a task loop. It returns false to end the loop.
type Func func() bool

// Manager starts named goroutines that run a Func in a loop until the Func
// returns false, the goroutine panics, or Stop is called.
//
//	mgr := task.NewManager(ctx, log)
//	_ = mgr.Start("pollWorker", func() bool {
//	    // one cycle
//	    return true
//	})
//	...
//	mgr.Stop()
//	mgr.Wait()
type Manager struct {
	pctx   context.Context
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger logger.Logger
	count  atomic.Int32
	names  sync.Map     // running task names
	mu     sync.RWMutex // protects ctx and cancel
	taskMu sync.RWMutex // protects task creation during Wait()
}

// NewManager creates a Manager whose tasks are cancelled with ctx.
func NewManager(ctx context.Context, l logger.Logger) *Manager {
	mgr := &Manager{pctx: ctx, logger: l}
	mgr.ctx, mgr.cancel = context.WithCancel(ctx)

	return mgr
}

// Context returns the context tasks should watch in blocking calls.
func (mgr *Manager) Context() context.Context {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()

	return mgr.ctx
}

// Start runs fn in a loop on a new goroutine named name.
//
// It returns once the goroutine is running. Starting a name that is still
// running is an error.
func (mgr *Manager) Start(name string, fn Func) error {
	ctx := mgr.Context()
	select {
	case <-ctx.Done():
		return ErrStopped
	default:
	}

	if _, loaded := mgr.names.LoadOrStore(name, struct{}{}); loaded {
		return fmt.Errorf("task %s already running", name)
	}

	mgr.logger.Debug("start task", "name", name)

	started := make(chan struct{})

	mgr.taskMu.RLock()
	mgr.wg.Add(1)
	mgr.count.Add(1)
	go func() {
		defer mgr.wg.Done()
		defer func() {
			mgr.names.Delete(name)
			mgr.count.Add(-1)
			mgr.logger.Debug("task terminated", "name", name, "task_count", mgr.Count())
		}()

		close(started)
		mgr.runLoop(ctx, name, fn)
	}()
	mgr.taskMu.RUnlock()

	select {
	case <-started:
		return nil
	case <-time.After(startTimeout):
		return fmt.Errorf("timeout waiting for %s to start", name)
	}
}

// Running reports whether a task with the given name is running.
func (mgr *Manager) Running(name string) bool {
	_, ok := mgr.names.Load(name)
	return ok
}

// Count returns the number of running goroutines.
func (mgr *Manager) Count() int {
	return int(mgr.count.Load())
}

// Stop signals all running goroutines to end.
func (mgr *Manager) Stop() {
	mgr.mu.Lock()
	if mgr.cancel != nil {
		mgr.cancel()
	}
	mgr.mu.Unlock()
}

// Wait blocks until every goroutine has ended, then re-arms the manager so
// new tasks can be started.
func (mgr *Manager) Wait() {
	mgr.taskMu.Lock()
	defer mgr.taskMu.Unlock()

	mgr.wg.Wait()

	mgr.mu.Lock()
	mgr.ctx, mgr.cancel = context.WithCancel(mgr.pctx)
	mgr.mu.Unlock()
}

func (mgr *Manager) runLoop(ctx context.Context, name string, fn Func) {
	defer func() {
		if r := recover(); r != nil {
			mgr.logger.Error("panic in task loop", "name", name, "panic", r)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			if !fn() {
				return
			}
		}
	}
}
