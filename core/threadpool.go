package core

import (
	"errors"
	"sync"

	"github.com/eapache/queue"
)

// ErrPoolClosed is returned by Submit once the pool has been closed.
var ErrPoolClosed = errors.New("threadpool: submit after stop")

// minWorkers is the floor on the actual worker count, regardless of the
// requested size.
const minWorkers = 2

// ThreadPool is a fixed worker pool executing queued closures. Workers
// share one task queue (an eapache/queue.Queue ring) and one condition
// variable; workers block on the condvar when idle rather than busy-polling.
type ThreadPool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	tasks   *queue.Queue
	stopped bool
	wg      sync.WaitGroup
	size    int
}

// NewThreadPool starts max(requested, 2) worker goroutines.
func NewThreadPool(requested int) *ThreadPool {
	count := requested
	if count < minWorkers {
		count = minWorkers
	}
	tp := &ThreadPool{tasks: queue.New(), size: count}
	tp.cond = sync.NewCond(&tp.mu)

	tp.wg.Add(count)
	for i := 0; i < count; i++ {
		go tp.worker()
	}
	return tp
}

func (tp *ThreadPool) worker() {
	defer tp.wg.Done()
	for {
		tp.mu.Lock()
		for tp.tasks.Length() == 0 && !tp.stopped {
			tp.cond.Wait()
		}
		if tp.stopped {
			tp.mu.Unlock()
			return
		}
		task := tp.tasks.Remove().(func())
		tp.mu.Unlock()

		task()
	}
}

// Future is the value-carrying handle Submit returns: Wait blocks until the
// submitted task has run and yields whatever it returned.
type Future struct {
	done   chan struct{}
	result any
}

// Wait blocks until the task completes and returns its result.
func (f *Future) Wait() any {
	<-f.done
	return f.result
}

// Done returns the channel closed once the task completes, for callers that
// want to select on completion without blocking.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Submit wraps fn into a queued task and returns a Future that yields fn's
// result once it has run. Submission after Close returns ErrPoolClosed.
func (tp *ThreadPool) Submit(fn func() any) (*Future, error) {
	future := &Future{done: make(chan struct{})}

	tp.mu.Lock()
	if tp.stopped {
		tp.mu.Unlock()
		return nil, ErrPoolClosed
	}
	tp.tasks.Add(func() {
		defer close(future.done)
		future.result = fn()
	})
	tp.mu.Unlock()
	tp.cond.Signal()

	return future, nil
}

// Close stops the pool and joins all workers. In-progress tasks complete;
// any tasks still queued are discarded.
func (tp *ThreadPool) Close() {
	tp.mu.Lock()
	tp.stopped = true
	tp.mu.Unlock()
	tp.cond.Broadcast()
	tp.wg.Wait()
}

// Size reports the number of worker goroutines.
func (tp *ThreadPool) Size() int {
	return tp.size
}
