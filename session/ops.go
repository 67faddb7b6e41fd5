package session

import "sync"

// opList is an unbounded FIFO of backend operations run by a single worker.
// The Run goroutine only appends to it and never waits for the worker.
type opList struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []func()
	closed  bool
}

func newOpList() *opList {
	l := &opList{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// push appends op. Operations pushed after close are dropped.
func (l *opList) push(op func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.pending = append(l.pending, op)
	l.cond.Signal()
}

// close lets run return once the pending operations are done.
func (l *opList) close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	l.cond.Broadcast()
}

func (l *opList) run() {
	for {
		l.mu.Lock()
		for len(l.pending) == 0 && !l.closed {
			l.cond.Wait()
		}
		if len(l.pending) == 0 {
			l.mu.Unlock()
			return
		}
		op := l.pending[0]
		l.pending[0] = nil
		l.pending = l.pending[1:]
		l.mu.Unlock()

		op()
	}
}
