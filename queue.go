package pgxnotify

import "sync"

// queue is the unbounded FIFO shared by the supervisor (producer) and a
// single dispatcher (consumer). push never blocks and never drops; the
// backlog growing without bound while a handler lags is a deliberate
// tradeoff.
type queue struct {
	mu    sync.Mutex
	items []Notification
	wake  chan struct{}
}

func newQueue() *queue {
	return &queue{wake: make(chan struct{}, 1)}
}

func (q *queue) push(n Notification) {
	q.mu.Lock()
	q.items = append(q.items, n)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *queue) pop() (Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return Notification{}, false
	}
	n := q.items[0]
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return n, true
}

// woken returns a channel that receives after a push. Signals coalesce: one
// receive may cover several pushes, and a stale signal may remain after the
// queue has been drained, so a receive does not guarantee a non-empty queue.
func (q *queue) woken() <-chan struct{} {
	return q.wake
}
