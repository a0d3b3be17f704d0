package pgxnotify

import (
	"context"
	"fmt"
	"time"
)

// dispatcher drains one channel's queue and feeds its handler. Handler
// calls never overlap; a failing handler never stops the loop.
type dispatcher struct {
	channel string
	queue   *queue
	handler Handler
	policy  ListenPolicy
	timeout time.Duration
	logf    func(format string, v ...any)
}

func (d *dispatcher) run(ctx context.Context) error {
	for {
		event, err := d.next(ctx)
		if err != nil {
			return err
		}
		if err := d.invoke(ctx, event); err != nil {
			d.logf("handle %s: %v", event, err)
		}
	}
}

// next resolves the item for one iteration: the oldest queued notification
// under ALL, the newest of the whole backlog under LAST, or the result of
// waiting on an empty queue.
func (d *dispatcher) next(ctx context.Context) (Event, error) {
	n, ok := d.queue.pop()
	if !ok {
		return d.wait(ctx)
	}

	if d.policy == ListenPolicyLast {
		for {
			m, ok := d.queue.pop()
			if !ok {
				break
			}
			n = m
		}
	}

	return n, nil
}

// wait blocks until a notification is pushed, synthesizing a Timeout if
// none arrives within the notification timeout. Wake signals coalesce, so a
// receive does not guarantee a non-empty queue; the timer deliberately
// spans such spurious wakes to measure a single idle window.
func (d *dispatcher) wait(ctx context.Context) (Event, error) {
	var expired <-chan time.Time
	if d.timeout != NoTimeout {
		timer := time.NewTimer(d.timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-expired:
			return Timeout{Channel: d.channel}, nil
		case <-d.queue.woken():
			if n, ok := d.queue.pop(); ok {
				return n, nil
			}
		}
	}
}

// invoke runs the handler in a fresh goroutine so that no state set up by
// one invocation leaks into the next, and waits for it to finish. A panic
// is contained and reported as an error.
func (d *dispatcher) invoke(ctx context.Context, event Event) error {
	var err error
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("handler panicked: %v", r)
			}
		}()
		err = d.handler(ctx, event)
	}()

	<-done
	return err
}
