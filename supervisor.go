package pgxnotify

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const closeTimeout = 5 * time.Second

// supervisor owns the subscription connection. It connects, subscribes to
// every channel, probes liveness on a fixed cadence, and on any failure
// tears the connection down and reconnects with a linearly growing delay.
// Only cancellation stops it.
type supervisor struct {
	connect        ConnectFunc
	queues         map[string]*queue
	checkInterval  time.Duration
	reconnectDelay time.Duration
	logf           func(format string, v ...any)

	wake           chan struct{}
	failedAttempts int
}

func (s *supervisor) run(ctx context.Context) error {
	for {
		err := s.serve(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logf("connection lost or not established: %v", err)

		// The first retry after a fresh failure is immediate; the delay
		// grows linearly with consecutive failures.
		delay := s.reconnectDelay * time.Duration(s.failedAttempts)
		s.failedAttempts++

		if delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
}

// serve holds one connection from birth to abandonment. Closing is deferred
// so it runs on every exit path, cancellation included.
func (s *supervisor) serve(ctx context.Context) error {
	conn, err := s.connect(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer s.close(conn)

	s.failedAttempts = 0

	for channel, q := range s.queues {
		if err := s.subscribe(ctx, conn, channel, q); err != nil {
			return fmt.Errorf("subscribe %q: %w", channel, err)
		}
	}

	return s.keepalive(ctx, conn)
}

func (s *supervisor) subscribe(
	ctx context.Context, conn Connection, channel string, q *queue,
) error {
	return conn.Subscribe(ctx, channel, func(payload string) {
		q.push(Notification{Channel: channel, Payload: payload})

		select {
		case s.wake <- struct{}{}:
		default:
		}
	})
}

// keepalive probes the connection once per check interval. A round during
// which a notification arrived skips its probe: traffic is proof of
// liveness.
func (s *supervisor) keepalive(ctx context.Context, conn Connection) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.checkInterval):
		}

		if conn.IsClosed() {
			return errors.New("connection closed")
		}

		select {
		case <-s.wake:
			continue
		default:
		}

		probeCtx, cancel := context.WithTimeout(ctx, s.checkInterval)
		err := conn.Keepalive(probeCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("keepalive: %w", err)
		}
	}
}

// close must complete even when the surrounding operation was cancelled, so
// it runs under its own context. Close errors are swallowed: the connection
// is being abandoned either way.
func (s *supervisor) close(conn Connection) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	_ = conn.Close(ctx)
}
