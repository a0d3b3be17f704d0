package pgxnotify

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Listener maintains a live subscription across transient connection loss
// and fans incoming notifications out to per-channel handlers.
//
// See also:
//   - https://www.postgresql.org/docs/current/sql-listen.html
//   - https://www.postgresql.org/docs/current/sql-notify.html
type Listener struct {
	connect             ConnectFunc
	logger              logger
	reconnectDelay      time.Duration
	policy              ListenPolicy
	notificationTimeout time.Duration
}

// NewListener creates a Listener that uses connect to establish its
// subscription connection.
func NewListener(connect ConnectFunc, opts ...listenerOption) *Listener {
	config := newListenerConfig(opts...)

	return &Listener{
		connect:             connect,
		logger:              config.logger,
		reconnectDelay:      config.reconnectDelay,
		policy:              config.policy,
		notificationTimeout: config.notificationTimeout,
	}
}

// Run subscribes to every channel in handlers and dispatches its
// notifications to the corresponding handler until ctx is cancelled.
//
// One queue per channel is created up front and lives for the whole run, so
// notifications enqueued before a connection loss are still delivered after
// it. Recoverable failures -- failed connects, lost connections, handler
// errors -- are logged and dealt with internally, never returned; Run
// returns only on cancellation or an internal invariant breaking.
func (l *Listener) Run(ctx context.Context, handlers map[string]Handler) error {
	queues := make(map[string]*queue, len(handlers))
	for channel := range handlers {
		queues[channel] = newQueue()
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s := &supervisor{
			connect:        l.connect,
			queues:         queues,
			checkInterval:  checkInterval(l.notificationTimeout),
			reconnectDelay: l.reconnectDelay,
			logf:           l.logf,
			wake:           make(chan struct{}, 1),
		}
		return s.run(ctx)
	})

	for channel, handler := range handlers {
		d := &dispatcher{
			channel: channel,
			queue:   queues[channel],
			handler: handler,
			policy:  l.policy,
			timeout: l.notificationTimeout,
			logf:    l.logf,
		}
		g.Go(func() error {
			return d.run(ctx)
		})
	}

	return g.Wait()
}

// checkInterval derives the keepalive cadence from the notification
// timeout: a third of it, floored at one second.
func checkInterval(notificationTimeout time.Duration) time.Duration {
	if interval := notificationTimeout / 3; interval > time.Second {
		return interval
	}
	return time.Second
}

func (l *Listener) logf(format string, v ...any) {
	l.logger.Printf("pgxnotify: "+format, v...)
}
