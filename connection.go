package pgxnotify

import "context"

// ConnectFunc establishes a connection to the backing store. The listener
// calls it once per (re)connect attempt.
type ConnectFunc func(ctx context.Context) (Connection, error)

// Connection is the capability the listener needs from a driver. Connect and
// ConnectConfig provide the pgx implementation; tests may substitute their
// own.
//
// The listener uses a Connection from a single goroutine.
type Connection interface {
	// Subscribe starts delivery of the channel's notifications to push.
	// push must not block.
	Subscribe(ctx context.Context, channel string, push func(payload string)) error

	// Keepalive probes the connection for liveness. The probe budget is
	// carried by ctx.
	Keepalive(ctx context.Context) error

	// IsClosed reports whether the connection is known to be dead.
	IsClosed() bool

	// Close terminates the connection. Idempotent, best-effort.
	Close(ctx context.Context) error
}
