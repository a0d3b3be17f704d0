// pgxnotify implements a resilient client for the LISTEN/NOTIFY feature of
// PostgreSQL on top of the beautiful `github.com/jackc/pgx` library.
//
// A Listener owns a single subscription connection and keeps it alive across
// connection loss. Every channel gets exactly one handler; queued
// notifications are delivered to it one at a time, either each of them in
// emission order (ListenPolicyAll) or coalesced down to the newest of a
// backlog (ListenPolicyLast). A channel that stays idle for longer than the
// notification timeout receives a synthetic Timeout event.
//
// Usage:
//
//	listener := pgxnotify.NewListener(
//		pgxnotify.Connect(os.Getenv("DATABASE_URL")),
//		pgxnotify.WithNotificationTimeout(time.Minute),
//	)
//
//	err := listener.Run(ctx, map[string]pgxnotify.Handler{
//		"my_channel": func(ctx context.Context, event pgxnotify.Event) error {
//			switch e := event.(type) {
//			case pgxnotify.Notification:
//				// process `e.Payload`
//			case pgxnotify.Timeout:
//				// nothing arrived for a while
//			}
//			return nil
//		},
//	})
//
// Run blocks until ctx is cancelled. Failed connects, lost connections and
// handler errors are logged and retried or skipped, never returned.
package pgxnotify
