package pgxnotify

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Connect returns a ConnectFunc that dials PostgreSQL with the given
// connection string.
func Connect(connString string) ConnectFunc {
	return func(ctx context.Context) (Connection, error) {
		config, err := pgx.ParseConfig(connString)
		if err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		return connectConfig(ctx, config)
	}
}

// ConnectConfig is like Connect but starts from a prepared connection
// config, for callers that need TLS, custom auth or a tracer. The config is
// copied on every attempt; its OnNotification hook is reserved for the
// listener.
func ConnectConfig(config *pgx.ConnConfig) ConnectFunc {
	return func(ctx context.Context) (Connection, error) {
		return connectConfig(ctx, config.Copy())
	}
}

func connectConfig(ctx context.Context, config *pgx.ConnConfig) (Connection, error) {
	c := &pgxConnection{
		push: make(map[string]func(payload string)),
	}
	config.OnNotification = c.notified

	conn, err := pgx.ConnectConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	c.conn = conn

	return c, nil
}

// pgxConnection adapts a dedicated *pgx.Conn to the Connection capability.
// Notifications are read off the socket whenever the connection does IO,
// which happens at least once per keepalive round.
type pgxConnection struct {
	conn *pgx.Conn
	mu   sync.Mutex
	push map[string]func(payload string)
}

func (c *pgxConnection) Subscribe(
	ctx context.Context, channel string, push func(payload string),
) error {
	c.mu.Lock()
	c.push[channel] = push
	c.mu.Unlock()

	if _, err := c.conn.Exec(
		ctx, `LISTEN `+pgx.Identifier{channel}.Sanitize(),
	); err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	return nil
}

func (c *pgxConnection) Keepalive(ctx context.Context) error {
	_, err := c.conn.Exec(ctx, `select 1`)
	return err
}

func (c *pgxConnection) IsClosed() bool {
	return c.conn.IsClosed()
}

func (c *pgxConnection) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

func (c *pgxConnection) notified(_ *pgconn.PgConn, n *pgconn.Notification) {
	c.mu.Lock()
	push := c.push[n.Channel]
	c.mu.Unlock()

	if push != nil {
		push(n.Payload)
	}
}
