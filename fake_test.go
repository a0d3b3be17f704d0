package pgxnotify_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rnovatorov/pgxnotify"
)

// fakeDriver hands out in-memory connections and lets tests fail connect
// attempts, emit notifications and kill connections at will.
type fakeDriver struct {
	mu         sync.Mutex
	conns      []*fakeConnection
	attempts   int
	connectErr error
	failFirst  int
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{}
}

func (d *fakeDriver) connect(ctx context.Context) (pgxnotify.Connection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.attempts++
	if d.connectErr != nil && (d.failFirst == 0 || d.attempts <= d.failFirst) {
		return nil, d.connectErr
	}

	conn := &fakeConnection{push: make(map[string]func(string))}
	d.conns = append(d.conns, conn)
	return conn, nil
}

func (d *fakeDriver) failConnect(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connectErr = err
}

func (d *fakeDriver) failFirstConnects(n int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connectErr = err
	d.failFirst = n
}

func (d *fakeDriver) connectAttempts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attempts
}

// waitConn blocks until the i-th connection has been established.
func (d *fakeDriver) waitConn(t *testing.T, i int) *fakeConnection {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		d.mu.Lock()
		if len(d.conns) > i {
			conn := d.conns[i]
			d.mu.Unlock()
			return conn
		}
		d.mu.Unlock()
		time.Sleep(time.Millisecond)
	}

	t.Fatalf("connection %d was never established", i)
	return nil
}

type fakeConnection struct {
	mu           sync.Mutex
	push         map[string]func(string)
	closed       bool
	closeCount   int
	keepaliveErr error
}

func (c *fakeConnection) Subscribe(
	ctx context.Context, channel string, push func(payload string),
) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.push[channel] = push
	return nil
}

func (c *fakeConnection) Keepalive(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keepaliveErr
}

func (c *fakeConnection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConnection) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeCount++
	c.closed = true
	return nil
}

// notify emits a server notification, waiting for the channel's
// subscription to exist first.
func (c *fakeConnection) notify(t *testing.T, channel, payload string) {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		push := c.push[channel]
		c.mu.Unlock()

		if push != nil {
			push(payload)
			return
		}
		time.Sleep(time.Millisecond)
	}

	t.Fatalf("channel %q was never subscribed to", channel)
}

// lose simulates the server side dropping the connection.
func (c *fakeConnection) lose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConnection) failKeepalive(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keepaliveErr = err
}

func (c *fakeConnection) closes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeCount
}

// recorder collects the events a handler receives. The event is recorded at
// invocation start; delay then keeps the handler busy so that backlogs can
// build up behind it.
type recorder struct {
	mu     sync.Mutex
	list   []pgxnotify.Event
	delay  time.Duration
	fail   map[string]error
	panics map[string]bool
}

func newRecorder(delay time.Duration) *recorder {
	return &recorder{
		delay:  delay,
		fail:   make(map[string]error),
		panics: make(map[string]bool),
	}
}

func (r *recorder) handle(ctx context.Context, event pgxnotify.Event) error {
	r.mu.Lock()
	r.list = append(r.list, event)
	r.mu.Unlock()

	if r.delay > 0 {
		time.Sleep(r.delay)
	}

	if n, ok := event.(pgxnotify.Notification); ok {
		if r.panics[n.Payload] {
			panic(n.Payload)
		}
		if err := r.fail[n.Payload]; err != nil {
			return err
		}
	}
	return nil
}

func (r *recorder) events() []pgxnotify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]pgxnotify.Event(nil), r.list...)
}

type memoryLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *memoryLogger) Printf(format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func (l *memoryLogger) contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
