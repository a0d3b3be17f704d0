package pgxnotify

import (
	"fmt"
	"time"
)

// ListenPolicy controls how a channel's backlog is delivered to its handler.
type ListenPolicy string

const (
	// ListenPolicyAll delivers every queued notification individually, in
	// the order the server emitted them.
	ListenPolicyAll ListenPolicy = "ALL"

	// ListenPolicyLast coalesces a backlog down to its most recent
	// notification; the rest is discarded undelivered.
	ListenPolicyLast ListenPolicy = "LAST"
)

// NoTimeout disables idle timeout synthesis when passed to
// WithNotificationTimeout.
const NoTimeout time.Duration = -1

// Event is either a Notification or a Timeout. No other type implements it.
type Event interface {
	event()
}

// Notification is a message emitted by the server on a channel. An empty
// payload is a valid value: `NOTIFY my_channel` without arguments produces
// one.
type Notification struct {
	Channel string
	Payload string
}

func (Notification) event() {}

func (n Notification) String() string {
	return fmt.Sprintf("notification %q: %q", n.Channel, n.Payload)
}

// Timeout is synthesized locally when a channel stays idle for longer than
// the notification timeout. It is never queued: an idle window produces one.
type Timeout struct {
	Channel string
}

func (Timeout) event() {}

func (t Timeout) String() string {
	return fmt.Sprintf("timeout %q", t.Channel)
}
