package pgxnotify

import (
	"context"
	"errors"
)

// Handler processes the events of a single channel. Invocations for one
// channel never overlap. A non-nil error is logged together with the
// triggering event and does not affect subsequent deliveries.
type Handler func(ctx context.Context, event Event) error

// FanoutHandler delivers every event to each of handlers, in order. Errors
// are joined rather than short-circuiting: a failing handler does not keep
// the rest from seeing the event.
func FanoutHandler(handlers ...Handler) Handler {
	return func(ctx context.Context, event Event) error {
		var errs []error
		for _, handler := range handlers {
			if err := handler(ctx, event); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
