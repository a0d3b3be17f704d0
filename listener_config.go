package pgxnotify

import "time"

type listenerConfig struct {
	logger              logger
	reconnectDelay      time.Duration
	policy              ListenPolicy
	notificationTimeout time.Duration
}

func newListenerConfig(opts ...listenerOption) listenerConfig {
	c := listenerConfig{
		logger:              noopLogger{},
		reconnectDelay:      5 * time.Second,
		policy:              ListenPolicyAll,
		notificationTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

type listenerOption func(*listenerConfig)

func WithLogger(l logger) listenerOption {
	return func(c *listenerConfig) {
		c.logger = l
	}
}

// WithReconnectDelay sets the unit of the linear backoff between failed
// connect attempts: after n consecutive failures the listener sleeps
// n*delay before retrying.
func WithReconnectDelay(delay time.Duration) listenerOption {
	return func(c *listenerConfig) {
		c.reconnectDelay = delay
	}
}

func WithListenPolicy(policy ListenPolicy) listenerOption {
	return func(c *listenerConfig) {
		c.policy = policy
	}
}

// WithNotificationTimeout sets how long a channel may stay idle before its
// handler receives a synthetic Timeout event. Pass NoTimeout to disable
// synthesis entirely.
func WithNotificationTimeout(timeout time.Duration) listenerOption {
	return func(c *listenerConfig) {
		c.notificationTimeout = timeout
	}
}
