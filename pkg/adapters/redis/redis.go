package redis

import (
	"time"

	backend "github.com/redis/go-redis/v9"
)

// Default keys used by the adapters.
const (
	DefaultFlowKey      = "kiteflow:flow"
	DefaultConfigKey    = "kiteflow:config"
	DefaultQueueKey     = "kiteflow:events"
	DefaultResponseKey  = "kiteflow:responses"
	DefaultLockPrefix   = "kiteflow:"
	defaultBlockTimeout = time.Second
)

// Adapter bundles the redis backed ports over one client.
type Adapter struct {
	client *backend.Client

	flowKey     string
	configKey   string
	queueKey    string
	responseKey string
	block       time.Duration
	drain       bool
}

// Option configures the Adapter. Key options given an empty key keep the default.
type Option func(*Adapter)

// WithFlowKey sets the key holding the graph source document.
func WithFlowKey(key string) Option {
	return func(a *Adapter) {
		if key != "" {
			a.flowKey = key
		}
	}
}

// WithConfigKey sets the hash key holding the plugin configuration.
func WithConfigKey(key string) Option {
	return func(a *Adapter) {
		if key != "" {
			a.configKey = key
		}
	}
}

// WithQueueKey sets the list key events are consumed from.
func WithQueueKey(key string) Option {
	return func(a *Adapter) {
		if key != "" {
			a.queueKey = key
		}
	}
}

// WithResponseKey sets the list key responses are appended to.
func WithResponseKey(key string) Option {
	return func(a *Adapter) {
		if key != "" {
			a.responseKey = key
		}
	}
}

// WithBlockTimeout sets how long a single BLPOP waits before retrying.
// The server resolution is one second; shorter values are rounded up.
func WithBlockTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		a.block = d
	}
}

// WithDrain makes Next return io.EOF on an empty queue instead of blocking.
func WithDrain(drain bool) Option {
	return func(a *Adapter) {
		a.drain = drain
	}
}

// New creates an Adapter with its own client.
func New(address, password string, db int, opts ...Option) *Adapter {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,

		ContextTimeoutEnabled: true,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates an Adapter from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Adapter {
	a := &Adapter{
		client:      client,
		flowKey:     DefaultFlowKey,
		configKey:   DefaultConfigKey,
		queueKey:    DefaultQueueKey,
		responseKey: DefaultResponseKey,
		block:       defaultBlockTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Client returns the underlying client.
func (a *Adapter) Client() *backend.Client {
	return a.client
}

// Close releases the client.
func (a *Adapter) Close() error {
	return a.client.Close()
}
