package soundflow

import (
	"log/slog"
	"time"

	"github.com/soundflow/soundflow-go/proto"
)

type options struct {
	id                string
	logger            *slog.Logger
	requestTimeout    time.Duration
	packageSize       int
	queueCapacity     int
	broadcastCapacity int
	pollInterval      time.Duration
}

type Option func(opts *options)

func newOptions(opts ...Option) *options {
	o := &options{}
	withDefaults()(o)
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func withDefaults() Option {
	return withOptions(
		WithLogger(slog.Default()),
		WithID(proto.ID()),
		WithRequestTimeout(5*time.Second),
		WithPackageSize(DefaultPackageSize),
		WithQueueCapacity(DefaultQueueCapacity),
		WithBroadcastCapacity(DefaultBroadcastCapacity),
		WithPollInterval(DefaultPollInterval),
	)
}

func withOptions(os ...Option) Option {
	return func(opts *options) {
		for _, o := range os {
			o(opts)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

func WithID(id string) Option {
	return func(opts *options) {
		opts.id = id
	}
}

func WithRequestTimeout(timeout time.Duration) Option {
	return func(opts *options) {
		opts.requestTimeout = timeout
	}
}

// WithPackageSize sets the maximum samples per packet.
func WithPackageSize(n int) Option {
	return func(opts *options) {
		opts.packageSize = n
	}
}

// WithQueueCapacity sets the relay queue capacity, i.e. the threshold at
// which backpressure turns into packet drops.
func WithQueueCapacity(n int) Option {
	return func(opts *options) {
		opts.queueCapacity = n
	}
}

// WithBroadcastCapacity sets the per-subscriber delivery queue size.
func WithBroadcastCapacity(n int) Option {
	return func(opts *options) {
		opts.broadcastCapacity = n
	}
}

// WithPollInterval tunes the broadcaster latency/CPU trade-off.
func WithPollInterval(d time.Duration) Option {
	return func(opts *options) {
		opts.pollInterval = d
	}
}
