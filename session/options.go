package session

import (
	"time"

	"github.com/hashicorp/go-hclog"
)

// Option defines a common functional options type
type Option func(interface{})

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		o(opts)
	}
}

// options is the set of available options for the package's functions
type options struct {
	withLogger      hclog.Logger
	withKeyPrefix   string
	withOpenTimeout time.Duration
}

func getDefaultOptions() options {
	return options{
		withLogger:      hclog.NewNullLogger(),
		withKeyPrefix:   DefaultRedisKeyPrefix,
		withOpenTimeout: DefaultOpenTimeout,
	}
}

func getOpts(opt ...Option) options {
	opts := getDefaultOptions()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithLogger provides an optional logger for the Manager.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*options); ok && l != nil {
			o.withLogger = l
		}
	}
}

// WithKeyPrefix provides an optional key prefix for a RedisStorage.
func WithKeyPrefix(p string) Option {
	return func(o interface{}) {
		if o, ok := o.(*options); ok {
			o.withKeyPrefix = p
		}
	}
}

// WithOpenTimeout provides an optional timeout for a FileStorage waiting on
// another process that holds the database open.
func WithOpenTimeout(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*options); ok && d > 0 {
			o.withOpenTimeout = d
		}
	}
}
