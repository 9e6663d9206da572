// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
//
// Every operation returns either nil or a *Error whose Kind tells the caller
// how to report it.
package service

import (
	"log/slog"
	"time"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	reportTopN      = 10
	day             = 24 * time.Hour
)

// Option configures the shared dependencies of a service.
type Option func(*options)

type options struct {
	now    func() time.Time
	logger *slog.Logger
}

// WithClock replaces time.Now. Tests use it to move time forward.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger used for audit events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// utcNow truncates to microseconds so values round-trip through Postgres
// timestamptz unchanged.
func (o options) utcNow() time.Time {
	return o.now().UTC().Truncate(time.Microsecond)
}
