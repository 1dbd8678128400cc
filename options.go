// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fern/blob/master/LICENSE.txt.

package fern

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a [Tree], a [Table] or a [Router]. Options that do not apply to the
// structure being built are validated and ignored.
type Option interface {
	apply(*config) error
}

type optionFunc func(*config) error

func (o optionFunc) apply(c *config) error {
	return o(c)
}

type config struct {
	logger     *slog.Logger
	registerer prometheus.Registerer
	notFound   http.Handler
	delims     string
	mws        []MiddlewareFunc
	strictCase bool
}

func newConfig(opts ...Option) (*config, error) {
	cfg := &config{
		logger:   slog.New(slog.DiscardHandler),
		notFound: http.NotFoundHandler(),
		delims:   defaultDelims,
	}
	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// WithParamDelimiter adds delim to the bytes terminating a parameter. A parameter always stops at '/'. For example,
// with WithParamDelimiter('.'), the pattern /files/:id.json matches /files/42.json and captures id=42. Without it,
// the parameter name would be "id.json". The delimiter must be an ASCII character other than ':'.
func WithParamDelimiter(delim byte) Option {
	return optionFunc(func(c *config) error {
		if delim == paramDelim || delim >= utf8.RuneSelf {
			return fmt.Errorf("%w: invalid parameter delimiter %q", ErrInvalidConfig, delim)
		}
		if strings.IndexByte(c.delims, delim) < 0 {
			c.delims += string(delim)
		}
		return nil
	})
}

// WithStrictCase disables the case normalization applied by [Table.Resolve]. By default, the literal part of the
// request path is matched ASCII case-insensitively against patterns, which must therefore be registered in lower case.
func WithStrictCase() Option {
	return optionFunc(func(c *config) error {
		c.strictCase = true
		return nil
	})
}

// WithLogger sets the handler used to report registration diagnostics, such as a pattern which can never match
// or the router being frozen. By default, nothing is logged.
func WithLogger(handler slog.Handler) Option {
	return optionFunc(func(c *config) error {
		if handler == nil {
			return fmt.Errorf("%w: log handler cannot be nil", ErrInvalidConfig)
		}
		c.logger = slog.New(handler)
		return nil
	})
}

// WithMetrics registers the router request collectors on reg. Series are labeled by route pattern,
// never by raw request path.
func WithMetrics(reg prometheus.Registerer) Option {
	return optionFunc(func(c *config) error {
		if reg == nil {
			return fmt.Errorf("%w: prometheus registerer cannot be nil", ErrInvalidConfig)
		}
		c.registerer = reg
		return nil
	})
}

// WithNotFoundHandler register an http.Handler which is called by [Router.ServeHTTP] when no matching route is found.
// By default, http.NotFound is used.
func WithNotFoundHandler(handler http.Handler) Option {
	return optionFunc(func(c *config) error {
		if handler == nil {
			return fmt.Errorf("%w: not found handler cannot be nil", ErrInvalidConfig)
		}
		c.notFound = handler
		return nil
	})
}

// WithMiddleware attaches middleware to every route of the router. Middleware are applied in the
// order provided, the first one being the outermost.
func WithMiddleware(m ...MiddlewareFunc) Option {
	return optionFunc(func(c *config) error {
		for i := range m {
			if m[i] == nil {
				return fmt.Errorf("%w: middleware cannot be nil", ErrInvalidConfig)
			}
		}
		c.mws = append(c.mws, m...)
		return nil
	})
}
