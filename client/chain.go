package client

import (
	"context"
	"fmt"
	"runtime/debug"
)

// chain is the per-request sequence of continuations: request
// interceptors, the transport step and response interceptors.
type chain struct {
	request   []Interceptor[*Config]
	transport func(ctx context.Context, cfg *Config) (*Response, error)
	response  []Interceptor[*Response]
}

// buildChain snapshots the registered interceptors around transport.
func (c *Client) buildChain(transport func(context.Context, *Config) (*Response, error)) chain {
	ch := chain{transport: transport}
	c.Interceptors.Request.ForEach(func(i Interceptor[*Config]) {
		ch.request = append(ch.request, i)
	})
	c.Interceptors.Response.ForEach(func(i Interceptor[*Response]) {
		ch.response = append(ch.response, i)
	})

	return ch
}

// run threads cfg through the chain. A failure in the request phase skips
// the transport step and enters the response phase on the error rail.
func (ch chain) run(ctx context.Context, cfg *Config) (*Response, error) {
	cfg, err := thread(ctx, cfg, nil, ch.request)

	var resp *Response
	if err == nil {
		if cfg == nil {
			err = ErrNilConfig
		} else {
			resp, err = guard(func() (*Response, error) {
				return ch.transport(ctx, cfg)
			})
		}
	}

	return thread(ctx, resp, err, ch.response)
}

// thread passes a value along the success rail and an error along the
// error rail. Missing handlers pass their input through unchanged.
func thread[T any](ctx context.Context, v T, err error, links []Interceptor[T]) (T, error) {
	for _, link := range links {
		switch {
		case err == nil && link.Fulfilled != nil:
			in := v
			v, err = guard(func() (T, error) {
				return link.Fulfilled(ctx, in)
			})
		case err != nil && link.Rejected != nil:
			in := err
			v, err = guard(func() (T, error) {
				return link.Rejected(ctx, in)
			})
		}
	}

	return v, err
}

// guard converts a panic in fn into an error.
func guard[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w [%v] TRACE[%s]", ErrHandlerPanic, rec, string(debug.Stack()))
		}
	}()

	return fn()
}
