// Package courier exposes a process-wide default client and package-level
// helpers delegating to it.
package courier

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/adamwoolhether/courier/client"
)

var std = mustBuild()

func mustBuild() *client.Client {
	c, err := client.Build()
	if err != nil {
		panic(err)
	}

	return c
}

// Default returns the client used by the package-level functions. Its
// interceptor registries may be used to intercept those requests.
func Default() *client.Client {
	return std
}

// Create instantiates a new *client.Client with the provided options.
// Use client.WithConfig to layer instance defaults over the package defaults.
func Create(opts ...client.Option) (*client.Client, error) {
	return client.Build(opts...)
}

// Request dispatches cfg with the default client.
func Request(ctx context.Context, cfg *client.Config) (*client.Response, error) {
	return std.Request(ctx, cfg)
}

// RequestURL dispatches a request for rawURL with the default client.
func RequestURL(ctx context.Context, rawURL string, cfg *client.Config) (*client.Response, error) {
	return std.RequestURL(ctx, rawURL, cfg)
}

// GetURI builds the URL cfg would be sent to by the default client.
func GetURI(cfg *client.Config) (string, error) {
	return std.GetURI(cfg)
}

// Get dispatches a GET request for rawURL with the default client.
func Get(ctx context.Context, rawURL string, cfg *client.Config) (*client.Response, error) {
	return std.Get(ctx, rawURL, cfg)
}

// Delete dispatches a DELETE request for rawURL with the default client.
func Delete(ctx context.Context, rawURL string, cfg *client.Config) (*client.Response, error) {
	return std.Delete(ctx, rawURL, cfg)
}

// Head dispatches a HEAD request for rawURL with the default client.
func Head(ctx context.Context, rawURL string, cfg *client.Config) (*client.Response, error) {
	return std.Head(ctx, rawURL, cfg)
}

// Options dispatches an OPTIONS request for rawURL with the default client.
func Options(ctx context.Context, rawURL string, cfg *client.Config) (*client.Response, error) {
	return std.Options(ctx, rawURL, cfg)
}

// Post sends data to rawURL in a POST request with the default client.
func Post(ctx context.Context, rawURL string, data any, cfg *client.Config) (*client.Response, error) {
	return std.Post(ctx, rawURL, data, cfg)
}

// Put sends data to rawURL in a PUT request with the default client.
func Put(ctx context.Context, rawURL string, data any, cfg *client.Config) (*client.Response, error) {
	return std.Put(ctx, rawURL, data, cfg)
}

// Patch sends data to rawURL in a PATCH request with the default client.
func Patch(ctx context.Context, rawURL string, data any, cfg *client.Config) (*client.Response, error) {
	return std.Patch(ctx, rawURL, data, cfg)
}

// NewCancelToken constructs a cancel token, see client.NewCancelToken.
func NewCancelToken(executor func(cancel client.CancelFunc)) (*client.CancelToken, error) {
	return client.NewCancelToken(executor)
}

// CancelSource returns a new cancel token and the function cancelling it.
func CancelSource() (*client.CancelToken, client.CancelFunc) {
	return client.CancelSource()
}

// IsCancel reports whether err is a request cancellation.
func IsCancel(err error) bool {
	return client.IsCancel(err)
}

// All runs every call concurrently and returns their results in order.
// The first failure cancels the context handed to the remaining calls and
// is returned.
func All[T any](ctx context.Context, calls ...func(ctx context.Context) (T, error)) ([]T, error) {
	results := make([]T, len(calls))

	g, ctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		g.Go(func() error {
			v, err := call(ctx)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
