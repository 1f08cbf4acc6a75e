// Package client provides the request dispatch pipeline of courier:
// interceptor chains, payload transformation and cooperative cancellation
// in front of a pluggable transport.
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithBaseURL("https://api.example.com"),
//		client.WithTimeout(10 * time.Second),
//		client.WithUserAgent("myapp/1.0"),
//	)
//
// # Making Requests
//
// Every verb has its own method. Body-bearing verbs take the payload as an
// argument, which the default request transform encodes as JSON:
//
//	resp, err := c.Get(ctx, "/v1/users", &client.Config{
//		Params: map[string]any{"page": 2},
//	})
//	resp, err = c.Post(ctx, "/v1/users", user, nil)
//
// [Client.Request] accepts a full [Config] instead.
//
// # Interceptors
//
// Request interceptors run in registration order before the transport,
// response interceptors in registration order after it:
//
//	id := c.Interceptors.Request.Use(func(ctx context.Context, cfg *client.Config) (*client.Config, error) {
//		cfg.Headers.Set("Authorization", "Bearer "+token)
//		return cfg, nil
//	}, nil)
//	c.Interceptors.Request.Eject(id)
//
// # Cancellation
//
// A [CancelToken] may be shared by many requests. It is checked before the
// transport is invoked and again once it returns, and the default
// [HTTPAdapter] aborts in-flight I/O when it fires:
//
//	token, cancel := client.CancelSource()
//	go func() { cancel("user navigated away") }()
//	_, err := c.Get(ctx, "/slow", &client.Config{CancelToken: token})
//	if client.IsCancel(err) { ... }
package client
