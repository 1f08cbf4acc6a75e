package client

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/courier/client/throttle"
)

// Client dispatches requests built from its default configuration.
// It is safe for concurrent use.
type Client struct {
	Interceptors Interceptors

	defaults *Config
	logger   *slog.Logger
	tracer   trace.Tracer
	throttle *throttle.Gate
}

// Interceptors holds the request-phase and response-phase registries.
type Interceptors struct {
	Request  *InterceptorManager[*Config]
	Response *InterceptorManager[*Response]
}

// Build instantiates a new *Client with the provided options.
func Build(optFns ...Option) (*Client, error) {
	client := &Client{
		Interceptors: Interceptors{
			Request:  NewInterceptorManager[*Config](),
			Response: NewInterceptorManager[*Response](),
		},
		logger: slog.Default(),
		tracer: noop.NewTracerProvider().Tracer(""),
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.tracer != nil {
		client.tracer = opts.tracer
	}

	defaults := MergeConfig(DefaultConfig(), opts.config)
	if opts.baseURL != "" {
		defaults.BaseURL = opts.baseURL
	}
	if opts.timeout != nil {
		defaults.Timeout = *opts.timeout
	}
	if opts.headers != nil {
		defaults.Headers = mergeHeaders(defaults.Headers, opts.headers)
	}
	if opts.userAgent != "" {
		if defaults.MethodHeaders == nil {
			defaults.MethodHeaders = map[string]Header{}
		}
		if defaults.MethodHeaders[commonHeaders] == nil {
			defaults.MethodHeaders[commonHeaders] = Header{}
		}
		defaults.MethodHeaders[commonHeaders].Set("User-Agent", opts.userAgent)
	}

	switch {
	case opts.adapter != nil:
		defaults.Adapter = opts.adapter
	case opts.httpClient != nil:
		defaults.Adapter = NewHTTPAdapter(opts.httpClient, client.logger)
	}

	if opts.throttle != nil {
		gate, err := throttle.New(opts.throttle.RPS, opts.throttle.Burst, func() *slog.Logger { return client.logger })
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		client.throttle = gate
	}

	client.defaults = defaults

	return client, nil
}

// Defaults returns a copy of the client's default configuration.
func (c *Client) Defaults() *Config {
	return c.defaults.Clone()
}

// Request merges cfg over the client defaults and runs it through the
// interceptor chain and the transport. cfg is not modified.
func (c *Client) Request(ctx context.Context, cfg *Config) (*Response, error) {
	merged := MergeConfig(c.defaults, cfg)
	merged.Method = normalizeMethod(merged.Method, c.defaults.Method)
	if merged.Headers == nil {
		merged.Headers = Header{}
	}

	ctx = withRequestID(ctx)
	c.logger.DebugContext(ctx, "request chain built",
		"request_id", RequestIDFromContext(ctx),
		"request_interceptors", c.Interceptors.Request.Len(),
		"response_interceptors", c.Interceptors.Response.Len(),
	)

	return c.buildChain(c.dispatch).run(ctx, merged)
}

// RequestURL is [Client.Request] with rawURL injected as the URL of cfg.
func (c *Client) RequestURL(ctx context.Context, rawURL string, cfg *Config) (*Response, error) {
	req := cfg.Clone()
	if req == nil {
		req = &Config{}
	}
	req.URL = rawURL

	return c.Request(ctx, req)
}

// GetURI builds the URL cfg would be sent to, without dispatching it.
func (c *Client) GetURI(cfg *Config) (string, error) {
	merged := MergeConfig(c.defaults, cfg)

	u, err := BuildURL(BuildFullPath(merged.BaseURL, merged.URL), merged.Params, merged.ParamsSerializer)
	if err != nil {
		return "", err
	}

	return strings.TrimPrefix(u, "?"), nil
}

func normalizeMethod(method, fallback string) string {
	switch {
	case method != "":
		return strings.ToLower(method)
	case fallback != "":
		return strings.ToLower(fallback)
	}

	return MethodGet
}
