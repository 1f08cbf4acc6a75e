package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/courier/client/throttle"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	config     *Config
	httpClient *http.Client
	adapter    Adapter
	baseURL    string
	timeout    *time.Duration
	headers    Header
	userAgent  string
	throttle   *throttle.Config
	logger     *slog.Logger
	tracer     trace.Tracer
}

// WithConfig layers cfg over [DefaultConfig] to form the instance defaults.
func WithConfig(cfg *Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config must not be nil")
		}
		o.config = cfg
		return nil
	}
}

// WithBaseURL sets the base URL relative request URLs are resolved against.
func WithBaseURL(baseURL string) Option {
	return func(o *options) error {
		if !IsAbsoluteURL(baseURL) {
			return fmt.Errorf("base url %q must be absolute", baseURL)
		}
		o.baseURL = baseURL
		return nil
	}
}

// WithTimeout sets the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		o.timeout = &d
		return nil
	}
}

// WithHeader adds a default header sent with every request.
func WithHeader(name, value string) Option {
	return func(o *options) error {
		if name == "" {
			return errors.New("header name must not be empty")
		}
		if o.headers == nil {
			o.headers = Header{}
		}
		o.headers.Set(name, value)
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(o *options) error {
		o.userAgent = header
		return nil
	}
}

// WithAdapter sets the default transport of the [Client].
func WithAdapter(a Adapter) Option {
	return func(o *options) error {
		if a == nil {
			return errors.New("adapter must not be nil")
		}
		o.adapter = a
		return nil
	}
}

// WithHTTPClient uses hc for an [HTTPAdapter] serving as default transport.
// It is ignored when [WithAdapter] is given.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		o.httpClient = hc
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting of transport calls with the
// given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(o *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		o.throttle = &throttle.Config{RPS: rps, Burst: burst}
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithTracer injects the tracer used for dispatch spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}
