package client

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// dispatch is the transport step of the chain. It prepares cfg, hands it
// to the adapter and shapes the outcome.
func (c *Client) dispatch(ctx context.Context, cfg *Config) (*Response, error) {
	if err := throwIfCancellationRequested(cfg); err != nil {
		return nil, err
	}

	// Interceptors may hand back a value they share with others.
	cfg = cfg.Clone()
	cfg.Method = normalizeMethod(cfg.Method, "")
	if cfg.Headers == nil {
		cfg.Headers = Header{}
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	data, err := Transform(cfg.Data, cfg.Headers, cfg.TransformRequest)
	if err != nil {
		return nil, err
	}
	cfg.Data = data

	cfg.Headers = flattenHeaders(cfg.MethodHeaders[commonHeaders], cfg.MethodHeaders[cfg.Method], cfg.Headers)
	cfg.MethodHeaders = nil

	adapter := cfg.Adapter
	if adapter == nil {
		adapter = DefaultAdapter
	}
	if c.throttle != nil {
		adapter = throttled{gate: c.throttle, next: adapter}
	}

	resp, err := c.callAdapter(ctx, adapter, cfg)
	if err != nil {
		return nil, onAdapterRejection(cfg, err)
	}

	return onAdapterResolution(cfg, resp)
}

func (c *Client) callAdapter(ctx context.Context, adapter Adapter, cfg *Config) (*Response, error) {
	id := RequestIDFromContext(ctx)
	fullPath := BuildFullPath(cfg.BaseURL, cfg.URL)

	ctx, span := c.tracer.Start(ctx, "courier.dispatch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", strings.ToUpper(cfg.Method)),
			attribute.String("url.full", fullPath),
			attribute.String("courier.request_id", id),
		),
	)
	defer span.End()

	c.logger.DebugContext(ctx, "dispatching request", "request_id", id, "method", cfg.Method, "url", fullPath)

	resp, err := adapter.Do(ctx, cfg)
	if err == nil && resp == nil {
		err = &Error{Message: "adapter returned no response", Code: CodeNetwork, Config: cfg}
	}

	if resp, ok := ResponseFromError(err); ok {
		span.SetAttributes(attribute.Int("http.response.status_code", resp.Status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.DebugContext(ctx, "request failed", "request_id", id, "canceled", IsCancel(err), "error", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.Status))
	c.logger.DebugContext(ctx, "request completed", "request_id", id, "status", resp.Status)

	return resp, nil
}

func onAdapterResolution(cfg *Config, resp *Response) (*Response, error) {
	if err := throwIfCancellationRequested(cfg); err != nil {
		return nil, err
	}

	data, err := Transform(resp.Data, resp.Headers, cfg.TransformResponse)
	if err != nil {
		return nil, err
	}
	resp.Data = data
	if resp.Config == nil {
		resp.Config = cfg
	}

	return resp, nil
}

// onAdapterRejection lets a requested cancellation take precedence over
// any other failure.
func onAdapterRejection(cfg *Config, reason error) error {
	var cancel *Cancel
	if errors.As(reason, &cancel) {
		return reason
	}

	if err := throwIfCancellationRequested(cfg); err != nil {
		return err
	}

	if resp, ok := ResponseFromError(reason); ok {
		data, err := Transform(resp.Data, resp.Headers, cfg.TransformResponse)
		if err != nil {
			return err
		}
		resp.Data = data
	}

	return reason
}

// flattenHeaders merges the header sets in increasing precedence. A later
// set replaces every casing of a name present in an earlier one.
func flattenHeaders(sets ...Header) Header {
	out := Header{}
	for _, set := range sets {
		keys := make([]string, 0, len(set))
		for k := range set {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			out.Set(k, set[k])
		}
	}

	return out
}
