package client

import "context"

// Get issues a GET request for rawURL.
func (c *Client) Get(ctx context.Context, rawURL string, cfg *Config) (*Response, error) {
	return c.send(ctx, MethodGet, rawURL, dataOf(cfg), cfg)
}

// Delete issues a DELETE request for rawURL.
func (c *Client) Delete(ctx context.Context, rawURL string, cfg *Config) (*Response, error) {
	return c.send(ctx, MethodDelete, rawURL, dataOf(cfg), cfg)
}

// Head issues a HEAD request for rawURL.
func (c *Client) Head(ctx context.Context, rawURL string, cfg *Config) (*Response, error) {
	return c.send(ctx, MethodHead, rawURL, dataOf(cfg), cfg)
}

// Options issues an OPTIONS request for rawURL.
func (c *Client) Options(ctx context.Context, rawURL string, cfg *Config) (*Response, error) {
	return c.send(ctx, MethodOptions, rawURL, dataOf(cfg), cfg)
}

// Post issues a POST request for rawURL with data as payload.
func (c *Client) Post(ctx context.Context, rawURL string, data any, cfg *Config) (*Response, error) {
	return c.send(ctx, MethodPost, rawURL, data, cfg)
}

// Put issues a PUT request for rawURL with data as payload.
func (c *Client) Put(ctx context.Context, rawURL string, data any, cfg *Config) (*Response, error) {
	return c.send(ctx, MethodPut, rawURL, data, cfg)
}

// Patch issues a PATCH request for rawURL with data as payload.
func (c *Client) Patch(ctx context.Context, rawURL string, data any, cfg *Config) (*Response, error) {
	return c.send(ctx, MethodPatch, rawURL, data, cfg)
}

func (c *Client) send(ctx context.Context, method, rawURL string, data any, cfg *Config) (*Response, error) {
	req := cfg.Clone()
	if req == nil {
		req = &Config{}
	}
	req.Method = method
	req.URL = rawURL
	req.Data = data

	return c.Request(ctx, req)
}

func dataOf(cfg *Config) any {
	if cfg == nil {
		return nil
	}

	return cfg.Data
}
