package client

import (
	"context"
	"maps"
	"net/http"
	"time"
)

// Supported request methods, lowercase as they appear after normalization.
const (
	MethodGet     = "get"
	MethodDelete  = "delete"
	MethodHead    = "head"
	MethodOptions = "options"
	MethodPost    = "post"
	MethodPut     = "put"
	MethodPatch   = "patch"
)

// commonHeaders is the MethodHeaders group applied to every method.
const commonHeaders = "common"

// Response types understood by the default [HTTPAdapter].
const (
	ResponseTypeJSON        = "json"
	ResponseTypeText        = "text"
	ResponseTypeArrayBuffer = "arraybuffer"
	ResponseTypeStream      = "stream"
)

// Adapter performs the network I/O for a prepared request. Implementations
// must observe cfg.CancelToken and abort their I/O once it fires. A failure
// that originates from a received response should be an [*Error] carrying
// that response.
type Adapter interface {
	Do(ctx context.Context, cfg *Config) (*Response, error)
}

// AdapterFunc lets an ordinary function serve as an [Adapter].
type AdapterFunc func(ctx context.Context, cfg *Config) (*Response, error)

func (f AdapterFunc) Do(ctx context.Context, cfg *Config) (*Response, error) {
	return f(ctx, cfg)
}

// BasicAuth holds HTTP basic authentication credentials.
type BasicAuth struct {
	Username string
	Password string
}

// Config is the full set of options controlling one request. A dispatch
// works on a merged copy; neither the caller's value nor a client's
// defaults are modified.
type Config struct {
	URL     string
	BaseURL string
	Method  string `validate:"omitempty,oneof=get delete head options post put patch"`

	// Headers are the per-request headers.
	Headers Header
	// MethodHeaders holds header groups keyed by method name, plus the
	// "common" group applied to all methods. The groups are flattened
	// into Headers right before the transport is invoked.
	MethodHeaders map[string]Header

	// Params are serialized into the query string. Supported values are
	// url.Values, maps keyed by string and structs.
	Params           any
	ParamsSerializer func(params any) (string, error)

	Data any

	// Timeout aborts the request after the given duration. Zero means none.
	Timeout time.Duration `validate:"gte=0"`

	Adapter           Adapter
	TransformRequest  []TransformFunc
	TransformResponse []TransformFunc
	CancelToken       *CancelToken
	ValidateStatus    func(status int) bool

	// MaxContentLength and MaxBodyLength bound the response and request
	// body sizes in bytes. -1 means unbounded.
	MaxContentLength int64 `validate:"gte=-1"`
	MaxBodyLength    int64 `validate:"gte=-1"`

	ResponseType string `validate:"omitempty,oneof=json text arraybuffer stream"`
	Auth         *BasicAuth

	// MaxRedirects caps the redirects followed by the default adapter.
	// Zero keeps the net/http policy, negative disables redirects.
	MaxRedirects int
}

// Response is the result of a dispatched request.
type Response struct {
	Data       any
	Status     int
	StatusText string
	Headers    Header
	Config     *Config
	Request    *http.Request
}

// DefaultConfig returns a fresh copy of the process-wide default configuration.
func DefaultConfig() *Config {
	formContentType := Header{"Content-Type": "application/x-www-form-urlencoded"}

	return &Config{
		MethodHeaders: map[string]Header{
			commonHeaders: {"Accept": "application/json, text/plain, */*"},
			MethodGet:     {},
			MethodDelete:  {},
			MethodHead:    {},
			MethodOptions: {},
			MethodPost:    formContentType.Clone(),
			MethodPut:     formContentType.Clone(),
			MethodPatch:   formContentType.Clone(),
		},
		TransformRequest:  DefaultTransformRequest(),
		TransformResponse: DefaultTransformResponse(),
		ValidateStatus:    DefaultValidateStatus,
		MaxContentLength:  -1,
		MaxBodyLength:     -1,
	}
}

// DefaultValidateStatus accepts 2xx status codes.
func DefaultValidateStatus(status int) bool {
	return status >= 200 && status < 300
}

// Clone returns a copy of c whose header sets may be mutated freely.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	cpy := *c
	cpy.Headers = c.Headers.Clone()
	cpy.MethodHeaders = cloneGroups(c.MethodHeaders)
	cpy.TransformRequest = cloneSlice(c.TransformRequest)
	cpy.TransformResponse = cloneSlice(c.TransformResponse)
	if c.Auth != nil {
		auth := *c.Auth
		cpy.Auth = &auth
	}

	return &cpy
}

// MergeConfig returns a new configuration with override layered over base.
// URL, Method and Data are taken from override only. Headers, MethodHeaders,
// Auth and map Params are merged key by key. Every other field takes the
// override value when it is set. Neither input is modified.
func MergeConfig(base, override *Config) *Config {
	if base == nil {
		base = &Config{}
	}
	if override == nil {
		override = &Config{}
	}

	out := base.Clone()

	out.URL = override.URL
	out.Method = override.Method
	out.Data = override.Data

	out.Headers = mergeHeaders(base.Headers, override.Headers)
	out.MethodHeaders = mergeGroups(base.MethodHeaders, override.MethodHeaders)
	out.Auth = mergeAuth(base.Auth, override.Auth)
	out.Params = mergeParams(base.Params, override.Params)

	if override.BaseURL != "" {
		out.BaseURL = override.BaseURL
	}
	if override.ParamsSerializer != nil {
		out.ParamsSerializer = override.ParamsSerializer
	}
	if override.Timeout != 0 {
		out.Timeout = override.Timeout
	}
	if override.Adapter != nil {
		out.Adapter = override.Adapter
	}
	if override.TransformRequest != nil {
		out.TransformRequest = cloneSlice(override.TransformRequest)
	}
	if override.TransformResponse != nil {
		out.TransformResponse = cloneSlice(override.TransformResponse)
	}
	if override.CancelToken != nil {
		out.CancelToken = override.CancelToken
	}
	if override.ValidateStatus != nil {
		out.ValidateStatus = override.ValidateStatus
	}
	if override.MaxContentLength != 0 {
		out.MaxContentLength = override.MaxContentLength
	}
	if override.MaxBodyLength != 0 {
		out.MaxBodyLength = override.MaxBodyLength
	}
	if override.ResponseType != "" {
		out.ResponseType = override.ResponseType
	}
	if override.MaxRedirects != 0 {
		out.MaxRedirects = override.MaxRedirects
	}

	return out
}

func mergeHeaders(base, override Header) Header {
	if base == nil && override == nil {
		return nil
	}

	return make(Header, len(base)+len(override)).merge(base, override)
}

func mergeGroups(base, override map[string]Header) map[string]Header {
	if base == nil && override == nil {
		return nil
	}

	out := cloneGroups(base)
	if out == nil {
		out = make(map[string]Header, len(override))
	}
	for name, group := range override {
		out[name] = mergeHeaders(out[name], group)
	}

	return out
}

func mergeAuth(base, override *BasicAuth) *BasicAuth {
	switch {
	case override == nil && base == nil:
		return nil
	case override == nil:
		auth := *base
		return &auth
	case base == nil:
		auth := *override
		return &auth
	}

	auth := *base
	if override.Username != "" {
		auth.Username = override.Username
	}
	if override.Password != "" {
		auth.Password = override.Password
	}

	return &auth
}

func mergeParams(base, override any) any {
	bm, bok := base.(map[string]any)
	om, ook := override.(map[string]any)
	switch {
	case bok && ook:
		out := maps.Clone(bm)
		maps.Copy(out, om)
		return out
	case override != nil:
		return override
	}

	return base
}

func cloneGroups(groups map[string]Header) map[string]Header {
	if groups == nil {
		return nil
	}

	out := make(map[string]Header, len(groups))
	for name, group := range groups {
		out[name] = group.Clone()
	}

	return out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}

	return append(make([]T, 0, len(s)), s...)
}
