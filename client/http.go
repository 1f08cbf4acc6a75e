package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Version is reported in the default User-Agent header.
const Version = "0.1.0"

// DefaultAdapter is the transport used when neither the request nor the
// client configures one.
var DefaultAdapter Adapter = NewHTTPAdapter(nil, nil)

// HTTPAdapter is an [Adapter] backed by an [http.Client].
type HTTPAdapter struct {
	c      *http.Client
	logger *slog.Logger
}

// NewHTTPAdapter wraps hc, [http.DefaultClient] when nil. A nil logger
// resolves to [slog.Default] at call time.
func NewHTTPAdapter(hc *http.Client, logger *slog.Logger) *HTTPAdapter {
	if hc == nil {
		hc = http.DefaultClient
	}

	return &HTTPAdapter{c: hc, logger: logger}
}

// Do sends the prepared request. The context is cancelled when
// cfg.CancelToken fires or cfg.Timeout elapses. With ResponseType "stream"
// the response Data is an io.ReadCloser the caller must close.
func (a *HTTPAdapter) Do(ctx context.Context, cfg *Config) (*Response, error) {
	var release []func()
	handedOff := false
	defer func() {
		if !handedOff {
			runAll(release)
		}
	}()

	if cfg.CancelToken != nil {
		var stop context.CancelFunc
		ctx, stop = cfg.CancelToken.Context(ctx)
		release = append(release, stop)
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, cfg.Timeout, ErrTimeout)
		release = append(release, cancel)
	}

	fullURL, err := BuildURL(BuildFullPath(cfg.BaseURL, cfg.URL), cfg.Params, cfg.ParamsSerializer)
	if err != nil {
		return nil, &Error{Message: "building request url", Code: CodeBadRequest, Config: cfg, Err: err}
	}

	body, err := requestBody(cfg.Data, cfg.MaxBodyLength)
	if err != nil {
		return nil, &Error{Message: "preparing request body", Code: CodeBadRequest, Config: cfg, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(cfg.Method), fullURL, body)
	if err != nil {
		return nil, &Error{Message: "instantiating request", Code: CodeBadRequest, Config: cfg, Err: err}
	}

	req.Header = cfg.Headers.toHTTP()
	if !cfg.Headers.Has("User-Agent") {
		req.Header.Set("User-Agent", "courier/"+Version)
	}
	if cfg.Auth != nil {
		req.SetBasicAuth(cfg.Auth.Username, cfg.Auth.Password)
	}

	resp, err := a.client(cfg).Do(req)
	if err != nil {
		return nil, transportError(ctx, cfg, err)
	}

	out := &Response{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Headers:    headerFromHTTP(resp.Header),
		Config:     cfg,
		Request:    req,
	}

	if cfg.ResponseType == ResponseTypeStream {
		handedOff = true
		out.Data = &streamBody{ReadCloser: resp.Body, release: release}
		return settle(out)
	}

	data, err := a.readBody(resp, cfg.MaxContentLength)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			e.Config = cfg
			return nil, e
		}
		return nil, transportError(ctx, cfg, err)
	}

	if cfg.ResponseType == ResponseTypeArrayBuffer {
		out.Data = data
	} else {
		out.Data = string(data)
	}

	return settle(out)
}

func (a *HTTPAdapter) log() *slog.Logger {
	if a.logger != nil {
		return a.logger
	}

	return slog.Default()
}

// client applies the redirect limit of cfg to a copy of the wrapped client.
func (a *HTTPAdapter) client(cfg *Config) *http.Client {
	if cfg.MaxRedirects == 0 {
		return a.c
	}

	hc := *a.c
	maxRedirects := cfg.MaxRedirects
	hc.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
		if maxRedirects < 0 {
			return http.ErrUseLastResponse
		}
		if len(via) > maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	}

	return &hc
}

// readBody reads the whole response body, failing once it grows past
// maxLen when maxLen is positive.
func (a *HTTPAdapter) readBody(resp *http.Response, maxLen int64) ([]byte, error) {
	discardBody := true
	defer func() {
		if discardBody {
			if _, err := io.Copy(io.Discard, resp.Body); err != nil {
				a.log().Error("failed to discard unused body", "error", err)
			}
		}
		if err := resp.Body.Close(); err != nil {
			a.log().Error("failed to close response body", "error", err)
		}
	}()

	var r io.Reader = resp.Body
	if maxLen > 0 {
		r = io.LimitReader(resp.Body, maxLen+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		discardBody = false
		return nil, err
	}

	if maxLen > 0 && int64(len(data)) > maxLen {
		discardBody = false
		return nil, &Error{
			Message: fmt.Sprintf("maxContentLength size of %d exceeded", maxLen),
			Code:    CodeBadResponse,
			Err:     ErrMaxContentLength,
		}
	}

	return data, nil
}

// transportError classifies a failed round trip. A fired cancel token
// wins over every other cause.
func transportError(ctx context.Context, cfg *Config, err error) error {
	if r := throwIfCancellationRequested(cfg); r != nil {
		return r
	}

	if errors.Is(context.Cause(ctx), ErrTimeout) {
		return &Error{
			Message: fmt.Sprintf("timeout of %dms exceeded", cfg.Timeout.Milliseconds()),
			Code:    CodeAborted,
			Config:  cfg,
			Err:     ErrTimeout,
		}
	}

	return &Error{Message: "executing request", Code: CodeNetwork, Config: cfg, Err: err}
}

// requestBody turns transformed data into a request body.
func requestBody(data any, maxLen int64) (io.Reader, error) {
	var (
		body io.Reader
		size int64 = -1
	)
	switch v := data.(type) {
	case nil:
		return nil, nil
	case string:
		body, size = strings.NewReader(v), int64(len(v))
	case []byte:
		body, size = bytes.NewReader(v), int64(len(v))
	case io.Reader:
		body = v
	default:
		return nil, fmt.Errorf("%w: data after transformation must be a string, []byte or io.Reader, got %T", ErrInvalidBody, data)
	}

	if maxLen <= 0 {
		return body, nil
	}
	if size > maxLen {
		return nil, fmt.Errorf("%w: %d > %d", ErrMaxBodyLength, size, maxLen)
	}
	if size < 0 {
		body = &limitedBody{r: body, remaining: maxLen}
	}

	return body, nil
}

// limitedBody fails a read that would send more than remaining bytes.
type limitedBody struct {
	r         io.Reader
	remaining int64
}

func (l *limitedBody) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, ErrMaxBodyLength
	}

	return n, err
}

// streamBody releases the request context once the caller closes it.
type streamBody struct {
	io.ReadCloser
	release []func()
}

func (b *streamBody) Close() error {
	err := b.ReadCloser.Close()
	runAll(b.release)

	return err
}

func runAll(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

// settle resolves resp when the configured validator accepts its status.
func settle(resp *Response) (*Response, error) {
	validate := resp.Config.ValidateStatus
	if resp.Status == 0 || validate == nil || validate(resp.Status) {
		return resp, nil
	}

	code := CodeBadResponse
	if resp.Status >= 400 && resp.Status < 500 {
		code = CodeBadRequest
	}

	err := ErrUnexpectedStatusCode
	if resp.Status == http.StatusUnauthorized || resp.Status == http.StatusForbidden {
		err = errors.Join(ErrUnexpectedStatusCode, ErrAuthFailure)
	}

	return nil, &Error{
		Message:  fmt.Sprintf("request failed with status code %d", resp.Status),
		Code:     code,
		Config:   resp.Config,
		Response: resp,
		Err:      err,
	}
}
