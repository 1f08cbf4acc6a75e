package client

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFlattenHeaders(t *testing.T) {
	got := flattenHeaders(
		Header{"Accept": "json", "X-Common": "c"},
		Header{"content-type": "x"},
		Header{"Content-Type": "y", "accept": "text"},
	)

	want := Header{"accept": "text", "Content-Type": "y", "X-Common": "c"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestGuard(t *testing.T) {
	v, err := guard(func() (int, error) { return 7, nil })
	if v != 7 || err != nil {
		t.Errorf("expected passthrough, got %d %v", v, err)
	}

	_, err = guard(func() (int, error) { panic(errors.New("bad")) })
	if !errors.Is(err, ErrHandlerPanic) {
		t.Errorf("expected ErrHandlerPanic, got %v", err)
	}
}

func TestChain_ResponseRailWithoutTransport(t *testing.T) {
	var transportCalled bool
	failed := errors.New("request phase failed")

	ch := chain{
		request: []Interceptor[*Config]{{
			Fulfilled: func(context.Context, *Config) (*Config, error) { return nil, failed },
		}},
		transport: func(context.Context, *Config) (*Response, error) {
			transportCalled = true
			return &Response{}, nil
		},
		response: []Interceptor[*Response]{
			{Fulfilled: func(context.Context, *Response) (*Response, error) {
				t.Error("fulfilled handler must be skipped on the error rail")
				return nil, nil
			}},
			{Rejected: func(_ context.Context, err error) (*Response, error) {
				return nil, errors.Join(err, errors.New("seen"))
			}},
		},
	}

	_, err := ch.run(t.Context(), &Config{})
	if !errors.Is(err, failed) {
		t.Errorf("expected request phase error, got %v", err)
	}
	if transportCalled {
		t.Error("transport must be skipped")
	}
}

func TestNormalizeMethod(t *testing.T) {
	tests := []struct {
		method, fallback, want string
	}{
		{"POST", "", "post"},
		{"", "PUT", "put"},
		{"", "", "get"},
	}

	for _, tt := range tests {
		if got := normalizeMethod(tt.method, tt.fallback); got != tt.want {
			t.Errorf("normalizeMethod(%q, %q) = %q, want %q", tt.method, tt.fallback, got, tt.want)
		}
	}
}
