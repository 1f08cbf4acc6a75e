package client_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/adamwoolhether/courier/client"
)

type payload struct {
	Body string `json:"body"`
}

func newHTTPClient(t *testing.T, handler http.Handler, opts ...client.Option) *client.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := client.Build(append([]client.Option{
		client.WithBaseURL(srv.URL),
		client.WithHTTPClient(srv.Client()),
	}, opts...)...)
	if err != nil {
		t.Fatalf("building client: %v", err)
	}

	return c
}

func TestHTTPAdapter_RoundTrip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /echo", func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json;charset=utf-8" {
			t.Errorf("unexpected content type %q", ct)
		}
		if q := r.URL.Query().Get("v"); q != "1" {
			t.Errorf("expected query v=1, got %q", q)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Add("X-Multi", "a")
		w.Header().Add("X-Multi", "b")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.Copy(w, r.Body)
	})
	c := newHTTPClient(t, mux)

	resp, err := c.Post(t.Context(), "/echo", payload{Body: "hello"}, &client.Config{
		Params: map[string]any{"v": 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Status != http.StatusCreated || resp.StatusText != "Created" {
		t.Errorf("unexpected status %d %q", resp.Status, resp.StatusText)
	}
	if diff := cmp.Diff(map[string]any{"body": "hello"}, resp.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
	if got := resp.Headers["x-multi"]; got != "a, b" {
		t.Errorf("expected joined lowercase header, got %q", got)
	}
	if resp.Request == nil || resp.Request.Method != http.MethodPost {
		t.Errorf("expected the sent request to be attached, got %v", resp.Request)
	}
}

func TestHTTPAdapter_DefaultHeaders(t *testing.T) {
	c := newHTTPClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Seen-User-Agent", r.Header.Get("User-Agent"))
		w.Header().Set("X-Seen-Accept", r.Header.Get("Accept"))
	}))

	resp, err := c.Get(t.Context(), "/", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ua := resp.Headers.Get("X-Seen-User-Agent"); ua != "courier/"+client.Version {
		t.Errorf("unexpected default user agent %q", ua)
	}
	if accept := resp.Headers.Get("X-Seen-Accept"); accept != "application/json, text/plain, */*" {
		t.Errorf("unexpected accept %q", accept)
	}
}

func TestHTTPAdapter_StatusValidation(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		validate func(int) bool
		wantErr  []error
		wantCode string
	}{
		{name: "ok", status: http.StatusOK},
		{name: "not found", status: http.StatusNotFound, wantErr: []error{client.ErrUnexpectedStatusCode}, wantCode: client.CodeBadRequest},
		{name: "server error", status: http.StatusBadGateway, wantErr: []error{client.ErrUnexpectedStatusCode}, wantCode: client.CodeBadResponse},
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: []error{client.ErrUnexpectedStatusCode, client.ErrAuthFailure}, wantCode: client.CodeBadRequest},
		{name: "forbidden", status: http.StatusForbidden, wantErr: []error{client.ErrAuthFailure}, wantCode: client.CodeBadRequest},
		{name: "custom validator", status: http.StatusNotFound, validate: func(s int) bool { return s < 500 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newHTTPClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"status":"x"}`))
			}))

			resp, err := c.Get(t.Context(), "/", &client.Config{ValidateStatus: tt.validate})
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if resp.Status != tt.status {
					t.Errorf("expected %d, got %d", tt.status, resp.Status)
				}
				return
			}

			for _, want := range tt.wantErr {
				if !errors.Is(err, want) {
					t.Errorf("expected %v in %v", want, err)
				}
			}

			var cerr *client.Error
			if !errors.As(err, &cerr) {
				t.Fatalf("expected *client.Error, got %T", err)
			}
			if cerr.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, cerr.Code)
			}
			if cerr.Response == nil || cerr.Response.Status != tt.status {
				t.Fatalf("expected the response to be attached, got %+v", cerr.Response)
			}
			if diff := cmp.Diff(map[string]any{"status": "x"}, cerr.Response.Data); diff != "" {
				t.Errorf("error response data mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHTTPAdapter_Timeout(t *testing.T) {
	c := newHTTPClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))

	_, err := c.Get(t.Context(), "/", &client.Config{Timeout: 20 * time.Millisecond})
	if !errors.Is(err, client.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}

	var cerr *client.Error
	if !errors.As(err, &cerr) || cerr.Code != client.CodeAborted {
		t.Errorf("expected %s code, got %v", client.CodeAborted, err)
	}
}

func TestHTTPAdapter_CancelInFlight(t *testing.T) {
	started := make(chan struct{})
	c := newHTTPClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))

	tok, cancel := client.CancelSource()
	go func() {
		<-started
		cancel("user navigated away")
	}()

	_, err := c.Get(t.Context(), "/", &client.Config{CancelToken: tok})

	var reason *client.Cancel
	if !errors.As(err, &reason) || reason.Message != "user navigated away" {
		t.Fatalf("expected Cancel, got %v", err)
	}
}

func TestHTTPAdapter_MaxContentLength(t *testing.T) {
	c := newHTTPClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 64)))
	}))

	_, err := c.Get(t.Context(), "/", &client.Config{MaxContentLength: 10})
	if !errors.Is(err, client.ErrMaxContentLength) {
		t.Fatalf("expected ErrMaxContentLength, got %v", err)
	}

	resp, err := c.Get(t.Context(), "/", &client.Config{MaxContentLength: 64})
	if err != nil {
		t.Fatalf("unexpected error at the limit: %v", err)
	}
	if resp.Data != strings.Repeat("a", 64) {
		t.Errorf("unexpected body %v", resp.Data)
	}
}

func TestHTTPAdapter_MaxBodyLength(t *testing.T) {
	var hits int
	c := newHTTPClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))

	_, err := c.Post(t.Context(), "/", strings.Repeat("b", 32), &client.Config{MaxBodyLength: 8})
	if !errors.Is(err, client.ErrMaxBodyLength) {
		t.Fatalf("expected ErrMaxBodyLength, got %v", err)
	}
	if hits != 0 {
		t.Errorf("expected no request to be sent, got %d", hits)
	}
}

func TestHTTPAdapter_InvalidBody(t *testing.T) {
	c := newHTTPClient(t, http.NotFoundHandler())

	_, err := c.Post(t.Context(), "/", 1, &client.Config{TransformRequest: []client.TransformFunc{}})
	if !errors.Is(err, client.ErrInvalidBody) {
		t.Fatalf("expected ErrInvalidBody, got %v", err)
	}
}

func TestHTTPAdapter_BasicAuth(t *testing.T) {
	c := newHTTPClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "janedoe" || pass != "s00pers3cret" {
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))

	if _, err := c.Get(t.Context(), "/", &client.Config{Auth: &client.BasicAuth{Username: "janedoe", Password: "s00pers3cret"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Get(t.Context(), "/", nil); !errors.Is(err, client.ErrAuthFailure) {
		t.Fatalf("expected ErrAuthFailure without credentials, got %v", err)
	}
}

func TestHTTPAdapter_MaxRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/hop", http.StatusFound)
	})
	mux.HandleFunc("/hop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/end", http.StatusFound)
	})
	mux.HandleFunc("/end", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("done"))
	})

	tests := []struct {
		name       string
		max        int
		wantStatus int
		wantErr    bool
	}{
		{name: "default policy", max: 0, wantStatus: http.StatusOK},
		{name: "enough", max: 2, wantStatus: http.StatusOK},
		{name: "too few", max: 1, wantErr: true},
		{name: "disabled", max: -1, wantStatus: http.StatusFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newHTTPClient(t, mux)

			resp, err := c.Get(t.Context(), "/start", &client.Config{
				MaxRedirects:   tt.max,
				ValidateStatus: func(int) bool { return true },
			})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, resp.Status)
			}
		})
	}
}

func TestHTTPAdapter_ResponseTypes(t *testing.T) {
	c := newHTTPClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"a":1}`))
	}))

	t.Run("arraybuffer", func(t *testing.T) {
		resp, err := c.Get(t.Context(), "/", &client.Config{ResponseType: client.ResponseTypeArrayBuffer})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff([]byte(`{"a":1}`), resp.Data); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("stream", func(t *testing.T) {
		resp, err := c.Get(t.Context(), "/", &client.Config{ResponseType: client.ResponseTypeStream})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		body, ok := resp.Data.(io.ReadCloser)
		if !ok {
			t.Fatalf("expected io.ReadCloser, got %T", resp.Data)
		}
		defer body.Close()

		b, err := io.ReadAll(body)
		if err != nil {
			t.Fatalf("reading stream: %v", err)
		}
		if string(b) != `{"a":1}` {
			t.Errorf("unexpected body %q", b)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		if _, err := c.Get(t.Context(), "/", &client.Config{ResponseType: "blob"}); err == nil {
			t.Fatal("expected a validation error")
		}
	})
}

func TestHTTPAdapter_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := client.Build(client.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Get(t.Context(), srv.URL, nil)

	var cerr *client.Error
	if !errors.As(err, &cerr) || cerr.Code != client.CodeNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
	if _, ok := client.ResponseFromError(err); ok {
		t.Error("network errors carry no response")
	}
}
