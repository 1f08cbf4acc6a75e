package download_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/adamwoolhether/courier/client"
	"github.com/adamwoolhether/courier/client/download"
)

const payload = "the quick brown fox jumps over the lazy dog"

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /file", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		_, _ = w.Write([]byte(payload))
	})
	mux.HandleFunc("GET /short", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)+10))
		_, _ = w.Write([]byte(payload))
	})
	mux.HandleFunc("GET /missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func newClient(t *testing.T, srv *httptest.Server) *client.Client {
	t.Helper()

	c, err := client.Build(client.WithBaseURL(srv.URL), client.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("building client: %v", err)
	}

	return c
}

func checksum(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestFile(t *testing.T) {
	srv := newServer(t)
	c := newClient(t, srv)

	tests := []struct {
		name    string
		path    string
		opts    []download.Option
		wantErr error
	}{
		{name: "plain", path: "/file"},
		{name: "checksum", path: "/file", opts: []download.Option{download.WithChecksum(sha256.New(), checksum(payload))}},
		{name: "progress", path: "/file", opts: []download.Option{download.WithProgress()}},
		{name: "checksum mismatch", path: "/file", opts: []download.Option{download.WithChecksum(sha256.New(), checksum("other"))}, wantErr: download.ErrChecksumMismatch},
		{name: "status", path: "/missing", wantErr: client.ErrUnexpectedStatusCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "out.txt")

			err := download.File(t.Context(), c, tt.path, dest, nil, tt.opts...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
					t.Errorf("expected no file at %s", dest)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got, err := os.ReadFile(dest)
			if err != nil {
				t.Fatalf("reading result: %v", err)
			}
			if string(got) != payload {
				t.Errorf("expected %q, got %q", payload, got)
			}
		})
	}
}

func TestFile_ContentLengthMismatch(t *testing.T) {
	srv := newServer(t)
	c := newClient(t, srv)
	dest := filepath.Join(t.TempDir(), "out.txt")

	err := download.File(t.Context(), c, "/short", dest, nil)
	if err == nil {
		t.Fatal("expected an error")
	}

	entries, err := os.ReadDir(filepath.Dir(dest))
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected temp files to be removed, found %d entries", len(entries))
	}
}

func TestFile_SkipExisting(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)
	c := newClient(t, srv)

	dest := filepath.Join(t.TempDir(), "out.txt")
	if err := os.WriteFile(dest, []byte("existing"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := download.File(t.Context(), c, "/", dest, nil, download.WithSkipExisting()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hits != 0 {
		t.Errorf("expected no request, got %d", hits)
	}
	got, _ := os.ReadFile(dest)
	if string(got) != "existing" {
		t.Errorf("existing file was overwritten: %q", got)
	}
}

func TestFile_ChecksumErrorDetails(t *testing.T) {
	srv := newServer(t)
	c := newClient(t, srv)
	dest := filepath.Join(t.TempDir(), "out.txt")

	err := download.File(t.Context(), c, "/file", dest, nil, download.WithChecksum(sha256.New(), checksum("other")))

	var dlErr *download.Error
	if !errors.As(err, &dlErr) {
		t.Fatalf("expected *download.Error, got %T: %v", err, err)
	}
	if dlErr.URL != srv.URL+"/file" {
		t.Errorf("expected url %q, got %q", srv.URL+"/file", dlErr.URL)
	}
	if dlErr.Path != dest {
		t.Errorf("expected path %q, got %q", dest, dlErr.Path)
	}
	if !strings.Contains(dlErr.Detail, checksum(payload)) {
		t.Errorf("expected actual digest in detail, got %q", dlErr.Detail)
	}
}

type failingBody struct {
	io.Reader
}

func (failingBody) Close() error {
	return errors.New("close failed")
}

func TestSave_SkipExistingLogsCloseFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	dest := filepath.Join(t.TempDir(), "out.txt")
	if err := os.WriteFile(dest, []byte("existing"), 0o600); err != nil {
		t.Fatal(err)
	}

	resp := &client.Response{Data: failingBody{Reader: strings.NewReader(payload)}}
	if err := download.Save(t.Context(), resp, dest, download.WithSkipExisting(), download.WithLogger(logger)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(buf.String(), "failed to close response body") {
		t.Errorf("expected close failure to be logged, got %q", buf.String())
	}
}

func TestSave_NotStream(t *testing.T) {
	resp := &client.Response{Data: "text", Headers: client.Header{}}

	err := download.Save(t.Context(), resp, filepath.Join(t.TempDir(), "out"))
	if !errors.Is(err, download.ErrNotStream) {
		t.Errorf("expected ErrNotStream, got %v", err)
	}
}

func TestOptions_Validation(t *testing.T) {
	resp := &client.Response{Data: "text"}
	dest := filepath.Join(t.TempDir(), "out")

	if err := download.Save(t.Context(), resp, dest, download.WithChecksum(nil, "abc")); err == nil {
		t.Error("expected error for nil hash")
	}
	if err := download.Save(t.Context(), resp, dest, download.WithChecksum(sha256.New(), "")); err == nil {
		t.Error("expected error for empty checksum")
	}
	if err := download.Save(t.Context(), resp, dest, download.WithLogger(nil)); err == nil {
		t.Error("expected error for nil logger")
	}
}
