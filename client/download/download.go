package download

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cast"

	"github.com/adamwoolhether/courier/client"
)

// File fetches rawURL through c and stores the body at destPath. cfg may
// carry any per-request settings; its ResponseType is forced to stream.
func File(ctx context.Context, c *client.Client, rawURL, destPath string, cfg *client.Config, optFns ...Option) error {
	opts, err := applyOptions(optFns)
	if err != nil {
		return fmt.Errorf("applying option: %w", err)
	}

	if opts.skipExisting && exists(destPath) {
		opts.logger.InfoContext(ctx, "skipping existing file", "path", destPath)
		return nil
	}

	req := cfg.Clone()
	if req == nil {
		req = &client.Config{}
	}
	req.ResponseType = client.ResponseTypeStream

	resp, err := c.Get(ctx, rawURL, req)
	if err != nil {
		if r, ok := client.ResponseFromError(err); ok {
			closeBody(r, opts.logger)
		}
		return fmt.Errorf("requesting %s: %w", rawURL, err)
	}

	return save(ctx, resp, destPath, opts)
}

// Save writes the body of a streamed response to destPath and closes it.
func Save(ctx context.Context, resp *client.Response, destPath string, optFns ...Option) error {
	opts, err := applyOptions(optFns)
	if err != nil {
		return fmt.Errorf("applying option: %w", err)
	}

	if opts.skipExisting && exists(destPath) {
		closeBody(resp, opts.logger)
		opts.logger.InfoContext(ctx, "skipping existing file", "path", destPath)
		return nil
	}

	return save(ctx, resp, destPath, opts)
}

// save streams the body to a temp file next to destPath which is renamed
// on success. On any error the temp file is removed.
func save(ctx context.Context, resp *client.Response, destPath string, opts options) error {
	logger := opts.logger
	source := sourceURL(resp)

	body, ok := resp.Data.(io.ReadCloser)
	if !ok {
		return &Error{URL: source, Path: destPath, Err: ErrNotStream, Detail: fmt.Sprintf("got %T", resp.Data)}
	}
	defer func() {
		if err := body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	contentLength := int64(-1)
	if v := resp.Headers.Get("Content-Length"); v != "" {
		if n, err := cast.ToInt64E(v); err == nil {
			contentLength = n
		}
	}

	file, err := os.CreateTemp(filepath.Dir(destPath), ".courier-dl-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	var successful bool
	defer func() {
		if err := file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			logger.Error("defer closing temp file", "error", err)
		}
		if !successful {
			if err := os.Remove(file.Name()); err != nil {
				logger.Error("failed to remove temp file", "error", err)
			}
		}
	}()

	var writer io.Writer = file
	if opts.checksum != nil {
		writer = io.MultiWriter(writer, opts.checksum)
	}

	if opts.progress {
		writer = &progressWriter{
			w:         writer,
			logger:    logger,
			total:     contentLength,
			startTime: time.Now(),
		}
	}

	n, err := io.Copy(writer, &contextReader{ctx: ctx, r: body})
	if err != nil {
		if errors.Is(err, context.Canceled) || client.IsCancel(err) {
			return fmt.Errorf("%w: %w", ErrDownloadCancelled, err)
		}

		return fmt.Errorf("copying file body: %w", err)
	}

	if contentLength >= 0 && n != contentLength {
		return &Error{
			URL:    source,
			Path:   destPath,
			Err:    ErrContentLengthMismatch,
			Detail: fmt.Sprintf("expected %d bytes, got %d", contentLength, n),
		}
	}

	if opts.checksum != nil {
		if actual := hex.EncodeToString(opts.checksum.Sum(nil)); actual != opts.expected {
			return &Error{
				URL:    source,
				Path:   destPath,
				Err:    ErrChecksumMismatch,
				Detail: fmt.Sprintf("expected %s, got %s", opts.expected, actual),
			}
		}
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(file.Name(), destPath); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	successful = true

	return nil
}

// contextReader stops reading once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}

	return cr.r.Read(p)
}

// closeBody releases a streamed body the caller will not read.
func closeBody(resp *client.Response, logger *slog.Logger) {
	body, ok := resp.Data.(io.Closer)
	if !ok {
		return
	}
	if err := body.Close(); err != nil {
		logger.Error("failed to close response body", "error", err)
	}
}

// sourceURL reports where resp was fetched from.
func sourceURL(resp *client.Response) string {
	switch {
	case resp.Request != nil:
		return resp.Request.URL.String()
	case resp.Config != nil:
		return client.BuildFullPath(resp.Config.BaseURL, resp.Config.URL)
	}

	return ""
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
