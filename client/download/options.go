package download

import (
	"errors"
	"hash"
	"log/slog"
	"strings"
)

// Option defines optional settings for downloading files.
type Option func(*options) error

type options struct {
	checksum     hash.Hash
	expected     string
	progress     bool
	skipExisting bool
	logger       *slog.Logger
}

// WithChecksum enables checksum validation of the downloaded file.
// h is a hash.Hash instance (e.g. sha256.New()), and expected is the
// hex-encoded expected checksum string.
func WithChecksum(h hash.Hash, expected string) Option {
	return func(opts *options) error {
		if h == nil {
			return errors.New("hash must not be nil")
		}

		if expected == "" {
			return errors.New("expected checksum must not be empty")
		}

		opts.checksum = h
		opts.expected = strings.ToLower(expected)
		return nil
	}
}

// WithProgress enables periodic progress logging.
func WithProgress() Option {
	return func(opts *options) error {
		opts.progress = true
		return nil
	}
}

// WithSkipExisting returns early when the destination file already exists,
// without issuing a request.
func WithSkipExisting() Option {
	return func(opts *options) error {
		opts.skipExisting = true
		return nil
	}
}

// WithLogger sets the logger for progress and cleanup messages.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		opts.logger = logger
		return nil
	}
}

func applyOptions(optFns []Option) (options, error) {
	opts := options{logger: slog.Default()}
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return options{}, err
		}
	}

	return opts, nil
}
