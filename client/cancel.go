package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var (
	// ErrCanceled is matched by every [Cancel] through errors.Is.
	ErrCanceled = errors.New("request canceled")
	// ErrInvalidExecutor is returned by [NewCancelToken] when no executor is given.
	ErrInvalidExecutor = errors.New("executor must be a function")
)

// Cancel is the error produced when cancellation of a request was requested.
// It is never wrapped by the dispatch pipeline, use [IsCancel] to detect it.
type Cancel struct {
	Message string
}

func (c *Cancel) Error() string {
	if c.Message == "" {
		return ErrCanceled.Error()
	}

	return ErrCanceled.Error() + ": " + c.Message
}

// Is reports whether target is [ErrCanceled].
func (c *Cancel) Is(target error) bool {
	return target == ErrCanceled
}

// IsCancel reports whether err is, or wraps, a [Cancel].
func IsCancel(err error) bool {
	var c *Cancel
	return errors.As(err, &c)
}

// CancelFunc requests cancellation of every request carrying the token it
// was issued for. Only the first call has an effect.
type CancelFunc func(message string)

// CancelToken is a cooperative cancellation signal which can be shared by
// any number of requests. Its reason is written at most once.
type CancelToken struct {
	once   sync.Once
	done   chan struct{}
	reason atomic.Pointer[Cancel]
}

// NewCancelToken constructs a token and synchronously hands its cancel
// function to executor, which is expected to retain it.
func NewCancelToken(executor func(cancel CancelFunc)) (*CancelToken, error) {
	if executor == nil {
		return nil, ErrInvalidExecutor
	}

	t := &CancelToken{done: make(chan struct{})}
	executor(t.cancel)

	return t, nil
}

// CancelSource returns a new token together with the function cancelling it.
func CancelSource() (*CancelToken, CancelFunc) {
	var cancel CancelFunc
	t, _ := NewCancelToken(func(c CancelFunc) {
		cancel = c
	})

	return t, cancel
}

func (t *CancelToken) cancel(message string) {
	t.once.Do(func() {
		t.reason.Store(&Cancel{Message: message})
		close(t.done)
	})
}

// Done returns a channel closed once cancellation is requested.
func (t *CancelToken) Done() <-chan struct{} {
	return t.done
}

// Reason returns the cancellation reason, nil while the token is pending.
func (t *CancelToken) Reason() *Cancel {
	return t.reason.Load()
}

// Requested reports whether cancellation has been requested.
func (t *CancelToken) Requested() bool {
	return t.reason.Load() != nil
}

// ThrowIfRequested returns the stored [Cancel] if cancellation was requested.
func (t *CancelToken) ThrowIfRequested() error {
	if r := t.reason.Load(); r != nil {
		return r
	}

	return nil
}

// Context derives a context from parent that is cancelled, with the token's
// [Cancel] as cause, when the token fires. Adapters use it to abort in-flight
// I/O. The returned CancelFunc must be called to release resources.
func (t *CancelToken) Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)

	if r := t.reason.Load(); r != nil {
		cancel(r)
		return ctx, func() { cancel(nil) }
	}

	stop := make(chan struct{})
	go func() {
		select {
		case <-t.done:
			cancel(t.reason.Load())
		case <-ctx.Done():
		case <-stop:
		}
	}()

	var stopOnce sync.Once
	return ctx, func() {
		stopOnce.Do(func() { close(stop) })
		cancel(nil)
	}
}

// throwIfCancellationRequested is a nil-safe ThrowIfRequested.
func throwIfCancellationRequested(cfg *Config) error {
	if cfg == nil || cfg.CancelToken == nil {
		return nil
	}

	return cfg.CancelToken.ThrowIfRequested()
}
