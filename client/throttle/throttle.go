package throttle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrMustNotBeZero = errors.New("must be greater than zero")
	ErrWaitingFailed = errors.New("limiter waiting failed")
	ErrContextEnded  = errors.New("throttle context ended")
)

// Config defines the throttler's
// Requests Per Second and Burst Rate
type Config struct {
	RPS   int
	Burst int
}

// Gate uses the time/rate token bucket limiter to hold back
// outbound calls until a token is available.
type Gate struct {
	limiter *rate.Limiter
	rps     int
	burst   int
	logFn   func() *slog.Logger
}

// New returns a Gate admitting rps calls per second with the given burst.
// logFn lazily resolves the logger at call time, making option ordering
// irrelevant. A nil-returning logFn disables wait logging.
func New(rps, burst int, logFn func() *slog.Logger) (*Gate, error) {
	if rps <= 0 || burst <= 0 {
		return nil, fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, ErrMustNotBeZero)
	}
	if logFn == nil {
		logFn = func() *slog.Logger { return nil }
	}

	g := &Gate{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		rps:     rps,
		burst:   burst,
		logFn:   logFn,
	}

	return g, nil
}

// Wait blocks until the call to target may proceed or ctx ends.
func (g *Gate) Wait(ctx context.Context, target string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w early: %w", ErrContextEnded, err)
	}

	var waited time.Duration
	logger := g.logFn()
	if logger != nil && g.limiter.Tokens() < 1 {
		logger.Info("throttle tokens exhausted", "rate", g.rps, "burst", g.burst, "target", target)

		defer func() {
			logger.Info("throttle wait complete", "waited", waited.String(), "rate", g.rps, "burst", g.burst)
		}()
	}

	start := time.Now()

	err := g.limiter.Wait(ctx)
	waited = time.Since(start)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWaitingFailed, err)
	}

	if err := ctx.Err(); err != nil { // Check context hasn't expired again.
		return fmt.Errorf("%w post-wait: %w", ErrContextEnded, err)
	}

	return nil
}
