// Package throttle provides a [Gate] that rate-limits outbound calls
// using a token-bucket algorithm from [golang.org/x/time/rate].
//
// # Usage
//
// Create a gate with [New] and wait on it before each call:
//
//	g, err := throttle.New(
//		10, // calls per second
//		5,  // burst capacity
//		func() *slog.Logger { return slog.Default() },
//	)
//	if err := g.Wait(ctx, "/v1/users"); err != nil { ... }
//
// When the rate limit is exceeded, callers block until a token becomes
// available or the context is cancelled.
package throttle
