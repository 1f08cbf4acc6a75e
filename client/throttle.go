package client

import (
	"context"

	"github.com/adamwoolhether/courier/client/throttle"
)

// throttled holds transport calls back until the gate admits them.
type throttled struct {
	gate *throttle.Gate
	next Adapter
}

func (t throttled) Do(ctx context.Context, cfg *Config) (*Response, error) {
	waitCtx := ctx
	if cfg.CancelToken != nil {
		var stop context.CancelFunc
		waitCtx, stop = cfg.CancelToken.Context(ctx)
		defer stop()
	}

	if err := t.gate.Wait(waitCtx, BuildFullPath(cfg.BaseURL, cfg.URL)); err != nil {
		if r := throwIfCancellationRequested(cfg); r != nil {
			return nil, r
		}
		return nil, err
	}

	return t.next.Do(ctx, cfg)
}
