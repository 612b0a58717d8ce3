package middleware

import (
	"fmt"
	"time"

	"github.com/hupe1980/agentware/core"
	"github.com/hupe1980/agentware/model"
)

// RetryOptions configures ModelRetry.
type RetryOptions struct {
	// MaxAttempts is the total number of handler invocations, including the
	// first one.
	MaxAttempts int
	// Backoff is the fixed delay between attempts.
	Backoff time.Duration
}

// ModelRetry returns a wrap_model_call middleware that re-invokes the inner
// handler on failure, up to MaxAttempts times, re-raising the final error
// when all attempts fail. Cancellation of the invocation halts the retry
// loop immediately.
func ModelRetry(name string, optFns ...func(o *RetryOptions)) *Middleware {
	opts := RetryOptions{
		MaxAttempts: 3,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return WrapModelCall(name, func(ic *core.InvocationContext, req model.Request, next ModelHandler) (*model.Response, error) {
		var lastErr error
		for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
			if err := ic.Err(); err != nil {
				return nil, err
			}

			resp, err := next(ic.Context, req)
			if err == nil {
				return resp, nil
			}
			lastErr = err
			ic.LogWarn("model.retry", "middleware", name, "attempt", attempt, "max_attempts", opts.MaxAttempts, "error", err.Error())

			if attempt == opts.MaxAttempts || opts.Backoff <= 0 {
				continue
			}
			select {
			case <-ic.Done():
				return nil, ic.Err()
			case <-time.After(opts.Backoff):
			}
		}
		return nil, fmt.Errorf("model call failed after %d attempts: %w", opts.MaxAttempts, lastErr)
	})
}
