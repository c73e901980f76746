/*
Package limiter provides rate limiting for outbound chat commands.

It utilizes the Token Bucket algorithm (rate.Limiter) to bound the frequency
of user-initiated sends. Commands exceeding the limit are dropped, never
queued, matching the client's no-buffering failure semantics.
*/
package limiter

import (
	"golang.org/x/time/rate"

	"tabchat/internal/pkg/errs"
)

// SendLimiter bounds the rate of outbound chat and private-message commands.
type SendLimiter struct {
	limiter *rate.Limiter
}

// NewSendLimiter creates a SendLimiter allowing r events per second with
// burst capacity b.
func NewSendLimiter(r float64, b int) *SendLimiter {
	return &SendLimiter{
		limiter: rate.NewLimiter(rate.Limit(r), b),
	}
}

// Allow consumes one token. It returns a precondition error when the bucket
// is empty; the caller is expected to drop the command.
func (s *SendLimiter) Allow() *errs.CustomError {
	if !s.limiter.Allow() {
		return errs.NewError(errs.ErrSendThrottled)
	}
	return nil
}
