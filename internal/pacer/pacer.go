// Package pacer provides a token-paced scheduler that guarantees a minimum
// spacing between successive operations, typically calls against a
// rate-limited upstream.
package pacer

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

type Pacer struct {
	limiter *rate.Limiter
}

// New returns a Pacer that allows one operation per interval with no burst.
// A non-positive interval yields a pacer that never waits.
func New(interval time.Duration) *Pacer {
	if interval <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next token is available or the context is done.
func (p *Pacer) Wait(c context.Context) error {
	return p.limiter.Wait(c)
}
