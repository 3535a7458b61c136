package ratelimit

import (
	"context"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// UnknownIdentity buckets every request that arrives without a trusted
// client address header.
const UnknownIdentity = "unknown"

// Limiter bounds accepted submissions per client identity within a
// fixed window. Counters live in this process only, so across multiple
// instances the limit is per-instance best effort; a shared store can
// be swapped in behind the same Allow contract.
type Limiter struct {
	instance *limiter.Limiter
}

// New builds a memory-backed fixed window limiter admitting max hits
// per identity per period.
func New(period time.Duration, max int64) *Limiter {
	rate := limiter.Rate{
		Period: period,
		Limit:  max,
	}
	return &Limiter{instance: limiter.New(memory.NewStore(), rate)}
}

// Allow records a hit for identity and reports whether it is still
// within the current window's budget.
func (l *Limiter) Allow(ctx context.Context, identity string) bool {
	lctx, err := l.instance.Get(ctx, identity)
	if err != nil {
		// The memory store cannot fail; don't lock everyone out if a
		// swapped-in remote store does.
		return true
	}
	return !lctx.Reached
}
