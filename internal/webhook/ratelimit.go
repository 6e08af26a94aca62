// MIT License
//
// Copyright (c) 2025 Mike Lane
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package webhook

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"
)

// idleLimiterTTL is how long a repository's bucket survives without traffic.
const idleLimiterTTL = 10 * time.Minute

// RateLimiter provides per-repository rate limiting
type RateLimiter struct {
	limiters *ttlcache.Cache[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

// NewRateLimiter creates a limiter allowing perSecond requests per second per
// repository, with bursts of up to burst requests. Buckets of repositories
// that stay quiet for idleLimiterTTL are dropped.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: ttlcache.New[string, *rate.Limiter](
			ttlcache.WithTTL[string, *rate.Limiter](idleLimiterTTL),
		),
		limit: rate.Limit(perSecond),
		burst: burst,
	}
}

// Allow checks if a request from the given repository should be allowed
func (rl *RateLimiter) Allow(repo string) bool {
	item, _ := rl.limiters.GetOrSetFunc(repo, func() *rate.Limiter {
		return rate.NewLimiter(rl.limit, rl.burst)
	})
	return item.Value().Allow()
}

// Len returns the number of repositories currently tracked.
func (rl *RateLimiter) Len() int {
	return rl.limiters.Len()
}

// Run evicts idle buckets every interval until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.limiters.DeleteExpired()
		}
	}
}
