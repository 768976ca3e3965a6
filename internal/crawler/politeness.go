package crawler

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// pauseController abstracts how the engine waits between fetches. A delay
// postpones task start, never task correctness.
type pauseController interface {
	Pause(ctx context.Context, delay time.Duration)
}

type timerPauseController struct{}

func (p *timerPauseController) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// hostLimiter throttles fetches per host using token buckets.
type hostLimiter struct {
	mu       sync.Mutex
	perHost  map[string]*rate.Limiter
	qps      float64
	disabled bool
}

func newHostLimiter(qps float64) *hostLimiter {
	return &hostLimiter{
		perHost:  make(map[string]*rate.Limiter),
		qps:      qps,
		disabled: qps <= 0,
	}
}

// Wait blocks until the host's bucket permits another fetch or ctx ends.
func (l *hostLimiter) Wait(ctx context.Context, host string) error {
	if l == nil || l.disabled {
		return nil
	}
	return l.limiterFor(host).Wait(ctx)
}

func (l *hostLimiter) limiterFor(host string) *rate.Limiter {
	key := strings.ToLower(host)
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.perHost[key]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(l.qps), 1)
		l.perHost[key] = lim
	}
	return lim
}

// RandomDelay sleeps for a duration drawn uniformly from [min, max],
// mimicking human browsing behavior. Returns early if ctx is canceled.
func RandomDelay(ctx context.Context, min, max time.Duration) {
	if max <= 0 || max < min {
		return
	}
	delay := min
	if span := max - min; span > 0 {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(span)))
		if err == nil {
			delay += time.Duration(n.Int64())
		}
	}
	(&timerPauseController{}).Pause(ctx, delay)
}
