package web

// limiter.go bounds how many import requests run at once. Imports hold
// database connections and run concurrent row batches, so an unbounded number
// of simultaneous requests can exhaust the pool. A semaphore caps them; a
// request that cannot get a slot within the configured wait is rejected and
// the client retries later.

import (
	"context"
	"sync"
	"time"

	"github.com/finvolo/ledger/internal/apperr"
)

// ErrImportsBusy is returned when every import slot stays occupied for the
// whole acquire wait.
var ErrImportsBusy = apperr.New(apperr.CodeRateLimitExceeded, "too many concurrent imports, try again shortly", true)

const (
	defaultMaxConcurrentImports = 5
	defaultAcquireWait          = 10 * time.Second
)

// importLimiter is a semaphore over in-flight import requests.
type importLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu     sync.Mutex
	active int
}

func newImportLimiter(maxConcurrent int, maxWait time.Duration) *importLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentImports
	}
	if maxWait <= 0 {
		maxWait = defaultAcquireWait
	}
	return &importLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// acquire takes a slot, waiting up to maxWait. Callers must release exactly
// once per successful acquire.
func (l *importLimiter) acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.slots <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrImportsBusy
	}
}

func (l *importLimiter) release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	<-l.slots
}

func (l *importLimiter) activeCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// drain blocks until no import is in flight, for graceful shutdown.
func (l *importLimiter) drain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.activeCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
