package web

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestImportLimiter_AcquireRelease(t *testing.T) {
	l := newImportLimiter(2, time.Second)
	ctx := context.Background()

	if err := l.acquire(ctx); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if err := l.acquire(ctx); err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if got := l.activeCount(); got != 2 {
		t.Errorf("activeCount = %d, want 2", got)
	}

	l.release()
	l.release()
	if got := l.activeCount(); got != 0 {
		t.Errorf("activeCount = %d, want 0", got)
	}
}

func TestImportLimiter_RejectsWhenSaturated(t *testing.T) {
	l := newImportLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if err := l.acquire(ctx); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer l.release()

	start := time.Now()
	err := l.acquire(ctx)
	if !errors.Is(err, ErrImportsBusy) {
		t.Errorf("err = %v, want ErrImportsBusy", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("rejected after %v, want to wait out the acquire window", elapsed)
	}
}

func TestImportLimiter_ContextCancelled(t *testing.T) {
	l := newImportLimiter(1, 5*time.Second)

	if err := l.acquire(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer l.release()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.acquire(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("acquire did not return after cancellation")
	}
}

func TestImportLimiter_BoundsConcurrency(t *testing.T) {
	const max = 3
	l := newImportLimiter(max, time.Second)

	var wg sync.WaitGroup
	var mu sync.Mutex
	peak := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.acquire(context.Background()); err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			defer l.release()

			mu.Lock()
			if n := l.activeCount(); n > peak {
				peak = n
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
		}()
	}
	wg.Wait()

	if peak > max {
		t.Errorf("peak concurrency = %d, want at most %d", peak, max)
	}
	if got := l.activeCount(); got != 0 {
		t.Errorf("final activeCount = %d, want 0", got)
	}
}

func TestImportLimiter_Drain(t *testing.T) {
	l := newImportLimiter(2, time.Second)
	ctx := context.Background()

	l.acquire(ctx)
	done := make(chan error, 1)
	go func() { done <- l.drain(context.Background()) }()

	select {
	case <-done:
		t.Fatal("drain returned with an import in flight")
	case <-time.After(30 * time.Millisecond):
	}

	l.release()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("drain: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("drain did not return after release")
	}
}

func TestImportLimiter_Defaults(t *testing.T) {
	l := newImportLimiter(0, 0)
	if got := cap(l.slots); got != defaultMaxConcurrentImports {
		t.Errorf("capacity = %d, want %d", got, defaultMaxConcurrentImports)
	}
	if l.maxWait != defaultAcquireWait {
		t.Errorf("maxWait = %v, want %v", l.maxWait, defaultAcquireWait)
	}
}
