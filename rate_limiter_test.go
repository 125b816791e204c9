package p2p

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestNewRateLimiter(t *testing.T) {
	rl := NewRateLimiter(10, time.Second)

	if rl == nil {
		t.Fatal("NewRateLimiter() returned nil")
	}
	if rl.maxTokens != 10 {
		t.Errorf("Expected maxTokens=10, got %d", rl.maxTokens)
	}
	if rl.Tokens() != 10 {
		t.Errorf("Expected initial tokens=10, got %d", rl.Tokens())
	}
}

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, time.Second)

	for i := 0; i < 3; i++ {
		if !rl.Allow() {
			t.Errorf("Expected true for request %d", i+1)
		}
	}
	if rl.Allow() {
		t.Error("Expected false for 4th request")
	}
	if rl.Tokens() != 0 {
		t.Errorf("Expected tokens=0, got %d", rl.Tokens())
	}
}

func TestRateLimiterRefill(t *testing.T) {
	rl := NewRateLimiter(2, 50*time.Millisecond)

	rl.Allow()
	rl.Allow()
	if rl.Allow() {
		t.Error("Expected false when no tokens available")
	}

	time.Sleep(60 * time.Millisecond)

	if !rl.Allow() {
		t.Error("Expected true after refill")
	}
}

func TestRateLimiterWait(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond)
	ctx := context.Background()

	if err := rl.Wait(ctx); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}

	start := time.Now()
	if err := rl.Wait(ctx); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("Expected Wait to block for a refill, returned after %v", elapsed)
	}
}

func TestRateLimiterWaitCanceled(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	rl.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx)
	if err == nil {
		t.Fatal("Expected an error when the context expires before a token frees up")
	}
	if err != context.DeadlineExceeded {
		t.Errorf("Expected context.DeadlineExceeded, got %v", err)
	}
}

func TestRateLimiterConcurrentAllow(t *testing.T) {
	rl := NewRateLimiter(100, time.Hour)

	var wg sync.WaitGroup
	allowed := make(chan struct{}, 200)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow() {
				allowed <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(allowed)

	count := 0
	for range allowed {
		count++
	}
	if count != 100 {
		t.Errorf("Expected exactly 100 allowed, got %d", count)
	}
}
