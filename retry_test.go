package p2p

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultRetryPolicyRetryableKinds(t *testing.T) {
	policy := NewDefaultRetryPolicy(3, 10*time.Millisecond, time.Second, 2.0, 0)

	for _, kind := range []Kind{KindForbidden, KindTimeout} {
		delay, retry := policy.ShouldRetry(&APIError{Kind: kind}, 0)
		if !retry {
			t.Errorf("Expected retry for %s", kind)
		}
		if delay <= 0 {
			t.Errorf("Expected positive delay for %s, got %v", kind, delay)
		}
	}
}

func TestDefaultRetryPolicyNonRetryableKinds(t *testing.T) {
	policy := NewDefaultRetryPolicy(3, 10*time.Millisecond, time.Second, 2.0, 0)

	nonRetryable := []Kind{
		KindUnknown, KindSlugTaken, KindNotFound, KindUniqueConstraintViolated,
		KindEncodingMismatch, KindUnknownAttribute, KindInvalidAccessDefinition,
		KindSearchError,
	}
	for _, kind := range nonRetryable {
		if _, retry := policy.ShouldRetry(&APIError{Kind: kind}, 0); retry {
			t.Errorf("Expected no retry for %s", kind)
		}
	}
}

func TestDefaultRetryPolicyBudgetExhaustion(t *testing.T) {
	policy := NewDefaultRetryPolicy(2, 10*time.Millisecond, time.Second, 2.0, 0)
	err := &APIError{Kind: KindTimeout}

	if _, retry := policy.ShouldRetry(err, 0); !retry {
		t.Error("Expected retry on attempt 0")
	}
	if _, retry := policy.ShouldRetry(err, 1); !retry {
		t.Error("Expected retry on attempt 1")
	}
	if _, retry := policy.ShouldRetry(err, 2); retry {
		t.Error("Expected no retry once the budget is spent")
	}
}

func TestDefaultRetryPolicyIgnoresPlainErrors(t *testing.T) {
	policy := NewDefaultRetryPolicy(3, 10*time.Millisecond, time.Second, 2.0, 0)

	if _, retry := policy.ShouldRetry(errors.New("not classified"), 0); retry {
		t.Error("Expected no retry for unclassified errors")
	}
}

func TestDefaultRetryPolicyDelaysGrow(t *testing.T) {
	policy := NewDefaultRetryPolicy(5, 10*time.Millisecond, time.Second, 2.0, 0)
	err := &APIError{Kind: KindTimeout}

	first, _ := policy.ShouldRetry(err, 0)
	second, _ := policy.ShouldRetry(err, 1)
	third, _ := policy.ShouldRetry(err, 2)

	if second <= first {
		t.Errorf("Expected delay growth, got %v then %v", first, second)
	}
	if third <= second {
		t.Errorf("Expected delay growth, got %v then %v", second, third)
	}
}

func TestDefaultRetryPolicyDelaysCapped(t *testing.T) {
	max := 50 * time.Millisecond
	policy := NewDefaultRetryPolicy(20, 10*time.Millisecond, max, 2.0, 0.5)
	err := &APIError{Kind: KindForbidden}

	for attempt := 0; attempt < 20; attempt++ {
		delay, retry := policy.ShouldRetry(err, attempt)
		if !retry {
			t.Fatalf("Expected retry on attempt %d", attempt)
		}
		if delay > max {
			t.Errorf("Expected delay <= %v on attempt %d, got %v", max, attempt, delay)
		}
	}
}

func TestDefaultRetryPolicyDecorrelatedStrategy(t *testing.T) {
	policy := NewDefaultRetryPolicyWithStrategy(3, 10*time.Millisecond, time.Second, 2.0, 0.1, DecorrelatedJitter)
	err := &APIError{Kind: KindTimeout}

	delay, retry := policy.ShouldRetry(err, 1)
	if !retry {
		t.Fatal("Expected retry")
	}
	if delay < 10*time.Millisecond || delay > time.Second {
		t.Errorf("Expected delay within [initial, max], got %v", delay)
	}
}

func TestDefaultRetryPolicyMaxRetries(t *testing.T) {
	policy := NewDefaultRetryPolicy(7, 10*time.Millisecond, time.Second, 2.0, 0)
	if policy.MaxRetries() != 7 {
		t.Errorf("Expected MaxRetries()=7, got %d", policy.MaxRetries())
	}
}
