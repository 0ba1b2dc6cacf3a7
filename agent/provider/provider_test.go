package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	contractx "github.com/tanpawarit/wealth-advisor-agent/agent/contract"
)

func TestWithRetryRecoversFromRateLimit(t *testing.T) {
	t.Parallel()

	var slept []time.Duration
	sleep := func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	calls := 0
	out, err := withRetry(context.Background(), "fake", sleep, func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("got 429 from upstream")
		}
		return "recovered", nil
	})
	if err != nil {
		t.Fatalf("withRetry() error = %v", err)
	}
	if out != "recovered" {
		t.Fatalf("out = %q", out)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}

	want := []time.Duration{5 * time.Second, 10 * time.Second}
	if len(slept) != len(want) {
		t.Fatalf("slept = %v", slept)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Fatalf("slept[%d] = %v, want %v", i, slept[i], want[i])
		}
	}
}

func TestWithRetryExhaustion(t *testing.T) {
	t.Parallel()

	sleep := func(context.Context, time.Duration) error { return nil }
	calls := 0
	_, err := withRetry(context.Background(), "fake", sleep, func() (string, error) {
		calls++
		return "", errors.New("429 too many requests")
	})
	if !errors.Is(err, contractx.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestWithRetryNonRateLimitFailsFast(t *testing.T) {
	t.Parallel()

	sleep := func(context.Context, time.Duration) error {
		t.Fatal("must not sleep on a non-rate-limit error")
		return nil
	}
	calls := 0
	_, err := withRetry(context.Background(), "fake", sleep, func() (string, error) {
		calls++
		return "", errors.New("invalid request")
	})
	if err == nil || calls != 1 {
		t.Fatalf("err = %v, calls = %d", err, calls)
	}
}

func TestWithRetryStopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := withRetry(ctx, "fake", sleepContext, func() (string, error) {
		return "", errors.New("429")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestIsRateLimited(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("status 429"), true},
		{errors.New("Rate limit exceeded"), true},
		{fmt.Errorf("wrapped: %w", contractx.ErrRateLimited), true},
		{errors.New("bad gateway"), false},
	}
	for _, c := range cases {
		if got := IsRateLimited(c.err); got != c.want {
			t.Fatalf("IsRateLimited(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestClassifyWrapsUnknownErrors(t *testing.T) {
	t.Parallel()

	err := classify(errors.New("boom"))
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("err = %v, want ErrModelInvoke", err)
	}

	rate := fmt.Errorf("%w: spent all attempts", contractx.ErrRateLimited)
	if got := classify(rate); !errors.Is(got, contractx.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited passthrough", got)
	}
}

func TestUnavailableProviders(t *testing.T) {
	t.Parallel()

	gem, err := NewGemini(context.Background(), GeminiConfig{})
	if err != nil {
		t.Fatalf("NewGemini() error = %v", err)
	}
	if gem.Available() {
		t.Skip("ambient Google credentials present")
	}
	if _, err := gem.Generate(context.Background(), "hi", ""); !errors.Is(err, contractx.ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}

	or := NewOpenRouter(OpenRouterConfig{})
	if or.Available() {
		t.Fatal("openrouter must be unavailable without an API key")
	}
	if _, err := or.Generate(context.Background(), "hi", ""); !errors.Is(err, contractx.ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
}
