// Package provider implements the language-model backends the advisor can
// run on. Each backend satisfies contract.Provider and shares the same
// rate-limit retry policy: up to three attempts with 5s and 10s pauses
// between them.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/googleapi"

	contractx "github.com/tanpawarit/wealth-advisor-agent/agent/contract"
)

const (
	maxAttempts = 3
	retryBase   = 5 * time.Second
)

// sleeper pauses between retry attempts. Tests replace it to avoid real
// waits.
type sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsRateLimited reports whether err is a quota failure worth retrying. It
// recognizes the SDK error types of both backends and falls back to a
// message scan, since some gateways only surface "429" in the body text.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, contractx.ErrRateLimited) {
		return true
	}
	var oerr *openaisdk.Error
	if errors.As(err, &oerr) && oerr.StatusCode == http.StatusTooManyRequests {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(strings.ToLower(msg), "rate limit")
}

// withRetry runs call up to maxAttempts times. Rate-limit failures back off
// retryBase doubled per attempt; any other failure returns immediately.
// Exhausting every attempt wraps contract.ErrRateLimited.
func withRetry(ctx context.Context, providerName string, sleep sleeper, call func() (string, error)) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		out, err := call()
		if err == nil {
			return out, nil
		}
		if !IsRateLimited(err) {
			return "", err
		}

		lastErr = err
		if attempt == maxAttempts-1 {
			break
		}
		delay := retryBase << attempt
		log.Warn().
			Str("provider", providerName).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("rate limited, backing off")
		if serr := sleep(ctx, delay); serr != nil {
			return "", serr
		}
	}
	return "", fmt.Errorf("%w: %s exhausted %d attempts: %v", contractx.ErrRateLimited, providerName, maxAttempts, lastErr)
}

// classify maps a backend failure onto the contract sentinels so callers can
// branch on errors.Is instead of string matching.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, contractx.ErrRateLimited),
		errors.Is(err, contractx.ErrProviderUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
}
