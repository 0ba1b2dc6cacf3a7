// Package orchestrator runs the two-phase tool exchange: the model is shown
// the tool catalog and the marker protocol, and when it answers with a tool
// call the result is fed back for a final user-facing response.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/wealth-advisor-agent/agent/contract"
	toolx "github.com/tanpawarit/wealth-advisor-agent/agent/tool"
	toolcallx "github.com/tanpawarit/wealth-advisor-agent/agent/toolcall"
)

const (
	maxAttempts = 3
	retryBase   = 5 * time.Second
)

const enhancedPromptFormat = `You have access to these tools:
%s

To use a tool, respond with:
TOOL: <tool_name>
INPUT: <json_input>

After seeing the tool result, provide your final answer.

User query: %s`

const followupPromptFormat = `Tool result for %s:
%s

Now provide a helpful response to the user based on this result.`

type Orchestrator struct {
	provider contractx.Provider
	registry *toolx.Registry
	sleep    func(ctx context.Context, d time.Duration) error
}

func New(provider contractx.Provider, registry *toolx.Registry) (*Orchestrator, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: orchestrator needs a provider", contractx.ErrValidation)
	}
	if registry == nil {
		return nil, fmt.Errorf("%w: orchestrator needs a tool registry", contractx.ErrValidation)
	}
	return &Orchestrator{
		provider: provider,
		registry: registry,
		sleep:    sleepContext,
	}, nil
}

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

// Respond answers one user query. The whole exchange is retried as a unit
// when the provider reports rate limiting, with 5s and 10s pauses between
// the three attempts.
func (o *Orchestrator) Respond(ctx context.Context, userQuery, systemPrompt string) (string, error) {
	enhanced := fmt.Sprintf(enhancedPromptFormat, o.registry.Catalog(), userQuery)

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		out, err := o.exchange(ctx, enhanced, systemPrompt)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, contractx.ErrRateLimited) {
			return "", err
		}

		lastErr = err
		if attempt == maxAttempts-1 {
			break
		}
		delay := retryBase << attempt
		log.Warn().
			Str("provider", o.provider.Name()).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("tool exchange rate limited, backing off")
		if serr := o.sleep(ctx, delay); serr != nil {
			return "", serr
		}
	}
	return "", fmt.Errorf("%w: tool exchange exhausted %d attempts: %v", contractx.ErrRateLimited, maxAttempts, lastErr)
}

func (o *Orchestrator) exchange(ctx context.Context, enhanced, systemPrompt string) (string, error) {
	first, err := o.provider.Generate(ctx, enhanced, systemPrompt)
	if err != nil {
		return "", err
	}

	req, ok := toolcallx.Parse(first)
	if !ok {
		return first, nil
	}
	if _, known := o.registry.Lookup(req.Tool); !known {
		// The model named a tool we never offered; its text stands as
		// the final answer.
		log.Debug().Str("tool", req.Tool).Msg("unknown tool in model output")
		return first, nil
	}

	input := req.RawInput
	if strings.TrimSpace(input) == "" {
		input = "{}"
	}
	result := o.registry.Execute(req.Tool, input)
	log.Debug().Str("tool", req.Tool).Int("result_len", len(result)).Msg("tool executed")

	followup := fmt.Sprintf(followupPromptFormat, req.Tool, result)
	return o.provider.Generate(ctx, followup, systemPrompt)
}
