package advisor

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/wealth-advisor-agent/agent/contract"
	providerx "github.com/tanpawarit/wealth-advisor-agent/agent/provider"
)

type Config struct {
	// PrimaryModel picks the preferred backend: "openrouter", "gemini", or
	// "offline".
	PrimaryModel string `envconfig:"PRIMARY_MODEL" split_words:"true" default:"openrouter"`
}

// SelectProvider resolves the backend for new sessions: the configured
// preference first, then ambient Google credentials, then nil for the
// offline responder.
func SelectProvider(ctx context.Context, cfg Config, orCfg providerx.OpenRouterConfig, gemCfg providerx.GeminiConfig) contractx.Provider {
	switch strings.ToLower(strings.TrimSpace(cfg.PrimaryModel)) {
	case "openrouter":
		if p := providerx.NewOpenRouter(orCfg); p.Available() {
			return p
		}
	case "gemini":
		if p, err := providerx.NewGemini(ctx, gemCfg); err == nil && p.Available() {
			return p
		} else if err != nil {
			log.Warn().Err(err).Msg("gemini init failed")
		}
	}

	if os.Getenv("GOOGLE_API_KEY") != "" || os.Getenv("GEMINI_API_KEY") != "" {
		if p, err := providerx.NewGemini(ctx, gemCfg); err == nil && p.Available() {
			return p
		}
	}

	log.Info().Msg("no model backend available, running offline")
	return nil
}

// Factory builds the advisor for a user the first time they appear.
type Factory func(ctx context.Context, userID string) (*Advisor, error)

// SessionRegistry maps user ids to their advisor instances.
type SessionRegistry struct {
	mu      sync.RWMutex
	factory Factory
	agents  map[string]*Advisor
}

func NewSessionRegistry(factory Factory) (*SessionRegistry, error) {
	if factory == nil {
		return nil, fmt.Errorf("%w: session registry needs a factory", contractx.ErrValidation)
	}
	return &SessionRegistry{
		factory: factory,
		agents:  map[string]*Advisor{},
	}, nil
}

// Get returns the user's advisor, creating it on first use.
func (r *SessionRegistry) Get(ctx context.Context, userID string) (*Advisor, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", contractx.ErrValidation)
	}

	r.mu.RLock()
	a, ok := r.agents[userID]
	r.mu.RUnlock()
	if ok {
		return a, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.agents[userID]; ok {
		return a, nil
	}
	a, err := r.factory(ctx, userID)
	if err != nil {
		return nil, err
	}
	r.agents[userID] = a
	return a, nil
}

// Peek returns an existing session without creating one.
func (r *SessionRegistry) Peek(userID string) (*Advisor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[userID]
	return a, ok
}
