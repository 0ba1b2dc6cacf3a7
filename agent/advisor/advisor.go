// Package advisor is the conversational facade: it owns per-user memory,
// routes chat turns through the tool orchestrator when a model backend is
// available, and degrades to a deterministic offline responder when none is.
package advisor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/wealth-advisor-agent/agent/contract"
	memoryx "github.com/tanpawarit/wealth-advisor-agent/agent/memory"
	orchestratorx "github.com/tanpawarit/wealth-advisor-agent/agent/orchestrator"
	portfoliox "github.com/tanpawarit/wealth-advisor-agent/agent/portfolio"
	promptx "github.com/tanpawarit/wealth-advisor-agent/agent/prompt"
	toolx "github.com/tanpawarit/wealth-advisor-agent/agent/tool"
)

type Advisor struct {
	userID   string
	provider contractx.Provider
	orch     *orchestratorx.Orchestrator
	memory   contractx.MemoryStore
	registry *toolx.Registry
	system   string
}

// New builds an advisor for one user. A nil provider means every chat turn
// takes the offline path; a nil store gets an in-process one.
func New(userID string, provider contractx.Provider, registry *toolx.Registry, store contractx.MemoryStore) (*Advisor, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", contractx.ErrValidation)
	}
	if registry == nil {
		registry = toolx.DefaultRegistry()
	}
	if store == nil {
		store = memoryx.NewStore(userID)
	}

	a := &Advisor{
		userID:   userID,
		provider: provider,
		memory:   store,
		registry: registry,
		system:   promptx.LoadPromptSet().System,
	}
	if provider != nil {
		orch, err := orchestratorx.New(provider, registry)
		if err != nil {
			return nil, err
		}
		a.orch = orch
	}
	return a, nil
}

func (a *Advisor) UserID() string { return a.userID }

// Chat handles one user turn. The user message is recorded before
// generation and the reply is recorded after it, even when generation
// failed and the reply is an error string.
func (a *Advisor) Chat(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: message is required", contractx.ErrValidation)
	}

	if err := a.memory.AddMessage(ctx, contractx.ConversationTurn{Role: contractx.RoleUser, Content: text}); err != nil {
		log.Warn().Err(err).Str("user_id", a.userID).Msg("record user turn")
	}

	var response string
	if a.orch == nil || !a.provider.Available() {
		response = a.offlineResponse(text)
	} else {
		input := text
		if prefs, err := a.memory.Preferences(ctx); err == nil && len(prefs) > 0 {
			input = profilePrefix(prefs) + "\n\n" + text
		}
		out, err := a.orch.Respond(ctx, input, a.system)
		if err != nil {
			log.Warn().Err(err).Str("user_id", a.userID).Msg("chat generation failed")
			response = fmt.Sprintf("Error generating response: %v", err)
		} else {
			response = out
		}
	}

	if err := a.memory.AddMessage(ctx, contractx.ConversationTurn{Role: contractx.RoleAssistant, Content: response}); err != nil {
		log.Warn().Err(err).Str("user_id", a.userID).Msg("record assistant turn")
	}
	return response, nil
}

func (a *Advisor) UpdatePreferences(ctx context.Context, prefs map[string]any) error {
	return a.memory.SavePreferences(ctx, prefs)
}

func (a *Advisor) UpdatePortfolio(ctx context.Context, portfolio map[string]any) error {
	return a.memory.SavePortfolio(ctx, portfolio)
}

func (a *Advisor) ClearConversation(ctx context.Context) error {
	return a.memory.ClearHistory(ctx)
}

// MemorySummary renders what the advisor knows about the user.
func (a *Advisor) MemorySummary(ctx context.Context) (string, error) {
	prefs, err := a.memory.Preferences(ctx)
	if err != nil {
		return "", err
	}
	pf, err := a.memory.Portfolio(ctx)
	if err != nil {
		return "", err
	}
	msgs, err := a.memory.RecentMessages(ctx, 0)
	if err != nil {
		return "", err
	}

	var parts []string
	if len(prefs) > 0 {
		parts = append(parts, "**User Profile:**")
		for _, k := range sortedKeys(prefs) {
			parts = append(parts, fmt.Sprintf("- %s: %v", portfoliox.TitleWords(k), prefs[k]))
		}
	}
	if pf != nil {
		parts = append(parts, fmt.Sprintf("\n**Portfolio Value:** %s", portfoliox.FormatUSD(holdingsTotal(pf))))
	}
	parts = append(parts, fmt.Sprintf("\n**Conversation History:** %d messages", len(msgs)))
	return strings.Join(parts, "\n"), nil
}

// profilePrefix renders saved preferences as context ahead of the user
// message, e.g. "[User profile: age: 35, goal: growth]".
func profilePrefix(prefs map[string]any) string {
	pairs := make([]string, 0, len(prefs))
	for _, k := range sortedKeys(prefs) {
		pairs = append(pairs, fmt.Sprintf("%s: %v", k, prefs[k]))
	}
	return "[User profile: " + strings.Join(pairs, ", ") + "]"
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func holdingsTotal(pf map[string]any) float64 {
	holdings, _ := pf["holdings"].([]any)
	var total float64
	for _, h := range holdings {
		m, ok := h.(map[string]any)
		if !ok {
			continue
		}
		if v, ok := m["value"].(float64); ok {
			total += v
		}
	}
	return total
}
