package contract

import "context"

// Provider is a single language-model backend. Generate returns the model's
// text or an error classified against the sentinel errors in this package;
// it never panics. Available must be consulted before every use, since
// client initialization can fail independently of configuration.
type Provider interface {
	Name() string
	Available() bool
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)
}

// MemoryStore keeps per-user conversation history and profile data. Turns
// are append-only; ClearHistory drops turns but keeps preferences.
type MemoryStore interface {
	AddMessage(ctx context.Context, turn ConversationTurn) error
	RecentMessages(ctx context.Context, limit int) ([]ConversationTurn, error)
	Preferences(ctx context.Context) (map[string]any, error)
	SavePreferences(ctx context.Context, prefs map[string]any) error
	SavePortfolio(ctx context.Context, portfolio map[string]any) error
	Portfolio(ctx context.Context) (map[string]any, error)
	ClearHistory(ctx context.Context) error
}
