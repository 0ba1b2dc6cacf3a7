// Package memory keeps per-user conversation history, preferences, and the
// last saved portfolio. Store is the in-process default; PostgresStore adds
// best-effort persistence behind the same interface.
package memory

import (
	"context"
	"fmt"
	"sync"

	contractx "github.com/tanpawarit/wealth-advisor-agent/agent/contract"
)

// Store is a mutex-guarded in-process memory for a single user.
type Store struct {
	mu          sync.RWMutex
	userID      string
	turns       []contractx.ConversationTurn
	preferences map[string]any
	portfolio   map[string]any
}

var _ contractx.MemoryStore = (*Store)(nil)

func NewStore(userID string) *Store {
	return &Store{
		userID:      userID,
		preferences: map[string]any{},
	}
}

func (s *Store) UserID() string { return s.userID }

func (s *Store) AddMessage(_ context.Context, turn contractx.ConversationTurn) error {
	if turn.Role != contractx.RoleUser && turn.Role != contractx.RoleAssistant {
		return fmt.Errorf("%w: unknown role %q", contractx.ErrValidation, turn.Role)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turn)
	return nil
}

// RecentMessages returns up to limit most recent turns, oldest first.
func (s *Store) RecentMessages(_ context.Context, limit int) ([]contractx.ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := 0
	if limit > 0 && len(s.turns) > limit {
		start = len(s.turns) - limit
	}
	out := make([]contractx.ConversationTurn, len(s.turns)-start)
	copy(out, s.turns[start:])
	return out, nil
}

func (s *Store) Preferences(_ context.Context) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyMap(s.preferences), nil
}

// SavePreferences merges the given keys into the stored profile.
func (s *Store) SavePreferences(_ context.Context, prefs map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range prefs {
		s.preferences[k] = v
	}
	return nil
}

func (s *Store) SavePortfolio(_ context.Context, portfolio map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.portfolio = copyMap(portfolio)
	return nil
}

func (s *Store) Portfolio(_ context.Context) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.portfolio == nil {
		return nil, nil
	}
	return copyMap(s.portfolio), nil
}

// ClearHistory drops conversation turns but keeps preferences and portfolio.
func (s *Store) ClearHistory(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
	return nil
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
