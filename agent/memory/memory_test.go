package memory

import (
	"context"
	"errors"
	"reflect"
	"testing"

	contractx "github.com/tanpawarit/wealth-advisor-agent/agent/contract"
)

func TestStoreMessageOrdering(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore("u1")

	turns := []contractx.ConversationTurn{
		{Role: contractx.RoleUser, Content: "first question"},
		{Role: contractx.RoleAssistant, Content: "first answer"},
		{Role: contractx.RoleUser, Content: "second question"},
		{Role: contractx.RoleAssistant, Content: "second answer"},
	}
	for _, turn := range turns {
		if err := s.AddMessage(ctx, turn); err != nil {
			t.Fatalf("AddMessage() error = %v", err)
		}
	}

	got, err := s.RecentMessages(ctx, 10)
	if err != nil {
		t.Fatalf("RecentMessages() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	for i := range turns {
		if !reflect.DeepEqual(got[i], turns[i]) {
			t.Fatalf("turn[%d] = %+v, want %+v", i, got[i], turns[i])
		}
	}
}

func TestStoreRecentMessagesLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore("u1")
	for _, content := range []string{"a", "b", "c"} {
		if err := s.AddMessage(ctx, contractx.ConversationTurn{Role: contractx.RoleUser, Content: content}); err != nil {
			t.Fatalf("AddMessage() error = %v", err)
		}
	}

	got, err := s.RecentMessages(ctx, 2)
	if err != nil {
		t.Fatalf("RecentMessages() error = %v", err)
	}
	if len(got) != 2 || got[0].Content != "b" || got[1].Content != "c" {
		t.Fatalf("got = %+v", got)
	}
}

func TestStoreRejectsUnknownRole(t *testing.T) {
	t.Parallel()

	s := NewStore("u1")
	err := s.AddMessage(context.Background(), contractx.ConversationTurn{Role: "system", Content: "x"})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestStorePreferencesMerge(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore("u1")

	if err := s.SavePreferences(ctx, map[string]any{"age": 35, "goal": "growth"}); err != nil {
		t.Fatalf("SavePreferences() error = %v", err)
	}
	if err := s.SavePreferences(ctx, map[string]any{"goal": "retirement"}); err != nil {
		t.Fatalf("SavePreferences() error = %v", err)
	}

	prefs, err := s.Preferences(ctx)
	if err != nil {
		t.Fatalf("Preferences() error = %v", err)
	}
	if prefs["age"] != 35 {
		t.Fatalf("age = %v", prefs["age"])
	}
	if prefs["goal"] != "retirement" {
		t.Fatalf("goal = %v", prefs["goal"])
	}
}

func TestStoreClearHistoryKeepsProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore("u1")

	if err := s.AddMessage(ctx, contractx.ConversationTurn{Role: contractx.RoleUser, Content: "hi"}); err != nil {
		t.Fatalf("AddMessage() error = %v", err)
	}
	if err := s.SavePreferences(ctx, map[string]any{"risk_tolerance": "moderate"}); err != nil {
		t.Fatalf("SavePreferences() error = %v", err)
	}
	if err := s.SavePortfolio(ctx, map[string]any{"holdings": []any{}}); err != nil {
		t.Fatalf("SavePortfolio() error = %v", err)
	}

	if err := s.ClearHistory(ctx); err != nil {
		t.Fatalf("ClearHistory() error = %v", err)
	}

	msgs, _ := s.RecentMessages(ctx, 10)
	if len(msgs) != 0 {
		t.Fatalf("messages = %+v, want none", msgs)
	}
	prefs, _ := s.Preferences(ctx)
	if prefs["risk_tolerance"] != "moderate" {
		t.Fatalf("preferences lost on clear: %+v", prefs)
	}
	pf, _ := s.Portfolio(ctx)
	if pf == nil {
		t.Fatal("portfolio lost on clear")
	}
}

func TestStorePortfolioUnsetIsNil(t *testing.T) {
	t.Parallel()

	pf, err := NewStore("u1").Portfolio(context.Background())
	if err != nil {
		t.Fatalf("Portfolio() error = %v", err)
	}
	if pf != nil {
		t.Fatalf("portfolio = %+v, want nil", pf)
	}
}

func TestStorePreferencesCopyIsolation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore("u1")
	if err := s.SavePreferences(ctx, map[string]any{"age": 40}); err != nil {
		t.Fatalf("SavePreferences() error = %v", err)
	}

	prefs, _ := s.Preferences(ctx)
	prefs["age"] = 99

	again, _ := s.Preferences(ctx)
	if again["age"] != 40 {
		t.Fatalf("store mutated through returned map: %+v", again)
	}
}
