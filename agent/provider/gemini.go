package provider

import (
	"context"
	"fmt"
	"os"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	contractx "github.com/tanpawarit/wealth-advisor-agent/agent/contract"
)

type GeminiConfig struct {
	APIKey          string  `envconfig:"API_KEY" split_words:"true"`
	Model           string  `envconfig:"MODEL" split_words:"true" default:"gemini-2.0-flash-lite"`
	Temperature     float32 `envconfig:"TEMPERATURE" split_words:"true" default:"0.7"`
	MaxOutputTokens int32   `envconfig:"MAX_OUTPUT_TOKENS" split_words:"true" default:"2048"`
}

// resolveKey falls back to the ambient Google credentials when the config
// carries no key of its own.
func (c GeminiConfig) resolveKey() string {
	if key := strings.TrimSpace(c.APIKey); key != "" {
		return key
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("GEMINI_API_KEY")
}

// Gemini generates text through the Google Generative AI API.
type Gemini struct {
	client *genai.Client
	cfg    GeminiConfig
	sleep  sleeper
}

var _ contractx.Provider = (*Gemini)(nil)

// NewGemini builds the provider, or returns an unavailable one when no API
// key is present. Callers check Available before use instead of treating a
// missing key as fatal.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	key := cfg.resolveKey()
	if key == "" {
		return &Gemini{cfg: cfg, sleep: sleepContext}, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Gemini{client: client, cfg: cfg, sleep: sleepContext}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Available() bool { return g != nil && g.client != nil }

func (g *Gemini) Close() error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *Gemini) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	if !g.Available() {
		return "", fmt.Errorf("%w: gemini has no API key", contractx.ErrProviderUnavailable)
	}

	model := g.client.GenerativeModel(g.cfg.Model)
	model.SetTemperature(g.cfg.Temperature)
	model.SetMaxOutputTokens(g.cfg.MaxOutputTokens)
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	}

	out, err := withRetry(ctx, g.Name(), g.sleep, func() (string, error) {
		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return "", err
		}
		return geminiText(resp)
	})
	return out, classify(err)
}

func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("response carried no text parts")
	}
	return sb.String(), nil
}
