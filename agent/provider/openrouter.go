package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	contractx "github.com/tanpawarit/wealth-advisor-agent/agent/contract"
)

type OpenRouterConfig struct {
	BaseURL             string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey              string        `envconfig:"API_KEY" split_words:"true"`
	Model               string        `envconfig:"MODEL" split_words:"true" default:"nex-agi/deepseek-v3.1-nex-n1:free"`
	MaxCompletionTokens int64         `envconfig:"MAX_COMPLETION_TOKENS" split_words:"true" default:"2000"`
	Temperature         float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.7"`
	Timeout             time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL             string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName            string        `envconfig:"SITE_NAME" split_words:"true"`
}

// OpenRouter generates text through the OpenRouter gateway using the OpenAI
// wire protocol.
type OpenRouter struct {
	client *openaisdk.Client
	cfg    OpenRouterConfig
	sleep  sleeper
}

var _ contractx.Provider = (*OpenRouter)(nil)

// NewOpenRouter builds the provider. A missing API key yields an unavailable
// provider rather than an error, mirroring NewGemini.
func NewOpenRouter(cfg OpenRouterConfig) *OpenRouter {
	p := &OpenRouter{cfg: cfg, sleep: sleepContext}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return p
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if trimmed := strings.TrimRight(cfg.BaseURL, "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}

	// OpenRouter attribution headers.
	if cfg.SiteURL != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.SiteURL))
	}
	if cfg.SiteName != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.SiteName))
	}

	client := openaisdk.NewClient(opts...)
	p.client = &client
	return p
}

func (p *OpenRouter) Name() string { return "openrouter" }

func (p *OpenRouter) Available() bool { return p != nil && p.client != nil }

func (p *OpenRouter) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	if !p.Available() {
		return "", fmt.Errorf("%w: openrouter has no API key", contractx.ErrProviderUnavailable)
	}

	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openaisdk.SystemMessage(systemPrompt))
	}
	messages = append(messages, openaisdk.UserMessage(prompt))

	params := openaisdk.ChatCompletionNewParams{
		Model:               openaisdk.ChatModel(strings.TrimSpace(p.cfg.Model)),
		Messages:            messages,
		Temperature:         openaisdk.Float(float64(p.cfg.Temperature)),
		MaxCompletionTokens: openaisdk.Int(p.cfg.MaxCompletionTokens),
	}

	out, err := withRetry(ctx, p.Name(), p.sleep, func() (string, error) {
		resp, err := p.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("empty response")
		}
		return resp.Choices[0].Message.Content, nil
	})
	return out, classify(err)
}
