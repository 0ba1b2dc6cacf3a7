package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	advisorx "github.com/tanpawarit/wealth-advisor-agent/agent/advisor"
	contractx "github.com/tanpawarit/wealth-advisor-agent/agent/contract"
	memoryx "github.com/tanpawarit/wealth-advisor-agent/agent/memory"
	providerx "github.com/tanpawarit/wealth-advisor-agent/agent/provider"
	toolx "github.com/tanpawarit/wealth-advisor-agent/agent/tool"
	configx "github.com/tanpawarit/wealth-advisor-agent/pkg/config"
	_ "github.com/tanpawarit/wealth-advisor-agent/pkg/logger/autoload"
	serverx "github.com/tanpawarit/wealth-advisor-agent/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	advisorCfg := configx.MustNew[advisorx.Config]("AGENT")
	openRouterCfg := configx.MustNew[providerx.OpenRouterConfig]("OPENROUTER")
	geminiCfg := configx.MustNew[providerx.GeminiConfig]("GEMINI")
	memoryCfg := configx.MustNew[memoryx.PostgresConfig]("MEMORY")
	serverCfg := configx.MustNew[serverx.Config]("SERVER")

	prov := advisorx.SelectProvider(ctx, *advisorCfg, *openRouterCfg, *geminiCfg)
	if prov != nil {
		log.Info().Str("provider", prov.Name()).Msg("model backend selected")
	}
	registry := toolx.DefaultRegistry()

	factory := func(ctx context.Context, userID string) (*advisorx.Advisor, error) {
		var store contractx.MemoryStore
		if memoryCfg.DSN != "" {
			ps, err := memoryx.NewPostgresStore(ctx, *memoryCfg, userID)
			if err != nil {
				log.Warn().Err(err).Str("user_id", userID).Msg("postgres memory unavailable, using in-process store")
			} else {
				store = ps
			}
		}
		return advisorx.New(userID, prov, registry, store)
	}

	sessions, err := advisorx.NewSessionRegistry(factory)
	if err != nil {
		log.Fatal().Err(err).Msg("build session registry")
	}

	srv := serverx.New(sessions, prov != nil)
	if err := srv.Run(ctx, *serverCfg); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
