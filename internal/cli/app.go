package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aryanrai97861/cortexhub/config"
	"github.com/aryanrai97861/cortexhub/model"
	"github.com/aryanrai97861/cortexhub/model/anthropic"
	"github.com/aryanrai97861/cortexhub/model/gemini"
	"github.com/aryanrai97861/cortexhub/model/openai"
	"github.com/aryanrai97861/cortexhub/retrieval"
	"github.com/aryanrai97861/cortexhub/tool"
)

// buildModel constructs the configured provider adapter wrapped with bounded
// retry for transient failures.
func buildModel(ctx context.Context, cfg *config.Config) (model.Model, error) {
	var (
		m   model.Model
		err error
	)
	switch cfg.ModelProvider {
	case "gemini":
		m, err = gemini.NewModel(ctx, func(o *gemini.Options) {
			o.APIKey = cfg.GeminiAPIKey
			if cfg.ModelName != "" {
				o.Model = cfg.ModelName
			}
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
	case "openai":
		m = openai.NewModel(func(o *openai.Options) {
			if cfg.ModelName != "" {
				o.Model = cfg.ModelName
			}
		})
	case "anthropic":
		m = anthropic.NewModel(func(o *anthropic.Options) {
			o.APIKey = cfg.AnthropicAPIKey
			if cfg.ModelName != "" {
				o.Model = cfg.ModelName
			}
		})
	default:
		return nil, &config.ConfigurationError{Field: "MODEL_PROVIDER", Reason: fmt.Sprintf("unknown provider %q", cfg.ModelProvider)}
	}
	return model.WithRetry(m), nil
}

// buildRetrieval opens the vector store and ties it to the embedder. Document
// retrieval runs on OpenAI embeddings regardless of the chat model provider.
func buildRetrieval(cfg *config.Config, logger zerolog.Logger) (*retrieval.Service, *retrieval.VectorStore, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, nil, &config.ConfigurationError{Field: "OPENAI_API_KEY", Reason: "required for document retrieval (embeddings)"}
	}
	embedder := retrieval.NewOpenAIEmbedder()
	store, err := retrieval.NewVectorStore(cfg.VectorDBPath, embedder.Dimension())
	if err != nil {
		return nil, nil, err
	}
	service := retrieval.NewService(store, embedder, func(o *retrieval.ServiceOptions) {
		o.Logger = logger
	})
	return service, store, nil
}

// buildRegistry registers every tool the current configuration can back.
// Tools with missing credentials are skipped rather than failing startup.
func buildRegistry(cfg *config.Config, logger zerolog.Logger) (*tool.Registry, func(), error) {
	registry := tool.NewRegistry()
	cleanup := func() {}

	if cfg.TavilyAPIKey != "" {
		if err := registry.Register(tool.NewWebSearchTool(cfg.TavilyAPIKey)); err != nil {
			return nil, cleanup, err
		}
	} else {
		logger.Warn().Msg("TAVILY_API_KEY not set, web_search tool disabled")
	}

	if cfg.OpenAIAPIKey != "" {
		service, store, err := buildRetrieval(cfg, logger)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { store.Close() }
		queryTool, err := retrieval.NewQueryTool(service)
		if err != nil {
			return nil, cleanup, err
		}
		if err := registry.Register(queryTool); err != nil {
			return nil, cleanup, err
		}
	} else {
		logger.Warn().Msg("OPENAI_API_KEY not set, query_documents tool disabled")
	}

	return registry, cleanup, nil
}
