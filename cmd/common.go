package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spigell/candidate-matcher/internal/embedding"
	"github.com/spigell/candidate-matcher/internal/embedding/gemini"
	"github.com/spigell/candidate-matcher/internal/logger"
	"github.com/spigell/candidate-matcher/internal/matching"
	"github.com/spigell/candidate-matcher/internal/secrets"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// setup builds the logger, the embedding provider and the engine. Any failure
// here is fatal: the engine cannot score without a valid config and model.
func setup(ctx context.Context) (*zap.Logger, *matching.Engine) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil || config.Embedding == nil {
		logger.Fatal("config is required")
	}

	logger.Info("starting the candidate-matcher", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if err := config.Matching.Validate(); err != nil {
		logger.Fatal("invalid matching configuration", zap.Error(err))
	}

	provider, err := newProvider(config.Embedding, logger)
	if err != nil {
		logger.Fatal("building embedding provider", zap.Error(err))
	}

	if err := provider.Warm(ctx); err != nil {
		logger.Fatal("loading embedding model", zap.Error(err))
	}

	engine, err := matching.NewEngine(config.Matching, provider, logger)
	if err != nil {
		logger.Fatal("building matching engine", zap.Error(err))
	}

	return logger, engine
}

func newProvider(cfg *EmbeddingConfig, base *zap.Logger) (*embedding.Lazy, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))

	switch provider {
	case "", embedding.HashedName:
		dim := cfg.Dimension
		if dim <= 0 {
			dim = embedding.DefaultHashedDimension
		}

		providerLogger := logger.WithCommonFields(base, embedding.HashedName, embedding.HashedModel)
		return embedding.NewLazy(embedding.HashedName, embedding.HashedModel, dim,
			func(context.Context) (embedding.Provider, error) {
				return embedding.NewHashed(dim), nil
			},
			providerLogger,
		), nil

	case gemini.Name:
		if cfg.Gemini == nil {
			return nil, errors.New("gemini configuration is required when embedding.provider is gemini")
		}

		gcfg := gemini.Config{
			Model:        cfg.Gemini.Model,
			Dimension:    cfg.Gemini.Dimension,
			MaxRetries:   cfg.Gemini.MaxRetries,
			MaxLogLength: cfg.Gemini.MaxLogLength,
		}
		if gcfg.Model == "" {
			gcfg.Model = gemini.DefaultModel
		}
		if gcfg.Dimension <= 0 {
			gcfg.Dimension = gemini.DefaultDimension
		}

		providerLogger := logger.WithCommonFields(base, gemini.Name, gcfg.Model)
		return embedding.NewLazy(gemini.Name, gcfg.Model, gcfg.Dimension,
			func(ctx context.Context) (embedding.Provider, error) {
				apiKey, err := secrets.Load(secrets.Source{
					Name: "gemini api key",
					File: cfg.Gemini.APIKeyFile,
					Env:  "GEMINI_API_KEY",
				})
				if err != nil {
					return nil, fmt.Errorf("%w (set embedding.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
				}

				gcfg.APIKey = apiKey
				embedder, err := gemini.NewEmbedder(ctx, gcfg, providerLogger.With(
					zap.Int("embedding_retry_attempts", gcfg.MaxRetries),
				))
				if err != nil {
					return nil, err
				}
				return embedder, nil
			},
			providerLogger,
		), nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	return writeJSON(os.Stdout, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
