// Package bootstrap assembles the storage backend, the inference client and
// the application services from a Config. Both entry points use it.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/medigenie/internal/client/inference"
	"github.com/dmitrijs2005/medigenie/internal/client/repositories/kv"
	"github.com/dmitrijs2005/medigenie/internal/client/services"
	"github.com/dmitrijs2005/medigenie/internal/client/storage"
	"github.com/dmitrijs2005/medigenie/internal/config"
	"github.com/dmitrijs2005/medigenie/internal/logging"
)

// Open builds the services. The returned close function releases the
// storage backend.
func Open(ctx context.Context, cfg *config.Config, log logging.Logger) (*services.Services, func() error, error) {
	return open(ctx, cfg, log, nil)
}

// open lets tests replace the inference backend.
func open(ctx context.Context, cfg *config.Config, log logging.Logger, gen inference.Generator) (*services.Services, func() error, error) {
	if log == nil {
		log = logging.Nop()
	}

	kvs, err := kv.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("storage init error: %w", err)
	}
	log.Info(ctx, "storage opened", "backend", kvs.Backend, "sealed", cfg.Passphrase != "")

	if gen == nil {
		gen = inference.NewGeminiClient(inference.GeminiOptions{
			BaseURL:   cfg.InferenceBaseURL,
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MapsModel: cfg.MapsModel,
			Timeout:   cfg.InferenceTimeout,
		}, log.With("module", "gemini"))
	}

	store := storage.NewStore(kvs, storage.NewCodec(cfg.Passphrase))
	return services.New(store, gen, log), kvs.Close, nil
}
