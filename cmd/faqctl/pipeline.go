package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yanqian/faqbot/internal/domain/faq"
	"github.com/yanqian/faqbot/internal/infra/config"
	"github.com/yanqian/faqbot/internal/infra/embedder"
	"github.com/yanqian/faqbot/internal/infra/faqrepo"
	"github.com/yanqian/faqbot/internal/infra/faqstore"
	"github.com/yanqian/faqbot/internal/infra/llm/openai"
)

func faqConfig(cfg *config.Config) faq.Config {
	fc := faq.DefaultConfig()
	fc.SimilarityThreshold = cfg.FAQ.SimilarityThreshold
	fc.KeywordWeight = cfg.FAQ.KeywordWeight
	fc.RequestTimeout = cfg.FAQ.RequestTimeout
	fc.Brand = cfg.FAQ.Brand
	fc.ContactPhone = cfg.FAQ.ContactPhone
	fc.Apology = cfg.FAQ.Apology
	fc.Welcome = faq.WelcomeMessage(cfg.FAQ.Brand)
	fc.Lemmatize = cfg.FAQ.Lemmatize
	fc.StripPunctuation = cfg.FAQ.StripPunctuation
	fc.AllowEmptyCatalog = cfg.Catalog.AllowEmpty
	fc.EmbedConcurrency = cfg.Catalog.EmbedConcurrency
	return fc
}

func newEmbedder(cfg *config.Config, logger *slog.Logger) (faq.Embedder, error) {
	if cfg.Embedder.Provider != config.EmbedderOpenAI {
		return embedder.NewLexicalEmbedder(cfg.Embedder.Dimension), nil
	}
	client, err := openai.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
	if err != nil {
		return nil, err
	}
	return embedder.NewOpenAIEmbedder(client, cfg.Embedder.Model, cfg.Embedder.MaxInputTokens, logger), nil
}

// localService builds the reply pipeline in-process with a memory cache and
// no transcript. The returned func releases the catalog store.
func localService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (faq.Service, func(), error) {
	fc := faqConfig(cfg)
	normalizer := faq.NewNormalizer(fc.NormalizerOptions())
	emb, err := newEmbedder(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if _, err := faq.ProbeEmbedder(ctx, emb); err != nil {
		return nil, nil, err
	}

	release := func() {}
	var source faq.CatalogSource
	switch {
	case cfg.Catalog.Object.Enabled():
		obj := cfg.Catalog.Object
		source, err = faqrepo.NewObjectSource(faqrepo.ObjectOptions{
			Endpoint:  obj.Endpoint,
			Bucket:    obj.Bucket,
			Key:       obj.Key,
			AccessKey: obj.AccessKey,
			SecretKey: obj.SecretKey,
			Region:    obj.Region,
			UseSSL:    obj.UseSSL,
		})
		if err != nil {
			return nil, nil, err
		}
	case cfg.Catalog.DSN != "":
		store, err := faqrepo.Open(ctx, cfg.Catalog.DSN, faqrepo.Options{MaxConns: 2})
		if err != nil {
			return nil, nil, fmt.Errorf("open catalog store: %w", err)
		}
		source = store
		release = store.Close
	default:
		source = faqrepo.NewFileSource(cfg.Catalog.File)
	}

	loader := faq.NewCatalogLoader(source, normalizer, emb, faq.BuildOptions{
		Concurrency: fc.EmbedConcurrency,
		AllowEmpty:  fc.AllowEmptyCatalog,
		Logger:      logger,
	})
	catalog, err := loader.Load(ctx)
	if err != nil {
		release()
		return nil, nil, err
	}
	svc := faq.NewService(fc, normalizer, emb, faq.NewCatalogHolder(catalog), loader,
		faqstore.NewMemoryCache(cfg.Cache.Size, cfg.Cache.TTL), nil, nil, logger)
	return svc, release, nil
}
