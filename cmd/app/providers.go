package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/faqbot/internal/bootstrap"
	"github.com/yanqian/faqbot/internal/domain/admin"
	"github.com/yanqian/faqbot/internal/domain/faq"
	"github.com/yanqian/faqbot/internal/infra/config"
	"github.com/yanqian/faqbot/internal/infra/embedder"
	"github.com/yanqian/faqbot/internal/infra/faqrepo"
	"github.com/yanqian/faqbot/internal/infra/faqstore"
	"github.com/yanqian/faqbot/internal/infra/llm/openai"
	"github.com/yanqian/faqbot/internal/infra/queue"
	"github.com/yanqian/faqbot/internal/infra/schedule"
	"github.com/yanqian/faqbot/pkg/metrics"
)

func provideResources() *bootstrap.Resources {
	return &bootstrap.Resources{}
}

func provideFAQConfig(cfg *config.Config) faq.Config {
	fc := faq.DefaultConfig()
	fc.SimilarityThreshold = cfg.FAQ.SimilarityThreshold
	fc.KeywordWeight = cfg.FAQ.KeywordWeight
	fc.CacheTTL = cfg.Cache.TTL
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

func provideNormalizer(cfg faq.Config) *faq.Normalizer {
	return faq.NewNormalizer(cfg.NormalizerOptions())
}

// provideEmbedder builds the configured embedder and refuses to start when it
// cannot produce a vector.
func provideEmbedder(cfg *config.Config, logger *slog.Logger) (faq.Embedder, error) {
	var inner faq.Embedder
	switch cfg.Embedder.Provider {
	case config.EmbedderOpenAI:
		client, err := openai.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
		if err != nil {
			return nil, err
		}
		inner = embedder.NewOpenAIEmbedder(client, cfg.Embedder.Model, cfg.Embedder.MaxInputTokens, logger)
	default:
		inner = embedder.NewLexicalEmbedder(cfg.Embedder.Dimension)
	}
	var e faq.Embedder = inner
	if cfg.Embedder.CacheSize > 0 {
		e = embedder.NewCachedEmbedder(inner, cfg.Embedder.CacheSize, cfg.Embedder.CacheTTL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout(cfg))
	defer cancel()
	dim, err := faq.ProbeEmbedder(ctx, e)
	if err != nil {
		return nil, err
	}
	logger.Info("embedder ready", "provider", cfg.Embedder.Provider, "model", e.Model(), "dimension", dim)
	return e, nil
}

func probeTimeout(cfg *config.Config) time.Duration {
	if cfg.LLM.Timeout > 0 {
		return cfg.LLM.Timeout
	}
	return 30 * time.Second
}

func provideStore(cfg *config.Config, resources *bootstrap.Resources, logger *slog.Logger) (faqrepo.Store, error) {
	dsn := strings.TrimSpace(cfg.Catalog.DSN)
	if dsn == "" {
		logger.Info("catalog dsn not set, using memory repository")
		return faqrepo.NewMemoryRepository(), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store, err := faqrepo.Open(ctx, dsn, faqrepo.Options{MaxConns: cfg.Catalog.MaxConns, MinConns: cfg.Catalog.MinConns})
	if err != nil {
		return nil, fmt.Errorf("open catalog store: %w", err)
	}
	resources.Add("catalog store", func() error { store.Close(); return nil })
	logger.Info("catalog store enabled", "backend", fmt.Sprintf("%T", store))
	return store, nil
}

// provideCatalogSource prefers an object seed, then the database, then the
// YAML file.
func provideCatalogSource(cfg *config.Config, store faqrepo.Store, logger *slog.Logger) (faq.CatalogSource, error) {
	switch {
	case cfg.Catalog.Object.Enabled():
		obj := cfg.Catalog.Object
		logger.Info("faq catalog from object storage", "bucket", obj.Bucket, "key", obj.Key)
		return faqrepo.NewObjectSource(faqrepo.ObjectOptions{
			Endpoint:  obj.Endpoint,
			Bucket:    obj.Bucket,
			Key:       obj.Key,
			AccessKey: obj.AccessKey,
			SecretKey: obj.SecretKey,
			Region:    obj.Region,
			UseSSL:    obj.UseSSL,
		})
	case strings.TrimSpace(cfg.Catalog.DSN) != "":
		return store, nil
	default:
		logger.Info("faq catalog from file", "path", cfg.Catalog.File)
		return faqrepo.NewFileSource(cfg.Catalog.File), nil
	}
}

func provideEmbeddingArchive(cfg *config.Config, store faqrepo.Store) faq.EmbeddingArchive {
	if !cfg.Catalog.ArchiveEmbeddings {
		return nil
	}
	if archive, ok := store.(faq.EmbeddingArchive); ok {
		return archive
	}
	return nil
}

func provideCatalogLoader(cfg faq.Config, source faq.CatalogSource, normalizer *faq.Normalizer, emb faq.Embedder, archive faq.EmbeddingArchive, logger *slog.Logger) *faq.CatalogLoader {
	return faq.NewCatalogLoader(source, normalizer, emb, faq.BuildOptions{
		Concurrency: cfg.EmbedConcurrency,
		AllowEmpty:  cfg.AllowEmptyCatalog,
		Archive:     archive,
		Logger:      logger.With("component", "faq.catalog"),
	})
}

// provideCatalogHolder performs the startup load. A catalog that cannot be
// read aborts startup.
func provideCatalogHolder(cfg *config.Config, loader *faq.CatalogLoader, logger *slog.Logger) (*faq.CatalogHolder, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Catalog.LoadTimeout)
	defer cancel()
	catalog, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	info := catalog.Info()
	logger.Info("faq catalog loaded", "entries", info.Entries, "model", info.Model, "dimension", info.Dimension)
	return faq.NewCatalogHolder(catalog), nil
}

func usesValkey(cfg *config.Config) bool {
	return cfg.Cache.Backend == config.CacheBackendValkey ||
		(cfg.Conversation.Enabled && cfg.Conversation.Queue == config.QueueValkey)
}

func provideValkeyClient(cfg *config.Config, resources *bootstrap.Resources, logger *slog.Logger) (valkey.Client, error) {
	if !usesValkey(cfg) {
		return nil, nil
	}
	opt, err := buildValkeyOptions(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid valkey configuration: %w", err)
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("create valkey client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Warn("valkey ping failed, commands will degrade until it recovers", "error", err)
	}
	resources.Add("valkey", func() error { client.Close(); return nil })
	logger.Info("valkey client enabled", "addr", cfg.Cache.Valkey.Addr)
	return client, nil
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Cache.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Cache.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Cache.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideResponseCache(cfg *config.Config, client valkey.Client, logger *slog.Logger) faq.ResponseCache {
	if cfg.Cache.Backend == config.CacheBackendValkey && client != nil {
		return faqstore.NewValkeyCache(client, faqstore.ValkeyOptions{
			Prefix:       cfg.Cache.Valkey.Prefix,
			TTL:          cfg.Cache.TTL,
			LockTTL:      cfg.Cache.Valkey.LockTTL,
			PollInterval: cfg.Cache.Valkey.PollInterval,
		}, logger)
	}
	return faqstore.NewMemoryCache(cfg.Cache.Size, cfg.Cache.TTL)
}

func provideConversationLog(cfg *config.Config, store faqrepo.Store, resources *bootstrap.Resources, logger *slog.Logger) (faq.ConversationLog, error) {
	if !cfg.Conversation.Enabled {
		return nil, nil
	}
	dsn := cfg.ConversationDSN()
	if dsn == strings.TrimSpace(cfg.Catalog.DSN) {
		return store, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logStore, err := faqrepo.Open(ctx, dsn, faqrepo.Options{MaxConns: cfg.Catalog.MaxConns})
	if err != nil {
		return nil, fmt.Errorf("open conversation store: %w", err)
	}
	resources.Add("conversation store", func() error { logStore.Close(); return nil })
	logger.Info("conversation log enabled", "backend", fmt.Sprintf("%T", logStore))
	return logStore, nil
}

func provideTurnRecorder(cfg *config.Config, log faq.ConversationLog, client valkey.Client, resources *bootstrap.Resources, logger *slog.Logger) faq.TurnRecorder {
	if log == nil {
		return nil
	}
	var recorder queue.Recorder
	if cfg.Conversation.Queue == config.QueueValkey && client != nil {
		q := queue.NewValkeyQueue(client, cfg.Conversation.QueueKey, log, logger)
		q.Start(cfg.Conversation.Workers)
		recorder = q
	} else {
		recorder = queue.NewImmediateQueue(log, logger)
	}
	resources.Add("turn queue", recorder.Close)
	return recorder
}

func provideCounters() *metrics.Counters {
	return metrics.NewCounters()
}

func provideAdminConfig(cfg *config.Config) admin.Config {
	return admin.Config{
		Username:     cfg.Admin.Username,
		PasswordHash: cfg.Admin.PasswordHash,
		Secret:       cfg.Admin.Secret,
		TokenTTL:     cfg.Admin.TokenTTL,
	}
}

func provideReloader(cfg *config.Config, svc faq.Service, logger *slog.Logger) (*schedule.CatalogReloader, error) {
	return schedule.NewCatalogReloader(cfg.Catalog.ReloadSchedule, svc, cfg.Catalog.LoadTimeout, logger)
}
