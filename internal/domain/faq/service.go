package faq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/yanqian/faqbot/pkg/errors"
	"github.com/yanqian/faqbot/pkg/metrics"
	"github.com/yanqian/faqbot/pkg/util"
)

// Service exposes the FAQ chatbot.
type Service interface {
	// GenerateResponse always returns a displayable reply.
	GenerateResponse(ctx context.Context, message string) string
	Respond(ctx context.Context, req Request) Reply
	Reload(ctx context.Context) (CatalogInfo, error)
	ClearCache(ctx context.Context) error
	Stats() Stats
	Welcome() string
}

type service struct {
	cfg        Config
	normalizer *Normalizer
	embedder   Embedder
	catalogs   *CatalogHolder
	loader     *CatalogLoader
	matcher    Matcher
	defaults   *DefaultTable
	cache      ResponseCache
	recorder   TurnRecorder
	counters   *metrics.Counters
	logger     *slog.Logger
	clock      util.Clock

	reloadMu sync.Mutex
}

// NewService wires up the FAQ domain. recorder may be nil.
func NewService(
	cfg Config,
	normalizer *Normalizer,
	embedder Embedder,
	catalogs *CatalogHolder,
	loader *CatalogLoader,
	cache ResponseCache,
	recorder TurnRecorder,
	counters *metrics.Counters,
	logger *slog.Logger,
) Service {
	if cfg.Apology == "" {
		cfg.Apology = DefaultApology
	}
	if cfg.Brand == "" {
		cfg.Brand = DefaultBrand
	}
	if cfg.ContactPhone == "" {
		cfg.ContactPhone = DefaultContactPhone
	}
	if cfg.Welcome == "" {
		cfg.Welcome = WelcomeMessage(cfg.Brand)
	}
	if counters == nil {
		counters = metrics.NewCounters()
	}
	return &service{
		cfg:        cfg,
		normalizer: normalizer,
		embedder:   embedder,
		catalogs:   catalogs,
		loader:     loader,
		matcher:    Matcher{Threshold: cfg.SimilarityThreshold, KeywordWeight: cfg.KeywordWeight},
		defaults:   NewDefaultTable(normalizer, DefaultReplies(), ContactFallback(cfg.Brand, cfg.ContactPhone)),
		cache:      cache,
		recorder:   recorder,
		counters:   counters,
		logger:     logger.With("component", "faq.service"),
		clock:      util.NowUTC,
	}
}

func (s *service) GenerateResponse(ctx context.Context, message string) string {
	return s.Respond(ctx, Request{Message: message}).Answer
}

func (s *service) Respond(ctx context.Context, req Request) Reply {
	s.counters.IncRequests()
	start := time.Now()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	type outcome struct {
		reply Reply
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		reply, err := s.answer(ctx, req.Message)
		done <- outcome{reply: reply, err: err}
	}()

	var reply Reply
	select {
	case out := <-done:
		if out.err != nil {
			reply = s.failure(out.err)
		} else {
			reply = out.reply
			s.count(reply.Source)
		}
	case <-ctx.Done():
		reply = s.failure(apperrors.Wrap(CodeTimeout, "request timed out", ctx.Err()))
	}

	s.logger.Info("faq reply",
		"source", reply.Source,
		"score", reply.Score,
		"cached", reply.Cached,
		"duration", time.Since(start),
	)
	s.record(ctx, req, reply)
	return reply
}

func (s *service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.RequestTimeout)
}

// answer runs the pipeline. Panics surface as internal errors.
func (s *service) answer(ctx context.Context, message string) (reply Reply, err error) {
	defer func() {
		if r := recover(); r != nil {
			reply = Reply{}
			err = apperrors.Wrap(CodeInternal, "panic while answering", fmt.Errorf("%v", r))
		}
	}()

	normalized := s.normalizer.Normalize(message)

	var computed *Reply
	text, err := s.cache.GetOrCompute(ctx, normalized, func(ctx context.Context) (string, error) {
		out, err := s.compute(ctx, normalized)
		if err != nil {
			return "", err
		}
		computed = &out
		return out.Answer, nil
	})
	if err != nil {
		return Reply{}, err
	}
	if text == "" {
		return Reply{}, apperrors.Wrap(CodeInternal, "empty reply", nil)
	}
	if computed == nil {
		return Reply{Answer: text, Source: SourceCache, Cached: true}, nil
	}
	return *computed, nil
}

func (s *service) count(source Source) {
	switch source {
	case SourceCache:
		s.counters.IncCacheHits()
	case SourceCatalog:
		s.counters.IncCatalogHits()
	case SourceDefault:
		s.counters.IncDefaultReplies()
	case SourceFallback:
		s.counters.IncFallbacks()
	}
}

func (s *service) compute(ctx context.Context, normalized string) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}
	catalog := s.catalogs.Load()
	if normalized == "" || catalog.Len() == 0 {
		answer, source := s.defaults.Resolve(normalized)
		return Reply{Answer: answer, Source: source}, nil
	}

	embedding, err := s.embedder.Embed(ctx, s.normalizer.EmbeddingText(normalized))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Reply{}, ctxErr
		}
		return Reply{}, apperrors.Wrap(CodeEmbeddingFailed, "embed query", err)
	}
	// a reply computed past the deadline must not reach the cache
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}

	result := s.matcher.Match(normalized, embedding, catalog)
	if result.Matched() {
		s.logger.Debug("faq match", "id", result.Entry.ID, "score", result.Score)
		return Reply{Answer: result.Entry.Answer, Source: SourceCatalog, Score: result.Score}, nil
	}
	answer, source := s.defaults.Resolve(normalized)
	return Reply{Answer: answer, Source: source, Score: result.Score}, nil
}

func (s *service) failure(err error) Reply {
	err = classify(err)
	code := apperrors.CodeOf(err, CodeInternal)
	if code == CodeTimeout {
		s.counters.IncTimeouts()
	}
	s.counters.IncFailures()
	s.logger.Error("faq reply failed", "code", code, "error", err)
	return Reply{Answer: s.cfg.Apology, Source: SourceError, Err: err}
}

func (s *service) record(ctx context.Context, req Request, reply Reply) {
	if s.recorder == nil || req.SessionID == "" {
		return
	}
	turn := Turn{
		SessionID:   req.SessionID,
		UserMessage: req.Message,
		BotResponse: reply.Answer,
		Source:      reply.Source,
		CreatedAt:   s.clock(),
	}
	if err := s.recorder.Record(context.WithoutCancel(ctx), turn); err != nil {
		s.logger.Warn("faq turn record failed", "session", req.SessionID, "error", err)
	}
}

func (s *service) Reload(ctx context.Context) (CatalogInfo, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	if s.loader == nil {
		return CatalogInfo{}, apperrors.Wrap(CodeCatalogUnavailable, "catalog reload not configured", nil)
	}
	next, err := s.loader.Load(ctx)
	if err != nil {
		s.logger.Error("faq catalog reload failed", "error", err)
		return CatalogInfo{}, err
	}
	previous := s.catalogs.Swap(next)
	if err := s.cache.Clear(ctx); err != nil {
		s.logger.Warn("faq cache clear after reload failed", "error", err)
	}
	info := next.Info()
	s.logger.Info("faq catalog reloaded",
		"entries", info.Entries,
		"previous", previous.Len(),
		"model", info.Model,
	)
	return info, nil
}

func (s *service) ClearCache(ctx context.Context) error {
	if err := s.cache.Clear(ctx); err != nil {
		return apperrors.Wrap(CodeCacheFailed, "clear response cache", err)
	}
	return nil
}

func (s *service) Stats() Stats {
	return Stats{
		Counters: s.counters.Snapshot(),
		Catalog:  s.catalogs.Load().Info(),
	}
}

func (s *service) Welcome() string {
	return s.cfg.Welcome
}
