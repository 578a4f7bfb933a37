package faq

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/yanqian/faqbot/pkg/errors"
	"github.com/yanqian/faqbot/pkg/util"
)

// Catalog is an immutable snapshot of FAQ entries with their embeddings.
type Catalog struct {
	entries   []Entry
	model     string
	dimension int
	loadedAt  time.Time
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entries returns a copy of the entry list in load order.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Info summarizes the snapshot.
func (c *Catalog) Info() CatalogInfo {
	if c == nil {
		return CatalogInfo{}
	}
	return CatalogInfo{
		Entries:   len(c.entries),
		Model:     c.model,
		Dimension: c.dimension,
		LoadedAt:  c.loadedAt,
	}
}

// BuildOptions tunes catalog construction.
type BuildOptions struct {
	Concurrency int
	AllowEmpty  bool
	Archive     EmbeddingArchive
	Clock       util.Clock
	Logger      *slog.Logger
}

// BuildCatalog normalizes and embeds every record. Entry order follows the
// record order so ties in matching resolve the same way on every load.
func BuildCatalog(ctx context.Context, records []Record, normalizer *Normalizer, embedder Embedder, opts BuildOptions) (*Catalog, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.Clock.OrDefault()
	if len(records) == 0 {
		if !opts.AllowEmpty {
			return nil, apperrors.Wrap(CodeCatalogUnavailable, "faq catalog is empty", nil)
		}
		logger.Warn("faq catalog is empty, every query will fall back")
		return &Catalog{model: embedder.Model(), loadedAt: clock()}, nil
	}

	entries := make([]Entry, len(records))
	texts := make([]string, len(records))
	hashes := make([]string, len(records))
	for i, rec := range records {
		normalized := normalizer.Normalize(rec.Question)
		keywords := make([]string, 0, len(rec.Keywords))
		for _, kw := range rec.Keywords {
			if n := normalizer.Normalize(kw); n != "" {
				keywords = append(keywords, n)
			}
		}
		entries[i] = Entry{
			ID:         rec.ID,
			Question:   rec.Question,
			Answer:     rec.Answer,
			Keywords:   rec.Keywords,
			Normalized: normalized,
			lexicon:    strings.TrimSpace(normalized + " " + strings.Join(keywords, " ")),
		}
		if normalized != "" {
			texts[i] = normalizer.EmbeddingText(normalized)
			hashes[i] = TextHash(texts[i])
		}
	}

	model := embedder.Model()
	archived := loadArchived(ctx, opts.Archive, model, hashes, logger)
	fresh := make([][]float32, len(entries))

	limit := opts.Concurrency
	if limit <= 0 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range entries {
		if entries[i].Normalized == "" {
			logger.Warn("faq question normalizes to empty text, entry cannot match", "id", entries[i].ID)
			continue
		}
		if vec, ok := archived[hashes[i]]; ok {
			entries[i].Embedding = vec
			continue
		}
		g.Go(func() error {
			vec, err := embedder.Embed(gctx, texts[i])
			if err != nil {
				return apperrors.Wrap(CodeEmbeddingFailed, fmt.Sprintf("embed faq %d", entries[i].ID), err)
			}
			entries[i].Embedding = vec
			fresh[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dimension := 0
	for _, e := range entries {
		if len(e.Embedding) == 0 {
			continue
		}
		if dimension == 0 {
			dimension = len(e.Embedding)
			continue
		}
		if len(e.Embedding) != dimension {
			return nil, apperrors.Wrap(CodeCatalogUnavailable,
				fmt.Sprintf("faq %d embedding has dimension %d, want %d", e.ID, len(e.Embedding), dimension), nil)
		}
	}

	saveArchived(ctx, opts.Archive, model, hashes, fresh, logger)

	return &Catalog{
		entries:   entries,
		model:     model,
		dimension: dimension,
		loadedAt:  clock(),
	}, nil
}

func loadArchived(ctx context.Context, archive EmbeddingArchive, model string, hashes []string, logger *slog.Logger) map[string][]float32 {
	if archive == nil {
		return nil
	}
	wanted := make([]string, 0, len(hashes))
	for _, h := range hashes {
		if h != "" {
			wanted = append(wanted, h)
		}
	}
	if len(wanted) == 0 {
		return nil
	}
	found, err := archive.LoadEmbeddings(ctx, model, wanted)
	if err != nil {
		logger.Warn("embedding archive lookup failed", "error", err)
		return nil
	}
	logger.Debug("embedding archive lookup", "requested", len(wanted), "found", len(found))
	return found
}

func saveArchived(ctx context.Context, archive EmbeddingArchive, model string, hashes []string, fresh [][]float32, logger *slog.Logger) {
	if archive == nil {
		return
	}
	vectors := make(map[string][]float32)
	for i, vec := range fresh {
		if len(vec) > 0 && hashes[i] != "" {
			vectors[hashes[i]] = vec
		}
	}
	if len(vectors) == 0 {
		return
	}
	if err := archive.SaveEmbeddings(ctx, model, vectors); err != nil {
		logger.Warn("embedding archive save failed", "error", err)
	}
}

// TextHash is the archive key for the text an entry was embedded from.
func TextHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// CatalogHolder publishes the active snapshot. Readers never block a reload.
type CatalogHolder struct {
	current atomic.Pointer[Catalog]
}

// NewCatalogHolder wraps an initial snapshot, which may be nil.
func NewCatalogHolder(initial *Catalog) *CatalogHolder {
	h := &CatalogHolder{}
	if initial != nil {
		h.current.Store(initial)
	}
	return h
}

// Load returns the active snapshot, or an empty one before the first load.
func (h *CatalogHolder) Load() *Catalog {
	if c := h.current.Load(); c != nil {
		return c
	}
	return &Catalog{}
}

// Swap installs next and returns the previous snapshot.
func (h *CatalogHolder) Swap(next *Catalog) *Catalog {
	return h.current.Swap(next)
}

// CatalogLoader reads a source and builds a snapshot from it.
type CatalogLoader struct {
	source     CatalogSource
	normalizer *Normalizer
	embedder   Embedder
	opts       BuildOptions
}

// NewCatalogLoader binds the pieces a (re)load needs.
func NewCatalogLoader(source CatalogSource, normalizer *Normalizer, embedder Embedder, opts BuildOptions) *CatalogLoader {
	return &CatalogLoader{source: source, normalizer: normalizer, embedder: embedder, opts: opts}
}

// Load reads every record from the source and builds a fresh catalog.
func (l *CatalogLoader) Load(ctx context.Context) (*Catalog, error) {
	if l.source == nil {
		return nil, apperrors.Wrap(CodeCatalogUnavailable, "faq source not configured", nil)
	}
	records, err := l.source.LoadRecords(ctx)
	if err != nil {
		return nil, apperrors.Wrap(CodeCatalogUnavailable, "load faq records", err)
	}
	return BuildCatalog(ctx, records, l.normalizer, l.embedder, l.opts)
}
