package faqrepo

import (
	"context"
	"sync"

	"github.com/yanqian/faqbot/internal/domain/faq"
)

// MemoryRepository keeps the catalog and transcript in memory for tests/dev.
type MemoryRepository struct {
	mu      sync.RWMutex
	records []faq.Record
	turns   []faq.Turn
}

// NewMemoryRepository constructs a repo seeded with records.
func NewMemoryRepository(records ...faq.Record) *MemoryRepository {
	return &MemoryRepository{records: append([]faq.Record(nil), records...)}
}

// LoadRecords implements faq.CatalogSource.
func (r *MemoryRepository) LoadRecords(_ context.Context) ([]faq.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]faq.Record(nil), r.records...), nil
}

// ImportRecords implements Importer.
func (r *MemoryRepository) ImportRecords(_ context.Context, records []faq.Record, replace bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if replace {
		r.records = nil
	}
	next := int64(len(r.records)) + 1
	for _, rec := range records {
		rec.ID = next
		next++
		r.records = append(r.records, rec)
	}
	return len(records), nil
}

// Append implements faq.ConversationLog.
func (r *MemoryRepository) Append(_ context.Context, turn faq.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns = append(r.turns, turn)
	return nil
}

// Turns returns the recorded transcript.
func (r *MemoryRepository) Turns() []faq.Turn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]faq.Turn(nil), r.turns...)
}

// Close implements Store.
func (r *MemoryRepository) Close() {}

var _ Store = (*MemoryRepository)(nil)
