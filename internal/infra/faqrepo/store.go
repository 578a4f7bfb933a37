package faqrepo

import (
	"context"

	"github.com/yanqian/faqbot/internal/domain/faq"
)

// Importer replaces or extends the stored catalog.
type Importer interface {
	ImportRecords(ctx context.Context, records []faq.Record, replace bool) (int, error)
}

// Store is the persistence surface the app wires: catalog rows plus the
// conversation transcript.
type Store interface {
	faq.CatalogSource
	faq.ConversationLog
	Importer
	Close()
}
