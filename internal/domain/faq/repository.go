package faq

import "context"

// CatalogSource yields the committed FAQ rows. It is read once per load.
type CatalogSource interface {
	LoadRecords(ctx context.Context) ([]Record, error)
}

// ConversationLog persists chat turns.
type ConversationLog interface {
	Append(ctx context.Context, turn Turn) error
}

// TurnRecorder hands a turn to the conversation log without blocking the reply.
type TurnRecorder interface {
	Record(ctx context.Context, turn Turn) error
}

// EmbeddingArchive stores catalog embeddings keyed by model and text hash
// so restarts do not re-embed an unchanged catalog.
type EmbeddingArchive interface {
	LoadEmbeddings(ctx context.Context, model string, hashes []string) (map[string][]float32, error)
	SaveEmbeddings(ctx context.Context, model string, vectors map[string][]float32) error
}
