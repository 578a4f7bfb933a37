package faqrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/yanqian/faqbot/internal/domain/faq"
	"github.com/yanqian/faqbot/internal/infra/faqrepo/migrations"
)

// PostgresRepository implements the FAQ ports using pgx. It also archives
// catalog embeddings in a pgvector column.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// OpenPostgres connects a pool with the given bounds.
func OpenPostgres(ctx context.Context, dsn string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = maxConns
	}
	if minConns > 0 {
		poolConfig.MinConns = minConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

type pgxExecer struct {
	pool *pgxpool.Pool
}

func (e pgxExecer) exec(ctx context.Context, query string) error {
	_, err := e.pool.Exec(ctx, query)
	return err
}

// Migrate applies the embedded schema.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	return applyMigrations(ctx, pgxExecer{pool: r.pool}, migrations.Postgres, "postgres")
}

// LoadRecords implements faq.CatalogSource.
func (r *PostgresRepository) LoadRecords(ctx context.Context) ([]faq.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, question, answer, keywords
		FROM faq
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []faq.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// ImportRecords inserts records in one transaction, optionally replacing the
// existing catalog.
func (r *PostgresRepository) ImportRecords(ctx context.Context, records []faq.Record, replace bool) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if replace {
		if _, err := tx.Exec(ctx, `DELETE FROM faq`); err != nil {
			return 0, err
		}
	}
	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(`
			INSERT INTO faq (question, answer, keywords)
			VALUES ($1, $2, $3)
		`, rec.Question, rec.Answer, joinKeywords(rec.Keywords))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("insert faq rows: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(records), nil
}

// Append implements faq.ConversationLog.
func (r *PostgresRepository) Append(ctx context.Context, turn faq.Turn) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO messages (session_id, user_message, bot_response, source, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, turn.SessionID, turn.UserMessage, turn.BotResponse, string(turn.Source), turn.CreatedAt)
	return err
}

// LoadEmbeddings implements faq.EmbeddingArchive.
func (r *PostgresRepository) LoadEmbeddings(ctx context.Context, model string, hashes []string) (map[string][]float32, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT text_hash, embedding::text
		FROM faq_embeddings
		WHERE model = $1 AND text_hash = ANY($2)
	`, model, hashes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[string][]float32, len(hashes))
	for rows.Next() {
		var (
			hash string
			raw  string
			vec  pgvector.Vector
		)
		if err := rows.Scan(&hash, &raw); err != nil {
			return nil, err
		}
		if err := vec.Scan(raw); err != nil {
			return nil, fmt.Errorf("decode embedding %s: %w", hash, err)
		}
		found[hash] = vec.Slice()
	}
	return found, rows.Err()
}

// SaveEmbeddings implements faq.EmbeddingArchive.
func (r *PostgresRepository) SaveEmbeddings(ctx context.Context, model string, vectors map[string][]float32) error {
	batch := &pgx.Batch{}
	for hash, vec := range vectors {
		batch.Queue(`
			INSERT INTO faq_embeddings (model, text_hash, dimension, embedding)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (model, text_hash) DO UPDATE
			SET dimension = EXCLUDED.dimension, embedding = EXCLUDED.embedding
		`, model, hash, len(vec), pgvector.NewVector(vec))
	}
	return r.pool.SendBatch(ctx, batch).Close()
}

// Close releases the pool.
func (r *PostgresRepository) Close() {
	r.pool.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (faq.Record, error) {
	var (
		record   faq.Record
		keywords string
	)
	if err := row.Scan(&record.ID, &record.Question, &record.Answer, &keywords); err != nil {
		return faq.Record{}, err
	}
	record.Keywords = splitKeywords(keywords)
	return record, nil
}

var (
	_ Store                = (*PostgresRepository)(nil)
	_ faq.EmbeddingArchive = (*PostgresRepository)(nil)
)
