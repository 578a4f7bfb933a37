package faqrepo

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/yanqian/faqbot/internal/domain/faq"
	"github.com/yanqian/faqbot/internal/infra/faqrepo/migrations"
)

// SQLRepository implements the FAQ ports over database/sql. It serves the
// SQLite and MySQL backends, which share "?" placeholders.
type SQLRepository struct {
	db      *sql.DB
	dialect string
}

// OpenSQLite opens (creating if needed) a SQLite database file.
func OpenSQLite(path string) (*SQLRepository, error) {
	if dir := filepath.Dir(sqliteFile(path)); dir != "" && dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLRepository{db: db, dialect: "sqlite"}, nil
}

// OpenMySQL opens a MySQL database from a go-sql-driver DSN.
func OpenMySQL(ctx context.Context, dsn string, maxConns int) (*SQLRepository, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	if _, ok := cfg.Params["charset"]; !ok {
		cfg.Params["charset"] = "utf8mb4"
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("create mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return &SQLRepository{db: db, dialect: "mysql"}, nil
}

type sqlExecer struct {
	db *sql.DB
}

func (e sqlExecer) exec(ctx context.Context, query string) error {
	_, err := e.db.ExecContext(ctx, query)
	return err
}

// Migrate applies the embedded schema for the dialect.
func (r *SQLRepository) Migrate(ctx context.Context) error {
	var fsys fs.FS = migrations.SQLite
	if r.dialect == "mysql" {
		fsys = migrations.MySQL
	}
	return applyMigrations(ctx, sqlExecer{db: r.db}, fsys, r.dialect)
}

// LoadRecords implements faq.CatalogSource.
func (r *SQLRepository) LoadRecords(ctx context.Context) ([]faq.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, question, answer, COALESCE(keywords, '')
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
func (r *SQLRepository) ImportRecords(ctx context.Context, records []faq.Record, replace bool) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck

	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM faq`); err != nil {
			return 0, err
		}
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO faq (question, answer, keywords) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.Question, rec.Answer, joinKeywords(rec.Keywords)); err != nil {
			return 0, fmt.Errorf("insert faq %q: %w", truncate(rec.Question, 40), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(records), nil
}

// Append implements faq.ConversationLog.
func (r *SQLRepository) Append(ctx context.Context, turn faq.Turn) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (session_id, user_message, bot_response, source, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, turn.SessionID, turn.UserMessage, turn.BotResponse, string(turn.Source), turn.CreatedAt.UTC())
	return err
}

// SessionTurns returns a session's transcript in insertion order.
func (r *SQLRepository) SessionTurns(ctx context.Context, sessionID string) ([]faq.Turn, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT session_id, user_message, bot_response, source, created_at
		FROM messages
		WHERE session_id = ?
		ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []faq.Turn
	for rows.Next() {
		var (
			turn   faq.Turn
			source string
		)
		if err := rows.Scan(&turn.SessionID, &turn.UserMessage, &turn.BotResponse, &source, &turn.CreatedAt); err != nil {
			return nil, err
		}
		turn.Source = faq.Source(source)
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}

// Close releases the database handle.
func (r *SQLRepository) Close() {
	r.db.Close()
}

// sqliteFile strips the URI prefix and query from a SQLite DSN.
func sqliteFile(dsn string) string {
	dsn = strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(dsn, '?'); i >= 0 {
		dsn = dsn[:i]
	}
	return dsn
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n]) + "..."
}

var _ Store = (*SQLRepository)(nil)
