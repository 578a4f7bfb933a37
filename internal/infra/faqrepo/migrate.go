package faqrepo

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// execer is satisfied by *sql.DB and by the pgx pool adapter.
type execer interface {
	exec(ctx context.Context, query string) error
}

// migrationStatements reads every .sql file under dir in name order and
// splits it into single statements.
func migrationStatements(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	var statements []string
	for _, file := range files {
		content, err := fs.ReadFile(fsys, dir+"/"+file)
		if err != nil {
			return nil, err
		}
		for _, q := range strings.Split(string(content), ";") {
			if q = strings.TrimSpace(q); q != "" {
				statements = append(statements, q)
			}
		}
	}
	return statements, nil
}

func applyMigrations(ctx context.Context, db execer, fsys fs.FS, dir string) error {
	statements, err := migrationStatements(fsys, dir)
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	for _, q := range statements {
		if err := db.exec(ctx, q); err != nil {
			if isAlreadyApplied(err) {
				continue
			}
			return fmt.Errorf("execute migration %q: %w", firstLine(q), err)
		}
	}
	return nil
}

// isAlreadyApplied recognizes errors from re-running additive DDL.
func isAlreadyApplied(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate column")
}

func firstLine(q string) string {
	if i := strings.IndexByte(q, '\n'); i >= 0 {
		return q[:i]
	}
	return q
}
