// Package sqlite implements the index boundary over an embedded SQLite FTS5
// catalog, letting the engine run self-contained without a hosted index.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/crimedex/crimedex/internal/domain"
	"github.com/crimedex/crimedex/internal/domain/search/request"
	"github.com/crimedex/crimedex/internal/domain/search/result"
	"github.com/crimedex/crimedex/internal/index"
)

// Compile-time checks.
var (
	_ index.Adapter       = (*Index)(nil)
	_ index.HealthChecker = (*Index)(nil)
)

// Index is an embedded full-text catalog index.
type Index struct {
	db *sql.DB
}

// New opens (or creates) the catalog database at path and ensures the schema.
// Use ":memory:" for an ephemeral index.
func New(path string) (*Index, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	// A shared in-memory database needs a single connection, otherwise each
	// pool connection sees its own empty database.
	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS content (
			id        TEXT PRIMARY KEY,
			title     TEXT NOT NULL,
			kind      TEXT NOT NULL,
			year      INTEGER NOT NULL DEFAULT 0,
			platforms TEXT NOT NULL DEFAULT '',
			synopsis  TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS content_fts USING fts5(title, synopsis)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("creating index schema: %w", err)
		}
	}

	return &Index{db: db}, nil
}

// Close releases the database handle.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Upsert loads or refreshes catalog entries. Used for seeding deployments
// that run the embedded index.
func (ix *Index) Upsert(ctx context.Context, entries []domain.ContentSummary) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO content (id, title, kind, year, platforms, synopsis)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title, kind = excluded.kind, year = excluded.year,
			platforms = excluded.platforms, synopsis = excluded.synopsis
	`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	ftsStmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO content_fts (rowid, title, synopsis)
		VALUES ((SELECT rowid FROM content WHERE id = ?), ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing fts upsert: %w", err)
	}
	defer func() { _ = ftsStmt.Close() }()

	for _, e := range entries {
		platforms := strings.Join(e.Platforms, ",")
		if _, err := stmt.ExecContext(ctx, e.ID, e.Title, e.Kind, e.Year, platforms, e.Synopsis); err != nil {
			return fmt.Errorf("upserting %s: %w", e.ID, err)
		}
		if _, err := ftsStmt.ExecContext(ctx, e.ID, e.Title, e.Synopsis); err != nil {
			return fmt.Errorf("indexing %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upsert: %w", err)
	}
	committed = true
	return nil
}

// Query runs one paginated catalog search: FTS match on the query text,
// structured filters as SQL predicates, COUNT(*) for the total.
func (ix *Index) Query(ctx context.Context, req request.Request) (result.Result, error) {
	where, args := buildPredicates(req)

	var (
		from  string
		order string
	)
	text := req.NormalizedText()
	if text != "" {
		from = `content c JOIN content_fts fts ON c.rowid = fts.rowid AND content_fts MATCH ?`
		args = append([]any{ftsQuery(text)}, args...)
	} else {
		// Browse mode: filters only, no text match.
		from = `content c`
	}

	switch req.Sort() {
	case "year":
		order = "c.year DESC, c.title ASC"
	case "title":
		order = "c.title ASC"
	default:
		if text != "" {
			order = "bm25(content_fts), c.title ASC"
		} else {
			order = "c.title ASC"
		}
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", from, where)
	var total int
	if err := ix.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return result.Result{}, classify(err)
	}

	offset := (req.Page() - 1) * req.Limit()
	pageQuery := fmt.Sprintf(
		"SELECT c.id, c.title, c.kind, c.year, c.platforms, c.synopsis FROM %s%s ORDER BY %s LIMIT ? OFFSET ?",
		from, where, order)
	rows, err := ix.db.QueryContext(ctx, pageQuery, append(args, req.Limit(), offset)...)
	if err != nil {
		return result.Result{}, classify(err)
	}
	defer func() { _ = rows.Close() }()

	var items []domain.ContentSummary
	for rows.Next() {
		var (
			item      domain.ContentSummary
			platforms string
		)
		if err := rows.Scan(&item.ID, &item.Title, &item.Kind, &item.Year, &platforms, &item.Synopsis); err != nil {
			return result.Result{}, fmt.Errorf("%w: scanning row: %v", domain.ErrUpstreamUnavailable, err)
		}
		if platforms != "" {
			item.Platforms = strings.Split(platforms, ",")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return result.Result{}, classify(err)
	}

	return result.New(items, total, req.Page(), req.Limit()), nil
}

// HealthCheck pings the database.
func (ix *Index) HealthCheck(ctx context.Context) error {
	if err := ix.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: index ping: %v", domain.ErrUpstreamUnavailable, err)
	}
	return nil
}

// buildPredicates maps structured filters to SQL. Unknown filter keys are a
// query-semantics error, not a transport one.
func buildPredicates(req request.Request) (string, []any) {
	var (
		preds []string
		args  []any
	)
	for key, vals := range req.Filters() {
		clean := make([]string, 0, len(vals))
		for _, v := range vals {
			v = strings.ToLower(strings.TrimSpace(v))
			if v != "" {
				clean = append(clean, v)
			}
		}
		if len(clean) == 0 {
			continue
		}
		switch key {
		case "kind":
			placeholders := strings.Repeat("?,", len(clean))
			preds = append(preds, fmt.Sprintf("lower(c.kind) IN (%s)", placeholders[:len(placeholders)-1]))
			for _, v := range clean {
				args = append(args, v)
			}
		case "platform":
			// platforms is a comma-separated list; any selected platform matches.
			ors := make([]string, len(clean))
			for i, v := range clean {
				ors[i] = "(',' || lower(c.platforms) || ',') LIKE ?"
				args = append(args, "%,"+v+",%")
			}
			preds = append(preds, "("+strings.Join(ors, " OR ")+")")
		case "year":
			placeholders := strings.Repeat("?,", len(clean))
			preds = append(preds, fmt.Sprintf("c.year IN (%s)", placeholders[:len(placeholders)-1]))
			for _, v := range clean {
				args = append(args, v)
			}
		}
	}
	if len(preds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(preds, " AND "), args
}

// ftsQuery quotes each token so user text can never be parsed as FTS5
// operator syntax. Bound as a parameter, so SQL injection is off the table
// either way.
func ftsQuery(text string) string {
	fields := strings.Fields(text)
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " ")
}

// classify maps sqlite errors to the domain taxonomy: FTS parse failures are
// the caller's query, everything else is the backend.
func classify(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "fts5: syntax error") || strings.Contains(msg, "malformed MATCH") {
		return fmt.Errorf("%w: %v", domain.ErrInvalidQuery, err)
	}
	return fmt.Errorf("%w: index query: %v", domain.ErrUpstreamUnavailable, err)
}
