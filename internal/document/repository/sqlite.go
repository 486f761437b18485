package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/docmanager/docmanager/internal/document"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	content     TEXT,
	author_id   TEXT,
	author_name TEXT,
	created     INTEGER NOT NULL
);`

const sqliteColumns = "id, title, content, author_id, author_name, created"

// SQLiteRepo stores documents in a SQLite table. Created is kept as unix
// nanoseconds so range comparisons are exact; times outside the int64
// nanosecond range cannot be stored.
type SQLiteRepo struct {
	db   *sql.DB
	opts options
}

// NewSQLiteRepo creates the documents table when missing. The caller owns db.
func NewSQLiteRepo(db *sql.DB, opts ...Option) (*SQLiteRepo, error) {
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteRepo{db: db, opts: newOptions(opts)}, nil
}

func (s *SQLiteRepo) Backend() string { return "sqlite" }

func (s *SQLiteRepo) Save(ctx context.Context, d *document.Document) (*document.Document, error) {
	mustDocument(d)
	s.opts.assignID(d)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("save %q: %w", d.ID, err)
	}
	defer tx.Rollback()

	var created int64
	err = tx.QueryRowContext(ctx, "SELECT created FROM documents WHERE id = ?", d.ID).Scan(&created)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		d.Created = s.opts.timestamp()
	case err != nil:
		return nil, fmt.Errorf("save %q: %w", d.ID, err)
	default:
		d.Created = time.Unix(0, created).UTC()
	}
	if d.Created.Before(minSQLiteTime) || d.Created.After(maxSQLiteTime) {
		return nil, fmt.Errorf("save %q: created %v outside the storable range", d.ID, d.Created)
	}

	authorID, authorName := sql.NullString{}, sql.NullString{}
	if d.Author != nil {
		authorID = sql.NullString{String: d.Author.ID, Valid: true}
		authorName = sql.NullString{String: d.Author.Name, Valid: true}
	}
	var content sql.NullString
	if d.Content != nil {
		content = sql.NullString{String: *d.Content, Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (`+sqliteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			author_id = excluded.author_id,
			author_name = excluded.author_name`,
		d.ID, d.Title, content, authorID, authorName, d.Created.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("save %q: %w", d.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("save %q: %w", d.ID, err)
	}
	return d.Clone(), nil
}

func (s *SQLiteRepo) FindByID(ctx context.Context, id string) (*document.Document, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+sqliteColumns+" FROM documents WHERE id = ?", id)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %q: %w", id, err)
	}
	return d, nil
}

func (s *SQLiteRepo) Search(ctx context.Context, req document.SearchRequest) ([]*document.Document, error) {
	where, args := sqliteWhere(req)
	rows, err := s.db.QueryContext(ctx, "SELECT "+sqliteColumns+" FROM documents"+where, args...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	out := []*document.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLiteRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n)
	return n, err
}

// sqliteWhere translates req into a WHERE clause. Prefixes are compared with
// substr rather than LIKE, which is case-insensitive and treats % and _ as
// wildcards. instr on a NULL content yields NULL, so documents without content
// never match a content criterion.
func sqliteWhere(req document.SearchRequest) (string, []any) {
	var clauses []string
	var args []any

	if len(req.TitlePrefixes) > 0 {
		alts := make([]string, 0, len(req.TitlePrefixes))
		for _, p := range req.TitlePrefixes {
			alts = append(alts, "substr(title, 1, length(?)) = ?")
			args = append(args, p, p)
		}
		clauses = append(clauses, "("+strings.Join(alts, " OR ")+")")
	}
	if len(req.ContainsContents) > 0 {
		alts := make([]string, 0, len(req.ContainsContents))
		for _, c := range req.ContainsContents {
			alts = append(alts, "instr(content, ?) > 0")
			args = append(args, c)
		}
		clauses = append(clauses, "("+strings.Join(alts, " OR ")+")")
	}
	if len(req.AuthorIDs) > 0 {
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(req.AuthorIDs)), ", ")
		clauses = append(clauses, "author_id IN ("+marks+")")
		for _, id := range req.AuthorIDs {
			args = append(args, id)
		}
	}
	if req.CreatedFrom != nil {
		if req.CreatedFrom.After(maxSQLiteTime) {
			clauses = append(clauses, "0 = 1")
		} else {
			clauses = append(clauses, "created >= ?")
			args = append(args, clampUnixNano(*req.CreatedFrom))
		}
	}
	if req.CreatedTo != nil {
		if req.CreatedTo.Before(minSQLiteTime) {
			clauses = append(clauses, "0 = 1")
		} else {
			clauses = append(clauses, "created <= ?")
			args = append(args, clampUnixNano(*req.CreatedTo))
		}
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

var (
	minSQLiteTime = time.Unix(0, math.MinInt64).UTC()
	maxSQLiteTime = time.Unix(0, math.MaxInt64).UTC()
)

// clampUnixNano maps t onto the stored column range. Bounds outside it
// would otherwise overflow UnixNano.
func clampUnixNano(t time.Time) int64 {
	switch {
	case t.Before(minSQLiteTime):
		return math.MinInt64
	case t.After(maxSQLiteTime):
		return math.MaxInt64
	}
	return t.UnixNano()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(sc rowScanner) (*document.Document, error) {
	var d document.Document
	var content, authorID, authorName sql.NullString
	var created int64
	if err := sc.Scan(&d.ID, &d.Title, &content, &authorID, &authorName, &created); err != nil {
		return nil, err
	}
	if content.Valid {
		d.Content = &content.String
	}
	if authorID.Valid || authorName.Valid {
		d.Author = &document.Author{ID: authorID.String, Name: authorName.String}
	}
	d.Created = time.Unix(0, created).UTC()
	return &d, nil
}
