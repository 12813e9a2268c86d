package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	sq "github.com/Masterminds/squirrel"
	"github.com/f3rmion/manchu/internal/manchu"
	"modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

var (
	registerOnce sync.Once
	registerErr  error
)

// registerFunctions makes fold available to every connection opened afterwards.
func registerFunctions() error {
	registerOnce.Do(func() {
		registerErr = sqlite.RegisterDeterministicScalarFunction("fold", 1, fold)
	})
	return registerErr
}

// fold lowercases text with full Unicode rules. SQLite's own LIKE only
// folds ASCII, which would miss capitalized Latin letters like Š or Ū.
func fold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// SQLite is a Store backed by a local SQLite database.
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(path string, logger *slog.Logger) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writes.
	db.SetMaxOpenConns(1)

	s, err := NewSQLite(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLite wraps a database opened with the "sqlite" driver and applies the
// schema. It must be called before the database opens its first connection.
func NewSQLite(db *sql.DB, logger *slog.Logger) (*SQLite, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := registerFunctions(); err != nil {
		return nil, fmt.Errorf("registering sql functions: %w", err)
	}
	if err := initSchema(db); err != nil {
		return nil, err
	}
	return &SQLite{db: db, logger: logger.With("component", "store", "backend", "sqlite")}, nil
}

func initSchema(db *sql.DB) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

var entryColumns = []string{"id", "manchu_text", "latin_text", "english_text", "image_url", "source"}

// likePattern turns a query into a LIKE pattern matching it anywhere, with
// the LIKE wildcards in the query taken literally.
func likePattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(query) + "%"
}

// Search implements Store.
func (s *SQLite) Search(ctx context.Context, query string) ([]manchu.Record, error) {
	pattern := likePattern(query)

	match := sq.Or{}
	for _, col := range []string{"english_text", "latin_text", "manchu_text"} {
		match = append(match, sq.Expr("fold("+col+`) LIKE fold(?) ESCAPE '\'`, pattern))
	}

	stmt, args, err := sq.Select(entryColumns...).
		From(tableEntries).
		Where(match).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building search query: %w", err)
	}

	records, err := s.queryRecords(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("searching entries: %w", err)
	}

	s.logger.Debug("search", slog.String("query", query), slog.Int("results", len(records)))
	return records, nil
}

// ListTranslated implements Store.
func (s *SQLite) ListTranslated(ctx context.Context) ([]manchu.Record, error) {
	stmt, args, err := sq.Select(entryColumns...).From(tableEntries).OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list query: %w", err)
	}

	records, err := s.queryRecords(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	return records, nil
}

func (s *SQLite) queryRecords(ctx context.Context, stmt string, args ...any) ([]manchu.Record, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []manchu.Record
	for rows.Next() {
		var (
			r               manchu.Record
			english, source sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.ManchuText, &r.LatinText, &english, &r.ImageURL, &source); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		r.EnglishText = english.String
		r.Source = source.String
		records = append(records, r)
	}
	return records, rows.Err()
}

// ListUntranslated implements Store.
func (s *SQLite) ListUntranslated(ctx context.Context) ([]manchu.UntranslatedRecord, error) {
	stmt, args, err := sq.Select("id", "image_url", "source_link", "description").
		From(tableUntranslated).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("listing untranslated entries: %w", err)
	}
	defer rows.Close()

	var out []manchu.UntranslatedRecord
	for rows.Next() {
		var (
			u          manchu.UntranslatedRecord
			link, desc sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.ImageURL, &link, &desc); err != nil {
			return nil, fmt.Errorf("scanning untranslated entry: %w", err)
		}
		u.SourceLink = link.String
		u.Description = desc.String
		out = append(out, u)
	}
	return out, rows.Err()
}

// Counts returns the number of rows in each table.
func (s *SQLite) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	for table, dst := range map[string]*int{tableEntries: &c.Translated, tableUntranslated: &c.Untranslated} {
		stmt, args, err := sq.Select("COUNT(*)").From(table).ToSql()
		if err != nil {
			return Counts{}, fmt.Errorf("building count query: %w", err)
		}
		if err := s.db.QueryRowContext(ctx, stmt, args...).Scan(dst); err != nil {
			return Counts{}, fmt.Errorf("counting %s: %w", table, err)
		}
	}
	return c, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// InsertRecords implements Writer. Records with a zero ID get one assigned;
// records with an ID replace any existing row with that ID.
func (s *SQLite) InsertRecords(ctx context.Context, records []manchu.Record) (int, error) {
	return s.insert(ctx, len(records), func(i int) sq.InsertBuilder {
		r := records[i]
		ins := sq.Insert(tableEntries)
		if r.ID > 0 {
			return ins.Options("OR REPLACE").
				Columns(entryColumns...).
				Values(r.ID, r.ManchuText, r.LatinText, nullable(r.EnglishText), r.ImageURL, nullable(r.Source))
		}
		return ins.Columns(entryColumns[1:]...).
			Values(r.ManchuText, r.LatinText, nullable(r.EnglishText), r.ImageURL, nullable(r.Source))
	})
}

// InsertUntranslated implements Writer.
func (s *SQLite) InsertUntranslated(ctx context.Context, records []manchu.UntranslatedRecord) (int, error) {
	return s.insert(ctx, len(records), func(i int) sq.InsertBuilder {
		u := records[i]
		ins := sq.Insert(tableUntranslated)
		if u.ID > 0 {
			return ins.Options("OR REPLACE").
				Columns("id", "image_url", "source_link", "description").
				Values(u.ID, u.ImageURL, nullable(u.SourceLink), nullable(u.Description))
		}
		return ins.Columns("image_url", "source_link", "description").
			Values(u.ImageURL, nullable(u.SourceLink), nullable(u.Description))
	})
}

func (s *SQLite) insert(ctx context.Context, n int, build func(i int) sq.InsertBuilder) (int, error) {
	if n == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range n {
		stmt, args, err := build(i).ToSql()
		if err != nil {
			return 0, fmt.Errorf("building insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return 0, fmt.Errorf("inserting row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing import: %w", err)
	}

	s.logger.Info("rows imported", slog.Int("rows", n))
	return n, nil
}
