// Package store provides access to the Manchu corpus, either in a local
// SQLite database or in a remote Supabase project.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/f3rmion/manchu/internal/config"
	"github.com/f3rmion/manchu/internal/manchu"
)

const (
	tableEntries      = "manchu_entries"
	tableUntranslated = "manchu_entries_untranslated"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown store backend")

// ErrReadOnly is returned when an import targets a store that is not a Writer.
var ErrReadOnly = errors.New("the configured store is read-only")

// Store is the read side of the corpus.
type Store interface {
	// Search returns records whose Manchu, Latin or English text contains
	// query, case-insensitively, ordered by id.
	Search(ctx context.Context, query string) ([]manchu.Record, error)
	ListTranslated(ctx context.Context) ([]manchu.Record, error)
	ListUntranslated(ctx context.Context) ([]manchu.UntranslatedRecord, error)
	Close() error
}

// Writer is implemented by stores that accept imports.
type Writer interface {
	InsertRecords(ctx context.Context, records []manchu.Record) (int, error)
	InsertUntranslated(ctx context.Context, records []manchu.UntranslatedRecord) (int, error)
}

// Counts holds the number of rows per table.
type Counts struct {
	Translated   int
	Untranslated int
}

// Open returns the store selected by cfg.Backend.
func Open(cfg config.StoreConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case "", config.BackendSQLite:
		return OpenSQLite(cfg.Path, logger)
	case config.BackendSupabase:
		return NewSupabase(cfg.SupabaseURL, cfg.SupabaseKey, cfg.Timeout, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// CountAll counts both tables of any Store by listing them.
func CountAll(ctx context.Context, s Store) (Counts, error) {
	if c, ok := s.(interface {
		Counts(context.Context) (Counts, error)
	}); ok {
		return c.Counts(ctx)
	}

	t, err := s.ListTranslated(ctx)
	if err != nil {
		return Counts{}, err
	}
	u, err := s.ListUntranslated(ctx)
	if err != nil {
		return Counts{}, err
	}
	return Counts{Translated: len(t), Untranslated: len(u)}, nil
}
