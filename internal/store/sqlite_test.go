package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/f3rmion/manchu/internal/config"
	"github.com/f3rmion/manchu/internal/manchu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestStore(t *testing.T) *SQLite {
	t.Helper()

	s, err := OpenSQLite(":memory:", discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = s.InsertRecords(context.Background(), []manchu.Record{
		{ID: 3, ManchuText: "ᠠᠮᠠ ᡝᠮᡝ", LatinText: "ama eme", EnglishText: "father and mother", Source: "Qing wenjian"},
		{ID: 1, ManchuText: "ᠠᠪᡴᠠ", LatinText: "abka", EnglishText: "heaven"},
		{ID: 2, ManchuText: "ᡧᠠᠨ", LatinText: "ŠAN", EnglishText: ""},
		{ID: 4, ManchuText: "ᠪᠠ", LatinText: "ba", EnglishText: "100% place_name"},
	})
	require.NoError(t, err)
	return s
}

func ids(records []manchu.Record) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestSQLite_Search(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		query string
		want  []int64
	}{
		{name: "substring inside a word", query: "ame", want: []int64{4}},
		{name: "latin word", query: "ama", want: []int64{3}},
		{name: "english case-insensitive", query: "HEAVEN", want: []int64{1}},
		{name: "manchu script", query: "ᠠᠮᠠ", want: []int64{3}},
		{name: "unicode case folding", query: "šan", want: []int64{2}},
		{name: "any column, ordered by id", query: "a", want: []int64{1, 2, 3, 4}},
		{name: "empty matches all", query: "", want: []int64{1, 2, 3, 4}},
		{name: "percent is literal", query: "100%", want: []int64{4}},
		{name: "underscore is literal", query: "r_a", want: []int64{}},
		{name: "underscore match", query: "place_", want: []int64{4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Search(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSQLite_NullableColumns(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)

	got, err := s.Search(context.Background(), "ŠAN")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "", got[0].EnglishText)
	assert.Equal(t, "", got[0].Source)

	got, err = s.Search(context.Background(), "father")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Qing wenjian", got[0].Source)
}

func TestSQLite_ListAndCounts(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()

	n, err := s.InsertUntranslated(ctx, []manchu.UntranslatedRecord{
		{ImageURL: "https://example.org/b.png"},
		{ImageURL: "https://example.org/a.png", Description: "stele rubbing", SourceLink: "https://example.org/src"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := s.ListTranslated(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(all))

	un, err := s.ListUntranslated(ctx)
	require.NoError(t, err)
	require.Len(t, un, 2)
	assert.Less(t, un[0].ID, un[1].ID)
	assert.Equal(t, "", un[0].Description)
	assert.Equal(t, "stele rubbing", un[1].Description)

	c, err := CountAll(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, Counts{Translated: 4, Untranslated: 2}, c)
}

func TestSQLite_InsertAssignsAndReplacesIDs(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.InsertRecords(ctx, []manchu.Record{
		{ManchuText: "ᠨᡳᠶᠠᠯᠮᠠ", LatinText: "niyalma", EnglishText: "person"},
		{ID: 1, ManchuText: "ᠠᠪᡴᠠ", LatinText: "abka", EnglishText: "sky"},
	})
	require.NoError(t, err)

	got, err := s.Search(ctx, "niyalma")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(5), got[0].ID)

	got, err = s.Search(ctx, "abka")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sky", got[0].EnglishText)
}

func TestSQLite_InsertEmpty(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	n, err := s.InsertRecords(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "corpus.db")
	s, err := Open(config.StoreConfig{Backend: config.BackendSQLite, Path: path}, discardLogger())
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.FileExists(t, path)

	_, err = Open(config.StoreConfig{Backend: "mongo"}, discardLogger())
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
