package views

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/manchu/internal/align"
	"github.com/f3rmion/manchu/internal/llm"
	"github.com/f3rmion/manchu/internal/manchu"
	"github.com/f3rmion/manchu/internal/nav"
	"github.com/f3rmion/manchu/internal/results"
	"github.com/f3rmion/manchu/internal/store"
	"github.com/f3rmion/manchu/internal/translate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	SearchFunc           func(ctx context.Context, query string) ([]manchu.Record, error)
	ListTranslatedFunc   func(ctx context.Context) ([]manchu.Record, error)
	ListUntranslatedFunc func(ctx context.Context) ([]manchu.UntranslatedRecord, error)
}

func (m *mockStore) Search(ctx context.Context, query string) ([]manchu.Record, error) {
	return m.SearchFunc(ctx, query)
}

func (m *mockStore) ListTranslated(ctx context.Context) ([]manchu.Record, error) {
	return m.ListTranslatedFunc(ctx)
}

func (m *mockStore) ListUntranslated(ctx context.Context) ([]manchu.UntranslatedRecord, error) {
	return m.ListUntranslatedFunc(ctx)
}

func (m *mockStore) Close() error { return nil }

type mockWriterStore struct {
	mockStore
	inserted []manchu.Record
}

func (m *mockWriterStore) InsertRecords(_ context.Context, records []manchu.Record) (int, error) {
	m.inserted = append(m.inserted, records...)
	return len(records), nil
}

func (m *mockWriterStore) InsertUntranslated(_ context.Context, records []manchu.UntranslatedRecord) (int, error) {
	return len(records), nil
}

type mockCompleter struct {
	CompleteFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return m.CompleteFunc(ctx, prompt)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var corpus = []manchu.Record{
	{ID: 1, ManchuText: "ᠠᠪᡴᠠ ᠨᠠ", LatinText: "abka na", EnglishText: "heaven and earth"},
	{ID: 2, ManchuText: "ᠪᡳ", LatinText: "bi", EnglishText: "I"},
}

func newSearchFixture(t *testing.T) (SearchModel, *results.Manager) {
	t.Helper()

	s := &mockStore{SearchFunc: func(_ context.Context, q string) ([]manchu.Record, error) {
		if q == "abka" {
			return corpus, nil
		}
		return nil, errors.New("connection refused")
	}}
	mgr := results.NewManager(s, discardLogger())
	m := NewSearchModel(mgr, SearchOptions{})
	m.SetSize(80, 30)
	return m, mgr
}

func TestSearchModel_DiscardsStaleOutcome(t *testing.T) {
	m, mgr := newSearchFixture(t)
	ctx := context.Background()

	first := mgr.Begin("abka")
	second := mgr.Begin("abka")
	m.loading = true

	m, _ = m.Update(searchResultMsg{outcome: mgr.Fetch(ctx, first)})
	assert.True(t, m.loading, "a stale outcome must not end the search")
	assert.Empty(t, mgr.Records())

	m, _ = m.Update(searchResultMsg{outcome: mgr.Fetch(ctx, second)})
	assert.False(t, m.loading)
	assert.NoError(t, m.err)
	assert.Equal(t, corpus, mgr.Records())
	assert.Equal(t, "2 results", m.notice)
}

func TestSearchModel_FailureKeepsResults(t *testing.T) {
	m, mgr := newSearchFixture(t)
	ctx := context.Background()

	m, _ = m.Update(searchResultMsg{outcome: mgr.Fetch(ctx, mgr.Begin("abka"))})
	require.Len(t, mgr.Records(), 2)

	m, _ = m.Update(searchResultMsg{outcome: mgr.Fetch(ctx, mgr.Begin("offline"))})
	assert.ErrorIs(t, m.err, results.ErrSearchFailed)
	assert.Equal(t, corpus, mgr.Records())
	assert.Equal(t, "abka", mgr.Query())
}

func TestSearchModel_KeyboardNavigation(t *testing.T) {
	m, mgr := newSearchFixture(t)
	m, _ = m.Update(searchResultMsg{outcome: mgr.Fetch(context.Background(), mgr.Begin("abka"))})
	m.focus(true)
	sel := mgr.Selection()

	m, _ = m.Update(key("enter"))
	active, ok := sel.Active()
	require.True(t, ok)
	assert.Equal(t, align.TokenID{RecordID: 1, Position: 0}, active)

	m, _ = m.Update(key("right"))
	active, _ = sel.Active()
	assert.Equal(t, align.TokenID{RecordID: 1, Position: 1}, active)

	m, _ = m.Update(key("right"))
	active, _ = sel.Active()
	assert.Equal(t, align.TokenID{RecordID: 1, Position: 1}, active, "navigation stays inside the record")

	m, _ = m.Update(key("n"))
	active, _ = sel.Active()
	assert.Equal(t, align.TokenID{RecordID: 2, Position: 0}, active)

	m, _ = m.Update(key("left"))
	active, _ = sel.Active()
	assert.Equal(t, align.TokenID{RecordID: 2, Position: 0}, active)

	m, _ = m.Update(key("p"))
	active, _ = sel.Active()
	assert.Equal(t, align.TokenID{RecordID: 1, Position: 0}, active)

	m, _ = m.Update(key("/"))
	assert.True(t, m.InputFocused())
}

func TestSearchModel_GoToWord(t *testing.T) {
	m, mgr := newSearchFixture(t)
	m, _ = m.Update(searchResultMsg{outcome: mgr.Fetch(context.Background(), mgr.Begin("abka"))})
	m.focus(true)
	sel := mgr.Selection()

	t.Run("without a selection uses the first record", func(t *testing.T) {
		m, _ = m.Update(key("g"))
		assert.True(t, m.InputFocused(), "digits go to the word prompt")
		m, _ = m.Update(key("2"))
		m, _ = m.Update(key("enter"))

		assert.False(t, m.InputFocused())
		active, ok := sel.Active()
		require.True(t, ok)
		assert.Equal(t, align.TokenID{RecordID: 1, Position: 1}, active)
	})

	t.Run("out of range keeps the selection", func(t *testing.T) {
		m, _ = m.Update(key("g"))
		m, _ = m.Update(key("9"))
		m, _ = m.Update(key("enter"))

		active, _ := sel.Active()
		assert.Equal(t, align.TokenID{RecordID: 1, Position: 1}, active)
		assert.Equal(t, "no word 9 in record #1", m.notice)
	})

	t.Run("non-digits are ignored and esc cancels", func(t *testing.T) {
		m, _ = m.Update(key("g"))
		m, _ = m.Update(key("x"))
		assert.Empty(t, m.jump.Value())
		m, _ = m.Update(key("1"))
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})

		assert.False(t, m.InputFocused())
		active, _ := sel.Active()
		assert.Equal(t, align.TokenID{RecordID: 1, Position: 1}, active)
	})

	t.Run("jumps within the active record", func(t *testing.T) {
		m, _ = m.Update(key("n"))
		m, _ = m.Update(key("g"))
		m, _ = m.Update(key("1"))
		m, _ = m.Update(key("enter"))

		active, _ := sel.Active()
		assert.Equal(t, align.TokenID{RecordID: 2, Position: 0}, active)
	})
}

func TestRenderResults_Anchors(t *testing.T) {
	records := []manchu.Record{
		{ID: 1, ManchuText: "ᠠ ᠪ", LatinText: "a b c", EnglishText: "x"},
		{ID: 2, ManchuText: "ᡩ", LatinText: "d"},
	}
	idx := align.NewIndex(records)

	content, anchors := renderResults(records, idx, &nav.Selection{}, 80)

	// header, manchu, latin, english, blank; then header, manchu, latin, blank
	assert.Equal(t, 1, anchors[align.TokenID{RecordID: 1, Position: 0}])
	assert.Equal(t, 1, anchors[align.TokenID{RecordID: 1, Position: 1}])
	assert.Equal(t, 2, anchors[align.TokenID{RecordID: 1, Position: 2}], "latin-only position anchors on the latin line")
	assert.Equal(t, 6, anchors[align.TokenID{RecordID: 2, Position: 0}])
	assert.Contains(t, content, "#1")
	assert.Contains(t, content, "#2")
}

func newTranslateFixture(t *testing.T, reply string) (TranslateModel, *translate.Service) {
	t.Helper()

	c := &mockCompleter{CompleteFunc: func(context.Context, string) (string, error) {
		return reply, nil
	}}
	svc := translate.NewService(c, discardLogger())
	return NewTranslateModel(svc, manchu.ManchuToEnglish, 0), svc
}

func TestTranslateModel_AppliesLatestReply(t *testing.T) {
	m, svc := newTranslateFixture(t, "Latin: abka\nEnglish: heaven")

	req, err := svc.Begin("ᠠᠪᡴᠠ", manchu.ManchuToEnglish)
	require.NoError(t, err)
	m.loading = true

	m, _ = m.Update(translateResultMsg{result: svc.Run(context.Background(), req)})
	assert.False(t, m.loading)
	assert.NoError(t, m.err)
	assert.Equal(t, manchu.TranslationOutput{Latin: "abka", English: "heaven"}, m.output)
}

func TestTranslateModel_ToggleMakesReplyStale(t *testing.T) {
	m, svc := newTranslateFixture(t, "Latin: abka\nEnglish: heaven")
	m.input.SetValue("ᠠᠪᡴᠠ")

	req, err := svc.Begin("ᠠᠪᡴᠠ", manchu.ManchuToEnglish)
	require.NoError(t, err)
	m.loading = true

	m, _ = m.Update(key("d"))
	assert.Equal(t, manchu.EnglishToManchu, m.Direction())
	assert.Empty(t, m.input.Value())

	m, _ = m.Update(translateResultMsg{result: svc.Run(context.Background(), req)})
	assert.True(t, m.output.IsEmpty(), "a reply for the old direction must not be shown")
}

func TestTranslateModel_Submit(t *testing.T) {
	t.Run("no service", func(t *testing.T) {
		m := NewTranslateModel(nil, manchu.ManchuToEnglish, 0)
		m.input.SetValue("ᠠᠪᡴᠠ")

		m, cmd := m.submit()
		assert.ErrorIs(t, m.err, llm.ErrMissingAPIKey)
		assert.Nil(t, cmd)
		assert.False(t, m.loading)
	})

	t.Run("empty input", func(t *testing.T) {
		m, _ := newTranslateFixture(t, "")
		m.input.SetValue("   ")

		m, cmd := m.submit()
		assert.ErrorIs(t, m.err, translate.ErrEmptyInput)
		assert.Nil(t, cmd)
		assert.False(t, m.loading)
	})

	t.Run("starts request", func(t *testing.T) {
		m, _ := newTranslateFixture(t, "")
		m.input.SetValue("ᠠᠪᡴᠠ")

		m, cmd := m.submit()
		assert.NoError(t, m.err)
		assert.NotNil(t, cmd)
		assert.True(t, m.loading)
	})

	t.Run("invalid direction falls back", func(t *testing.T) {
		m := NewTranslateModel(nil, manchu.Direction("sideways"), 0)
		assert.Equal(t, manchu.ManchuToEnglish, m.Direction())
	})
}

func TestPager(t *testing.T) {
	p := pager{size: 6}

	assert.Equal(t, 1, p.count(0))
	assert.Equal(t, 1, p.count(6))
	assert.Equal(t, 3, p.count(13))

	p = p.move(1, 13)
	assert.Equal(t, 1, p.page)
	start, end := p.bounds(13)
	assert.Equal(t, 6, start)
	assert.Equal(t, 12, end)

	p = p.move(5, 13)
	assert.Equal(t, 2, p.page, "moves clamp to the last page")
	start, end = p.bounds(13)
	assert.Equal(t, 12, start)
	assert.Equal(t, 13, end)

	p = p.move(-9, 13)
	assert.Equal(t, 0, p.page)

	p = pager{page: 4, size: 6}.move(0, 7)
	assert.Equal(t, 1, p.page, "shrinking lists pull the page back in range")
}

func TestGalleryModel_PagesPerFilter(t *testing.T) {
	translated := make([]manchu.Record, 5)
	for i := range translated {
		translated[i] = manchu.Record{ID: int64(i + 1), ManchuText: "ᠠ", LatinText: "a"}
	}
	s := &mockStore{
		ListTranslatedFunc: func(context.Context) ([]manchu.Record, error) { return translated, nil },
		ListUntranslatedFunc: func(context.Context) ([]manchu.UntranslatedRecord, error) {
			return []manchu.UntranslatedRecord{{ID: 1, ImageURL: "https://example.org/1.jpg"}}, nil
		},
	}

	m := NewGalleryModel(s, 2, 0)
	msg := m.Init()()
	m, _ = m.Update(msg)
	require.NoError(t, m.err())
	assert.False(t, m.loading)

	m, _ = m.Update(key("right"))
	assert.Equal(t, 1, m.translatedPage.page)

	m, _ = m.Update(key("t"))
	assert.True(t, m.showUntranslated)
	assert.Equal(t, 0, m.untranslatedPage.page)

	m, _ = m.Update(key("right"))
	assert.Equal(t, 0, m.untranslatedPage.page, "single page does not advance")

	m, _ = m.Update(key("t"))
	assert.Equal(t, 1, m.translatedPage.page, "translated page is kept across filter switches")

	m, _ = m.Update(key("enter"))
	assert.True(t, m.InDetail())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.InDetail())
}

func TestGalleryModel_LoadError(t *testing.T) {
	s := &mockStore{
		ListTranslatedFunc: func(context.Context) ([]manchu.Record, error) {
			return nil, errors.New("timeout")
		},
		ListUntranslatedFunc: func(context.Context) ([]manchu.UntranslatedRecord, error) {
			return nil, errors.New("timeout")
		},
	}

	m := NewGalleryModel(s, 6, 0)
	m, _ = m.Update(m.Init()())
	assert.ErrorContains(t, m.err(), "loading translated documents")
	assert.Contains(t, m.View(), "timeout")
}

func TestGalleryModel_UntranslatedFailureKeepsTranslated(t *testing.T) {
	s := &mockStore{
		ListTranslatedFunc: func(context.Context) ([]manchu.Record, error) { return corpus, nil },
		ListUntranslatedFunc: func(context.Context) ([]manchu.UntranslatedRecord, error) {
			return nil, errors.New("table missing")
		},
	}

	m := NewGalleryModel(s, 6, 0)
	m.SetSize(80, 30)
	m, _ = m.Update(m.Init()())

	require.NoError(t, m.err())
	assert.Equal(t, corpus, m.translated)
	assert.Contains(t, m.View(), "abka na")

	m, _ = m.Update(key("t"))
	assert.ErrorContains(t, m.err(), "loading untranslated documents")
	assert.Contains(t, m.View(), "table missing")
}

func TestGroupBySource(t *testing.T) {
	records := []manchu.Record{
		{ID: 1, EnglishText: "heaven", Source: "Qing Veritable Records"},
		{ID: 2, EnglishText: "earth", Source: "Mirror of Manchu"},
		{ID: 3, Source: " Qing Veritable Records "},
		{ID: 4, EnglishText: "no source"},
	}

	groups := GroupBySource(records)

	require.Len(t, groups, 1)
	assert.Equal(t, "Qing Veritable Records", groups[0].Source)
	require.Len(t, groups[0].Records, 2)
	assert.Equal(t, int64(1), groups[0].Records[0].ID)
	assert.Equal(t, int64(3), groups[0].Records[1].ID)
}

func TestGalleryModel_SourceGroups(t *testing.T) {
	long := strings.Repeat("a", 130)
	s := &mockStore{
		ListTranslatedFunc: func(context.Context) ([]manchu.Record, error) {
			return []manchu.Record{
				{ID: 1, LatinText: "abka", EnglishText: long, Source: "Qing Veritable Records"},
				{ID: 2, LatinText: "na", Source: "Qing Veritable Records"},
				{ID: 3, LatinText: "bi", EnglishText: "I", Source: "Mirror of Manchu"},
			}, nil
		},
		ListUntranslatedFunc: func(context.Context) ([]manchu.UntranslatedRecord, error) { return nil, nil },
	}

	m := NewGalleryModel(s, 6, 0)
	m.SetSize(200, 40)
	m, _ = m.Update(m.Init()())

	view := m.View()
	assert.Contains(t, view, "Grouped by Shared Source")
	assert.Contains(t, view, "Qing Veritable Records")
	assert.Contains(t, view, "Entry #1: "+strings.Repeat("a", 120)+"…")
	assert.Contains(t, view, "Entry #2: No English text.")
	assert.NotContains(t, view, "Entry #3")

	m, _ = m.Update(key("g"))
	assert.NotContains(t, m.View(), "Grouped by Shared Source")
}

func TestGalleryModel_UntranslatedRows(t *testing.T) {
	s := &mockStore{
		ListTranslatedFunc: func(context.Context) ([]manchu.Record, error) { return nil, nil },
		ListUntranslatedFunc: func(context.Context) ([]manchu.UntranslatedRecord, error) {
			return []manchu.UntranslatedRecord{
				{ID: 7, ImageURL: "https://example.org/7.jpg", SourceLink: "https://example.org/scroll"},
				{ID: 8, ImageURL: "https://example.org/8.jpg", Description: "Stele rubbing"},
			}, nil
		},
	}

	m := NewGalleryModel(s, 6, 0)
	m.SetSize(120, 40)
	m, _ = m.Update(m.Init()())
	m, _ = m.Update(key("t"))

	view := m.View()
	assert.Contains(t, view, "#7 No description provided.")
	assert.Contains(t, view, "View Source → https://example.org/scroll")
	assert.Contains(t, view, "#8 Stele rubbing")
	assert.Equal(t, 1, strings.Count(view, "View Source →"))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestImportModel_ListsImportableFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "scans"), 0755))
	writeFile(t, filepath.Join(dir, "corpus.csv"), "manchu,latin\n")
	writeFile(t, filepath.Join(dir, "Deck.APKG"), "")
	writeFile(t, filepath.Join(dir, "lines.jsonl"), "")
	writeFile(t, filepath.Join(dir, "notes.txt"), "")
	writeFile(t, filepath.Join(dir, ".hidden.csv"), "")

	m := NewImportModel(nil, dir, 0)
	require.NoError(t, m.err)

	var names []string
	for _, e := range m.entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"..", "scans", "corpus.csv", "Deck.APKG", "lines.jsonl"}, names)
}

func TestImportModel_RunImport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.csv")
	writeFile(t, path, "Manchu,Latin,English\nᠠᠪᡴᠠ,abka,heaven\n,missing,\n")

	t.Run("read-only store", func(t *testing.T) {
		m := NewImportModel(&mockStore{}, dir, 0)
		msg := m.runImport(path)()

		done, ok := msg.(ImportDoneMsg)
		require.True(t, ok)
		assert.ErrorIs(t, done.Err, store.ErrReadOnly)
	})

	t.Run("writer store", func(t *testing.T) {
		w := &mockWriterStore{}
		m := NewImportModel(w, dir, 0)
		msg := m.runImport(path)()

		done, ok := msg.(ImportDoneMsg)
		require.True(t, ok)
		require.NoError(t, done.Err)
		assert.Equal(t, 1, done.Inserted)
		assert.Equal(t, 1, done.Skipped)
		assert.Equal(t, "heaven", w.inserted[0].EnglishText)

		m, _ = m.Update(done)
		assert.False(t, m.importing)
		require.NotNil(t, m.last)
		assert.Equal(t, path, m.last.Path)
	})
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", mask(""))
	assert.Equal(t, "****", mask("abcd"))
	assert.Equal(t, "********wxyz", mask("sk-0123456789wxyz"))
}
