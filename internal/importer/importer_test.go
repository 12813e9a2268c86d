package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/f3rmion/manchu/internal/export"
	"github.com/f3rmion/manchu/internal/manchu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    []manchu.Record
		skipped int
		wantErr error
	}{
		{
			name:  "columns in any order and case",
			input: "english,LATIN,Manchu,source\nfather,ama,ᠠᠮᠠ,Qing\n",
			want:  []manchu.Record{{ManchuText: "ᠠᠮᠠ", LatinText: "ama", EnglishText: "father", Source: "Qing"}},
		},
		{
			name:  "bom and quoted fields",
			input: "\ufeffManchu,Latin,English\n\"a, b\",\"x y\",\"He said \"\"hi\"\"\"\n",
			want:  []manchu.Record{{ManchuText: "a, b", LatinText: "x y", EnglishText: `He said "hi"`}},
		},
		{
			name:    "rows without manchu or latin are skipped",
			input:   "Manchu,Latin\nᠠᠮᠠ,\n,eme\nᡝᠮᡝ,eme\n",
			want:    []manchu.Record{{ManchuText: "ᡝᠮᡝ", LatinText: "eme"}},
			skipped: 2,
		},
		{
			name:  "empty input",
			input: "",
		},
		{
			name:    "missing latin column",
			input:   "Manchu,English\nᠠᠮᠠ,father\n",
			wantErr: ErrMissingColumn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := CSV(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Records)
			assert.Equal(t, tt.skipped, res.Skipped)
		})
	}
}

func TestCSV_ReadsExport(t *testing.T) {
	t.Parallel()

	records := []manchu.Record{
		{ManchuText: "ᠠᠮᠠ ᡝᠮᡝ", LatinText: "ama eme", EnglishText: "father mother"},
		{ManchuText: "ᠪᠣᠣ", LatinText: "boo", EnglishText: `a "house"`},
	}

	res, err := CSV(strings.NewReader(string(export.CSV(records))))
	require.NoError(t, err)
	assert.Equal(t, records, res.Records)
}

func TestCSVUntranslated(t *testing.T) {
	t.Parallel()

	input := "image_url,description,source_link\nhttps://x/1.png,Edict,https://src/1\n,no image,\n"
	res, err := CSVUntranslated(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []manchu.UntranslatedRecord{
		{ImageURL: "https://x/1.png", Description: "Edict", SourceLink: "https://src/1"},
	}, res.Untranslated)
	assert.Equal(t, 1, res.Skipped)

	_, err = CSVUntranslated(strings.NewReader("description\nx\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestJSONL(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		`{"id": 99, "manchu_text": "ᠠᠮᠠ", "latin_text": "ama", "english_text": "father"}`,
		``,
		`not json`,
		`{"manchu_text": "ᡝᠮᡝ"}`,
		`{"manchu_text": " ᡝᠮᡝ ", "latin_text": "eme", "source": "Qing"}`,
	}, "\n")

	res, err := JSONL(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []manchu.Record{
		{ManchuText: "ᠠᠮᠠ", LatinText: "ama", EnglishText: "father"},
		{ManchuText: "ᡝᠮᡝ", LatinText: "eme", Source: "Qing"},
	}, res.Records)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 2, res.Len())
}

func TestJSONLUntranslated(t *testing.T) {
	t.Parallel()

	input := `{"image_url": "https://x/1.png", "description": "Edict"}
{"description": "no image"}
`
	res, err := JSONLUntranslated(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []manchu.UntranslatedRecord{{ImageURL: "https://x/1.png", Description: "Edict"}}, res.Untranslated)
	assert.Equal(t, 1, res.Skipped)
}

func TestStripHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"plain", "plain"},
		{"<b>ama</b>", "ama"},
		{"ama<br>eme", "ama eme"},
		{"<div>ama</div><div>eme</div>", "ama eme"},
		{"father &amp; mother&nbsp;", "father & mother"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StripHTML(tt.in), tt.in)
	}
}

func TestFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	records := []manchu.Record{
		{ManchuText: "ᠠᠮᠠ", LatinText: "ama", EnglishText: "father", Source: "Qing"},
		{ManchuText: "ᡝᠮᡝ", LatinText: "eme"},
	}

	t.Run("csv", func(t *testing.T) {
		path, err := export.ToFile(dir, "csv", records)
		require.NoError(t, err)

		res, err := File(path, Options{})
		require.NoError(t, err)
		require.Len(t, res.Records, 2)
		assert.Equal(t, "father", res.Records[0].EnglishText)
	})

	t.Run("jsonl", func(t *testing.T) {
		path := filepath.Join(dir, "records.JSONL")
		require.NoError(t, os.WriteFile(path, []byte(`{"manchu_text":"ᠠᠮᠠ","latin_text":"ama"}`), 0644))

		res, err := File(path, Options{})
		require.NoError(t, err)
		assert.Len(t, res.Records, 1)
	})

	t.Run("anki", func(t *testing.T) {
		path, err := export.ToAnki(dir, "deck", records)
		require.NoError(t, err)

		res, err := File(path, Options{})
		require.NoError(t, err)
		assert.Equal(t, records, res.Records)
	})

	t.Run("anki untranslated", func(t *testing.T) {
		_, err := File(filepath.Join(dir, "x.apkg"), Options{Untranslated: true})
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("unknown extension", func(t *testing.T) {
		path := filepath.Join(dir, "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

		_, err := File(path, Options{})
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestAnki_CustomFieldMap(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path, err := export.ToAnki(dir, "", []manchu.Record{{ManchuText: "ᠠᠮᠠ", LatinText: "ama", EnglishText: "father"}})
	require.NoError(t, err)

	// English read as Latin leaves records whose Latin is present.
	res, err := Anki(path, FieldMap{Latin: "English", English: "Latin"})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "father", res.Records[0].LatinText)
	assert.Equal(t, "ama", res.Records[0].EnglishText)
}
