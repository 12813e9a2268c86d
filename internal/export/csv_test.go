package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/f3rmion/manchu/internal/manchu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV_ExactOutput(t *testing.T) {
	t.Parallel()

	got := CSV([]manchu.Record{{ManchuText: "a b", LatinText: "x y", EnglishText: `He said "hi"`}})

	want := "\ufeff" + "Manchu,Latin,English\n" + `"a b","x y","He said ""hi"""`
	assert.Equal(t, want, string(got))
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, got[:3])
}

func TestCSV_Rows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		records []manchu.Record
		want    string
	}{
		{
			name: "header only",
			want: "\ufeffManchu,Latin,English",
		},
		{
			name: "empty english",
			records: []manchu.Record{
				{ManchuText: "ᠠᠮᠠ", LatinText: "ama"},
			},
			want: "\ufeffManchu,Latin,English\n\"ᠠᠮᠠ\",\"ama\",\"\"",
		},
		{
			name: "commas and newlines stay inside quotes",
			records: []manchu.Record{
				{ManchuText: "a,b", LatinText: "c\nd", EnglishText: "e"},
				{ManchuText: "f", LatinText: "g", EnglishText: "h"},
			},
			want: "\ufeffManchu,Latin,English\n\"a,b\",\"c\nd\",\"e\"\n\"f\",\"g\",\"h\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, string(CSV(tt.records)))
		})
	}
}

func TestFilename(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "manchu_dataset_all.csv", Filename(""))
	assert.Equal(t, "manchu_dataset_ama.csv", Filename("ama"))
	assert.Equal(t, "manchu_dataset_a_b.csv", Filename("a/b"))
}

func TestToFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	records := []manchu.Record{{ManchuText: "ᠠᠮᠠ", LatinText: "ama", EnglishText: "father"}}

	path, err := ToFile(dir, "ama", records)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "manchu_dataset_ama.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, CSV(records), data)

	_, err = ToFile(dir, "none", nil)
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestToAnki(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := ToAnki(dir, "x", nil)
	require.ErrorIs(t, err, ErrNoRecords)

	path, err := ToAnki(dir, "", []manchu.Record{{ManchuText: "ᠠᠮᠠ", LatinText: "ama", EnglishText: "father"}})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "manchu_dataset_all.apkg"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
