package translate

import (
	"strings"
	"testing"

	"github.com/f3rmion/manchu/internal/manchu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompt_LabelsInOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dir    manchu.Direction
		first  string
		second string
	}{
		{dir: manchu.ManchuToEnglish, first: "Latin: <latin>", second: "English: <english>"},
		{dir: manchu.EnglishToManchu, first: "Manchu: <manchu>", second: "Latin: <latin>"},
	}

	for _, tt := range tests {
		t.Run(string(tt.dir), func(t *testing.T) {
			t.Parallel()

			p, err := Prompt("  ᠠᠮᠠ ᡝᠮᡝ \n", tt.dir)
			require.NoError(t, err)

			i, j := strings.Index(p, tt.first), strings.Index(p, tt.second)
			require.GreaterOrEqual(t, i, 0, p)
			require.GreaterOrEqual(t, j, 0, p)
			assert.Less(t, i, j)
			assert.True(t, strings.HasSuffix(p, ":\nᠠᠮᠠ ᡝᠮᡝ"), p)
			assert.Contains(t, p, "1. ")
			assert.Contains(t, p, "2. ")
		})
	}
}

func TestPrompt_Deterministic(t *testing.T) {
	t.Parallel()

	a, err := Prompt("father and mother", manchu.EnglishToManchu)
	require.NoError(t, err)
	b, err := Prompt("father and mother", manchu.EnglishToManchu)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPrompt_InvalidDirection(t *testing.T) {
	t.Parallel()

	_, err := Prompt("x", "")
	assert.ErrorIs(t, err, ErrInvalidDirection)
}
