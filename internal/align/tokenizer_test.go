package align

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "single word", text: "ama", want: []string{"ama"}},
		{name: "two words", text: "ama eme", want: []string{"ama", "eme"}},
		{name: "whitespace runs", text: "ama \t\n eme", want: []string{"ama", "eme"}},
		{name: "leading and trailing", text: "  ama eme  ", want: []string{"ama", "eme"}},
		{name: "manchu script", text: "ᠠᠮᠠ ᡝᠮᡝ", want: []string{"ᠠᠮᠠ", "ᡝᠮᡝ"}},
		{name: "empty", text: "", want: nil},
		{name: "blank", text: "   ", want: nil},
		{name: "byte order mark separates", text: "ama\ufeffeme", want: []string{"ama", "eme"}},
		{name: "next line does not separate", text: "ama\u0085eme", want: []string{"ama\u0085eme"}},
		{name: "no-break and ideographic spaces", text: "ama\u00a0eme\u3000ahūn\u2009deo", want: []string{"ama", "eme", "ahūn", "deo"}},
		{name: "blank of unicode spaces", text: "\u2028\u202f\ufeff", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tokens := Tokenize(tt.text, 7)
			require.Len(t, tokens, len(tt.want))
			for i, tok := range tokens {
				assert.Equal(t, tt.want[i], tok.Text)
				assert.Equal(t, int64(7), tok.RecordID)
				assert.Equal(t, i, tok.Position)
			}
		})
	}
}

func TestTokenize_Deterministic(t *testing.T) {
	t.Parallel()

	text := "abka  de  bisire   ejen"
	assert.Equal(t, Tokenize(text, 3), Tokenize(text, 3))
}

func TestTokenize_CountMatchesSegments(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"a", "a b c", " a  b ", "x\ty\nz w"} {
		tokens := Tokenize(text, 1)
		assert.Len(t, tokens, len(strings.Fields(text)), text)
		for i := 1; i < len(tokens); i++ {
			assert.Greater(t, tokens[i].Position, tokens[i-1].Position)
		}
		if len(tokens) > 0 {
			assert.Equal(t, 0, tokens[0].Position)
		}
	}
}

func TestTokenID_RoundTrip(t *testing.T) {
	t.Parallel()

	id := TokenID{RecordID: 42, Position: 3}
	assert.Equal(t, "42-3", id.String())

	parsed, err := ParseTokenID("42-3")
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestParseTokenID_Invalid(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "42", "-3", "42-", "a-1", "1-b", "1--2"} {
		_, err := ParseTokenID(s)
		assert.Error(t, err, s)
	}
}
