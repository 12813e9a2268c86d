// Package translate builds translation prompts, dispatches them to a
// completion backend and parses the labeled reply.
package translate

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/f3rmion/manchu/internal/manchu"
)

// promptData is the template input for one translation request.
type promptData struct {
	Text   string
	Task   []string
	Labels [2]string
	Extra  string
	Input  string // Heading for the text block
}

const promptTemplate = `You are a bilingual expert translator specialized in the Manchu language (ᠮᠠᠨᠵᡠ ᡤᡳᠰᡠᠨ), trained in both the Möllendorff Latin transliteration system and English translation.

Your task:
{{- range $i, $step := .Task}}
{{inc $i}}. {{$step}}
{{- end}}

Output format must always be exactly two lines:
{{index .Labels 0}}: <{{lower (index .Labels 0)}}>
{{index .Labels 1}}: <{{lower (index .Labels 1)}}>

{{.Extra}}

{{.Input}}:
{{.Text}}`

var promptTmpl = template.Must(template.New("prompt").Funcs(template.FuncMap{
	"inc":   func(i int) int { return i + 1 },
	"lower": strings.ToLower,
}).Parse(promptTemplate))

// Labels returns the two reply labels expected for a direction, in order.
func Labels(dir manchu.Direction) ([2]string, error) {
	switch dir {
	case manchu.ManchuToEnglish:
		return [2]string{"Latin", "English"}, nil
	case manchu.EnglishToManchu:
		return [2]string{"Manchu", "Latin"}, nil
	default:
		return [2]string{}, fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
	}
}

// Prompt renders the completion prompt for text in the given direction.
// The same input always yields the same prompt.
func Prompt(text string, dir manchu.Direction) (string, error) {
	labels, err := Labels(dir)
	if err != nil {
		return "", err
	}

	data := promptData{Text: strings.TrimSpace(text), Labels: labels}
	if dir == manchu.ManchuToEnglish {
		data.Task = []string{
			"Transliterate the given Manchu text into Latin script (Möllendorff style), preserving spacing and diacritics.",
			"Translate it into natural, grammatical English while retaining historical tone and meaning.",
		}
		data.Extra = "Do not add commentary or explanations."
		data.Input = "Text"
	} else {
		data.Task = []string{
			"Translate the given English text into classical Manchu script (ᠮᠠᠨᠵᡠ ᡤᡳᠰᡠᠨ).",
			"Transliterate the Manchu translation into Möllendorff-style Latin.",
		}
		data.Extra = "Do not repeat the English text or add commentary."
		data.Input = "English Text"
	}

	var buf bytes.Buffer
	if err := promptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing prompt template: %w", err)
	}
	return buf.String(), nil
}
