package translate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/f3rmion/manchu/internal/manchu"
)

var labelLine = regexp.MustCompile(`(?i)^(Latin|English|Manchu):\s*(.*)$`)

// Parse extracts the labeled fields of a reply. The reply must consist of
// exactly two non-blank lines carrying the two labels expected for dir, in
// any order and any letter case. Values are assigned by label. Anything else
// fails with ErrMalformedReply.
func Parse(reply string, dir manchu.Direction) (manchu.TranslationOutput, error) {
	want, err := Labels(dir)
	if err != nil {
		return manchu.TranslationOutput{}, err
	}

	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(reply, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) != 2 {
		return manchu.TranslationOutput{}, fmt.Errorf("%w: expected 2 lines, got %d", ErrMalformedReply, len(lines))
	}

	values := make(map[string]string, 2)
	for _, line := range lines {
		m := labelLine.FindStringSubmatch(line)
		if m == nil {
			return manchu.TranslationOutput{}, fmt.Errorf("%w: unlabeled line %q", ErrMalformedReply, line)
		}

		label := canonicalLabel(m[1])
		if label != want[0] && label != want[1] {
			return manchu.TranslationOutput{}, fmt.Errorf("%w: unexpected label %q for %s", ErrMalformedReply, label, dir)
		}
		if _, dup := values[label]; dup {
			return manchu.TranslationOutput{}, fmt.Errorf("%w: duplicate label %q", ErrMalformedReply, label)
		}
		values[label] = strings.TrimSpace(m[2])
	}

	for _, label := range want {
		if _, ok := values[label]; !ok {
			return manchu.TranslationOutput{}, fmt.Errorf("%w: missing label %q", ErrMalformedReply, label)
		}
	}

	return manchu.TranslationOutput{
		Latin:   values["Latin"],
		English: values["English"],
		Manchu:  values["Manchu"],
	}, nil
}

func canonicalLabel(s string) string {
	switch strings.ToLower(s) {
	case "latin":
		return "Latin"
	case "english":
		return "English"
	default:
		return "Manchu"
	}
}
