// Package importer loads corpus records from CSV, JSONL and Anki files.
// It only parses; writing to a store is left to the caller.
package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/f3rmion/manchu/internal/manchu"
)

var (
	// ErrUnsupportedFormat is returned by File for an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported import format")

	// ErrMissingColumn is returned when a CSV header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")
)

// Options controls how a file is read.
type Options struct {
	// Untranslated reads untranslated documents instead of records.
	Untranslated bool
	// Fields maps Anki note fields; zero values use DefaultFieldMap.
	Fields FieldMap
}

// Result is the outcome of an import. Exactly one of Records and
// Untranslated is populated.
type Result struct {
	Records      []manchu.Record
	Untranslated []manchu.UntranslatedRecord
	Skipped      int // rows that were malformed or missing required text
}

// Len returns the number of parsed entries.
func (r *Result) Len() int {
	return len(r.Records) + len(r.Untranslated)
}

// Extensions lists the file extensions File understands.
var Extensions = []string{".csv", ".jsonl", ".apkg"}

// File reads path, choosing the parser from its extension.
func File(path string, opts Options) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".apkg" {
		if opts.Untranslated {
			return nil, fmt.Errorf("%w: anki decks hold translated records only", ErrUnsupportedFormat)
		}
		return Anki(path, opts.Fields)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	switch ext {
	case ".csv":
		if opts.Untranslated {
			return CSVUntranslated(f)
		}
		return CSV(f)
	case ".jsonl", ".ndjson":
		if opts.Untranslated {
			return JSONLUntranslated(f)
		}
		return JSONL(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]*>`)
	multiSpaceRe = regexp.MustCompile(`[ \t]{2,}`)
	htmlEntities = strings.NewReplacer(
		"&nbsp;", " ", "&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#39;", "'",
	)
	lineBreakRe = regexp.MustCompile(`(?i)<br\s*/?>|</div>|</p>`)
)

// StripHTML removes markup from an Anki field, keeping line breaks as spaces.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	s = lineBreakRe.ReplaceAllString(s, " ")
	s = htmlTagRe.ReplaceAllString(s, "")
	s = htmlEntities.Replace(s)
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
