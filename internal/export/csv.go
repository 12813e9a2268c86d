// Package export serializes a result set to a spreadsheet-friendly CSV file.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/f3rmion/manchu/internal/manchu"
)

// ErrNoRecords is returned when there is nothing to export.
var ErrNoRecords = errors.New("no results to export")

// bom makes spreadsheet tools decode the file as UTF-8 so Manchu script
// renders correctly.
const bom = "\ufeff"

var header = []string{"Manchu", "Latin", "English"}

// WriteCSV writes records as CSV: a BOM, the header row, then one row per
// record. Every field is quoted with embedded quotes doubled, and rows are
// separated by a single newline with none after the last.
func WriteCSV(w io.Writer, records []manchu.Record) error {
	var b strings.Builder
	b.WriteString(bom)
	b.WriteString(strings.Join(header, ","))

	for _, r := range records {
		b.WriteByte('\n')
		b.WriteString(quote(r.ManchuText))
		b.WriteByte(',')
		b.WriteString(quote(r.LatinText))
		b.WriteByte(',')
		b.WriteString(quote(r.EnglishText))
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// CSV returns the WriteCSV output as bytes.
func CSV(records []manchu.Record) []byte {
	var buf bytes.Buffer
	_ = WriteCSV(&buf, records) // bytes.Buffer writes do not fail
	return buf.Bytes()
}

func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// Filename returns the export file name for a query. An empty query is named "all".
func Filename(query string) string {
	if query == "" {
		query = "all"
	}
	query = strings.NewReplacer("/", "_", `\`, "_").Replace(query)
	return "manchu_dataset_" + query + ".csv"
}
