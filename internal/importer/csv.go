package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/f3rmion/manchu/internal/manchu"
)

const bom = "\ufeff"

// header maps lower-cased column names to their index.
type header map[string]int

func readHeader(r *csv.Reader) (header, error) {
	row, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	h := make(header, len(row))
	for i, name := range row {
		if i == 0 {
			name = strings.TrimPrefix(name, bom)
		}
		h[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return h, nil
}

func (h header) require(names ...string) error {
	for _, n := range names {
		if _, ok := h[n]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingColumn, n)
		}
	}
	return nil
}

// get returns the first present column among names, trimmed.
func (h header) get(row []string, names ...string) string {
	for _, n := range names {
		if i, ok := h[n]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
	}
	return ""
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// CSV reads translated records. The header must name Manchu and Latin
// columns in any order and case; English, image_url and source are optional.
// It reads the files written by the export package.
func CSV(r io.Reader) (*Result, error) {
	cr := newReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	res := &Result{}
	if h == nil {
		return res, nil
	}
	if err := h.require("manchu", "latin"); err != nil {
		return nil, err
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		rec := manchu.Record{
			ManchuText:  h.get(row, "manchu"),
			LatinText:   h.get(row, "latin"),
			EnglishText: h.get(row, "english"),
			ImageURL:    h.get(row, "image_url", "image"),
			Source:      h.get(row, "source"),
		}
		if rec.ManchuText == "" || rec.LatinText == "" {
			res.Skipped++
			continue
		}
		res.Records = append(res.Records, rec)
	}

	return res, nil
}

// CSVUntranslated reads untranslated documents. image_url is required;
// description and source_link are optional.
func CSVUntranslated(r io.Reader) (*Result, error) {
	cr := newReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	res := &Result{}
	if h == nil {
		return res, nil
	}
	if err := h.require("image_url"); err != nil {
		return nil, err
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		rec := manchu.UntranslatedRecord{
			ImageURL:    h.get(row, "image_url"),
			Description: h.get(row, "description"),
			SourceLink:  h.get(row, "source_link", "source"),
		}
		if rec.ImageURL == "" {
			res.Skipped++
			continue
		}
		res.Untranslated = append(res.Untranslated, rec)
	}

	return res, nil
}
