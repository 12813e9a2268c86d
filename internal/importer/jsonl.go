package importer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/f3rmion/manchu/internal/manchu"
)

// maxLineSize bounds a single JSONL line.
const maxLineSize = 1 << 20

// JSONL reads one record object per line using the manchu.Record JSON
// field names. Blank lines are ignored; malformed lines and records
// without Manchu or Latin text are skipped and counted.
func JSONL(r io.Reader) (*Result, error) {
	res := &Result{}
	err := scanLines(r, func(line []byte) {
		var rec manchu.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			res.Skipped++
			return
		}
		rec.ID = 0
		rec.ManchuText = strings.TrimSpace(rec.ManchuText)
		rec.LatinText = strings.TrimSpace(rec.LatinText)
		if rec.ManchuText == "" || rec.LatinText == "" {
			res.Skipped++
			return
		}
		res.Records = append(res.Records, rec)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// JSONLUntranslated reads one untranslated document per line.
func JSONLUntranslated(r io.Reader) (*Result, error) {
	res := &Result{}
	err := scanLines(r, func(line []byte) {
		var rec manchu.UntranslatedRecord
		if err := json.Unmarshal(line, &rec); err != nil || strings.TrimSpace(rec.ImageURL) == "" {
			res.Skipped++
			return
		}
		rec.ID = 0
		res.Untranslated = append(res.Untranslated, rec)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func scanLines(r io.Reader, fn func([]byte)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		fn(line)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading jsonl: %w", err)
	}
	return nil
}
