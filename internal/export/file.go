package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/f3rmion/manchu/internal/manchu"
)

// ToFile writes the CSV for records into dir using Filename(query) and
// returns the written path.
func ToFile(dir, query string, records []manchu.Record) (string, error) {
	path := filepath.Join(dir, Filename(query))
	if err := WriteFile(path, records); err != nil {
		return "", err
	}
	return path, nil
}

// WriteFile writes the CSV for records to path.
func WriteFile(path string, records []manchu.Record) error {
	if len(records) == 0 {
		return ErrNoRecords
	}
	if err := os.WriteFile(path, CSV(records), 0644); err != nil {
		return fmt.Errorf("writing export file: %w", err)
	}
	return nil
}
