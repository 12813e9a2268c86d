package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/f3rmion/manchu/internal/anki"
	"github.com/f3rmion/manchu/internal/manchu"
)

// deckName is the Anki deck and note type name of exported decks.
const deckName = "Manchu"

// ToAnki writes records as an Anki deck into dir and returns the path.
// The file is named like the CSV export with an .apkg extension.
func ToAnki(dir, query string, records []manchu.Record) (string, error) {
	name := strings.TrimSuffix(Filename(query), ".csv") + ".apkg"
	path := filepath.Join(dir, name)
	if err := WriteAnki(path, records); err != nil {
		return "", err
	}
	return path, nil
}

// WriteAnki writes records as an Anki deck to path, one note per record.
func WriteAnki(path string, records []manchu.Record) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	deck := anki.NewDeck(deckName)
	for _, r := range records {
		deck.AddNote(r.ManchuText, r.LatinText, r.EnglishText, r.Source)
	}

	if err := deck.WriteFile(path); err != nil {
		return fmt.Errorf("writing anki deck: %w", err)
	}
	return nil
}
