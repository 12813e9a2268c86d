package importer

import (
	"fmt"

	"github.com/f3rmion/manchu/internal/anki"
	"github.com/f3rmion/manchu/internal/manchu"
)

// FieldMap names the Anki note fields holding each text.
type FieldMap struct {
	Manchu  string
	Latin   string
	English string
	Source  string
}

// DefaultFieldMap matches the note type written by export.ToAnki.
var DefaultFieldMap = FieldMap{
	Manchu:  "Manchu",
	Latin:   "Latin",
	English: "English",
	Source:  "Source",
}

func (m FieldMap) withDefaults() FieldMap {
	if m.Manchu == "" {
		m.Manchu = DefaultFieldMap.Manchu
	}
	if m.Latin == "" {
		m.Latin = DefaultFieldMap.Latin
	}
	if m.English == "" {
		m.English = DefaultFieldMap.English
	}
	if m.Source == "" {
		m.Source = DefaultFieldMap.Source
	}
	return m
}

// Anki reads the notes of an .apkg deck. Field values are stripped of HTML.
// Notes without Manchu or Latin text are skipped.
func Anki(path string, fields FieldMap) (*Result, error) {
	fields = fields.withDefaults()

	pkg, err := anki.OpenPackage(path)
	if err != nil {
		return nil, fmt.Errorf("opening anki package: %w", err)
	}
	defer pkg.Close()

	res := &Result{}
	for _, note := range pkg.Notes {
		rec := manchu.Record{
			ManchuText:  StripHTML(pkg.GetFieldValue(note, fields.Manchu)),
			LatinText:   StripHTML(pkg.GetFieldValue(note, fields.Latin)),
			EnglishText: StripHTML(pkg.GetFieldValue(note, fields.English)),
			Source:      StripHTML(pkg.GetFieldValue(note, fields.Source)),
		}
		if rec.ManchuText == "" || rec.LatinText == "" {
			res.Skipped++
			continue
		}
		res.Records = append(res.Records, rec)
	}

	return res, nil
}
