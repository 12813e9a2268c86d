// Package manchu provides the core corpus types shared by the store, the
// alignment engine and the translation flow.
package manchu

import "fmt"

// Record is one corpus entry with parallel Manchu, Latin and English text.
// EnglishText is empty when the store holds no translation for the entry.
type Record struct {
	ID          int64  `json:"id" yaml:"id"`
	ManchuText  string `json:"manchu_text" yaml:"manchu_text"`
	LatinText   string `json:"latin_text" yaml:"latin_text"`
	EnglishText string `json:"english_text,omitempty" yaml:"english_text,omitempty"`
	ImageURL    string `json:"image_url,omitempty" yaml:"image_url,omitempty"` // Scan of the source page
	Source      string `json:"source,omitempty" yaml:"source,omitempty"`       // Bibliographic source
}

// UntranslatedRecord is a scanned document that has no transcription yet.
type UntranslatedRecord struct {
	ID          int64  `json:"id" yaml:"id"`
	ImageURL    string `json:"image_url" yaml:"image_url"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	SourceLink  string `json:"source_link,omitempty" yaml:"source_link,omitempty"`
}

// Direction selects one of the two translation flows.
type Direction string

const (
	ManchuToEnglish Direction = "manchu-to-english" // Manchu in, Latin + English out
	EnglishToManchu Direction = "english-to-manchu" // English in, Manchu + Latin out
)

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	return d == ManchuToEnglish || d == EnglishToManchu
}

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == EnglishToManchu {
		return ManchuToEnglish
	}
	return EnglishToManchu
}

// Label returns a short human readable name.
func (d Direction) Label() string {
	switch d {
	case ManchuToEnglish:
		return "Manchu → English"
	case EnglishToManchu:
		return "English → Manchu"
	default:
		return string(d)
	}
}

// ParseDirection converts a flag or config value into a Direction.
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown direction %q (want %q or %q)", s, ManchuToEnglish, EnglishToManchu)
	}
	return d, nil
}

// TranslationOutput holds the fields extracted from one translation reply.
// Exactly two fields are populated per direction; the third stays empty.
type TranslationOutput struct {
	Latin   string `json:"latin"`
	English string `json:"english"`
	Manchu  string `json:"manchu"`
}

// IsEmpty reports whether no field is populated.
func (o TranslationOutput) IsEmpty() bool {
	return o.Latin == "" && o.English == "" && o.Manchu == ""
}
