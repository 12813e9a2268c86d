// Package align tokenizes parallel-script text and indexes tokens by record.
//
// Alignment is positional: token i of a record's Manchu text is taken to be
// the counterpart of token i of the same record's Latin text. Nothing checks
// that the two scripts have the same word count; when they diverge the
// surplus positions simply have no partner in the shorter script.
package align

import (
	"fmt"
	"strconv"
	"strings"
)

// Token is one whitespace-delimited word of a record's text.
type Token struct {
	RecordID int64
	Position int
	Text     string
}

// ID returns the token's identifier.
func (t Token) ID() TokenID {
	return TokenID{RecordID: t.RecordID, Position: t.Position}
}

// TokenID identifies a token position within a record. The Manchu and Latin
// tokens at the same position share one TokenID.
type TokenID struct {
	RecordID int64
	Position int
}

// String formats the id as "recordId-positionIndex".
func (id TokenID) String() string {
	return strconv.FormatInt(id.RecordID, 10) + "-" + strconv.Itoa(id.Position)
}

// ParseTokenID parses the "recordId-positionIndex" form produced by String.
func ParseTokenID(s string) (TokenID, error) {
	// Record ids are positive, so the last dash separates the two parts.
	i := strings.LastIndexByte(s, '-')
	if i <= 0 || i == len(s)-1 {
		return TokenID{}, fmt.Errorf("invalid token id %q", s)
	}
	rec, err := strconv.ParseInt(s[:i], 10, 64)
	if err != nil {
		return TokenID{}, fmt.Errorf("invalid token id %q: %w", s, err)
	}
	pos, err := strconv.Atoi(s[i+1:])
	if err != nil || pos < 0 {
		return TokenID{}, fmt.Errorf("invalid token id %q: bad position", s)
	}
	return TokenID{RecordID: rec, Position: pos}, nil
}

// isSpace reports whether r separates words. The set is Unicode space
// separators plus tab, line and page breaks and the byte order mark; U+0085
// does not separate.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', '\u00a0', '\u1680',
		'\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}

// Tokenize splits text on runs of whitespace. Leading and trailing
// whitespace yield no empty tokens, and blank text yields none at all.
func Tokenize(text string, recordID int64) []Token {
	words := strings.FieldsFunc(text, isSpace)
	if len(words) == 0 {
		return nil
	}

	tokens := make([]Token, len(words))
	for i, w := range words {
		tokens[i] = Token{RecordID: recordID, Position: i, Text: w}
	}
	return tokens
}
