// Package nav holds the active-token selection and moves it within a record.
package nav

import "github.com/f3rmion/manchu/internal/align"

// Selection is either Unselected or Selected(t). It is owned by whoever owns
// the token universe, which is the only caller allowed to Reset it.
type Selection struct {
	active   align.TokenID
	selected bool
}

// Select makes id the active token. It reports false when id was already active.
func (s *Selection) Select(id align.TokenID) bool {
	if s.selected && s.active == id {
		return false
	}
	s.active = id
	s.selected = true
	return true
}

// Active returns the active token, if any.
func (s *Selection) Active() (align.TokenID, bool) {
	return s.active, s.selected
}

// IsActive reports whether id is the active token.
func (s *Selection) IsActive(id align.TokenID) bool {
	return s.selected && s.active == id
}

// Reset returns the selection to Unselected.
func (s *Selection) Reset() {
	s.active = align.TokenID{}
	s.selected = false
}
