package nav

import "github.com/f3rmion/manchu/internal/align"

// Direction is a navigation command.
type Direction int

const (
	Next Direction = iota
	Previous
)

func (d Direction) String() string {
	if d == Previous {
		return "previous"
	}
	return "next"
}

// SiblingSource returns the ordered TokenIDs of one record.
// *align.Index satisfies it, as does the result set manager.
type SiblingSource interface {
	Siblings(recordID int64) []align.TokenID
}

// Scroller brings a token's rendered anchor into view. Implementations must
// treat a token without an anchor as a no-op.
type Scroller interface {
	ScrollTo(id align.TokenID)
}

// ScrollFunc adapts a function to the Scroller interface.
type ScrollFunc func(id align.TokenID)

// ScrollTo calls f(id).
func (f ScrollFunc) ScrollTo(id align.TokenID) { f(id) }

type noScroll struct{}

func (noScroll) ScrollTo(align.TokenID) {}

// Navigator moves the selection between tokens of the active record.
type Navigator struct {
	selection *Selection
	source    SiblingSource
	scroller  Scroller
}

// NewNavigator creates a navigator over sel. A nil scroller disables scrolling.
func NewNavigator(sel *Selection, source SiblingSource, scroller Scroller) *Navigator {
	if scroller == nil {
		scroller = noScroll{}
	}
	return &Navigator{selection: sel, source: source, scroller: scroller}
}

// SetScroller replaces the scroll side effect.
func (n *Navigator) SetScroller(s Scroller) {
	if s == nil {
		s = noScroll{}
	}
	n.scroller = s
}

// Click selects id directly and scrolls to it.
func (n *Navigator) Click(id align.TokenID) bool {
	if !n.selection.Select(id) {
		return false
	}
	n.scroller.ScrollTo(id)
	return true
}

// OnDirection moves the selection one step within the active token's record.
// It reports whether the selection changed. Nothing happens without an
// active token, at either end of the record, or if the active token is
// unknown to the source.
func (n *Navigator) OnDirection(dir Direction) bool {
	current, ok := n.selection.Active()
	if !ok {
		return false
	}

	siblings := n.source.Siblings(current.RecordID)
	i := align.IndexOf(current, siblings)
	if i < 0 {
		return false
	}

	switch dir {
	case Next:
		if i >= len(siblings)-1 {
			return false
		}
		i++
	case Previous:
		if i <= 0 {
			return false
		}
		i--
	default:
		return false
	}

	target := siblings[i]
	n.selection.Select(target)
	n.scroller.ScrollTo(target)
	return true
}
