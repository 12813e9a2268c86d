package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/f3rmion/manchu/internal/align"
)

// AnchorView is a viewport whose content registers a line anchor per
// token. It implements nav.Scroller by centring the anchor line.
type AnchorView struct {
	Viewport viewport.Model
	anchors  map[align.TokenID]int
	lines    int
}

// NewAnchorView creates an empty view of the given size.
func NewAnchorView(width, height int) *AnchorView {
	return &AnchorView{
		Viewport: viewport.New(width, height),
		anchors:  map[align.TokenID]int{},
	}
}

// SetSize resizes the viewport.
func (v *AnchorView) SetSize(width, height int) {
	v.Viewport.Width = width
	v.Viewport.Height = height
	v.Viewport.SetYOffset(v.clamp(v.Viewport.YOffset))
}

// SetContent replaces the content and its anchors, keeping the scroll
// position where it still fits.
func (v *AnchorView) SetContent(content string, anchors map[align.TokenID]int) {
	offset := v.Viewport.YOffset
	v.Viewport.SetContent(content)
	v.lines = strings.Count(content, "\n") + 1
	v.anchors = anchors
	if v.anchors == nil {
		v.anchors = map[align.TokenID]int{}
	}
	v.Viewport.SetYOffset(v.clamp(offset))
}

// Anchor returns the line registered for id.
func (v *AnchorView) Anchor(id align.TokenID) (int, bool) {
	line, ok := v.anchors[id]
	return line, ok
}

// ScrollTo centres the anchor line of id. Unknown ids are ignored.
func (v *AnchorView) ScrollTo(id align.TokenID) {
	line, ok := v.anchors[id]
	if !ok {
		return
	}
	v.Viewport.SetYOffset(v.clamp(line - v.Viewport.Height/2))
}

// Top scrolls to the first line.
func (v *AnchorView) Top() {
	v.Viewport.SetYOffset(0)
}

func (v *AnchorView) clamp(offset int) int {
	maxOffset := v.lines - v.Viewport.Height
	if v.Viewport.Height <= 0 {
		maxOffset = v.lines - 1
	}
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset < 0 {
		return 0
	}
	if offset > maxOffset {
		return maxOffset
	}
	return offset
}
