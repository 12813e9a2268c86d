package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/manchu/internal/manchu"
	"github.com/f3rmion/manchu/internal/store"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

// galleryLoadedMsg carries both lists. Each list has its own error so a
// failure of one leaves the other usable.
type galleryLoadedMsg struct {
	translated      []manchu.Record
	untranslated    []manchu.UntranslatedRecord
	translatedErr   error
	untranslatedErr error
}

// excerptLen is the number of characters of English shown per grouped entry.
const excerptLen = 120

// SourceGroup is a set of translated records that share one source.
type SourceGroup struct {
	Source  string
	Records []manchu.Record
}

// GroupBySource groups records by trimmed source in order of first
// appearance. Records without a source are ignored, and only groups with
// more than one record are returned.
func GroupBySource(records []manchu.Record) []SourceGroup {
	var order []string
	bySource := make(map[string][]manchu.Record)
	for _, r := range records {
		src := strings.TrimSpace(r.Source)
		if src == "" {
			continue
		}
		if _, ok := bySource[src]; !ok {
			order = append(order, src)
		}
		bySource[src] = append(bySource[src], r)
	}

	var groups []SourceGroup
	for _, src := range order {
		if len(bySource[src]) > 1 {
			groups = append(groups, SourceGroup{Source: src, Records: bySource[src]})
		}
	}
	return groups
}

// excerpt returns the start of a record's English text for group listings.
func excerpt(english string) string {
	if english == "" {
		return "No English text."
	}
	runes := []rune(english)
	if len(runes) > excerptLen {
		runes = runes[:excerptLen]
	}
	return string(runes) + "…"
}

// pager tracks one page index over n items.
type pager struct {
	page int
	size int
}

func (p pager) count(n int) int {
	if n == 0 || p.size <= 0 {
		return 1
	}
	return (n + p.size - 1) / p.size
}

// move shifts the page by delta, clamped to [0, count-1].
func (p pager) move(delta, n int) pager {
	p.page = min(max(p.page+delta, 0), p.count(n)-1)
	return p
}

// bounds returns the slice bounds of the current page.
func (p pager) bounds(n int) (int, int) {
	start := min(p.page*p.size, n)
	return start, min(start+p.size, n)
}

// GalleryModel lists translated or untranslated documents page by page.
// Each filter keeps its own page.
type GalleryModel struct {
	store   store.Store
	timeout time.Duration

	translated   []manchu.Record
	untranslated []manchu.UntranslatedRecord

	showUntranslated bool
	translatedPage   pager
	untranslatedPage pager
	cursor           int
	detail           bool
	showGroups       bool

	loading         bool
	translatedErr   error
	untranslatedErr error

	width  int
	height int
}

// NewGalleryModel creates the gallery view.
func NewGalleryModel(s store.Store, pageSize int, timeout time.Duration) GalleryModel {
	if pageSize <= 0 {
		pageSize = 6
	}
	return GalleryModel{
		store:            s,
		timeout:          timeout,
		translatedPage:   pager{size: pageSize},
		untranslatedPage: pager{size: pageSize},
		showGroups:       true,
		loading:          true,
	}
}

// Init loads both lists.
func (m GalleryModel) Init() tea.Cmd {
	return m.load()
}

func (m GalleryModel) load() tea.Cmd {
	s, timeout := m.store, m.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		var msg galleryLoadedMsg
		var err error
		if msg.translated, err = s.ListTranslated(ctx); err != nil {
			msg.translatedErr = fmt.Errorf("loading translated documents: %w", err)
		}
		if msg.untranslated, err = s.ListUntranslated(ctx); err != nil {
			msg.untranslatedErr = fmt.Errorf("loading untranslated documents: %w", err)
		}
		return msg
	}
}

// SetSize updates the view dimensions.
func (m *GalleryModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m GalleryModel) total() int {
	if m.showUntranslated {
		return len(m.untranslated)
	}
	return len(m.translated)
}

func (m GalleryModel) pager() pager {
	if m.showUntranslated {
		return m.untranslatedPage
	}
	return m.translatedPage
}

func (m *GalleryModel) setPager(p pager) {
	if m.showUntranslated {
		m.untranslatedPage = p
	} else {
		m.translatedPage = p
	}
}

func (m GalleryModel) pageLen() int {
	start, end := m.pager().bounds(m.total())
	return end - start
}

// Update handles messages.
func (m GalleryModel) Update(msg tea.Msg) (GalleryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case galleryLoadedMsg:
		m.loading = false
		m.translatedErr = msg.translatedErr
		if msg.translatedErr == nil {
			m.translated = msg.translated
			m.translatedPage = m.translatedPage.move(0, len(m.translated))
		}
		m.untranslatedErr = msg.untranslatedErr
		if msg.untranslatedErr == nil {
			m.untranslated = msg.untranslated
			m.untranslatedPage = m.untranslatedPage.move(0, len(m.untranslated))
		}
		m.cursor = min(m.cursor, max(m.pageLen()-1, 0))
		return m, nil

	case tea.KeyMsg:
		if m.detail {
			switch msg.String() {
			case "esc", "enter", "backspace":
				m.detail = false
			}
			return m, nil
		}

		switch msg.String() {
		case "t":
			m.showUntranslated = !m.showUntranslated
			m.cursor = 0
		case "right", "l":
			m.setPager(m.pager().move(1, m.total()))
			m.cursor = 0
		case "left", "h":
			m.setPager(m.pager().move(-1, m.total()))
			m.cursor = 0
		case "down", "j":
			if m.cursor < m.pageLen()-1 {
				m.cursor++
			}
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "g":
			m.showGroups = !m.showGroups
		case "enter":
			if !m.showUntranslated && m.pageLen() > 0 {
				m.detail = true
			}
		case "r":
			m.loading = true
			return m, m.load()
		}
	}
	return m, nil
}

// View renders the gallery.
func (m GalleryModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Gallery"))
	b.WriteString("  ")
	b.WriteString(m.renderFilter())
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(loadingStyle.Render("Loading documents..."))
		b.WriteString("\n")
	case m.err() != nil:
		b.WriteString(errorStyle.Render(m.err().Error()))
		b.WriteString("\n")
	case m.detail:
		b.WriteString(m.renderDetail())
	case m.total() == 0:
		b.WriteString(mutedStyle.Render("No documents"))
		b.WriteString("\n")
	default:
		b.WriteString(m.renderPage())
		if !m.showUntranslated && m.showGroups {
			b.WriteString(m.renderGroups())
		}
	}

	b.WriteString("\n")
	if m.detail {
		b.WriteString(helpStyle.Render("esc: back"))
	} else {
		b.WriteString(helpStyle.Render("←/→: page • j/k: select • enter: details • t: translated/untranslated • g: source groups • r: reload"))
	}
	return b.String()
}

// err returns the load error of the list on screen.
func (m GalleryModel) err() error {
	if m.showUntranslated {
		return m.untranslatedErr
	}
	return m.translatedErr
}

func (m GalleryModel) renderFilter() string {
	translated, untranslated := "Translated", "Untranslated"
	if m.showUntranslated {
		return mutedStyle.Render(translated) + " | " + selectedRowStyle.Render(untranslated)
	}
	return selectedRowStyle.Render(translated) + " | " + mutedStyle.Render(untranslated)
}

func (m GalleryModel) renderPage() string {
	var b strings.Builder
	width := max(m.width-8, 20)
	start, end := m.pager().bounds(m.total())

	for i := start; i < end; i++ {
		var title, sub, link string
		if m.showUntranslated {
			u := m.untranslated[i]
			desc := u.Description
			if desc == "" {
				desc = "No description provided."
			}
			title = fmt.Sprintf("#%d %s", u.ID, desc)
			sub = u.ImageURL
			if u.SourceLink != "" {
				link = "View Source → " + u.SourceLink
			}
		} else {
			r := m.translated[i]
			title = fmt.Sprintf("#%d %s", r.ID, r.LatinText)
			sub = r.EnglishText
		}

		style := valueStyle
		prefix := "  "
		if i-start == m.cursor {
			style = selectedRowStyle
			prefix = "> "
		}
		b.WriteString(prefix + style.Render(truncate.StringWithTail(title, uint(width), "…")))
		b.WriteString("\n")
		b.WriteString("  " + mutedStyle.Render(truncate.StringWithTail(sub, uint(width), "…")))
		b.WriteString("\n")
		if link != "" {
			b.WriteString("  " + subtitleStyle.Render(truncate.StringWithTail(link, uint(width), "…")))
			b.WriteString("\n")
		}
	}

	p := m.pager()
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Page %d of %d (%d documents)", p.page+1, p.count(m.total()), m.total())))
	b.WriteString("\n")
	return b.String()
}

func (m GalleryModel) renderDetail() string {
	start, _ := m.translatedPage.bounds(len(m.translated))
	i := start + m.cursor
	if i >= len(m.translated) {
		return ""
	}
	r := m.translated[i]
	width := max(m.width-16, 20)

	row := func(label, value string) string {
		if value == "" {
			value = "-"
		}
		return lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Render(label),
			valueStyle.Render(wordwrap.String(value, width)))
	}

	return outputBoxStyle.Render(strings.Join([]string{
		recordHeaderStyle.Render(fmt.Sprintf("Document #%d", r.ID)),
		"",
		row("Image", r.ImageURL),
		row("Manchu", r.ManchuText),
		row("Latin", r.LatinText),
		row("English", r.EnglishText),
		row("Source", r.Source),
	}, "\n"))
}

// renderGroups lists translated documents that share a source.
func (m GalleryModel) renderGroups() string {
	groups := GroupBySource(m.translated)
	if len(groups) == 0 {
		return ""
	}

	width := max(m.width-8, 20)
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Grouped by Shared Source"))
	b.WriteString("\n")
	for _, g := range groups {
		b.WriteString("\n")
		b.WriteString(recordHeaderStyle.Render(truncate.StringWithTail(g.Source, uint(width), "…")))
		b.WriteString("\n")
		for _, r := range g.Records {
			line := fmt.Sprintf("Entry #%d: %s", r.ID, excerpt(r.EnglishText))
			b.WriteString("  • " + valueStyle.Render(wordwrap.String(line, width-4)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// InDetail reports whether a document detail is open.
func (m GalleryModel) InDetail() bool {
	return m.detail
}
