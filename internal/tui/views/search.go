package views

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/manchu/internal/align"
	"github.com/f3rmion/manchu/internal/export"
	"github.com/f3rmion/manchu/internal/manchu"
	"github.com/f3rmion/manchu/internal/nav"
	"github.com/f3rmion/manchu/internal/results"
	"github.com/f3rmion/manchu/internal/tui/bigchar"
	"github.com/f3rmion/manchu/internal/tui/components"
	"github.com/muesli/reflow/wordwrap"
)

// bigTokenRows is the height of the enlarged active token.
const bigTokenRows = 4

type searchResultMsg struct {
	outcome results.Outcome
}

type exportDoneMsg struct {
	path string
	err  error
}

// SearchOptions configures the search view.
type SearchOptions struct {
	Timeout   time.Duration
	ExportDir string
	BigToken  *bigchar.Renderer // nil disables the enlarged token
}

// SearchModel is the corpus search view: a query box above the aligned
// Manchu and Latin tokens of every result.
type SearchModel struct {
	input     textinput.Model
	jump      textinput.Model
	spinner   spinner.Model
	results   *components.AnchorView
	manager   *results.Manager
	navigator *nav.Navigator
	opts      SearchOptions

	focusResults bool
	jumping      bool
	loading      bool
	err          error
	notice       string

	width  int
	height int
}

// NewSearchModel creates the search view over manager.
func NewSearchModel(manager *results.Manager, opts SearchOptions) SearchModel {
	ti := textinput.New()
	ti.Placeholder = "Search Manchu, Latin or English..."
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 40
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ecdc4"))
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffe66d"))

	jump := textinput.New()
	jump.Prompt = "word #"
	jump.CharLimit = 4
	jump.Width = 6
	jump.PromptStyle = ti.PromptStyle
	jump.TextStyle = ti.TextStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = loadingStyle

	view := components.NewAnchorView(80, 10)

	return SearchModel{
		input:     ti,
		jump:      jump,
		spinner:   sp,
		results:   view,
		manager:   manager,
		navigator: manager.Navigator(view),
		opts:      opts,
	}
}

// SetSize updates the view dimensions.
func (m *SearchModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-8, 10)

	// title, input box, status, big token, help
	fixed := 2 + 3 + 2 + 2
	if m.opts.BigToken.Available() {
		fixed += bigTokenRows + 2
	}
	m.results.SetSize(max(width-2, 10), max(height-fixed, 3))
	m.refresh()
}

// InputFocused reports whether keys go to the query box or the word prompt.
func (m SearchModel) InputFocused() bool {
	return !m.focusResults || m.jumping
}

// Update handles messages.
func (m SearchModel) Update(msg tea.Msg) (SearchModel, tea.Cmd) {
	switch msg := msg.(type) {
	case searchResultMsg:
		err := m.manager.Apply(msg.outcome)
		if errors.Is(err, results.ErrStale) {
			return m, nil
		}
		m.loading = false
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.notice = fmt.Sprintf("%d results", len(m.manager.Records()))
		m.results.Top()
		m.refresh()
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			m.notice = ""
		} else {
			m.err = nil
			m.notice = "Exported to " + msg.path
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.jumping {
			return m.updateJump(msg)
		}
		if m.focusResults {
			return m.updateResults(msg)
		}
		return m.updateInput(msg)
	}

	if !m.focusResults {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m SearchModel) updateInput(msg tea.KeyMsg) (SearchModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		ticket := m.manager.Begin(m.input.Value())
		m.loading = true
		m.err = nil
		m.notice = ""
		m.focus(true)
		return m, tea.Batch(m.spinner.Tick, m.fetch(ticket))
	case "esc", "tab":
		m.focus(true)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m SearchModel) updateResults(msg tea.KeyMsg) (SearchModel, tea.Cmd) {
	switch msg.String() {
	case "/", "i", "tab":
		m.focus(false)
		return m, textinput.Blink
	case "left", "h":
		if m.navigator.OnDirection(nav.Previous) {
			m.refresh()
		}
		return m, nil
	case "right", "l":
		if m.navigator.OnDirection(nav.Next) {
			m.refresh()
		}
		return m, nil
	case "enter", " ":
		if _, ok := m.manager.Selection().Active(); !ok {
			m.selectRecord(0)
		}
		return m, nil
	case "g":
		m.jumping = true
		m.jump.Reset()
		return m, m.jump.Focus()
	case "n":
		m.selectRecord(m.activeRecord() + 1)
		return m, nil
	case "N", "p":
		m.selectRecord(m.activeRecord() - 1)
		return m, nil
	case "e":
		return m, m.export(export.ToFile)
	case "E":
		return m, m.export(export.ToAnki)
	}

	var cmd tea.Cmd
	m.results.Viewport, cmd = m.results.Viewport.Update(msg)
	return m, cmd
}

// updateJump reads a 1-based word number and selects that word of the
// active record, or of the first record when nothing is selected.
func (m SearchModel) updateJump(msg tea.KeyMsg) (SearchModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.jumping = false
		m.jump.Blur()
		n, err := strconv.Atoi(m.jump.Value())
		if err != nil {
			return m, nil
		}
		record := max(m.activeRecord(), 0)
		if !m.selectWord(record, n-1) {
			if records := m.manager.Records(); record < len(records) {
				m.notice = fmt.Sprintf("no word %d in record #%d", n, records[record].ID)
			}
		}
		return m, nil
	case tea.KeyEsc:
		m.jumping = false
		m.jump.Blur()
		return m, nil
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if r < '0' || r > '9' {
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	return m, cmd
}

func (m *SearchModel) focus(results bool) {
	m.focusResults = results
	if results {
		m.input.Blur()
	} else {
		m.input.Focus()
	}
}

// activeRecord returns the index within the result set of the record
// holding the active token, or -1.
func (m SearchModel) activeRecord() int {
	active, ok := m.manager.Selection().Active()
	if !ok {
		return -1
	}
	for i, r := range m.manager.Records() {
		if r.ID == active.RecordID {
			return i
		}
	}
	return -1
}

// selectRecord activates the first token of the i-th record, if any.
func (m *SearchModel) selectRecord(i int) {
	m.selectWord(i, 0)
}

// selectWord activates the token at position pos of the i-th record. It
// reports whether such a token exists.
func (m *SearchModel) selectWord(i, pos int) bool {
	records := m.manager.Records()
	if i < 0 || i >= len(records) {
		return false
	}
	siblings := m.manager.Siblings(records[i].ID)
	if pos < 0 || pos >= len(siblings) {
		return false
	}
	if m.navigator.Click(siblings[pos]) {
		m.refresh()
	}
	return true
}

func (m SearchModel) fetch(t results.Ticket) tea.Cmd {
	manager, timeout := m.manager, m.opts.Timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return searchResultMsg{outcome: manager.Fetch(ctx, t)}
	}
}

func (m SearchModel) export(write func(dir, query string, records []manchu.Record) (string, error)) tea.Cmd {
	records, query, dir := m.manager.Records(), m.manager.Query(), m.opts.ExportDir
	return func() tea.Msg {
		path, err := write(dir, query, records)
		return exportDoneMsg{path: path, err: err}
	}
}

// refresh re-renders the result content and its anchors.
func (m *SearchModel) refresh() {
	content, anchors := renderResults(m.manager.Records(), m.manager.Index(), m.manager.Selection(), m.results.Viewport.Width)
	m.results.SetContent(content, anchors)
}

// renderResults lays out every record and records the line of each token.
// A token's anchor is its Manchu line, or its Latin line when the Manchu
// text has no word at that position.
func renderResults(records []manchu.Record, idx *align.Index, sel *nav.Selection, width int) (string, map[align.TokenID]int) {
	var lines []string
	anchors := make(map[align.TokenID]int, idx.Size())
	isActive := sel.IsActive

	for _, r := range records {
		header := recordHeaderStyle.Render(fmt.Sprintf("#%d", r.ID))
		if r.Source != "" {
			header += " " + mutedStyle.Render(r.Source)
		}
		lines = append(lines, header)

		manchuTokens, latinTokens := idx.Tokens(r.ID)

		mLines, mAt := components.WrapTokens(manchuTokens, width, isActive, components.DefaultTokenStyles)
		base := len(lines)
		for id, l := range mAt {
			anchors[id] = base + l
		}
		lines = append(lines, mLines...)

		lLines, lAt := components.WrapTokens(latinTokens, width, isActive, components.DefaultTokenStyles)
		base = len(lines)
		for id, l := range lAt {
			if _, ok := anchors[id]; !ok {
				anchors[id] = base + l
			}
		}
		lines = append(lines, lLines...)

		if r.EnglishText != "" {
			wrapped := wordwrap.String(r.EnglishText, max(width, 10))
			for _, l := range strings.Split(wrapped, "\n") {
				lines = append(lines, englishStyle.Render(l))
			}
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n"), anchors
}

// View renders the search view.
func (m SearchModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Search"))
	b.WriteString("\n\n")
	b.WriteString(boxStyle.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.status())
	b.WriteString("\n")

	if m.opts.BigToken.Available() {
		b.WriteString(m.renderActive())
		b.WriteString("\n")
	}

	if len(m.manager.Records()) == 0 {
		b.WriteString(mutedStyle.Render("No results"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.results.Viewport.View())
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

func (m SearchModel) status() string {
	switch {
	case m.jumping:
		return m.jump.View()
	case m.loading:
		return m.spinner.View() + loadingStyle.Render(" Searching...")
	case m.err != nil:
		return errorStyle.Render(m.err.Error())
	case m.notice != "":
		return noticeStyle.Render(m.notice)
	}
	return ""
}

// renderActive shows the active token enlarged with its counterpart.
func (m SearchModel) renderActive() string {
	active, ok := m.manager.Selection().Active()
	if !ok {
		return strings.Repeat("\n", bigTokenRows+1)
	}

	manchuTokens, latinTokens := m.manager.Index().Tokens(active.RecordID)
	mw, lw := tokenText(manchuTokens, active.Position), tokenText(latinTokens, active.Position)

	word := lw
	if word == "" {
		word = mw
	}
	cols := min(max(m.width-4, 10), 8*len([]rune(word))+8)
	big := bigTokenStyle.Render(m.opts.BigToken.Render(word, cols, bigTokenRows))

	n := len(m.manager.Siblings(active.RecordID))
	info := fmt.Sprintf("%s  %s  %s",
		valueStyle.Render(mw),
		subtitleStyle.Render(lw),
		mutedStyle.Render(fmt.Sprintf("record %d, word %d/%d", active.RecordID, active.Position+1, n)))

	return big + "\n" + info
}

func tokenText(tokens []align.Token, pos int) string {
	if pos < len(tokens) {
		return tokens[pos].Text
	}
	return ""
}

func (m SearchModel) help() string {
	if !m.focusResults {
		return "enter: search • tab: results"
	}
	return "←/→: word • g: go to word • n/p: record • enter: select • e: export csv • E: export anki • /: search"
}
