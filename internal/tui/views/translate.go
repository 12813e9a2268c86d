package views

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/manchu/internal/clipboard"
	"github.com/f3rmion/manchu/internal/llm"
	"github.com/f3rmion/manchu/internal/manchu"
	"github.com/f3rmion/manchu/internal/translate"
	"github.com/muesli/reflow/wordwrap"
)

type translateResultMsg struct {
	result translate.Result
}

type clearCopiedMsg struct{}

func clearCopiedAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearCopiedMsg{}
	})
}

// TranslateModel is the translation view. service is nil when no API key
// is configured.
type TranslateModel struct {
	input     textarea.Model
	spinner   spinner.Model
	service   *translate.Service
	timeout   time.Duration
	direction manchu.Direction

	output  manchu.TranslationOutput
	loading bool
	err     error
	copied  bool

	width  int
	height int
}

// NewTranslateModel creates the translation view.
func NewTranslateModel(service *translate.Service, dir manchu.Direction, timeout time.Duration) TranslateModel {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.SetHeight(4)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = loadingStyle

	if !dir.Valid() {
		dir = manchu.ManchuToEnglish
	}

	m := TranslateModel{
		input:     ta,
		spinner:   sp,
		service:   service,
		timeout:   timeout,
		direction: dir,
	}
	m.setPlaceholder()
	return m
}

func (m *TranslateModel) setPlaceholder() {
	if m.direction == manchu.EnglishToManchu {
		m.input.Placeholder = "Enter English text..."
	} else {
		m.input.Placeholder = "Enter Manchu script..."
	}
}

// SetSize updates the view dimensions.
func (m *TranslateModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(max(width-6, 10))
}

// InputFocused reports whether keys go to the text area.
func (m TranslateModel) InputFocused() bool {
	return m.input.Focused()
}

// Direction returns the current translation direction.
func (m TranslateModel) Direction() manchu.Direction {
	return m.direction
}

// Update handles messages.
func (m TranslateModel) Update(msg tea.Msg) (TranslateModel, tea.Cmd) {
	switch msg := msg.(type) {
	case translateResultMsg:
		err := m.service.Apply(msg.result)
		if errors.Is(err, translate.ErrStale) {
			return m, nil
		}
		m.loading = false
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.output = msg.result.Output
		return m, nil

	case clearCopiedMsg:
		m.copied = false
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.input.Focused() {
			switch msg.String() {
			case "ctrl+s":
				return m.submit()
			case "ctrl+t":
				return m.toggle(), nil
			case "esc":
				m.input.Blur()
				return m, nil
			}
			break
		}

		switch msg.String() {
		case "enter", "ctrl+s":
			return m.submit()
		case "d", "ctrl+t":
			return m.toggle(), nil
		case "i":
			return m, m.input.Focus()
		case "y":
			return m.copy()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m TranslateModel) submit() (TranslateModel, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	if m.service == nil {
		m.err = llm.ErrMissingAPIKey
		return m, nil
	}

	req, err := m.service.Begin(m.input.Value(), m.direction)
	if err != nil {
		m.err = err
		return m, nil
	}

	m.loading = true
	m.err = nil
	m.output = manchu.TranslationOutput{}

	service, timeout := m.service, m.timeout
	run := func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return translateResultMsg{result: service.Run(ctx, req)}
	}
	return m, tea.Batch(m.spinner.Tick, run)
}

// toggle flips the direction and clears input and output. Any reply still
// in flight is made stale.
func (m TranslateModel) toggle() TranslateModel {
	if m.service != nil {
		m.service.Invalidate()
	}
	m.direction = m.direction.Toggle()
	m.input.Reset()
	m.output = manchu.TranslationOutput{}
	m.loading = false
	m.err = nil
	m.setPlaceholder()
	return m
}

func (m TranslateModel) copy() (TranslateModel, tea.Cmd) {
	text := m.outputText()
	if text == "" {
		return m, nil
	}
	if err := clipboard.Write(text); err != nil {
		m.err = err
		return m, nil
	}
	m.copied = true
	return m, clearCopiedAfter(2 * time.Second)
}

// outputText joins the two output lines in display order.
func (m TranslateModel) outputText() string {
	if m.output.IsEmpty() {
		return ""
	}
	labels, err := translate.Labels(m.direction)
	if err != nil {
		return ""
	}
	var lines []string
	for _, label := range labels {
		lines = append(lines, label+": "+m.outputField(label))
	}
	return strings.Join(lines, "\n")
}

func (m TranslateModel) outputField(label string) string {
	switch label {
	case "Latin":
		return m.output.Latin
	case "English":
		return m.output.English
	case "Manchu":
		return m.output.Manchu
	}
	return ""
}

// View renders the translation view.
func (m TranslateModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Translate"))
	b.WriteString("  ")
	b.WriteString(subtitleStyle.Render(m.direction.Label()))
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + loadingStyle.Render(" Translating..."))
	case m.err != nil:
		b.WriteString(errorStyle.Render(m.err.Error()))
	case m.copied:
		b.WriteString(noticeStyle.Render("Copied to clipboard"))
	}
	b.WriteString("\n")

	if !m.output.IsEmpty() {
		b.WriteString(m.renderOutput())
		b.WriteString("\n")
	}

	if m.input.Focused() {
		b.WriteString(helpStyle.Render("ctrl+s: translate • ctrl+t: switch direction • esc: done editing"))
	} else {
		b.WriteString(helpStyle.Render("enter: translate • d: switch direction • i: edit • y: copy"))
	}
	return b.String()
}

func (m TranslateModel) renderOutput() string {
	labels, err := translate.Labels(m.direction)
	if err != nil {
		return ""
	}

	width := max(m.width-16, 20)
	var rows []string
	for _, label := range labels {
		value := wordwrap.String(m.outputField(label), width)
		rows = append(rows, labelStyle.Render(label)+valueStyle.Render(value))
	}
	return outputBoxStyle.Render(strings.Join(rows, "\n"))
}
