package views

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/manchu/internal/config"
	"github.com/f3rmion/manchu/internal/store"
)

type countsLoadedMsg struct {
	counts store.Counts
	err    error
}

var settingsTabs = []string{"Store", "Translation", "Interface"}

// SettingsModel shows the active configuration and corpus size.
type SettingsModel struct {
	config    *config.Config
	configDir string
	store     store.Store

	counts    *store.Counts
	countsErr error

	tab int

	width  int
	height int
}

// NewSettingsModel creates the settings view.
func NewSettingsModel(cfg *config.Config, configDir string, s store.Store) SettingsModel {
	return SettingsModel{config: cfg, configDir: configDir, store: s}
}

// Init counts the store's documents.
func (m SettingsModel) Init() tea.Cmd {
	return m.loadCounts()
}

func (m SettingsModel) loadCounts() tea.Cmd {
	if m.store == nil {
		return nil
	}
	s := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		c, err := store.CountAll(ctx, s)
		return countsLoadedMsg{counts: c, err: err}
	}
}

// SetSize updates the view dimensions.
func (m *SettingsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles messages.
func (m SettingsModel) Update(msg tea.Msg) (SettingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case countsLoadedMsg:
		m.countsErr = msg.err
		if msg.err == nil {
			c := msg.counts
			m.counts = &c
		}
		return m, nil

	case ImportDoneMsg:
		return m, m.loadCounts()

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "right", "l":
			m.tab = (m.tab + 1) % len(settingsTabs)
		case "shift+tab", "left", "h":
			m.tab = (m.tab + len(settingsTabs) - 1) % len(settingsTabs)
		case "r":
			return m, m.loadCounts()
		}
	}
	return m, nil
}

// View renders the settings view.
func (m SettingsModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Configuration"))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Italic(true).Render("Config: " + filepath.Join(m.configDir, config.FileName)))
	b.WriteString("\n\n")

	var tabs []string
	for i, t := range settingsTabs {
		style := mutedStyle.Padding(0, 2)
		if i == m.tab {
			style = selectedRowStyle.Padding(0, 2)
		}
		tabs = append(tabs, style.Render(t))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")
	b.WriteString(divider(m.width))
	b.WriteString("\n\n")

	if m.config == nil {
		b.WriteString(mutedStyle.Render("No configuration loaded. Run 'manchu init' to create one."))
		b.WriteString("\n")
	} else {
		for _, r := range m.rows() {
			b.WriteString(settingsRow(r[0], r[1]))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab/←→: switch tabs • r: recount"))
	return b.String()
}

func (m SettingsModel) rows() [][2]string {
	c := m.config
	switch m.tab {
	case 0:
		rows := [][2]string{{"Backend", c.Store.Backend}}
		if c.Store.Backend == config.BackendSupabase {
			rows = append(rows,
				[2]string{"URL", c.Store.SupabaseURL},
				[2]string{"Key", mask(c.Store.SupabaseKey)})
		} else {
			rows = append(rows, [2]string{"Database", c.Store.Path})
		}
		rows = append(rows, [2]string{"Timeout", c.Store.Timeout.String()})
		return append(rows, m.countRows()...)
	case 1:
		return [][2]string{
			{"Endpoint", c.Translation.BaseURL},
			{"Model", c.Translation.Model},
			{"API key", mask(c.Translation.APIKey)},
			{"Direction", c.Translation.Direction},
			{"Max tokens", fmt.Sprint(c.Translation.MaxTokens)},
			{"Temperature", fmt.Sprint(c.Translation.Temperature)},
			{"Timeout", c.Translation.Timeout.String()},
		}
	default:
		return [][2]string{
			{"Page size", fmt.Sprint(c.UI.PageSize)},
			{"Export dir", c.UI.ExportDir},
			{"Big token", fmt.Sprint(c.UI.BigToken)},
			{"Log level", c.Log.Level},
			{"Log format", c.Log.Format},
		}
	}
}

func (m SettingsModel) countRows() [][2]string {
	switch {
	case m.countsErr != nil:
		return [][2]string{{"Documents", "error: " + m.countsErr.Error()}}
	case m.counts == nil:
		return [][2]string{{"Documents", "counting..."}}
	}
	return [][2]string{
		{"Translated", fmt.Sprint(m.counts.Translated)},
		{"Untranslated", fmt.Sprint(m.counts.Untranslated)},
	}
}

func settingsRow(label, value string) string {
	if value == "" {
		value = mutedStyle.Render("(not set)")
	} else {
		value = valueStyle.Render(value)
	}
	return labelStyle.Width(14).Render(label) + value
}

// mask hides all but the last four characters of a secret.
func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return strings.Repeat("*", 8) + secret[len(secret)-4:]
}
