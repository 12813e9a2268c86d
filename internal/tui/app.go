package tui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/manchu/internal/config"
	"github.com/f3rmion/manchu/internal/manchu"
	"github.com/f3rmion/manchu/internal/results"
	"github.com/f3rmion/manchu/internal/store"
	"github.com/f3rmion/manchu/internal/translate"
	"github.com/f3rmion/manchu/internal/tui/bigchar"
	"github.com/f3rmion/manchu/internal/tui/views"
)

// ViewType represents the current active view
type ViewType int

const (
	ViewSearch ViewType = iota
	ViewTranslate
	ViewGallery
	ViewImport
	ViewSettings
)

// MenuItem represents a sidebar menu entry
type MenuItem struct {
	Label    string
	View     ViewType
	Shortcut string
}

// Deps are the services the TUI runs on.
type Deps struct {
	Config     *config.Config
	ConfigDir  string
	Store      store.Store
	Translator *translate.Service // nil when no API key is configured
	BigToken   *bigchar.Renderer  // nil when no font was found
	Logger     *slog.Logger
}

// AppModel is the main unified TUI model
type AppModel struct {
	config *config.Config
	logger *slog.Logger

	width        int
	height       int
	sidebarWidth int
	ready        bool

	currentView   ViewType
	menuItems     []MenuItem
	selectedMenu  int
	sidebarActive bool

	searchView    views.SearchModel
	translateView views.TranslateModel
	galleryView   views.GalleryModel
	importView    views.ImportModel
	settingsView  views.SettingsModel

	showHelp bool
}

// NewApp creates the TUI application.
func NewApp(deps Deps) AppModel {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	bigToken := deps.BigToken
	if !cfg.UI.BigToken {
		bigToken = nil
	}

	dir, err := manchu.ParseDirection(cfg.Translation.Direction)
	if err != nil {
		dir = manchu.ManchuToEnglish
	}

	manager := results.NewManager(deps.Store, logger)

	return AppModel{
		config:       cfg,
		logger:       logger.With("component", "tui"),
		sidebarWidth: 18,
		currentView:  ViewSearch,
		menuItems: []MenuItem{
			{Label: "Search", View: ViewSearch, Shortcut: "1"},
			{Label: "Translate", View: ViewTranslate, Shortcut: "2"},
			{Label: "Gallery", View: ViewGallery, Shortcut: "3"},
			{Label: "Import", View: ViewImport, Shortcut: "4"},
			{Label: "Settings", View: ViewSettings, Shortcut: "5"},
		},

		searchView: views.NewSearchModel(manager, views.SearchOptions{
			Timeout:   cfg.Store.Timeout,
			ExportDir: cfg.UI.ExportDir,
			BigToken:  bigToken,
		}),
		translateView: views.NewTranslateModel(deps.Translator, dir, cfg.Translation.Timeout),
		galleryView:   views.NewGalleryModel(deps.Store, cfg.UI.PageSize, cfg.Store.Timeout),
		importView:    views.NewImportModel(deps.Store, deps.ConfigDir, cfg.Store.Timeout),
		settingsView:  views.NewSettingsModel(cfg, deps.ConfigDir, deps.Store),
	}
}

// Init starts the cursor blink and the gallery and settings loads.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.galleryView.Init(), m.settingsView.Init())
}

// inputFocused reports whether the active view is taking text input, in
// which case single-key shortcuts belong to the view.
func (m AppModel) inputFocused() bool {
	if m.sidebarActive {
		return false
	}
	switch m.currentView {
	case ViewSearch:
		return m.searchView.InputFocused()
	case ViewTranslate:
		return m.translateView.InputFocused()
	}
	return false
}

func (m *AppModel) switchTo(v ViewType) {
	m.currentView = v
	for i, item := range m.menuItems {
		if item.View == v {
			m.selectedMenu = i
			break
		}
	}
	m.sidebarActive = false
}

// Update handles messages
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}

		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if !m.inputFocused() {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "?":
				m.showHelp = true
				return m, nil
			case "esc":
				if m.sidebarActive {
					return m, tea.Quit
				}
				if !m.galleryDetail() {
					m.sidebarActive = true
					return m, nil
				}
			case "1", "2", "3", "4", "5":
				m.switchTo(ViewType(msg.String()[0] - '1'))
				return m, nil
			}
		}

		if m.sidebarActive {
			switch msg.String() {
			case "j", "down":
				if m.selectedMenu < len(m.menuItems)-1 {
					m.selectedMenu++
				}
			case "k", "up":
				if m.selectedMenu > 0 {
					m.selectedMenu--
				}
			case "enter", "l", "right", "tab":
				m.switchTo(m.menuItems[m.selectedMenu].View)
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		contentWidth := m.width - m.sidebarWidth - 8
		contentHeight := m.height - 4

		m.searchView.SetSize(contentWidth, contentHeight)
		m.translateView.SetSize(contentWidth, contentHeight)
		m.galleryView.SetSize(contentWidth, contentHeight)
		m.importView.SetSize(contentWidth, contentHeight)
		m.settingsView.SetSize(contentWidth, contentHeight)
		return m, nil

	case views.ImportDoneMsg:
		if msg.Err != nil {
			m.logger.Error("import failed", slog.String("path", msg.Path), slog.String("error", msg.Err.Error()))
		} else {
			m.logger.Info("import finished", slog.String("path", msg.Path), slog.Int("inserted", msg.Inserted), slog.Int("skipped", msg.Skipped))
		}
		var c1, c2 tea.Cmd
		m.importView, c1 = m.importView.Update(msg)
		m.settingsView, c2 = m.settingsView.Update(msg)
		return m, tea.Batch(c1, c2, m.galleryView.Init())
	}

	return m.delegate(msg)
}

func (m AppModel) galleryDetail() bool {
	return m.currentView == ViewGallery && m.galleryView.InDetail()
}

// delegate routes msg to the views. Keys go to the active view only; async
// results go to every view so a reply lands even after a view switch.
func (m AppModel) delegate(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	_, isKey := msg.(tea.KeyMsg)
	routes := func(v ViewType) bool {
		return !isKey || m.currentView == v
	}

	if routes(ViewSearch) {
		m.searchView, cmd = m.searchView.Update(msg)
		cmds = append(cmds, cmd)
	}
	if routes(ViewTranslate) {
		m.translateView, cmd = m.translateView.Update(msg)
		cmds = append(cmds, cmd)
	}
	if routes(ViewGallery) {
		m.galleryView, cmd = m.galleryView.Update(msg)
		cmds = append(cmds, cmd)
	}
	if routes(ViewImport) {
		m.importView, cmd = m.importView.Update(msg)
		cmds = append(cmds, cmd)
	}
	if routes(ViewSettings) {
		m.settingsView, cmd = m.settingsView.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI
func (m AppModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	var content string
	switch m.currentView {
	case ViewSearch:
		content = m.searchView.View()
	case ViewTranslate:
		content = m.translateView.View()
	case ViewGallery:
		content = m.galleryView.View()
	case ViewImport:
		content = m.importView.View()
	case ViewSettings:
		content = m.settingsView.View()
	}

	mainContent := ContentStyle.
		Width(m.width - m.sidebarWidth - 4).
		Height(m.height - 2).
		Render(content)

	return lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), mainContent)
}

func (m AppModel) renderSidebar() string {
	var items []string

	items = append(items, SidebarTitleStyle.Render(" ᠮᠠᠨᠵᡠ Manchu "))
	items = append(items, "")

	for i, item := range m.menuItems {
		label := item.Shortcut + ". " + item.Label

		style := SidebarItemStyle
		if i == m.selectedMenu {
			if m.sidebarActive {
				style = SidebarItemActiveStyle
			} else {
				style = SidebarItemStyle.Bold(true).Foreground(ColorSecondary)
			}
		}
		items = append(items, style.Render(label))
	}

	usedHeight := len(items) + 4
	for i := 0; i < m.height-usedHeight-2; i++ {
		items = append(items, "")
	}

	items = append(items, SidebarHelpStyle.Render("? Help  q Quit"))

	return SidebarStyle.
		Width(m.sidebarWidth).
		Height(m.height - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

func (m AppModel) renderHelp() string {
	key := func(k, desc string) string {
		return HelpKeyStyle.Render(k) + HelpDescStyle.Render(desc) + "\n"
	}

	help := HelpTitleStyle.Render("Manchu - corpus search and translation") + "\n\n"

	help += HelpSectionStyle.Render("Global Keys") + "\n"
	help += key("1-5", "Switch views")
	help += key("esc", "Sidebar / leave input")
	help += key("?", "Show this help")
	help += key("q", "Quit")

	help += HelpSectionStyle.Render("Search") + "\n"
	help += key("enter", "Run search / select first word")
	help += key("←/→ h/l", "Previous/next word in record")
	help += key("g", "Go to word number")
	help += key("n/p", "Next/previous record")
	help += key("e / E", "Export CSV / Anki deck")
	help += key("/", "Edit query")

	help += HelpSectionStyle.Render("Translate") + "\n"
	help += key("i", "Edit input")
	help += key("enter", "Translate")
	help += key("d", "Switch direction")
	help += key("y", "Copy output")

	help += HelpSectionStyle.Render("Gallery") + "\n"
	help += key("←/→", "Previous/next page")
	help += key("t", "Translated/untranslated")
	help += key("enter", "Document details")
	help += key("g", "Shared source groups")

	help += HelpSectionStyle.Render("Import") + "\n"
	help += key("enter", "Import file / open dir")
	help += key("u", "Toggle untranslated")

	help += "\n" + HelpFooterStyle.Render("Press any key to close")

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, HelpBoxStyle.Render(help))
}
