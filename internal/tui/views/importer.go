package views

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/manchu/internal/importer"
	"github.com/f3rmion/manchu/internal/store"
)

// ImportDoneMsg reports a finished import. The app reloads the gallery on it.
type ImportDoneMsg struct {
	Path     string
	Inserted int
	Skipped  int
	Err      error
}

// FileEntry represents a file or directory
type FileEntry struct {
	Name  string
	IsDir bool
	Path  string
}

// ImportModel browses for a CSV, JSONL or Anki file and imports it into
// the store.
type ImportModel struct {
	store   store.Store
	timeout time.Duration

	currentDir string
	entries    []FileEntry
	selected   int
	offset     int

	untranslated bool
	importing    bool
	last         *ImportDoneMsg

	err error

	width  int
	height int
}

// NewImportModel creates the import view starting in startDir, or the home
// directory when startDir is empty or missing.
func NewImportModel(s store.Store, startDir string, timeout time.Duration) ImportModel {
	if startDir == "" {
		startDir, _ = os.UserHomeDir()
	}
	if _, err := os.Stat(startDir); err != nil {
		startDir, _ = os.UserHomeDir()
	}
	if startDir == "" {
		startDir = "/"
	}

	m := ImportModel{
		store:      s,
		timeout:    timeout,
		currentDir: startDir,
	}
	m.loadDir()
	return m
}

// SetSize updates the view dimensions.
func (m *ImportModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// loadDir lists the current directory: parent, then directories, then
// importable files, each group sorted by name.
func (m *ImportModel) loadDir() {
	m.entries = nil
	m.selected = 0
	m.offset = 0
	m.err = nil

	entries, err := os.ReadDir(m.currentDir)
	if err != nil {
		m.err = err
		return
	}

	if parent := filepath.Dir(m.currentDir); parent != m.currentDir {
		m.entries = append(m.entries, FileEntry{Name: "..", IsDir: true, Path: parent})
	}

	var dirs, files []FileEntry
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		fe := FileEntry{
			Name:  entry.Name(),
			IsDir: entry.IsDir(),
			Path:  filepath.Join(m.currentDir, entry.Name()),
		}
		if entry.IsDir() {
			dirs = append(dirs, fe)
		} else if importable(entry.Name()) {
			files = append(files, fe)
		}
	}

	byName := func(s []FileEntry) func(i, j int) bool {
		return func(i, j int) bool { return strings.ToLower(s[i].Name) < strings.ToLower(s[j].Name) }
	}
	sort.Slice(dirs, byName(dirs))
	sort.Slice(files, byName(files))

	m.entries = append(m.entries, dirs...)
	m.entries = append(m.entries, files...)
}

func importable(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range importer.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Update handles messages.
func (m ImportModel) Update(msg tea.Msg) (ImportModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ImportDoneMsg:
		m.importing = false
		m.last = &msg
		return m, nil

	case tea.KeyMsg:
		if m.importing {
			return m, nil
		}
		switch msg.String() {
		case "j", "down":
			if m.selected < len(m.entries)-1 {
				m.selected++
				m.adjustScroll()
			}
		case "k", "up":
			if m.selected > 0 {
				m.selected--
				m.adjustScroll()
			}
		case "enter", "l", "right":
			if m.selected < len(m.entries) {
				entry := m.entries[m.selected]
				if entry.IsDir {
					m.currentDir = entry.Path
					m.loadDir()
					return m, nil
				}
				m.importing = true
				m.last = nil
				return m, m.runImport(entry.Path)
			}
		case "backspace", "h":
			if parent := filepath.Dir(m.currentDir); parent != m.currentDir {
				m.currentDir = parent
				m.loadDir()
			}
		case "~":
			if home, _ := os.UserHomeDir(); home != "" {
				m.currentDir = home
				m.loadDir()
			}
		case "u":
			m.untranslated = !m.untranslated
		case "g":
			m.selected = 0
			m.offset = 0
		case "G":
			m.selected = max(len(m.entries)-1, 0)
			m.adjustScroll()
		}
	}

	return m, nil
}

func (m ImportModel) runImport(path string) tea.Cmd {
	s, timeout, untranslated := m.store, m.timeout, m.untranslated
	return func() tea.Msg {
		done := ImportDoneMsg{Path: path}

		w, ok := s.(store.Writer)
		if !ok {
			done.Err = store.ErrReadOnly
			return done
		}

		res, err := importer.File(path, importer.Options{Untranslated: untranslated})
		if err != nil {
			done.Err = err
			return done
		}
		done.Skipped = res.Skipped

		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		if untranslated {
			done.Inserted, done.Err = w.InsertUntranslated(ctx, res.Untranslated)
		} else {
			done.Inserted, done.Err = w.InsertRecords(ctx, res.Records)
		}
		return done
	}
}

func (m *ImportModel) visibleHeight() int {
	return max(m.height-10, 5)
}

func (m *ImportModel) adjustScroll() {
	h := m.visibleHeight()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+h {
		m.offset = m.selected - h + 1
	}
}

// View renders the import view.
func (m ImportModel) View() string {
	var b strings.Builder

	kind := "translated records"
	if m.untranslated {
		kind = "untranslated documents"
	}
	b.WriteString(titleStyle.Render("Import"))
	b.WriteString("  ")
	b.WriteString(subtitleStyle.Render(kind + " from " + strings.Join(importer.Extensions, ", ")))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Italic(true).Render(m.currentDir))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(divider(m.width))
	b.WriteString("\n")

	if len(m.entries) == 0 {
		b.WriteString(mutedStyle.Render("  (no importable files found)"))
		b.WriteString("\n")
	}

	h := m.visibleHeight()
	end := min(m.offset+h, len(m.entries))
	for i := m.offset; i < end; i++ {
		entry := m.entries[i]

		icon := "[FILE] "
		style := valueStyle
		if entry.IsDir {
			icon = "[DIR]  "
			style = recordHeaderStyle
		}

		prefix := "  "
		if i == m.selected {
			prefix = "> "
			style = selectedRowStyle
		}
		b.WriteString(prefix + style.Render(icon+entry.Name))
		b.WriteString("\n")
	}

	if len(m.entries) > h {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  %d-%d of %d", m.offset+1, end, len(m.entries))))
		b.WriteString("\n")
	}

	b.WriteString(divider(m.width))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: import/open • backspace: parent • ~: home • u: toggle untranslated"))
	return b.String()
}

func (m ImportModel) renderStatus() string {
	switch {
	case m.importing:
		return loadingStyle.Render("Importing...")
	case m.last == nil:
		return ""
	case m.last.Err != nil:
		return errorStyle.Render(fmt.Sprintf("Import of %s failed: %v", filepath.Base(m.last.Path), m.last.Err))
	default:
		return noticeStyle.Render(fmt.Sprintf("Imported %d from %s (%d skipped)",
			m.last.Inserted, filepath.Base(m.last.Path), m.last.Skipped))
	}
}
