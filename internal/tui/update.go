package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/tidy-files/internal/tui/shared"
)

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		return m, nil

	case tea.KeyMsg:
		if msg.String() == shared.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}

		return m, m.handleKey(msg)

	case discoveredMsg:
		return m, m.onDiscovered(msg)

	case shared.CopyProgressMsg:
		return m, m.onCopyProgress(msg)

	case copyDoneMsg:
		return m, m.onCopyDone(msg)

	case spinner.TickMsg:
		if m.screen != screenBusy {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	// Cursor blinks and other input housekeeping
	if m.screen == screenPrompt && m.prompt != nil {
		var cmd tea.Cmd
		m.prompt.input, cmd = m.prompt.input.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.screen {
	case screenMenu:
		return m.updateMenu(msg)
	case screenPrompt:
		return m.updatePrompt(msg)
	case screenFiles:
		return m.updateFiles(msg)
	case screenPreview:
		m.screen = screenFiles
		return nil
	case screenListing:
		if m.listingBack != nil {
			return m.listingBack(m)
		}

		return m.showMainMenu()
	case screenResult:
		m.result = nil
		return m.showMainMenu()
	case screenBusy:
		// Batches run to completion
		return nil
	default:
		return nil
	}
}

func (m *Model) updateMenu(msg tea.KeyMsg) tea.Cmd {
	current := m.menu
	if current == nil || len(current.items) == 0 {
		return m.showMainMenu()
	}

	switch msg.String() {
	case "up", "k":
		if current.cursor > 0 {
			current.cursor--
		} else {
			current.cursor = len(current.items) - 1
		}
	case "down", "j":
		current.cursor = (current.cursor + 1) % len(current.items)
	case "enter":
		m.statuses = nil
		return current.onSelect(m, current.items[current.cursor])
	case "esc", "q":
		if current.onBack != nil {
			return current.onBack(m)
		}
	}

	return nil
}

func (m *Model) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	current := m.prompt

	switch msg.String() {
	case "enter":
		m.statuses = nil
		return current.onSubmit(m, current.input.Value())
	case "esc":
		m.statuses = nil
		return current.onCancel(m)
	case "tab":
		if current.completeDirs {
			m.completePath()
			return nil
		}
	}

	current.completions = nil

	var cmd tea.Cmd
	current.input, cmd = current.input.Update(msg)

	return cmd
}

func (m *Model) updateFiles(msg tea.KeyMsg) tea.Cmd {
	pages := shared.PageCount(len(m.files), m.pageSize())

	switch msg.String() {
	case "n", "right", "pgdown":
		if m.page < pages-1 {
			m.page++
			m.refreshFileTable()
		}

		return nil
	case "p", "left", "pgup":
		if m.page > 0 {
			m.page--
			m.refreshFileTable()
		}

		return nil
	case "enter", "v":
		m.showPreview()
		return nil
	case "esc", "q", "b":
		return m.showMainMenu()
	}

	var cmd tea.Cmd
	m.fileTable, cmd = m.fileTable.Update(msg)

	return cmd
}

// completePath applies directory completion to the prompt input, filling in
// the longest common prefix of the candidates.
func (m *Model) completePath() {
	current := m.prompt

	completions := getDirCompletions(current.input.Value())
	if len(completions) == 0 {
		current.completions = nil
		return
	}

	common := findCommonPrefix(completions)
	if len(common) > len(current.input.Value()) {
		current.input.SetValue(common)
		current.input.CursorEnd()
	}

	if len(completions) == 1 {
		current.completions = nil
		return
	}

	current.completions = completions
}
