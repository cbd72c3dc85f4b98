package tui

import (
	"fmt"
	"strings"

	"github.com/joe/tidy-files/internal/config"
	"github.com/joe/tidy-files/internal/tui/shared"
)

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(shared.RenderTitle("Welcome to " + config.AppName))
	b.WriteString("\n")

	for _, s := range m.statuses {
		b.WriteString(renderStatus(s))
		b.WriteString("\n")
	}

	if len(m.statuses) > 0 {
		b.WriteString("\n")
	}

	switch m.screen {
	case screenMenu:
		b.WriteString(m.renderMenu())
	case screenPrompt:
		b.WriteString(m.renderPrompt())
	case screenFiles:
		b.WriteString(m.renderFiles())
	case screenPreview, screenListing:
		b.WriteString(m.renderListing())
	case screenBusy:
		b.WriteString(m.renderBusy())
	case screenResult:
		b.WriteString(m.renderResult())
	}

	b.WriteString("\n")
	b.WriteString(shared.RenderDim(m.helpText()))

	return b.String()
}

func renderStatus(s status) string {
	switch s.level {
	case statusSuccess:
		return shared.RenderSuccess(s.text)
	case statusWarning:
		return shared.RenderWarning(s.text)
	case statusError:
		return shared.RenderError(s.text)
	default:
		return s.text
	}
}

func (m *Model) renderMenu() string {
	if m.menu == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString(shared.RenderSubtitle(m.menu.title))
	b.WriteString("\n")

	for i, item := range m.menu.items {
		if i == m.menu.cursor {
			b.WriteString(shared.MenuSelectedStyle().Render(shared.PromptArrow + item))
		} else {
			b.WriteString(shared.MenuItemStyle().Render("  " + item))
		}

		b.WriteString("\n")
	}

	return b.String()
}

func (m *Model) renderPrompt() string {
	if m.prompt == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString(shared.RenderSubtitle(m.prompt.title))
	b.WriteString("\n")

	if m.prompt.body != "" {
		b.WriteString(m.prompt.body)
		b.WriteString("\n\n")
	}

	b.WriteString(shared.RenderLabel(m.prompt.hint))
	b.WriteString("\n")
	b.WriteString(m.prompt.input.View())
	b.WriteString("\n")

	if len(m.prompt.completions) > 0 {
		b.WriteString(renderCompletions(m.prompt.completions))
	}

	return b.String()
}

// renderCompletions lists candidate directories by base name.
func renderCompletions(completions []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "  %d matches:\n", len(completions))

	for i, c := range completions {
		if i >= maxCompletionsShown {
			b.WriteString(shared.RenderDim("    ...") + "\n")
			break
		}

		name := strings.TrimRight(c, `/\`)
		if idx := strings.LastIndexAny(name, `/\`); idx >= 0 {
			name = name[idx+1:]
		}

		b.WriteString(shared.RenderDim("    "+name) + "\n")
	}

	return b.String()
}

func (m *Model) renderFiles() string {
	pages := shared.PageCount(len(m.files), m.pageSize())

	var b strings.Builder

	b.WriteString(shared.RenderSubtitle("Discovered Files"))
	b.WriteString("\n")
	b.WriteString(m.fileTable.View())
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Page %d of %d | Total Files: %d\n", m.page+1, pages, len(m.files))

	return b.String()
}

func (m *Model) renderListing() string {
	return shared.RenderSubtitle(m.listingTitle) + "\n" + shared.RenderBox(m.listingBody) + "\n"
}

func (m *Model) renderBusy() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n\n", m.spinner.View(), m.busyTitle)

	// Discovery has no progress to show
	if m.copyTotal == 0 {
		return b.String()
	}

	percent := 0.0
	if m.copyTotal > 0 {
		percent = float64(m.copyCurrent) / float64(m.copyTotal)
	}

	b.WriteString(m.bar.ViewAs(percent))
	fmt.Fprintf(&b, "  %d / %d\n", m.copyCurrent, m.copyTotal)

	if m.copyLast != "" {
		b.WriteString(shared.RenderDim(m.copyLast))
		b.WriteString("\n")
	}

	return b.String()
}

func (m *Model) renderResult() string {
	if m.result == nil {
		return ""
	}

	result := m.result

	var b strings.Builder

	b.WriteString(shared.RenderSubtitle("Copy Results"))
	b.WriteString("\n")

	if result.Success {
		b.WriteString(shared.RenderSuccess(shared.CheckMark + result.Message))
	} else {
		b.WriteString(shared.RenderError(shared.CrossMark + result.Message))
	}

	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %d\n", shared.RenderLabel("Files copied:"), result.FilesCopied)
	fmt.Fprintf(&b, "%s %d\n", shared.RenderLabel("Files skipped:"), result.FilesSkipped)
	fmt.Fprintf(&b, "%s %s\n", shared.RenderLabel("Total size:"), shared.FormatBytes(result.TotalBytesCopied))
	fmt.Fprintf(&b, "%s %s\n", shared.RenderLabel("Elapsed:"), shared.FormatDuration(m.elapsed))

	if len(result.Errors) > 0 {
		b.WriteString("\n")
		b.WriteString(shared.RenderError(fmt.Sprintf("Errors (%d):", len(result.Errors))))
		b.WriteString("\n")
		b.WriteString(shared.RenderErrorList(result.Failures))
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Remaining files in list: %d\n", len(m.files))

	return b.String()
}

func (m *Model) helpText() string {
	switch m.screen {
	case screenMenu:
		return "↑/↓ to move • Enter to select • Esc to go back • Ctrl+C to quit"
	case screenPrompt:
		if m.prompt != nil && m.prompt.completeDirs {
			return "Enter to confirm • Tab to complete • Esc to cancel"
		}

		return "Enter to confirm • Esc to cancel"
	case screenFiles:
		return "↑/↓ to move • n/p to change page • Enter to preview • Esc to go back"
	case screenBusy:
		return "Working... Ctrl+C to quit"
	default:
		return "Press any key to continue"
	}
}
