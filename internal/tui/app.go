package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the interactive menu until the user exits. It returns the
// session's model so the caller can inspect what was left unclassified.
func Run(deps Deps, opts ...tea.ProgramOption) (*Model, error) {
	final, err := tea.NewProgram(NewModel(deps), opts...).Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run menu: %w", err)
	}

	m, ok := final.(*Model)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", final)
	}

	return m, nil
}
