// Package tui provides the interactive menu: folder selection, discovery,
// file listing, category management, classification and copying.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/joe/tidy-files/internal/appconfig"
	"github.com/joe/tidy-files/internal/category"
	"github.com/joe/tidy-files/internal/config"
	"github.com/joe/tidy-files/internal/copier"
	"github.com/joe/tidy-files/internal/discovery"
	"github.com/joe/tidy-files/internal/model"
	"github.com/joe/tidy-files/internal/tui/shared"
)

// Main menu entries.
const (
	itemSourceFolders = "Select Source Folders"
	itemOutputFolder  = "Select Output Folder"
	itemDiscover      = "Discover Files"
	itemViewFiles     = "View Files"
	itemCategories    = "Manage Categories"
	itemClassify      = "Classify Files"
	itemCopy          = "Copy Classified Files"
	itemExit          = "Exit"
)

// Deps are the stores and engines the menu drives.
type Deps struct {
	Discovery  *discovery.Engine
	Copier     *copier.Engine
	Categories *category.Store
	Folders    *appconfig.Store
	Settings   config.Settings
	Log        zerolog.Logger
}

// screen identifies what the model is currently showing.
type screen int

const (
	screenMenu screen = iota
	screenPrompt
	screenFiles
	screenPreview
	screenListing
	screenBusy
	screenResult
)

// menu is a cursor list of choices.
type menu struct {
	title    string
	items    []string
	cursor   int
	onSelect func(m *Model, choice string) tea.Cmd
	onBack   func(m *Model) tea.Cmd
}

// prompt is a single line of text input.
type prompt struct {
	title        string
	hint         string
	body         string
	input        textinput.Model
	completeDirs bool
	completions  []string
	onSubmit     func(m *Model, value string) tea.Cmd
	onCancel     func(m *Model) tea.Cmd
}

// status is one feedback line shown above the current screen.
type status struct {
	text  string
	level statusLevel
}

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusSuccess
	statusWarning
	statusError
)

// discoveredMsg carries the records of a finished discovery run.
type discoveredMsg struct {
	records []model.FileRecord
}

// copyDoneMsg carries the result of a finished copy batch.
type copyDoneMsg struct {
	result  model.ClassificationResult
	elapsed time.Duration
}

// Model is the bubble tea model of the whole menu. It owns the session's
// discovered files; the engines only see the slices it hands them.
type Model struct {
	deps Deps

	screen   screen
	statuses []status
	quitting bool
	width    int
	height   int

	menu   *menu
	prompt *prompt

	// Session state
	files   []model.FileRecord
	pending []*model.FileRecord
	target  string

	// File list
	fileTable table.Model
	page      int

	// Static listings and previews
	listingTitle string
	listingBody  string
	listingBack  func(m *Model) tea.Cmd

	// Background work
	busyTitle   string
	spinner     spinner.Model
	bar         progress.Model
	bridge      *shared.ProgressBridge
	copyCurrent int
	copyTotal   int
	copyLast    string

	result  *model.ClassificationResult
	elapsed time.Duration
}

// NewModel creates the menu model showing the main menu.
func NewModel(deps Deps) *Model {
	m := &Model{
		deps: deps,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(shared.LabelStyle()),
		),
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(shared.ProgressBarWidth),
		),
	}

	m.showMainMenu()

	return m
}

// Files returns the session's discovered files (for testing).
func (m *Model) Files() []model.FileRecord {
	return m.files
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) pageSize() int {
	return max(m.deps.Settings.PageSize, 1)
}

func (m *Model) previewLines() int {
	return max(m.deps.Settings.PreviewLines, 1)
}

func (m *Model) setStatus(level statusLevel, text string) {
	m.statuses = []status{{text: text, level: level}}
}

func (m *Model) addStatus(level statusLevel, text string) {
	m.statuses = append(m.statuses, status{text: text, level: level})
}

func (m *Model) showMenu(next *menu) {
	m.menu = next
	m.prompt = nil
	m.screen = screenMenu
}

func (m *Model) showPrompt(next *prompt, initial string) tea.Cmd {
	input := textinput.New()
	input.Prompt = shared.PromptArrow
	input.CharLimit = 1024
	input.Width = 60
	input.SetValue(initial)

	next.input = input
	m.prompt = next
	m.screen = screenPrompt

	return m.prompt.input.Focus()
}

func (m *Model) showListing(title, body string, back func(m *Model) tea.Cmd) {
	m.listingTitle = title
	m.listingBody = body
	m.listingBack = back
	m.screen = screenListing
}
