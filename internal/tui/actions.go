package tui

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joe/tidy-files/internal/appconfig"
	"github.com/joe/tidy-files/internal/classify"
	"github.com/joe/tidy-files/internal/discovery"
	"github.com/joe/tidy-files/internal/model"
	"github.com/joe/tidy-files/internal/tui/shared"
)

//nolint:gochecknoglobals // fixed menu layout
var mainMenuItems = []string{
	itemSourceFolders,
	itemOutputFolder,
	itemDiscover,
	itemViewFiles,
	itemCategories,
	itemClassify,
	itemCopy,
	itemExit,
}

// ============================================================================
// Main menu
// ============================================================================

func (m *Model) showMainMenu() tea.Cmd {
	m.showMenu(&menu{
		title:    "Main Menu",
		items:    mainMenuItems,
		onSelect: (*Model).onMainMenu,
	})

	return nil
}

func (m *Model) onMainMenu(choice string) tea.Cmd {
	switch choice {
	case itemSourceFolders:
		return m.showSourceFolderMenu()
	case itemOutputFolder:
		return m.showPrompt(&prompt{
			title:        "Select Output Folder",
			hint:         "Enter output folder path:",
			completeDirs: true,
			onSubmit:     (*Model).submitOutputFolder,
			onCancel:     (*Model).showMainMenu,
		}, m.deps.Folders.Get().OutputFolder)
	case itemDiscover:
		return m.startDiscovery()
	case itemViewFiles:
		return m.showFiles()
	case itemCategories:
		return m.showCategoryMenu()
	case itemClassify:
		return m.startClassify()
	case itemCopy:
		return m.startCopy()
	case itemExit:
		m.quitting = true
		return tea.Quit
	}

	return nil
}

// save runs a store's save and reports a failure on the status line.
func (m *Model) save(what string, save func() error) bool {
	err := save()
	if err != nil {
		m.deps.Log.Error().Err(err).Str("store", what).Msg("save failed")
		m.addStatus(statusError, fmt.Sprintf("Failed to save %s: %v", what, err))

		return false
	}

	return true
}

// ============================================================================
// Folders
// ============================================================================

func (m *Model) showSourceFolderMenu() tea.Cmd {
	m.showMenu(&menu{
		title:    "Select Source Folders",
		items:    []string{"Add Folder", "View Selected Folders", "Clear All", "Done"},
		onSelect: (*Model).onSourceFolderMenu,
		onBack:   (*Model).showMainMenu,
	})

	return nil
}

func (m *Model) onSourceFolderMenu(choice string) tea.Cmd {
	switch choice {
	case "Add Folder":
		return m.showPrompt(&prompt{
			title:        "Add Source Folder",
			hint:         "Enter folder path (or 'cancel' to go back):",
			completeDirs: true,
			onSubmit:     (*Model).submitSourceFolder,
			onCancel:     (*Model).showSourceFolderMenu,
		}, "")
	case "View Selected Folders":
		folders := m.deps.Folders.Get().SourceFolders
		if len(folders) == 0 {
			m.setStatus(statusWarning, "No folders selected yet.")
			return nil
		}

		rows := make([][]string, 0, len(folders))
		for i, folder := range folders {
			rows = append(rows, []string{strconv.Itoa(i + 1), folder})
		}

		m.showListing("Selected Folders", shared.RenderTable([]string{"Index", "Folder Path"}, rows),
			(*Model).showSourceFolderMenu)
	case "Clear All":
		m.deps.Folders.ClearSourceFolders()
		if m.save("app config", m.deps.Folders.Save) {
			m.setStatus(statusSuccess, shared.CheckMark+"All folders cleared!")
		}
	case "Done":
		return m.showMainMenu()
	}

	return nil
}

func (m *Model) submitSourceFolder(value string) tea.Cmd {
	if strings.EqualFold(strings.TrimSpace(value), "cancel") {
		return m.showSourceFolderMenu()
	}

	added, err := m.deps.Folders.AddSourceFolder(value)

	switch {
	case errors.Is(err, appconfig.ErrEmptyPath):
		m.setStatus(statusError, "Invalid path!")
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, appconfig.ErrNotDirectory):
		m.setStatus(statusError, "Directory does not exist!")
	case err != nil:
		m.setStatus(statusError, "Invalid path: "+err.Error())
	case !added:
		m.setStatus(statusWarning, "Folder already added!")
	default:
		folders := m.deps.Folders.Get().SourceFolders
		m.setStatus(statusSuccess, shared.CheckMark+"Added: "+folders[len(folders)-1])
		m.save("app config", m.deps.Folders.Save)
	}

	return m.showSourceFolderMenu()
}

func (m *Model) submitOutputFolder(value string) tea.Cmd {
	if strings.TrimSpace(value) == "" {
		m.setStatus(statusError, "Invalid path!")
		return m.showMainMenu()
	}

	err := m.deps.Folders.SetOutputFolder(value)
	if err != nil {
		m.setStatus(statusError, "Error setting output folder: "+err.Error())
		return m.showMainMenu()
	}

	m.setStatus(statusSuccess, shared.CheckMark+"Output folder set to: "+m.deps.Folders.Get().OutputFolder)
	m.save("app config", m.deps.Folders.Save)

	return m.showMainMenu()
}

// ============================================================================
// Discovery and file listing
// ============================================================================

func (m *Model) startDiscovery() tea.Cmd {
	folders := m.deps.Folders.Get().SourceFolders
	if len(folders) == 0 {
		m.setStatus(statusError, "No source folders selected. Please select folders first.")
		return nil
	}

	m.screen = screenBusy
	m.busyTitle = "Scanning folders..."
	m.bridge = nil
	m.copyTotal = 0

	return tea.Batch(m.spinner.Tick, m.discoverCmd(folders))
}

func (m *Model) discoverCmd(folders []string) tea.Cmd {
	engine := m.deps.Discovery
	opts := discovery.Options{
		ExcludeTracked: m.deps.Settings.ExcludeTracked,
		Exclude:        m.deps.Settings.Exclude,
	}

	return func() tea.Msg {
		return discoveredMsg{records: engine.Discover(folders, opts)}
	}
}

func (m *Model) onDiscovered(msg discoveredMsg) tea.Cmd {
	m.files = msg.records
	m.setStatus(statusSuccess, fmt.Sprintf("%sDiscovered %d files.", shared.CheckMark, len(m.files)))

	return m.showMainMenu()
}

func (m *Model) showFiles() tea.Cmd {
	if len(m.files) == 0 {
		m.setStatus(statusWarning, "No files discovered yet. Please discover files first.")
		return nil
	}

	m.page = 0
	m.refreshFileTable()
	m.screen = screenFiles

	return nil
}

func (m *Model) refreshFileTable() {
	start, end := shared.PageBounds(m.page, m.pageSize(), len(m.files))

	rows := make([]table.Row, 0, end-start)
	for i := start; i < end; i++ {
		file := m.files[i]

		category := file.Category
		if category == "" {
			category = "Unassigned"
		}

		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			file.Name,
			file.FormattedSize(),
			file.ModifiedAt.Format("2006-01-02"),
			category,
		})
	}

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(shared.AccentColor()).
		BorderBottom(true).
		Bold(true)
	styles.Selected = shared.MenuSelectedStyle()

	//nolint:mnd // column widths
	m.fileTable = table.New(
		table.WithColumns([]table.Column{
			{Title: "#", Width: 5},
			{Title: "File Name", Width: 40},
			{Title: "Size", Width: 10},
			{Title: "Modified", Width: 10},
			{Title: "Category", Width: 20},
		}),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(len(rows)+1),
		table.WithStyles(styles),
	)
}

func (m *Model) showPreview() {
	idx := m.page*m.pageSize() + m.fileTable.Cursor()
	if idx < 0 || idx >= len(m.files) {
		return
	}

	file := m.files[idx]
	m.listingTitle = "Preview: " + file.Name
	m.listingBody = m.deps.Discovery.Preview(file.Path, m.previewLines())
	m.screen = screenPreview
}

// ============================================================================
// Categories
// ============================================================================

func (m *Model) showCategoryMenu() tea.Cmd {
	m.showMenu(&menu{
		title:    "Category Management",
		items:    []string{"Create Category", "View Categories", "Rename Category", "Delete Category", "Back"},
		onSelect: (*Model).onCategoryMenu,
		onBack:   (*Model).showMainMenu,
	})

	return nil
}

func (m *Model) onCategoryMenu(choice string) tea.Cmd {
	names := m.deps.Categories.Names()

	switch choice {
	case "Create Category":
		return m.showPrompt(&prompt{
			title:    "Create Category",
			hint:     "Enter category name:",
			onSubmit: (*Model).submitCategoryName,
			onCancel: (*Model).showCategoryMenu,
		}, "")
	case "View Categories":
		return m.viewCategories()
	case "Rename Category":
		if len(names) == 0 {
			m.setStatus(statusWarning, "No categories to rename.")
			return nil
		}

		m.showMenu(&menu{
			title:    "Select category to rename",
			items:    names,
			onSelect: (*Model).chooseCategoryToRename,
			onBack:   (*Model).showCategoryMenu,
		})
	case "Delete Category":
		if len(names) == 0 {
			m.setStatus(statusWarning, "No categories to delete.")
			return nil
		}

		m.showMenu(&menu{
			title:    "Select category to delete",
			items:    names,
			onSelect: (*Model).chooseCategoryToDelete,
			onBack:   (*Model).showCategoryMenu,
		})
	case "Back":
		return m.showMainMenu()
	}

	return nil
}

func (m *Model) submitCategoryName(value string) tea.Cmd {
	name := strings.TrimSpace(value)
	if name == "" {
		m.setStatus(statusError, "Category name cannot be empty.")
		return m.showCategoryMenu()
	}

	m.target = name

	return m.showPrompt(&prompt{
		title:    "Create Category",
		hint:     "Enter category description (optional, press Enter to skip):",
		onSubmit: (*Model).submitCategoryDescription,
		onCancel: (*Model).showCategoryMenu,
	}, "")
}

func (m *Model) submitCategoryDescription(value string) tea.Cmd {
	name := m.target
	m.target = ""

	err := m.deps.Categories.Create(name, value)
	if err != nil {
		m.setStatus(statusError, fmt.Sprintf("%sFailed to create category '%s': %v", shared.CrossMark, name, err))
		return m.showCategoryMenu()
	}

	m.setStatus(statusSuccess, fmt.Sprintf("%sCategory '%s' created successfully!", shared.CheckMark, name))
	m.save("categories", m.deps.Categories.Save)

	return m.showCategoryMenu()
}

func (m *Model) viewCategories() tea.Cmd {
	categories := m.deps.Categories.List()
	if len(categories) == 0 {
		m.setStatus(statusWarning, "No categories created yet.")
		return nil
	}

	rows := make([][]string, 0, len(categories))

	for _, c := range categories {
		description := c.Description
		if description == "" {
			description = "-"
		}

		rows = append(rows, []string{c.Name, description, c.CreatedAt.Local().Format("2006-01-02 15:04")})
	}

	m.showListing("Categories", shared.RenderTable([]string{"Category Name", "Description", "Created"}, rows),
		(*Model).showCategoryMenu)

	return nil
}

func (m *Model) chooseCategoryToRename(choice string) tea.Cmd {
	m.target = choice

	return m.showPrompt(&prompt{
		title:    "Rename Category '" + choice + "'",
		hint:     "Enter new name:",
		onSubmit: (*Model).submitCategoryRename,
		onCancel: (*Model).showCategoryMenu,
	}, "")
}

func (m *Model) submitCategoryRename(value string) tea.Cmd {
	oldName := m.target
	m.target = ""

	newName := strings.TrimSpace(value)
	if newName == "" {
		m.setStatus(statusError, "New name cannot be empty.")
		return m.showCategoryMenu()
	}

	err := m.deps.Categories.Rename(oldName, newName)
	if err != nil {
		m.setStatus(statusError, fmt.Sprintf("%sFailed to rename category: %v", shared.CrossMark, err))
		return m.showCategoryMenu()
	}

	// Files already classified follow the category to its new name
	for i := range m.files {
		if strings.EqualFold(m.files[i].Category, oldName) {
			m.files[i].Category = newName
		}
	}

	m.setStatus(statusSuccess, fmt.Sprintf("%sCategory renamed to '%s'!", shared.CheckMark, newName))
	m.save("categories", m.deps.Categories.Save)

	return m.showCategoryMenu()
}

func (m *Model) chooseCategoryToDelete(choice string) tea.Cmd {
	m.target = choice

	m.showMenu(&menu{
		title:    fmt.Sprintf("Are you sure you want to delete '%s'?", choice),
		items:    []string{"No", "Yes"},
		onSelect: (*Model).confirmCategoryDelete,
		onBack:   (*Model).showCategoryMenu,
	})

	return nil
}

func (m *Model) confirmCategoryDelete(choice string) tea.Cmd {
	name := m.target
	m.target = ""

	if choice != "Yes" {
		return m.showCategoryMenu()
	}

	err := m.deps.Categories.Delete(name)
	if err != nil {
		m.setStatus(statusError, fmt.Sprintf("%sFailed to delete category: %v", shared.CrossMark, err))
		return m.showCategoryMenu()
	}

	// Files classified into the deleted category go back to unassigned
	var orphaned []*model.FileRecord

	for i := range m.files {
		if strings.EqualFold(m.files[i].Category, name) {
			orphaned = append(orphaned, &m.files[i])
		}
	}

	classify.Unassign(orphaned)

	m.setStatus(statusSuccess, fmt.Sprintf("%sCategory '%s' deleted!", shared.CheckMark, name))
	m.save("categories", m.deps.Categories.Save)

	return m.showCategoryMenu()
}

// ============================================================================
// Classification
// ============================================================================

func (m *Model) startClassify() tea.Cmd {
	if len(m.files) == 0 {
		m.setStatus(statusWarning, "No files discovered yet.")
		return nil
	}

	if len(m.deps.Categories.Names()) == 0 {
		m.setStatus(statusWarning, "No categories available. Please create categories first.")
		return nil
	}

	unclassified := classify.Unclassified(m.files)
	if len(unclassified) == 0 {
		m.setStatus(statusWarning, "All files are already classified.")
		return nil
	}

	rows := make([][]string, 0, len(unclassified))
	for i, file := range unclassified {
		rows = append(rows, []string{strconv.Itoa(i + 1), file.Name, file.FormattedSize()})
	}

	m.pending = unclassified

	return m.showPrompt(&prompt{
		title:    "File Classification",
		body:     shared.RenderTable([]string{"#", "File Name", "Size"}, rows),
		hint:     "Enter file indices (e.g., 1,2,3 or range 1-5):",
		onSubmit: (*Model).submitSelection,
		onCancel: (*Model).cancelClassify,
	}, "")
}

func (m *Model) cancelClassify() tea.Cmd {
	m.pending = nil
	return m.showMainMenu()
}

func (m *Model) submitSelection(value string) tea.Cmd {
	indices := classify.ParseSelection(value, len(m.pending))
	if len(indices) == 0 {
		m.pending = nil
		m.setStatus(statusError, "Invalid selection.")

		return m.showMainMenu()
	}

	m.pending = classify.Pick(m.pending, indices)

	m.showMenu(&menu{
		title:    fmt.Sprintf("Select category to assign to %d file(s)", len(m.pending)),
		items:    m.deps.Categories.Names(),
		onSelect: (*Model).assignCategory,
		onBack:   (*Model).cancelClassify,
	})

	return nil
}

func (m *Model) assignCategory(choice string) tea.Cmd {
	classify.Assign(m.pending, choice)
	m.setStatus(statusSuccess, fmt.Sprintf("%s%d file(s) classified to '%s'", shared.CheckMark, len(m.pending), choice))
	m.pending = nil

	return m.showMainMenu()
}

// ============================================================================
// Copying
// ============================================================================

func (m *Model) startCopy() tea.Cmd {
	output := m.deps.Folders.Get().OutputFolder
	if output == "" {
		m.setStatus(statusError, "Output folder not set. Please select an output folder first.")
		return nil
	}

	classified := classify.Classified(m.files)
	if len(classified) == 0 {
		m.setStatus(statusWarning, "No classified files to copy.")
		return nil
	}

	bridge := shared.NewProgressBridge()

	m.screen = screenBusy
	m.busyTitle = fmt.Sprintf("Copying %d classified files to %s", len(classified), output)
	m.bridge = bridge
	m.copyCurrent = 0
	m.copyTotal = len(classified)
	m.copyLast = ""

	engine := m.deps.Copier
	work := func() tea.Msg {
		start := time.Now()
		result := engine.Copy(classified, output, bridge.Sink())
		bridge.Close()

		return copyDoneMsg{result: result, elapsed: time.Since(start)}
	}

	return tea.Batch(m.spinner.Tick, work, bridge.ListenCmd())
}

func (m *Model) onCopyProgress(msg shared.CopyProgressMsg) tea.Cmd {
	if m.bridge == nil {
		return nil
	}

	m.copyCurrent = msg.Progress.Current
	m.copyTotal = msg.Progress.Total
	m.copyLast = msg.Progress.Message

	return m.bridge.ListenCmd()
}

func (m *Model) onCopyDone(msg copyDoneMsg) tea.Cmd {
	m.bridge = nil
	m.result = &msg.result
	m.elapsed = msg.elapsed

	// Copied files leave the session; failed ones stay for another try
	m.files = classify.Without(m.files, msg.result.Copied)
	m.screen = screenResult

	return nil
}
