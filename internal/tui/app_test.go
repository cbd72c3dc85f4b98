package tui

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/joe/tidy-files/internal/appconfig"
	"github.com/joe/tidy-files/internal/category"
	"github.com/joe/tidy-files/internal/config"
	"github.com/joe/tidy-files/internal/copier"
	"github.com/joe/tidy-files/internal/discovery"
	"github.com/joe/tidy-files/internal/tracking"
	"github.com/joe/tidy-files/internal/tui/shared"
	"github.com/joe/tidy-files/pkg/filesystem"
)

func key(name string) tea.KeyMsg {
	switch name {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
	}
}

// press sends a key and returns the command without running it.
func press(m *Model, name string) tea.Cmd {
	_, cmd := m.Update(key(name))
	return cmd
}

// drain runs cmd and feeds every resulting message back into the model.
// Spinner ticks are dropped so busy screens do not loop.
func drain(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}

	msg := cmd()

	switch msg := msg.(type) {
	case nil, spinner.TickMsg:
		return
	case tea.BatchMsg:
		for _, next := range msg {
			drain(m, next)
		}
	default:
		_, next := m.Update(msg)
		drain(m, next)
	}
}

// choose moves the menu cursor onto label and selects it.
func choose(m *Model, label string) tea.Cmd {
	Expect(m.screen).To(Equal(screenMenu))

	idx := slices.Index(m.menu.items, label)
	Expect(idx).To(BeNumerically(">=", 0), "menu %q has no item %q", m.menu.title, label)

	m.menu.cursor = idx

	return press(m, "enter")
}

// submit types value into the open prompt and confirms it.
func submit(m *Model, value string) tea.Cmd {
	Expect(m.screen).To(Equal(screenPrompt))
	m.prompt.input.SetValue(value)

	return press(m, "enter")
}

func statusTexts(m *Model) []string {
	texts := make([]string, 0, len(m.statuses))
	for _, s := range m.statuses {
		texts = append(texts, s.text)
	}

	return texts
}

var _ = Describe("Model", func() {
	var (
		dir        string
		mfs        *filesystem.MockFileSystem
		categories *category.Store
		folders    *appconfig.Store
		tracker    *tracking.Store
		m          *Model
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		log := zerolog.New(GinkgoWriter)

		mfs = filesystem.NewMockFileSystem()
		mfs.AddFile("/src/a.txt", []byte("alpha"), time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC))
		mfs.AddFile("/src/b.txt", []byte("bravo!"), time.Date(2024, 5, 7, 7, 8, 9, 0, time.UTC))
		mfs.AddFile("/src/nested/c.md", []byte("# charlie"), time.Date(2024, 5, 8, 7, 8, 9, 0, time.UTC))

		categories = category.NewStore(filepath.Join(dir, config.CategoriesFileName), log)
		folders = appconfig.NewStore(filepath.Join(dir, config.AppConfigFileName), mfs, log)
		tracker = tracking.NewStore(filepath.Join(dir, config.TrackingFileName), log)

		settings := config.DefaultSettings()
		settings.PageSize = 2

		m = NewModel(Deps{
			Discovery:  discovery.NewEngine(mfs, tracker, log),
			Copier:     copier.NewEngine(mfs, tracker, log),
			Categories: categories,
			Folders:    folders,
			Settings:   settings,
			Log:        log,
		})
	})

	discover := func() {
		_, err := folders.AddSourceFolder("/src")
		Expect(err).ShouldNot(HaveOccurred())
		drain(m, choose(m, itemDiscover))
		Expect(m.Files()).To(HaveLen(3))
	}

	Describe("main menu", func() {
		It("starts on the main menu", func() {
			Expect(m.screen).To(Equal(screenMenu))
			Expect(m.menu.items).To(Equal(mainMenuItems))
			Expect(m.View()).To(ContainSubstring("Welcome to tidy-files"))
			Expect(m.View()).To(ContainSubstring(itemClassify))
		})

		It("wraps the cursor", func() {
			press(m, "up")
			Expect(m.menu.cursor).To(Equal(len(mainMenuItems) - 1))
			press(m, "down")
			Expect(m.menu.cursor).To(Equal(0))
		})

		It("quits on Exit", func() {
			cmd := choose(m, itemExit)
			Expect(cmd).NotTo(BeNil())
			Expect(cmd()).To(Equal(tea.Quit()))
			Expect(m.View()).To(BeEmpty())
		})
	})

	Describe("source folders", func() {
		BeforeEach(func() {
			choose(m, itemSourceFolders)
			choose(m, "Add Folder")
		})

		It("adds and saves an existing directory", func() {
			submit(m, "/src")

			Expect(statusTexts(m)).To(ConsistOf(shared.CheckMark + "Added: /src"))
			Expect(folders.Get().SourceFolders).To(Equal([]string{"/src"}))
			Expect(filepath.Join(dir, config.AppConfigFileName)).To(BeAnExistingFile())
			Expect(m.menu.title).To(Equal("Select Source Folders"))
		})

		It("rejects duplicates and missing directories", func() {
			submit(m, "/src")
			choose(m, "Add Folder")
			submit(m, "/src/")
			Expect(statusTexts(m)).To(ConsistOf("Folder already added!"))

			choose(m, "Add Folder")
			submit(m, "/nowhere")
			Expect(statusTexts(m)).To(ConsistOf("Directory does not exist!"))

			choose(m, "Add Folder")
			submit(m, "/src/a.txt")
			Expect(statusTexts(m)).To(ConsistOf("Directory does not exist!"))

			Expect(folders.Get().SourceFolders).To(HaveLen(1))
		})

		It("goes back on cancel", func() {
			submit(m, "cancel")
			Expect(m.menu.title).To(Equal("Select Source Folders"))
			Expect(folders.Get().SourceFolders).To(BeEmpty())
		})

		It("clears every folder", func() {
			submit(m, "/src")
			choose(m, "Clear All")
			Expect(statusTexts(m)).To(ConsistOf(shared.CheckMark + "All folders cleared!"))
			Expect(folders.Get().SourceFolders).To(BeEmpty())

			choose(m, "View Selected Folders")
			Expect(statusTexts(m)).To(ConsistOf("No folders selected yet."))
		})
	})

	Describe("discovery", func() {
		It("needs source folders", func() {
			Expect(choose(m, itemDiscover)).To(BeNil())
			Expect(statusTexts(m)).To(ConsistOf("No source folders selected. Please select folders first."))
		})

		It("collects the files of every folder", func() {
			discover()
			Expect(statusTexts(m)).To(ConsistOf(shared.CheckMark + "Discovered 3 files."))
			Expect(m.screen).To(Equal(screenMenu))
		})

		It("leaves out tracked files", func() {
			tracker.Add("/src/b.txt", "/out/Docs/b.txt", "Docs")
			_, err := folders.AddSourceFolder("/src")
			Expect(err).ShouldNot(HaveOccurred())

			drain(m, choose(m, itemDiscover))

			Expect(m.Files()).To(HaveLen(2))
		})
	})

	Describe("file list", func() {
		It("needs discovered files", func() {
			choose(m, itemViewFiles)
			Expect(statusTexts(m)).To(ConsistOf("No files discovered yet. Please discover files first."))
		})

		It("pages through the files and previews one", func() {
			discover()
			choose(m, itemViewFiles)

			Expect(m.screen).To(Equal(screenFiles))
			Expect(m.View()).To(ContainSubstring("Page 1 of 2 | Total Files: 3"))

			press(m, "n")
			Expect(m.page).To(Equal(1))
			Expect(m.View()).To(ContainSubstring("Page 2 of 2"))

			press(m, "n")
			Expect(m.page).To(Equal(1))

			press(m, "v")
			Expect(m.screen).To(Equal(screenPreview))
			Expect(m.listingBody).To(Equal("# charlie"))

			press(m, "x")
			Expect(m.screen).To(Equal(screenFiles))

			press(m, "esc")
			Expect(m.screen).To(Equal(screenMenu))
		})
	})

	Describe("categories", func() {
		createCategory := func(name, description string) {
			choose(m, itemCategories)
			choose(m, "Create Category")
			submit(m, name)
			submit(m, description)
		}

		It("creates and saves a category", func() {
			createCategory("Docs", "Documents")

			Expect(statusTexts(m)).To(ConsistOf(shared.CheckMark + "Category 'Docs' created successfully!"))
			Expect(categories.Names()).To(Equal([]string{"Docs"}))
			Expect(filepath.Join(dir, config.CategoriesFileName)).To(BeAnExistingFile())
		})

		It("reports duplicates", func() {
			createCategory("Docs", "")
			choose(m, "Create Category")
			submit(m, "docs")
			submit(m, "")

			Expect(statusTexts(m)).To(ConsistOf(HavePrefix(shared.CrossMark + "Failed to create category 'docs'")))
		})

		It("relabels session files on rename", func() {
			Expect(categories.Create("Docs", "")).To(Succeed())
			discover()
			m.files[0].Category = "Docs"
			m.files[0].Classified = true

			choose(m, itemCategories)
			choose(m, "Rename Category")
			choose(m, "Docs")
			submit(m, "Papers")

			Expect(categories.Names()).To(Equal([]string{"Papers"}))
			Expect(m.files[0].Category).To(Equal("Papers"))
		})

		It("unassigns session files on delete after confirmation", func() {
			Expect(categories.Create("Docs", "")).To(Succeed())
			discover()
			m.files[1].Category = "Docs"
			m.files[1].Classified = true

			choose(m, itemCategories)
			choose(m, "Delete Category")
			choose(m, "Docs")
			choose(m, "No")
			Expect(categories.Names()).To(Equal([]string{"Docs"}))

			choose(m, "Delete Category")
			choose(m, "Docs")
			choose(m, "Yes")

			Expect(categories.Names()).To(BeEmpty())
			Expect(m.files[1].Classified).To(BeFalse())
			Expect(m.files[1].Category).To(BeEmpty())
		})

		It("lists categories", func() {
			Expect(categories.Create("Docs", "Documents")).To(Succeed())
			choose(m, itemCategories)
			choose(m, "View Categories")

			Expect(m.screen).To(Equal(screenListing))
			Expect(m.View()).To(ContainSubstring("Documents"))

			press(m, "x")
			Expect(m.menu.title).To(Equal("Category Management"))
		})
	})

	Describe("classification", func() {
		It("needs files and categories", func() {
			choose(m, itemClassify)
			Expect(statusTexts(m)).To(ConsistOf("No files discovered yet."))

			discover()
			choose(m, itemClassify)
			Expect(statusTexts(m)).To(ConsistOf("No categories available. Please create categories first."))
		})

		It("assigns the selected files", func() {
			Expect(categories.Create("Docs", "")).To(Succeed())
			Expect(categories.Create("Notes", "")).To(Succeed())
			discover()

			choose(m, itemClassify)
			Expect(m.prompt.body).To(ContainSubstring("a.txt"))

			submit(m, "1,3")
			choose(m, "Notes")

			Expect(statusTexts(m)).To(ConsistOf(shared.CheckMark + "2 file(s) classified to 'Notes'"))
			Expect(m.files[0].Category).To(Equal("Notes"))
			Expect(m.files[1].Classified).To(BeFalse())
			Expect(m.files[2].Category).To(Equal("Notes"))

			// Only b.txt is left to classify, so index 1 now means b.txt
			choose(m, itemClassify)
			submit(m, "1")
			choose(m, "Docs")
			Expect(m.files[1].Category).To(Equal("Docs"))

			choose(m, itemClassify)
			Expect(statusTexts(m)).To(ConsistOf("All files are already classified."))
		})

		It("rejects a selection with no valid index", func() {
			Expect(categories.Create("Docs", "")).To(Succeed())
			discover()

			choose(m, itemClassify)
			submit(m, "9,abc")

			Expect(statusTexts(m)).To(ConsistOf("Invalid selection."))
			Expect(m.pending).To(BeNil())
		})
	})

	Describe("copying", func() {
		It("needs an output folder and classified files", func() {
			choose(m, itemCopy)
			Expect(statusTexts(m)).To(ConsistOf("Output folder not set. Please select an output folder first."))

			Expect(folders.SetOutputFolder("/out")).To(Succeed())
			choose(m, itemCopy)
			Expect(statusTexts(m)).To(ConsistOf("No classified files to copy."))
		})

		It("copies classified files and drops them from the session", func() {
			Expect(categories.Create("Docs", "")).To(Succeed())
			discover()

			choose(m, itemOutputFolder)
			submit(m, "/out")
			Expect(statusTexts(m)).To(ConsistOf(shared.CheckMark + "Output folder set to: /out"))

			choose(m, itemClassify)
			submit(m, "1-2")
			choose(m, "Docs")

			drain(m, choose(m, itemCopy))

			Expect(m.screen).To(Equal(screenResult))
			Expect(m.result.FilesCopied).To(Equal(2))
			Expect(m.bridge).To(BeNil())
			Expect(m.Files()).To(HaveLen(1))
			Expect(m.Files()[0].Name).To(Equal("c.md"))
			Expect(mfs.Exists("/out/Docs/a.txt")).To(BeTrue())
			Expect(mfs.Exists("/out/Docs/b.txt")).To(BeTrue())
			Expect(tracker.IsTracked("/src/a.txt")).To(BeTrue())
			Expect(m.View()).To(ContainSubstring("Remaining files in list: 1"))

			press(m, "enter")
			Expect(m.screen).To(Equal(screenMenu))
			Expect(m.result).To(BeNil())
		})

		It("keeps failed files in the session", func() {
			Expect(categories.Create("Docs", "")).To(Succeed())
			discover()
			Expect(folders.SetOutputFolder("/out")).To(Succeed())
			mfs.FailOn(filesystem.OpOpen, "/src/a.txt", os.ErrPermission)

			choose(m, itemClassify)
			submit(m, "1-2")
			choose(m, "Docs")
			drain(m, choose(m, itemCopy))

			Expect(m.result.FilesCopied).To(Equal(1))
			Expect(m.result.Errors).To(HaveLen(1))
			Expect(m.Files()).To(HaveLen(2))
			Expect(m.View()).To(ContainSubstring("permission denied"))
		})

		It("tracks progress while the bridge is open", func() {
			m.bridge = shared.NewProgressBridge()
			m.screen = screenBusy

			cmd := m.onCopyProgress(shared.CopyProgressMsg{Progress: copier.Progress{Current: 1, Total: 4, Message: "Copied: a.txt"}})

			Expect(cmd).NotTo(BeNil())
			Expect(m.copyCurrent).To(Equal(1))
			Expect(m.copyTotal).To(Equal(4))
			Expect(m.View()).To(ContainSubstring("Copied: a.txt"))

			m.bridge = nil
			Expect(m.onCopyProgress(shared.CopyProgressMsg{})).To(BeNil())
		})
	})

	Describe("path completion", func() {
		It("completes directories only", func() {
			root := GinkgoT().TempDir()
			Expect(os.MkdirAll(filepath.Join(root, "photos"), 0o750)).To(Succeed())
			Expect(os.MkdirAll(filepath.Join(root, "photos-old"), 0o750)).To(Succeed())
			Expect(os.MkdirAll(filepath.Join(root, ".hidden"), 0o750)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(root, "photo.txt"), []byte("x"), 0o600)).To(Succeed())

			sep := string(filepath.Separator)

			Expect(getDirCompletions(filepath.Join(root, "ph"))).To(Equal([]string{
				filepath.Join(root, "photos") + sep,
				filepath.Join(root, "photos-old") + sep,
			}))
			Expect(getDirCompletions(root + sep)).To(HaveLen(2))
			Expect(getDirCompletions(filepath.Join(root, ".h"))).To(Equal([]string{filepath.Join(root, ".hidden") + sep}))
			Expect(getDirCompletions(filepath.Join(root, "missing", "x"))).To(BeEmpty())
		})

		It("fills in the common prefix on tab", func() {
			root := GinkgoT().TempDir()
			Expect(os.MkdirAll(filepath.Join(root, "photos"), 0o750)).To(Succeed())
			Expect(os.MkdirAll(filepath.Join(root, "photos-old"), 0o750)).To(Succeed())

			choose(m, itemOutputFolder)
			m.prompt.input.SetValue(filepath.Join(root, "ph"))
			press(m, "tab")

			Expect(m.prompt.input.Value()).To(Equal(filepath.Join(root, "photos")))
			Expect(m.prompt.completions).To(HaveLen(2))
		})

		It("finds common prefixes", func() {
			Expect(findCommonPrefix(nil)).To(BeEmpty())
			Expect(findCommonPrefix([]string{"/a/b/"})).To(Equal("/a/b/"))
			Expect(findCommonPrefix([]string{"/a/bc/", "/a/bd/"})).To(Equal("/a/b"))
			Expect(findCommonPrefix([]string{"x", "y"})).To(BeEmpty())
		})
	})
})

func TestTUI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "TUI Suite")
}
