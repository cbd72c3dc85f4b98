package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rs/zerolog"
	"golang.org/x/term" //nolint:depguard // Required for TTY detection

	"github.com/joe/tidy-files/internal/appconfig"
	"github.com/joe/tidy-files/internal/category"
	"github.com/joe/tidy-files/internal/config"
	"github.com/joe/tidy-files/internal/copier"
	"github.com/joe/tidy-files/internal/discovery"
	"github.com/joe/tidy-files/internal/tracking"
	"github.com/joe/tidy-files/internal/tui"
	"github.com/joe/tidy-files/internal/tui/shared"
	"github.com/joe/tidy-files/pkg/filesystem"
)

// app holds the loaded stores shared by every subcommand.
type app struct {
	cfg        *config.Config
	fsys       filesystem.FileSystem
	log        zerolog.Logger
	tracker    *tracking.Store
	categories *category.Store
	folders    *appconfig.Store
}

func newApp(cfg *config.Config, fsys filesystem.FileSystem, log zerolog.Logger) *app {
	a := &app{
		cfg:        cfg,
		fsys:       fsys,
		log:        log,
		tracker:    tracking.NewStore(cfg.TrackingFile(), log),
		categories: category.NewStore(cfg.CategoriesFile(), log),
		folders:    appconfig.NewStore(cfg.AppConfigFile(), fsys, log),
	}

	a.tracker.Load()
	a.categories.Load()
	a.folders.Load()

	return a
}

// openLog opens the log file under the data directory. Batch subcommands
// also get human-readable log lines on stderr.
func openLog(cfg *config.Config, console bool) (zerolog.Logger, func(), error) {
	path := cfg.LogFile()

	err := os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec // path under the data dir
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
	}

	var out io.Writer = file
	if console {
		out = zerolog.MultiLevelWriter(file, zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log := zerolog.New(out).Level(cfg.Resolved.Level()).With().Timestamp().Logger()

	return log, func() { _ = file.Close() }, nil
}

func (a *app) dispatch(out io.Writer) error {
	a.log.Debug().Str("command", a.cfg.Command()).Str("data_dir", a.cfg.DataDir).Msg("starting")

	switch a.cfg.Command() {
	case config.CommandTracked:
		return a.listTracked(out, a.cfg.Tracked.Category)
	case config.CommandForget:
		return a.forget(out, a.cfg.Forget.Paths)
	case config.CommandResetTracking:
		return a.resetTracking(out)
	default:
		return a.runMenu()
	}
}

func (a *app) runMenu() error {
	copyEngine := copier.NewEngine(a.fsys, a.tracker, a.log)
	copyEngine.SaveTracking = true

	deps := tui.Deps{
		Discovery:  discovery.NewEngine(a.fsys, a.tracker, a.log),
		Copier:     copyEngine,
		Categories: a.categories,
		Folders:    a.folders,
		Settings:   a.cfg.Resolved,
		Log:        a.log,
	}

	// Only use alt screen if stdout is a TTY
	var opts []tea.ProgramOption
	if term.IsTerminal(int(os.Stdout.Fd())) {
		opts = append(opts, tea.WithAltScreen())
	}

	m, err := tui.Run(deps, opts...)
	if err != nil {
		return err //nolint:wrapcheck // already wrapped by tui.Run
	}

	a.log.Info().Int("files_left", len(m.Files())).Msg("menu closed")

	return a.tracker.Save() //nolint:wrapcheck // store errors name the file
}

// listTracked prints the tracking records, optionally only one category.
func (a *app) listTracked(out io.Writer, categoryName string) error {
	rows := [][]string{}

	for _, record := range a.tracker.Records() {
		if categoryName != "" && !strings.EqualFold(record.Category, categoryName) {
			continue
		}

		rows = append(rows, []string{
			record.SourceFilePath,
			record.DestinationFilePath,
			record.Category,
			record.CopiedAt.Local().Format("2006-01-02 15:04"),
		})
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintln(out, "No tracked files.")
		return err //nolint:wrapcheck // terminal write
	}

	t := table.New().
		Headers("Source", "Destination", "Category", "Copied").
		Rows(rows...)

	_, err := fmt.Fprintf(out, "%s\n%d tracked file(s)\n", t.Render(), len(rows))

	return err //nolint:wrapcheck // terminal write
}

// forget removes the tracking records of paths so they are discovered again.
func (a *app) forget(out io.Writer, paths []string) error {
	removed := 0

	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}

		if a.tracker.Remove(abs) || (abs != path && a.tracker.Remove(path)) {
			removed++
			fmt.Fprintf(out, "%sforgot %s\n", shared.CheckMark, abs)

			continue
		}

		a.log.Warn().Str("path", path).Msg("path is not tracked")
		fmt.Fprintf(out, "%snot tracked: %s\n", shared.CrossMark, path)
	}

	if removed == 0 {
		return nil
	}

	return a.tracker.Save() //nolint:wrapcheck // store errors name the file
}

// resetTracking forgets every tracked file.
func (a *app) resetTracking(out io.Writer) error {
	count := a.tracker.Len()
	a.tracker.Clear()

	err := a.tracker.Save()
	if err != nil {
		return err //nolint:wrapcheck // store errors name the file
	}

	a.log.Info().Int("records", count).Msg("tracking reset")
	_, err = fmt.Fprintf(out, "%sforgot %d tracked file(s)\n", shared.CheckMark, count)

	return err //nolint:wrapcheck // terminal write
}
