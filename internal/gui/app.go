//go:build !nogui

package gui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"filecat/internal/config"
	serr "filecat/internal/errors"
	"filecat/internal/log"
	"filecat/internal/organize"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize"
)

// tallyRows caps the type summary in the result window
const tallyRows = 10

// App is the GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	cfg        *config.Config
	engine     organize.Organizer

	progressLabel *widget.Label
	progressBar   *widget.ProgressBarInfinite
	startButton   *widget.Button

	mu      sync.Mutex
	running bool
}

// NewApp creates a new GUI application
func NewApp(cfg *config.Config, engine organize.Organizer) *App {
	return newApp(app.NewWithID("io.github.filecat"), cfg, engine)
}

func newApp(fyneApp fyne.App, cfg *config.Config, engine organize.Organizer) *App {
	if cfg == nil {
		cfg = config.New()
	}
	if engine == nil {
		engine = organize.NewOrganizer(cfg)
	}

	if iconPath := findIcon(); iconPath != "" {
		if appIcon, err := fyne.LoadResourceFromPath(iconPath); err == nil {
			fyneApp.SetIcon(appIcon)
		} else {
			log.Warnf("Could not load app icon from %s: %v", iconPath, err)
		}
	}

	a := &App{
		fyneApp: fyneApp,
		cfg:     cfg,
		engine:  engine,
	}
	a.mainWindow = fyneApp.NewWindow("File Catalog")
	a.setupMainWindow()

	engine.OnStage(func(s organize.Stage) {
		a.progressLabel.SetText(s.String() + "…")
	})

	return a
}

func findIcon() string {
	for _, p := range []string{"icon.png", filepath.Join("internal", "gui", "icon.png")} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// GetMainWindow returns the main window instance
func (a *App) GetMainWindow() fyne.Window {
	return a.mainWindow
}

// Run starts the GUI application
func (a *App) Run() {
	a.mainWindow.Show()
	a.fyneApp.Run()
}

func (a *App) setupMainWindow() {
	title := widget.NewLabelWithStyle("File Catalog", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	intro := widget.NewLabel("Choose a folder to list every file in it by type.\n" +
		"The list is saved next to the folder, then summarised.")
	intro.Wrapping = fyne.TextWrapWord

	a.progressLabel = widget.NewLabel("Ready")
	a.progressBar = widget.NewProgressBarInfinite()
	a.progressBar.Stop()
	a.progressBar.Hide()

	a.startButton = widget.NewButtonWithIcon("Choose Folder & Start", theme.FolderOpenIcon(), a.chooseFolder)
	a.startButton.Importance = widget.HighImportance

	a.mainWindow.SetContent(container.NewBorder(
		container.NewVBox(title, intro),
		container.NewVBox(a.progressBar, a.progressLabel),
		nil, nil,
		container.NewCenter(a.startButton),
	))
	a.mainWindow.Resize(fyne.NewSize(520, 260))
}

func (a *App) chooseFolder() {
	dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			a.ShowError("Folder selection failed", err)
			return
		}
		if uri == nil {
			return
		}
		a.StartScan(uri.Path())
	}, a.mainWindow).Show()
}

// StartScan runs the pipeline over root in the background. The returned
// channel closes once the outcome has been presented; it is nil when a run
// is already in progress.
func (a *App) StartScan(root string) <-chan struct{} {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		a.ShowInfo("A scan is already running.")
		return nil
	}
	a.running = true
	a.mu.Unlock()

	a.startButton.Disable()
	a.progressBar.Show()
	a.progressBar.Start()
	a.progressLabel.SetText("Scanning " + root + "…")

	done := make(chan struct{})
	go func() {
		defer close(done)
		result, err := a.engine.Run(context.Background(), root)

		a.mu.Lock()
		a.running = false
		a.mu.Unlock()

		a.progressBar.Stop()
		a.progressBar.Hide()
		a.startButton.Enable()
		a.presentOutcome(result, err)
	}()
	return done
}

// presentOutcome shows the result window, a failure dialog, or both when the
// inventory was exported but summarising failed.
func (a *App) presentOutcome(result *organize.Result, err error) {
	if err == nil {
		a.progressLabel.SetText(fmt.Sprintf("Done: %s files", humanize.Comma(int64(len(result.Records)))))
		a.showResult(result)
		return
	}

	n := describeFailure(err)
	a.progressLabel.SetText(n.title)
	if n.info {
		dialog.ShowInformation(n.title, n.message, a.mainWindow)
	} else {
		dialog.ShowError(fmt.Errorf("%s", n.message), a.mainWindow)
	}
	log.LogError(err, n.title)

	if result != nil && result.ExportPath != "" {
		a.showResult(result)
	}
}

// showResult opens a window listing the tally, output paths and narrative
func (a *App) showResult(result *organize.Result) fyne.Window {
	w := a.fyneApp.NewWindow("Summary: " + filepath.Base(result.Root))

	header := widget.NewLabelWithStyle(
		fmt.Sprintf("%s files inventoried", humanize.Comma(int64(len(result.Records)))),
		fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	var tally strings.Builder
	for i, tc := range result.Tally {
		if i == tallyRows {
			fmt.Fprintf(&tally, "… %d more types", len(result.Tally)-tallyRows)
			break
		}
		fmt.Fprintf(&tally, "%s: %s\n", tc.FileType, humanize.Comma(int64(tc.Count)))
	}

	top := container.NewVBox(header, widget.NewLabel(strings.TrimRight(tally.String(), "\n")))
	if result.ExportPath != "" {
		top.Add(widget.NewLabel("Inventory: " + result.ExportPath))
	}
	if result.NarrativePath != "" {
		top.Add(widget.NewLabel("Narrative: " + result.NarrativePath))
	}
	if result.HTMLPath != "" {
		top.Add(widget.NewLabel("HTML: " + result.HTMLPath))
	}

	var center fyne.CanvasObject = widget.NewLabel("No summary was written.")
	if result.Narrative != "" {
		narrative := widget.NewMultiLineEntry()
		narrative.Wrapping = fyne.TextWrapWord
		narrative.SetText(result.Narrative)
		narrative.Disable()
		center = narrative
	}

	closeButton := widget.NewButton("Close", w.Close)
	w.SetContent(container.NewBorder(top, container.NewHBox(closeButton), nil, nil, center))
	w.Resize(fyne.NewSize(640, 520))
	w.Show()
	return w
}

// ShowError displays an error dialog
func (a *App) ShowError(title string, err error) {
	if err == nil {
		return
	}
	log.Errorf("%s: %v", title, err)
	dialog.ShowError(fmt.Errorf("%s: %w", title, err), a.mainWindow)
}

// ShowInfo displays an information dialog
func (a *App) ShowInfo(message string) {
	dialog.ShowInformation("Information", message, a.mainWindow)
}

type notice struct {
	title   string
	message string
	info    bool
}

// describeFailure picks the dialog for a failed run
func describeFailure(err error) notice {
	var empty *serr.EmptyResultError
	var remote *serr.RemoteError
	switch {
	case serr.As(err, &empty):
		return notice{title: "No Files Found", message: "No files found in " + empty.Root() + ".", info: true}
	case serr.IsInvalidInputError(err):
		return notice{title: "Invalid Folder", message: err.Error()}
	case serr.As(err, &remote):
		return notice{title: "Summary Failed", message: err.Error() + "\nThe inventory was still exported."}
	case serr.IsConfigNotSet(err):
		return notice{title: "Missing Setting", message: err.Error()}
	default:
		return notice{title: "Error", message: err.Error()}
	}
}
