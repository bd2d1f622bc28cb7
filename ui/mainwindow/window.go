// Package mainwindow provides the main application window.
package mainwindow

import (
	"log"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"live-spectrum/internal/engine"
	"live-spectrum/internal/pipeline"
	"live-spectrum/internal/registry"
	"live-spectrum/internal/source"
	"live-spectrum/internal/spectrum"
	"live-spectrum/pkg/geometry"
	"live-spectrum/ui/prefs"
	"live-spectrum/ui/settings"
	"live-spectrum/ui/viewer"
)

const (
	prefKeyLastDir   = "lastDirectory"
	prefKeyLastImage = "lastImage"
)

// spectrumWindowOffset places the spectrum window to the right of the
// source window on first publication.
var spectrumWindowOffset = geometry.PointInt{X: 40, Y: 40}

// MainWindow is the primary application window: the source view plus the
// controls that attach and detach the live spectrum.
type MainWindow struct {
	fyne.Window
	app      fyne.App
	prefs    *prefs.Prefs
	settings *settings.Settings
	registry *registry.Registry

	src        *source.Source
	sourceView *viewer.SourceView
	center     *fyne.Container
	liveCheck  *widget.Check
	statusBar  *widget.Label
}

// New creates the main window and the engine registry behind it.
func New(fyneApp fyne.App, appPrefs *prefs.Prefs, appSettings *settings.Settings) *MainWindow {
	win := fyneApp.NewWindow("Live Spectrum")

	mw := &MainWindow{
		Window:   win,
		app:      fyneApp,
		prefs:    appPrefs,
		settings: appSettings,
	}
	mw.registry = registry.New(mw.buildEngine)

	mw.setupUI()
	mw.setupMenus()
	return mw
}

// buildEngine is the registry's engine factory. Each engine gets its own
// pipeline so worker hints never race between sources.
func (mw *MainWindow) buildEngine(src *source.Source, out *spectrum.Output) *engine.Engine {
	return engine.New(engine.Config{
		Source:    src,
		Output:    out,
		Pipeline:  pipeline.New(spectrum.NewPowerSpectrum(1)),
		Display:   viewer.New(mw.app, src.Name()),
		Settings:  mw.settings,
		RunOnUI:   fyne.Do,
		WindowPos: spectrumWindowOffset,
		OnComputeError: func(msg string) {
			mw.statusBar.SetText(msg)
			dialog.ShowInformation("Spectrum", msg, mw.Window)
		},
	})
}

func (mw *MainWindow) setupUI() {
	mw.statusBar = widget.NewLabel("Open an image to begin")

	mw.liveCheck = widget.NewCheck("Live spectrum", func(on bool) {
		mw.onToggleLive(on)
	})
	mw.liveCheck.Disable()

	clearBtn := widget.NewButton("Clear Region", func() {
		if mw.sourceView != nil {
			mw.sourceView.ClearRegion()
		}
	})
	settingsBtn := widget.NewButton("Settings…", func() {
		mw.settings.ShowDialog(mw.Window)
	})

	toolbar := container.NewHBox(mw.liveCheck, clearBtn, settingsBtn)
	mw.center = container.NewStack(container.NewScroll(widget.NewLabel("No image loaded")))

	content := container.NewBorder(
		toolbar,
		container.NewPadded(mw.statusBar),
		nil,
		nil,
		mw.center,
	)
	mw.SetContent(content)
	mw.Resize(fyne.NewSize(900, 700))

	mw.SetCloseIntercept(func() {
		mw.detachCurrent()
		mw.SavePreferences()
		mw.app.Quit()
	})
}

func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mw.onOpenImage),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)
	processMenu := fyne.NewMenu("Process",
		fyne.NewMenuItem("Recompute Now", mw.onRecompute),
		fyne.NewMenuItem("Clear Region", func() {
			if mw.sourceView != nil {
				mw.sourceView.ClearRegion()
			}
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Settings...", func() { mw.settings.ShowDialog(mw.Window) }),
	)
	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, processMenu))
}

// RestoreLastImage reopens the image from the previous session, if any.
func (mw *MainWindow) RestoreLastImage() {
	path := mw.prefs.String(prefKeyLastImage, "")
	if path == "" {
		return
	}
	if err := mw.OpenImage(path); err != nil {
		log.Printf("Could not restore %s: %v", path, err)
	}
}

// OpenImage loads the image at path and makes it the active source.
func (mw *MainWindow) OpenImage(path string) error {
	src, err := source.LoadFile(path)
	if err != nil {
		return err
	}

	mw.detachCurrent()
	mw.src = src
	mw.sourceView = viewer.NewSourceView(src)

	mw.SetTitle("Live Spectrum - " + src.Name())
	mw.center.Objects = []fyne.CanvasObject{container.NewScroll(mw.sourceView)}
	mw.center.Refresh()

	mw.liveCheck.Enable()
	mw.liveCheck.SetChecked(true)
	w, h := src.Bounds()
	mw.statusBar.SetText(src.Name())
	log.Printf("Opened %s (%dx%d)", path, w, h)

	mw.prefs.SetString(prefKeyLastImage, path)
	mw.prefs.SetString(prefKeyLastDir, filepath.Dir(path))
	return nil
}

func (mw *MainWindow) onOpenImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		if err := mw.OpenImage(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".tif", ".tiff"}))

	if dir := mw.prefs.String(prefKeyLastDir, ""); dir != "" {
		if uri, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
			fd.SetLocation(uri)
		}
	}
	fd.Show()
}

// onToggleLive attaches or detaches the live spectrum for the active source.
func (mw *MainWindow) onToggleLive(on bool) {
	if mw.src == nil {
		return
	}
	if !on {
		mw.registry.Detach(mw.src)
		mw.statusBar.SetText("Live spectrum off")
		return
	}
	eng := mw.registry.AttachOrReset(mw.src)
	eng.Start()
	eng.RequestUpdate()
	mw.statusBar.SetText("Live spectrum on")
}

func (mw *MainWindow) onRecompute() {
	if mw.src == nil {
		return
	}
	mw.src.MarkMutated()
}

func (mw *MainWindow) detachCurrent() {
	if mw.src == nil {
		return
	}
	mw.src.SetVisible(false)
	mw.registry.Detach(mw.src)
	mw.src = nil
	mw.sourceView = nil
	mw.liveCheck.SetChecked(false)
	mw.liveCheck.Disable()
}

// SavePreferences flushes preferences to disk.
func (mw *MainWindow) SavePreferences() {
	if err := mw.prefs.Save(); err != nil {
		log.Printf("Failed to save preferences: %v", err)
	}
}
