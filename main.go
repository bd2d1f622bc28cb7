// Package main provides the entry point for the Live Spectrum application.
package main

import (
	"log"
	"os"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"

	"live-spectrum/internal/app"
	"live-spectrum/internal/version"
	"live-spectrum/ui/mainwindow"
	"live-spectrum/ui/prefs"
	"live-spectrum/ui/settings"
)

const appTitle = "Live Spectrum"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	fyneApp := fyneapp.NewWithID("live-spectrum")

	appPrefs := prefs.Load()
	appSettings := settings.Load(appPrefs)

	win := mainwindow.New(fyneApp, appPrefs, appSettings)

	// Command line image takes priority over the last session's image.
	if len(os.Args) > 1 {
		if err := win.OpenImage(os.Args[1]); err != nil {
			log.Printf("Failed to open %s: %v", os.Args[1], err)
		}
	} else {
		win.RestoreLastImage()
	}

	setupHotReload(win)

	win.ShowAndRun()
}

// setupHotReload configures automatic restart detection when the binary is
// recompiled.
func setupHotReload(win *mainwindow.MainWindow) {
	reloader := app.NewHotReloader(2 * time.Second)
	if reloader == nil {
		log.Println("Hot reload: unable to determine executable path")
		return
	}

	log.Printf("Hot reload: watching %s (modified %s)",
		reloader.ExecPath(), reloader.StartupTime().Format("15:04:05"))

	reloader.OnTick(func() {
		win.SavePreferences()
	})

	reloader.OnNewBinary(func() {
		log.Println("Hot reload: newer binary detected")
		fyne.Do(func() {
			dialog.ShowConfirm("New Version Available",
				"The application binary has been updated.\nRestart now?",
				func(restart bool) {
					if !restart {
						reloader.ResetBaseline()
						reloader.Start()
						return
					}
					log.Println("Hot reload: saving preferences before restart...")
					win.SavePreferences()
					log.Println("Hot reload: restarting...")
					if err := reloader.Restart(); err != nil {
						log.Printf("Hot reload: restart failed: %v", err)
					}
				}, win.Window)
		})
	})

	reloader.Start()
}
