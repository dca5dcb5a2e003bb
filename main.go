// Package main provides the entry point for the Terrain Composer GUI.
package main

import (
	"os"
	"time"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"go.uber.org/zap"

	"terrain-composer/internal/app"
	"terrain-composer/internal/config"
	"terrain-composer/internal/logger"
	"terrain-composer/internal/raster"
	"terrain-composer/internal/version"
	"terrain-composer/ui/mainwindow"
	"terrain-composer/ui/prefs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Info("starting terrain composer",
		zap.String("version", version.Version),
		zap.String("commit", version.GitCommit))

	fyneApp := fyneapp.NewWithID("terrain-composer")
	fyneApp.Settings().SetTheme(&app.ComposerTheme{})

	state := app.NewState(cfg)
	appPrefs := prefs.Load()
	if appPrefs.String(prefs.KeyRenderMode) == raster.ModeFlat.String() {
		state.SetRenderMode(raster.ModeFlat)
	}

	win := mainwindow.New(fyneApp, state, appPrefs)

	// Open a project from the command line, else the last one used.
	projectDir := appPrefs.String(prefs.KeyLastProject)
	if len(os.Args) > 1 {
		projectDir = os.Args[1]
	}
	if projectDir != "" {
		if err := state.OpenProject(projectDir); err != nil {
			logger.Warn("could not open project",
				zap.String("dir", projectDir), zap.Error(err))
		}
	}

	setupHotReload(win)

	win.SetOnClosed(func() {
		win.SavePreferences()
	})
	win.ShowAndRun()
}

// setupHotReload restarts the application when a newer binary appears.
func setupHotReload(win *mainwindow.MainWindow) {
	reloader := app.NewHotReloader(2 * time.Second)
	if reloader == nil {
		logger.Warn("hot reload disabled: executable path unknown")
		return
	}

	reloader.OnNewBinary(func() {
		dialog.ShowConfirm("New Version Available",
			"The application binary has been updated.\nRestart now?",
			func(restart bool) {
				if !restart {
					reloader.ResetBaseline()
					reloader.Start()
					return
				}
				win.SavePreferences()
				logger.Info("restarting into new binary")
				if err := reloader.Restart(); err != nil {
					logger.Error("restart failed", zap.Error(err))
				}
			},
			win.Window)
	})
	reloader.Start()
}
