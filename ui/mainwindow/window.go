// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"terrain-composer/internal/app"
	"terrain-composer/internal/raster"
	"terrain-composer/internal/version"
	"terrain-composer/pkg/geometry"
	"terrain-composer/ui/dialogs"
	"terrain-composer/ui/maskeditor"
	"terrain-composer/ui/panels"
	"terrain-composer/ui/prefs"
	"terrain-composer/ui/viewport"
)

const appTitle = "Terrain Composer"

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	viewport  *viewport.Viewport
	sidePanel *panels.SidePanel
	statusBar *widget.Label
	zoomLabel *widget.Label
}

// New creates the main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	w := float32(p.Float(prefs.KeyWindowWidth, 1280))
	h := float32(p.Float(prefs.KeyWindowHeight, 800))
	win.Resize(fyne.NewSize(w, h))
	return mw
}

// setupUI creates the main layout.
func (mw *MainWindow) setupUI() {
	mw.viewport = viewport.New(mw.state)
	mw.sidePanel = panels.NewSidePanel(mw.state)
	mw.sidePanel.SetWindow(mw.Window)

	mw.sidePanel.Patches.OnFetch(func() {
		dialogs.ShowFetch(mw.Window, mw.state)
	})
	mw.sidePanel.Patches.OnEditMask(func(name string) {
		maskeditor.Show(mw.Window, mw.state, name)
	})
	mw.sidePanel.Patches.OnPlace(mw.placeAtViewCenter)

	mw.viewport.OnZoomChange(func(zoom float64) {
		mw.zoomLabel.SetText(fmt.Sprintf("%.0f%%", zoom*100))
	})
	mw.viewport.OnContextMenu(mw.showContextMenu)

	mw.statusBar = widget.NewLabel("Ready")
	mw.zoomLabel = widget.NewLabel("100%")

	toolbar := container.NewHBox(
		widget.NewLabel("Zoom:"),
		widget.NewButton("-", mw.viewport.ZoomOut),
		widget.NewButton("+", mw.viewport.ZoomIn),
		widget.NewButton("Fit", mw.viewport.FitToContent),
		widget.NewButton("1:1", mw.viewport.ActualSize),
		mw.zoomLabel,
	)

	canvasArea := container.NewBorder(toolbar, nil, nil, nil, mw.viewport)

	split := container.NewHSplit(mw.sidePanel.Container(), canvasArea)
	split.SetOffset(0.25)

	content := container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil,
		nil,
		split,
	)
	mw.SetContent(content)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Project...", mw.onOpenProject),
		fyne.NewMenuItem("Save Project", mw.onSaveProject),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Fetch New Patch...", func() {
			dialogs.ShowFetch(mw.Window, mw.state)
		}),
		fyne.NewMenuItem("Export Canvas...", func() {
			dialogs.ShowExport(mw.Window, mw.state)
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.viewport.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.viewport.ZoomOut),
		fyne.NewMenuItem("Fit to Content", mw.viewport.FitToContent),
		fyne.NewMenuItem("Actual Size", mw.viewport.ActualSize),
		fyne.NewMenuItem("Reset View", mw.viewport.ResetView),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventProjectLoaded, func(data interface{}) {
		dir := mw.state.Project.Dir
		mw.SetTitle(appTitle + " - " + filepath.Base(dir))
		mw.updateStatus("Project loaded: " + dir)
		mw.prefs.SetString(prefs.KeyLastProject, dir)
	})

	mw.state.On(app.EventProjectSaved, func(interface{}) {
		mw.SetTitle(appTitle + " - " + filepath.Base(mw.state.Project.Dir))
		mw.updateStatus("Project saved")
	})

	mw.state.On(app.EventModified, func(data interface{}) {
		if modified, ok := data.(bool); ok && modified {
			title := mw.Title()
			if len(title) > 0 && title[len(title)-1] != '*' {
				mw.SetTitle(title + " *")
			}
		}
	})

	mw.state.On(app.EventExportFinished, func(data interface{}) {
		if dir, ok := data.(string); ok {
			mw.updateStatus("Exported canvas to " + dir)
		}
	})

	mw.state.On(app.EventPatchesChanged, func(interface{}) {
		mw.updateStatus(fmt.Sprintf("%d patches in library", len(mw.state.Project.Patches())))
	})

	mw.state.On(app.EventRenderModeChanged, func(data interface{}) {
		if mode, ok := data.(raster.RenderMode); ok {
			mw.prefs.SetString(prefs.KeyRenderMode, mode.String())
		}
	})
}

// SavePreferences persists window geometry and session preferences.
func (mw *MainWindow) SavePreferences() {
	size := mw.Canvas().Size()
	if size.Width > 0 && size.Height > 0 {
		mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
		mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	}
	_ = mw.prefs.Save()
}

func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// placeAtViewCenter drops a new instance of a patch at the center of the
// current view.
func (mw *MainWindow) placeAtViewCenter(patchName string) {
	view, ok := mw.state.PreviewSource().Patch(patchName)
	if !ok {
		return
	}
	pw, ph := view.Size()

	size := mw.viewport.Size()
	center := mw.viewport.View().ScreenToCanvas(geometry.Point2D{
		X: float64(size.Width) / 2,
		Y: float64(size.Height) / 2,
	})
	x := int(center.X) - pw/2
	y := int(center.Y) - ph/2

	if _, err := mw.state.PlaceInstance(patchName, x, y); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.updateStatus(fmt.Sprintf("Placed %q at (%d, %d)", patchName, x, y))
}

// showContextMenu offers placement actions for a right-clicked instance.
func (mw *MainWindow) showContextMenu(instanceID string, screen fyne.Position) {
	if instanceID == "" {
		return
	}
	mw.state.SelectInstance(instanceID)

	menu := fyne.NewMenu("",
		fyne.NewMenuItem("Raise", func() { mw.state.ReorderInstance(instanceID, true) }),
		fyne.NewMenuItem("Lower", func() { mw.state.ReorderInstance(instanceID, false) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Remove", func() { mw.state.RemoveInstance(instanceID) }),
	)
	widget.ShowPopUpMenuAtPosition(menu, mw.Canvas(), screen)
}

func (mw *MainWindow) onOpenProject() {
	fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		if openErr := mw.state.OpenProject(uri.Path()); openErr != nil {
			dialog.ShowError(openErr, mw.Window)
		}
	}, mw.Window)
	if last := mw.prefs.String(prefs.KeyLastProject); last != "" {
		if lister, err := storage.ListerForURI(storage.NewFileURI(last)); err == nil {
			fd.SetLocation(lister)
		}
	}
	fd.Show()
}

func (mw *MainWindow) onSaveProject() {
	if err := mw.state.SaveProject(); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s v%s\n\n"+
			"Compose real-world terrain tiles into game-ready heightmaps.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
