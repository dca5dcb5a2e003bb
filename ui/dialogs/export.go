package dialogs

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"terrain-composer/internal/app"
	"terrain-composer/internal/logger"
	"terrain-composer/internal/tiles"
)

// ExportDialog collects export parameters and runs the canvas export on
// a background goroutine.
type ExportDialog struct {
	state  *app.State
	window fyne.Window

	nameEntry    *widget.Entry
	maxResEntry  *widget.Entry
	featherEntry *widget.Entry
	status       *widget.Label
	exportBtn    *widget.Button

	dlg dialog.Dialog
}

// ShowExport opens the canvas export dialog.
func ShowExport(win fyne.Window, st *app.State) {
	if st.Project == nil {
		dialog.ShowError(fmt.Errorf("open a project first"), win)
		return
	}
	if st.Project.Canvas.Len() == 0 {
		dialog.ShowError(fmt.Errorf("the canvas is empty"), win)
		return
	}

	d := &ExportDialog{state: st, window: win}
	d.nameEntry = widget.NewEntry()
	d.nameEntry.SetText("export")
	d.maxResEntry = widget.NewEntry()
	d.maxResEntry.SetText(strconv.Itoa(st.Config.Export.MaxResolution))
	d.featherEntry = widget.NewEntry()
	d.featherEntry.SetText(strconv.Itoa(st.Config.Export.DefaultFeatherPx))
	d.status = widget.NewLabel("")
	d.exportBtn = widget.NewButton("Export", d.onExport)

	form := widget.NewForm(
		widget.NewFormItem("Export name", d.nameEntry),
		widget.NewFormItem("Max resolution", d.maxResEntry),
		widget.NewFormItem("Edge feather (px)", d.featherEntry),
	)
	content := container.NewVBox(form, d.exportBtn, d.status)

	d.dlg = dialog.NewCustom("Export Canvas", "Close", content, win)
	d.dlg.Resize(fyne.NewSize(420, 280))
	d.dlg.Show()
}

func (d *ExportDialog) onExport() {
	name := d.nameEntry.Text
	if name == "" {
		d.status.SetText("Enter an export name.")
		return
	}
	maxRes, err := strconv.Atoi(d.maxResEntry.Text)
	if err != nil || maxRes < 1 {
		d.status.SetText("Invalid max resolution.")
		return
	}
	feather, err := strconv.Atoi(d.featherEntry.Text)
	if err != nil || feather < 0 {
		d.status.SetText("Invalid edge feather.")
		return
	}

	d.exportBtn.Disable()
	d.status.SetText("Composing and writing rasters...")

	go func() {
		dir, err := tiles.ExportCanvas(d.state.Project, name, maxRes, feather)
		if err != nil {
			logger.Error("export failed", zap.String("name", name), zap.Error(err))
			d.exportBtn.Enable()
			d.status.SetText("Export failed: " + err.Error())
			return
		}

		d.exportBtn.Enable()
		d.status.SetText("Exported to " + dir)
		d.state.Emit(app.EventExportFinished, dir)
	}()
}
