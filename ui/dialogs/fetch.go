// Package dialogs provides the fetch and export dialogs.
package dialogs

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"terrain-composer/internal/app"
	"terrain-composer/internal/logger"
	"terrain-composer/internal/tiles"
)

// fetchTimeout bounds one whole fetch: the catalog query plus every tile
// download.
const fetchTimeout = 10 * time.Minute

// FetchDialog collects a name and a WGS84 bounding box, then downloads
// and processes the patch on a background goroutine.
type FetchDialog struct {
	state  *app.State
	window fyne.Window

	nameEntry *widget.Entry
	minLon    *widget.Entry
	minLat    *widget.Entry
	maxLon    *widget.Entry
	maxLat    *widget.Entry
	status    *widget.Label
	fetchBtn  *widget.Button

	dlg dialog.Dialog
}

// ShowFetch opens the patch fetch dialog.
func ShowFetch(win fyne.Window, st *app.State) {
	if st.Project == nil {
		dialog.ShowError(fmt.Errorf("open a project first"), win)
		return
	}

	d := &FetchDialog{state: st, window: win}
	d.nameEntry = widget.NewEntry()
	d.nameEntry.SetPlaceHolder("e.g. boulder-foothills")
	d.minLon = newCoordEntry("-105.35")
	d.minLat = newCoordEntry("39.95")
	d.maxLon = newCoordEntry("-105.15")
	d.maxLat = newCoordEntry("40.10")
	d.status = widget.NewLabel("")
	d.fetchBtn = widget.NewButton("Fetch", d.onFetch)

	form := widget.NewForm(
		widget.NewFormItem("Patch name", d.nameEntry),
		widget.NewFormItem("Min longitude", d.minLon),
		widget.NewFormItem("Min latitude", d.minLat),
		widget.NewFormItem("Max longitude", d.maxLon),
		widget.NewFormItem("Max latitude", d.maxLat),
	)
	content := container.NewVBox(form, d.fetchBtn, d.status)

	d.dlg = dialog.NewCustom("Fetch Terrain Patch", "Close", content, win)
	d.dlg.Resize(fyne.NewSize(420, 360))
	d.dlg.Show()
}

func newCoordEntry(placeholder string) *widget.Entry {
	e := widget.NewEntry()
	e.SetPlaceHolder(placeholder)
	return e
}

func (d *FetchDialog) onFetch() {
	name := d.nameEntry.Text
	if name == "" {
		d.status.SetText("Enter a patch name.")
		return
	}
	if d.state.Project.HasPatch(name) {
		d.status.SetText(fmt.Sprintf("Patch %q already exists.", name))
		return
	}
	bbox, err := d.parseBBox()
	if err != nil {
		d.status.SetText(err.Error())
		return
	}

	d.fetchBtn.Disable()
	d.status.SetText("Fetching elevation and imagery...")

	cfg := d.state.Config.Fetch
	fetcher := tiles.NewFetcher(cfg)
	proc := tiles.NewProcessor(cfg)
	dir := d.state.Project.NewPatchDir(name)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		pt, err := tiles.BuildPatch(ctx, fetcher, proc, dir, name, bbox)
		if err != nil {
			logger.Error("patch fetch failed", zap.String("name", name), zap.Error(err))
			d.fetchBtn.Enable()
			d.status.SetText("Fetch failed: " + err.Error())
			return
		}

		d.state.AddPatch(pt)
		d.state.SetModified(true)
		d.fetchBtn.Enable()
		d.status.SetText(fmt.Sprintf("Fetched %q (%dx%d px).", name, pt.WidthPx, pt.HeightPx))
	}()
}

func (d *FetchDialog) parseBBox() (tiles.BBox, error) {
	parse := func(e *widget.Entry, label string) (float64, error) {
		v, err := strconv.ParseFloat(e.Text, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s", label)
		}
		return v, nil
	}

	var bbox tiles.BBox
	var err error
	if bbox.MinLon, err = parse(d.minLon, "min longitude"); err != nil {
		return bbox, err
	}
	if bbox.MinLat, err = parse(d.minLat, "min latitude"); err != nil {
		return bbox, err
	}
	if bbox.MaxLon, err = parse(d.maxLon, "max longitude"); err != nil {
		return bbox, err
	}
	if bbox.MaxLat, err = parse(d.maxLat, "max latitude"); err != nil {
		return bbox, err
	}
	if !bbox.Valid() {
		return bbox, fmt.Errorf("bounding box is empty or out of range")
	}
	return bbox, nil
}
