// Package panels provides the side panel widgets.
package panels

import (
	"fmt"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"terrain-composer/internal/app"
)

// PatchesPanel lists the project's patch library with thumbnails and the
// per-patch actions.
type PatchesPanel struct {
	state  *app.State
	window fyne.Window

	list     *widget.List
	names    []string
	selected int

	onEditMask func(patchName string)
	onFetch    func()
	onPlace    func(patchName string)
}

// NewPatchesPanel creates the patch library panel.
func NewPatchesPanel(st *app.State) *PatchesPanel {
	p := &PatchesPanel{state: st, selected: -1}
	p.list = widget.NewList(
		func() int { return len(p.names) },
		func() fyne.CanvasObject {
			thumb := fynecanvas.NewImageFromImage(nil)
			thumb.FillMode = fynecanvas.ImageFillContain
			thumb.SetMinSize(fyne.NewSize(48, 48))
			name := widget.NewLabel("patch")
			name.TextStyle.Bold = true
			dims := widget.NewLabel("")
			return container.NewBorder(nil, nil, thumb, nil,
				container.NewVBox(name, dims))
		},
		func(i widget.ListItemID, obj fyne.CanvasObject) {
			p.updateItem(i, obj)
		},
	)
	p.list.OnSelected = func(i widget.ListItemID) { p.selected = i }
	p.list.OnUnselected = func(widget.ListItemID) { p.selected = -1 }

	st.On(app.EventPatchesChanged, func(interface{}) { p.Reload() })
	st.On(app.EventProjectLoaded, func(interface{}) { p.Reload() })
	st.On(app.EventMaskChanged, func(interface{}) { p.list.Refresh() })
	return p
}

// SetWindow sets the parent window for dialogs.
func (p *PatchesPanel) SetWindow(win fyne.Window) {
	p.window = win
}

// OnFetch sets the callback for the fetch button.
func (p *PatchesPanel) OnFetch(callback func()) {
	p.onFetch = callback
}

// OnEditMask sets the callback for the edit-mask button.
func (p *PatchesPanel) OnEditMask(callback func(patchName string)) {
	p.onEditMask = callback
}

// OnPlace sets the callback for the place button.
func (p *PatchesPanel) OnPlace(callback func(patchName string)) {
	p.onPlace = callback
}

// Container returns the panel's root object.
func (p *PatchesPanel) Container() fyne.CanvasObject {
	fetchBtn := widget.NewButton("Fetch New Patch...", func() {
		if p.onFetch != nil {
			p.onFetch()
		}
	})
	placeBtn := widget.NewButton("Place on Canvas", func() {
		if name, ok := p.selectedName(); ok && p.onPlace != nil {
			p.onPlace(name)
		}
	})
	maskBtn := widget.NewButton("Edit Mask...", func() {
		if name, ok := p.selectedName(); ok && p.onEditMask != nil {
			p.onEditMask(name)
		}
	})
	deleteBtn := widget.NewButton("Delete Patch", func() {
		p.confirmDelete()
	})

	buttons := container.NewVBox(fetchBtn, placeBtn, maskBtn, deleteBtn)
	return container.NewBorder(nil, buttons, nil, nil, p.list)
}

// Reload refreshes the panel from the project's patch library.
func (p *PatchesPanel) Reload() {
	p.names = p.names[:0]
	if p.state.Project != nil {
		for _, pt := range p.state.Project.Patches() {
			p.names = append(p.names, pt.Name)
		}
	}
	p.selected = -1
	p.list.UnselectAll()
	p.list.Refresh()
}

func (p *PatchesPanel) selectedName() (string, bool) {
	if p.selected < 0 || p.selected >= len(p.names) {
		return "", false
	}
	return p.names[p.selected], true
}

func (p *PatchesPanel) updateItem(i widget.ListItemID, obj fyne.CanvasObject) {
	if i >= len(p.names) {
		return
	}
	name := p.names[i]
	border := obj.(*fyne.Container)

	var thumb *fynecanvas.Image
	var labels *fyne.Container
	for _, child := range border.Objects {
		switch c := child.(type) {
		case *fynecanvas.Image:
			thumb = c
		case *fyne.Container:
			labels = c
		}
	}

	thumb.Image = p.state.PreviewSource().Thumb(name)
	thumb.Refresh()

	labels.Objects[0].(*widget.Label).SetText(name)
	dims := labels.Objects[1].(*widget.Label)
	if pt, ok := p.state.Project.Patch(name); ok {
		text := fmt.Sprintf("%dx%d px", pt.WidthPx, pt.HeightPx)
		if pt.MaskFeatherPx > 0 {
			text += fmt.Sprintf(", feather %d", pt.MaskFeatherPx)
		}
		dims.SetText(text)
	}
}

func (p *PatchesPanel) confirmDelete() {
	name, ok := p.selectedName()
	if !ok {
		return
	}
	dialog.ShowConfirm("Delete Patch",
		fmt.Sprintf("Delete %q and all of its placements?\nThe downloaded data is removed from disk.", name),
		func(yes bool) {
			if !yes {
				return
			}
			if err := p.state.DeletePatch(name); err != nil {
				dialog.ShowError(err, p.window)
			}
		},
		p.window)
}
