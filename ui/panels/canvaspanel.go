package panels

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"terrain-composer/internal/app"
	"terrain-composer/internal/compose"
	"terrain-composer/internal/raster"
)

// CanvasPanel shows the placement stack, the selected instance's
// transform controls, and the global terrain settings.
type CanvasPanel struct {
	state *app.State

	list *widget.List
	// instances holds the stack topmost-first, matching the list order.
	instances []compose.Instance

	scaleXY  *widget.Slider
	scaleLb  *widget.Label
	scaleZ   *widget.Entry
	modeSel  *widget.RadioGroup
	spacing  *widget.Entry
	heightOf *widget.Entry

	// syncing suppresses control callbacks while they are being set
	// programmatically.
	syncing bool
}

// NewCanvasPanel creates the canvas placement panel.
func NewCanvasPanel(st *app.State) *CanvasPanel {
	p := &CanvasPanel{state: st}
	p.list = widget.NewList(
		func() int { return len(p.instances) },
		func() fyne.CanvasObject {
			name := widget.NewLabel("patch")
			name.TextStyle.Bold = true
			pos := widget.NewLabel("")
			return container.NewVBox(name, pos)
		},
		func(i widget.ListItemID, obj fyne.CanvasObject) {
			if i >= len(p.instances) {
				return
			}
			inst := p.instances[i]
			box := obj.(*fyne.Container)
			box.Objects[0].(*widget.Label).SetText(inst.PatchName)
			box.Objects[1].(*widget.Label).SetText(
				fmt.Sprintf("(%d, %d)  xy %.2f  z %.2f",
					inst.CanvasX, inst.CanvasY, inst.ScaleXY, inst.ScaleZ))
		},
	)
	p.list.OnSelected = func(i widget.ListItemID) {
		if p.syncing || i >= len(p.instances) {
			return
		}
		st.SelectInstance(p.instances[i].ID)
	}
	p.list.OnUnselected = func(widget.ListItemID) {
		if !p.syncing {
			st.SelectInstance("")
		}
	}

	st.On(app.EventCanvasChanged, func(interface{}) { p.Reload() })
	st.On(app.EventProjectLoaded, func(interface{}) { p.Reload() })
	st.On(app.EventSelectionChanged, func(interface{}) { p.syncSelection() })
	st.On(app.EventRenderModeChanged, func(interface{}) { p.syncMode() })
	return p
}

// Container returns the panel's root object.
func (p *CanvasPanel) Container() fyne.CanvasObject {
	raiseBtn := widget.NewButton("Raise", func() { p.reorder(true) })
	lowerBtn := widget.NewButton("Lower", func() { p.reorder(false) })
	removeBtn := widget.NewButton("Remove", func() {
		if id := p.state.SelectedInstance; id != "" {
			p.state.RemoveInstance(id)
		}
	})
	zOrder := container.NewGridWithColumns(3, raiseBtn, lowerBtn, removeBtn)

	p.scaleLb = widget.NewLabel("1.00x")
	p.scaleXY = widget.NewSlider(0.05, 8.0)
	p.scaleXY.Step = 0.05
	p.scaleXY.SetValue(1.0)
	p.scaleXY.OnChanged = func(v float64) {
		p.scaleLb.SetText(fmt.Sprintf("%.2fx", v))
		if p.syncing {
			return
		}
		if inst, ok := p.selectedInstance(); ok {
			p.state.RescaleInstance(inst.ID, v, inst.ScaleZ)
		}
	}

	p.scaleZ = widget.NewEntry()
	p.scaleZ.SetText("1.00")
	p.scaleZ.OnSubmitted = func(text string) {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return
		}
		if inst, ok := p.selectedInstance(); ok {
			p.state.RescaleInstance(inst.ID, inst.ScaleXY, v)
		}
	}

	transformForm := widget.NewForm(
		widget.NewFormItem("Scale XY", container.NewBorder(nil, nil, nil, p.scaleLb, p.scaleXY)),
		widget.NewFormItem("Scale Z", p.scaleZ),
	)

	p.modeSel = widget.NewRadioGroup([]string{"Imagery", "Flat colors"}, func(selected string) {
		if p.syncing {
			return
		}
		if selected == "Flat colors" {
			p.state.SetRenderMode(raster.ModeFlat)
		} else {
			p.state.SetRenderMode(raster.ModeImagery)
		}
	})
	p.modeSel.Horizontal = true
	p.syncMode()

	p.spacing = widget.NewEntry()
	p.heightOf = widget.NewEntry()
	submitSettings := func(string) { p.applySettings() }
	p.spacing.OnSubmitted = submitSettings
	p.heightOf.OnSubmitted = submitSettings
	settingsForm := widget.NewForm(
		widget.NewFormItem("Vertex spacing", p.spacing),
		widget.NewFormItem("Height offset", p.heightOf),
	)
	p.loadSettings()

	controls := container.NewVBox(
		zOrder,
		transformForm,
		widget.NewSeparator(),
		container.NewHBox(widget.NewLabel("Preview:"), p.modeSel),
		widget.NewSeparator(),
		settingsForm,
	)
	return container.NewBorder(nil, controls, nil, nil, p.list)
}

// Reload refreshes the placement list from the project.
func (p *CanvasPanel) Reload() {
	p.instances = p.instances[:0]
	if p.state.Project != nil {
		items := p.state.Project.Canvas.Items()
		for i := len(items) - 1; i >= 0; i-- {
			p.instances = append(p.instances, items[i])
		}
	}
	p.list.Refresh()
	p.loadSettings()
	p.syncSelection()
}

func (p *CanvasPanel) selectedInstance() (compose.Instance, bool) {
	if p.state.Project == nil || p.state.SelectedInstance == "" {
		return compose.Instance{}, false
	}
	return p.state.Project.Canvas.Get(p.state.SelectedInstance)
}

func (p *CanvasPanel) reorder(up bool) {
	if id := p.state.SelectedInstance; id != "" {
		p.state.ReorderInstance(id, up)
	}
}

// syncSelection mirrors the state selection into the list and controls.
func (p *CanvasPanel) syncSelection() {
	p.syncing = true
	defer func() { p.syncing = false }()

	inst, ok := p.selectedInstance()
	if !ok {
		p.list.UnselectAll()
		return
	}
	for i := range p.instances {
		if p.instances[i].ID == inst.ID {
			p.list.Select(i)
			break
		}
	}
	if p.scaleXY != nil {
		p.scaleXY.SetValue(inst.ScaleXY)
		p.scaleZ.SetText(fmt.Sprintf("%.2f", inst.ScaleZ))
	}
}

// syncMode mirrors the state's render mode into the radio group.
func (p *CanvasPanel) syncMode() {
	if p.modeSel == nil {
		return
	}
	p.syncing = true
	if p.state.RenderMode == raster.ModeFlat {
		p.modeSel.SetSelected("Flat colors")
	} else {
		p.modeSel.SetSelected("Imagery")
	}
	p.syncing = false
}

func (p *CanvasPanel) loadSettings() {
	if p.state.Project == nil || p.spacing == nil {
		return
	}
	p.syncing = true
	p.spacing.SetText(fmt.Sprintf("%g", p.state.Project.Settings.VertexSpacing))
	p.heightOf.SetText(fmt.Sprintf("%g", p.state.Project.Settings.HeightOffset))
	p.syncing = false
}

func (p *CanvasPanel) applySettings() {
	if p.state.Project == nil || p.syncing {
		return
	}
	if v, err := strconv.ParseFloat(p.spacing.Text, 64); err == nil && v > 0 {
		p.state.Project.Settings.VertexSpacing = v
	}
	if v, err := strconv.ParseFloat(p.heightOf.Text, 64); err == nil {
		p.state.Project.Settings.HeightOffset = v
	}
	p.state.SetModified(true)
}
