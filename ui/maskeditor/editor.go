// Package maskeditor provides the mask drawing dialog: vector shapes are
// sketched over the patch imagery and rasterized on apply.
package maskeditor

import (
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"terrain-composer/internal/app"
	"terrain-composer/internal/mask"
	"terrain-composer/internal/raster"
)

// Editor draw-area dimensions. The patch imagery is fit inside this box
// and shape coordinates are recorded against the fit rectangle, so the
// dialog size stays independent of patch resolution.
const (
	editorMaxW = 640.0
	editorMaxH = 480.0
)

const maxFeatherPx = 200

// Editor owns one mask editing dialog.
type Editor struct {
	state   *app.State
	window  fyne.Window
	session *mask.Session

	drawArea  *drawArea
	toolGroup *widget.RadioGroup
	feather   *widget.Slider
	featherLb *widget.Label
	activeChk *widget.Check
	shapeLb   *widget.Label
}

// Show opens the mask editor for a patch.
func Show(win fyne.Window, st *app.State, patchName string) {
	if st.Project == nil {
		dialog.ShowError(fmt.Errorf("no project open"), win)
		return
	}
	pt, ok := st.Project.Patch(patchName)
	if !ok {
		dialog.ShowError(fmt.Errorf("unknown patch %q", patchName), win)
		return
	}
	fitW, fitH := fitRect(pt.WidthPx, pt.HeightPx)

	sess, err := st.BeginMaskEdit(patchName, fitW, fitH)
	if err != nil {
		dialog.ShowError(err, win)
		return
	}

	ed := &Editor{state: st, window: win, session: sess}
	ed.drawArea = newDrawArea(sess, loadBackdrop(st, patchName, fitW, fitH))
	ed.drawArea.onShapesChanged = ed.updateShapeCount

	content := container.NewBorder(nil, ed.buildControls(), nil, nil, ed.drawArea)

	dlg := dialog.NewCustomConfirm(
		"Edit Mask: "+patchName,
		"Apply",
		"Cancel",
		content,
		func(apply bool) {
			if !apply {
				st.CancelMaskEdit()
				return
			}
			if err := st.ApplyMaskEdit(); err != nil {
				dialog.ShowError(err, win)
			}
		},
		win,
	)
	dlg.Resize(fyne.NewSize(editorMaxW+40, editorMaxH+180))
	dlg.Show()
}

func (ed *Editor) buildControls() fyne.CanvasObject {
	ed.toolGroup = widget.NewRadioGroup(
		[]string{mask.KindRect.String(), mask.KindOval.String(), mask.KindLasso.String()},
		func(selected string) {
			switch selected {
			case mask.KindOval.String():
				ed.drawArea.tool = mask.KindOval
			case mask.KindLasso.String():
				ed.drawArea.tool = mask.KindLasso
			default:
				ed.drawArea.tool = mask.KindRect
			}
		})
	ed.toolGroup.Horizontal = true
	ed.toolGroup.SetSelected(mask.KindRect.String())

	ed.featherLb = widget.NewLabel(fmt.Sprintf("%d px", ed.session.FeatherRadius))
	ed.feather = widget.NewSlider(0, maxFeatherPx)
	ed.feather.Step = 1
	ed.feather.SetValue(float64(ed.session.FeatherRadius))
	ed.feather.OnChanged = func(v float64) {
		ed.session.FeatherRadius = int(v)
		ed.featherLb.SetText(fmt.Sprintf("%d px", int(v)))
		ed.drawArea.Refresh()
	}

	ed.activeChk = widget.NewCheck("Mask active", func(on bool) {
		ed.session.Active = on
		ed.drawArea.Refresh()
	})
	ed.activeChk.SetChecked(ed.session.Active)

	undoBtn := widget.NewButton("Undo Shape", func() {
		if ed.session.Undo() {
			ed.updateShapeCount()
			ed.drawArea.Refresh()
		}
	})
	clearBtn := widget.NewButton("Clear All", func() {
		ed.session.Clear()
		ed.updateShapeCount()
		ed.drawArea.Refresh()
	})

	ed.shapeLb = widget.NewLabel("0 shapes")
	ed.updateShapeCount()

	return container.NewVBox(
		container.NewHBox(widget.NewLabel("Tool:"), ed.toolGroup, undoBtn, clearBtn, ed.shapeLb),
		container.NewBorder(nil, nil, widget.NewLabel("Feather:"), ed.featherLb, ed.feather),
		ed.activeChk,
	)
}

func (ed *Editor) updateShapeCount() {
	n := ed.session.Len()
	if n == 1 {
		ed.shapeLb.SetText("1 shape")
		return
	}
	ed.shapeLb.SetText(fmt.Sprintf("%d shapes", n))
}

// fitRect fits a patch's aspect ratio inside the editor draw box.
func fitRect(pw, ph int) (float64, float64) {
	if pw < 1 || ph < 1 {
		return editorMaxW, editorMaxH
	}
	scale := editorMaxW / float64(pw)
	if s := editorMaxH / float64(ph); s < scale {
		scale = s
	}
	return float64(pw) * scale, float64(ph) * scale
}

// loadBackdrop returns the patch imagery scaled to the fit rectangle,
// nil when the patch has none.
func loadBackdrop(st *app.State, patchName string, fitW, fitH float64) *image.RGBA {
	view, ok := st.PreviewSource().Patch(patchName)
	if !ok {
		return nil
	}
	img := view.Imagery()
	if img == nil {
		return nil
	}
	return raster.ResizeRGBA(img, maxInt(int(fitW), 1), maxInt(int(fitH), 1))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
