package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"terrain-composer/internal/app"
)

// SidePanel groups the patch library and canvas panels into tabs.
type SidePanel struct {
	Patches *PatchesPanel
	Canvas  *CanvasPanel

	tabs *container.AppTabs
}

// NewSidePanel creates the tabbed side panel.
func NewSidePanel(st *app.State) *SidePanel {
	sp := &SidePanel{
		Patches: NewPatchesPanel(st),
		Canvas:  NewCanvasPanel(st),
	}
	sp.tabs = container.NewAppTabs(
		container.NewTabItem("Patches", sp.Patches.Container()),
		container.NewTabItem("Canvas", sp.Canvas.Container()),
	)
	return sp
}

// SetWindow sets the parent window for dialogs.
func (sp *SidePanel) SetWindow(win fyne.Window) {
	sp.Patches.SetWindow(win)
}

// Container returns the side panel's root object.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.tabs
}
