// Package viewport provides the canvas viewport widget with pan, zoom,
// selection, and instance dragging.
package viewport

import (
	"image"
	"math"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"terrain-composer/internal/app"
	"terrain-composer/internal/compose"
	"terrain-composer/pkg/geometry"
)

const zoomStep = 1.25

// fitPadding is the screen-pixel margin left around the content by
// FitToContent.
const fitPadding = 24.0

// dragMode tells what the current drag gesture is doing.
type dragMode int

const (
	dragNone dragMode = iota
	dragPan
	dragInstance
)

// Viewport renders the composited canvas through a pan/zoom transform
// and translates mouse gestures into state mutations.
type Viewport struct {
	widget.BaseWidget

	state  *app.State
	source *app.PreviewSource
	view   compose.ViewTransform

	raster *fynecanvas.Raster

	// Composite cache, rebuilt lazily after canvas-affecting events.
	comp        *image.RGBA
	compOriginX int
	compOriginY int
	compDirty   bool

	mode       dragMode
	dragStart  fyne.Position
	dragInstID string
	dragOrigin geometry.PointInt
	pendingFit bool

	onZoomChange  func(zoom float64)
	onContextMenu func(instanceID string, screen fyne.Position)
}

// New creates a viewport bound to the application state.
func New(st *app.State) *Viewport {
	v := &Viewport{
		state:     st,
		source:    st.PreviewSource(),
		view:      compose.NewViewTransform(),
		compDirty: true,
	}
	v.raster = fynecanvas.NewRaster(v.draw)
	v.raster.ScaleMode = fynecanvas.ImageScalePixels
	v.ExtendBaseWidget(v)

	invalidate := func(interface{}) {
		v.Invalidate()
		v.Refresh()
	}
	st.On(app.EventCanvasChanged, invalidate)
	st.On(app.EventPatchesChanged, invalidate)
	st.On(app.EventMaskChanged, invalidate)
	st.On(app.EventRenderModeChanged, invalidate)
	st.On(app.EventProjectLoaded, func(interface{}) {
		v.Invalidate()
		// The widget may not be laid out yet; fit on the next draw.
		v.pendingFit = true
		v.Refresh()
	})
	st.On(app.EventSelectionChanged, func(interface{}) {
		v.Refresh()
	})
	return v
}

func (v *Viewport) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

// Invalidate drops the cached composite so the next draw rebuilds it.
func (v *Viewport) Invalidate() {
	v.compDirty = true
}

// Refresh redraws the viewport.
func (v *Viewport) Refresh() {
	v.raster.Refresh()
	v.BaseWidget.Refresh()
}

// View returns the current view transform.
func (v *Viewport) View() compose.ViewTransform {
	return v.view
}

// Zoom returns the current zoom factor.
func (v *Viewport) Zoom() float64 {
	return v.view.Scale
}

// OnZoomChange sets a callback invoked after every zoom change.
func (v *Viewport) OnZoomChange(callback func(zoom float64)) {
	v.onZoomChange = callback
}

// OnContextMenu sets a callback for right clicks. instanceID is the hit
// placement, "" when the click landed on empty canvas.
func (v *Viewport) OnContextMenu(callback func(instanceID string, screen fyne.Position)) {
	v.onContextMenu = callback
}

// ZoomIn zooms in around the viewport center.
func (v *Viewport) ZoomIn() {
	v.zoomAtCenter(zoomStep)
}

// ZoomOut zooms out around the viewport center.
func (v *Viewport) ZoomOut() {
	v.zoomAtCenter(1 / zoomStep)
}

// ActualSize sets 1:1 zoom, keeping the viewport center stationary.
func (v *Viewport) ActualSize() {
	if v.view.Scale != 0 {
		v.zoomAtCenter(1.0 / v.view.Scale)
	}
}

// FitToContent frames every placed instance in the viewport.
func (v *Viewport) FitToContent() {
	size := v.Size()
	if size.Width <= 0 || size.Height <= 0 {
		v.pendingFit = true
		return
	}
	v.fit(float64(size.Width), float64(size.Height))
	v.Refresh()
}

// ResetView restores identity pan and zoom.
func (v *Viewport) ResetView() {
	v.view.Reset()
	v.notifyZoom()
	v.Refresh()
}

func (v *Viewport) fit(w, h float64) {
	instances := v.instances()
	v.view.FitToContent(instances, v.source, w, h, fitPadding)
	v.notifyZoom()
}

func (v *Viewport) zoomAtCenter(factor float64) {
	size := v.Size()
	pivot := geometry.Point2D{
		X: float64(size.Width) / 2,
		Y: float64(size.Height) / 2,
	}
	v.view.ZoomAt(pivot, factor)
	v.notifyZoom()
	v.Refresh()
}

func (v *Viewport) notifyZoom() {
	if v.onZoomChange != nil {
		v.onZoomChange(v.view.Scale)
	}
}

func (v *Viewport) instances() []compose.Instance {
	if v.state.Project == nil {
		return nil
	}
	return v.state.Project.Canvas.Items()
}

// Scrolled zooms around the cursor.
func (v *Viewport) Scrolled(ev *fyne.ScrollEvent) {
	factor := zoomStep
	if ev.Scrolled.DY < 0 {
		factor = 1 / zoomStep
	}
	pivot := geometry.Point2D{X: float64(ev.Position.X), Y: float64(ev.Position.Y)}
	v.view.ZoomAt(pivot, factor)
	v.notifyZoom()
	v.Refresh()
}

// Tapped selects the topmost sufficiently opaque instance under the
// cursor, or clears the selection on empty canvas.
func (v *Viewport) Tapped(ev *fyne.PointEvent) {
	id, _ := v.hitTest(ev.Position)
	v.state.SelectInstance(id)
}

// TappedSecondary reports a right click through the context callback.
func (v *Viewport) TappedSecondary(ev *fyne.PointEvent) {
	if v.onContextMenu == nil {
		return
	}
	id, _ := v.hitTest(ev.Position)
	v.onContextMenu(id, ev.AbsolutePosition)
}

// Dragged pans the view, or moves the placement the drag started on.
func (v *Viewport) Dragged(ev *fyne.DragEvent) {
	if v.mode == dragNone {
		start := fyne.Position{
			X: ev.Position.X - ev.Dragged.DX,
			Y: ev.Position.Y - ev.Dragged.DY,
		}
		v.beginDrag(start)
	}

	switch v.mode {
	case dragPan:
		v.view.Pan(float64(ev.Dragged.DX), float64(ev.Dragged.DY))
		v.Refresh()
	case dragInstance:
		dx := float64(ev.Position.X-v.dragStart.X) / v.view.Scale
		dy := float64(ev.Position.Y-v.dragStart.Y) / v.view.Scale
		v.state.MoveInstance(v.dragInstID,
			v.dragOrigin.X+int(math.Round(dx)),
			v.dragOrigin.Y+int(math.Round(dy)))
	}
}

// DragEnd finishes the active gesture.
func (v *Viewport) DragEnd() {
	v.mode = dragNone
	v.dragInstID = ""
}

func (v *Viewport) beginDrag(start fyne.Position) {
	v.dragStart = start
	id, ok := v.hitTest(start)
	if !ok {
		v.mode = dragPan
		return
	}

	inst, found := v.state.Project.Canvas.Get(id)
	if !found {
		v.mode = dragPan
		return
	}
	v.state.SelectInstance(id)
	v.mode = dragInstance
	v.dragInstID = id
	v.dragOrigin = geometry.PointInt{X: inst.CanvasX, Y: inst.CanvasY}
}

func (v *Viewport) hitTest(screen fyne.Position) (string, bool) {
	pt := v.view.ScreenToCanvas(geometry.Point2D{
		X: float64(screen.X),
		Y: float64(screen.Y),
	})
	return compose.HitTest(v.instances(), v.source, pt)
}
