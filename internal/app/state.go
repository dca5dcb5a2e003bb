// Package app holds the shared application state and its event bus: the
// open project, the selection, the active mask-edit session, and the
// preview raster cache.
package app

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"terrain-composer/internal/compose"
	"terrain-composer/internal/config"
	"terrain-composer/internal/logger"
	"terrain-composer/internal/mask"
	"terrain-composer/internal/patch"
	"terrain-composer/internal/project"
	"terrain-composer/internal/raster"
)

// EventType identifies different application events.
type EventType int

const (
	EventProjectLoaded EventType = iota
	EventProjectSaved
	EventPatchesChanged
	EventCanvasChanged
	EventSelectionChanged
	EventMaskChanged
	EventRenderModeChanged
	EventModified
	EventExportFinished
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// State holds the application state. UI widgets mutate it through the
// methods below and react to the events they emit; the pixel cores never
// see it.
type State struct {
	mu sync.RWMutex

	Config *config.Config

	Project  *project.Project
	Modified bool

	// SelectedInstance is the id of the selected placement, "" for none.
	SelectedInstance string

	// MaskSession is the active mask edit, nil when not editing.
	MaskSession *mask.Session

	RenderMode raster.RenderMode

	Cache *raster.Cache

	listeners map[EventType][]EventListener
}

// NewState creates application state with an empty cache and no project.
func NewState(cfg *config.Config) *State {
	return &State{
		Config:     cfg,
		RenderMode: raster.ModeImagery,
		Cache:      raster.NewCache(),
		listeners:  make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the project as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	s.Modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// OpenProject loads the project at dir and resets per-project state.
func (s *State) OpenProject(dir string) error {
	proj, err := project.Open(dir)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.Project = proj
	s.Modified = false
	s.SelectedInstance = ""
	s.MaskSession = nil
	s.Cache.Clear()
	s.mu.Unlock()

	logger.Log.Info("project opened",
		zap.String("dir", dir),
		zap.Int("patches", len(proj.Patches())),
		zap.Int("placements", proj.Canvas.Len()))
	s.Emit(EventProjectLoaded, proj)
	return nil
}

// SaveProject persists project.json.
func (s *State) SaveProject() error {
	if s.Project == nil {
		return fmt.Errorf("no open project")
	}
	if err := s.Project.Save(); err != nil {
		return err
	}
	s.SetModified(false)
	s.Emit(EventProjectSaved, s.Project)
	return nil
}

// SelectInstance updates the canvas selection; "" deselects.
func (s *State) SelectInstance(id string) {
	s.mu.Lock()
	changed := s.SelectedInstance != id
	s.SelectedInstance = id
	s.mu.Unlock()
	if changed {
		s.Emit(EventSelectionChanged, id)
	}
}

// SetRenderMode switches the canvas preview between flat and imagery.
func (s *State) SetRenderMode(mode raster.RenderMode) {
	s.mu.Lock()
	changed := s.RenderMode != mode
	s.RenderMode = mode
	s.mu.Unlock()
	if changed {
		s.Emit(EventRenderModeChanged, mode)
	}
}

// PlaceInstance adds a patch to the canvas and selects the new instance.
func (s *State) PlaceInstance(patchName string, x, y int) (compose.Instance, error) {
	if s.Project == nil {
		return compose.Instance{}, fmt.Errorf("no open project")
	}
	if !s.Project.HasPatch(patchName) {
		return compose.Instance{}, fmt.Errorf("unknown patch %q", patchName)
	}
	inst := s.Project.Canvas.Add(patchName, x, y)
	s.SetModified(true)
	s.Emit(EventCanvasChanged, nil)
	s.SelectInstance(inst.ID)
	return inst, nil
}

// RemoveInstance removes a placement; the selection clears if it pointed
// at the removed instance.
func (s *State) RemoveInstance(id string) {
	if s.Project == nil || !s.Project.Canvas.Remove(id) {
		return
	}
	s.Cache.Invalidate(id)
	if s.SelectedInstance == id {
		s.SelectInstance("")
	}
	s.SetModified(true)
	s.Emit(EventCanvasChanged, nil)
}

// MoveInstance repositions a placement on the canvas.
func (s *State) MoveInstance(id string, x, y int) {
	if s.Project == nil || !s.Project.Canvas.SetPosition(id, x, y) {
		return
	}
	s.SetModified(true)
	s.Emit(EventCanvasChanged, nil)
}

// RescaleInstance updates a placement's scales.
func (s *State) RescaleInstance(id string, scaleXY, scaleZ float64) {
	if s.Project == nil || !s.Project.Canvas.SetScale(id, scaleXY, scaleZ) {
		return
	}
	s.Cache.Invalidate(id)
	s.SetModified(true)
	s.Emit(EventCanvasChanged, nil)
}

// ReorderInstance moves a placement one z-order step. up means toward
// the top of the stack.
func (s *State) ReorderInstance(id string, up bool) {
	if s.Project == nil {
		return
	}
	moved := false
	if up {
		moved = s.Project.Canvas.MoveUp(id)
	} else {
		moved = s.Project.Canvas.MoveDown(id)
	}
	if !moved {
		return
	}
	s.SetModified(true)
	s.Emit(EventCanvasChanged, nil)
}

// DeletePatch removes a patch from disk together with its placements and
// cached rasters.
func (s *State) DeletePatch(name string) error {
	if s.Project == nil {
		return fmt.Errorf("no open project")
	}
	if err := s.Project.DeletePatch(name); err != nil {
		return err
	}
	s.Cache.InvalidatePatch(name)
	if s.MaskSession != nil && s.MaskSession.PatchName == name {
		s.MaskSession = nil
	}
	s.SetModified(true)
	s.Emit(EventPatchesChanged, nil)
	s.Emit(EventCanvasChanged, nil)
	return nil
}

// AddPatch registers a freshly fetched patch and rescans nothing else.
func (s *State) AddPatch(pt *patch.Patch) {
	if s.Project == nil {
		return
	}
	s.Project.AddPatch(pt)
	s.Emit(EventPatchesChanged, nil)
}

// SetMaskFeather changes a patch's feather radius, persists it, and
// drops the stale feathered masks.
func (s *State) SetMaskFeather(name string, px int) error {
	if s.Project == nil {
		return fmt.Errorf("no open project")
	}
	if err := s.Project.SetMaskFeather(name, px); err != nil {
		return err
	}
	s.Cache.InvalidatePatch(name)
	s.Emit(EventMaskChanged, name)
	return nil
}

// BeginMaskEdit opens a mask edit session for a patch. fitW/fitH are the
// editor draw-area dimensions shape points will be recorded against.
func (s *State) BeginMaskEdit(patchName string, fitW, fitH float64) (*mask.Session, error) {
	if s.Project == nil {
		return nil, fmt.Errorf("no open project")
	}
	pt, ok := s.Project.Patch(patchName)
	if !ok {
		return nil, fmt.Errorf("unknown patch %q", patchName)
	}

	sess := mask.NewSession(patchName, fitW, fitH)
	// The persisted radius is in patch pixels; the session works in the
	// fit rectangle's space.
	sess.FeatherRadius = mask.ScaleRadius(pt.MaskFeatherPx, float64(pt.WidthPx), fitW)
	s.mu.Lock()
	s.MaskSession = sess
	s.mu.Unlock()
	return sess, nil
}

// ApplyMaskEdit rasterizes the active session at patch resolution,
// writes mask.png, persists the feather radius, and invalidates the
// patch's cached rasters. The session ends.
func (s *State) ApplyMaskEdit() error {
	s.mu.Lock()
	sess := s.MaskSession
	s.mu.Unlock()
	if sess == nil {
		return fmt.Errorf("no active mask edit")
	}
	pt, ok := s.Project.Patch(sess.PatchName)
	if !ok {
		return fmt.Errorf("unknown patch %q", sess.PatchName)
	}

	maskPath, _ := pt.MaskPath()
	if sess.Active {
		hard := sess.Render(pt.WidthPx, pt.HeightPx)
		if err := raster.SavePNG(maskPath, hard); err != nil {
			return fmt.Errorf("writing mask: %w", err)
		}
	} else if err := os.Remove(maskPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing mask: %w", err)
	}
	pt.MaskFeatherPx = mask.ScaleRadius(sess.FeatherRadius, sess.FitWidth, float64(pt.WidthPx))
	if err := pt.Save(); err != nil {
		return err
	}

	s.mu.Lock()
	s.MaskSession = nil
	s.mu.Unlock()
	s.Cache.InvalidatePatch(sess.PatchName)
	s.SetModified(true)
	s.Emit(EventMaskChanged, sess.PatchName)
	return nil
}

// CancelMaskEdit discards the active session.
func (s *State) CancelMaskEdit() {
	s.mu.Lock()
	s.MaskSession = nil
	s.mu.Unlock()
}
