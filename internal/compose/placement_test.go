package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlacementAdd(t *testing.T) {
	pl := NewPlacementList()
	a := pl.Add("hills", 10, 20)
	b := pl.Add("hills", 30, 40)

	require.Equal(t, 2, pl.Len())
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 1.0, a.ScaleXY)
	assert.Equal(t, 1.0, a.ScaleZ)
	assert.Equal(t, 0, pl.IndexOf(a.ID))
	assert.Equal(t, 1, pl.IndexOf(b.ID))
}

func TestPlacementAppendNormalizes(t *testing.T) {
	pl := NewPlacementList()
	pl.Append(Instance{PatchName: "old", CanvasX: 1, CanvasY: 2})

	inst := pl.Items()[0]
	assert.NotEmpty(t, inst.ID)
	assert.Equal(t, 1.0, inst.ScaleXY)
	assert.Equal(t, 1.0, inst.ScaleZ)
}

func TestPlacementAppendClampsScales(t *testing.T) {
	pl := NewPlacementList()
	pl.Append(Instance{ID: "x", PatchName: "p", ScaleXY: 100, ScaleZ: 0.001})

	inst := pl.Items()[0]
	assert.Equal(t, maxInstanceScale, inst.ScaleXY)
	assert.Equal(t, minInstanceScale, inst.ScaleZ)
}

func TestPlacementZOrderMoves(t *testing.T) {
	pl := NewPlacementList()
	a := pl.Add("p", 0, 0)
	b := pl.Add("p", 0, 0)
	c := pl.Add("p", 0, 0)

	require.True(t, pl.MoveUp(b.ID))
	assert.Equal(t, []string{a.ID, c.ID, b.ID}, ids(pl))

	require.True(t, pl.MoveDown(c.ID))
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, ids(pl))

	// Boundary moves are rejected without reordering.
	assert.False(t, pl.MoveUp(b.ID))
	assert.False(t, pl.MoveDown(c.ID))
	assert.False(t, pl.MoveUp("no-such-id"))
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, ids(pl))
}

func TestPlacementRemove(t *testing.T) {
	pl := NewPlacementList()
	a := pl.Add("p", 0, 0)
	b := pl.Add("p", 0, 0)

	assert.True(t, pl.Remove(a.ID))
	assert.False(t, pl.Remove(a.ID))
	assert.Equal(t, []string{b.ID}, ids(pl))
}

func TestPlacementInsertAt(t *testing.T) {
	pl := NewPlacementList()
	a := pl.Add("p", 0, 0)
	b := pl.Add("p", 0, 0)

	pl.InsertAt(1, Instance{ID: "mid", PatchName: "p", ScaleXY: 1, ScaleZ: 1})
	assert.Equal(t, []string{a.ID, "mid", b.ID}, ids(pl))

	pl.InsertAt(-5, Instance{ID: "first", PatchName: "p", ScaleXY: 1, ScaleZ: 1})
	pl.InsertAt(99, Instance{ID: "last", PatchName: "p", ScaleXY: 1, ScaleZ: 1})
	assert.Equal(t, []string{"first", a.ID, "mid", b.ID, "last"}, ids(pl))
}

func TestPlacementSetPositionAndScale(t *testing.T) {
	pl := NewPlacementList()
	a := pl.Add("p", 0, 0)

	require.True(t, pl.SetPosition(a.ID, -15, 40))
	require.True(t, pl.SetScale(a.ID, 2.5, 0.5))

	inst, ok := pl.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, -15, inst.CanvasX)
	assert.Equal(t, 40, inst.CanvasY)
	assert.Equal(t, 2.5, inst.ScaleXY)
	assert.Equal(t, 0.5, inst.ScaleZ)

	// Out-of-range scales clamp instead of failing.
	require.True(t, pl.SetScale(a.ID, 0, 1000))
	inst, _ = pl.Get(a.ID)
	assert.Equal(t, minInstanceScale, inst.ScaleXY)
	assert.Equal(t, maxInstanceScale, inst.ScaleZ)

	assert.False(t, pl.SetPosition("missing", 0, 0))
	assert.False(t, pl.SetScale("missing", 1, 1))
}

func TestPlacementPrune(t *testing.T) {
	pl := NewPlacementList()
	a := pl.Add("keep", 0, 0)
	pl.Add("gone", 0, 0)
	b := pl.Add("keep", 5, 5)
	pl.Add("gone", 0, 0)

	removed := pl.Prune(func(name string) bool { return name == "keep" })
	assert.Equal(t, 2, removed)
	assert.Equal(t, []string{a.ID, b.ID}, ids(pl))
}

func TestPlacementRemoveByPatch(t *testing.T) {
	pl := NewPlacementList()
	pl.Add("hills", 0, 0)
	a := pl.Add("valley", 0, 0)
	pl.Add("hills", 9, 9)

	assert.Equal(t, 2, pl.RemoveByPatch("hills"))
	assert.Equal(t, []string{a.ID}, ids(pl))
}

func TestPlacementItemsIsCopy(t *testing.T) {
	pl := NewPlacementList()
	a := pl.Add("p", 0, 0)

	items := pl.Items()
	items[0].CanvasX = 999

	got, _ := pl.Get(a.ID)
	assert.Equal(t, 0, got.CanvasX)
}

func TestDestRectMinimumSize(t *testing.T) {
	inst := Instance{CanvasX: 3, CanvasY: 4, ScaleXY: minInstanceScale, ScaleZ: 1}
	r := inst.DestRect(2, 2)
	assert.Equal(t, 3.0, r.X)
	assert.Equal(t, 4.0, r.Y)
	assert.Equal(t, 1.0, r.Width)
	assert.Equal(t, 1.0, r.Height)
}

func ids(pl *PlacementList) []string {
	out := make([]string, 0, pl.Len())
	for _, inst := range pl.Items() {
		out = append(out, inst.ID)
	}
	return out
}
