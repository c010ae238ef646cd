package mapdata_test

import (
	"testing"

	"github.com/sirjuddington/slade-core/mapdata"
)

func TestNewMapSlotZeroReserved(t *testing.T) {
	m := mapdata.NewMap()
	v := m.NewVertex(0, 0)
	if v.ID() == 0 {
		t.Errorf("ID() = 0, want non-zero (slot 0 is reserved null)")
	}
}

func TestSlotsNeverReused(t *testing.T) {
	m := mapdata.NewMap()
	v1 := m.NewVertex(0, 0)
	id1 := v1.ID()
	m.RemoveVertex(v1)

	v2 := m.NewVertex(10, 10)
	if v2.ID() == id1 {
		t.Errorf("ID() = %d reused freed slot %d", v2.ID(), id1)
	}
}

func TestRefreshIndicesAfterRemoval(t *testing.T) {
	m := mapdata.NewMap()
	a := m.NewVertex(0, 0)
	b := m.NewVertex(1, 1)
	c := m.NewVertex(2, 2)

	m.RemoveVertex(a)

	if b.Index() != 0 || c.Index() != 1 {
		t.Errorf("indices after removal = %d, %d; want 0, 1", b.Index(), c.Index())
	}
	if len(m.Vertices()) != 2 {
		t.Errorf("len(Vertices()) = %d, want 2", len(m.Vertices()))
	}
}

func TestUndoHistoryOnlyRecordsWhileRecording(t *testing.T) {
	m := mapdata.NewMap()
	m.NewVertex(0, 0)
	if len(m.History()) != 0 {
		t.Fatalf("History() before recording = %d entries, want 0", len(m.History()))
	}

	m.StartRecording()
	m.NewVertex(1, 1)
	v := m.NewVertex(2, 2)
	m.RemoveVertex(v)
	m.StopRecording()

	if len(m.History()) != 3 {
		t.Errorf("History() = %d entries, want 3", len(m.History()))
	}
}

func TestStopRecordingInvokesRecomputeSpecials(t *testing.T) {
	m := mapdata.NewMap()
	called := false
	m.RecomputeSpecials = func() { called = true }

	m.StartRecording()
	m.StopRecording()

	if !called {
		t.Errorf("StopRecording() did not invoke RecomputeSpecials")
	}
}

func TestRemoveLineDetachesFromVertices(t *testing.T) {
	m := mapdata.NewMap()
	v1 := m.NewVertex(0, 0)
	v2 := m.NewVertex(10, 0)
	l := m.NewLine(v1, v2)

	if len(v1.ConnectedLines()) != 1 {
		t.Fatalf("v1 ConnectedLines() = %d, want 1", len(v1.ConnectedLines()))
	}

	m.RemoveLine(l)

	if len(v1.ConnectedLines()) != 0 || len(v2.ConnectedLines()) != 0 {
		t.Errorf("ConnectedLines() after RemoveLine not cleared: v1=%d v2=%d",
			len(v1.ConnectedLines()), len(v2.ConnectedLines()))
	}
}

func TestRemoveThingDropsThing(t *testing.T) {
	m := mapdata.NewMap()
	th := m.NewThing(0, 0)
	th.Type = 1

	m.RemoveThing(th)
	if len(m.Things()) != 0 {
		t.Errorf("len(Things()) after RemoveThing = %d, want 0", len(m.Things()))
	}
}

func TestSectorAtFindsContainingPolygon(t *testing.T) {
	m := mapdata.NewMap()
	sec := m.NewSector()

	v1 := m.NewVertex(0, 0)
	v2 := m.NewVertex(10, 0)
	v3 := m.NewVertex(10, 10)
	v4 := m.NewVertex(0, 10)

	lines := []*mapdata.Line{
		m.NewLine(v1, v2),
		m.NewLine(v2, v3),
		m.NewLine(v3, v4),
		m.NewLine(v4, v1),
	}
	for _, l := range lines {
		s := m.NewSide(sec)
		m.AttachSide(l, s, true)
	}

	if got := m.SectorAt(5, 5); got != sec {
		t.Errorf("SectorAt(5,5) = %v, want %v", got, sec)
	}
	if got := m.SectorAt(50, 50); got != nil {
		t.Errorf("SectorAt(50,50) = %v, want nil", got)
	}
}

func TestBoundsIncludesThingsWhenRequested(t *testing.T) {
	m := mapdata.NewMap()
	sec := m.NewSector()
	v1 := m.NewVertex(0, 0)
	v2 := m.NewVertex(10, 0)
	l := m.NewLine(v1, v2)
	side := m.NewSide(sec)
	m.AttachSide(l, side, true)

	m.NewThing(100, 100)

	_, _, maxX, maxY := m.Bounds(true)
	if maxX < 100 || maxY < 100 {
		t.Errorf("Bounds(true) maxX,maxY = %v,%v; want >= 100,100", maxX, maxY)
	}

	_, _, maxX2, _ := m.Bounds(false)
	if maxX2 >= 100 {
		t.Errorf("Bounds(false) maxX = %v; thing should be excluded", maxX2)
	}
}

func TestNearestVertexRespectsMaxDist(t *testing.T) {
	m := mapdata.NewMap()
	m.NewVertex(0, 0)
	far := m.NewVertex(100, 100)

	if got := m.NearestVertex(99, 99, 5); got != far {
		t.Errorf("NearestVertex(99,99,5) = %v, want %v", got, far)
	}
	if got := m.NearestVertex(50, 50, 5); got != nil {
		t.Errorf("NearestVertex(50,50,5) = %v, want nil (out of range)", got)
	}
}
