package mapdata_test

import (
	"testing"

	"github.com/sirjuddington/slade-core/mapdata"
)

func TestCreateVertexReusesWithinTolerance(t *testing.T) {
	m := mapdata.NewMap()
	v1 := m.CreateVertex(10, 10, 0)
	v2 := m.CreateVertex(10.005, 10.005, 0)

	if v1 != v2 {
		t.Errorf("CreateVertex() within tolerance created a new vertex, want reuse")
	}
	if len(m.Vertices()) != 1 {
		t.Errorf("len(Vertices()) = %d, want 1", len(m.Vertices()))
	}
}

func TestCreateLineVerticesReusesExistingLine(t *testing.T) {
	m := mapdata.NewMap()
	v1 := m.NewVertex(0, 0)
	v2 := m.NewVertex(10, 0)

	l1 := m.CreateLineVertices(v1, v2, false)
	l2 := m.CreateLineVertices(v2, v1, false)

	if l1 != l2 {
		t.Errorf("CreateLineVertices() did not reuse the existing reversed-endpoint line")
	}
	if len(m.Lines()) != 1 {
		t.Errorf("len(Lines()) = %d, want 1", len(m.Lines()))
	}
}

