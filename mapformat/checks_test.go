package mapformat_test

import (
	"testing"

	"github.com/sirjuddington/slade-core/mapdata"
	"github.com/sirjuddington/slade-core/mapformat"
)

func TestMapOpenChecksRemovesDetachedObjects(t *testing.T) {
	m := mapdata.NewMap()

	v1 := m.NewVertex(0, 0)
	v2 := m.NewVertex(10, 0)
	line := m.NewLine(v1, v2)
	sec := m.NewSector()
	side := m.NewSide(sec)
	m.AttachSide(line, side, true)

	orphanVertex := m.NewVertex(100, 100)
	detachedSide := m.NewSide(nil)
	emptySector := m.NewSector()

	mapformat.MapOpenChecks(m)

	for _, v := range m.Vertices() {
		if v == orphanVertex {
			t.Errorf("MapOpenChecks() left an unconnected vertex in the map")
		}
	}
	for _, s := range m.Sides() {
		if s == detachedSide {
			t.Errorf("MapOpenChecks() left a parentless side in the map")
		}
	}
	for _, s := range m.Sectors() {
		if s == emptySector {
			t.Errorf("MapOpenChecks() left a sector with no connected sides in the map")
		}
	}

	if len(m.Vertices()) != 2 {
		t.Errorf("Vertices() = %d, want 2 (the connected ones kept)", len(m.Vertices()))
	}
	if len(m.Sides()) != 1 {
		t.Errorf("Sides() = %d, want 1", len(m.Sides()))
	}
	if len(m.Sectors()) != 1 {
		t.Errorf("Sectors() = %d, want 1", len(m.Sectors()))
	}
}
