package mapformat

import "github.com/sirjuddington/slade-core/mapdata"

// MapOpenChecks removes detached vertices/sides/invalid sides/detached
// sectors and rebuilds bbox/polygon caches, run once after every
// format reader finishes populating a Map (spec.md §4.8).
func MapOpenChecks(m *mapdata.Map) {
	for _, v := range append([]*mapdata.Vertex(nil), m.Vertices()...) {
		if len(v.ConnectedLines()) == 0 {
			m.RemoveVertex(v)
		}
	}
	for _, s := range append([]*mapdata.Side(nil), m.Sides()...) {
		if s.Parent == nil {
			m.RemoveSide(s)
		}
	}
	for _, s := range append([]*mapdata.Sector(nil), m.Sectors()...) {
		if len(s.ConnectedSides()) == 0 {
			m.RemoveSector(s)
		}
	}
	for _, s := range m.Sectors() {
		s.BBox()
		s.Polygon()
	}
}
