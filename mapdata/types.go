package mapdata

import "math"

// Vertex is a map vertex (spec.md §3 MapVertex).
type Vertex struct {
	Object
	X, Y           float64
	connectedLines []*Line
}

func (v *Vertex) setID(id ObjID)   { v.id = id }
func (v *Vertex) setIndex(i int)   { v.index = i }
func (v *Vertex) ConnectedLines() []*Line { return v.connectedLines }

func (v *Vertex) addConnectedLine(l *Line) {
	for _, x := range v.connectedLines {
		if x == l {
			return
		}
	}
	v.connectedLines = append(v.connectedLines, l)
}

func (v *Vertex) removeConnectedLine(l *Line) {
	for i, x := range v.connectedLines {
		if x == l {
			v.connectedLines = append(v.connectedLines[:i], v.connectedLines[i+1:]...)
			return
		}
	}
}

// DistanceTo returns the Euclidean distance to p.
func (v *Vertex) DistanceTo(x, y float64) float64 {
	dx, dy := v.X-x, v.Y-y
	return math.Hypot(dx, dy)
}

// Side is a map sidedef (spec.md §3 MapSide).
type Side struct {
	Object
	Sector                              *Sector
	Parent                              *Line
	OffsetX, OffsetY                    int32
	TexUpper, TexMiddle, TexLower       string
}

func (s *Side) setID(id ObjID) { s.id = id }
func (s *Side) setIndex(i int) { s.index = i }

func newSide() *Side {
	return &Side{TexUpper: "-", TexMiddle: "-", TexLower: "-"}
}

// Line is a map linedef (spec.md §3 MapLine).
type Line struct {
	Object
	V1, V2         *Vertex
	Side1, Side2   *Side
	Special        int32
	Flags          int32
	LineID         int32
}

func (l *Line) setID(id ObjID) { l.id = id }
func (l *Line) setIndex(i int) { l.index = i }

// Length returns the Euclidean length of the line.
func (l *Line) Length() float64 {
	return l.V1.DistanceTo(l.V2.X, l.V2.Y)
}

// Flip swaps (v1,v2) and (side1,side2).
func (l *Line) Flip() {
	l.V1, l.V2 = l.V2, l.V1
	l.Side1, l.Side2 = l.Side2, l.Side1
	l.setModified()
}

// PointOnSide reports whether p is on the front (>0), back (<0), or on
// the line (0), using the standard 2D cross product.
func (l *Line) PointOnSide(x, y float64) float64 {
	return (x-l.V1.X)*(l.V2.Y-l.V1.Y) - (y-l.V1.Y)*(l.V2.X-l.V1.X)
}

// DistanceTo returns the shortest distance from p to the line segment.
func (l *Line) DistanceTo(x, y float64) float64 {
	x1, y1, x2, y2 := l.V1.X, l.V1.Y, l.V2.X, l.V2.Y
	dx, dy := x2-x1, y2-y1
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return l.V1.DistanceTo(x, y)
	}
	t := ((x-x1)*dx + (y-y1)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	px, py := x1+t*dx, y1+t*dy
	return math.Hypot(x-px, y-py)
}

// Plane is a sector floor/ceiling plane (spec.md §3 MapSector).
type Plane struct {
	Height  float64
	Texture string
	Light   int32
}

// Sector is a map sector (spec.md §3 MapSector).
type Sector struct {
	Object
	Floor, Ceiling  Plane
	Light           int32
	Special, SecID  int32
	connectedSides  []*Side

	bboxValid   bool
	bboxMinX    float64
	bboxMinY    float64
	bboxMaxX    float64
	bboxMaxY    float64

	polygonValid bool
	polygon      [][2]float64
}

func (s *Sector) setID(id ObjID) { s.id = id }
func (s *Sector) setIndex(i int) { s.index = i }

func (s *Sector) ConnectedSides() []*Side { return s.connectedSides }

func (s *Sector) addConnectedSide(side *Side) {
	for _, x := range s.connectedSides {
		if x == side {
			return
		}
	}
	s.connectedSides = append(s.connectedSides, side)
	s.invalidateGeometry()
}

func (s *Sector) removeConnectedSide(side *Side) {
	for i, x := range s.connectedSides {
		if x == side {
			s.connectedSides = append(s.connectedSides[:i], s.connectedSides[i+1:]...)
			s.invalidateGeometry()
			return
		}
	}
}

// invalidateGeometry drops the bbox/polygon cache (spec.md §3: "bbox
// and polygon are invalidated whenever a side's line's vertex moves").
func (s *Sector) invalidateGeometry() {
	s.bboxValid = false
	s.polygonValid = false
}

// BBox returns (and lazily rebuilds) the sector's bounding box over
// its connected sides' line vertices.
func (s *Sector) BBox() (minX, minY, maxX, maxY float64) {
	if !s.bboxValid {
		s.rebuildBBox()
	}
	return s.bboxMinX, s.bboxMinY, s.bboxMaxX, s.bboxMaxY
}

func (s *Sector) rebuildBBox() {
	first := true
	for _, side := range s.connectedSides {
		if side.Parent == nil {
			continue
		}
		for _, v := range []*Vertex{side.Parent.V1, side.Parent.V2} {
			if first {
				s.bboxMinX, s.bboxMaxX = v.X, v.X
				s.bboxMinY, s.bboxMaxY = v.Y, v.Y
				first = false
				continue
			}
			if v.X < s.bboxMinX {
				s.bboxMinX = v.X
			}
			if v.X > s.bboxMaxX {
				s.bboxMaxX = v.X
			}
			if v.Y < s.bboxMinY {
				s.bboxMinY = v.Y
			}
			if v.Y > s.bboxMaxY {
				s.bboxMaxY = v.Y
			}
		}
	}
	s.bboxValid = true
}

// Polygon returns (and lazily rebuilds) a simple point-in-polygon
// representation assembled by walking connected sides' line segments.
func (s *Sector) Polygon() [][2]float64 {
	if !s.polygonValid {
		s.rebuildPolygon()
	}
	return s.polygon
}

func (s *Sector) rebuildPolygon() {
	s.polygon = s.polygon[:0]
	for _, side := range s.connectedSides {
		if side.Parent == nil {
			continue
		}
		s.polygon = append(s.polygon, [2]float64{side.Parent.V1.X, side.Parent.V1.Y})
	}
	s.polygonValid = true
}

// ContainsPoint reports whether p lies within the sector's polygon
// using the standard ray-casting test.
func (s *Sector) ContainsPoint(x, y float64) bool {
	poly := s.Polygon()
	if len(poly) < 3 {
		return false
	}
	inside := false
	j := len(poly) - 1
	for i := range poly {
		xi, yi := poly[i][0], poly[i][1]
		xj, yj := poly[j][0], poly[j][1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// Thing is a map thing (spec.md §3 MapThing).
type Thing struct {
	Object
	X, Y   float64
	Angle  int32
	Type   int32
}

func (t *Thing) setID(id ObjID) { t.id = id }
func (t *Thing) setIndex(i int) { t.index = i }
