package mapdata

import (
	"math"
	"strings"

	"github.com/sirjuddington/slade-core/property"
)

// Format identifies a map's wire format (mirrors archive.MapFormat,
// kept independent so mapdata has no import-cycle on archive).
type Format int

const (
	FormatDoom Format = iota
	FormatHexen
	FormatDoom64
	FormatUDMF
)

// UdmfExtraEntry is a pass-through lump carried alongside a UDMF map
// that SLADEMap doesn't interpret itself (spec.md §4.8 step 4).
type UdmfExtraEntry struct {
	Name string
	Data []byte
}

// Map is SLADEMap: the typed object store and geometry engine shared
// by every wire format (spec.md §3 "Global map state", §4.6, §4.7).
type Map struct {
	allSlots []slot

	vertices []*Vertex
	sides    []*Side
	lines    []*Line
	sectors  []*Sector
	things   []*Thing

	usageTex       map[string]int
	usageFlat      map[string]int
	usageThingType map[int32]int

	CurrentFormat   Format
	UDMFNamespace   string
	UDMFProps       property.List
	UDMFExtraEntries []UdmfExtraEntry

	OpenedTime      int64
	geometryUpdated uint64
	thingsUpdated   uint64

	tick      uint64
	recording bool
	history   []objChange

	// SplitAutoOffset mirrors the map_split_auto_offset config key
	// (spec.md §4.7 splitLine step 4).
	SplitAutoOffset bool

	// RecomputeSpecials is invoked at the end of an undo-record scope
	// (spec.md §4.6); nil is a valid no-op default.
	RecomputeSpecials func()
}

// NewMap constructs an empty map with slot 0 reserved as the null
// object id.
func NewMap() *Map {
	return &Map{
		allSlots:       make([]slot, 1),
		usageTex:       map[string]int{},
		usageFlat:      map[string]int{},
		usageThingType: map[int32]int{},
	}
}

func (m *Map) allocate(o allocatable) ObjID {
	id := ObjID(len(m.allSlots))
	m.allSlots = append(m.allSlots, slot{obj: o, inMap: true})
	o.setID(id)
	if m.recording {
		m.history = append(m.history, objChange{id: id, kind: changeAdded})
	}
	return id
}

func (m *Map) release(id ObjID) {
	if int(id) >= len(m.allSlots) {
		return
	}
	m.allSlots[id].inMap = false
	if m.recording {
		m.history = append(m.history, objChange{id: id, kind: changeRemoved})
	}
}

// StartRecording begins an undo-record scope: creates/deletes append
// to created_deleted_objects until StopRecording.
func (m *Map) StartRecording() { m.recording = true }

// StopRecording ends the current undo-record scope and triggers
// RecomputeSpecials (spec.md §4.6).
func (m *Map) StopRecording() {
	m.recording = false
	if m.RecomputeSpecials != nil {
		m.RecomputeSpecials()
	}
}

// History returns the created/deleted object log: one entry per
// create or delete made while recording, across every record scope so
// far. Map never clears it.
func (m *Map) History() []objChange { return m.history }

func (m *Map) bumpGeometry() { m.geometryUpdated++ }
func (m *Map) bumpThings()   { m.thingsUpdated++ }

// --- low-level object creation, used by both format readers and the
// higher-level geometry ops (createVertex/createLine/...) ---

// NewVertex allocates a bare vertex with no dedup/splitting.
func (m *Map) NewVertex(x, y float64) *Vertex {
	v := &Vertex{X: x, Y: y}
	v.kind = KindVertex
	v.parentMap = m
	m.allocate(v)
	v.index = len(m.vertices)
	m.vertices = append(m.vertices, v)
	return v
}

// NewSector allocates a bare sector.
func (m *Map) NewSector() *Sector {
	s := &Sector{}
	s.kind = KindSector
	s.parentMap = m
	m.allocate(s)
	s.index = len(m.sectors)
	m.sectors = append(m.sectors, s)
	return s
}

// NewSide allocates a side attached to sector (sector may be nil
// briefly during construction, per spec.md §3 MapSide).
func (m *Map) NewSide(sector *Sector) *Side {
	s := newSide()
	s.kind = KindSide
	s.parentMap = m
	s.Sector = sector
	m.allocate(s)
	s.index = len(m.sides)
	m.sides = append(m.sides, s)
	if sector != nil {
		sector.addConnectedSide(s)
		m.trackTexUsage(s, 1)
	}
	return s
}

// NewLine allocates a bare line between v1 and v2 with no sides.
func (m *Map) NewLine(v1, v2 *Vertex) *Line {
	l := &Line{V1: v1, V2: v2}
	l.kind = KindLine
	l.parentMap = m
	m.allocate(l)
	l.index = len(m.lines)
	m.lines = append(m.lines, l)
	v1.addConnectedLine(l)
	v2.addConnectedLine(l)
	m.bumpGeometry()
	return l
}

// AttachSide wires side as line's front (front=true) or back side.
func (m *Map) AttachSide(l *Line, side *Side, front bool) {
	side.Parent = l
	if front {
		l.Side1 = side
	} else {
		l.Side2 = side
	}
}

// NewThing allocates a bare thing.
func (m *Map) NewThing(x, y float64) *Thing {
	t := &Thing{X: x, Y: y}
	t.kind = KindThing
	t.parentMap = m
	m.allocate(t)
	t.index = len(m.things)
	m.things = append(m.things, t)
	m.trackThingUsage(t, 1)
	m.bumpThings()
	return t
}

func (m *Map) trackTexUsage(s *Side, delta int) {
	for _, tex := range []string{s.TexUpper, s.TexMiddle, s.TexLower} {
		if tex == "" || tex == "-" {
			continue
		}
		key := strings.ToLower(tex)
		m.usageTex[key] += delta
	}
}

func (m *Map) trackThingUsage(t *Thing, delta int) {
	m.usageThingType[t.Type] += delta
}

// Vertices/Sides/Lines/Sectors/Things return the typed vectors.
func (m *Map) Vertices() []*Vertex { return m.vertices }
func (m *Map) Sides() []*Side      { return m.sides }
func (m *Map) Lines() []*Line      { return m.lines }
func (m *Map) Sectors() []*Sector  { return m.sectors }
func (m *Map) Things() []*Thing    { return m.things }

// refreshIndices reassigns contiguous index values per typed vector;
// must be called after bulk removals (spec.md §4.6).
func (m *Map) refreshIndices() {
	for i, v := range m.vertices {
		v.index = i
	}
	for i, s := range m.sides {
		s.index = i
	}
	for i, l := range m.lines {
		l.index = i
	}
	for i, s := range m.sectors {
		s.index = i
	}
	for i, t := range m.things {
		t.index = i
	}
}

// RemoveVertex detaches and deletes v (callers are expected to have
// already removed/merged any connected lines).
func (m *Map) RemoveVertex(v *Vertex) {
	idx := v.index
	m.vertices = append(m.vertices[:idx], m.vertices[idx+1:]...)
	m.release(v.id)
	m.refreshIndices()
	m.bumpGeometry()
}

// RemoveLine detaches l from its vertices/sides and deletes it.
func (m *Map) RemoveLine(l *Line) {
	l.V1.removeConnectedLine(l)
	l.V2.removeConnectedLine(l)
	if l.Side1 != nil {
		m.RemoveSide(l.Side1)
	}
	if l.Side2 != nil {
		m.RemoveSide(l.Side2)
	}
	idx := l.index
	m.lines = append(m.lines[:idx], m.lines[idx+1:]...)
	m.release(l.id)
	m.refreshIndices()
	m.bumpGeometry()
}

// RemoveSide detaches and deletes side.
func (m *Map) RemoveSide(side *Side) {
	if side.Sector != nil {
		side.Sector.removeConnectedSide(side)
	}
	m.trackTexUsage(side, -1)
	idx := side.index
	m.sides = append(m.sides[:idx], m.sides[idx+1:]...)
	m.release(side.id)
	m.refreshIndices()
}

// RemoveSector deletes sector (callers must already have reassigned
// or removed its connected sides).
func (m *Map) RemoveSector(s *Sector) {
	idx := s.index
	m.sectors = append(m.sectors[:idx], m.sectors[idx+1:]...)
	m.release(s.id)
	m.refreshIndices()
}

// RemoveThing deletes t.
func (m *Map) RemoveThing(t *Thing) {
	m.trackThingUsage(t, -1)
	idx := t.index
	m.things = append(m.things[:idx], m.things[idx+1:]...)
	m.release(t.id)
	m.refreshIndices()
	m.bumpThings()
}

// removeDetachedSectors drops any sector left with no connected sides
// (spec.md §4.7 correctSectors' final step).
func (m *Map) removeDetachedSectors() {
	var detached []*Sector
	for _, s := range m.sectors {
		if len(s.connectedSides) == 0 {
			detached = append(detached, s)
		}
	}
	for _, s := range detached {
		m.RemoveSector(s)
	}
}

// Bounds returns the axis-aligned bbox over all sector polygons (and
// optionally things), per spec.md §4.6 bounds(include_things).
func (m *Map) Bounds(includeThings bool) (minX, minY, maxX, maxY float64) {
	first := true
	for _, s := range m.sectors {
		x0, y0, x1, y1 := s.BBox()
		if len(s.connectedSides) == 0 {
			continue
		}
		if first {
			minX, minY, maxX, maxY = x0, y0, x1, y1
			first = false
			continue
		}
		minX, minY = math.Min(minX, x0), math.Min(minY, y0)
		maxX, maxY = math.Max(maxX, x1), math.Max(maxY, y1)
	}
	if includeThings {
		for _, t := range m.things {
			if first {
				minX, minY, maxX, maxY = t.X, t.Y, t.X, t.Y
				first = false
				continue
			}
			minX, minY = math.Min(minX, t.X), math.Min(minY, t.Y)
			maxX, maxY = math.Max(maxX, t.X), math.Max(maxY, t.Y)
		}
	}
	return
}

// SectorAt scans sector polygons in index order and returns the first
// containing p, or nil (spec.md §4.6).
func (m *Map) SectorAt(x, y float64) *Sector {
	for _, s := range m.sectors {
		if s.ContainsPoint(x, y) {
			return s
		}
	}
	return nil
}

// NearestVertex returns the vertex nearest to p within maxDist, or nil:
// a cheap bbox reject against maxDist, then exact Euclidean distance
// for every remaining candidate (on a tie the later vertex wins).
func (m *Map) NearestVertex(x, y, maxDist float64) *Vertex {
	var best *Vertex
	bestDist := maxDist
	for _, v := range m.vertices {
		if math.Abs(v.X-x) > maxDist || math.Abs(v.Y-y) > maxDist {
			continue
		}
		d := v.DistanceTo(x, y)
		if d <= bestDist {
			bestDist = d
			best = v
		}
	}
	return best
}

// NearestLine as NearestVertex, using line-segment distance.
func (m *Map) NearestLine(x, y, maxDist float64) *Line {
	var best *Line
	bestDist := maxDist
	for _, l := range m.lines {
		x0, y0, x1, y1 := math.Min(l.V1.X, l.V2.X), math.Min(l.V1.Y, l.V2.Y), math.Max(l.V1.X, l.V2.X), math.Max(l.V1.Y, l.V2.Y)
		if x < x0-maxDist || x > x1+maxDist || y < y0-maxDist || y > y1+maxDist {
			continue
		}
		d := l.DistanceTo(x, y)
		if d <= bestDist {
			bestDist = d
			best = l
		}
	}
	return best
}

// NearestThing as NearestVertex.
func (m *Map) NearestThing(x, y, maxDist float64) *Thing {
	var best *Thing
	bestDist := maxDist
	for _, t := range m.things {
		if math.Abs(t.X-x) > maxDist || math.Abs(t.Y-y) > maxDist {
			continue
		}
		d := math.Hypot(t.X-x, t.Y-y)
		if d <= bestDist {
			bestDist = d
			best = t
		}
	}
	return best
}
