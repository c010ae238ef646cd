package mapdata

import (
	"math"
	"sort"
)

const vertexMergeEpsilon = 0.01

func roundIfClose(v float64) float64 {
	r := math.Round(v)
	if math.Abs(v-r) < 1e-6 {
		return r
	}
	return v
}

func sameMark(x1, y1, x2, y2 float64) bool {
	return math.Abs(x1-x2) < vertexMergeEpsilon && math.Abs(y1-y2) < vertexMergeEpsilon
}

// CreateVertex creates (or reuses, if one already exists at p within
// merge tolerance) a vertex, then optionally splits any line passing
// within splitDist of it (spec.md §4.7 createVertex).
func (m *Map) CreateVertex(x, y, splitDist float64) *Vertex {
	x, y = roundIfClose(x), roundIfClose(y)
	for _, v := range m.vertices {
		if sameMark(v.X, v.Y, x, y) {
			return v
		}
	}
	v := m.NewVertex(x, y)
	if splitDist > 0 {
		m.splitLinesAt(v, splitDist)
	}
	return v
}

// CreateLine creates a line between two points, creating vertices as
// needed via CreateVertex (spec.md §4.7 createLine, point-pair form).
func (m *Map) CreateLine(x1, y1, x2, y2, splitDist float64) *Line {
	v1 := m.CreateVertex(x1, y1, splitDist)
	v2 := m.CreateVertex(x2, y2, splitDist)
	return m.CreateLineVertices(v1, v2, false)
}

// CreateLineVertices creates a line between two existing vertices. If
// force is false and an identical line already exists, it is reused
// rather than duplicated (spec.md §4.7 createLine, vertex-pair form).
func (m *Map) CreateLineVertices(v1, v2 *Vertex, force bool) *Line {
	if !force {
		for _, l := range v1.connectedLines {
			if (l.V1 == v1 && l.V2 == v2) || (l.V1 == v2 && l.V2 == v1) {
				return l
			}
		}
	}
	return m.NewLine(v1, v2)
}

// splitLine shortens line to end at vertex and creates a new line
// carrying the remainder, duplicating sides and copying line
// properties onto the new segment (spec.md §4.7 splitLine).
func (m *Map) splitLine(line *Line, vertex *Vertex) *Line {
	oldV2 := line.V2
	oldLen := line.Length()

	nl := m.NewLine(vertex, oldV2)
	nl.Special = line.Special
	nl.Flags = line.Flags
	nl.LineID = line.LineID
	line.Props().CopyTo(nl.Props())

	oldV2.removeConnectedLine(line)
	line.V2 = vertex
	vertex.addConnectedLine(line)
	line.setModified()

	if line.Side1 != nil {
		ns := m.NewSide(line.Side1.Sector)
		ns.TexUpper, ns.TexMiddle, ns.TexLower = line.Side1.TexUpper, line.Side1.TexMiddle, line.Side1.TexLower
		ns.OffsetX, ns.OffsetY = line.Side1.OffsetX, line.Side1.OffsetY
		line.Side1.Props().CopyTo(ns.Props())
		m.AttachSide(nl, ns, true)
		if m.SplitAutoOffset {
			ns.OffsetX += int32(oldLen)
		}
	}
	if line.Side2 != nil {
		ns := m.NewSide(line.Side2.Sector)
		ns.TexUpper, ns.TexMiddle, ns.TexLower = line.Side2.TexUpper, line.Side2.TexMiddle, line.Side2.TexLower
		ns.OffsetX, ns.OffsetY = line.Side2.OffsetX, line.Side2.OffsetY
		line.Side2.Props().CopyTo(ns.Props())
		m.AttachSide(nl, ns, false)
	}

	m.bumpGeometry()
	return nl
}

// splitLinesAt splits every existing line passing within splitDist of
// vertex (excluding lines that already end at it).
func (m *Map) splitLinesAt(vertex *Vertex, splitDist float64) {
	for _, l := range append([]*Line(nil), m.lines...) {
		if l.V1 == vertex || l.V2 == vertex {
			continue
		}
		if l.DistanceTo(vertex.X, vertex.Y) <= splitDist {
			m.splitLine(l, vertex)
		}
	}
}

// mergeVertices merges vertex at index j into the vertex at index i:
// every line referencing j is rewired to i, and lines left with zero
// length as a result are removed (spec.md §4.7 mergeVertices).
func (m *Map) mergeVertices(i, j int) *Vertex {
	if i < 0 || j < 0 || i >= len(m.vertices) || j >= len(m.vertices) || i == j {
		return nil
	}
	keep := m.vertices[i]
	drop := m.vertices[j]

	for _, l := range append([]*Line(nil), drop.connectedLines...) {
		if l.V1 == drop {
			l.V1 = keep
		}
		if l.V2 == drop {
			l.V2 = keep
		}
		drop.removeConnectedLine(l)
		keep.addConnectedLine(l)
		l.setModified()
	}

	m.RemoveVertex(drop)

	for _, l := range append([]*Line(nil), keep.connectedLines...) {
		if l.V1 == l.V2 {
			m.RemoveLine(l)
		}
	}
	return keep
}

// mergeVerticesPoint repeatedly merges every vertex within merge
// tolerance of p until at most one remains, returning the survivor
// (spec.md §4.7 mergeVerticesPoint).
func (m *Map) mergeVerticesPoint(x, y float64) *Vertex {
	for {
		var group []int
		for idx, v := range m.vertices {
			if sameMark(v.X, v.Y, x, y) {
				group = append(group, idx)
			}
		}
		if len(group) < 2 {
			if len(group) == 1 {
				return m.vertices[group[0]]
			}
			return nil
		}
		m.mergeVertices(group[0], group[1])
	}
}

// mergeLine removes duplicate lines sharing both endpoints with the
// line at index, keeping the first, then calls correctLineSectors on
// the survivor (spec.md §4.7 mergeLine).
func (m *Map) mergeLine(index int) *Line {
	if index < 0 || index >= len(m.lines) {
		return nil
	}
	keep := m.lines[index]
	for _, l := range append([]*Line(nil), keep.V1.connectedLines...) {
		if l == keep {
			continue
		}
		if sameEndpoints(keep, l) {
			m.RemoveLine(l)
		}
	}
	m.correctLineSectors(keep)
	return keep
}

func sameEndpoints(a, b *Line) bool {
	return (a.V1 == b.V1 && a.V2 == b.V2) || (a.V1 == b.V2 && a.V2 == b.V1)
}

// mergeArch runs the draw-tool merge algorithm over a set of freshly
// drawn vertices (spec.md §4.7 mergeArch): merge coincident survivors,
// split existing geometry against the new lines and vice versa, drop
// exactly-overlapping line pairs (carrying side data onto the
// survivor), rebuild sectors for the affected region, and normalize
// any line left with only a back side.
func (m *Map) mergeArch(verticesToProcess []*Vertex) []*Line {
	const tolerance = 0.1

	survivors := make(map[*Vertex]bool)
	for _, v := range verticesToProcess {
		merged := m.mergeVerticesPoint(v.X, v.Y)
		if merged != nil {
			survivors[merged] = true
		}
	}

	var affected []*Line
	seen := map[*Line]bool{}
	for v := range survivors {
		for _, l := range v.connectedLines {
			if !seen[l] {
				seen[l] = true
				affected = append(affected, l)
			}
		}
	}

	for v := range survivors {
		m.splitLinesAt(v, tolerance)
	}

	affected = m.splitIntersections(affected, tolerance)
	affected = m.removeOverlaps(affected)

	m.correctSectors(affected, true)

	for _, l := range affected {
		if l.Side1 == nil && l.Side2 != nil {
			l.Flip()
		}
	}

	return affected
}

// splitIntersections finds pairwise line-line intersections among
// lines and splits both lines there, returning the expanded set.
func (m *Map) splitIntersections(lines []*Line, tolerance float64) []*Line {
	result := append([]*Line(nil), lines...)
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			a, b := result[i], result[j]
			if a == b {
				continue
			}
			px, py, ok := segmentIntersect(a.V1.X, a.V1.Y, a.V2.X, a.V2.Y, b.V1.X, b.V1.Y, b.V2.X, b.V2.Y)
			if !ok {
				continue
			}
			if (sameMark(px, py, a.V1.X, a.V1.Y) || sameMark(px, py, a.V2.X, a.V2.Y)) &&
				(sameMark(px, py, b.V1.X, b.V1.Y) || sameMark(px, py, b.V2.X, b.V2.Y)) {
				continue
			}
			v := m.CreateVertex(px, py, 0)
			if a.V1 != v && a.V2 != v {
				nl := m.splitLine(a, v)
				result = append(result, nl)
			}
			if b.V1 != v && b.V2 != v {
				nl := m.splitLine(b, v)
				result = append(result, nl)
			}
			_ = tolerance
		}
	}
	return result
}

// removeOverlaps drops one of every pair of lines that share both
// endpoints, transferring the removed line's populated side onto the
// survivor when the survivor is missing it.
func (m *Map) removeOverlaps(lines []*Line) []*Line {
	var result []*Line
	dropped := map[*Line]bool{}
	for i, a := range lines {
		if dropped[a] {
			continue
		}
		for j := i + 1; j < len(lines); j++ {
			b := lines[j]
			if dropped[b] || !sameEndpoints(a, b) {
				continue
			}
			if a.Side1 == nil && b.Side1 != nil {
				m.AttachSide(a, b.Side1, true)
				b.Side1 = nil
			}
			if a.Side2 == nil && b.Side2 != nil {
				m.AttachSide(a, b.Side2, false)
				b.Side2 = nil
			}
			dropped[b] = true
			m.RemoveLine(b)
		}
		result = append(result, a)
	}
	return result
}

// segmentIntersect returns the intersection point of segments p1p2
// and p3p4, if one exists within both segments' bounds.
func segmentIntersect(x1, y1, x2, y2, x3, y3, x4, y4 float64) (float64, float64, bool) {
	d := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if math.Abs(d) < 1e-9 {
		return 0, 0, false
	}
	t := ((x1-x3)*(y3-y4) - (y1-y3)*(x3-x4)) / d
	u := ((x1-x3)*(y1-y2) - (y1-y3)*(x1-x2)) / d
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return 0, 0, false
	}
	return x1 + t*(x2-x1), y1 + t*(y2-y1), true
}

// correctLineSectors traces a perpendicular ray from each side of line
// that is missing a sector, finds (or leaves null for the void) the
// enclosing sector, and creates a side referencing it. A line ending
// up with only a back side is flipped (spec.md §4.7 correctLineSectors).
func (m *Map) correctLineSectors(line *Line) {
	midX := (line.V1.X + line.V2.X) / 2
	midY := (line.V1.Y + line.V2.Y) / 2
	dx, dy := line.V2.X-line.V1.X, line.V2.Y-line.V1.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx, ny := -dy/length, dx/length
	const probe = 1.0

	if line.Side1 == nil {
		if s := m.SectorAt(midX+nx*probe, midY+ny*probe); s != nil {
			side := m.NewSide(s)
			m.AttachSide(line, side, true)
		}
	}
	if line.Side2 == nil {
		if s := m.SectorAt(midX-nx*probe, midY-ny*probe); s != nil {
			side := m.NewSide(s)
			m.AttachSide(line, side, false)
		}
	}
	if line.Side1 == nil && line.Side2 != nil {
		line.Flip()
	}
}

// correctSectors rebuilds sector assignments for the closed polygon
// loops formed by lines. Only loops enclosing a positive area (the
// counter-clockwise faces traceLoops yields) are filled; the reversed
// outer boundary of a region faces the void and is skipped. A loop
// reuses a sector already on one of its inward sides when there is
// one; otherwise, unless existingOnly is true, it gets a new sector
// with floor, ceiling and light copied from a neighboring sector
// (spec.md §4.7 correctSectors). With existingOnly and no reusable
// sector, the loop is left without sides.
func (m *Map) correctSectors(lines []*Line, existingOnly bool) {
	loops := traceLoops(lines)
	for _, loop := range loops {
		if len(loop) < 3 {
			continue
		}
		area := 0.0
		for _, e := range loop {
			a, b := e.line.V1, e.line.V2
			if !e.forward {
				a, b = b, a
			}
			area += a.X*b.Y - b.X*a.Y
		}
		if area <= 0 {
			continue
		}
		var reuse *Sector
		for _, e := range loop {
			if e.line.Side1 != nil && e.forward {
				reuse = e.line.Side1.Sector
				break
			}
			if e.line.Side2 != nil && !e.forward {
				reuse = e.line.Side2.Sector
				break
			}
		}
		var target *Sector
		if reuse != nil {
			target = reuse
		} else if !existingOnly {
			target = m.NewSector()
			if neighbor := loopNeighborSector(loop); neighbor != nil {
				target.Floor = neighbor.Floor
				target.Ceiling = neighbor.Ceiling
				target.Light = neighbor.Light
			}
		}
		if target == nil {
			continue
		}
		for _, e := range loop {
			if e.forward && e.line.Side1 == nil {
				side := m.NewSide(target)
				m.AttachSide(e.line, side, true)
			} else if !e.forward && e.line.Side2 == nil {
				side := m.NewSide(target)
				m.AttachSide(e.line, side, false)
			}
		}
	}
	m.removeDetachedSectors()
}

func loopNeighborSector(loop []loopEdge) *Sector {
	for _, e := range loop {
		if e.forward && e.line.Side2 != nil {
			return e.line.Side2.Sector
		}
		if !e.forward && e.line.Side1 != nil {
			return e.line.Side1.Sector
		}
	}
	return nil
}

// loopEdge is one directed traversal of a line within a traced loop.
type loopEdge struct {
	line    *Line
	forward bool // true if traversed v1->v2
}

// traceLoops walks the planar graph formed by lines, at each vertex
// turning onto the next edge clockwise from the edge just walked, to
// recover closed polygon loops, each being the face on the left of its
// edges (the classic doubly-connected-edge-list walk used by
// Doom-style sector builders).
func traceLoops(lines []*Line) [][]loopEdge {
	type dirEdge struct {
		line    *Line
		from    *Vertex
		to      *Vertex
		forward bool
	}
	var edges []dirEdge
	for _, l := range lines {
		edges = append(edges, dirEdge{l, l.V1, l.V2, true})
		edges = append(edges, dirEdge{l, l.V2, l.V1, false})
	}

	byVertex := map[*Vertex][]dirEdge{}
	for _, e := range edges {
		byVertex[e.from] = append(byVertex[e.from], e)
	}
	for v, es := range byVertex {
		sort.Slice(es, func(i, j int) bool {
			return math.Atan2(es[i].to.Y-v.Y, es[i].to.X-v.X) < math.Atan2(es[j].to.Y-v.Y, es[j].to.X-v.X)
		})
		byVertex[v] = es
	}

	used := map[dirEdge]bool{}
	var loops [][]loopEdge
	for _, start := range edges {
		if used[start] {
			continue
		}
		var loop []loopEdge
		cur := start
		for i := 0; i < len(edges)+1; i++ {
			if used[cur] {
				break
			}
			used[cur] = true
			loop = append(loop, loopEdge{cur.line, cur.forward})
			candidates := byVertex[cur.to]
			back := math.Atan2(cur.from.Y-cur.to.Y, cur.from.X-cur.to.X)
			var next dirEdge
			found := false
			bestTurn := 0.0
			for _, c := range candidates {
				if c.to == cur.from && c.line == cur.line {
					continue
				}
				// clockwise angle from the edge just walked (reversed) to c
				turn := back - math.Atan2(c.to.Y-cur.to.Y, c.to.X-cur.to.X)
				for turn <= 0 {
					turn += 2 * math.Pi
				}
				if !found || turn < bestTurn {
					next, bestTurn, found = c, turn, true
				}
			}
			if !found || next.from == start.from && used[next] {
				break
			}
			cur = next
			if cur == start {
				break
			}
		}
		if len(loop) >= 3 {
			loops = append(loops, loop)
		}
	}
	return loops
}
