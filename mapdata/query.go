package mapdata

import "strings"

// TagType enumerates the published thing/line tagging conventions a
// game action special can reference (spec.md §4.6 "Tagging queries").
// The exact set and argument indices a special uses come from the
// loaded game configuration; callers pass the already-resolved type.
type TagType int

const (
	TagNone TagType = iota
	TagSector
	TagLineID
	TagLine
	TagLineID1Line2
	TagThing
	TagThing1Sector2
	TagThing1Sector3
	TagThing1Thing2
	TagThing1Thing4
	TagThing1Thing2Thing3
	TagSector1Thing2Thing3Thing5
	TagThing4
	TagThing5
	TagLine1Sector2
	TagSector1Sector2
	TagSector1Sector2Sector3Sector4
	TagSector2Is3Line
	TagSector1Thing2
	TagPatrol
	TagInterpolation
	TagLineNegative
)

// PutSectorsWithTag appends every sector whose SecID matches tag.
func (m *Map) PutSectorsWithTag(tag int32, out []*Sector) []*Sector {
	for _, s := range m.sectors {
		if s.SecID == tag {
			out = append(out, s)
		}
	}
	return out
}

// PutThingsWithID appends every thing whose id-typed special arg
// matches id, starting the scan at start and optionally filtering by
// thing type (typ == -1 matches any type).
func (m *Map) PutThingsWithID(id int32, start int, typ int32, out []*Thing) []*Thing {
	for i := start; i < len(m.things); i++ {
		t := m.things[i]
		if typ != -1 && t.Type != typ {
			continue
		}
		if prop, ok := t.Props().GetIf("id"); ok && prop.AsInt() == id {
			out = append(out, t)
		}
	}
	return out
}

// PutLinesWithID appends every line whose LineID matches id.
func (m *Map) PutLinesWithID(id int32, out []*Line) []*Line {
	for _, l := range m.lines {
		if l.LineID == id {
			out = append(out, l)
		}
	}
	return out
}

// PutThingsWithIDInSectorTag appends things tagged id that additionally
// sit within a sector tagged sectorTag.
func (m *Map) PutThingsWithIDInSectorTag(id int32, sectorTag int32, out []*Thing) []*Thing {
	for _, t := range m.things {
		prop, ok := t.Props().GetIf("id")
		if !ok || prop.AsInt() != id {
			continue
		}
		sec := m.SectorAt(t.X, t.Y)
		if sec != nil && sec.SecID == sectorTag {
			out = append(out, t)
		}
	}
	return out
}

// PutDragonTargets performs the breadth-first walk described in
// spec.md §4.6: starting from origin, follow every thing tagged with
// origin's own id outward, recursing through each discovered thing's
// own id tag, until no new things are found.
func (m *Map) PutDragonTargets(origin *Thing, out []*Thing) []*Thing {
	visited := map[ObjID]bool{origin.ID(): true}
	queue := []*Thing{origin}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		idProp, ok := cur.Props().GetIf("id")
		if !ok {
			continue
		}
		var found []*Thing
		found = m.PutThingsWithID(idProp.AsInt(), 0, -1, found)
		for _, t := range found {
			if visited[t.ID()] {
				continue
			}
			visited[t.ID()] = true
			out = append(out, t)
			queue = append(queue, t)
		}
	}
	return out
}

// PutTaggingThingsWithID appends every thing whose tag-type fields
// reference id under typ's convention (spec.md §4.6). Tag types that
// carry no thing argument, TagLineNegative included, match no thing.
func (m *Map) PutTaggingThingsWithID(id int32, typ TagType, out []*Thing) []*Thing {
	for _, t := range m.things {
		if thingTagMatches(t, id, typ) {
			out = append(out, t)
		}
	}
	return out
}

func thingTagMatches(t *Thing, id int32, typ TagType) bool {
	get := func(name string) (int32, bool) {
		p, ok := t.Props().GetIf(name)
		if !ok {
			return 0, false
		}
		return p.AsInt(), true
	}
	matchesAny := func(names ...string) bool {
		for _, name := range names {
			if v, ok := get(name); ok && v == id {
				return true
			}
		}
		return false
	}
	switch typ {
	case TagThing, TagThing1Sector2, TagThing1Sector3, TagThing1Thing2, TagPatrol, TagInterpolation:
		return matchesAny("arg0")
	case TagThing1Thing4:
		return matchesAny("arg0", "arg3")
	case TagThing1Thing2Thing3:
		return matchesAny("arg0", "arg1", "arg2")
	case TagSector1Thing2Thing3Thing5:
		return matchesAny("arg1", "arg2", "arg4")
	case TagSector1Thing2:
		return matchesAny("arg1")
	case TagThing4:
		return matchesAny("arg3")
	case TagThing5:
		return matchesAny("arg4")
	}
	return false
}

// PutTaggingLinesWithID is PutTaggingThingsWithID's line counterpart.
// TagLineNegative compares id against the absolute value of LineID.
func (m *Map) PutTaggingLinesWithID(id int32, typ TagType, out []*Line) []*Line {
	for _, l := range m.lines {
		if lineTagMatches(l, id, typ) {
			out = append(out, l)
		}
	}
	return out
}

func lineTagMatches(l *Line, id int32, typ TagType) bool {
	switch typ {
	case TagLine, TagLineID1Line2, TagLine1Sector2:
		return l.LineID == id
	case TagSector, TagSector1Sector2, TagSector1Sector2Sector3Sector4, TagSector2Is3Line:
		return l.Special == id
	case TagLineNegative:
		neg := l.LineID
		if neg < 0 {
			neg = -neg
		}
		return neg == id
	}
	return false
}

// FindUnusedSectorTag returns the lowest sector tag not already used
// by any sector (spec.md §4.6).
func (m *Map) FindUnusedSectorTag() int32 {
	used := map[int32]bool{}
	for _, s := range m.sectors {
		used[s.SecID] = true
	}
	return firstUnused(used)
}

// FindUnusedThingID returns the lowest thing id not already used by
// any thing's "id" property.
func (m *Map) FindUnusedThingID() int32 {
	used := map[int32]bool{}
	for _, t := range m.things {
		if p, ok := t.Props().GetIf("id"); ok {
			used[p.AsInt()] = true
		}
	}
	return firstUnused(used)
}

// FindUnusedLineID returns the lowest line id not already used,
// checking UDMF "id" in UDMF maps, arg0 of special-121 lines in Hexen
// maps, and arg0 of every line in Boom-format maps (spec.md §4.6).
func (m *Map) FindUnusedLineID() int32 {
	used := map[int32]bool{}
	switch m.CurrentFormat {
	case FormatUDMF:
		for _, l := range m.lines {
			if p, ok := l.Props().GetIf("id"); ok {
				used[p.AsInt()] = true
			}
		}
	case FormatHexen:
		const lineIDSpecial = 121
		for _, l := range m.lines {
			if l.Special != lineIDSpecial {
				continue
			}
			if p, ok := l.Props().GetIf("arg0"); ok {
				used[p.AsInt()] = true
			}
		}
	default:
		for _, l := range m.lines {
			if p, ok := l.Props().GetIf("arg0"); ok {
				used[p.AsInt()] = true
			}
		}
	}
	return firstUnused(used)
}

func firstUnused(used map[int32]bool) int32 {
	for i := int32(1); ; i++ {
		if !used[i] {
			return i
		}
	}
}

// usageCount returns how many times a case-insensitive texture or flat
// name is currently referenced, for resource-usage UI hints. The
// counters are rebuilt from the current sides (or sector floors and
// ceilings) first, since texture fields can be assigned directly.
func (m *Map) usageCount(name string, flat bool) int {
	key := strings.ToLower(name)
	if flat {
		m.usageFlat = map[string]int{}
		for _, s := range m.sectors {
			for _, tex := range []string{s.Floor.Texture, s.Ceiling.Texture} {
				if tex != "" && tex != "-" {
					m.usageFlat[strings.ToLower(tex)]++
				}
			}
		}
		return m.usageFlat[key]
	}
	m.usageTex = map[string]int{}
	for _, s := range m.sides {
		m.trackTexUsage(s, 1)
	}
	return m.usageTex[key]
}
