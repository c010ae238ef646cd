package mapdata

import (
	"testing"

	"github.com/sirjuddington/slade-core/property"
)

func TestTextureUsageCaseInsensitive(t *testing.T) {
	m := NewMap()
	sec := m.NewSector()
	side := m.NewSide(sec)
	side.TexMiddle = "STARTAN3"

	if got := m.usageCount("startan3", false); got != 1 {
		t.Errorf("usageCount(startan3) = %d, want 1", got)
	}

	m.RemoveSide(side)
	if got := m.usageCount("STARTAN3", false); got != 0 {
		t.Errorf("usageCount(STARTAN3) after RemoveSide = %d, want 0", got)
	}
}

func TestDashTextureNotTracked(t *testing.T) {
	m := NewMap()
	sec := m.NewSector()
	m.NewSide(sec) // default textures are "-"

	if got := m.usageCount("-", false); got != 0 {
		t.Errorf("usageCount(-) = %d, want 0 (placeholder not tracked)", got)
	}
}

func TestPutSectorsWithTag(t *testing.T) {
	m := NewMap()
	s1 := m.NewSector()
	s1.SecID = 5
	s2 := m.NewSector()
	s2.SecID = 7

	var out []*Sector
	out = m.PutSectorsWithTag(5, out)
	if len(out) != 1 || out[0] != s1 {
		t.Errorf("PutSectorsWithTag(5) = %v, want [s1]", out)
	}
}

func TestFindUnusedSectorTag(t *testing.T) {
	m := NewMap()
	s1 := m.NewSector()
	s1.SecID = 1
	s2 := m.NewSector()
	s2.SecID = 2

	if got := m.FindUnusedSectorTag(); got != 3 {
		t.Errorf("FindUnusedSectorTag() = %d, want 3", got)
	}
}

func TestFindUnusedLineIDByFormat(t *testing.T) {
	m := NewMap()
	m.CurrentFormat = FormatHexen
	v1, v2 := m.NewVertex(0, 0), m.NewVertex(1, 1)
	l := m.NewLine(v1, v2)
	l.Special = 121
	l.Props().Set("arg0", property.Int(4))

	if got := m.FindUnusedLineID(); got != 1 {
		t.Errorf("FindUnusedLineID() (Hexen, special-121 arg0=4 taken) = %d, want 1", got)
	}
}

func TestPutTaggingThingsWithIDChecksCorrectArgPositions(t *testing.T) {
	argNames := [...]string{"arg0", "arg1", "arg2", "arg3", "arg4"}
	newThing := func(m *Map, args ...int32) *Thing {
		th := m.NewThing(0, 0)
		for i, a := range args {
			th.Props().Set(argNames[i], property.Int(a))
		}
		return th
	}

	m := NewMap()
	t3arg1 := newThing(m, 0, 9, 0, 0, 0)
	t3arg2 := newThing(m, 0, 0, 9, 0, 0)
	var out []*Thing
	out = m.PutTaggingThingsWithID(9, TagThing1Thing2Thing3, out)
	if len(out) != 2 || out[0] != t3arg1 || out[1] != t3arg2 {
		t.Errorf("PutTaggingThingsWithID(TagThing1Thing2Thing3) = %v, want [arg1-match arg2-match]", out)
	}

	m2 := NewMap()
	t4arg3 := newThing(m2, 0, 0, 0, 9, 0)
	out = nil
	out = m2.PutTaggingThingsWithID(9, TagThing1Thing4, out)
	if len(out) != 1 || out[0] != t4arg3 {
		t.Errorf("PutTaggingThingsWithID(TagThing1Thing4) = %v, want [arg3-match]", out)
	}

	m3 := NewMap()
	s135arg0 := newThing(m3, 9, 0, 0, 0, 0) // arg0 is the sector tag, must not match
	s135arg1 := newThing(m3, 0, 9, 0, 0, 0)
	s135arg4 := newThing(m3, 0, 0, 0, 0, 9)
	out = nil
	out = m3.PutTaggingThingsWithID(9, TagSector1Thing2Thing3Thing5, out)
	for _, th := range out {
		if th == s135arg0 {
			t.Errorf("PutTaggingThingsWithID(TagSector1Thing2Thing3Thing5) matched arg0, which is the sector tag")
		}
	}
	if len(out) != 2 || out[0] != s135arg1 || out[1] != s135arg4 {
		t.Errorf("PutTaggingThingsWithID(TagSector1Thing2Thing3Thing5) = %v, want [arg1-match arg4-match]", out)
	}

	m4 := NewMap()
	s1t2arg0 := newThing(m4, 9, 0, 0, 0, 0) // arg0 is the sector tag, must not match
	s1t2arg1 := newThing(m4, 0, 9, 0, 0, 0)
	out = nil
	out = m4.PutTaggingThingsWithID(9, TagSector1Thing2, out)
	for _, th := range out {
		if th == s1t2arg0 {
			t.Errorf("PutTaggingThingsWithID(TagSector1Thing2) matched arg0, which is the sector tag")
		}
	}
	if len(out) != 1 || out[0] != s1t2arg1 {
		t.Errorf("PutTaggingThingsWithID(TagSector1Thing2) = %v, want [arg1-match]", out)
	}
}

func TestPutDragonTargetsWalksIDChain(t *testing.T) {
	m := NewMap()
	origin := m.NewThing(0, 0)
	origin.Props().Set("id", property.Int(5))

	sameGroup := m.NewThing(1, 1)
	sameGroup.Props().Set("id", property.Int(5))

	unrelated := m.NewThing(2, 2)
	unrelated.Props().Set("id", property.Int(9))

	var out []*Thing
	out = m.PutDragonTargets(origin, out)

	if len(out) != 1 || out[0] != sameGroup {
		t.Errorf("PutDragonTargets() = %v, want [sameGroup]", out)
	}
	for _, th := range out {
		if th == unrelated {
			t.Errorf("PutDragonTargets() should not include unrelated thing with a different id")
		}
	}
}
