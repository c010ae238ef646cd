// Package mapdata implements SLADEMap: the typed object store and
// geometry engine shared by every map wire format (spec.md §3
// MapObject, §4.6, §4.7).
package mapdata

import (
	"github.com/sirjuddington/slade-core/property"
)

// ObjID is a stable, monotonic slot index assigned by a Map's
// allocator. 0 is reserved null (spec.md §3).
type ObjID uint32

// Kind identifies which typed vector a MapObject belongs to.
type Kind int

const (
	KindVertex Kind = iota
	KindSide
	KindLine
	KindSector
	KindThing
)

// Object is the common header embedded in every map object kind.
type Object struct {
	id           ObjID
	index        int
	kind         Kind
	parentMap    *Map
	modifiedTime uint64
	props        property.List
}

// ID returns the object's stable allocator slot index.
func (o *Object) ID() ObjID { return o.id }

// Index returns the object's position within its kind's typed vector.
func (o *Object) Index() int { return o.index }

// Kind returns which typed vector this object belongs to.
func (o *Object) Kind() Kind { return o.kind }

// Map returns the owning map.
func (o *Object) Map() *Map { return o.parentMap }

// ModifiedTime returns the tick at which this object was last changed.
func (o *Object) ModifiedTime() uint64 { return o.modifiedTime }

// Props returns the object's format-agnostic extra property list.
func (o *Object) Props() *property.List { return &o.props }

// setModified advances the map's undo tick and stamps the object with
// it (spec.md §4.6 "Undo hook contract"). It does not touch the
// created/deleted history.
func (o *Object) setModified() {
	if o.parentMap == nil {
		return
	}
	o.parentMap.tick++
	o.modifiedTime = o.parentMap.tick
}

// changeKind records whether an allocator slot event was an addition
// or removal, for created_deleted_objects (spec.md §4.6).
type changeKind int

const (
	changeAdded changeKind = iota
	changeRemoved
)

type objChange struct {
	id   ObjID
	kind changeKind
}

// slot is one entry in the allocator's backing vector. Slots are never
// reused, so an ObjID remains a stable reference even after removal —
// required for undo to resurrect an object by id (spec.md §4.6).
type slot struct {
	obj   allocatable
	inMap bool
}

// allocatable is satisfied by every concrete map object kind pointer.
type allocatable interface {
	setID(ObjID)
	setIndex(int)
}
