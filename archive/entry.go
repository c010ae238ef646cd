package archive

import (
	"strings"

	"github.com/sirjuddington/slade-core/property"
)

// State is an entry's modification state relative to its last save.
type State int

const (
	StateUnmodified State = iota
	StateModified
	StateNew
)

func (s State) String() string {
	switch s {
	case StateUnmodified:
		return "unmodified"
	case StateModified:
		return "modified"
	case StateNew:
		return "new"
	default:
		return "unknown"
	}
}

// Encryption identifies an entry's on-disk encryption scheme.
type Encryption int

const (
	EncryptionNone Encryption = iota
	EncryptionJaguar
)

// Entry is a named byte payload within an Archive (spec.md §3
// ArchiveEntry). Its bytes may be loaded lazily: when Loaded is false
// and Size > 0, Data() routes through the owning archive's
// loadEntryData hook on first access.
type Entry struct {
	name       string
	size       int64
	data       []byte
	loaded     bool
	state      State
	locked     bool
	encryption Encryption

	offsetOnDisk uint32
	sizeOnDisk   uint32

	exProps property.List

	parent *Archive
	dir    *Dir

	lockedForLoad bool
}

// NewEntry creates a detached entry with the given name and bytes.
// Detached entries carry state New until added to an archive (an
// archive's addEntry may instead leave the state as given, matching
// the source's convention of New for brand-new user-created entries).
func NewEntry(name string, data []byte) *Entry {
	return &Entry{
		name:   name,
		data:   data,
		size:   int64(len(data)),
		loaded: true,
		state:  StateNew,
	}
}

// newLazyEntry creates an entry whose bytes are not yet loaded; size is
// the logical (decompressed, for formats that need it) size that Data()
// will produce on first load.
func newLazyEntry(name string, size int64) *Entry {
	return &Entry{name: name, size: size, loaded: false, state: StateUnmodified}
}

// Name returns the entry's raw name.
func (e *Entry) Name() string { return e.name }

// UpperName returns the name upper-cased.
func (e *Entry) UpperName() string { return strings.ToUpper(e.name) }

// NameNoExt returns the name with any trailing ".ext" removed.
func (e *Entry) NameNoExt() string {
	if i := strings.LastIndexByte(e.name, '.'); i > 0 {
		return e.name[:i]
	}
	return e.name
}

// Size returns the entry's logical size.
func (e *Entry) Size() int64 { return e.size }

// Loaded reports whether the byte buffer has been populated.
func (e *Entry) Loaded() bool { return e.loaded }

// State returns the entry's modification state.
func (e *Entry) State() State { return e.state }

// SetState transitions the entry's state. New never moves backward to
// Unmodified except via forceUnmodified (called by writers on
// successful save); Unmodified/Modified can always advance to
// Modified.
func (e *Entry) SetState(s State) {
	if s == StateUnmodified && e.state == StateNew {
		// New->Unmodified only happens via forceUnmodified after save.
		return
	}
	e.state = s
	if e.parent != nil {
		e.parent.markModified()
		e.parent.bus.emit(e.parent, Event{Kind: SignalEntryStateChanged, Entry: e})
	}
}

// forceUnmodified is used by writers after a successful save.
func (e *Entry) forceUnmodified() { e.state = StateUnmodified }

// Locked reports whether the entry refuses mutation (IWAD lumps, the
// texture editor, etc).
func (e *Entry) Locked() bool { return e.locked }

// SetLocked sets the locked flag.
func (e *Entry) SetLocked(v bool) { e.locked = v }

// Encryption returns the entry's encryption scheme.
func (e *Entry) Encryption() Encryption { return e.encryption }

// SetEncryption sets the entry's encryption scheme.
func (e *Entry) SetEncryption(enc Encryption) { e.encryption = enc }

// ExProps returns the entry's extra property list (filePath, ZipIndex,
// VWadIndex, FullSize, ...).
func (e *Entry) ExProps() *property.List { return &e.exProps }

// OffsetOnDisk/SizeOnDisk record a WAD entry's last-written position,
// used for incremental-save comparisons.
func (e *Entry) OffsetOnDisk() uint32 { return e.offsetOnDisk }
func (e *Entry) SizeOnDisk() uint32   { return e.sizeOnDisk }

func (e *Entry) setOnDiskPos(offset, size uint32) {
	e.offsetOnDisk = offset
	e.sizeOnDisk = size
}

// ParentDir returns the directory currently holding this entry, or nil
// if detached.
func (e *Entry) ParentDir() *Dir { return e.dir }

// Archive returns the owning archive, or nil if detached.
func (e *Entry) Archive() *Archive { return e.parent }

// Data returns the entry's bytes, triggering a lazy load through the
// owning archive if necessary.
func (e *Entry) Data() ([]byte, error) {
	if e.loaded || e.parent == nil {
		return e.data, nil
	}
	if e.lockedForLoad {
		return nil, wrap(ErrCorrupt, "reentrant load of entry %q", e.name)
	}
	e.lockedForLoad = true
	defer func() { e.lockedForLoad = false }()

	data, err := e.parent.loadEntryData(e)
	if err != nil {
		return nil, err
	}
	e.data = data
	e.loaded = true
	return e.data, nil
}

// SetData replaces the entry's bytes directly (used by in-memory
// construction and by format loaders after decoding/decompression).
func (e *Entry) SetData(data []byte) {
	e.data = data
	e.size = int64(len(data))
	e.loaded = true
}

// Rename changes the entry's raw name without any archive-level
// validation; Archive.RenameEntry applies the format-specific rules
// (8-char WAD truncation, duplicate checks) before calling this.
func (e *Entry) rename(name string) { e.name = name }
