// Package archive implements the Archive abstraction and its four
// concrete codecs (WAD/ZIP/VWAD/Directory): a uniform in-memory model
// of a container-of-entries backed by several on-disk formats.
package archive

import (
	"path"
	"strings"
)

// Source identifies where Open reads an archive's bytes from. Exactly
// one field should be set.
type Source struct {
	Path  string      // filesystem path
	Bytes []byte      // in-memory buffer
	Entry *Entry      // embedded archive (e.g. a WAD stored inside another archive's entry)
}

// Codec implements the format-specific behavior an Archive delegates
// to: open/save, lazy entry loading, and map-range detection.
type Codec interface {
	FormatID() string
	// Treeless reports whether this format forbids real subdirectories
	// (true for WAD/WadJ: all entries live in the root).
	Treeless() bool
	Open(a *Archive, src Source, progress ProgressSink) error
	Save(a *Archive, pathOut string, progress ProgressSink) error
	LoadEntryData(a *Archive, e *Entry) ([]byte, error)
	DetectMaps(a *Archive) []MapDesc
}

// Archive is the root container of entries (spec.md §4.1). Concrete
// formats are constructed via OpenWAD/OpenZip/OpenVWad/OpenDir, which
// all return a *Archive configured with the matching Codec.
type Archive struct {
	filename string
	readOnly bool
	onDisk   bool
	modified bool

	root  *Dir
	codec Codec
	bus   signalBus

	// Classify, if set, lets SearchOptions.MatchType filter by a
	// caller-supplied notion of entry type; per spec.md §1 this core
	// does not itself classify entries beyond "what format is this
	// lump", so the classifier is an optional injected hook.
	Classify func(e *Entry) string
}

func newArchive(codec Codec) *Archive {
	a := &Archive{codec: codec, root: newRootDir()}
	return a
}

// FormatID returns e.g. "wad", "wadj", "zip", "vwad", "folder".
func (a *Archive) FormatID() string { return a.codec.FormatID() }

// Filename returns the archive's associated filesystem path, if any.
func (a *Archive) Filename() string { return a.filename }

// Modified reports whether the archive has unsaved changes.
func (a *Archive) Modified() bool { return a.modified }

// ReadOnly reports whether mutation is forbidden.
func (a *Archive) ReadOnly() bool { return a.readOnly }

// SetReadOnly sets the read-only flag.
func (a *Archive) SetReadOnly(v bool) { a.readOnly = v }

// OnDisk reports whether the archive has a backing file on disk.
func (a *Archive) OnDisk() bool { return a.onDisk }

// Root returns the archive's root directory.
func (a *Archive) Root() *Dir { return a.root }

// Subscribe registers h to receive all future signal emissions.
func (a *Archive) Subscribe(h Handler) { a.bus.subscribe(h) }

func (a *Archive) markModified() {
	a.modified = true
	a.bus.emit(a, Event{Kind: SignalArchiveModified})
}

func (a *Archive) loadEntryData(e *Entry) ([]byte, error) {
	return a.codec.LoadEntryData(a, e)
}

// Open dispatches to the archive's codec to populate the tree from
// src. On failure the archive's tree is left empty (open never leaves
// a partially-built tree, per spec.md §4.1/§7).
func (a *Archive) Open(src Source, progress ProgressSink) error {
	if progress == nil {
		progress = NoopProgress
	}
	// Reset to a clean empty tree before attempting to open, so a
	// failed open cannot leave stale state from a prior archive.
	a.root = newRootDir()
	a.modified = false
	if err := a.codec.Open(a, src, progress); err != nil {
		a.root = newRootDir()
		return err
	}
	if src.Path != "" {
		a.filename = src.Path
		a.onDisk = true
	}
	return nil
}

// Save writes the archive to pathOut (or Filename() if empty). On
// success every entry's state is cleared to Unmodified and the Saved
// signal fires.
func (a *Archive) Save(pathOut string, progress ProgressSink) error {
	if a.readOnly {
		return wrap(ErrReadOnly, "%s", a.filename)
	}
	if progress == nil {
		progress = NoopProgress
	}
	if pathOut == "" {
		pathOut = a.filename
	}
	if pathOut == "" {
		return wrap(ErrFileUnwritable, "no destination path")
	}
	if err := a.codec.Save(a, pathOut, progress); err != nil {
		return err
	}
	for _, e := range a.EntryTreeAsList(nil) {
		e.forceUnmodified()
	}
	a.filename = pathOut
	a.onDisk = true
	a.modified = false
	a.bus.emit(a, Event{Kind: SignalSaved})
	return nil
}

// resolveDir returns the Dir for dir, defaulting to root when nil.
func (a *Archive) resolveDir(dir *Dir) *Dir {
	if dir == nil {
		return a.root
	}
	return dir
}

// EndPosition is the sentinel meaning "append" for AddEntry/MoveEntry.
const EndPosition = -1

// AddEntry inserts entry into dir (root if nil) at position (or at the
// end if position is EndPosition). Emits EntryAdded and marks the
// archive modified.
func (a *Archive) AddEntry(entry *Entry, position int, dir *Dir) (*Entry, error) {
	if a.readOnly {
		return nil, wrap(ErrReadOnly, "%s", a.filename)
	}
	d := a.resolveDir(dir)
	if d.nameConflict(entry.Name(), nil) {
		return nil, &DuplicateNameError{Name: entry.Name(), Dir: d.Path()}
	}
	if position < 0 {
		position = len(d.entries)
	}
	d.insertEntry(entry, position)
	entry.parent = a
	a.markModified()
	a.bus.emit(a, Event{Kind: SignalEntryAdded, Entry: entry})
	return entry, nil
}

// RemoveEntry detaches entry from its directory. If setDeleted is true
// the entry's identity is considered gone (callers must not reuse it).
// Fails if the entry is locked or belongs to a different archive.
func (a *Archive) RemoveEntry(entry *Entry, setDeleted bool) (bool, error) {
	if a.readOnly {
		return false, wrap(ErrReadOnly, "%s", a.filename)
	}
	if entry.parent != a {
		return false, wrap(ErrNotOurs, "entry %q", entry.Name())
	}
	if entry.locked {
		return false, wrap(ErrLocked, "entry %q", entry.Name())
	}
	d := entry.dir
	if d == nil {
		return false, nil
	}
	idx := d.IndexOfEntry(entry)
	if idx < 0 {
		return false, nil
	}
	d.removeEntryAt(idx)
	if setDeleted {
		entry.parent = nil
	}
	a.markModified()
	a.bus.emit(a, Event{Kind: SignalEntryRemoved, Entry: entry})
	return true, nil
}

// RenameEntry renames entry. For WAD-family (treeless, 8-char) formats
// the codec is consulted via wadNameLimiter to truncate/strip unless
// force is set. Rejects the rename if it would create a duplicate.
func (a *Archive) RenameEntry(entry *Entry, newName string, force bool) (bool, error) {
	if a.readOnly {
		return false, wrap(ErrReadOnly, "%s", a.filename)
	}
	if entry.locked {
		return false, wrap(ErrLocked, "entry %q", entry.Name())
	}
	if lim, ok := a.codec.(wadNameLimiter); ok && !force {
		newName = lim.LimitName(newName)
	}
	d := entry.dir
	if d == nil {
		d = a.root
	}
	if d.nameConflict(newName, entry) {
		return false, &DuplicateNameError{Name: newName, Dir: d.Path()}
	}
	entry.rename(newName)
	entry.SetState(StateModified)
	a.markModified()
	a.bus.emit(a, Event{Kind: SignalEntryRenamed, Entry: entry})
	return true, nil
}

// wadNameLimiter lets WAD/WadJ codecs enforce the 8-char/no-extension
// naming rule from RenameEntry without Archive knowing format details.
type wadNameLimiter interface {
	LimitName(name string) string
}

// SwapEntries exchanges the positions of x and y, which must be direct
// siblings in the same directory.
func (a *Archive) SwapEntries(x, y *Entry) (bool, error) {
	if x.dir == nil || x.dir != y.dir {
		return false, wrap(ErrNotOurs, "entries not in the same directory")
	}
	d := x.dir
	i, j := d.IndexOfEntry(x), d.IndexOfEntry(y)
	if i < 0 || j < 0 {
		return false, nil
	}
	d.swapEntries(i, j)
	a.markModified()
	a.bus.emit(a, Event{Kind: SignalEntriesSwapped, Entries: [2]*Entry{x, y}})
	return true, nil
}

// MoveEntry relocates entry to position within dir (root if nil).
func (a *Archive) MoveEntry(entry *Entry, position int, dir *Dir) (bool, error) {
	if a.readOnly {
		return false, wrap(ErrReadOnly, "%s", a.filename)
	}
	d := a.resolveDir(dir)
	if entry.dir != nil {
		oi := entry.dir.IndexOfEntry(entry)
		entry.dir.removeEntryAt(oi)
	}
	if position < 0 {
		position = len(d.entries)
	}
	d.insertEntry(entry, position)
	a.markModified()
	return true, nil
}

// CreateDir creates (including missing intermediates) the directory at
// slash-separated path. For treeless (WAD-family) archives this is a
// no-op that returns root.
func (a *Archive) CreateDir(p string) *Dir {
	if a.codec.Treeless() {
		return a.root
	}
	cur := a.root
	for _, part := range strings.Split(strings.Trim(p, "/"), "/") {
		if part == "" {
			continue
		}
		cur = cur.addSubdir(part)
	}
	return cur
}

// RemoveDir recursively removes the directory at path, relative to
// base (root if nil).
func (a *Archive) RemoveDir(p string, base *Dir) bool {
	root := a.resolveDir(base)
	parts := strings.Split(strings.Trim(p, "/"), "/")
	if len(parts) == 0 {
		return false
	}
	cur := root
	var parent *Dir
	name := ""
	for _, part := range parts {
		if part == "" {
			continue
		}
		child := cur.Child(part)
		if child == nil {
			return false
		}
		parent = cur
		name = part
		cur = child
	}
	if parent == nil {
		return false
	}
	a.markModified()
	return parent.removeSubdir(name)
}

// RenameDir renames dir to newName among its siblings.
func (a *Archive) RenameDir(dir *Dir, newName string) (bool, error) {
	if dir.parent == nil {
		return false, wrap(ErrNotOurs, "cannot rename root")
	}
	if dir.parent.nameConflict(newName, nil) {
		return false, &DuplicateNameError{Name: newName, Dir: dir.parent.Path()}
	}
	dir.self.rename(newName)
	a.markModified()
	return true, nil
}

// SearchOptions configures FindFirst/FindLast/FindAll.
type SearchOptions struct {
	MatchName      string // wildcard (path.Match syntax), case-insensitive
	MatchType      *string
	MatchNamespace string
	SearchSubdirs  bool
	IgnoreExt      bool
	Dir            *Dir
}

func (a *Archive) matches(e *Entry, opts SearchOptions) bool {
	if opts.MatchName != "" {
		name := e.Name()
		pat := opts.MatchName
		if opts.IgnoreExt {
			name = e.NameNoExt()
			pat = noExt(pat)
		}
		ok, _ := path.Match(strings.ToLower(pat), strings.ToLower(name))
		if !ok {
			return false
		}
	}
	if opts.MatchType != nil {
		if a.Classify == nil {
			return false
		}
		if a.Classify(e) != *opts.MatchType {
			return false
		}
	}
	return true
}

// findIn walks dir (and subdirs if recurse) collecting matches into
// out; stops after the first match if first is true.
func (a *Archive) findIn(dir *Dir, opts SearchOptions, recurse bool, first bool, out *[]*Entry) bool {
	for _, e := range dir.entries {
		if a.matches(e, opts) {
			*out = append(*out, e)
			if first {
				return true
			}
		}
	}
	if recurse {
		for _, d := range dir.dirs {
			if a.findIn(d, opts, recurse, first, out) && first {
				return true
			}
		}
	}
	return false
}

// scopeForNamespace narrows the search dir for a non-empty
// MatchNamespace, implicitly enabling SearchSubdirs, per spec.md §4.1.
func (a *Archive) scopeForNamespace(opts SearchOptions) (SearchOptions, error) {
	if opts.MatchNamespace == "" {
		return opts, nil
	}
	opts.SearchSubdirs = true
	if ns, ok := a.codec.(namespaceScoper); ok {
		d, err := ns.NamespaceDir(a, opts.MatchNamespace)
		if err != nil {
			return opts, err
		}
		opts.Dir = d
	}
	return opts, nil
}

// namespaceScoper lets WAD-family codecs narrow a namespace search to
// the entries between its marker range, since WAD has no real
// subdirectories to scope by.
type namespaceScoper interface {
	NamespaceDir(a *Archive, name string) (*Dir, error)
}

// FindFirst returns the first entry matching opts, depth-first.
func (a *Archive) FindFirst(opts SearchOptions) (*Entry, error) {
	opts, err := a.scopeForNamespace(opts)
	if err != nil {
		return nil, err
	}
	var out []*Entry
	a.findIn(a.resolveDir(opts.Dir), opts, opts.SearchSubdirs, true, &out)
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// FindLast returns the last entry matching opts.
func (a *Archive) FindLast(opts SearchOptions) (*Entry, error) {
	opts, err := a.scopeForNamespace(opts)
	if err != nil {
		return nil, err
	}
	var out []*Entry
	a.findIn(a.resolveDir(opts.Dir), opts, opts.SearchSubdirs, false, &out)
	if len(out) == 0 {
		return nil, nil
	}
	return out[len(out)-1], nil
}

// FindAll returns every entry matching opts, depth-first.
func (a *Archive) FindAll(opts SearchOptions) ([]*Entry, error) {
	opts, err := a.scopeForNamespace(opts)
	if err != nil {
		return nil, err
	}
	var out []*Entry
	a.findIn(a.resolveDir(opts.Dir), opts, opts.SearchSubdirs, false, &out)
	return out, nil
}

// EntryTreeAsList linearizes dir (root if nil) depth-first; each dir
// emits its own dir-entry before its children's entries.
func (a *Archive) EntryTreeAsList(dir *Dir) []*Entry {
	var out []*Entry
	a.resolveDir(dir).allEntriesRecursive(&out, true)
	return out
}

// NumEntries returns the total count of entries across the whole tree.
// Subdirectories' own dir-entries are not counted.
func (a *Archive) NumEntries() int {
	n := 0
	var count func(d *Dir)
	count = func(d *Dir) {
		n += len(d.entries)
		for _, c := range d.dirs {
			count(c)
		}
	}
	count(a.root)
	return n
}

// DetectMaps delegates to the codec's format-specific map-range scan.
func (a *Archive) DetectMaps() []MapDesc {
	return a.codec.DetectMaps(a)
}
