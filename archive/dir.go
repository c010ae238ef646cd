package archive

import "strings"

// Dir is a tree node holding an ordered list of child entries and an
// ordered list of child subdirectories (spec.md §3 ArchiveDir). The
// root dir of an Archive is anonymous (name "") and owned by the
// Archive itself.
type Dir struct {
	parent *Dir
	self   *Entry // carries this dir's name + exProps (its own "dir entry")

	dirs    []*Dir
	entries []*Entry

	allowDuplicateNames bool
}

// newRootDir creates an anonymous root directory.
func newRootDir() *Dir {
	return &Dir{self: &Entry{name: ""}}
}

// newChildDir creates a subdirectory named name under parent.
func newChildDir(parent *Dir, name string) *Dir {
	d := &Dir{parent: parent, self: &Entry{name: name}}
	return d
}

// Name returns the directory's own name (not its full path).
func (d *Dir) Name() string { return d.self.Name() }

// Parent returns the parent directory, or nil for the root.
func (d *Dir) Parent() *Dir { return d.parent }

// Path returns the directory's full slash-separated path from the
// root, always ending in "/" (matching the source's ArchiveDir::path).
func (d *Dir) Path() string {
	if d.parent == nil {
		return "/"
	}
	return d.parent.Path() + d.Name() + "/"
}

// AllowDuplicateNames reports the dir's uniqueness policy.
func (d *Dir) AllowDuplicateNames() bool { return d.allowDuplicateNames }

// SetAllowDuplicateNames sets the dir's uniqueness policy.
func (d *Dir) SetAllowDuplicateNames(v bool) { d.allowDuplicateNames = v }

// Entries returns the dir's direct child entries in order. The slice
// is owned by the Dir; callers must not mutate it.
func (d *Dir) Entries() []*Entry { return d.entries }

// Dirs returns the dir's direct child subdirectories in order.
func (d *Dir) Dirs() []*Dir { return d.dirs }

// EntryAt returns the entry at position i, or nil if out of range.
func (d *Dir) EntryAt(i int) *Entry {
	if i < 0 || i >= len(d.entries) {
		return nil
	}
	return d.entries[i]
}

// IndexOfEntry returns the position of e within d, or -1.
func (d *Dir) IndexOfEntry(e *Entry) int {
	for i, x := range d.entries {
		if x == e {
			return i
		}
	}
	return -1
}

// Child returns the immediate subdirectory named name, or nil.
func (d *Dir) Child(name string) *Dir {
	for _, c := range d.dirs {
		if strings.EqualFold(c.Name(), name) {
			return c
		}
	}
	return nil
}

// nameConflict reports whether inserting an entry/dir named name would
// violate the uniqueness policy (case-insensitive, extension-stripped
// compare against existing entries, matching spec.md §3).
func (d *Dir) nameConflict(name string, exclude *Entry) bool {
	if d.allowDuplicateNames {
		return false
	}
	want := noExt(name)
	for _, e := range d.entries {
		if e == exclude {
			continue
		}
		if strings.EqualFold(noExt(e.Name()), want) {
			return true
		}
	}
	return false
}

func noExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}

// insertEntry inserts e at position pos (len(entries) means append),
// without any validation — callers (Archive) are responsible for
// duplicate/lock checks.
func (d *Dir) insertEntry(e *Entry, pos int) {
	if pos < 0 || pos > len(d.entries) {
		pos = len(d.entries)
	}
	d.entries = append(d.entries, nil)
	copy(d.entries[pos+1:], d.entries[pos:])
	d.entries[pos] = e
	e.dir = d
}

// removeEntryAt detaches the entry at position i and returns it.
func (d *Dir) removeEntryAt(i int) *Entry {
	e := d.entries[i]
	d.entries = append(d.entries[:i], d.entries[i+1:]...)
	e.dir = nil
	return e
}

// swapEntries exchanges the entries at positions i and j.
func (d *Dir) swapEntries(i, j int) {
	d.entries[i], d.entries[j] = d.entries[j], d.entries[i]
}

// addSubdir creates (if absent) and returns the immediate child
// subdirectory named name.
func (d *Dir) addSubdir(name string) *Dir {
	if c := d.Child(name); c != nil {
		return c
	}
	c := newChildDir(d, name)
	d.dirs = append(d.dirs, c)
	return c
}

// removeSubdir detaches the named immediate child subdirectory.
func (d *Dir) removeSubdir(name string) bool {
	for i, c := range d.dirs {
		if strings.EqualFold(c.Name(), name) {
			d.dirs = append(d.dirs[:i], d.dirs[i+1:]...)
			return true
		}
	}
	return false
}

// allEntriesRecursive appends this dir's dir-entry (if not root) then
// its entries, then recurses into subdirs depth-first — matching
// Archive.entryTreeAsList's "dirs emit their dir-entry before their
// children" rule.
func (d *Dir) allEntriesRecursive(out *[]*Entry, includeSelf bool) {
	if includeSelf && d.parent != nil {
		*out = append(*out, d.self)
	}
	*out = append(*out, d.entries...)
	for _, c := range d.dirs {
		c.allEntriesRecursive(out, true)
	}
}
