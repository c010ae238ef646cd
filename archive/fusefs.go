//go:build fuse

package archive

import (
	"context"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// dirNode and fileNode adapt the teacher's FUSE inode model
// (inode_fuse.go's Lookup/ReadDir/Open/FillAttr) from squashfs's
// block-addressed inodes to an *Archive's Dir/Entry tree: FUSE asks
// for children by name or listing, we resolve them against the
// in-memory archive instead of decoding on-disk inode records.
type dirNode struct {
	fs.Inode
	dir *Dir
}

var (
	_ fs.NodeLookuper  = (*dirNode)(nil)
	_ fs.NodeReaddirer = (*dirNode)(nil)
	_ fs.NodeGetattrer = (*dirNode)(nil)
)

func (n *dirNode) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	now := time.Now()
	out.Mode = 0o755 | syscall.S_IFDIR
	out.SetTimes(&now, &now, &now)
	return 0
}

func (n *dirNode) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	var out []fuse.DirEntry
	for _, c := range n.dir.dirs {
		out = append(out, fuse.DirEntry{Name: c.Name(), Mode: syscall.S_IFDIR})
	}
	for _, e := range n.dir.entries {
		out = append(out, fuse.DirEntry{Name: e.Name(), Mode: syscall.S_IFREG})
	}
	return fs.NewListDirStream(out), 0
}

func (n *dirNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	now := time.Now()
	if c := n.dir.Child(name); c != nil {
		out.Attr.Mode = 0o755 | syscall.S_IFDIR
		out.Attr.SetTimes(&now, &now, &now)
		child := &dirNode{dir: c}
		return n.NewInode(ctx, child, fs.StableAttr{Mode: syscall.S_IFDIR}), 0
	}
	for _, e := range n.dir.entries {
		if e.Name() == name {
			data, err := e.Data()
			if err != nil {
				return nil, syscall.EIO
			}
			out.Attr.Mode = 0o444 | syscall.S_IFREG
			out.Attr.Size = uint64(len(data))
			out.Attr.SetTimes(&now, &now, &now)
			child := &fileNode{entry: e}
			return n.NewInode(ctx, child, fs.StableAttr{Mode: syscall.S_IFREG}), 0
		}
	}
	return nil, syscall.ENOENT
}

// fileNode exposes a single read-only Entry's bytes.
type fileNode struct {
	fs.Inode
	entry *Entry
}

var (
	_ fs.NodeGetattrer = (*fileNode)(nil)
	_ fs.NodeOpener    = (*fileNode)(nil)
	_ fs.NodeReader    = (*fileNode)(nil)
)

func (n *fileNode) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	data, err := n.entry.Data()
	if err != nil {
		return syscall.EIO
	}
	now := time.Now()
	out.Mode = 0o444 | syscall.S_IFREG
	out.Size = uint64(len(data))
	out.SetTimes(&now, &now, &now)
	return 0
}

func (n *fileNode) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	return nil, fuse.FOPEN_KEEP_CACHE, 0
}

func (n *fileNode) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	data, err := n.entry.Data()
	if err != nil {
		return nil, syscall.EIO
	}
	if off >= int64(len(data)) {
		return fuse.ReadResultData(nil), 0
	}
	end := off + int64(len(dest))
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return fuse.ReadResultData(data[off:end]), 0
}

// Mount exposes a read-only view of a onto a host directory via FUSE,
// mirroring every entry and subdirectory exactly as held in memory.
// Unmount by calling Unmount on the returned *fuse.Server.
func Mount(a *Archive, mountpoint string) (*fuse.Server, error) {
	root := &dirNode{dir: a.root}
	server, err := fs.Mount(mountpoint, root, &fs.Options{
		MountOptions: fuse.MountOptions{
			FsName:     "slade-" + a.FormatID(),
			Name:       "slade",
			ReadOnly:   true,
			AllowOther: false,
		},
	})
	if err != nil {
		return nil, wrap(ErrUnsupportedFormat, "fuse mount: %v", err)
	}
	return server, nil
}
