// Package chunk implements MemChunk, an owned byte buffer with a seek
// cursor, endian-aware typed reads/writes, and file import/export —
// the base byte-storage primitive used by archive entries.
package chunk

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// MemChunk is an owned, growable byte buffer with a read/write cursor.
// Invariant: 0 <= pos <= len(data).
type MemChunk struct {
	data []byte
	pos  int64
}

// New returns an empty MemChunk.
func New() *MemChunk {
	return &MemChunk{}
}

// NewFromBytes wraps buf as the chunk's data (copying it), cursor at 0.
func NewFromBytes(buf []byte) *MemChunk {
	c := &MemChunk{data: make([]byte, len(buf))}
	copy(c.data, buf)
	return c
}

// Bytes returns the chunk's full backing buffer.
func (c *MemChunk) Bytes() []byte {
	return c.data
}

// Size returns the logical size of the chunk.
func (c *MemChunk) Size() int64 {
	return int64(len(c.data))
}

// Pos returns the current cursor position.
func (c *MemChunk) Pos() int64 {
	return c.pos
}

// Resize changes the chunk's length to n bytes. If preserve is true,
// existing bytes up to min(n, old size) are kept; otherwise the buffer
// is reallocated and zeroed.
func (c *MemChunk) Resize(n int64, preserve bool) {
	if n < 0 {
		n = 0
	}
	if !preserve {
		c.data = make([]byte, n)
		if c.pos > n {
			c.pos = n
		}
		return
	}
	nb := make([]byte, n)
	copy(nb, c.data)
	c.data = nb
	if c.pos > n {
		c.pos = n
	}
}

// Clear empties the chunk and resets the cursor.
func (c *MemChunk) Clear() {
	c.data = nil
	c.pos = 0
}

// Seek implements io.Seeker.
func (c *MemChunk) Seek(offset int64, whence int) (int64, error) {
	var np int64
	switch whence {
	case io.SeekStart:
		np = offset
	case io.SeekCurrent:
		np = c.pos + offset
	case io.SeekEnd:
		np = int64(len(c.data)) + offset
	default:
		return 0, fmt.Errorf("memchunk: invalid whence %d", whence)
	}
	if np < 0 {
		return 0, fmt.Errorf("memchunk: negative seek position")
	}
	c.pos = np
	return np, nil
}

// Read implements io.Reader, reading from the cursor position.
func (c *MemChunk) Read(p []byte) (int, error) {
	if c.pos >= int64(len(c.data)) {
		return 0, io.EOF
	}
	n := copy(p, c.data[c.pos:])
	c.pos += int64(n)
	return n, nil
}

// ReadAt implements io.ReaderAt.
func (c *MemChunk) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(c.data)) {
		return 0, io.EOF
	}
	n := copy(p, c.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Write implements io.Writer, writing at the cursor and growing the
// chunk as needed, exactly as the source's MemChunk::write does.
func (c *MemChunk) Write(p []byte) (int, error) {
	end := c.pos + int64(len(p))
	if end > int64(len(c.data)) {
		c.Resize(end, true)
	}
	n := copy(c.data[c.pos:end], p)
	c.pos = end
	return n, nil
}

// readFixed/writeFixed back the typed little-endian helpers below
// (16- and 32-bit reads, 32-bit write).

func (c *MemChunk) readFixed(order binary.ByteOrder, v interface{}) error {
	return binary.Read(c, order, v)
}

func (c *MemChunk) writeFixed(order binary.ByteOrder, v interface{}) error {
	return binary.Write(c, order, v)
}

// ReadUint16LE reads a little-endian uint16 at the cursor.
func (c *MemChunk) ReadUint16LE() (uint16, error) {
	var v uint16
	return v, c.readFixed(binary.LittleEndian, &v)
}

// ReadUint32LE reads a little-endian uint32 at the cursor.
func (c *MemChunk) ReadUint32LE() (uint32, error) {
	var v uint32
	return v, c.readFixed(binary.LittleEndian, &v)
}

// ReadInt16LE reads a little-endian int16 at the cursor.
func (c *MemChunk) ReadInt16LE() (int16, error) {
	var v int16
	return v, c.readFixed(binary.LittleEndian, &v)
}

// ReadInt32LE reads a little-endian int32 at the cursor.
func (c *MemChunk) ReadInt32LE() (int32, error) {
	var v int32
	return v, c.readFixed(binary.LittleEndian, &v)
}

// WriteUint32LE writes a little-endian uint32 at the cursor.
func (c *MemChunk) WriteUint32LE(v uint32) error {
	return c.writeFixed(binary.LittleEndian, v)
}

// ImportFile replaces the chunk's contents with the bytes of path.
func (c *MemChunk) ImportFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c.data = b
	c.pos = 0
	return nil
}

// ExportFile writes the chunk's full contents to path.
func (c *MemChunk) ExportFile(path string) error {
	return os.WriteFile(path, c.data, 0o644)
}
