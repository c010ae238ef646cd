package chunk_test

import (
	"io"
	"testing"

	"github.com/sirjuddington/slade-core/chunk"
)

func TestWriteGrows(t *testing.T) {
	c := chunk.New()
	n, err := c.Write([]byte("hello"))
	if err != nil || n != 5 {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if c.Size() != 5 {
		t.Errorf("Size() = %d, want 5", c.Size())
	}
	if string(c.Bytes()) != "hello" {
		t.Errorf("Bytes() = %q", c.Bytes())
	}
}

func TestSeekReadRoundTrip(t *testing.T) {
	c := chunk.NewFromBytes([]byte("abcdef"))
	if _, err := c.Seek(2, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 3)
	n, err := c.Read(buf)
	if err != nil || n != 3 || string(buf) != "cde" {
		t.Fatalf("Read() = %q, %d, %v", buf, n, err)
	}
}

func TestResizePreserve(t *testing.T) {
	c := chunk.NewFromBytes([]byte("abc"))
	c.Resize(5, true)
	if c.Size() != 5 {
		t.Fatalf("Size() = %d, want 5", c.Size())
	}
	if string(c.Bytes()[:3]) != "abc" {
		t.Errorf("preserved prefix = %q", c.Bytes()[:3])
	}

	c.Resize(2, false)
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}
