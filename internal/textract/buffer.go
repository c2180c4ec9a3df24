package textract

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Buffer holds a document's bytes in memory so every extraction step can
// re-read them independently. Uploaded documents may arrive as non-seekable
// streams or temporary files; nothing downstream may assume the original
// handle is re-readable, so the bytes are read exactly once here.
type Buffer struct {
	data []byte
}

// NewBuffer drains r into a reusable in-memory buffer.
func NewBuffer(r io.Reader) (*Buffer, error) {
	if r == nil {
		return nil, fmt.Errorf("read document: nil reader")
	}
	if s, ok := r.(io.Seeker); ok {
		if _, err := s.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind document: %w", err)
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return &Buffer{data: data}, nil
}

// NewBufferFromFile reads the file at path into a buffer.
func NewBufferFromFile(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document %q: %w", path, err)
	}
	return &Buffer{data: data}, nil
}

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int { return len(b.data) }

// Bytes returns the underlying bytes. Callers must not modify them.
func (b *Buffer) Bytes() []byte { return b.data }

// NewReader returns an independent reader over the buffered bytes.
func (b *Buffer) NewReader() *bytes.Reader { return bytes.NewReader(b.data) }

// Header returns up to the first n bytes for content sniffing.
func (b *Buffer) Header(n int) []byte {
	if len(b.data) < n {
		n = len(b.data)
	}
	return b.data[:n]
}
