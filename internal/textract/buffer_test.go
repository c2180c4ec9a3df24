package textract

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewBufferRewindsSeekers(t *testing.T) {
	src := bytes.NewReader([]byte("%PDF-1.4 content"))
	if _, err := src.Seek(5, 0); err != nil {
		t.Fatal(err)
	}

	buf, err := NewBuffer(src)
	if err != nil {
		t.Fatalf("NewBuffer() error = %v", err)
	}
	if got := string(buf.Bytes()); got != "%PDF-1.4 content" {
		t.Errorf("Bytes() = %q, want full content from offset 0", got)
	}
}

func TestNewBufferPlainReader(t *testing.T) {
	buf, err := NewBuffer(strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("NewBuffer() error = %v", err)
	}
	if buf.Len() != 5 {
		t.Errorf("Len() = %d, want 5", buf.Len())
	}
}

func TestBufferHeader(t *testing.T) {
	buf, err := NewBuffer(strings.NewReader("abc"))
	if err != nil {
		t.Fatal(err)
	}
	if got := buf.Header(16); len(got) != 3 {
		t.Errorf("Header(16) on 3-byte buffer returned %d bytes", len(got))
	}
	if got := buf.Header(2); string(got) != "ab" {
		t.Errorf("Header(2) = %q, want \"ab\"", got)
	}
}

func TestBufferNewReaderIsRepeatable(t *testing.T) {
	buf, err := NewBuffer(strings.NewReader("repeat"))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		r := buf.NewReader()
		b := make([]byte, 6)
		if _, err := r.Read(b); err != nil {
			t.Fatal(err)
		}
		if string(b) != "repeat" {
			t.Errorf("read %d: got %q", i, b)
		}
	}
}
