package textract

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"testing"
)

// stubRunner scripts tesseract invocations: call i returns outputs[i] (or the
// last entry when fewer outputs than calls are scripted).
type stubRunner struct {
	outputs []string
	err     error
	calls   [][]string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	if s.err != nil {
		return nil, nil, s.err
	}
	i := len(s.calls) - 1
	if i >= len(s.outputs) {
		i = len(s.outputs) - 1
	}
	return []byte(s.outputs[i]), nil, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractTextImage(t *testing.T) {
	runner := &stubRunner{outputs: []string{"Invoice\nTotal: 42.00\n"}}
	e := NewExtractor(Config{}, testLogger()).WithRunner(runner)

	buf, err := NewBuffer(bytes.NewReader(pngBytes(t)))
	if err != nil {
		t.Fatal(err)
	}
	res := e.ExtractText(context.Background(), buf, Hints{Filename: "receipt.png"})

	if res.Kind != "IMAGE" {
		t.Errorf("Kind = %q, want IMAGE", res.Kind)
	}
	if res.Method != "image-ocr" {
		t.Errorf("Method = %q, want image-ocr", res.Method)
	}
	if res.Text != "Invoice\nTotal: 42.00" {
		t.Errorf("Text = %q", res.Text)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("tesseract invoked %d times, want 1", len(runner.calls))
	}
}

func TestExtractTextOCRConfigFallback(t *testing.T) {
	// First attempt yields whitespace only, second yields real text.
	runner := &stubRunner{outputs: []string{"  \n", "Vendor: Acme"}}
	e := NewExtractor(Config{}, testLogger()).WithRunner(runner)

	buf, err := NewBuffer(bytes.NewReader(pngBytes(t)))
	if err != nil {
		t.Fatal(err)
	}
	res := e.ExtractText(context.Background(), buf, Hints{})

	if res.Text != "Vendor: Acme" {
		t.Errorf("Text = %q, want fallback config output", res.Text)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("tesseract invoked %d times, want 2", len(runner.calls))
	}
	if psm := psmOf(t, runner.calls[0]); psm != "6" {
		t.Errorf("first attempt psm = %q, want 6", psm)
	}
	if psm := psmOf(t, runner.calls[1]); psm != "11" {
		t.Errorf("second attempt psm = %q, want 11", psm)
	}
}

func TestExtractTextOCRFailureDegrades(t *testing.T) {
	runner := &stubRunner{err: errors.New("tesseract: command not found")}
	e := NewExtractor(Config{}, testLogger()).WithRunner(runner)

	buf, err := NewBuffer(bytes.NewReader(pngBytes(t)))
	if err != nil {
		t.Fatal(err)
	}
	res := e.ExtractText(context.Background(), buf, Hints{Filename: "receipt.png"})

	if res.Text != "" {
		t.Errorf("Text = %q, want empty on OCR failure", res.Text)
	}
	if res.Method != "" {
		t.Errorf("Method = %q, want empty", res.Method)
	}
	if len(runner.calls) != len(ocrConfigs) {
		t.Errorf("tesseract invoked %d times, want all %d configs", len(runner.calls), len(ocrConfigs))
	}
}

func TestExtractTextUnreadableBuffer(t *testing.T) {
	runner := &stubRunner{outputs: []string{""}}
	e := NewExtractor(Config{}, testLogger()).WithRunner(runner)

	buf, err := NewBuffer(bytes.NewReader([]byte{0x00, 0x01, 0x02, 0x03}))
	if err != nil {
		t.Fatal(err)
	}
	res := e.ExtractText(context.Background(), buf, Hints{})

	if res.Text != "" {
		t.Errorf("Text = %q, want empty", res.Text)
	}
	if len(res.Warnings) == 0 {
		t.Error("expected warnings for an unreadable document")
	}
}

func TestNewExtractorDefaults(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	if e.cfg.Tesseract != "tesseract" {
		t.Errorf("Tesseract default = %q", e.cfg.Tesseract)
	}
	if e.cfg.TesseractLang != "eng" {
		t.Errorf("TesseractLang default = %q", e.cfg.TesseractLang)
	}
	if e.cfg.MaxImageDim != 2000 {
		t.Errorf("MaxImageDim default = %d", e.cfg.MaxImageDim)
	}
}

func psmOf(t *testing.T, call []string) string {
	t.Helper()
	for i, a := range call {
		if a == "--psm" && i+1 < len(call) {
			return call[i+1]
		}
	}
	t.Fatalf("no --psm in call %v", call)
	return ""
}
