package textract

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/wakaflorien/procureToPay/constants"
)

// Config controls the extraction pipeline. Zero values are filled in by
// NewExtractor.
type Config struct {
	// Tesseract is the OCR binary to invoke.
	Tesseract string
	// TesseractLang is passed as -l.
	TesseractLang string
	// MaxImageDim caps the longest image side before OCR.
	MaxImageDim int
	// MaxPages caps how many PDF pages are rasterized for OCR rescue.
	MaxPages int
}

func (c *Config) setDefaults() {
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
	if c.TesseractLang == "" {
		c.TesseractLang = "eng"
	}
	if c.MaxImageDim <= 0 {
		c.MaxImageDim = 2000
	}
}

// Result is the outcome of a text extraction attempt. Extraction never fails
// hard: an unreadable document yields empty Text plus warnings, and the
// downstream field extractor turns that into its own error marker.
type Result struct {
	// Text is the extracted text, empty when nothing could be read.
	Text string
	// Kind is the detected document kind (constants.PDF or constants.IMAGE).
	Kind string
	// Method names the step of the chain that produced Text.
	Method string
	// Pages is the PDF page count, zero for images.
	Pages int
	// Warnings lists non-fatal problems hit along the way.
	Warnings []string
	// Duration is total wall time spent extracting.
	Duration time.Duration
}

// Extractor turns PDFs and images into plain text, falling back through
// progressively more expensive methods.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	cfg.setDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		cfg:    cfg,
		runner: execRunner{log: logger},
		logger: logger,
	}
}

// WithRunner swaps the command runner, used by tests to stub tesseract.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// ExtractText classifies the buffered document and runs the matching chain.
// Undetermined kinds are treated as images first, then retried as PDF, since
// uploads with wrong or missing extensions are usually phone photos.
func (e *Extractor) ExtractText(ctx context.Context, buf *Buffer, hints Hints) Result {
	start := time.Now()
	kind := DetectKind(buf.Header(16), hints)

	res := Result{Kind: kind}
	switch kind {
	case constants.PDF:
		res.Text, res.Method, res.Pages, res.Warnings = e.extractPDF(ctx, buf)
	case constants.IMAGE:
		res.Text, res.Warnings = e.extractImage(ctx, buf, hints)
		if res.Text != "" {
			res.Method = "image-ocr"
		}
	default:
		res.Text, res.Warnings = e.extractImage(ctx, buf, hints)
		if res.Text != "" {
			res.Kind = constants.IMAGE
			res.Method = "image-ocr"
			break
		}
		var pdfWarns []string
		res.Text, res.Method, res.Pages, pdfWarns = e.extractPDF(ctx, buf)
		res.Warnings = append(res.Warnings, pdfWarns...)
		if res.Text != "" {
			res.Kind = constants.PDF
		}
	}

	res.Duration = time.Since(start)
	e.logger.Info("text extraction finished",
		"kind", res.Kind,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"warnings", len(res.Warnings),
		"duration_ms", res.Duration.Milliseconds(),
	)
	if strings.TrimSpace(res.Text) == "" {
		res.Text = ""
	}
	return res
}
