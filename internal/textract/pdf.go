package textract

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
)

// methodState tracks one extraction method inside the PDF fallback chain.
// A method is only attempted while the chain has not succeeded, and the chain
// advances on FailedEmpty or FailedError, never on success.
type methodState int

const (
	stateNotTried methodState = iota
	stateSucceeded
	stateFailedEmpty
	stateFailedError
)

func (s methodState) String() string {
	switch s {
	case stateSucceeded:
		return "succeeded"
	case stateFailedEmpty:
		return "failed-empty"
	case stateFailedError:
		return "failed-error"
	default:
		return "not-tried"
	}
}

// extractPDF runs the mandatory primary/fallback/OCR-rescue chain:
// layout-aware extraction (mupdf), then the simple pure-Go extractor, then
// page rasterization plus OCR. Scanned PDFs with no text layer are common,
// so the rescue step is not optional.
func (e *Extractor) extractPDF(ctx context.Context, buf *Buffer) (string, string, int, []string) {
	var warnings []string

	text, pages, st := e.pdfTextLayout(buf)
	if st == stateSucceeded {
		return text, "pdf-text", pages, warnings
	}
	warnings = append(warnings, fmt.Sprintf("layout extraction %s", st))

	text, pages, st = e.pdfTextSimple(buf)
	if st == stateSucceeded {
		return text, "pdf-text-fallback", pages, warnings
	}
	warnings = append(warnings, fmt.Sprintf("simple extraction %s", st))

	text, pages, ocrWarns := e.pdfOCR(ctx, buf)
	warnings = append(warnings, ocrWarns...)
	if strings.TrimSpace(text) != "" {
		return Normalize(text), "pdf-ocr", pages, warnings
	}
	return "", "", pages, warnings
}

// pdfTextLayout extracts embedded text page by page via mupdf. A bad page is
// skipped, never fatal for the document.
func (e *Extractor) pdfTextLayout(buf *Buffer) (text string, pages int, st methodState) {
	defer func() {
		if r := recover(); r != nil {
			text, st = "", stateFailedError
		}
	}()

	doc, err := fitz.NewFromMemory(buf.Bytes())
	if err != nil {
		return "", 0, stateFailedError
	}
	defer doc.Close()

	var b strings.Builder
	pages = doc.NumPage()
	for i := 0; i < pages; i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			e.logger.Warn("pdf page text failed", "page", i+1, "error", err)
			continue
		}
		if pageText != "" {
			b.WriteString(pageText)
			b.WriteString("\n")
		}
	}
	text = b.String()
	if strings.TrimSpace(text) == "" {
		return "", pages, stateFailedEmpty
	}
	return text, pages, stateSucceeded
}

// pdfTextSimple is the second-chance extractor. The library is known to choke
// on some encodings, hence the recover.
func (e *Extractor) pdfTextSimple(buf *Buffer) (text string, pages int, st methodState) {
	defer func() {
		if r := recover(); r != nil {
			text, st = "", stateFailedError
		}
	}()

	reader, err := pdf.NewReader(buf.NewReader(), int64(buf.Len()))
	if err != nil {
		return "", 0, stateFailedError
	}

	var b strings.Builder
	pages = reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			e.logger.Warn("pdf fallback page failed", "page", i, "error", err)
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				b.WriteString(word.S)
				b.WriteString(" ")
			}
			b.WriteString("\n")
		}
	}
	text = b.String()
	if strings.TrimSpace(text) == "" {
		return "", pages, stateFailedEmpty
	}
	return text, pages, stateSucceeded
}

// pdfOCR rasterizes each page and feeds it through image OCR.
func (e *Extractor) pdfOCR(ctx context.Context, buf *Buffer) (string, int, []string) {
	var warnings []string

	doc, err := fitz.NewFromMemory(buf.Bytes())
	if err != nil {
		return "", 0, append(warnings, fmt.Sprintf("rasterize: %v", err))
	}
	defer doc.Close()

	pages := doc.NumPage()
	if e.cfg.MaxPages > 0 && pages > e.cfg.MaxPages {
		pages = e.cfg.MaxPages
	}

	var b strings.Builder
	for i := 0; i < pages; i++ {
		img, err := doc.Image(i)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("render page %d: %v", i+1, err))
			continue
		}
		txt := e.ocrImage(ctx, img)
		if txt == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		b.WriteString(txt)
	}
	return b.String(), pages, warnings
}
