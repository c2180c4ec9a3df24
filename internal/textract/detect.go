package textract

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/wakaflorien/procureToPay/constants"
)

// Hints carries the optional filename and declared content type that
// accompany an upload. Header sniffing always wins over either.
type Hints struct {
	Filename    string
	ContentType string
}

var (
	pdfMagic = []byte("%PDF")
	pngMagic = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
)

func sniffPDF(header []byte) bool {
	return len(header) >= 4 && bytes.Equal(header[:4], pdfMagic)
}

func sniffJPEG(header []byte) bool {
	return len(header) >= 2 && header[0] == 0xFF && header[1] == 0xD8
}

func sniffPNG(header []byte) bool {
	return len(header) >= 8 && bytes.Equal(header[:8], pngMagic)
}

// sniffHEIC detects the ISO-BMFF ftyp box with a HEIC/HEIF brand.
func sniffHEIC(header []byte) bool {
	if len(header) < 12 || string(header[4:8]) != "ftyp" {
		return false
	}
	switch string(header[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}

// DetectKind classifies a document as constants.PDF, constants.IMAGE or ""
// (undetermined). Priority: magic bytes, then filename extension, then the
// declared content type.
func DetectKind(header []byte, hints Hints) string {
	switch {
	case sniffPDF(header):
		return constants.PDF
	case sniffJPEG(header), sniffPNG(header), sniffHEIC(header):
		return constants.IMAGE
	}

	if hints.Filename != "" {
		if format := constants.MapExtToFormat(filepath.Ext(hints.Filename)); format != "" {
			return format
		}
	}

	ct := strings.ToLower(strings.TrimSpace(hints.ContentType))
	switch {
	case strings.Contains(ct, "pdf"):
		return constants.PDF
	case strings.Contains(ct, "image"):
		return constants.IMAGE
	}
	return ""
}
