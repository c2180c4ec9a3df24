package textract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WEBP decoder

	"github.com/disintegration/imaging"
	"github.com/gen2brain/heic"

	"github.com/wakaflorien/procureToPay/constants"
)

// ocrConfig is one tesseract page-segmentation attempt. Configs are tried in
// order; the first one producing non-empty text wins.
type ocrConfig struct {
	psm       string
	whitelist string
}

var ocrConfigs = []ocrConfig{
	{psm: "6", whitelist: "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz.,$€£:/- "},
	{psm: "11"}, // sparse text
	{psm: "4"},  // single column
	{psm: "6"},  // single block
}

// decodeImage decodes JPEG/PNG/GIF/BMP/TIFF/WEBP via the registered decoders
// and HEIC/HEIF via the pure-Go decoder, which image.Decode cannot handle.
// heicHint covers files whose ftyp brand is not in the sniff list but whose
// extension says HEIC; for those the generic decoders remain the fallback.
func decodeImage(data []byte, heicHint bool) (image.Image, error) {
	if sniffHEIC(data) {
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode heic: %w", err)
		}
		return img, nil
	}
	if heicHint {
		if img, err := heic.Decode(bytes.NewReader(data)); err == nil {
			return img, nil
		}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// prepareImage composites any alpha channel onto a white background and
// downscales oversized images. OCR cost scales with pixel count, so anything
// larger than MaxImageDim on its longest side gets resized with Lanczos.
func (e *Extractor) prepareImage(img image.Image) image.Image {
	bounds := img.Bounds()
	white := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	flattened := imaging.Overlay(white, img, image.Pt(0, 0), 1.0)

	maxDim := e.cfg.MaxImageDim
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		return imaging.Fit(flattened, maxDim, maxDim, imaging.Lanczos)
	}
	return flattened
}

// ocrImage runs tesseract over the prepared image using the ordered config
// list. It never returns an error: OCR failure degrades to empty text.
func (e *Extractor) ocrImage(ctx context.Context, img image.Image) string {
	prepared := e.prepareImage(img)

	tmpDir, err := os.MkdirTemp("", "p2p-ocr-*")
	if err != nil {
		e.logger.Error("ocr temp dir failed", "error", err)
		return ""
	}
	defer func() {
		if rerr := os.RemoveAll(tmpDir); rerr != nil {
			e.logger.Warn("ocr temp dir cleanup failed", "dir", tmpDir, "error", rerr)
		}
	}()

	pagePath := filepath.Join(tmpDir, "page.png")
	if err := imaging.Save(prepared, pagePath); err != nil {
		e.logger.Error("ocr temp image write failed", "error", err)
		return ""
	}

	for _, cfg := range ocrConfigs {
		args := []string{pagePath, "stdout", "-l", e.cfg.TesseractLang, "--psm", cfg.psm}
		if cfg.whitelist != "" {
			args = append(args, "-c", "tessedit_char_whitelist="+cfg.whitelist)
		}
		out, _, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
		if err != nil {
			continue
		}
		if text := string(out); strings.TrimSpace(text) != "" {
			return text
		}
	}
	return ""
}

// extractImage decodes the buffered bytes and OCRs them. Undecodable or
// unreadable images degrade to empty text.
func (e *Extractor) extractImage(ctx context.Context, buf *Buffer, hints Hints) (string, []string) {
	img, err := decodeImage(buf.Bytes(), constants.IsHEICExt(filepath.Ext(hints.Filename)))
	if err != nil {
		return "", []string{err.Error()}
	}
	return Normalize(e.ocrImage(ctx, img)), nil
}
