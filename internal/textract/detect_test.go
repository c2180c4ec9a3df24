package textract

import (
	"testing"

	"github.com/wakaflorien/procureToPay/constants"
)

func TestDetectKind(t *testing.T) {
	pngHeader := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00}
	heicHeader := []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'h', 'e', 'i', 'c'}

	tests := []struct {
		name   string
		header []byte
		hints  Hints
		want   string
	}{
		{
			name:   "pdf magic wins over image extension",
			header: []byte("%PDF-1.7\n"),
			hints:  Hints{Filename: "scan.jpg"},
			want:   constants.PDF,
		},
		{
			name:   "png magic",
			header: pngHeader,
			want:   constants.IMAGE,
		},
		{
			name:   "jpeg magic",
			header: []byte{0xFF, 0xD8, 0xFF, 0xE0},
			want:   constants.IMAGE,
		},
		{
			name:   "heic ftyp brand",
			header: heicHeader,
			want:   constants.IMAGE,
		},
		{
			name:   "png magic wins over pdf extension",
			header: pngHeader,
			hints:  Hints{Filename: "invoice.pdf"},
			want:   constants.IMAGE,
		},
		{
			name:   "extension when magic is unknown",
			header: []byte("II*\x00"),
			hints:  Hints{Filename: "photo.TIFF"},
			want:   constants.IMAGE,
		},
		{
			name:   "content type as last resort",
			header: []byte{0x00, 0x01, 0x02, 0x03},
			hints:  Hints{ContentType: "application/pdf"},
			want:   constants.PDF,
		},
		{
			name:   "image content type",
			header: []byte{0x00, 0x01, 0x02, 0x03},
			hints:  Hints{ContentType: "image/webp"},
			want:   constants.IMAGE,
		},
		{
			name:   "nothing to go on",
			header: []byte{0x00, 0x01, 0x02, 0x03},
			want:   "",
		},
		{
			name:   "short header is never a match",
			header: []byte{0x89, 0x50},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectKind(tt.header, tt.hints); got != tt.want {
				t.Errorf("DetectKind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSniffHEICRejectsOtherBrands(t *testing.T) {
	mp4 := []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm'}
	if sniffHEIC(mp4) {
		t.Error("isom brand must not be classified as heic")
	}
}
