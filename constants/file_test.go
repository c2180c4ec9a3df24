package constants

import "testing"

func TestMapExtToFormat(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{"pdf", PDF},
		{".PDF", PDF},
		{"jpg", IMAGE},
		{".HEIC", IMAGE},
		{"webp", IMAGE},
		{"txt", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := MapExtToFormat(tt.ext); got != tt.want {
			t.Errorf("MapExtToFormat(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestIsHEICExt(t *testing.T) {
	tests := []struct {
		ext  string
		want bool
	}{
		{"heic", true},
		{".heic", true},
		{".HEIF", true},
		{"jpg", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsHEICExt(tt.ext); got != tt.want {
			t.Errorf("IsHEICExt(%q) = %v, want %v", tt.ext, got, tt.want)
		}
	}
}
