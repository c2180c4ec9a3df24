package textract

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty passthrough", in: "", want: ""},
		{
			name: "crlf to lf",
			in:   "Vendor: Acme\r\nTotal: 10.00\r\n",
			want: "Vendor: Acme\nTotal: 10.00",
		},
		{
			name: "tabs and runs of spaces collapse",
			in:   "Widget\tA   3    10.00",
			want: "Widget A 3 10.00",
		},
		{
			name: "blank lines capped at one",
			in:   "a\n\n\n\n\nb",
			want: "a\n\nb",
		},
		{
			name: "underscore rulers stripped",
			in:   "Header\n______\nBody",
			want: "Header\n\nBody",
		},
		{
			name: "trailing space per line trimmed",
			in:   "line one   \nline two ",
			want: "line one\nline two",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	in := "Vendor: Acme\r\n\r\n\r\nTotal:\t100.00  "
	once := Normalize(in)
	if twice := Normalize(once); twice != once {
		t.Errorf("Normalize not idempotent: %q vs %q", once, twice)
	}
}
