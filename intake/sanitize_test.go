package intake

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "packing_slip.png", "packing_slip.png"},
		{"path traversal", "../../etc/passwd", "passwd"},
		{"spaces and punctuation", "my photo (1).jpg", "my_photo__1_.jpg"},
		{"empty", "", "unnamed"},
		{"dot led", ".hidden", "unnamed"},
		{"control chars", "evil\x00name.png", "evilname.png"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SanitizeFilename(tc.input)
			if got != tc.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSanitizeFilenameIdempotent(t *testing.T) {
	inputs := []string{"../evil.sh", "normal.png", ".dotfile", "", "üñîçødé.png"}
	for _, in := range inputs {
		once := SanitizeFilename(in)
		twice := SanitizeFilename(once)
		if once != twice {
			t.Errorf("SanitizeFilename not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}
