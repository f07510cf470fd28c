package commands

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"shorter than max", "hello", 10, "hello"},
		{"exactly max", "hello", 5, "hello"},
		{"longer than max", "hello world", 5, "hello..."},
		{"empty", "", 5, ""},
		{"multibyte runes", "héllo wörld", 5, "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestStringOrEnv(t *testing.T) {
	t.Setenv("SCENEDEX_TEST_FALLBACK", "from-env")

	if got := stringOrEnv("explicit", "SCENEDEX_TEST_FALLBACK"); got != "explicit" {
		t.Errorf("stringOrEnv with value = %q, want %q", got, "explicit")
	}

	if got := stringOrEnv("", "SCENEDEX_TEST_FALLBACK"); got != "from-env" {
		t.Errorf("stringOrEnv fallback = %q, want %q", got, "from-env")
	}

	if got := stringOrEnv("", "SCENEDEX_TEST_MISSING"); got != "" {
		t.Errorf("stringOrEnv missing env = %q, want empty", got)
	}
}
