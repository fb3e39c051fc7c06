package util

import "testing"

func TestHashPrompt(t *testing.T) {
	got := HashPrompt("system", "user prompt")
	if got != HashPrompt("system", "user prompt") {
		t.Fatalf("expected stable hash, got %s", got)
	}
	if got == HashPrompt("system", "other prompt") {
		t.Fatalf("expected hash to change with input")
	}
	if got == HashPrompt("systemuser prompt") {
		t.Fatalf("expected part boundaries to matter")
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "short", in: "abc", max: 5, want: "abc"},
		{name: "cut", in: "abcdef", max: 3, want: "abc..."},
		{name: "rune boundary", in: "Natação", max: 5, want: "Nata..."},
		{name: "zero", in: "abc", max: 0, want: ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.max); got != tt.want {
				t.Fatalf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}
