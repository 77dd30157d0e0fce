package phone

import (
	"errors"
	"testing"
)

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"international prefix", "+44 7911 123456", "+447911123456"},
		{"national format uses fallback region", "07911 123456", "+447911123456"},
		{"already normalized", "+2348031234567", "+2348031234567"},
		{"surrounding whitespace", "  +447911123456  ", "+447911123456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeE164(tt.input)
			if err != nil {
				t.Fatalf("NormalizeE164(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeE164(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeE164Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "not a number", "+44 12", "12345"} {
		if _, err := NormalizeE164(input); !errors.Is(err, ErrInvalidNumber) {
			t.Errorf("NormalizeE164(%q) error = %v, want ErrInvalidNumber", input, err)
		}
	}
}
