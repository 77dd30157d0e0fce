package reference

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateFormat(t *testing.T) {
	clock := func() time.Time { return time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC) }
	g := NewWithClock(clock)

	ref := g.Generate()

	if !strings.HasPrefix(ref, "IMM-2026-") {
		t.Fatalf("reference %q should start with IMM-2026-", ref)
	}
	suffix := strings.TrimPrefix(ref, "IMM-2026-")
	if len(suffix) != suffixLength {
		t.Fatalf("suffix %q has length %d, want %d", suffix, len(suffix), suffixLength)
	}
	for _, c := range suffix {
		if !strings.ContainsRune(alphabet, c) {
			t.Errorf("suffix contains %q, not in the reference alphabet", c)
		}
	}
}

func TestGenerateAvoidsAmbiguousCharacters(t *testing.T) {
	for _, banned := range "0O1IL" {
		if strings.ContainsRune(alphabet, banned) {
			t.Errorf("alphabet must not contain ambiguous character %q", banned)
		}
	}
}

func TestGenerateVaries(t *testing.T) {
	g := New()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[g.Generate()] = true
	}
	if len(seen) < 2 {
		t.Error("generator produced no variation across 50 references")
	}
}
