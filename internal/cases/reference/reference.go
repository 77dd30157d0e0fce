// Package reference generates human-readable case reference numbers.
package reference

import (
	"crypto/rand"
	"fmt"
	"time"
)

// alphabet excludes visually ambiguous characters (0/O, 1/I/L) so a
// reference survives being read over the phone.
const alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const suffixLength = 6

// Generator produces candidate case references of the form IMM-2026-X7KQ9W.
// Uniqueness is enforced by the converter's collision-retry loop and the
// unique index on the cases table, not here.
type Generator struct {
	now func() time.Time
}

// New creates a reference generator.
func New() *Generator {
	return &Generator{now: time.Now}
}

// NewWithClock creates a generator with a fixed clock for tests.
func NewWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Generate returns a fresh candidate reference.
func (g *Generator) Generate() string {
	buf := make([]byte, suffixLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in a state where no
		// work should continue.
		panic(fmt.Sprintf("reference generator: read random: %v", err))
	}

	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}

	return fmt.Sprintf("IMM-%d-%s", g.now().Year(), string(buf))
}
