package bridge

import "math/rand"

// Rand is the randomness source for line selection, jitter, and the
// follow-up coin flip. Injectable so tests can supply fixed sequences.
type Rand interface {
	// Intn returns a uniform int in [0, n).
	Intn(n int) int

	// Float64 returns a uniform float64 in [0, 1).
	Float64() float64
}

// systemRand delegates to the shared math/rand source, which is safe for
// concurrent use.
type systemRand struct{}

func (systemRand) Intn(n int) int   { return rand.Intn(n) }
func (systemRand) Float64() float64 { return rand.Float64() }

var _ Rand = systemRand{}

// pickLine returns a uniformly random element of lines.
func pickLine(r Rand, lines []string) string {
	return lines[r.Intn(len(lines))]
}
