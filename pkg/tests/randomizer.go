package tests

import (
	"fmt"
	"math/rand"
	"time"
)

type Randomizer struct {
	Float64 func() float64
	Bool    func() bool
	Intn    func(n int) int
	Perm    func(n int) []int
}

func NewRandomizer() Randomizer {
	random := rand.New(rand.NewSource(time.Now().Unix())) //nolint:gosec // for tests

	return Randomizer{
		Float64: random.Float64,
		Bool:    func() bool { return random.Intn(2) == 0 }, //nolint:mnd // skip
		Intn:    random.Intn,
		Perm:    random.Perm,
	}
}

// Roster picks size distinct player identifiers out of a pool of poolSize,
// in random order.
func (r Randomizer) Roster(poolSize, size int) []string {
	if size > poolSize {
		size = poolSize
	}

	roster := make([]string, 0, size)
	for _, idx := range r.Perm(poolSize)[:size] {
		roster = append(roster, fmt.Sprintf("player-%03d", idx))
	}

	return roster
}
