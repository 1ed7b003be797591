// Package refcode generates human-presentable booking references of the form
// RES-<TIMESTAMP36>-<RANDOM5>.
package refcode

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	prefix       = "RES"
	suffixLength = 5
	maxAttempts  = 16
	alphabet     = "0123456789abcdefghijklmnopqrstuvwxyz"
)

var ErrExhausted = errors.New("could not generate a unique reference")

// Generator is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func New() *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeeded returns a deterministic generator, for tests.
func NewSeeded(seed1, seed2 uint64) *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(seed1, seed2))}
}

// Generate builds a reference from the millisecond timestamp of now and a
// random base-36 suffix. Collisions are not checked.
func (g *Generator) Generate(now time.Time) string {
	ts := strconv.FormatInt(now.UnixMilli(), 36)

	var sb strings.Builder
	sb.Grow(suffixLength)
	g.mu.Lock()
	for i := 0; i < suffixLength; i++ {
		sb.WriteByte(alphabet[g.rnd.IntN(len(alphabet))])
	}
	g.mu.Unlock()

	return strings.ToUpper(prefix + "-" + ts + "-" + sb.String())
}

// NextUnique regenerates until taken reports the reference as free.
func (g *Generator) NextUnique(now time.Time, taken func(string) bool) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		id := g.Generate(now)
		if taken == nil || !taken(id) {
			return id, nil
		}
	}
	return "", ErrExhausted
}
