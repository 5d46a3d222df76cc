package catalog

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Record id prefixes.
const (
	ProductPrefix = "product"
	QueuePrefix   = "queue"
)

// IDGenerator produces new record ids such as "product_1700000000000".
type IDGenerator interface {
	Generate(prefix string) string
}

// MillisGenerator stamps ids with the current unix time in milliseconds.
//
// Two calls in the same millisecond would collide, so the generator keeps the
// last value handed out and bumps past it. Values are strictly increasing for
// the life of the generator, across prefixes.
//
// Thread-safety: safe for concurrent use (atomic compare-and-swap).
type MillisGenerator struct {
	last atomic.Int64
	now  func() time.Time
}

// NewMillisGenerator returns a generator backed by the wall clock.
func NewMillisGenerator() *MillisGenerator {
	return &MillisGenerator{now: time.Now}
}

// Generate returns prefix + "_" + a strictly increasing millisecond stamp.
func (g *MillisGenerator) Generate(prefix string) string {
	return prefix + "_" + strconv.FormatInt(g.next(), 10)
}

func (g *MillisGenerator) next() int64 {
	now := time.Now
	if g.now != nil {
		now = g.now
	}
	for {
		prev := g.last.Load()
		ms := now().UnixMilli()
		if ms <= prev {
			ms = prev + 1
		}
		if g.last.CompareAndSwap(prev, ms) {
			return ms
		}
	}
}

// FixedGenerator returns predetermined ids for testing.
//
// Panics once the ids are exhausted so a test that creates more records than
// it planned for fails loudly.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order, ignoring
// the prefix.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

func (g *FixedGenerator) Generate(string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
