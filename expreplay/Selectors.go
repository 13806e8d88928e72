package expreplay

import (
	"math/rand"

	"sfneuman.com/gonav/utils/intutils"
)

// Selector implements functionality for choosing which stored
// transitions are drawn from an experience replay buffer
type Selector interface {
	// choose selects the indices at which data should be sampled from
	// the experience replay buffer
	choose(c *cache) []int

	// BatchSize returns the number of elements that will be selected
	BatchSize() int
}

// uniformSelector is a Selector which selects data from an experience
// replay buffer uniformly randomly without replacement, so that a
// single batch never contains the same stored transition twice
type uniformSelector struct {
	samples int
	rng     *rand.Rand
}

// NewUniformSelector returns a new Selector which selects data
// uniformly randomly, without replacement, from an experience replay
// buffer
func NewUniformSelector(samples int, seed int64) Selector {
	source := rand.NewSource(seed)
	rng := rand.New(source)

	return &uniformSelector{samples: samples, rng: rng}
}

// BatchSize gets the number of samples in a batch drawn from the buffer
func (u *uniformSelector) BatchSize() int {
	return u.samples
}

// choose selects a number of distinct indices at which to draw data
// from the buffer using a partial Fisher-Yates shuffle over the
// buffer's in-use indices
func (u *uniformSelector) choose(c *cache) []int {
	from := c.sampleFrom()
	pool := make([]int, len(from))
	copy(pool, from)

	n := intutils.Min(u.BatchSize(), len(pool))
	for i := 0; i < n; i++ {
		j := i + u.rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	return pool[:n]
}

// fifoSelector is a Selector which selects the oldest data in an
// experience replay buffer first. It is deterministic, which makes it
// useful for debugging an agent on a fixed stream of experience.
type fifoSelector struct {
	samples int
}

// NewFifoSelector returns a new Selector which draws the oldest
// data from an experience replay buffer first
func NewFifoSelector(samples int) Selector {
	return &fifoSelector{samples: samples}
}

// BatchSize gets the number of samples in a batch drawn from the buffer
func (f *fifoSelector) BatchSize() int {
	return f.samples
}

// choose selects the indices of the oldest data in the buffer
func (f *fifoSelector) choose(c *cache) []int {
	return c.insertOrder(intutils.Min(f.BatchSize(), c.Capacity()))
}
