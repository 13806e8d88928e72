// Package expreplay implements bounded experience replay buffers
package expreplay

import (
	"fmt"

	"sfneuman.com/gonav/timestep"
)

// Config implements a specific configuration of an ExperienceReplayer
type Config struct {
	SampleMethod      SelectorType
	SampleSize        int
	MaxReplayCapacity int
	MinReplayCapacity int
}

// Create creates and returns the ExperienceReplayer with the specified
// Config.
func (c Config) Create(stateSize, positionSize, actionSize int,
	seed int64) (ExperienceReplayer, error) {
	sampler := CreateSelector(c.SampleMethod, c.SampleSize, seed)

	return New(sampler, c.MinReplayCapacity, c.MaxReplayCapacity, stateSize,
		positionSize, actionSize)
}

// SelectorType identifies the method used to draw samples from an
// experience replay buffer
type SelectorType string

const (
	Uniform SelectorType = "Uniform"
	Fifo    SelectorType = "Fifo"
)

// CreateSelector is a factory method for creating Selectors
func CreateSelector(t SelectorType, batchSize int, seed int64) Selector {
	switch t {
	case Fifo:
		return NewFifoSelector(batchSize)
	default:
		return NewUniformSelector(batchSize, seed)
	}
}

// ExperienceReplayer implements an experience replay buffer of
// navigation transitions
type ExperienceReplayer interface {
	// Add adds a transition to the buffer, evicting the oldest stored
	// transition if the buffer is at capacity
	Add(t timestep.Transition) error

	// Sample draws a batch of distinct transitions from the buffer
	// and returns the batch as flat []float64 of stacked states,
	// positions, one-hot actions, rewards, terminal flags, next
	// states, and next positions
	Sample() ([]float64, []float64, []float64, []float64, []float64,
		[]float64, []float64, error)

	// SampleAvailable returns whether the buffer holds at least
	// batchSize transitions and has reached its minimum capacity
	SampleAvailable(batchSize int) bool

	// Capacity returns the current number of samples in the buffer
	Capacity() int

	// MaxCapacity returns the maximum allowable samples in the buffer
	MaxCapacity() int

	// MinCapacity returns the number of samples required to be in
	// the buffer before the buffer can be sampled
	MinCapacity() int

	// BatchSize returns the number of samples returned by Sample()
	BatchSize() int
}

// cache implements a concrete ExperienceReplayer as a ring buffer.
//
// Transitions are stored at consecutive indices. Once the ring is full
// each new transition overwrites the index holding the oldest stored
// transition, giving strict first-in-first-out eviction with O(1)
// inserts.
type cache struct {
	stateCache        []float64
	positionCache     []float64
	actionCache       []float64
	rewardCache       []float64
	terminalCache     []float64
	nextStateCache    []float64
	nextPositionCache []float64

	indices         []int
	currentInUsePos int
	isFull          bool

	// Outlines how data is sampled
	sampler Selector

	minCapacity  int
	maxCapacity  int
	stateSize    int
	positionSize int
	actionSize   int
}

// New creates and returns a new ExperienceReplayer. The sampler
// parameter is a Selector which determines how data is drawn from the
// replay buffer. The stateSize, positionSize, and actionSize
// parameters define the sizes of the flattened stacked-frame state,
// the position vector, and the one-hot action vector.
//
// Stacked frame observations should be flattened before adding to the
// buffer.
func New(sampler Selector, minCapacity, maxCapacity, stateSize, positionSize,
	actionSize int) (ExperienceReplayer, error) {
	if minCapacity <= 0 {
		return &cache{}, fmt.Errorf("new: minCapacity must be > 0")
	}
	if maxCapacity < 1 {
		return &cache{}, fmt.Errorf("new: maxCapacity must be >= 1")
	}
	if maxCapacity < sampler.BatchSize() {
		return &cache{}, fmt.Errorf("new: cannot have batch size(%v) > max "+
			"buffer capacity (%v)", sampler.BatchSize(), maxCapacity)
	}
	if stateSize < 1 || positionSize < 1 || actionSize < 1 {
		return &cache{}, fmt.Errorf("new: state, position, and action "+
			"sizes must be > 0 \n\thave(%v, %v, %v)", stateSize, positionSize,
			actionSize)
	}

	indices := make([]int, maxCapacity)
	for i := 0; i < maxCapacity; i++ {
		indices[i] = i
	}

	return &cache{
		stateCache:        make([]float64, maxCapacity*stateSize),
		positionCache:     make([]float64, maxCapacity*positionSize),
		actionCache:       make([]float64, maxCapacity*actionSize),
		rewardCache:       make([]float64, maxCapacity),
		terminalCache:     make([]float64, maxCapacity),
		nextStateCache:    make([]float64, maxCapacity*stateSize),
		nextPositionCache: make([]float64, maxCapacity*positionSize),

		indices:         indices,
		currentInUsePos: 0,
		isFull:          false,

		sampler: sampler,

		minCapacity:  minCapacity,
		maxCapacity:  maxCapacity,
		stateSize:    stateSize,
		positionSize: positionSize,
		actionSize:   actionSize,
	}, nil
}

// String returns the string representation of the cache
func (c *cache) String() string {
	var emptyIndices []int
	var usedIndices []int
	if !c.isFull {
		emptyIndices = c.indices[c.currentInUsePos:]
		usedIndices = c.indices[:c.currentInUsePos]
	} else {
		emptyIndices = []int{}
		usedIndices = c.indices
	}

	baseStr := "Indices Available: %v \nIndices Used: %v \nStates: %v" +
		" \nPositions: %v \nActions: %v \nRewards: %v \nTerminals: %v" +
		" \nNext States: %v \nNext Positions: %v"
	return fmt.Sprintf(baseStr, emptyIndices, usedIndices, c.stateCache,
		c.positionCache, c.actionCache, c.rewardCache, c.terminalCache,
		c.nextStateCache, c.nextPositionCache)
}

// BatchSize returns the number of samples sampled using Sample() -
// a.k.a the batch size
func (c *cache) BatchSize() int {
	return c.sampler.BatchSize()
}

// sampleFrom returns the indices which currently hold data
func (c *cache) sampleFrom() []int {
	if !c.isFull {
		return c.indices[:c.currentInUsePos]
	}
	return c.indices
}

// insertOrder returns the first n indices at which data was inserted
// into the buffer, oldest first. Once the ring is full, the oldest
// data sits just after the current insertion position.
func (c *cache) insertOrder(n int) []int {
	if !c.isFull {
		return c.indices[:n]
	}

	order := make([]int, 0, n)
	for i := 0; i < n; i++ {
		order = append(order, (c.currentInUsePos+i)%c.maxCapacity)
	}
	return order
}

// SampleAvailable returns whether a batch of batchSize transitions can
// be drawn from the buffer
func (c *cache) SampleAvailable(batchSize int) bool {
	return c.Capacity() >= batchSize && c.Capacity() >= c.minCapacity
}

// Sample samples and returns a batch of transitions from the replay
// buffer. The returned values are the flattened stacked states,
// positions, one-hot actions, rewards, terminal flags, next states,
// and next positions.
func (c *cache) Sample() ([]float64, []float64, []float64, []float64,
	[]float64, []float64, []float64, error) {
	if c.Capacity() == 0 {
		err := &ExpReplayError{
			Op:  "sample",
			Err: errEmptyBuffer,
		}
		return nil, nil, nil, nil, nil, nil, nil, err
	}
	if !c.SampleAvailable(c.BatchSize()) {
		err := &ExpReplayError{
			Op:  "sample",
			Err: errInsufficientSamples,
		}
		return nil, nil, nil, nil, nil, nil, nil, err
	}

	indices := c.sampler.choose(c)

	stateBatch := make([]float64, c.BatchSize()*c.stateSize)
	nextStateBatch := make([]float64, c.BatchSize()*c.stateSize)
	for i, index := range indices {
		batchStartInd := i * c.stateSize
		expStartInd := index * c.stateSize
		copy(stateBatch[batchStartInd:batchStartInd+c.stateSize],
			c.stateCache[expStartInd:expStartInd+c.stateSize],
		)
		copy(nextStateBatch[batchStartInd:batchStartInd+c.stateSize],
			c.nextStateCache[expStartInd:expStartInd+c.stateSize],
		)
	}

	positionBatch := make([]float64, c.BatchSize()*c.positionSize)
	nextPositionBatch := make([]float64, c.BatchSize()*c.positionSize)
	for i, index := range indices {
		batchStartInd := i * c.positionSize
		expStartInd := index * c.positionSize
		copy(positionBatch[batchStartInd:batchStartInd+c.positionSize],
			c.positionCache[expStartInd:expStartInd+c.positionSize],
		)
		copy(nextPositionBatch[batchStartInd:batchStartInd+c.positionSize],
			c.nextPositionCache[expStartInd:expStartInd+c.positionSize],
		)
	}

	actionBatch := make([]float64, c.BatchSize()*c.actionSize)
	for i, index := range indices {
		batchStartInd := i * c.actionSize
		expStartInd := index * c.actionSize
		copy(actionBatch[batchStartInd:batchStartInd+c.actionSize],
			c.actionCache[expStartInd:expStartInd+c.actionSize],
		)
	}

	rewardBatch := make([]float64, c.BatchSize())
	terminalBatch := make([]float64, c.BatchSize())
	for i, index := range indices {
		rewardBatch[i] = c.rewardCache[index]
		terminalBatch[i] = c.terminalCache[index]
	}

	return stateBatch, positionBatch, actionBatch, rewardBatch,
		terminalBatch, nextStateBatch, nextPositionBatch, nil
}

// Capacity returns the current number of elements in the cache that
// are available for sampling
func (c *cache) Capacity() int {
	if c.isFull {
		return c.maxCapacity
	}
	return c.currentInUsePos
}

// MaxCapacity returns the maximum number of elements that are allowed
// in the cache
func (c *cache) MaxCapacity() int {
	return c.maxCapacity
}

// MinCapacity returns the minimum number of elements required in the
// cache before sampling is allowed
func (c *cache) MinCapacity() int {
	return c.minCapacity
}

// Add adds a transition to the cache, overwriting the oldest stored
// transition when the cache is at capacity
func (c *cache) Add(t timestep.Transition) error {
	if len(t.State) != c.stateSize || len(t.NextState) != c.stateSize {
		return fmt.Errorf("add: invalid state size \n\twant(%v)\n\thave"+
			"(%v, %v)", c.stateSize, len(t.State), len(t.NextState))
	}
	if t.Position.Len() != c.positionSize ||
		t.NextPosition.Len() != c.positionSize {
		return fmt.Errorf("add: invalid position size \n\twant(%v)\n\thave"+
			"(%v, %v)", c.positionSize, t.Position.Len(), t.NextPosition.Len())
	}
	if t.Action < 0 || t.Action >= c.actionSize {
		return fmt.Errorf("add: action out of range [0, %v) \n\thave(%v)",
			c.actionSize, t.Action)
	}

	index := c.currentInUsePos
	c.currentInUsePos++
	if c.currentInUsePos == c.maxCapacity {
		c.currentInUsePos = 0
		c.isFull = true
	}

	// Copy states
	stateInd := index * c.stateSize
	copy(c.stateCache[stateInd:stateInd+c.stateSize], t.State)
	copy(c.nextStateCache[stateInd:stateInd+c.stateSize], t.NextState)

	// Copy positions
	positionInd := index * c.positionSize
	for i := 0; i < c.positionSize; i++ {
		c.positionCache[positionInd+i] = t.Position.AtVec(i)
		c.nextPositionCache[positionInd+i] = t.NextPosition.AtVec(i)
	}

	// Store the action taken as a one-hot vector
	actionInd := index * c.actionSize
	for i := 0; i < c.actionSize; i++ {
		c.actionCache[actionInd+i] = 0.0
	}
	c.actionCache[actionInd+t.Action] = 1.0

	c.rewardCache[index] = t.Reward
	if t.Terminal {
		c.terminalCache[index] = 1.0
	} else {
		c.terminalCache[index] = 0.0
	}

	return nil
}
