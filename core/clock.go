package core

import (
	"sync"
	"time"
)

// Clock supplies the two independent time sources the engines consume: a
// monotonically increasing block height for reward emission and wall-clock
// seconds for cooldowns and vesting.
type Clock interface {
	Height() uint64
	Now() int64
}

// ChainClock derives the block height from the genesis time and a fixed block
// interval. It is a pure function of wall time.
type ChainClock struct {
	Genesis  time.Time
	Interval time.Duration
	nowFn    func() time.Time
}

// NewChainClock returns a clock producing one block per interval since genesis.
func NewChainClock(genesis time.Time, interval time.Duration) *ChainClock {
	return &ChainClock{Genesis: genesis, Interval: interval, nowFn: time.Now}
}

func (c *ChainClock) wall() time.Time {
	if c.nowFn == nil {
		return time.Now()
	}
	return c.nowFn()
}

// Height returns the number of whole intervals elapsed since genesis.
func (c *ChainClock) Height() uint64 {
	if c.Interval <= 0 {
		return 0
	}
	elapsed := c.wall().Sub(c.Genesis)
	if elapsed <= 0 {
		return 0
	}
	return uint64(elapsed / c.Interval)
}

// Now returns the wall clock in unix seconds.
func (c *ChainClock) Now() int64 { return c.wall().Unix() }

// ManualClock is a settable clock for tests and tooling.
type ManualClock struct {
	mu     sync.Mutex
	height uint64
	now    int64
}

// NewManualClock returns a clock fixed at height and now.
func NewManualClock(height uint64, now int64) *ManualClock {
	return &ManualClock{height: height, now: now}
}

func (c *ManualClock) Height() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height
}

func (c *ManualClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves both clocks. Height never moves backwards.
func (c *ManualClock) Set(height uint64, now int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if height > c.height {
		c.height = height
	}
	c.now = now
}

// Advance moves the height forward by blocks and the wall clock by seconds.
func (c *ManualClock) Advance(blocks uint64, seconds int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.height += blocks
	c.now += seconds
}
