package state

import (
	"math"
	"runtime"
	"time"
)

// Budget reports what is left of the current invocation's allowance.
type Budget interface {
	TimeRemaining() time.Duration
	MemoryRemaining() int64
}

// RuntimeBudget measures wall-clock time since Start and heap in use against
// fixed limits. A zero limit means unlimited.
type RuntimeBudget struct {
	Start       time.Time
	MaxDuration time.Duration
	MemoryLimit int64
	Now         func() time.Time
	HeapInUse   func() int64
}

func NewRuntimeBudget(maxDuration time.Duration, memoryLimit int64) *RuntimeBudget {
	return &RuntimeBudget{
		Start:       time.Now(),
		MaxDuration: maxDuration,
		MemoryLimit: memoryLimit,
		Now:         time.Now,
		HeapInUse:   heapInUse,
	}
}

func (b *RuntimeBudget) TimeRemaining() time.Duration {
	if b.MaxDuration <= 0 {
		return time.Duration(math.MaxInt64)
	}
	return b.MaxDuration - b.Now().Sub(b.Start)
}

func (b *RuntimeBudget) MemoryRemaining() int64 {
	if b.MemoryLimit <= 0 {
		return math.MaxInt64
	}
	return b.MemoryLimit - b.HeapInUse()
}

// Exhausted is true when either allowance is used up.
func Exhausted(b Budget) bool {
	return b.TimeRemaining() <= 0 || b.MemoryRemaining() <= 0
}

func heapInUse() int64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return int64(ms.HeapInuse)
}

// Unlimited never runs out.
type Unlimited struct{}

func (Unlimited) TimeRemaining() time.Duration { return time.Duration(math.MaxInt64) }
func (Unlimited) MemoryRemaining() int64 { return math.MaxInt64 }
