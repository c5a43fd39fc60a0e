// Package cpd implements the multinomial family's sufficient statistics
// (the "CPT") and the Cooper-Herskovits log-marginal-likelihood (spec.md
// §4.2), plus the log-space arithmetic the rest of the core relies on to
// never exponentiate a partial sum.
package cpd

import (
	"math"
	"sync"
	"sync/atomic"
)

// logFactorialCache is process-global, immutable-after-resize state shared
// by every CPT in the process (spec.md §4.2, §5): extension is guarded by a
// mutex, but once sized large enough all reads are lock-free.
type logFactorialCache struct {
	mu    sync.Mutex
	table atomic.Value // holds []float64, table[0] == 0 by convention
}

var globalLnFactorial logFactorialCache

// ensure grows the shared cache so indices [0, size] are valid, extending
// in place and never shrinking.
func (c *logFactorialCache) ensure(size int) {
	if t, ok := c.table.Load().([]float64); ok && len(t) > size {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	t, _ := c.table.Load().([]float64)
	if len(t) > size {
		return
	}

	newSize := size + 10
	table := make([]float64, newSize)
	// table[0] = 0 by convention, so 0! contributes 0 to a log-sum.
	for k := 1; k < newSize; k++ {
		table[k] = table[k-1] + math.Log(float64(k))
	}
	c.table.Store(table)
}

func (c *logFactorialCache) get(k int) float64 {
	t := c.table.Load().([]float64)
	return t[k]
}

// EnsureLnFactorial grows the shared log-factorial cache to cover indices up
// to size, if it isn't already that large. CPT construction calls this so
// that every subsequent LnFactorial lookup during scoring is lock-free.
func EnsureLnFactorial(size int) {
	globalLnFactorial.ensure(size)
}

// LnFactorial returns ln(k!), reading the shared cache. Callers must have
// called EnsureLnFactorial with a size > k at least once; CPT.Build does
// this automatically for every index it will need.
func LnFactorial(k int) float64 {
	return globalLnFactorial.get(k)
}
