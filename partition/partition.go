// Package partition provides the data-parallel dispatch the CPR core uses
// for its per-cell and per-column loops (C2's weight solves, C3's pressure
// matrix rebuild). C5's restrict/lift/increment loops in
// cpr.Preconditioner.Apply run serially and do not use it. It adapts
// utils.PartitionMap (even split of a 1-D range into shards) and the
// goroutine+sync.WaitGroup fan-out pattern used throughout
// model_problems/Euler2D (e.g. euler.go's RungeKutta4SSP.Step, edges.go).
package partition

import (
	"runtime"
	"sync"
)

// Map splits [0, MaxIndex) into ParallelDegree contiguous, near-equal shards.
type Map struct {
	MaxIndex       int
	ParallelDegree int
	shards         [][2]int
}

// New builds a Map, spreading any remainder evenly over the first shards so
// no shard differs from another by more than one element.
func New(parallelDegree, maxIndex int) *Map {
	if parallelDegree < 1 {
		parallelDegree = 1
	}
	pm := &Map{MaxIndex: maxIndex, ParallelDegree: parallelDegree}
	pm.shards = make([][2]int, parallelDegree)
	npart := maxIndex / parallelDegree
	remainder := maxIndex % parallelDegree
	for n := 0; n < parallelDegree; n++ {
		var startAdd, endAdd int
		if remainder != 0 {
			if n+1 > remainder {
				startAdd = remainder
			} else {
				startAdd = n
				endAdd = 1
			}
		}
		lo := n*npart + startAdd
		hi := lo + npart + endAdd
		pm.shards[n] = [2]int{lo, hi}
	}
	return pm
}

// Range returns the half-open [lo, hi) index range owned by shard n.
func (pm *Map) Range(n int) (lo, hi int) {
	return pm.shards[n][0], pm.shards[n][1]
}

// For runs fn(lo, hi) once per shard, dispatching shards > 1 across
// goroutines and blocking until all complete: every loop runs to completion
// before returning, with no suspension and no cancellation. Below minBatch
// total elements it runs fn directly on the whole range, since the
// goroutine dispatch overhead would dominate a small cell count.
func For(n, minBatch int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if n < minBatch {
		fn(0, n)
		return
	}
	degree := runtime.GOMAXPROCS(0)
	if degree > n {
		degree = n
	}
	pm := New(degree, n)
	var wg sync.WaitGroup
	for s := 0; s < degree; s++ {
		lo, hi := pm.Range(s)
		if lo == hi {
			continue
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
