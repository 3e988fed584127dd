package cachemodel

import (
	"github.com/sarchlab/memfoot/analysis"
)

// Hierarchy is a two-level cache: a private L1 data cache backed by an L2.
type Hierarchy struct {
	L1 *Cache
	L2 *Cache
}

// NewHierarchy creates a hierarchy from two cache configurations.
func NewHierarchy(l1, l2 Config) *Hierarchy {
	return &Hierarchy{L1: New(l1), L2: New(l2)}
}

// Read looks addr up in L1 and, on a miss, in L2. It returns the latency of
// the access: the L1 hit latency, or the L1 miss latency plus whatever L2
// reports.
func (h *Hierarchy) Read(addr uint64) uint64 {
	return h.complete(addr, h.L1.Read(addr))
}

// Write stores to addr with write-allocate in L1. A miss fetches the block
// from L2 like a read.
func (h *Hierarchy) Write(addr uint64) uint64 {
	return h.complete(addr, h.L1.Write(addr))
}

func (h *Hierarchy) complete(addr uint64, r1 AccessResult) uint64 {
	if r1.Writeback {
		h.L2.Write(r1.EvictedAddr)
	}
	if r1.Hit {
		return r1.Latency
	}
	return r1.Latency + h.L2.Read(addr).Latency
}

// IterationStats is the cache behavior of one replayed iteration.
type IterationStats struct {
	Index    uint64
	Accesses uint64
	// Stores counts the accesses replayed as writes.
	Stores   uint64
	L1Misses uint64
	L2Misses uint64
	Cycles   uint64
	// Unaddressable counts I/O accesses, which cannot be replayed.
	Unaddressable uint64
}

// Summary aggregates a whole replay.
type Summary struct {
	Iterations    uint64
	Accesses      uint64
	Stores        uint64
	Unaddressable uint64
	Cycles        uint64
	L1            Statistics
	L2            Statistics
}

// Replayer feeds every finalized iteration through a cache hierarchy: the
// working set as reads, then the store-first words as writes, each in
// ascending address order. It is an analysis.Observer.
type Replayer struct {
	hierarchy  *Hierarchy
	iterations []IterationStats
	summary    Summary
}

// NewReplayer creates a replayer over a fresh hierarchy.
func NewReplayer(l1, l2 Config) *Replayer {
	return &Replayer{hierarchy: NewHierarchy(l1, l2)}
}

// Hierarchy returns the replayed cache hierarchy.
func (r *Replayer) Hierarchy() *Hierarchy {
	return r.hierarchy
}

// ObserveIteration replays one iteration.
func (r *Replayer) ObserveIteration(it *analysis.IterationResult) {
	l1Before := r.hierarchy.L1.Stats().Misses
	l2Before := r.hierarchy.L2.Stats().Misses

	stats := IterationStats{
		Index:         it.Index,
		Unaddressable: it.WorkingSet.IO,
	}
	for _, addr := range it.WorkingSet.Addrs {
		stats.Cycles += r.hierarchy.Read(addr)
		stats.Accesses++
	}
	for _, addr := range it.WorkingSet.Stores {
		stats.Cycles += r.hierarchy.Write(addr)
		stats.Accesses++
		stats.Stores++
	}
	stats.L1Misses = r.hierarchy.L1.Stats().Misses - l1Before
	stats.L2Misses = r.hierarchy.L2.Stats().Misses - l2Before

	r.iterations = append(r.iterations, stats)
	r.summary.Iterations++
	r.summary.Accesses += stats.Accesses
	r.summary.Stores += stats.Stores
	r.summary.Unaddressable += stats.Unaddressable
	r.summary.Cycles += stats.Cycles
}

// ObserveReport captures the final cache statistics.
func (r *Replayer) ObserveReport(*analysis.Report) {
	r.summary.L1 = r.hierarchy.L1.Stats()
	r.summary.L2 = r.hierarchy.L2.Stats()
}

// Iterations returns the per-iteration statistics.
func (r *Replayer) Iterations() []IterationStats {
	return r.iterations
}

// Summary returns the aggregated statistics.
func (r *Replayer) Summary() Summary {
	s := r.summary
	s.L1 = r.hierarchy.L1.Stats()
	s.L2 = r.hierarchy.L2.Stats()
	return s
}
