// Package footprint builds per-iteration working sets and folds them into the
// cumulative footprint that defines the locality estimate.
package footprint

import "sort"

// WordSize is the granularity at which scalar accesses are tracked.
const WordSize = 8

// Touch records how an address was first accessed within an iteration.
type Touch uint8

// Touch kinds. The first touch of an address wins for the whole iteration.
const (
	Uninitialized Touch = iota
	FirstLoad
	FirstStore
)

// WorkingSet is the finalized footprint of one iteration.
type WorkingSet struct {
	// Addrs holds the addresses first touched by a load, ascending.
	Addrs []uint64
	// IO counts loads whose address was not observable.
	IO uint64
	// Stores holds the addresses first touched by a store, ascending. They
	// are not part of the footprint.
	Stores []uint64
}

// Size returns the effective footprint of the iteration.
func (w WorkingSet) Size() uint64 {
	return uint64(len(w.Addrs)) + w.IO
}

// Iteration accumulates the accesses of one loop iteration.
type Iteration struct {
	touched map[uint64]Touch
	ranges  map[int32]*ArrayRange
	io      uint64
	records uint64

	maxRangeBytes uint64
}

// NewIteration creates an empty iteration. A zero maxRangeBytes selects
// DefaultMaxRangeBytes.
func NewIteration(maxRangeBytes uint64) *Iteration {
	if maxRangeBytes == 0 {
		maxRangeBytes = DefaultMaxRangeBytes
	}
	return &Iteration{
		touched:       make(map[uint64]Touch),
		ranges:        make(map[int32]*ArrayRange),
		maxRangeBytes: maxRangeBytes,
	}
}

// Records returns how many access records the iteration has seen.
func (it *Iteration) Records() uint64 {
	return it.records
}

// IO returns the number of address-less loads seen so far.
func (it *Iteration) IO() uint64 {
	return it.io
}

// TouchOf returns the first-touch kind of an address.
func (it *Iteration) TouchOf(addr uint64) Touch {
	return it.touched[addr]
}

// Range returns the pending range of an indvar site, if any.
func (it *Iteration) Range(site int32) (ArrayRange, bool) {
	r, ok := it.ranges[site]
	if !ok {
		return ArrayRange{}, false
	}
	return *r, true
}

// Load records a read of length bytes at addr. A zero address stands for an
// access whose address is unobservable and counts as one I/O unit.
func (it *Iteration) Load(addr uint64, length uint32) {
	it.records++
	if addr == 0 {
		it.io++
		return
	}
	it.touchWords(addr, length, FirstLoad)
}

// Store records a write of length bytes at addr.
func (it *Iteration) Store(addr uint64, length uint32) {
	it.records++
	it.touchWords(addr, length, FirstStore)
}

// Indvar records a begin or end observation of a strided traversal site.
func (it *Iteration) Indvar(site int32, addr uint64, length uint32, stride int32) error {
	it.records++
	r, ok := it.ranges[site]
	if !ok {
		r = &ArrayRange{SiteID: site}
		it.ranges[site] = r
	}
	return r.observe(addr, length, stride)
}

func (it *Iteration) touchWords(addr uint64, length uint32, kind Touch) {
	for off := uint64(0); off < uint64(length); off += WordSize {
		it.touch(addr+off, kind)
	}
}

func (it *Iteration) touch(addr uint64, kind Touch) {
	if it.touched[addr] == Uninitialized {
		it.touched[addr] = kind
	}
}

// Finalize expands every closed range and returns the iteration's working
// set. Ranges that cannot be expanded are reported and skipped.
func (it *Iteration) Finalize() (WorkingSet, []error) {
	var errs []error

	sites := make([]int32, 0, len(it.ranges))
	for site := range it.ranges {
		sites = append(sites, site)
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i] < sites[j] })

	for _, site := range sites {
		err := it.ranges[site].Expand(it.maxRangeBytes, func(addr uint64) {
			it.touch(addr, FirstLoad)
		})
		if err != nil {
			errs = append(errs, err)
		}
	}

	var addrs, stores []uint64
	for addr, kind := range it.touched {
		switch kind {
		case FirstLoad:
			addrs = append(addrs, addr)
		case FirstStore:
			stores = append(stores, addr)
		}
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	sort.Slice(stores, func(i, j int) bool { return stores[i] < stores[j] })

	return WorkingSet{Addrs: addrs, IO: it.io, Stores: stores}, errs
}

// Reset clears the iteration for reuse.
func (it *Iteration) Reset() {
	clear(it.touched)
	clear(it.ranges)
	it.io = 0
	it.records = 0
}
