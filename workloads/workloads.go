// Package workloads provides synthetic loop traces with known locality
// estimates. They are used to exercise the analyzer end to end and by
// tracegen to produce sample inputs.
package workloads

import (
	"github.com/sarchlab/memfoot/stride"
	"github.com/sarchlab/memfoot/trace"
)

// Workload is a synthetic trace of one monitored loop.
type Workload struct {
	// Name identifies the workload
	Name string

	// Description explains the access pattern
	Description string

	// Strides maps the strided sites of the trace to their stride
	Strides map[int32]int32

	// Build writes the trace, terminator included
	Build func(w *trace.Writer) error

	// ExpectedN is the locality estimate the trace must produce
	ExpectedN uint64

	// ExpectedCost is the cost carried by the terminator
	ExpectedCost uint64
}

// StrideMap returns the workload's strides as a stride.Map.
func (w Workload) StrideMap() (*stride.Map, error) {
	m := stride.New()
	for site, s := range w.Strides {
		if err := m.Set(site, s); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// All returns every synthetic workload.
func All() []Workload {
	return []Workload{
		scalarReuse(),
		arraySweep(),
		reverseList(),
		ioHeavy(),
		storeShadowed(),
	}
}

// Get returns the workload with the given name.
func Get(name string) (Workload, bool) {
	for _, w := range All() {
		if w.Name == name {
			return w, true
		}
	}
	return Workload{}, false
}

// builder chains writer calls and keeps the first error.
type builder struct {
	w   *trace.Writer
	err error
}

func (b *builder) do(f func() error) {
	if b.err == nil {
		b.err = f()
	}
}

func (b *builder) load(addr uint64, length uint32, site int32) {
	b.do(func() error { return b.w.Load(addr, length, site) })
}

func (b *builder) store(addr uint64, length uint32, site int32) {
	b.do(func() error { return b.w.Store(addr, length, site) })
}

func (b *builder) io(site int32) {
	b.do(func() error { return b.w.IO(site) })
}

func (b *builder) indvar(addr uint64, elementLength uint32, site int32) {
	b.do(func() error { return b.w.Indvar(addr, elementLength, site) })
}

// iterations writes n iterations separated by delimiters and ends the trace
// with a terminator carrying n.
func (b *builder) iterations(n int, body func(i int)) error {
	for i := 0; i < n; i++ {
		if i > 0 {
			b.do(b.w.Delimiter)
		}
		body(i)
	}
	b.do(func() error { return b.w.Cost(uint64(n)) })
	b.do(b.w.Flush)
	return b.err
}

// 1. Scalar Reuse - two scalars read in every iteration
func scalarReuse() Workload {
	return Workload{
		Name:        "scalar_reuse",
		Description: "4 iterations each loading the same two 8-byte scalars",
		Build: func(w *trace.Writer) error {
			b := &builder{w: w}
			return b.iterations(4, func(int) {
				b.load(0x1000, 8, 1)
				b.load(0x2000, 8, 2)
			})
		},
		// Every iteration: Mi=2 Ci=2 Ri=2
		ExpectedN:    2,
		ExpectedCost: 4,
	}
}

// 2. Array Sweep - a sliding window over an array of 8-byte elements
func arraySweep() Workload {
	const base = 0x10000
	return Workload{
		Name:        "array_sweep",
		Description: "3 iterations each sweeping 4 elements, window advancing by one element",
		Strides:     map[int32]int32{3: 1},
		Build: func(w *trace.Writer) error {
			b := &builder{w: w}
			return b.iterations(3, func(i int) {
				b.indvar(base+uint64(8*i), 8, 3)
				b.indvar(base+uint64(8*(i+3)), 8, 3)
			})
		},
		// (32*32 + 32*32 + 40*32) / (32 + 24 + 24)
		ExpectedN:    41,
		ExpectedCost: 3,
	}
}

// 3. Reverse List - a backward traversal plus a head pointer
func reverseList() Workload {
	const base = 0x20000
	return Workload{
		Name:        "reverse_list",
		Description: "2 iterations walking 4 elements of 4 bytes backwards and reading a head pointer",
		Strides:     map[int32]int32{5: -1},
		Build: func(w *trace.Writer) error {
			b := &builder{w: w}
			return b.iterations(2, func(int) {
				b.load(0x30000, 8, 6)
				b.indvar(base+12, 4, 5)
				b.indvar(base, 4, 5)
			})
		},
		// 16 range bytes and 1 scalar word, reused fully
		ExpectedN:    17,
		ExpectedCost: 2,
	}
}

// 4. I/O Heavy - address-less loads dominate the footprint
func ioHeavy() Workload {
	return Workload{
		Name:        "io_heavy",
		Description: "3 iterations each loading one scalar and performing two I/O reads",
		Build: func(w *trace.Writer) error {
			b := &builder{w: w}
			return b.iterations(3, func(int) {
				b.load(0x1000, 8, 1)
				b.io(2)
				b.io(2)
			})
		},
		// Mi grows 3, 5, 7 with Ci=3 and Ri=1: 45 / 3
		ExpectedN:    15,
		ExpectedCost: 3,
	}
}

// 5. Store Shadowed - a load after a store of the same word is not counted
func storeShadowed() Workload {
	return Workload{
		Name:        "store_shadowed",
		Description: "a scalar written then read, followed by an iteration that only reads it",
		Build: func(w *trace.Writer) error {
			b := &builder{w: w}
			return b.iterations(2, func(i int) {
				if i == 0 {
					b.store(0x4000, 8, 7)
				}
				b.load(0x4000, 8, 7)
				b.load(0x5000, 16, 8)
			})
		},
		// Iteration 1 keeps {Y, Y+8}; iteration 2 adds X: (2*2 + 2*3) / (2 + 2)
		ExpectedN:    2,
		ExpectedCost: 2,
	}
}
