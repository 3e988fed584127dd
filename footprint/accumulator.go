package footprint

// Contribution is what one finalized iteration added to the running sums.
type Contribution struct {
	Mi uint64 // Cumulative footprint the iteration is weighed against
	Ci uint64 // Footprint of the iteration itself
	Ri uint64 // Addresses of the iteration already in the cumulative footprint
}

// Accumulator maintains the cumulative footprint across iterations and the
// two sums whose ratio is the locality estimate.
type Accumulator struct {
	allSeen    map[uint64]struct{}
	allIO      uint64
	sumOfMiCi  uint64
	sumOfRi    uint64
	iterations uint64
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{allSeen: make(map[uint64]struct{})}
}

// Add folds one iteration's working set into the cumulative state.
//
// The first iteration seeds the cumulative footprint and is then weighed
// against itself, so it contributes (|C|+io)^2 and |C| to the sums.
func (a *Accumulator) Add(ws WorkingSet) Contribution {
	a.iterations++

	if len(a.allSeen) == 0 {
		for _, addr := range ws.Addrs {
			a.allSeen[addr] = struct{}{}
		}
		a.allIO = ws.IO
	}

	c := Contribution{
		Mi: uint64(len(a.allSeen)) + a.allIO,
		Ci: ws.Size(),
	}
	a.sumOfMiCi += c.Mi * c.Ci

	for _, addr := range ws.Addrs {
		if _, ok := a.allSeen[addr]; ok {
			c.Ri++
		}
	}
	a.sumOfRi += c.Ri

	for _, addr := range ws.Addrs {
		a.allSeen[addr] = struct{}{}
	}
	a.allIO += ws.IO

	return c
}

// Estimate returns sumOfMiCi / sumOfRi, or 0 when no reuse was observed.
func (a *Accumulator) Estimate() uint64 {
	if a.sumOfRi == 0 {
		return 0
	}
	return a.sumOfMiCi / a.sumOfRi
}

// SumOfMiCi returns the accumulated Mi*Ci products.
func (a *Accumulator) SumOfMiCi() uint64 {
	return a.sumOfMiCi
}

// SumOfRi returns the accumulated overlaps.
func (a *Accumulator) SumOfRi() uint64 {
	return a.sumOfRi
}

// Footprint returns the number of distinct addresses seen so far.
func (a *Accumulator) Footprint() uint64 {
	return uint64(len(a.allSeen))
}

// IOCount returns the cumulative I/O count.
func (a *Accumulator) IOCount() uint64 {
	return a.allIO
}

// Iterations returns the number of iterations folded in.
func (a *Accumulator) Iterations() uint64 {
	return a.iterations
}

// Contains reports whether addr is part of the cumulative footprint.
func (a *Accumulator) Contains(addr uint64) bool {
	_, ok := a.allSeen[addr]
	return ok
}
