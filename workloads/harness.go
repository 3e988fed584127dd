package workloads

import (
	"bytes"
	"fmt"

	"github.com/sarchlab/memfoot/analysis"
	"github.com/sarchlab/memfoot/record"
	"github.com/sarchlab/memfoot/trace"
)

// Encode builds the workload's trace in memory.
func (w Workload) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := w.Build(trace.NewWriter(&buf)); err != nil {
		return nil, fmt.Errorf("%s: %w", w.Name, err)
	}
	return buf.Bytes(), nil
}

// Run builds the workload's trace and analyzes it.
func (w Workload) Run(opts ...analysis.Option) (*analysis.Report, error) {
	data, err := w.Encode()
	if err != nil {
		return nil, err
	}

	strides, err := w.StrideMap()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", w.Name, err)
	}

	a := analysis.NewAnalyzer(trace.NewReader(data), record.NewDecoder(strides), opts...)
	return a.Run(), nil
}

// Check runs the workload and compares the result with its expectation.
func (w Workload) Check(opts ...analysis.Option) error {
	r, err := w.Run(opts...)
	if err != nil {
		return err
	}
	if r.N != w.ExpectedN || r.Cost != w.ExpectedCost {
		return fmt.Errorf("%s: got %d,%d, want %d,%d",
			w.Name, r.N, r.Cost, w.ExpectedN, w.ExpectedCost)
	}
	return nil
}
