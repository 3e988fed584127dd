// Package report prints and stores analysis results.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sarchlab/memfoot/analysis"
	"github.com/sarchlab/memfoot/cachemodel"
)

// WriteResult prints the locality estimate and the loop cost as "N,cost".
func WriteResult(w io.Writer, r *analysis.Report) error {
	_, err := fmt.Fprintf(w, "%d,%d\n", r.N, r.Cost)
	return err
}

// WriteSummary prints a human-readable summary of a run.
func WriteSummary(w io.Writer, r *analysis.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "Locality Analysis")
	fmt.Fprintln(tw, "=================")
	fmt.Fprintf(tw, "Records:\t%d\n", r.Records)
	fmt.Fprintf(tw, "Iterations:\t%d\n", r.Iterations)
	fmt.Fprintf(tw, "Empty iterations:\t%d\n", r.EmptyIterations)
	fmt.Fprintf(tw, "Footprint:\t%d\n", r.Footprint)
	fmt.Fprintf(tw, "I/O accesses:\t%d\n", r.IOCount)
	fmt.Fprintf(tw, "Sum of Mi*Ci:\t%d\n", r.SumOfMiCi)
	fmt.Fprintf(tw, "Sum of Ri:\t%d\n", r.SumOfRi)
	fmt.Fprintf(tw, "Estimate (N):\t%d\n", r.N)
	fmt.Fprintf(tw, "Cost:\t%d\n", r.Cost)
	if r.Truncated {
		fmt.Fprintln(tw, "Trace:\ttruncated")
	}
	fmt.Fprintf(tw, "Diagnostics:\t%d\n", r.DiagnosticCount())
	if r.Diagnostics != nil {
		for _, err := range r.Diagnostics.Errors {
			fmt.Fprintf(tw, "  %v\n", err)
		}
	}

	return tw.Flush()
}

// WriteCacheSummary prints the result of a cache replay.
func WriteCacheSummary(w io.Writer, s cachemodel.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "Cache Replay")
	fmt.Fprintln(tw, "============")
	fmt.Fprintf(tw, "Iterations:\t%d\n", s.Iterations)
	fmt.Fprintf(tw, "Accesses:\t%d\n", s.Accesses)
	fmt.Fprintf(tw, "Stores:\t%d\n", s.Stores)
	fmt.Fprintf(tw, "Unaddressable:\t%d\n", s.Unaddressable)
	fmt.Fprintf(tw, "Cycles:\t%d\n", s.Cycles)
	writeLevel(tw, "L1", s.L1)
	writeLevel(tw, "L2", s.L2)

	return tw.Flush()
}

func writeLevel(w io.Writer, name string, s cachemodel.Statistics) {
	fmt.Fprintf(w, "%s:\thits=%d misses=%d evictions=%d writebacks=%d miss-rate=%.2f%%\n",
		name, s.Hits, s.Misses, s.Evictions, s.Writebacks, s.MissRate()*100)
}
