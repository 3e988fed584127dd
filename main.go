// Package main provides the entry point for memfoot.
// memfoot estimates how many loop iterations fit in a cache from a trace of
// the loop's memory accesses.
//
// For the full CLI, use: go run ./cmd/memfoot
package main

import (
	"fmt"
	"os"

	"github.com/sarchlab/memfoot/workloads"
)

func main() {
	fmt.Println("memfoot - loop memory footprint profiler")
	fmt.Println("")
	fmt.Println("Usage: memfoot [options] <stride-file> [trace-file]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -v         Verbose output")
	fmt.Println("  -config    Path to configuration JSON file")
	fmt.Println("  -cache     Replay working sets through the cache model")
	fmt.Println("")
	fmt.Println("Synthetic workloads (go run ./cmd/tracegen -workload NAME):")
	for _, w := range workloads.All() {
		fmt.Printf("  %-16s %s\n", w.Name, w.Description)
	}
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/memfoot' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/memfoot' instead.")
	}
}
