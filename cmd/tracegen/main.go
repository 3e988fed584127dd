// Package main provides tracegen, which writes synthetic loop traces.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/memfoot/trace"
	"github.com/sarchlab/memfoot/workloads"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tracegen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	name := fs.String("workload", "", "Workload to generate")
	output := fs.String("o", "", "Trace output file (default: the shared memory object)")
	strides := fs.String("strides", "", "Stride file output")
	list := fs.Bool("list", false, "List available workloads")
	shm := fs.String("shm", trace.DefaultSharedMemoryName, "Shared memory object written when -o is not set")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *list {
		for _, w := range workloads.All() {
			fmt.Fprintf(stdout, "%-16s N=%-4d cost=%-4d %s\n",
				w.Name, w.ExpectedN, w.ExpectedCost, w.Description)
		}
		return 0
	}

	w, ok := workloads.Get(*name)
	if !ok {
		fmt.Fprintf(stderr, "Usage: tracegen -workload NAME [-o FILE] [-strides FILE]\n")
		fmt.Fprintf(stderr, "Unknown workload %q, use -list to see the available ones\n", *name)
		return 1
	}

	path := *output
	if path == "" {
		path = trace.SharedMemoryPath(*shm)
	}
	if err := writeTrace(path, w); err != nil {
		fmt.Fprintf(stderr, "Error writing trace: %v\n", err)
		return 1
	}

	if *strides != "" {
		if err := writeStrides(*strides, w); err != nil {
			fmt.Fprintf(stderr, "Error writing strides: %v\n", err)
			return 1
		}
	}

	fmt.Fprintf(stdout, "%s: wrote %s (expect %d,%d)\n", w.Name, path, w.ExpectedN, w.ExpectedCost)
	return 0
}

func writeTrace(path string, w workloads.Workload) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := w.Build(trace.NewWriter(f)); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeStrides(path string, w workloads.Workload) error {
	m, err := w.StrideMap()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := m.WriteTo(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
