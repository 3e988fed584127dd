// Package main provides the entry point for memfoot.
// memfoot estimates the locality of a monitored loop from its memory trace.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/memfoot/analysis"
	"github.com/sarchlab/memfoot/cachemodel"
	"github.com/sarchlab/memfoot/config"
	"github.com/sarchlab/memfoot/record"
	"github.com/sarchlab/memfoot/report"
	"github.com/sarchlab/memfoot/stride"
	"github.com/sarchlab/memfoot/trace"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// bindings collects repeated -bind name=id flags.
type bindings map[string]int32

func (b bindings) String() string {
	parts := make([]string, 0, len(b))
	for name, id := range b {
		parts = append(parts, fmt.Sprintf("%s=%d", name, id))
	}
	return strings.Join(parts, ",")
}

func (b bindings) Set(value string) error {
	name, id, ok := strings.Cut(value, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=id, got %q", value)
	}
	n, err := strconv.ParseInt(id, 10, 32)
	if err != nil {
		return fmt.Errorf("bad site id in %q: %w", value, err)
	}
	b[name] = int32(n)
	return nil
}

type options struct {
	configPath string
	verbose    bool
	shm        string
	echo       string
	record     string
	cache      bool
	maxRecords uint64
	unlink     bool
	bind       bindings
	cpuProfile string
	memProfile string
}

func parseFlags(args []string, stderr io.Writer) (*options, *flag.FlagSet, error) {
	o := &options{bind: bindings{}}

	fs := flag.NewFlagSet("memfoot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "Path to configuration JSON file")
	fs.BoolVar(&o.verbose, "v", false, "Verbose output")
	fs.StringVar(&o.shm, "shm", "", "Shared memory object to read when no trace file is given")
	fs.StringVar(&o.echo, "echo", "", "Write every record as text to this file")
	fs.StringVar(&o.record, "record", "", "Store iteration tuples in this sqlite database")
	fs.BoolVar(&o.cache, "cache", false, "Replay working sets through the cache model")
	fs.Uint64Var(&o.maxRecords, "max-records", 0, "Stop after this many records (0 = unlimited)")
	fs.BoolVar(&o.unlink, "unlink", false, "Remove the shared memory object after analysis")
	fs.Var(o.bind, "bind", "Bind a named stride to a site id (name=id), repeatable")
	fs.StringVar(&o.cpuProfile, "cpuprofile", "", "write cpu profile to file")
	fs.StringVar(&o.memProfile, "memprofile", "", "write memory profile to file")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: memfoot [options] <stride-file> [trace-file]\n")
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return o, fs, nil
}

// loadConfig reads the configuration file, if any, and applies flags on top.
func loadConfig(o *options) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		cfg, err = config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
	}

	if o.shm != "" {
		cfg.SharedMemoryName = o.shm
	}
	if o.echo != "" {
		cfg.EchoPath = o.echo
	}
	if o.record != "" {
		cfg.RecordPath = o.record
	}
	if o.maxRecords != 0 {
		cfg.MaxRecords = o.maxRecords
	}
	if o.cache {
		cfg.CacheReplay = true
	}
	if o.unlink {
		cfg.UnlinkSharedMemory = true
	}
	if o.verbose {
		cfg.LogLevel = logrus.DebugLevel.String()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadStrides(path string, bind bindings) (*stride.Map, error) {
	strides, err := stride.Load(path)
	if err != nil {
		return nil, err
	}
	for name, id := range bind {
		if err := strides.Bind(name, id); err != nil {
			return nil, err
		}
	}
	return strides, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	o, fs, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		return 1
	}

	cfg, err := loadConfig(o)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}

	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetLevel(cfg.Level())

	if o.cpuProfile != "" {
		f, err := os.Create(o.cpuProfile)
		if err != nil {
			fmt.Fprintf(stderr, "Error creating CPU profile: %v\n", err)
			return 1
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(stderr, "Error starting CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	strides, err := loadStrides(fs.Arg(0), o.bind)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading strides: %v\n", err)
		return 1
	}

	var reader *trace.Reader
	if fs.NArg() == 2 {
		reader, err = trace.Open(fs.Arg(1))
	} else {
		reader, err = trace.OpenSharedMemory(cfg.SharedMemoryName)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error opening trace: %v\n", err)
		return 1
	}
	defer func() { _ = reader.Close() }()

	logger.WithFields(logrus.Fields{
		"bytes":   reader.Len(),
		"strided": strides.Len(),
	}).Debug("trace opened")

	opts := []analysis.Option{
		analysis.WithLogger(logger),
		analysis.WithMaxRecords(cfg.MaxRecords),
		analysis.WithRangeLimit(cfg.MaxRangeBytes),
	}

	if cfg.EchoPath != "" {
		echo, err := os.Create(cfg.EchoPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error creating echo file: %v\n", err)
			return 1
		}
		defer func() { _ = echo.Close() }()
		opts = append(opts, analysis.WithEcho(echo))
	}

	var replayer *cachemodel.Replayer
	if cfg.CacheReplay {
		replayer = cachemodel.NewReplayer(cfg.L1, cfg.L2)
		opts = append(opts, analysis.WithObserver(replayer))
	}

	if cfg.RecordPath != "" {
		recorder := report.NewRecorder(cfg.RecordPath)
		defer recorder.Close()
		opts = append(opts, analysis.WithObserver(recorder))
	}

	analyzer := analysis.NewAnalyzer(reader, record.NewDecoder(strides), opts...)
	result := analyzer.Run()

	if err := report.WriteResult(stdout, result); err != nil {
		fmt.Fprintf(stderr, "Error writing result: %v\n", err)
		return 1
	}

	if o.verbose {
		_ = report.WriteSummary(stderr, result)
		if replayer != nil {
			_ = report.WriteCacheSummary(stderr, replayer.Summary())
		}
	}

	if o.memProfile != "" {
		if err := writeMemProfile(o.memProfile); err != nil {
			fmt.Fprintf(stderr, "Error writing memory profile: %v\n", err)
		}
	}

	if fs.NArg() == 1 && cfg.UnlinkSharedMemory {
		if err := trace.Unlink(cfg.SharedMemoryName); err != nil {
			logger.WithError(err).Warn("failed to unlink shared memory")
		}
	}

	return 0
}

func writeMemProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return pprof.WriteHeapProfile(f)
}
