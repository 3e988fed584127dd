package analysis

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/memfoot/record"
)

// ErrRecordLimit reports that the analyzer stopped at its record limit.
var ErrRecordLimit = errors.New("record limit reached")

// RecordSource yields trace records in order. It returns io.EOF once the
// buffer is exhausted.
type RecordSource interface {
	Next() (record.Record, error)
}

// Observer is notified of every finalized iteration and of the final report.
type Observer interface {
	ObserveIteration(it *IterationResult)
	ObserveReport(r *Report)
}

// StepResult represents the result of consuming a single record.
type StepResult struct {
	// Done is true once the run has ended.
	Done bool

	// Iteration is set when the record finalized an iteration.
	Iteration *IterationResult

	// Err is set when the record could not be used.
	Err error
}

// Analyzer drives a Session over a record source.
type Analyzer struct {
	source    RecordSource
	decoder   *record.Decoder
	session   *Session
	observers []Observer
	logger    *logrus.Logger

	echo io.Writer

	records       uint64
	maxRecords    uint64 // 0 means no limit
	maxRangeBytes uint64
}

// Option is a functional option for configuring the Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *logrus.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// WithEcho writes every record read to w, one "address, length, id" line
// per record.
func WithEcho(w io.Writer) Option {
	return func(a *Analyzer) {
		a.echo = w
	}
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(a *Analyzer) {
		a.observers = append(a.observers, o)
	}
}

// WithMaxRecords sets the maximum number of records to consume.
// A value of 0 means no limit.
func WithMaxRecords(max uint64) Option {
	return func(a *Analyzer) {
		a.maxRecords = max
	}
}

// WithRangeLimit bounds the span a single strided range may expand to.
func WithRangeLimit(n uint64) Option {
	return func(a *Analyzer) {
		a.maxRangeBytes = n
	}
}

// NewAnalyzer creates an analyzer reading from source.
func NewAnalyzer(source RecordSource, decoder *record.Decoder, opts ...Option) *Analyzer {
	a := &Analyzer{
		source:  source,
		decoder: decoder,
		logger:  logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(a)
	}

	a.session = NewSession(
		WithSessionLogger(a.logger),
		WithMaxRangeBytes(a.maxRangeBytes),
	)

	return a
}

// Session returns the underlying session.
func (a *Analyzer) Session() *Session {
	return a.session
}

// Records returns the number of records consumed.
func (a *Analyzer) Records() uint64 {
	return a.records
}

// Step consumes a single record.
func (a *Analyzer) Step() StepResult {
	if a.session.Done() {
		return StepResult{Done: true}
	}

	if a.maxRecords > 0 && a.records >= a.maxRecords {
		return a.finish(ErrRecordLimit)
	}

	rec, err := a.source.Next()
	switch {
	case errors.Is(err, io.EOF):
		return a.finish(nil)
	case err != nil:
		return a.finish(err)
	}
	a.records++

	if a.echo != nil {
		if _, err := fmt.Fprintln(a.echo, rec); err != nil {
			a.logger.WithError(err).Warn("echo failed, disabling it")
			a.echo = nil
		}
	}

	ev, err := a.decoder.Decode(rec)
	if err != nil {
		a.session.Diagnose(err)
		return StepResult{Err: err}
	}

	it, ok := a.session.Feed(ev)
	if ok {
		a.notify(it)
	}

	return StepResult{Done: a.session.Done(), Iteration: it}
}

func (a *Analyzer) finish(reason error) StepResult {
	it, ok := a.session.Finish(reason)
	if ok {
		a.notify(it)
	}
	return StepResult{Done: true, Iteration: it, Err: reason}
}

func (a *Analyzer) notify(it *IterationResult) {
	a.logger.WithFields(logrus.Fields{
		"iteration": it.Index,
		"mi":        it.Mi,
		"ci":        it.Ci,
		"ri":        it.Ri,
		"sumOfMiCi": it.SumOfMiCi,
		"sumOfRi":   it.SumOfRi,
	}).Debug("iteration finalized")

	for _, o := range a.observers {
		o.ObserveIteration(it)
	}
}

// Run consumes records until the trace ends and returns the final report.
func (a *Analyzer) Run() *Report {
	for {
		result := a.Step()
		if result.Done {
			break
		}
	}

	r := a.session.Report()
	r.Records = a.records
	for _, o := range a.observers {
		o.ObserveReport(r)
	}
	return r
}
