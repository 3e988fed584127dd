// Package analysis turns a decoded trace into the locality estimate of one
// monitored loop.
package analysis

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/memfoot/footprint"
	"github.com/sarchlab/memfoot/record"
)

// ErrStreamTruncated reports a trace that ended without a terminator.
var ErrStreamTruncated = errors.New("trace ended without a terminator")

// IterationResult describes one finalized iteration.
type IterationResult struct {
	// Index is the 1-based position of the iteration among finalized ones.
	Index uint64
	footprint.Contribution

	// IO is the number of address-less loads in the iteration.
	IO uint64
	// SumOfMiCi and SumOfRi are the running sums after this iteration.
	SumOfMiCi uint64
	SumOfRi   uint64

	// WorkingSet is the iteration's finalized working set.
	WorkingSet footprint.WorkingSet
}

// Report is the outcome of one analysis run.
type Report struct {
	// N is the locality estimate, sumOfMiCi / sumOfRi or 0.
	N uint64
	// Cost is the iteration count carried by the terminator.
	Cost uint64

	SumOfMiCi  uint64
	SumOfRi    uint64
	Iterations uint64
	// EmptyIterations counts iterations after the first access that saw no
	// records. They are not folded into the sums.
	EmptyIterations uint64
	Footprint       uint64
	IOCount         uint64
	Records         uint64
	Truncated       bool

	// Diagnostics collects every recovered error.
	Diagnostics *multierror.Error
}

// Err returns the collected diagnostics, or nil if there were none.
func (r *Report) Err() error {
	return r.Diagnostics.ErrorOrNil()
}

// DiagnosticCount returns the number of recovered errors.
func (r *Report) DiagnosticCount() int {
	if r.Diagnostics == nil {
		return 0
	}
	return len(r.Diagnostics.Errors)
}

// Session is the analysis state machine. It owns the cumulative footprint
// and the iteration in progress and is fed one event at a time.
type Session struct {
	iteration *footprint.Iteration
	acc       *footprint.Accumulator
	logger    *logrus.Logger

	cost        uint64
	started     bool
	done        bool
	truncated   bool
	emptyIters  uint64
	diagnostics *multierror.Error
}

// SessionOption is a functional option for configuring a Session.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	logger        *logrus.Logger
	maxRangeBytes uint64
}

// WithSessionLogger sets the logger diagnostics are reported to.
func WithSessionLogger(logger *logrus.Logger) SessionOption {
	return func(o *sessionOptions) {
		o.logger = logger
	}
}

// WithMaxRangeBytes bounds the span a single strided range may expand to.
func WithMaxRangeBytes(n uint64) SessionOption {
	return func(o *sessionOptions) {
		o.maxRangeBytes = n
	}
}

// NewSession creates a session for one analysis run.
func NewSession(opts ...SessionOption) *Session {
	o := sessionOptions{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	return &Session{
		iteration: footprint.NewIteration(o.maxRangeBytes),
		acc:       footprint.NewAccumulator(),
		logger:    o.logger,
	}
}

// Done reports whether the session has consumed its terminator or was
// finished early.
func (s *Session) Done() bool {
	return s.done
}

// Feed consumes one event. It returns the finalized iteration when the event
// closes a non-empty iteration.
func (s *Session) Feed(ev *record.Event) (*IterationResult, bool) {
	if s.done {
		return nil, false
	}

	switch ev.Kind {
	case record.KindLoad:
		s.started = true
		s.iteration.Load(ev.Address, ev.Length)
	case record.KindStore:
		s.started = true
		s.iteration.Store(ev.Address, ev.Length)
	case record.KindIndvar:
		s.started = true
		if err := s.iteration.Indvar(ev.SiteID, ev.Address, ev.Length, ev.Stride); err != nil {
			s.Diagnose(err)
		}
	case record.KindDelimiter:
		return s.finalize()
	case record.KindTerminator:
		s.terminate(ev)
		return s.finalize()
	default:
		s.Diagnose(fmt.Errorf("unexpected event kind %s", ev.Kind))
	}
	return nil, false
}

func (s *Session) terminate(ev *record.Event) {
	s.done = true
	if ev.Address != 0 && ev.Length == 0 {
		s.cost = ev.Address
		return
	}
	s.Diagnose(&footprint.FormatError{Reason: fmt.Sprintf(
		"terminator {%s} carries no cost", ev.Raw)})
}

// Finish ends a stream that ran out before its terminator. The iteration in
// progress is finalized and the cost stays 0. A nil reason means the buffer
// simply ended.
func (s *Session) Finish(reason error) (*IterationResult, bool) {
	if s.done {
		return nil, false
	}
	s.done = true
	s.truncated = true

	if reason == nil {
		s.Diagnose(ErrStreamTruncated)
	} else {
		s.Diagnose(fmt.Errorf("%w: %w", ErrStreamTruncated, reason))
	}
	return s.finalize()
}

// Diagnose records a recovered error and logs it.
func (s *Session) Diagnose(err error) {
	s.diagnostics = multierror.Append(s.diagnostics, err)
	s.logger.WithField("iteration", s.acc.Iterations()+1).Warn(err)
}

func (s *Session) finalize() (*IterationResult, bool) {
	defer s.iteration.Reset()

	if s.iteration.Records() == 0 {
		if s.started && !s.done {
			s.emptyIters++
		}
		return nil, false
	}

	ws, errs := s.iteration.Finalize()
	for _, err := range errs {
		s.Diagnose(err)
	}

	c := s.acc.Add(ws)
	return &IterationResult{
		Index:        s.acc.Iterations(),
		Contribution: c,
		IO:           ws.IO,
		SumOfMiCi:    s.acc.SumOfMiCi(),
		SumOfRi:      s.acc.SumOfRi(),
		WorkingSet:   ws,
	}, true
}

// Report returns the current state of the estimate.
func (s *Session) Report() *Report {
	return &Report{
		N:               s.acc.Estimate(),
		Cost:            s.cost,
		SumOfMiCi:       s.acc.SumOfMiCi(),
		SumOfRi:         s.acc.SumOfRi(),
		Iterations:      s.acc.Iterations(),
		EmptyIterations: s.emptyIters,
		Footprint:       s.acc.Footprint(),
		IOCount:         s.acc.IOCount(),
		Truncated:       s.truncated,
		Diagnostics:     s.diagnostics,
	}
}
