package report

import (
	"github.com/sarchlab/akita/v4/datarecording"

	"github.com/sarchlab/memfoot/analysis"
)

const (
	// IterationTable holds one row per finalized iteration.
	IterationTable = "iterations"
	// EstimateTable holds the final estimate of the run.
	EstimateTable = "estimate"
)

// IterationEntry is one row of the iteration table.
type IterationEntry struct {
	Iteration int64
	Mi        int64
	Ci        int64
	Ri        int64
	IO        int64
	SumOfMiCi int64
	SumOfRi   int64
}

// EstimateEntry is the row of the estimate table.
type EstimateEntry struct {
	N           int64
	Cost        int64
	SumOfMiCi   int64
	SumOfRi     int64
	Iterations  int64
	Footprint   int64
	IOCount     int64
	Records     int64
	Diagnostics int64
	Truncated   int64
}

// Recorder stores iteration tuples and the final estimate in a database. It
// is an analysis.Observer.
type Recorder struct {
	recorder datarecording.DataRecorder
}

// NewRecorder creates a recorder writing to path. The database file gets a
// ".sqlite3" suffix.
func NewRecorder(path string) *Recorder {
	return NewRecorderWith(datarecording.NewDataRecorder(path))
}

// NewRecorderWith creates a recorder over an existing data recorder.
func NewRecorderWith(recorder datarecording.DataRecorder) *Recorder {
	recorder.CreateTable(IterationTable, IterationEntry{})
	recorder.CreateTable(EstimateTable, EstimateEntry{})
	return &Recorder{recorder: recorder}
}

// ObserveIteration stores one iteration tuple.
func (r *Recorder) ObserveIteration(it *analysis.IterationResult) {
	r.recorder.InsertData(IterationTable, IterationEntry{
		Iteration: int64(it.Index),
		Mi:        int64(it.Mi),
		Ci:        int64(it.Ci),
		Ri:        int64(it.Ri),
		IO:        int64(it.IO),
		SumOfMiCi: int64(it.SumOfMiCi),
		SumOfRi:   int64(it.SumOfRi),
	})
}

// ObserveReport stores the estimate and flushes pending rows.
func (r *Recorder) ObserveReport(rep *analysis.Report) {
	entry := EstimateEntry{
		N:           int64(rep.N),
		Cost:        int64(rep.Cost),
		SumOfMiCi:   int64(rep.SumOfMiCi),
		SumOfRi:     int64(rep.SumOfRi),
		Iterations:  int64(rep.Iterations),
		Footprint:   int64(rep.Footprint),
		IOCount:     int64(rep.IOCount),
		Records:     int64(rep.Records),
		Diagnostics: int64(rep.DiagnosticCount()),
	}
	if rep.Truncated {
		entry.Truncated = 1
	}

	r.recorder.InsertData(EstimateTable, entry)
	r.recorder.Flush()
}

// Tables lists the tables in the database.
func (r *Recorder) Tables() []string {
	return r.recorder.ListTables()
}

// Close flushes and closes the database.
func (r *Recorder) Close() {
	r.recorder.Flush()
	r.recorder.Close()
}
