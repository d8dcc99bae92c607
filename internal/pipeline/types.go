package pipeline

import "time"

// Stage names a step of an assignment run.
type Stage string

const (
	StageRestore Stage = "restore" // pin ids from the records file
	StageModules Stage = "modules" // module id pass
	StageChunks  Stage = "chunks"  // chunk id pass
	StageCapture Stage = "capture" // write final ids to the records file
)

// Stages lists every stage in run order. Modules and chunks overlap in time.
var Stages = []Stage{StageRestore, StageModules, StageChunks, StageCapture}

// Status is the progress state of a stage.
type Status string

const (
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusSkipped Status = "skipped" // nothing to do, e.g. no records file yet
	StatusError   Status = "error"
)

// Event reports progress for a stage. Elapsed is set once the stage ends.
type Event struct {
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Passes run concurrently, so
// OnEvent may be called from several goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings maps each stage that ran to its wall time.
type Timings map[Stage]time.Duration

// Has reports whether stage ran.
func (t Timings) Has(stage Stage) bool {
	_, ok := t[stage]
	return ok
}

// Duration returns the wall time of stage, 0 if it did not run.
func (t Timings) Duration(stage Stage) time.Duration {
	return t[stage]
}
