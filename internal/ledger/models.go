package ledger

import (
	"time"

	"swextract/internal/faults"
)

// Run is one batch invocation.
type Run struct {
	ID           string
	InputDir     string
	OutputDir    string
	StartedAt    time.Time
	FinishedAt   *time.Time
	Counts       Counts
	ErrorMessage string
}

// Counts tallies unit outcomes by status.
type Counts struct {
	Completed int
	Empty     int
	Skipped   int
	Failed    int
}

// Add increments the counter for status.
func (c *Counts) Add(status faults.Status) {
	switch status {
	case faults.StatusCompleted:
		c.Completed++
	case faults.StatusEmpty:
		c.Empty++
	case faults.StatusSkipped:
		c.Skipped++
	case faults.StatusFailed:
		c.Failed++
	}
}

// Total returns the number of units counted.
func (c Counts) Total() int {
	return c.Completed + c.Empty + c.Skipped + c.Failed
}

// UnitRecord is the outcome of one annotation file within a run.
type UnitRecord struct {
	ID             int64
	RunID          string
	AnnotationFile string
	Subject        string
	Visit          string
	Record         string
	Status         faults.Status
	Pairs          int
	Rows           int
	SkippedPairs   int
	OutputPath     string
	ErrorMessage   string
	Duration       time.Duration
	RecordedAt     time.Time
}
