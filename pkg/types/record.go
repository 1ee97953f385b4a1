// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Outcome is the terminal state of a single candidate file in a run.
type Outcome string

const (
	OutcomeConverted Outcome = "converted"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// Record describes what happened to one candidate file.
type Record struct {
	// Source is the path of the file that was considered.
	Source string `json:"source" yaml:"source"`

	// Target is the path written, or that would have been written. Empty
	// when no target was computed (e.g. marker skips).
	Target string `json:"target,omitempty" yaml:"target,omitempty"`

	// Encoding is the source encoding used for decoding, when known.
	Encoding string `json:"encoding,omitempty" yaml:"encoding,omitempty"`

	// Outcome is converted, skipped, or failed.
	Outcome Outcome `json:"outcome" yaml:"outcome"`

	// Reason explains a skip or carries the error text of a failure.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// RunResult aggregates the records of a single pipeline run.
type RunResult struct {
	Processed int
	Converted int
	Skipped   int
	Failed    int
	Records   []Record
}

// Add appends rec and bumps the matching counter.
func (r *RunResult) Add(rec Record) {
	r.Records = append(r.Records, rec)
	r.Processed++
	switch rec.Outcome {
	case OutcomeConverted:
		r.Converted++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
}

// Merge folds other into r, preserving record order.
func (r *RunResult) Merge(other RunResult) {
	r.Processed += other.Processed
	r.Converted += other.Converted
	r.Skipped += other.Skipped
	r.Failed += other.Failed
	r.Records = append(r.Records, other.Records...)
}

// HasFailures reports whether any file failed.
func (r RunResult) HasFailures() bool {
	return r.Failed > 0
}
