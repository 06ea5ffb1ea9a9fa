// Package entity defines the core domain entities of the summarizer: the documents
// being rewritten, the per-document processing result, and the error kinds that
// classify failures.
package entity

import (
	"strings"
	"time"
)

// Document is a text file identified by its path. Lines keep their original
// terminators so that joining them reproduces the file content byte for byte.
type Document struct {
	Path  string
	Name  string
	Lines []string
}

// Raw returns the full, unstripped document content.
func (d *Document) Raw() string {
	return strings.Join(d.Lines, "")
}

// SplitLines splits content into lines, keeping the "\n" terminator on every
// line except a trailing unterminated one.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Status is the processing state of a single document within a run.
type Status string

const (
	StatusUnprocessed Status = "unprocessed"
	StatusSkipped     Status = "skipped"
	StatusMarkerFound Status = "marker_found"
	StatusSummarized  Status = "summarized"
	StatusWritten     Status = "written"
	StatusDryRun      Status = "dry_run"
	StatusFailed      Status = "failed"
)

// SkipReason explains why a document was skipped.
type SkipReason string

const (
	SkipNoMarker   SkipReason = "no_marker"
	SkipOverBudget SkipReason = "over_budget"
)

// Result is the outcome of processing one document.
type Result struct {
	Path       string
	Status     Status
	SkipReason SkipReason
	Summary    string
	// Truncated is set when the cleaned body was cut to fit the prompt budget.
	Truncated bool
	// Replaced is the number of marker occurrences substituted in the file.
	Replaced int
	// Err is the failure of a failed document, or ErrNoMarker / ErrOverBudget
	// for a skipped one.
	Err      error
	Duration time.Duration
}

// RunStats aggregates the results of a batch run.
type RunStats struct {
	Documents int
	Skipped   int
	Written   int
	DryRun    int
	Failed    int
	Duration  time.Duration
}

// Add folds a single document result into the stats.
func (s *RunStats) Add(r Result) {
	s.Documents++
	switch r.Status {
	case StatusSkipped:
		s.Skipped++
	case StatusWritten:
		s.Written++
	case StatusDryRun:
		s.DryRun++
	case StatusFailed:
		s.Failed++
	}
}
