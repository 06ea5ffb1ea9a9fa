// Package summarize implements the document summarization pipeline: body
// extraction, marker check, markup stripping, summary generation, summary
// finishing and in-place rewrite, plus the sequential batch driver.
package summarize

import "errors"

// Sentinel errors for summarize use case operations.
var (
	// ErrRunAborted indicates that the run stopped at a failed document because
	// the failure policy is abort. Later documents were not processed.
	ErrRunAborted = errors.New("run aborted after failed document")
)
