// Package logging builds the structured loggers used across the summarizer.
//
// Loggers are configured from the environment:
//   - LOG_LEVEL: debug, info, warn, error (default info)
//   - LOG_FORMAT: json (default) or text
//
// A run-scoped logger carrying the run ID is stored in the context with
// WithLogger and retrieved with FromContext.
package logging
