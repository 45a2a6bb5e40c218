// Package bencherr classifies benchmark failures.
//
// Failures are wrapped with fmt.Errorf and one of the sentinels below, and
// classified with errors.Is.
package bencherr

import "errors"

var (
	// ErrStore indicates a failure talking to, or reported by, the database.
	ErrStore = errors.New("store error")
	// ErrSetup indicates a strategy that cannot be prepared.
	ErrSetup = errors.New("setup error")
	// ErrIO indicates a failure writing results.
	ErrIO = errors.New("io error")
	// ErrBenchmarkFailed indicates results that failed validation, or a run
	// that produced no samples.
	ErrBenchmarkFailed = errors.New("benchmark failed")
	// ErrNotFound indicates an unknown strategy name.
	ErrNotFound = errors.New("strategy not found")
)
