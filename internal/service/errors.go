package service

import "fmt"

// ValidationError reports bad or missing input (HTTP 400).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError reports an unknown record id (HTTP 404).
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// ConflictError reports an operation that the hand's current lifecycle
// state does not permit (HTTP 409).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// AnalysisError reports a failed run of the external analyzer (HTTP 500).
// Output carries the process's diagnostic output when available.
type AnalysisError struct {
	Output string
	Err    error
}

func (e *AnalysisError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("analysis failed: %v: %s", e.Err, e.Output)
	}
	return fmt.Sprintf("analysis failed: %v", e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// StorageError reports a persistence failure (HTTP 500).
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }
