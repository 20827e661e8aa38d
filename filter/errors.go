package filter

import (
	"fmt"
)

// Error types for selector operations
type (
	// CompilationError indicates a selector expression could not be compiled
	CompilationError struct {
		Expression string
		Reason     string
		Err        error
	}

	// EvaluationError indicates a selector could not be evaluated
	EvaluationError struct {
		Expression string
		Reason     string
		Err        error
	}
)

func (e *CompilationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("compilation error in '%s': %s: %v", e.Expression, e.Reason, e.Err)
	}
	return fmt.Sprintf("compilation error in '%s': %s", e.Expression, e.Reason)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation error for selector '%s': %s: %v", e.Expression, e.Reason, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
