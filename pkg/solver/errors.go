package solver

import (
	"errors"
	"fmt"
)

var (
	// ErrSolverFailure means no candidate target produced a usable program.
	// It signals an internal inconsistency, never bad input.
	ErrSolverFailure = errors.New("solver failure")

	// ErrNotConverged marks a per-target program that the LP routine could
	// not solve or whose solution failed post-solve checks.
	ErrNotConverged = errors.New("linear program did not converge")
)

// FailureError reports that every per-target program was infeasible or
// failed to converge.
type FailureError struct {
	Targets      int
	Infeasible   int
	NotConverged int
}

// Error implements the error interface.
func (e *FailureError) Error() string {
	return fmt.Sprintf("%v: all %d targets failed (%d infeasible, %d not converged)",
		ErrSolverFailure, e.Targets, e.Infeasible, e.NotConverged)
}

// Unwrap returns ErrSolverFailure.
func (e *FailureError) Unwrap() error {
	return ErrSolverFailure
}
