package optimizer

import "errors"

var (
	// ErrInvalidConfig rejects malformed bounds, budgets or player pools
	// before any solve attempt.
	ErrInvalidConfig = errors.New("invalid roster configuration")

	// ErrNoFeasibleRoster reports that the constraint set admits no squad.
	// A legitimate business outcome, e.g. a budget below the formation floor.
	ErrNoFeasibleRoster = errors.New("no feasible roster")

	// ErrSolverTimeout reports that the solver hit its time or node bound
	// before certifying an optimum or infeasibility.
	ErrSolverTimeout = errors.New("solver timed out")

	// ErrAmbiguousAssignment reports a solver value outside tolerance of
	// {0,1}, indicating a modeling or solver-precision defect.
	ErrAmbiguousAssignment = errors.New("ambiguous variable assignment")
)
