package solver

import (
	"context"
	"fmt"
	"time"
)

// Status is the outcome the solver certifies for a Problem.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
	StatusTimedOut
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusTimedOut:
		return "timed_out"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Constraint is a single linear row: Coeffs·x <= Bound for inequality rows,
// Coeffs·x == Bound for equality rows. Label is carried for diagnostics only.
type Constraint struct {
	Coeffs []float64
	Bound  float64
	Label  string
}

// Problem is a maximization over binary variables:
//
//	maximize  Objective·x
//	s.t.      LessEq rows hold as <=, Eq rows hold as ==, x binary
//
// The 0 <= x <= 1 box is implied; callers never encode it.
type Problem struct {
	Objective []float64
	LessEq    []Constraint
	Eq        []Constraint
}

// NumVars returns the number of decision variables.
func (p Problem) NumVars() int {
	return len(p.Objective)
}

// Validate checks that every row matches the variable count.
func (p Problem) Validate() error {
	n := p.NumVars()
	if n == 0 {
		return fmt.Errorf("problem has no variables")
	}
	for _, c := range p.LessEq {
		if len(c.Coeffs) != n {
			return fmt.Errorf("inequality row %q has %d coefficients, want %d", c.Label, len(c.Coeffs), n)
		}
	}
	for _, c := range p.Eq {
		if len(c.Coeffs) != n {
			return fmt.Errorf("equality row %q has %d coefficients, want %d", c.Label, len(c.Coeffs), n)
		}
	}
	return nil
}

// Options bound a single solve. Zero values select defaults.
type Options struct {
	// Timeout caps wall-clock time for the solve; it layers onto whatever
	// deadline the context already carries.
	Timeout time.Duration
	// MaxNodes caps the number of relaxations explored before the solver
	// gives up without certifying an optimum.
	MaxNodes int
	// IntTol is the distance from 0/1 within which a relaxation value
	// counts as integral.
	IntTol float64
}

// Solution is the certified assignment for a Problem. Values are the raw
// variable values; callers are expected to threshold them against their own
// tolerance before trusting integrality.
type Solution struct {
	Status    Status
	Values    []float64
	Objective float64
	Nodes     int
}

// Solver is the external MILP-solving collaborator. Implementations must be
// safe for concurrent use; each Solve call is an independent one-shot
// computation.
type Solver interface {
	Solve(ctx context.Context, p Problem, opts Options) (Solution, error)
}
