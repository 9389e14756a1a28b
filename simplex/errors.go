package simplex

import "github.com/pkg/errors"

var (
	// ErrUnbounded: the entering column has no limiting row.
	ErrUnbounded = errors.New("problem is unbounded")

	// ErrInfeasible: a row with negative RHS has no eligible entering column,
	// or an artificial variable stays positive at optimality.
	ErrInfeasible = errors.New("problem is infeasible")

	// ErrIterationLimit: a loop hit its configured ceiling. The true status
	// of the problem is unknown.
	ErrIterationLimit = errors.New("iteration limit exceeded")
)

type Status int

const (
	Optimal Status = iota
	Unbounded
	Infeasible
	IterationLimit
	Failed
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "optimal"
	case Unbounded:
		return "unbounded"
	case Infeasible:
		return "infeasible"
	case IterationLimit:
		return "iteration limit"
	default:
		return "failed"
	}
}

// StatusOf classifies an engine error.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return Optimal
	case errors.Is(err, ErrUnbounded):
		return Unbounded
	case errors.Is(err, ErrInfeasible):
		return Infeasible
	case errors.Is(err, ErrIterationLimit):
		return IterationLimit
	}
	return Failed
}
