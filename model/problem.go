package model

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrShape is returned when a problem's rows do not match its variable count.
var ErrShape = errors.New("malformed problem")

type Direction int

const (
	Maximize Direction = iota
	Minimize
)

func (d Direction) String() string {
	if d == Minimize {
		return "min"
	}
	return "max"
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "max", "maximize":
		return Maximize, nil
	case "min", "minimize":
		return Minimize, nil
	}
	return 0, errors.Wrapf(ErrShape, "unknown direction %q", s)
}

// Relation is the comparison of a constraint row against its RHS.
type Relation int

const (
	LessEq Relation = iota
	GreaterEq
	Equal
)

func (r Relation) String() string {
	switch r {
	case GreaterEq:
		return ">="
	case Equal:
		return "="
	default:
		return "<="
	}
}

// ParseRelation accepts "<=", ">=", "=" and their "=<"/"=>" spellings.
func ParseRelation(s string) (Relation, error) {
	switch s {
	case "<=", "=<":
		return LessEq, nil
	case ">=", "=>":
		return GreaterEq, nil
	case "=", "==":
		return Equal, nil
	}
	return 0, errors.Wrapf(ErrShape, "unknown relation %q", s)
}

// Sign is the sign restriction of a decision variable.
type Sign int

const (
	NonNegative Sign = iota
	NonPositive
	Free
	Binary
	Integer
)

func (s Sign) String() string {
	switch s {
	case NonPositive:
		return "-"
	case Free:
		return "urs"
	case Binary:
		return "bin"
	case Integer:
		return "int"
	default:
		return "+"
	}
}

func ParseSign(s string) (Sign, error) {
	switch strings.ToLower(s) {
	case "+", ">=0":
		return NonNegative, nil
	case "-", "<=0":
		return NonPositive, nil
	case "urs", "free":
		return Free, nil
	case "bin":
		return Binary, nil
	case "int":
		return Integer, nil
	}
	return 0, errors.Wrapf(ErrShape, "unknown sign restriction %q", s)
}

type Constraint struct {
	Coefficients []float64
	Relation     Relation
	RHS          float64
}

// Problem is a linear program as written by the user, before standardization.
type Problem struct {
	Direction   Direction
	Objective   []float64
	Constraints []Constraint
	Signs       []Sign
}

func (p *Problem) NumVars() int {
	return len(p.Objective)
}

// Validate checks the structural shape of the problem: every constraint and
// the sign restriction list must have one entry per objective coefficient.
func (p *Problem) Validate() error {
	n := len(p.Objective)
	if n == 0 {
		return errors.Wrap(ErrShape, "empty objective")
	}
	if len(p.Constraints) == 0 {
		return errors.Wrap(ErrShape, "no constraints")
	}
	for i, c := range p.Constraints {
		if len(c.Coefficients) != n {
			return errors.Wrapf(ErrShape, "constraint %d has %d coefficients, want %d", i+1, len(c.Coefficients), n)
		}
	}
	if p.Signs != nil && len(p.Signs) != n {
		return errors.Wrapf(ErrShape, "%d sign restrictions for %d variables", len(p.Signs), n)
	}
	return nil
}

func (p *Problem) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s z =", p.Direction)
	for j, c := range p.Objective {
		fmt.Fprintf(&sb, " %+g x%d", c, j+1)
	}
	sb.WriteString("\n")
	for _, c := range p.Constraints {
		for j, a := range c.Coefficients {
			fmt.Fprintf(&sb, " %+g x%d", a, j+1)
		}
		fmt.Fprintf(&sb, " %s %g\n", c.Relation, c.RHS)
	}
	for j, s := range p.Signs {
		fmt.Fprintf(&sb, " x%d %s", j+1, s)
	}
	return sb.String()
}
