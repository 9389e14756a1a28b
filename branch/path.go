package branch

import (
	"fmt"
	"strconv"
	"strings"
)

// Directions of a branch step. A Path element is one of these.
const (
	Down = 1
	Up   = 2
)

// Path identifies a node by the branch steps taken from the root. The root
// has the empty path, shown as "0".
type Path []int

func (p Path) String() string {
	if len(p) == 0 {
		return "0"
	}
	parts := make([]string, len(p))
	for i, d := range p {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ".")
}

// Child returns a new path extending p by dir; p is left untouched.
func (p Path) Child(dir int) Path {
	c := make(Path, len(p), len(p)+1)
	copy(c, p)
	return append(c, dir)
}

func (p Path) Depth() int { return len(p) }

// Bound is a branching restriction on one decision variable:
// x[Var] <= Value when Upper is set, x[Var] >= Value otherwise.
type Bound struct {
	Var   int
	Upper bool
	Value float64
}

func (b Bound) String() string {
	rel := ">="
	if b.Upper {
		rel = "<="
	}
	return fmt.Sprintf("x%d %s %g", b.Var+1, rel, b.Value)
}

// row returns the bound as a <= row over n columns.
func (b Bound) row(n int) ([]float64, float64) {
	coefs := make([]float64, n)
	if b.Upper {
		coefs[b.Var] = 1
		return coefs, b.Value
	}
	coefs[b.Var] = -1
	return coefs, -b.Value
}
