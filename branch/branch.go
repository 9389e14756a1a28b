package branch

import (
	"fmt"
	"math"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"q.log/intsimplex/model"
	"q.log/intsimplex/simplex"
	"q.log/intsimplex/tableau"
)

// Decision is what the search did with a node.
type Decision string

const (
	WorseThanIncumbent Decision = "cannot beat incumbent, pruned"
	NotFeasible        Decision = "subproblem has no feasible solution"
	NewIncumbent       Decision = "integer feasible and better than incumbent, replacing incumbent"
	NotImproving       Decision = "integer feasible but not better than incumbent"
	Branching          Decision = "not integer feasible, branching"
)

// Options controls the search.
type Options struct {
	// Pruning discards nodes whose relaxation value cannot beat the incumbent.
	Pruning bool

	// Integer marks the decision columns that must be integral. Nil means
	// every decision column.
	Integer []bool
}

// Node is the log entry of one processed subproblem.
type Node struct {
	Path     Path
	Bounds   []Bound
	Z        float64
	X        []float64
	Decision Decision

	// Var is the column branched on, -1 when the node was not split.
	Var int
}

func (n Node) String() string {
	return fmt.Sprintf("node %s depth %d %v z=%g x=%v: %s", n.Path, n.Path.Depth(), n.Bounds, n.Z, n.X, n.Decision)
}

// Result of a branch and bound run. Found is false when no integer solution
// exists.
type Result struct {
	Found   bool
	X       []float64
	Z       float64
	Path    Path
	Tableau *tableau.Tableau

	Nodes    []Node
	Branches int
	Trace    tableau.Trace
}

// subProblem is an entry of the search stack. It owns its tableau.
type subProblem struct {
	tab    *tableau.Tableau
	path   Path
	bounds []Bound
}

// Solve searches depth first for the best integer solution below the
// optimal LP tableau root. root is not modified. Children of a node are the
// <= floor bound followed by the >= ceil bound; each is re-solved by the
// dual then the primal simplex and dropped when infeasible.
func Solve(root *tableau.Tableau, opts Options, cfg tableau.Config) (*Result, error) {
	if !root.Optimal() || !root.Feasible() {
		return nil, errors.New("branch and bound needs an optimal, feasible tableau")
	}
	mask := opts.Integer
	if mask == nil {
		mask = make([]bool, root.NumVars())
		for j := range mask {
			mask[j] = true
		}
	}
	if len(mask) != root.NumVars() {
		return nil, errors.Wrapf(model.ErrShape, "integer mask has %d entries for %d variables", len(mask), root.NumVars())
	}

	res := &Result{}
	stack := []subProblem{{tab: root.Clone()}}
	popped := 0

	for len(stack) > 0 {
		sp := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		popped++
		if popped > cfg.MaxBranches {
			return res, errors.Wrapf(simplex.ErrIterationLimit, "branch and bound after %d nodes", cfg.MaxBranches)
		}

		n := Node{
			Path:   sp.path,
			Bounds: sp.bounds,
			Z:      sp.tab.Value(),
			X:      sp.tab.Solution(),
			Var:    -1,
		}

		switch v := branchVariable(n.X, mask, cfg.IntTolerance); {
		case opts.Pruning && res.Found && !better(n.Z, res.Z, sp.tab.Sense(), cfg.Epsilon):
			n.Decision = WorseThanIncumbent

		case v < 0:
			n.Decision = NotImproving
			if !res.Found || better(n.Z, res.Z, sp.tab.Sense(), cfg.Epsilon) {
				n.Decision = NewIncumbent
				res.Found = true
				res.X = n.X
				res.Z = n.Z
				res.Path = n.Path
				res.Tableau = sp.tab
			}

		default:
			n.Decision = Branching
			n.Var = v
		}

		res.Nodes = append(res.Nodes, n)
		glog.V(1).Info(n)
		if n.Decision != Branching {
			continue
		}

		children, err := split(sp, n.Var, cfg, res)
		if err != nil {
			return res, err
		}
		// push in reverse so the <= child is popped first
		for k := len(children) - 1; k >= 0; k-- {
			stack = append(stack, children[k])
		}
	}

	if res.Found {
		glog.Infof("branch and bound: z=%g at node %s after %d nodes", res.Z, res.Path, popped)
	} else {
		glog.Infof("branch and bound: no integer solution after %d nodes", popped)
	}
	return res, nil
}

// split creates the two children of sp on column v. Infeasible children are
// logged and dropped; any other solver failure aborts the search.
func split(sp subProblem, v int, cfg tableau.Config, res *Result) ([]subProblem, error) {
	val := sp.tab.Solution()[v]
	bounds := []Bound{
		{Var: v, Upper: true, Value: math.Floor(val)},
		{Var: v, Upper: false, Value: math.Ceil(val)},
	}

	var children []subProblem
	for k, b := range bounds {
		path := sp.path.Child(Down + k)
		child := subProblem{
			tab:    sp.tab.Clone(),
			path:   path,
			bounds: append(append([]Bound(nil), sp.bounds...), b),
		}
		res.Branches++

		coefs, rhs := b.row(child.tab.RHSCol())
		if _, err := child.tab.AddConstraint(coefs, rhs); err != nil {
			return nil, err
		}
		_, err := simplex.Reoptimize(child.tab, cfg)
		switch {
		case errors.Is(err, simplex.ErrInfeasible) || errors.Is(err, simplex.ErrUnbounded):
			res.Nodes = append(res.Nodes, Node{Path: path, Bounds: child.bounds, Decision: NotFeasible, Var: -1})
			glog.V(1).Infof("node %s (%s): %v", path, b, err)
			continue
		case err != nil:
			return nil, errors.Wrapf(err, "node %s", path)
		}
		res.Trace = append(res.Trace, child.tab.Snapshot(fmt.Sprintf("Node %s: %s", path, b)))
		children = append(children, child)
	}
	return children, nil
}

// branchVariable picks the integer column whose fractional part is closest
// to 0.5, lowest index on ties, or -1 when x is integral on the mask.
func branchVariable(x []float64, mask []bool, tol float64) int {
	col := -1
	best := math.Inf(1)
	for j, v := range x {
		if !mask[j] {
			continue
		}
		f := tableau.Frac(v, tol)
		if f == 0 {
			continue
		}
		if d := math.Abs(f - 0.5); d < best-tol {
			best = d
			col = j
		}
	}
	return col
}

func better(z, incumbent float64, sense model.Direction, eps float64) bool {
	if sense == model.Minimize {
		return z < incumbent-eps
	}
	return z > incumbent+eps
}
