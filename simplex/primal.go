package simplex

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"q.log/intsimplex/model"
	"q.log/intsimplex/tableau"
)

// Result is what a tableau engine hands back: the final tableau (also on
// failure), its basis, the decision variable values, the objective in the
// problem's own sense and the trace of snapshots.
type Result struct {
	Status  Status
	Tableau *tableau.Tableau
	Basis   []int
	X       []float64
	Z       float64
	Trace   tableau.Trace
}

// NewTableau builds the starting tableau for m: one slack column per row
// forming the initial basis and the objective row holding the negated
// working costs. Minimization costs are negated first.
func NewTableau(m *model.Model, cfg tableau.Config) (*tableau.Tableau, error) {
	rows, cols := m.NumRows+1, m.NumCols+m.NumRows+1
	data := mat.NewDense(rows, cols, nil)

	sign := 1.0
	if m.Direction == model.Minimize {
		sign = -1
	}
	for j := 0; j < m.NumCols; j++ {
		data.Set(0, j, -sign*m.C.At(0, j))
	}

	basis := make([]int, m.NumRows)
	for i := 0; i < m.NumRows; i++ {
		for j := 0; j < m.NumCols; j++ {
			data.Set(i+1, j, m.A.At(i, j))
		}
		data.Set(i+1, m.NumCols+i, 1)
		data.Set(i+1, cols-1, m.B.At(i, 0))
		basis[i] = m.NumCols + i
	}

	t, err := tableau.New(data, basis, m.NumCols, m.Direction, cfg.Epsilon)
	if err != nil {
		return nil, err
	}
	t.Normalize()
	return t, nil
}

// SolveLP builds the tableau for m and pivots it to optimality. A start with
// negative right-hand sides (from >= rows) is first repaired by the dual
// simplex.
func SolveLP(m *model.Model, cfg tableau.Config) (*Result, error) {
	t, err := NewTableau(m, cfg)
	if err != nil {
		return nil, err
	}
	res := &Result{Tableau: t}
	res.Trace = append(res.Trace, t.Snapshot("Initial tableau"))

	trace, err := Reoptimize(t, cfg)
	res.Trace = append(res.Trace, trace...)
	res.Basis = t.Basis()
	res.Status = StatusOf(err)
	if err != nil {
		glog.Infof("lp: %s after %d snapshots", res.Status, len(res.Trace))
		return res, err
	}

	res.X = t.Solution()
	res.Z = t.Value()
	res.Trace = append(res.Trace, t.Snapshot("Optimal tableau"))
	glog.Infof("lp: optimal z=%g x=%v", res.Z, res.X)
	return res, nil
}

// Reoptimize brings t back to an optimal, feasible state: dual simplex while
// some RHS is negative, then primal simplex while some reduced cost is.
func Reoptimize(t *tableau.Tableau, cfg tableau.Config) (tableau.Trace, error) {
	var trace tableau.Trace
	if !t.Feasible() {
		dt, err := Dual(t, cfg)
		trace = append(trace, dt...)
		if err != nil {
			return trace, err
		}
	}
	if !t.Optimal() {
		pt, err := Primal(t, cfg)
		trace = append(trace, pt...)
		if err != nil {
			return trace, err
		}
	}
	return trace, nil
}

// Primal pivots a feasible tableau to optimality in place. Entering column:
// most negative objective row entry, first found on ties. Leaving row:
// minimum RHS/coefficient ratio over strictly positive coefficients, lowest
// row on ties.
func Primal(t *tableau.Tableau, cfg tableau.Config) (tableau.Trace, error) {
	var trace tableau.Trace
	for iter := 0; ; iter++ {
		col := EnteringColumn(t, cfg.Epsilon)
		if col < 0 {
			return trace, nil
		}
		if iter >= cfg.MaxIterations {
			return trace, errors.Wrapf(ErrIterationLimit, "primal simplex after %d pivots", iter)
		}

		row := LeavingRow(t, col, cfg.Epsilon)
		if row < 0 {
			glog.V(1).Infof("primal: column %s unbounded", tableau.Label(col, t.NumVars()))
			return trace, errors.Wrapf(ErrUnbounded, "column %s has no positive entry", tableau.Label(col, t.NumVars()))
		}

		leaving := tableau.Label(t.BasicIn(row), t.NumVars())
		if err := t.Pivot(row, col); err != nil {
			return trace, err
		}
		title := fmt.Sprintf("Primal iteration %d: %s enters, %s leaves (row %d)", iter+1, tableau.Label(col, t.NumVars()), leaving, row)
		glog.V(2).Info(title)
		trace = append(trace, t.Snapshot(title))
	}
}

// EnteringColumn returns the column with the most negative objective row
// entry, or -1 when the tableau is optimal.
func EnteringColumn(t *tableau.Tableau, eps float64) int {
	col := -1
	best := -eps
	for j := 0; j < t.RHSCol(); j++ {
		if v := t.At(0, j); v < best {
			best = v
			col = j
		}
	}
	return col
}

// LeavingRow runs the minimum ratio test on col, or returns -1 when no row
// limits it.
func LeavingRow(t *tableau.Tableau, col int, eps float64) int {
	row := -1
	best := 0.0
	for i := 1; i <= t.NumConstraints(); i++ {
		a := t.At(i, col)
		if a <= eps {
			continue
		}
		ratio := t.RHS(i) / a
		if ratio < -eps {
			continue
		}
		if row < 0 || ratio < best-eps {
			best = ratio
			row = i
		}
	}
	return row
}
