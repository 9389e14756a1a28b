package cut

import (
	"fmt"
	"math"
	"slices"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"q.log/intsimplex/model"
	"q.log/intsimplex/simplex"
	"q.log/intsimplex/tableau"
)

// ErrNoCutPivot is returned when a cut row has no negative coefficient with a
// non-zero ratio to enter on. The tableau is handed back as it stood.
var ErrNoCutPivot = errors.New("cut row has no pivot column")

// Options controls the cutting plane run.
type Options struct {
	// Integer marks the decision columns that must be integral. Nil, or a
	// mask with every entry set, means a pure integer problem: slack columns
	// count as integral too and fractional cuts are used. Any continuous
	// column switches to mixed-integer cuts, where slacks are continuous.
	Integer []bool
}

type Result struct {
	Status  simplex.Status
	Tableau *tableau.Tableau
	Basis   []int
	X       []float64
	Z       float64

	// Cuts is the number of cut rows appended.
	Cuts  int
	Trace tableau.Trace
}

// Solve adds Gomory cuts to a copy of the optimal tableau root until every
// integer column is integral. After each cut the tableau is pivoted on the
// cut row and re-optimized by the dual and primal simplex.
func Solve(root *tableau.Tableau, opts Options, cfg tableau.Config) (*Result, error) {
	if !root.Optimal() || !root.Feasible() {
		return nil, errors.New("cutting planes need an optimal, feasible tableau")
	}
	mask := opts.Integer
	if mask != nil && len(mask) != root.NumVars() {
		return nil, errors.Wrapf(model.ErrShape, "integer mask has %d entries for %d variables", len(mask), root.NumVars())
	}
	if !slices.Contains(mask, false) {
		mask = nil
	}
	t := root.Clone()
	res := &Result{Tableau: t}
	fail := func(err error) (*Result, error) {
		res.Status = simplex.StatusOf(err)
		res.Basis = t.Basis()
		return res, err
	}

	for {
		row := SourceRow(t, mask, cfg.IntTolerance)
		if row < 0 {
			break
		}
		if res.Cuts >= cfg.MaxCuts {
			return fail(errors.Wrapf(simplex.ErrIterationLimit, "still fractional after %d cuts", res.Cuts))
		}

		coefs, rhs := Gomory(t, row, mask, cfg.Epsilon)
		cutRow, err := t.AppendRow(coefs, rhs)
		if err != nil {
			return fail(err)
		}
		res.Cuts++
		title := fmt.Sprintf("Cut %d from row %d (%s)", res.Cuts, row, tableau.Label(t.BasicIn(row), t.NumVars()))
		res.Trace = append(res.Trace, t.Snapshot(title))
		glog.V(1).Info(title)

		col := simplex.DualEnteringColumn(t, cutRow, cfg.Epsilon, false)
		if col < 0 {
			return fail(errors.Wrapf(ErrNoCutPivot, "cut %d", res.Cuts))
		}
		if err := t.Pivot(cutRow, col); err != nil {
			return fail(err)
		}
		res.Trace = append(res.Trace, t.Snapshot(fmt.Sprintf("Cut %d pivoted on %s", res.Cuts, tableau.Label(col, t.NumVars()))))

		trace, err := simplex.Reoptimize(t, cfg)
		res.Trace = append(res.Trace, trace...)
		if err != nil {
			return fail(err)
		}
	}

	res.Status = simplex.Optimal
	res.Basis = t.Basis()
	res.X = t.Solution()
	res.Z = t.Value()
	glog.Infof("cutting planes: z=%g after %d cuts", res.Z, res.Cuts)
	return res, nil
}

// SourceRow returns the constraint row with an integer basic column whose
// RHS has the fractional part closest to 0.5, lowest row on ties, or -1 when
// every such RHS is integral. mask is read as in Options.
func SourceRow(t *tableau.Tableau, mask []bool, tol float64) int {
	row := -1
	best := math.Inf(1)
	for i := 1; i <= t.NumConstraints(); i++ {
		if !integer(mask, t.BasicIn(i)) {
			continue
		}
		f := tableau.Frac(t.RHS(i), tol)
		if f == 0 {
			continue
		}
		if d := math.Abs(f - 0.5); d < best-tol {
			best = d
			row = i
		}
	}
	return row
}

// Gomory derives the cut of row as a <= row. With a nil mask it is the
// fractional cut: the negated fractional parts of the coefficients and of
// the RHS. Otherwise it is the mixed-integer cut scaled by f0, the RHS
// fraction:
//
//	integer j, f_j <= f0:   f_j
//	integer j, f_j >  f0:   f0 (1 - f_j) / (1 - f0)
//	continuous j, a_j > 0:  a_j
//	continuous j, a_j < 0:  -f0 a_j / (1 - f0)
//
// summed over the columns and bounded below by f0, then negated.
func Gomory(t *tableau.Tableau, row int, mask []bool, eps float64) ([]float64, float64) {
	coefs := make([]float64, t.RHSCol())
	f0 := tableau.Frac(t.RHS(row), eps)
	for j := range coefs {
		a := t.At(row, j)
		switch {
		case mask == nil:
			coefs[j] = -tableau.Frac(a, eps)
		case integer(mask, j):
			if fj := tableau.Frac(a, eps); fj <= f0 {
				coefs[j] = -fj
			} else {
				coefs[j] = -f0 * (1 - fj) / (1 - f0)
			}
		case a > eps:
			coefs[j] = -a
		case a < -eps:
			coefs[j] = f0 * a / (1 - f0)
		}
	}
	return coefs, -f0
}

// integer reports whether column col must be integral. Columns past the mask
// are slacks: integral only in a pure integer problem.
func integer(mask []bool, col int) bool {
	if mask == nil {
		return true
	}
	return col < len(mask) && mask[col]
}
