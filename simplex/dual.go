package simplex

import (
	"fmt"
	"math"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"q.log/intsimplex/tableau"
)

// Dual restores primal feasibility of a tableau whose objective row is
// optimal but where some RHS is negative. A tableau with every RHS >= 0 is
// returned untouched.
//
// Leaving row: most negative RHS, lowest row on ties. Entering column: among
// the negative entries of that row, the smallest non-zero
// |objective/entry| ratio, lowest column on ties. When every candidate ratio
// is zero the lowest such column is used.
func Dual(t *tableau.Tableau, cfg tableau.Config) (tableau.Trace, error) {
	var trace tableau.Trace
	for iter := 0; ; iter++ {
		row := DualLeavingRow(t, cfg.Epsilon)
		if row < 0 {
			return trace, nil
		}
		if iter >= cfg.MaxIterations {
			return trace, errors.Wrapf(ErrIterationLimit, "dual simplex after %d pivots", iter)
		}

		leaving := tableau.Label(t.BasicIn(row), t.NumVars())
		col := DualEnteringColumn(t, row, cfg.Epsilon, true)
		if col < 0 {
			glog.V(1).Infof("dual: row %d (%s = %g) has no negative entry", row, leaving, t.RHS(row))
			return trace, errors.Wrapf(ErrInfeasible, "row %d (%s = %g) has no negative entry", row, leaving, t.RHS(row))
		}

		if err := t.Pivot(row, col); err != nil {
			return trace, err
		}
		title := fmt.Sprintf("Dual iteration %d: %s leaves (row %d), %s enters", iter+1, leaving, row, tableau.Label(col, t.NumVars()))
		glog.V(2).Info(title)
		trace = append(trace, t.Snapshot(title))
	}
}

// DualLeavingRow returns the row with the most negative RHS, or -1 when the
// tableau is primal feasible.
func DualLeavingRow(t *tableau.Tableau, eps float64) int {
	row := -1
	best := -eps
	for i := 1; i <= t.NumConstraints(); i++ {
		if v := t.RHS(i); v < best {
			best = v
			row = i
		}
	}
	return row
}

// DualEnteringColumn picks the entering column for row by the dual ratio
// test. With allowZero unset, a row whose candidates all have a zero ratio
// yields -1 just like a row without negative entries.
func DualEnteringColumn(t *tableau.Tableau, row int, eps float64, allowZero bool) int {
	col, zero := -1, -1
	best := 0.0
	for j := 0; j < t.RHSCol(); j++ {
		a := t.At(row, j)
		if a >= -eps {
			continue
		}
		ratio := math.Abs(t.At(0, j) / a)
		if ratio <= eps {
			if zero < 0 {
				zero = j
			}
			continue
		}
		if col < 0 || ratio < best-eps {
			best = ratio
			col = j
		}
	}
	if col < 0 && allowZero {
		return zero
	}
	return col
}
