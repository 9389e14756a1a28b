// Package sensitivity answers post-optimal questions about a finished
// tableau and applies what-if changes to it. The tableau is the only source
// of truth: nothing about the original problem is kept besides what the
// tableau encodes.
//
// Constraint k refers to the k-th <= row of the standardized model, whose
// slack is column NumVars+k. Cost changes are in the problem's own sense;
// RHS and coefficient changes apply to the <= form.
package sensitivity

import (
	"math"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"q.log/intsimplex/model"
	"q.log/intsimplex/simplex"
	"q.log/intsimplex/tableau"
)

var (
	ErrNotOptimal = errors.New("tableau is not optimal and feasible")
	ErrIndex      = errors.New("index out of range")

	// ErrBasic is returned for column edits that need a non-basic column.
	ErrBasic = errors.New("column is basic")
)

// Interval is a closed range of allowable change. Open ends are infinite.
type Interval struct {
	Lo, Hi float64
}

func (iv Interval) Contains(v float64) bool {
	return v >= iv.Lo && v <= iv.Hi
}

func (iv Interval) flip() Interval {
	return Interval{Lo: -iv.Hi, Hi: -iv.Lo}
}

func unbounded() Interval {
	return Interval{Lo: math.Inf(-1), Hi: math.Inf(1)}
}

// Analyzer owns a copy of an optimal tableau.
type Analyzer struct {
	t   *tableau.Tableau
	cfg tableau.Config
}

// New copies t, which must be optimal and feasible.
func New(t *tableau.Tableau, cfg tableau.Config) (*Analyzer, error) {
	if !t.Optimal() || !t.Feasible() {
		return nil, ErrNotOptimal
	}
	return &Analyzer{t: t.Clone(), cfg: cfg}, nil
}

// Tableau is the analyzer's current tableau. It must not be modified.
func (a *Analyzer) Tableau() *tableau.Tableau { return a.t }

func (a *Analyzer) NumConstraints() int { return a.t.RHSCol() - a.t.NumVars() }

func (a *Analyzer) slack(k int) (int, error) {
	if k < 0 || k >= a.NumConstraints() {
		return 0, errors.Wrapf(ErrIndex, "constraint %d of %d", k+1, a.NumConstraints())
	}
	return a.t.NumVars() + k, nil
}

func (a *Analyzer) variable(j int) error {
	if j < 0 || j >= a.t.NumVars() {
		return errors.Wrapf(ErrIndex, "variable %d of %d", j+1, a.t.NumVars())
	}
	return nil
}

// sign converts between working (maximized) and original objective units.
func (a *Analyzer) sign() float64 {
	if a.t.Sense() == model.Minimize {
		return -1
	}
	return 1
}

// dual returns the working dual values: the objective row under each slack.
func (a *Analyzer) dual() []float64 {
	y := make([]float64, a.NumConstraints())
	for k := range y {
		y[k] = a.t.At(0, a.t.NumVars()+k)
	}
	return y
}

// ShadowPrices is the change of the optimal objective per unit increase of
// each <= row's RHS, in the problem's own sense.
func (a *Analyzer) ShadowPrices() []float64 {
	y := a.dual()
	for k := range y {
		y[k] *= a.sign()
	}
	return y
}

// Resolve brings the tableau back to an optimal, feasible state after an
// edit: the basis is re-derived from the matrix, then the dual and primal
// simplex run as needed.
func (a *Analyzer) Resolve() (tableau.Trace, error) {
	if err := a.t.RebuildBasis(); err != nil {
		return nil, err
	}
	trace, err := simplex.Reoptimize(a.t, a.cfg)
	if err != nil {
		glog.Warningf("sensitivity: resolve failed: %v", err)
		return trace, err
	}
	glog.V(1).Infof("sensitivity: resolved z=%g basis=%v", a.t.Value(), a.t.Basis())
	return trace, nil
}
