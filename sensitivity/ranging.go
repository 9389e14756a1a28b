package sensitivity

import (
	"math"

	"github.com/pkg/errors"
)

// ReducedCostRange is the allowable change of a non-basic variable's cost
// before it would enter the basis.
func (a *Analyzer) ReducedCostRange(j int) (Interval, error) {
	if err := a.variable(j); err != nil {
		return Interval{}, err
	}
	if a.t.RowOf(j) > 0 {
		return Interval{}, errors.Wrapf(ErrBasic, "x%d", j+1)
	}
	iv := Interval{Lo: math.Inf(-1), Hi: a.t.At(0, j)}
	if a.sign() < 0 {
		iv = iv.flip()
	}
	return iv, nil
}

// CostRange is the allowable change of variable j's cost that keeps the
// current basis optimal.
func (a *Analyzer) CostRange(j int) (Interval, error) {
	if err := a.variable(j); err != nil {
		return Interval{}, err
	}
	r := a.t.RowOf(j)
	if r < 0 {
		return a.ReducedCostRange(j)
	}

	// a working change d adds d*row r to the objective row
	iv := unbounded()
	eps := a.cfg.Epsilon
	for col := 0; col < a.t.RHSCol(); col++ {
		if a.t.RowOf(col) > 0 {
			continue
		}
		coef := a.t.At(r, col)
		switch {
		case coef > eps:
			iv.Lo = math.Max(iv.Lo, -a.t.At(0, col)/coef)
		case coef < -eps:
			iv.Hi = math.Min(iv.Hi, -a.t.At(0, col)/coef)
		}
	}
	if a.sign() < 0 {
		iv = iv.flip()
	}
	return iv, nil
}

// RHSRange is the allowable change of constraint k's RHS that keeps every
// basic value non-negative. At either end one basic value reaches zero.
func (a *Analyzer) RHSRange(k int) (Interval, error) {
	s, err := a.slack(k)
	if err != nil {
		return Interval{}, err
	}
	iv := unbounded()
	eps := a.cfg.Epsilon
	for i := 1; i <= a.t.NumConstraints(); i++ {
		coef := a.t.At(i, s)
		switch {
		case coef > eps:
			iv.Lo = math.Max(iv.Lo, -a.t.RHS(i)/coef)
		case coef < -eps:
			iv.Hi = math.Min(iv.Hi, -a.t.RHS(i)/coef)
		}
	}
	return iv, nil
}

// CoefficientRange is the allowable change of the coefficient of non-basic
// variable j in constraint k before j would enter the basis.
func (a *Analyzer) CoefficientRange(k, j int) (Interval, error) {
	s, err := a.slack(k)
	if err != nil {
		return Interval{}, err
	}
	if err := a.variable(j); err != nil {
		return Interval{}, err
	}
	if a.t.RowOf(j) > 0 {
		return Interval{}, errors.Wrapf(ErrBasic, "x%d", j+1)
	}

	iv := unbounded()
	y := a.t.At(0, s)
	switch {
	case y > a.cfg.Epsilon:
		iv.Lo = -a.t.At(0, j) / y
	case y < -a.cfg.Epsilon:
		iv.Hi = -a.t.At(0, j) / y
	}
	return iv, nil
}
