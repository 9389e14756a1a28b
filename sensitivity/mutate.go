package sensitivity

import (
	"github.com/pkg/errors"
	"q.log/intsimplex/model"
	"q.log/intsimplex/tableau"
)

// ChangeCost adds delta to variable j's objective coefficient and resolves.
func (a *Analyzer) ChangeCost(j int, delta float64) (tableau.Trace, error) {
	if err := a.variable(j); err != nil {
		return nil, err
	}
	d := delta * a.sign()
	if r := a.t.RowOf(j); r > 0 {
		// the basic column is reset to zero in the objective row
		a.t.AddScaledRow(0, r, d)
	} else {
		a.t.Set(0, j, a.t.At(0, j)-d)
	}
	return a.Resolve()
}

// ChangeRHS adds delta to constraint k's RHS and resolves.
func (a *Analyzer) ChangeRHS(k int, delta float64) (tableau.Trace, error) {
	s, err := a.slack(k)
	if err != nil {
		return nil, err
	}
	a.t.AddScaledColumn(a.t.RHSCol(), s, delta)
	return a.Resolve()
}

// ChangeCoefficient adds delta to the coefficient of non-basic variable j in
// constraint k and resolves.
func (a *Analyzer) ChangeCoefficient(k, j int, delta float64) (tableau.Trace, error) {
	s, err := a.slack(k)
	if err != nil {
		return nil, err
	}
	if err := a.variable(j); err != nil {
		return nil, err
	}
	if a.t.RowOf(j) > 0 {
		return nil, errors.Wrapf(ErrBasic, "x%d", j+1)
	}
	a.t.AddScaledColumn(j, s, delta)
	return a.Resolve()
}

// AddActivity adds a new decision variable with objective coefficient cost
// and one coefficient per constraint. Its column is B^-1 a, read off the
// slack columns, and its reduced cost is y'a - c. The new variable becomes
// x[NumVars] and the tableau is resolved.
func (a *Analyzer) AddActivity(cost float64, coefs []float64) (int, tableau.Trace, error) {
	m := a.NumConstraints()
	if len(coefs) != m {
		return 0, nil, errors.Wrapf(model.ErrShape, "activity has %d coefficients for %d constraints", len(coefs), m)
	}

	rows, _ := a.t.Dims()
	col := make([]float64, rows)
	n := a.t.NumVars()
	for i := 0; i < rows; i++ {
		for k, v := range coefs {
			col[i] += v * a.t.At(i, n+k)
		}
	}
	col[0] -= cost * a.sign()

	if err := a.t.InsertColumn(n, col); err != nil {
		return 0, nil, err
	}
	trace, err := a.Resolve()
	return n, trace, err
}

// AddConstraint appends coefs x rel rhs over the decision variables, written
// in terms of the current basis, and resolves. An equality adds two rows.
func (a *Analyzer) AddConstraint(coefs []float64, rel model.Relation, rhs float64) (tableau.Trace, error) {
	if len(coefs) != a.t.NumVars() {
		return nil, errors.Wrapf(model.ErrShape, "constraint has %d coefficients for %d variables", len(coefs), a.t.NumVars())
	}
	neg := make([]float64, len(coefs))
	for j, v := range coefs {
		neg[j] = -v
	}

	var rows [][]float64
	var rhss []float64
	switch rel {
	case model.LessEq:
		rows, rhss = [][]float64{coefs}, []float64{rhs}
	case model.GreaterEq:
		rows, rhss = [][]float64{neg}, []float64{-rhs}
	case model.Equal:
		rows, rhss = [][]float64{coefs, neg}, []float64{rhs, -rhs}
	}
	for i, row := range rows {
		if _, err := a.t.AddConstraint(row, rhss[i]); err != nil {
			return nil, err
		}
	}
	return a.Resolve()
}
