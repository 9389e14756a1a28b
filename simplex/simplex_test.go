package simplex

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
	"q.log/intsimplex/model"
	"q.log/intsimplex/tableau"
)

const tol = 1e-7

func le(b float64, coefs ...float64) model.Constraint {
	return model.Constraint{Coefficients: coefs, Relation: model.LessEq, RHS: b}
}

func ge(b float64, coefs ...float64) model.Constraint {
	return model.Constraint{Coefficients: coefs, Relation: model.GreaterEq, RHS: b}
}

func standardize(t *testing.T, p *model.Problem) *model.Model {
	t.Helper()
	m, err := model.Standardize(p)
	require.NoError(t, err)
	return m
}

// max 3x1 + 5x2, x1 <= 4, 2x2 <= 12, 3x1 + 2x2 <= 18
func production() *model.Problem {
	return &model.Problem{
		Direction: model.Maximize,
		Objective: []float64{3, 5},
		Constraints: []model.Constraint{
			le(4, 1, 0),
			le(12, 0, 2),
			le(18, 3, 2),
		},
	}
}

// min 2x1 + 3x2, x1 + x2 >= 4, x1 + 3x2 >= 6
func diet() *model.Problem {
	return &model.Problem{
		Direction: model.Minimize,
		Objective: []float64{2, 3},
		Constraints: []model.Constraint{
			ge(4, 1, 1),
			ge(6, 1, 3),
		},
	}
}

func infeasible() *model.Problem {
	return &model.Problem{
		Direction:   model.Maximize,
		Objective:   []float64{1, 1},
		Constraints: []model.Constraint{le(1, 1, 1), ge(3, 1, 1)},
	}
}

func unbounded() *model.Problem {
	return &model.Problem{
		Direction:   model.Maximize,
		Objective:   []float64{1, 1},
		Constraints: []model.Constraint{le(1, 1, -1)},
	}
}

func TestNewTableau(t *testing.T) {
	tab, err := NewTableau(standardize(t, production()), tableau.DefaultConfig())
	require.NoError(t, err)

	r, c := tab.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 6, c)
	assert.Equal(t, []int{2, 3, 4}, tab.Basis())
	assert.Equal(t, []float64{-3, -5, 0, 0, 0, 0}, tab.Row(0))
	assert.Equal(t, []float64{3, 2, 0, 0, 1, 18}, tab.Row(3))

	tab, err = NewTableau(standardize(t, diet()), tableau.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3, 0, 0, 0}, tab.Row(0))
	assert.Equal(t, []float64{-1, -1, 1, 0, -4}, tab.Row(1))
	assert.False(t, tab.Feasible())
}

func TestSolveLPMaximize(t *testing.T) {
	res, err := SolveLP(standardize(t, production()), tableau.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, Optimal, res.Status)
	assert.InDelta(t, 36, res.Z, tol)
	assert.InDeltaSlice(t, []float64{2, 6}, res.X, tol)
	assert.Equal(t, []int{2, 1, 0}, res.Basis)
	assert.InDeltaSlice(t, []float64{0, 0, 0, 1.5, 1, 36}, res.Tableau.Row(0), tol)
	assert.InDeltaSlice(t, []float64{0, 0, 1, 1.0 / 3, -1.0 / 3, 2}, res.Tableau.Row(1), tol)

	// initial, two pivots, optimal
	require.Len(t, res.Trace, 4)
	assert.Equal(t, "Initial tableau", res.Trace[0].Title)
	assert.Contains(t, res.Trace[1].Title, "x2 enters")
	assert.Contains(t, res.Trace[2].Title, "x1 enters")
}

func TestSolveLPMinimizeNeedsDual(t *testing.T) {
	res, err := SolveLP(standardize(t, diet()), tableau.DefaultConfig())
	require.NoError(t, err)

	assert.InDelta(t, 9, res.Z, tol)
	assert.InDelta(t, -9, res.Tableau.Objective(), tol)
	assert.InDeltaSlice(t, []float64{3, 1}, res.X, tol)
	assert.Contains(t, res.Trace[1].Title, "Dual iteration 1")
}

func TestSolveLPTerminalStates(t *testing.T) {
	tests := []struct {
		name   string
		p      *model.Problem
		target error
		status Status
	}{
		{"infeasible", infeasible(), ErrInfeasible, Infeasible},
		{"unbounded", unbounded(), ErrUnbounded, Unbounded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := SolveLP(standardize(t, tt.p), tableau.DefaultConfig())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
			require.NotNil(t, res)
			assert.Equal(t, tt.status, res.Status)
			assert.NotNil(t, res.Tableau)
		})
	}
}

func TestPrimalIterationLimit(t *testing.T) {
	cfg := tableau.DefaultConfig()
	cfg.MaxIterations = 1
	res, err := SolveLP(standardize(t, production()), cfg)
	assert.True(t, errors.Is(err, ErrIterationLimit))
	assert.Equal(t, IterationLimit, res.Status)
}

func TestDualNoOpWhenFeasible(t *testing.T) {
	tab, err := NewTableau(standardize(t, production()), tableau.DefaultConfig())
	require.NoError(t, err)
	before := tab.Dense()

	trace, err := Dual(tab, tableau.DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, trace)
	assert.True(t, mat.Equal(before, tab.Dense()))
}

func TestDualEnteringColumn(t *testing.T) {
	data := mat.NewDense(2, 5, []float64{
		0, 2, 3, 0, 0,
		-1, -1, -3, 1, -6,
	})
	tab, err := tableau.New(data, []int{3}, 3, model.Maximize, 1e-9)
	require.NoError(t, err)

	// x1 has a zero ratio, x2 ratio 2, x3 ratio 1
	assert.Equal(t, 2, DualEnteringColumn(tab, 1, 1e-9, true))
	assert.Equal(t, 2, DualEnteringColumn(tab, 1, 1e-9, false))

	tab.Set(0, 1, 0)
	tab.Set(0, 2, 0)
	assert.Equal(t, 0, DualEnteringColumn(tab, 1, 1e-9, true))
	assert.Equal(t, -1, DualEnteringColumn(tab, 1, 1e-9, false))
}

func TestPivotOnBasicColumnIsIdentity(t *testing.T) {
	res, err := SolveLP(standardize(t, production()), tableau.DefaultConfig())
	require.NoError(t, err)

	tab := res.Tableau
	before := tab.Dense()
	for row := 1; row <= tab.NumConstraints(); row++ {
		require.NoError(t, tab.Pivot(row, tab.BasicIn(row)))
	}
	assert.True(t, mat.EqualApprox(before, tab.Dense(), tol))
}

func TestRevised(t *testing.T) {
	res, err := Revised(standardize(t, production()), tableau.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, Optimal, res.Status)
	assert.InDelta(t, 36, res.Z, tol)
	assert.InDelta(t, 36, res.ZWorking, tol)
	assert.InDeltaSlice(t, []float64{2, 6}, res.X, tol)

	// Bland: x1 enters first and pushes out s1
	require.Len(t, res.Steps, 3)
	assert.Equal(t, 0, res.Steps[0].Entering)
	assert.Equal(t, 2, res.Steps[0].Leaving)
	assert.InDeltaSlice(t, []float64{0, 0, 0}, res.Steps[0].Y, tol)
	assert.Equal(t, 1, res.Steps[1].Entering)
	assert.Equal(t, 4, res.Steps[1].Leaving)

	var check mat.Dense
	check.Mul(res.B, res.BInv)
	assert.True(t, mat.EqualApprox(&check, identity(3), tol))
}

func TestRevisedMinimize(t *testing.T) {
	res, err := Revised(standardize(t, diet()), tableau.DefaultConfig())
	require.NoError(t, err)
	assert.InDelta(t, 9, res.Z, tol)
	assert.InDelta(t, -9, res.ZWorking, tol)
	assert.InDeltaSlice(t, []float64{3, 1}, res.X, tol)
}

func TestRevisedTerminalStates(t *testing.T) {
	_, err := Revised(standardize(t, infeasible()), tableau.DefaultConfig())
	assert.True(t, errors.Is(err, ErrInfeasible), "got %v", err)

	res, err := Revised(standardize(t, unbounded()), tableau.DefaultConfig())
	assert.True(t, errors.Is(err, ErrUnbounded), "got %v", err)
	assert.Equal(t, Unbounded, res.Status)

	_, err = res.Tableau()
	assert.Error(t, err)
}

func TestRevisedTableauMatchesPrimal(t *testing.T) {
	for _, p := range []*model.Problem{production(), diet()} {
		m := standardize(t, p)
		primal, err := SolveLP(m, tableau.DefaultConfig())
		require.NoError(t, err)
		revised, err := Revised(m, tableau.DefaultConfig())
		require.NoError(t, err)

		tab, err := revised.Tableau()
		require.NoError(t, err)
		assert.True(t, tab.Optimal())
		assert.True(t, tab.Feasible())
		assert.InDelta(t, primal.Z, tab.Value(), tol)
		assert.InDeltaSlice(t, primal.X, tab.Solution(), tol)
		// the objective row does not depend on the order of basic rows
		assert.InDeltaSlice(t, primal.Tableau.Row(0), tab.Row(0), tol)
	}
}

// oracle solves max c'x, Ax <= b, x >= 0 with gonum's simplex on the slack
// form.
func oracle(t *testing.T, c []float64, a [][]float64, b []float64) float64 {
	t.Helper()
	rows, cols := len(a), len(c)
	cNew := make([]float64, cols+rows)
	for j, v := range c {
		cNew[j] = -v
	}
	aNew := mat.NewDense(rows, cols+rows, nil)
	for i, row := range a {
		for j, v := range row {
			aNew.Set(i, j, v)
		}
		aNew.Set(i, cols+i, 1)
	}
	opt, _, err := lp.Simplex(cNew, aNew, b, 0, nil)
	require.NoError(t, err)
	return -opt
}

func TestAgainstGonum(t *testing.T) {
	tests := []struct {
		name string
		c    []float64
		a    [][]float64
		b    []float64
	}{
		{"production", []float64{3, 5}, [][]float64{{1, 0}, {0, 2}, {3, 2}}, []float64{4, 12, 18}},
		{"taha", []float64{7, 10}, [][]float64{{-1, 3}, {7, 1}}, []float64{6, 35}},
		{"three vars", []float64{2, 3, 4}, [][]float64{{3, 2, 1}, {2, 5, 3}}, []float64{10, 15}},
		{"chvatal", []float64{5, 4, 3}, [][]float64{{2, 3, 1}, {4, 1, 2}, {3, 4, 2}}, []float64{5, 11, 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &model.Problem{Direction: model.Maximize, Objective: tt.c}
			for i, row := range tt.a {
				p.Constraints = append(p.Constraints, le(tt.b[i], row...))
			}
			m := standardize(t, p)
			want := oracle(t, tt.c, tt.a, tt.b)

			res, err := SolveLP(m, tableau.DefaultConfig())
			require.NoError(t, err)
			assert.InDelta(t, want, res.Z, 1e-6)
			assert.InDelta(t, res.Z, m.Value(res.X), 1e-6)

			rev, err := Revised(m, tableau.DefaultConfig())
			require.NoError(t, err)
			assert.InDelta(t, want, rev.Z, 1e-6)
			assert.InDelta(t, rev.Z, m.Value(rev.X), 1e-6)
		})
	}
}
