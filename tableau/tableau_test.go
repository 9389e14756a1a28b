package tableau

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"q.log/intsimplex/model"
)

// max x1 + x2  s.t.  x1 + 2x2 <= 4, 3x1 + x2 <= 6
func small(t *testing.T) *Tableau {
	t.Helper()
	data := mat.NewDense(3, 5, []float64{
		-1, -1, 0, 0, 0,
		1, 2, 1, 0, 4,
		3, 1, 0, 1, 6,
	})
	tab, err := New(data, []int{2, 3}, 2, model.Maximize, 1e-9)
	require.NoError(t, err)
	return tab
}

func TestNew(t *testing.T) {
	tab := small(t)
	assert.Equal(t, 2, tab.NumConstraints())
	assert.Equal(t, 4, tab.RHSCol())
	assert.True(t, tab.Feasible())
	assert.False(t, tab.Optimal())

	_, err := New(mat.NewDense(3, 5, nil), []int{2}, 2, model.Maximize, 1e-9)
	assert.True(t, errors.Is(err, model.ErrShape))
	_, err = New(mat.NewDense(3, 5, nil), []int{2, 4}, 2, model.Maximize, 1e-9)
	assert.True(t, errors.Is(err, model.ErrShape))
	_, err = New(mat.NewDense(1, 5, nil), nil, 2, model.Maximize, 1e-9)
	assert.True(t, errors.Is(err, model.ErrShape))
}

func TestPivot(t *testing.T) {
	tab := small(t)
	require.NoError(t, tab.Pivot(1, 0))

	assert.Equal(t, []float64{0, 1, 1, 0, 4}, tab.Row(0))
	assert.Equal(t, []float64{1, 2, 1, 0, 4}, tab.Row(1))
	assert.Equal(t, []float64{0, -5, -3, 1, -6}, tab.Row(2))
	assert.Equal(t, []int{0, 3}, tab.Basis())
	assert.Equal(t, 1, tab.RowOf(0))
	assert.Equal(t, -1, tab.RowOf(2))
	assert.Equal(t, []float64{4, 0, 0, -6}, tab.Values())
	assert.Equal(t, []float64{4, 0}, tab.Solution())
	assert.True(t, tab.Optimal())
	assert.False(t, tab.Feasible())

	err := tab.Pivot(1, 3)
	assert.True(t, errors.Is(err, ErrDegeneratePivot))
	assert.Error(t, tab.Pivot(0, 0))
	assert.Error(t, tab.Pivot(1, 4))
}

func TestValueFollowsSense(t *testing.T) {
	data := mat.NewDense(2, 3, []float64{0, 0, -7, 1, 1, 2})
	tab, err := New(data, []int{1}, 1, model.Minimize, 1e-9)
	require.NoError(t, err)
	assert.Equal(t, -7.0, tab.Objective())
	assert.Equal(t, 7.0, tab.Value())
}

func TestClone(t *testing.T) {
	tab := small(t)
	c := tab.Clone()
	require.NoError(t, c.Pivot(1, 0))
	assert.Equal(t, []int{2, 3}, tab.Basis())
	assert.Equal(t, -1.0, tab.At(0, 0))
}

func TestNormalize(t *testing.T) {
	tab := small(t)
	tab.Set(1, 0, 1+1e-12)
	tab.Set(2, 4, 1e-12)
	tab.Set(2, 2, 0.5)
	tab.Normalize()
	assert.Equal(t, 1.0, tab.At(1, 0))
	assert.Equal(t, 0.0, tab.At(2, 4))
	// basic column 2 is reset to its unit vector
	assert.Equal(t, 0.0, tab.At(2, 2))
	assert.Equal(t, 1.0, tab.At(1, 2))
}

func TestAddScaled(t *testing.T) {
	tab := small(t)
	tab.AddScaledColumn(tab.RHSCol(), 2, 1)
	assert.Equal(t, []float64{0, 5, 6}, mat.Col(nil, 4, tab.Dense()))

	tab.AddScaledRow(0, 1, 2)
	assert.Equal(t, []float64{1, 3, 0, 0, 10}, tab.Row(0))
}

func TestAddConstraint(t *testing.T) {
	tab := small(t)
	require.NoError(t, tab.Pivot(1, 0))

	row, err := tab.AddConstraint([]float64{1, 1}, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, row)
	assert.Equal(t, []int{0, 3, 4}, tab.Basis())
	assert.Equal(t, 5, tab.RHSCol())
	assert.Equal(t, []float64{1, 2, 1, 0, 0, 4}, tab.Row(1))
	assert.Equal(t, []float64{0, -1, -1, 0, 1, -1}, tab.Row(3))

	_, err = tab.AddConstraint(make([]float64, 9), 0)
	assert.True(t, errors.Is(err, model.ErrShape))
}

func TestInsertColumn(t *testing.T) {
	tab := small(t)
	require.NoError(t, tab.InsertColumn(2, []float64{-7, 1, 1}))

	assert.Equal(t, 3, tab.NumVars())
	assert.Equal(t, []int{3, 4}, tab.Basis())
	assert.Equal(t, []float64{1, 2, 1, 1, 0, 4}, tab.Row(1))
	assert.Equal(t, []float64{-1, -1, -7, 0, 0, 0}, tab.Row(0))

	assert.True(t, errors.Is(tab.InsertColumn(0, []float64{1}), model.ErrShape))
	assert.Error(t, tab.InsertColumn(9, []float64{0, 0, 0}))
}

func TestRebuildBasis(t *testing.T) {
	data := mat.NewDense(3, 5, []float64{
		-1, -1, 0, 0, 0,
		1, 2, 1, 0, 4,
		3, 1, 0, 1, 6,
	})
	tab, err := New(data, []int{3, 2}, 2, model.Maximize, 1e-9)
	require.NoError(t, err)
	require.NoError(t, tab.RebuildBasis())
	assert.Equal(t, []int{2, 3}, tab.Basis())

	bad, err := New(mat.NewDense(2, 3, []float64{0, 0, 0, 2, 3, 5}), []int{0}, 1, model.Maximize, 1e-9)
	require.NoError(t, err)
	assert.True(t, errors.Is(bad.RebuildBasis(), ErrNoBasis))
}

func TestFrac(t *testing.T) {
	tests := []struct {
		v, want float64
	}{
		{2.5, 0.5},
		{-0.25, 0.75},
		{3, 0},
		{3.0000001, 0},
		{2.9999999, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Frac(tt.v, 1e-6), 1e-12, "Frac(%g)", tt.v)
	}
	assert.True(t, IsInteger(-4, 1e-6))
	assert.False(t, IsInteger(0.1, 1e-6))
}

func TestSnapshotFormat(t *testing.T) {
	tab := small(t)
	s := tab.Snapshot("Initial tableau")
	require.NoError(t, tab.Pivot(1, 0))
	assert.Equal(t, []int{2, 3}, s.Basis)

	out := s.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Initial tableau", lines[0])
	assert.Equal(t, []string{"x1", "x2", "s1", "s2", "rhs"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"z", "-1", "-1", "0", "0", "0"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"s1", "1", "2", "1", "0", "4"}, strings.Fields(lines[3]))

	assert.Equal(t, "x3", Label(2, 3))
	assert.Equal(t, "s2", Label(4, 3))
	assert.Equal(t, "0.333", num(1.0/3))
	assert.Equal(t, "0", num(-1e-7))
}
