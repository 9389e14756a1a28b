package model

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Column maps a structural column of the standardized model back to a
// variable of the user's problem: x[Var] += Scale * column value.
type Column struct {
	Var     int
	Scale   float64
	Integer bool
}

// Model is a problem in the form
//
//	max/min c'x  s.t.  Ax <= b, x >= 0
//
// C keeps the costs in the user's optimization sense.
type Model struct {
	Direction Direction

	//C objective function coefficients
	C *mat.Dense

	//A constraints matrix
	A *mat.Dense

	//B constraints rhs
	B *mat.Dense

	Columns  []Column
	UserVars int

	NumRows int
	NumCols int
}

func NewModel(numRows, numCols int) *Model {
	return &Model{
		C:       mat.NewDense(1, numCols, nil),
		A:       mat.NewDense(numRows, numCols, nil),
		B:       mat.NewDense(numRows, 1, nil),
		Columns: make([]Column, numCols),
		NumRows: numRows,
		NumCols: numCols,
	}
}

func (m *Model) SetC(cVec []float64) error {
	if len(cVec) != m.NumCols {
		return errors.Wrap(ErrShape, "mismatch number of variables")
	}

	m.C = mat.NewDense(1, m.NumCols, cVec)

	return nil
}

func (m *Model) SetA(aVec []float64) error {
	if len(aVec) != m.NumCols*m.NumRows {
		return errors.Wrap(ErrShape, "mismatch number of variables and/or constraints")
	}

	m.A = mat.NewDense(m.NumRows, m.NumCols, aVec)

	return nil
}

func (m *Model) SetB(bVec []float64) error {
	if len(bVec) != m.NumRows {
		return errors.Wrap(ErrShape, "mismatch number of constraints")
	}

	m.B = mat.NewDense(m.NumRows, 1, bVec)

	return nil
}

// AddCol appends a column to A with objective coefficient coef.
func (m *Model) AddCol(cVec []float64, coef float64) error {
	if len(cVec) != m.NumRows {
		return errors.Wrap(ErrShape, "mismatch number of rows, i.e. wrong len of cVec")
	}

	m.A = mat.DenseCopyOf(m.A.Grow(0, 1))
	m.A.SetCol(m.NumCols, cVec)

	m.C = mat.DenseCopyOf(m.C.Grow(0, 1))
	m.C.Set(0, m.NumCols, coef)

	m.Columns = append(m.Columns, Column{Var: -1})

	m.NumCols++
	return nil
}

// AddRow appends the constraint rVec x <= rhs.
func (m *Model) AddRow(rVec []float64, rhs float64) error {
	if len(rVec) != m.NumCols {
		return errors.Wrap(ErrShape, "mismatch number of columns, i.e. wrong len of rVec")
	}

	m.A = mat.DenseCopyOf(m.A.Grow(1, 0))
	m.A.SetRow(m.NumRows, rVec)

	m.B = mat.DenseCopyOf(m.B.Grow(1, 0))
	m.B.Set(m.NumRows, 0, rhs)

	m.NumRows++
	return nil
}

func (m *Model) MultiplyConstraint(row int, mul float64) error {
	if row < 0 || row >= m.NumRows {
		return errors.Wrapf(ErrShape, "row %d does not exist", row)
	}

	for col := 0; col < m.NumCols; col++ {
		m.A.Set(row, col, m.A.At(row, col)*mul)
	}
	m.B.Set(row, 0, m.B.At(row, 0)*mul)
	return nil
}

func (m *Model) Clone() *Model {
	return &Model{
		Direction: m.Direction,
		C:         mat.DenseCopyOf(m.C),
		A:         mat.DenseCopyOf(m.A),
		B:         mat.DenseCopyOf(m.B),
		Columns:   append([]Column(nil), m.Columns...),
		UserVars:  m.UserVars,
		NumRows:   m.NumRows,
		NumCols:   m.NumCols,
	}
}

// Costs returns the objective coefficients as a slice.
func (m *Model) Costs() []float64 {
	return mat.Row(nil, 0, m.C)
}

// RHS returns b as a slice.
func (m *Model) RHS() []float64 {
	return mat.Col(nil, 0, m.B)
}

// Value evaluates the objective at a structural solution x.
func (m *Model) Value(x []float64) float64 {
	return mat.Dot(m.C.RowView(0), mat.NewVecDense(len(x), x))
}

// Integer reports which structural columns carry an integrality requirement.
func (m *Model) Integer() []bool {
	mask := make([]bool, m.NumCols)
	for j, c := range m.Columns {
		mask[j] = c.Integer
	}
	return mask
}

// Recover maps structural column values back onto the user's variables.
func (m *Model) Recover(x []float64) []float64 {
	out := make([]float64, m.UserVars)
	for j, c := range m.Columns {
		if j >= len(x) || c.Var < 0 {
			continue
		}
		out[c.Var] += c.Scale * x[j]
	}
	return out
}

func (m *Model) String() string {
	c := mat.Formatted(m.C, mat.Prefix("    "), mat.Squeeze())
	a := mat.Formatted(m.A, mat.Prefix("    "), mat.Squeeze())
	b := mat.Formatted(m.B.T(), mat.Prefix("    "), mat.Squeeze())
	return fmt.Sprintf("%s\nc = %v\nA = %v\nb = %v\n", m.Direction, c, a, b)
}
