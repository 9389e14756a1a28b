package sensitivity

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Dual is the dual of the <= form maximization the tableau encodes:
//
//	min b'y  s.t.  A'y >= c, y >= 0
//
// A, B and C are reconstructed from the tableau alone. C holds the working
// (maximized) costs, so PrimalZ and DualZ are working objective values.
type Dual struct {
	A *mat.Dense
	B []float64
	C []float64

	// Y is the optimal dual solution read off the objective row.
	Y []float64

	PrimalZ float64
	DualZ   float64

	// Strong reports |PrimalZ - DualZ| within the integrality tolerance.
	Strong bool
}

// Duality rebuilds the primal data from the tableau and checks strong
// duality. With B^-1 the slack block:
//
//	B = (B^-1)^-1, A = B (B^-1 A), b = B x_B, c = y'A - row0
func (a *Analyzer) Duality() (*Dual, error) {
	m, n := a.t.NumConstraints(), a.t.NumVars()
	if a.NumConstraints() != m {
		return nil, errors.Errorf("%d slack columns for %d rows", a.NumConstraints(), m)
	}
	d := a.t.Dense()

	var basis mat.Dense
	if err := basis.Inverse(d.Slice(1, m+1, n, n+m)); err != nil {
		return nil, errors.Wrap(err, "slack block is singular")
	}

	var A mat.Dense
	A.Mul(&basis, d.Slice(1, m+1, 0, n))
	var b mat.VecDense
	b.MulVec(&basis, mat.NewVecDense(m, mat.Col(nil, n+m, d)[1:]))

	y := a.dual()
	yv := mat.NewVecDense(m, y)
	var yA mat.VecDense
	yA.MulVec(A.T(), yv)
	c := make([]float64, n)
	for j := range c {
		c[j] = yA.AtVec(j) - d.At(0, j)
	}

	dual := &Dual{
		A:       &A,
		B:       mat.Col(nil, 0, &b),
		C:       c,
		Y:       y,
		PrimalZ: a.t.Objective(),
	}
	dual.DualZ = floats.Dot(dual.B, y)
	dual.Strong = math.Abs(dual.PrimalZ-dual.DualZ) <= a.cfg.IntTolerance
	return dual, nil
}

func (d *Dual) String() string {
	var sb strings.Builder
	sb.WriteString("min w =")
	for i, v := range d.B {
		fmt.Fprintf(&sb, " %+g y%d", v, i+1)
	}
	sb.WriteString("\n")
	m, n := d.A.Dims()
	for j := 0; j < n; j++ {
		for i := 0; i < m; i++ {
			fmt.Fprintf(&sb, " %+g y%d", d.A.At(i, j), i+1)
		}
		fmt.Fprintf(&sb, " >= %g\n", d.C[j])
	}
	fmt.Fprintf(&sb, "y = %v\nprimal z = %g, dual w = %g, strong duality: %t\n", d.Y, d.PrimalZ, d.DualZ, d.Strong)
	return sb.String()
}
