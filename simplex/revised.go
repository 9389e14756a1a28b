package simplex

import (
	"fmt"
	"math"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"q.log/intsimplex/model"
	"q.log/intsimplex/tableau"
)

// Step records one iteration of the revised simplex.
type Step struct {
	Iteration int

	// Z is the working objective c_B B^-1 b before the basis change.
	Z float64

	// Y is the dual vector c_B B^-1.
	Y []float64

	// U is B^-1 a_j for the entering column.
	U []float64

	// Ratios holds x_B[i]/u[i] for eligible rows, NaN elsewhere.
	Ratios []float64

	Entering int
	Leaving  int
	Row      int
}

func (s Step) String() string {
	return fmt.Sprintf("iteration %d: z=%g y=%v u=%v ratios=%v, column %d enters, column %d leaves at position %d",
		s.Iteration, s.Z, s.Y, s.U, s.Ratios, s.Entering, s.Leaving, s.Row)
}

// RevisedResult is the outcome of Revised. Columns are numbered as in the
// augmented system: decision variables, then one slack per row, then the
// artificial columns.
type RevisedResult struct {
	Status Status

	// Basis lists the basic column of each basis position.
	Basis []int

	// B holds the basic columns of the augmented matrix, BInv its inverse.
	B    *mat.Dense
	BInv *mat.Dense

	// X holds the decision variable values.
	X []float64

	// ZWorking is the maximized working objective; Z is in the problem's sense.
	ZWorking float64
	Z        float64

	Steps []Step

	work      *model.Model
	numVars   int
	numRows   int
	artStart  int
	direction model.Direction
	cfg       tableau.Config
}

// addArtificialVariables augments work with one slack per row, flips rows
// with a negative RHS and gives each flipped row an artificial column with
// cost -BigM. It returns the starting basis.
func addArtificialVariables(work *model.Model, bigM float64) ([]int, error) {
	rows := work.NumRows
	for r := 0; r < rows; r++ {
		col := make([]float64, rows)
		col[r] = 1
		if err := work.AddCol(col, 0); err != nil {
			return nil, err
		}
	}

	basis := make([]int, rows)
	flipped := make([]bool, rows)
	slacks := work.NumCols - rows
	for r := 0; r < rows; r++ {
		basis[r] = slacks + r
		if work.B.At(r, 0) >= 0 {
			continue
		}
		if err := work.MultiplyConstraint(r, -1); err != nil {
			return nil, err
		}
		flipped[r] = true
	}
	for r := 0; r < rows; r++ {
		if !flipped[r] {
			continue
		}
		col := make([]float64, rows)
		col[r] = 1
		basis[r] = work.NumCols
		if err := work.AddCol(col, -bigM); err != nil {
			return nil, err
		}
	}
	return basis, nil
}

func identity(n int) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, 1)
	}
	return d
}

// Revised solves m with the revised simplex method. Only the basis inverse
// is carried between iterations; it is updated with an eta matrix after
// every basis change. Pricing follows Bland's rule.
func Revised(m *model.Model, cfg tableau.Config) (*RevisedResult, error) {
	work := m.Clone()
	if m.Direction == model.Minimize {
		work.C.Scale(-1, work.C)
	}
	numVars, rows := m.NumCols, m.NumRows

	basis, err := addArtificialVariables(work, cfg.BigM)
	if err != nil {
		return nil, err
	}
	res := &RevisedResult{
		work:      work,
		numVars:   numVars,
		numRows:   rows,
		artStart:  numVars + rows,
		direction: m.Direction,
		cfg:       cfg,
	}

	currentBasis := identity(rows)
	inverseBasis := identity(rows)
	basisCoefs := mat.NewVecDense(rows, nil)
	isBasic := make([]bool, work.NumCols)
	for r, b := range basis {
		basisCoefs.SetVec(r, work.C.At(0, b))
		isBasic[b] = true
	}
	b := work.B.ColView(0)

	var xB, y, u mat.VecDense
	finish := func(status Status) {
		res.Status = status
		res.Basis = append([]int(nil), basis...)
		res.B = currentBasis
		res.BInv = inverseBasis
	}

	for iter := 1; ; iter++ {
		xB.MulVec(inverseBasis, b)
		for i := 0; i < rows; i++ {
			if xB.AtVec(i) < cfg.Epsilon && xB.AtVec(i) > -cfg.Epsilon {
				xB.SetVec(i, 0)
			}
		}
		y.MulVec(inverseBasis.T(), basisCoefs)
		z := mat.Dot(basisCoefs, &xB)

		entering := -1
		for j := 0; j < work.NumCols; j++ {
			if isBasic[j] {
				continue
			}
			if work.C.At(0, j)-mat.Dot(&y, work.A.ColView(j)) > cfg.Epsilon {
				entering = j
				break
			}
		}

		if entering < 0 {
			finish(Optimal)
			for i, col := range basis {
				if col >= res.artStart && xB.AtVec(i) > cfg.Epsilon {
					res.Status = Infeasible
					return res, errors.Wrapf(ErrInfeasible, "artificial column %d stays at %g", col, xB.AtVec(i))
				}
			}
			res.ZWorking = z
			res.Z = z
			if m.Direction == model.Minimize {
				res.Z = -z
			}
			res.X = make([]float64, numVars)
			for i, col := range basis {
				if col < numVars {
					res.X[col] = xB.AtVec(i)
				}
			}
			glog.Infof("revised: optimal z=%g after %d iterations", res.Z, iter-1)
			return res, nil
		}
		if iter > cfg.MaxIterations {
			finish(IterationLimit)
			return res, errors.Wrapf(ErrIterationLimit, "revised simplex after %d iterations", iter-1)
		}

		u.MulVec(inverseBasis, work.A.ColView(entering))

		ratios := make([]float64, rows)
		leave := -1
		minimalRatio := math.Inf(1)
		for i := 0; i < rows; i++ {
			ratios[i] = math.NaN()
			if u.AtVec(i) <= cfg.Epsilon {
				continue
			}
			ratios[i] = xB.AtVec(i) / u.AtVec(i)
			if ratios[i] < minimalRatio-cfg.Epsilon ||
				(leave >= 0 && math.Abs(ratios[i]-minimalRatio) <= cfg.Epsilon && basis[i] < basis[leave]) {
				minimalRatio = ratios[i]
				leave = i
			}
		}

		step := Step{
			Iteration: iter,
			Z:         z,
			Y:         mat.Col(nil, 0, &y),
			U:         mat.Col(nil, 0, &u),
			Ratios:    ratios,
			Entering:  entering,
			Leaving:   -1,
			Row:       leave,
		}
		if leave < 0 {
			res.Steps = append(res.Steps, step)
			finish(Unbounded)
			return res, errors.Wrapf(ErrUnbounded, "column %d has no positive entry in B^-1 a", entering)
		}
		step.Leaving = basis[leave]
		res.Steps = append(res.Steps, step)
		glog.V(2).Infof("revised: %v", step)

		// B^-1 <- E B^-1
		eta := identity(rows)
		pivot := u.AtVec(leave)
		for i := 0; i < rows; i++ {
			if i == leave {
				eta.Set(i, leave, 1/pivot)
				continue
			}
			eta.Set(i, leave, -u.AtVec(i)/pivot)
		}
		var next mat.Dense
		next.Mul(eta, inverseBasis)
		inverseBasis = &next

		isBasic[basis[leave]] = false
		isBasic[entering] = true
		basis[leave] = entering
		basisCoefs.SetVec(leave, work.C.At(0, entering))
		currentBasis.SetCol(leave, mat.Col(nil, entering, work.A))
	}
}

// Tableau expands the final basis into the dense tableau over the decision
// and slack columns, as the tableau engines would have produced it. Flipped
// rows need no undoing: B^-1 of the flipped system yields the same rows. A
// zero artificial left in the basis is replaced by the slack of its row.
func (r *RevisedResult) Tableau() (*tableau.Tableau, error) {
	if r.Status != Optimal {
		return nil, errors.Errorf("no optimal basis (%s)", r.Status)
	}
	rows, n := r.numRows, r.numVars
	cols := n + rows + 1

	aug := mat.NewDense(rows, cols, nil)
	aug.Slice(0, rows, 0, n+rows).(*mat.Dense).Copy(r.work.A.Slice(0, rows, 0, n+rows))
	aug.SetCol(cols-1, mat.Col(nil, 0, r.work.B))

	body := mat.NewDense(rows, cols, nil)
	body.Mul(r.BInv, aug)

	basis := append([]int(nil), r.Basis...)
	for k, col := range basis {
		if col < r.artStart {
			continue
		}
		row := -1
		for i := 0; i < rows; i++ {
			if r.work.A.At(i, col) != 0 {
				row = i
				break
			}
		}
		basis[k] = n + row
		if body.At(k, n+row) < 0 {
			floats.Scale(-1, body.RawRowView(k))
		}
	}

	cw := make([]float64, cols)
	for j := 0; j < n; j++ {
		cw[j] = r.work.C.At(0, j)
	}
	cB := mat.NewVecDense(rows, nil)
	for k, col := range basis {
		cB.SetVec(k, cw[col])
	}

	data := mat.NewDense(rows+1, cols, nil)
	for j := 0; j < cols; j++ {
		v := mat.Dot(cB, body.ColView(j))
		if j < cols-1 {
			v -= cw[j]
		}
		data.Set(0, j, v)
	}
	data.Slice(1, rows+1, 0, cols).(*mat.Dense).Copy(body)

	t, err := tableau.New(data, basis, n, r.direction, r.cfg.Epsilon)
	if err != nil {
		return nil, err
	}
	t.Normalize()
	return t, nil
}
