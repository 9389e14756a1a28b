package tableau

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"q.log/intsimplex/model"
)

var (
	// ErrDegeneratePivot is an internal error: the selected
	// pivot element is numerically zero.
	ErrDegeneratePivot = errors.New("zero pivot element")

	// ErrNoBasis is returned when a constraint row has no unit column left.
	ErrNoBasis = errors.New("tableau row has no basic column")
)

// Tableau is the dense simplex tableau. Row 0 holds z - c'x for the working
// (maximized) objective, rows 1..m hold the constraints and the last column
// holds the RHS. basis[i-1] is the column basic in row i.
type Tableau struct {
	data    *mat.Dense
	basis   []int
	numVars int
	sense   model.Direction
	eps     float64
}

// New wraps data as a tableau. The basis must name one column per
// constraint row; data is used as is and is owned by the tableau afterwards.
func New(data *mat.Dense, basis []int, numVars int, sense model.Direction, eps float64) (*Tableau, error) {
	r, c := data.Dims()
	if r < 2 || c < 2 {
		return nil, errors.Wrapf(model.ErrShape, "tableau %dx%d too small", r, c)
	}
	if len(basis) != r-1 {
		return nil, errors.Wrapf(model.ErrShape, "basis has %d entries for %d rows", len(basis), r-1)
	}
	if numVars < 0 || numVars > c-1 {
		return nil, errors.Wrapf(model.ErrShape, "%d decision variables in %d columns", numVars, c-1)
	}
	for _, b := range basis {
		if b < 0 || b >= c-1 {
			return nil, errors.Wrapf(model.ErrShape, "basic column %d out of range", b)
		}
	}
	return &Tableau{
		data:    data,
		basis:   append([]int(nil), basis...),
		numVars: numVars,
		sense:   sense,
		eps:     eps,
	}, nil
}

func (t *Tableau) Dims() (rows, cols int) { return t.data.Dims() }

func (t *Tableau) NumVars() int { return t.numVars }

func (t *Tableau) NumConstraints() int { return len(t.basis) }

func (t *Tableau) Sense() model.Direction { return t.sense }

func (t *Tableau) Epsilon() float64 { return t.eps }

// RHSCol is the index of the right-hand side column.
func (t *Tableau) RHSCol() int {
	_, c := t.data.Dims()
	return c - 1
}

func (t *Tableau) At(i, j int) float64 { return t.data.At(i, j) }

func (t *Tableau) Set(i, j int, v float64) { t.data.Set(i, j, v) }

func (t *Tableau) RHS(row int) float64 { return t.data.At(row, t.RHSCol()) }

// Row returns a copy of row i including the RHS.
func (t *Tableau) Row(i int) []float64 {
	return append([]float64(nil), t.data.RawRowView(i)...)
}

// Objective is the working objective value (always maximized).
func (t *Tableau) Objective() float64 { return t.data.At(0, t.RHSCol()) }

// Value is the objective value in the problem's own sense.
func (t *Tableau) Value() float64 {
	if t.sense == model.Minimize {
		return -t.Objective()
	}
	return t.Objective()
}

func (t *Tableau) Basis() []int { return append([]int(nil), t.basis...) }

// BasicIn returns the column basic in tableau row (1-based constraint row).
func (t *Tableau) BasicIn(row int) int { return t.basis[row-1] }

// RowOf returns the tableau row where col is basic, or -1.
func (t *Tableau) RowOf(col int) int {
	for i, b := range t.basis {
		if b == col {
			return i + 1
		}
	}
	return -1
}

func (t *Tableau) Clone() *Tableau {
	return &Tableau{
		data:    mat.DenseCopyOf(t.data),
		basis:   append([]int(nil), t.basis...),
		numVars: t.numVars,
		sense:   t.sense,
		eps:     t.eps,
	}
}

// Dense returns a copy of the underlying matrix.
func (t *Tableau) Dense() *mat.Dense { return mat.DenseCopyOf(t.data) }

// Pivot makes col basic in row. The pivot row is divided by the pivot
// element and every other row, the objective row included, has the pivot
// column eliminated.
func (t *Tableau) Pivot(row, col int) error {
	r, c := t.data.Dims()
	if row < 1 || row >= r || col < 0 || col >= c-1 {
		return errors.Errorf("pivot (%d,%d) outside %dx%d tableau", row, col, r, c)
	}
	piv := t.data.At(row, col)
	if math.Abs(piv) <= t.eps {
		return errors.Wrapf(ErrDegeneratePivot, "element %g at (%d,%d)", piv, row, col)
	}

	prow := t.data.RawRowView(row)
	floats.Scale(1/piv, prow)
	for i := 0; i < r; i++ {
		if i == row {
			continue
		}
		f := t.data.At(i, col)
		if f == 0 {
			continue
		}
		floats.AddScaled(t.data.RawRowView(i), -f, prow)
	}
	t.basis[row-1] = col
	t.Normalize()
	return nil
}

// Normalize flushes numeric noise: near-zero entries become 0 (no -0),
// entries within eps of an integer snap to it and every basic column is
// reset to its exact unit vector.
func (t *Tableau) Normalize() {
	r, c := t.data.Dims()
	for i := 0; i < r; i++ {
		row := t.data.RawRowView(i)
		for j := 0; j < c; j++ {
			row[j] = clean(row[j], t.eps)
		}
	}
	for k, b := range t.basis {
		for i := 0; i < r; i++ {
			t.data.Set(i, b, 0)
		}
		t.data.Set(k+1, b, 1)
	}
}

func clean(v, eps float64) float64 {
	if math.Abs(v) <= eps {
		return 0
	}
	if n := math.Round(v); math.Abs(v-n) <= eps {
		return n
	}
	return v
}

// Optimal reports whether no objective row entry is negative.
func (t *Tableau) Optimal() bool {
	row := t.data.RawRowView(0)
	for j := 0; j < len(row)-1; j++ {
		if row[j] < -t.eps {
			return false
		}
	}
	return true
}

// Feasible reports whether every RHS is non-negative.
func (t *Tableau) Feasible() bool {
	for i := 1; i <= len(t.basis); i++ {
		if t.RHS(i) < -t.eps {
			return false
		}
	}
	return true
}

// Values returns the value of every non-RHS column at the current basis.
func (t *Tableau) Values() []float64 {
	x := make([]float64, t.RHSCol())
	for i, b := range t.basis {
		x[b] = t.RHS(i + 1)
	}
	return x
}

// Solution returns the decision variable values: the RHS of the row where
// the variable is basic, 0 otherwise.
func (t *Tableau) Solution() []float64 {
	return t.Values()[:t.numVars]
}

// AddScaledRow adds f times row src to row dst, RHS included.
func (t *Tableau) AddScaledRow(dst, src int, f float64) {
	floats.AddScaled(t.data.RawRowView(dst), f, t.data.RawRowView(src))
	t.Normalize()
}

// AddScaledColumn adds f times column src to column dst in every row,
// the objective row included.
func (t *Tableau) AddScaledColumn(dst, src int, f float64) {
	r, _ := t.data.Dims()
	for i := 0; i < r; i++ {
		row := t.data.RawRowView(i)
		row[dst] += f * row[src]
	}
	t.Normalize()
}

// AppendRow adds the row coefs x + s = rhs with a fresh slack s inserted
// just before the RHS column and made basic in the new row. coefs may be
// shorter than the current column count; missing entries are zero.
// The new tableau row index is returned.
func (t *Tableau) AppendRow(coefs []float64, rhs float64) (int, error) {
	r, c := t.data.Dims()
	if len(coefs) > c-1 {
		return 0, errors.Wrapf(model.ErrShape, "row has %d coefficients for %d columns", len(coefs), c-1)
	}

	grown := mat.NewDense(r+1, c+1, nil)
	for i := 0; i < r; i++ {
		src := t.data.RawRowView(i)
		dst := grown.RawRowView(i)
		copy(dst, src[:c-1])
		dst[c] = src[c-1]
	}
	last := grown.RawRowView(r)
	copy(last, coefs)
	last[c-1] = 1
	last[c] = rhs

	t.data = grown
	t.basis = append(t.basis, c-1)
	return r, nil
}

// AddConstraint appends coefs x <= rhs and rewrites the new row in terms of
// the current basis by eliminating every basic column from it, so the
// tableau stays canonical. The RHS of the new row may come out negative.
func (t *Tableau) AddConstraint(coefs []float64, rhs float64) (int, error) {
	row, err := t.AppendRow(coefs, rhs)
	if err != nil {
		return 0, err
	}
	nrow := t.data.RawRowView(row)
	for i := 1; i < row; i++ {
		b := t.basis[i-1]
		f := nrow[b]
		if math.Abs(f) <= t.eps {
			continue
		}
		floats.AddScaled(nrow, -f, t.data.RawRowView(i))
	}
	t.Normalize()
	return row, nil
}

// InsertColumn inserts col (one entry per tableau row) at index at, shifting
// the columns after it. Inserting at or before NumVars adds a decision
// variable.
func (t *Tableau) InsertColumn(at int, col []float64) error {
	r, c := t.data.Dims()
	if at < 0 || at > c-1 {
		return errors.Errorf("column %d outside tableau with %d columns", at, c)
	}
	if len(col) != r {
		return errors.Wrapf(model.ErrShape, "column has %d entries for %d rows", len(col), r)
	}

	grown := mat.NewDense(r, c+1, nil)
	for i := 0; i < r; i++ {
		src := t.data.RawRowView(i)
		dst := grown.RawRowView(i)
		copy(dst[:at], src[:at])
		dst[at] = col[i]
		copy(dst[at+1:], src[at:])
	}
	t.data = grown
	for k, b := range t.basis {
		if b >= at {
			t.basis[k] = b + 1
		}
	}
	if at <= t.numVars {
		t.numVars++
	}
	return nil
}

// RebuildBasis re-derives the basis record from the matrix: each row keeps
// its recorded column while that column is still a unit vector there,
// otherwise the lowest-index unit column with a 1 in that row is taken.
// Objective row entries left under a basic column are eliminated.
func (t *Tableau) RebuildBasis() error {
	taken := make(map[int]bool, len(t.basis))
	for k := range t.basis {
		row := k + 1
		col := t.basis[k]
		if !t.isUnit(col, row) || taken[col] {
			col = -1
			for j := 0; j < t.RHSCol(); j++ {
				if !taken[j] && t.isUnit(j, row) {
					col = j
					break
				}
			}
		}
		if col < 0 {
			return errors.Wrapf(ErrNoBasis, "row %d", row)
		}
		taken[col] = true
		t.basis[k] = col
		if f := t.data.At(0, col); f != 0 {
			floats.AddScaled(t.data.RawRowView(0), -f, t.data.RawRowView(row))
		}
	}
	t.Normalize()
	return nil
}

func (t *Tableau) isUnit(col, row int) bool {
	for i := 1; i <= len(t.basis); i++ {
		v := t.data.At(i, col)
		if i == row {
			if math.Abs(v-1) > t.eps {
				return false
			}
		} else if math.Abs(v) > t.eps {
			return false
		}
	}
	return true
}

// Frac is the fractional part of v in [0,1), with values within tol of an
// integer reported as 0.
func Frac(v, tol float64) float64 {
	f := v - math.Floor(v)
	if f <= tol || 1-f <= tol {
		return 0
	}
	return f
}

func IsInteger(v, tol float64) bool {
	return Frac(v, tol) == 0
}
