package instance

import (
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/golang/glog"
	"github.com/lukpank/go-glpk/glpk"
	"github.com/pkg/errors"
	"q.log/intsimplex/model"
)

// Reader reads a problem file: MPS when the name ends in .mps, the line
// format otherwise.
type Reader struct {
	filename string
}

func NewReader(filename string) *Reader {
	return &Reader{
		filename: filename,
	}
}

func (r *Reader) Read() (*model.Problem, error) {
	if strings.EqualFold(filepath.Ext(r.filename), ".mps") {
		return r.ReadMPS()
	}
	f, err := os.Open(r.filename)
	if err != nil {
		return nil, errors.Wrap(err, "open problem file")
	}
	defer f.Close()
	return ParseText(f)
}

// ReadMPS reads a fixed MPS file through GLPK. Row bounds become <=, >= or
// = constraints (a ranged row becomes two), column bounds other than
// x >= 0 become sign restrictions or extra rows, and GLPK's integer and
// binary column kinds become int and bin signs.
func (r *Reader) ReadMPS() (*model.Problem, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	lp := glpk.New()
	defer lp.Delete()
	if err := lp.ReadMPS(glpk.MPS_FILE, nil, r.filename); err != nil {
		return nil, errors.Wrapf(err, "read mps %s", r.filename)
	}

	numCols := lp.NumCols()
	p := &model.Problem{
		Direction: model.Minimize,
		Objective: make([]float64, numCols),
		Signs:     make([]model.Sign, numCols),
	}
	if lp.ObjDir() == glpk.MAX {
		p.Direction = model.Maximize
	}

	//populate obj function
	for c := range numCols {
		p.Objective[c] = lp.ObjCoef(c + 1)
	}

	//populate constraints
	for i := 1; i <= lp.NumRows(); i++ {
		rowVec := make([]float64, numCols)
		idxs, row := lp.MatRow(i)
		for k, v := range idxs {
			if v == 0 {
				continue
			}
			rowVec[v-1] = row[k]
		}

		lb, ub := lp.RowLB(i), lp.RowUB(i)
		switch {
		case lb == -math.MaxFloat64 && ub == math.MaxFloat64:
			continue
		case lb == ub:
			p.Constraints = append(p.Constraints, model.Constraint{Coefficients: rowVec, Relation: model.Equal, RHS: lb})
			continue
		}
		if ub != math.MaxFloat64 {
			p.Constraints = append(p.Constraints, model.Constraint{Coefficients: rowVec, Relation: model.LessEq, RHS: ub})
		}
		if lb != -math.MaxFloat64 {
			p.Constraints = append(p.Constraints, model.Constraint{Coefficients: append([]float64(nil), rowVec...), Relation: model.GreaterEq, RHS: lb})
		}
	}

	//column bounds
	for c := range numCols {
		lb, ub := lp.ColLB(c+1), lp.ColUB(c+1)
		kind := lp.ColKind(c + 1)

		if kind == glpk.BV || (kind == glpk.IV && lb == 0 && ub == 1) {
			p.Signs[c] = model.Binary
			continue
		}
		if kind == glpk.IV {
			p.Signs[c] = model.Integer
		}

		switch {
		case lb == -math.MaxFloat64 && ub == 0:
			if kind == glpk.IV {
				glog.Warningf("mps: integer column %d is bounded above by 0, treated as continuous", c+1)
			}
			p.Signs[c] = model.NonPositive
			continue
		case lb < 0:
			// integrality is lost on free columns
			if kind == glpk.IV {
				glog.Warningf("mps: integer column %d has a negative lower bound, treated as continuous", c+1)
			}
			p.Signs[c] = model.Free
		}
		if lb != 0 && lb != -math.MaxFloat64 {
			p.Constraints = append(p.Constraints, bound(numCols, c, model.GreaterEq, lb))
		}
		if ub != math.MaxFloat64 {
			p.Constraints = append(p.Constraints, bound(numCols, c, model.LessEq, ub))
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	glog.V(1).Infof("mps: %s with %d variables and %d constraints", r.filename, numCols, len(p.Constraints))
	return p, nil
}

func bound(n, col int, rel model.Relation, rhs float64) model.Constraint {
	coefs := make([]float64, n)
	coefs[col] = 1
	return model.Constraint{Coefficients: coefs, Relation: rel, RHS: rhs}
}
