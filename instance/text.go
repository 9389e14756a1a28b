package instance

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"q.log/intsimplex/model"
)

// ParseText reads the line format:
//
//	max +3 +5
//	+1 +0 <= 4
//	+0 +2 <= 12
//	+3 +2 <= 18
//	+ +
//
// The first line holds the direction and the objective coefficients, the
// last line one sign restriction per variable and every line in between a
// constraint: coefficients, relation, RHS. Blank lines are skipped.
func ParseText(r io.Reader) (*model.Problem, error) {
	var lines [][]string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if f := strings.Fields(sc.Text()); len(f) > 0 {
			lines = append(lines, f)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read problem")
	}
	if len(lines) < 3 {
		return nil, errors.Wrapf(model.ErrShape, "%d lines, want objective, constraints and signs", len(lines))
	}

	p := &model.Problem{}
	var err error
	if p.Direction, err = model.ParseDirection(lines[0][0]); err != nil {
		return nil, errors.Wrap(err, "line 1")
	}
	if p.Objective, err = parseFloats(lines[0][1:]); err != nil {
		return nil, errors.Wrap(err, "line 1")
	}
	n := len(p.Objective)

	for i, f := range lines[1 : len(lines)-1] {
		if len(f) != n+2 {
			return nil, errors.Wrapf(model.ErrShape, "constraint %d has %d fields, want %d", i+1, len(f), n+2)
		}
		var c model.Constraint
		if c.Coefficients, err = parseFloats(f[:n]); err != nil {
			return nil, errors.Wrapf(err, "constraint %d", i+1)
		}
		if c.Relation, err = model.ParseRelation(f[n]); err != nil {
			return nil, errors.Wrapf(err, "constraint %d", i+1)
		}
		if c.RHS, err = strconv.ParseFloat(f[n+1], 64); err != nil {
			return nil, errors.Wrapf(err, "constraint %d rhs", i+1)
		}
		p.Constraints = append(p.Constraints, c)
	}

	for _, tok := range lines[len(lines)-1] {
		s, err := model.ParseSign(tok)
		if err != nil {
			return nil, errors.Wrap(err, "sign restrictions")
		}
		p.Signs = append(p.Signs, s)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.Wrapf(model.ErrShape, "coefficient %q", f)
		}
		out[i] = v
	}
	return out, nil
}
