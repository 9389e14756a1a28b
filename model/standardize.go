package model

// Standardize converts p into a Model with non-negative structural columns
// and only <= rows. Sign restrictions are resolved into columns:
//
//	+     one column
//	int   one integer column
//	bin   one integer column and the row x <= 1
//	-     one column with negated coefficients (x = -x')
//	urs   two columns (x = x' - x'')
//
// >= rows are negated and = rows are split into a <= and a negated >= row.
func Standardize(p *Problem) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var cols []Column
	var binaries []int
	for j := 0; j < p.NumVars(); j++ {
		sign := NonNegative
		if p.Signs != nil {
			sign = p.Signs[j]
		}
		switch sign {
		case NonPositive:
			cols = append(cols, Column{Var: j, Scale: -1})
		case Free:
			cols = append(cols, Column{Var: j, Scale: 1}, Column{Var: j, Scale: -1})
		case Binary:
			binaries = append(binaries, len(cols))
			cols = append(cols, Column{Var: j, Scale: 1, Integer: true})
		case Integer:
			cols = append(cols, Column{Var: j, Scale: 1, Integer: true})
		default:
			cols = append(cols, Column{Var: j, Scale: 1})
		}
	}

	expand := func(coefs []float64) []float64 {
		row := make([]float64, len(cols))
		for k, c := range cols {
			row[k] = coefs[c.Var] * c.Scale
		}
		return row
	}

	m := NewModel(len(p.Constraints), len(cols))
	m.Direction = p.Direction
	m.Columns = cols
	m.UserVars = p.NumVars()

	if err := m.SetC(expand(p.Objective)); err != nil {
		return nil, err
	}

	aVec := make([]float64, 0, len(p.Constraints)*len(cols))
	bVec := make([]float64, 0, len(p.Constraints))
	for _, c := range p.Constraints {
		aVec = append(aVec, expand(c.Coefficients)...)
		bVec = append(bVec, c.RHS)
	}
	if err := m.SetA(aVec); err != nil {
		return nil, err
	}
	if err := m.SetB(bVec); err != nil {
		return nil, err
	}

	// equalities get their mirrored row appended after the user rows
	for i, c := range p.Constraints {
		switch c.Relation {
		case GreaterEq:
			if err := m.MultiplyConstraint(i, -1); err != nil {
				return nil, err
			}
		case Equal:
			if err := m.AddRow(expand(c.Coefficients), c.RHS); err != nil {
				return nil, err
			}
			if err := m.MultiplyConstraint(m.NumRows-1, -1); err != nil {
				return nil, err
			}
		}
	}

	for _, k := range binaries {
		row := make([]float64, len(cols))
		row[k] = 1
		if err := m.AddRow(row, 1); err != nil {
			return nil, err
		}
	}

	return m, nil
}
