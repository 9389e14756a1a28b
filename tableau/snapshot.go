package tableau

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/mat"
)

// Snapshot is an immutable copy of a tableau taken at one step of an
// algorithm.
type Snapshot struct {
	Title   string
	Data    *mat.Dense
	Basis   []int
	NumVars int
}

// Trace is the ordered list of snapshots an engine produced.
type Trace []Snapshot

func (t *Tableau) Snapshot(title string) Snapshot {
	return Snapshot{
		Title:   title,
		Data:    mat.DenseCopyOf(t.data),
		Basis:   append([]int(nil), t.basis...),
		NumVars: t.numVars,
	}
}

func (s Snapshot) String() string {
	return Format(s.Data, s.NumVars, s.Title, RowLabels(s.Basis, s.NumVars))
}

func (tr Trace) String() string {
	var sb strings.Builder
	for _, s := range tr {
		sb.WriteString(s.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Label names column col: x1..xn for decision variables, s1.. after them.
func Label(col, numVars int) string {
	if col < numVars {
		return "x" + strconv.Itoa(col+1)
	}
	return "s" + strconv.Itoa(col-numVars+1)
}

func RowLabels(basis []int, numVars int) []string {
	labels := make([]string, len(basis))
	for i, b := range basis {
		labels[i] = Label(b, numVars)
	}
	return labels
}

// Format renders a tableau-shaped matrix with a column header, a "z" row and
// one row per constraint labelled with rowLabels (or its index).
func Format(m mat.Matrix, numVars int, title string, rowLabels []string) string {
	r, c := m.Dims()
	var sb strings.Builder
	if title != "" {
		sb.WriteString(title)
		sb.WriteString("\n")
	}
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprint(w, "\t")
	for j := 0; j < c-1; j++ {
		fmt.Fprintf(w, "%s\t", Label(j, numVars))
	}
	fmt.Fprint(w, "rhs\t\n")

	for i := 0; i < r; i++ {
		switch {
		case i == 0:
			fmt.Fprint(w, "z\t")
		case i-1 < len(rowLabels):
			fmt.Fprintf(w, "%s\t", rowLabels[i-1])
		default:
			fmt.Fprintf(w, "%d\t", i)
		}
		for j := 0; j < c; j++ {
			fmt.Fprintf(w, "%s\t", num(m.At(i, j)))
		}
		fmt.Fprint(w, "\n")
	}
	w.Flush()
	return sb.String()
}

func num(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
