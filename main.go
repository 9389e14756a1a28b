package main

import (
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/golang/glog"
	"q.log/intsimplex/branch"
	"q.log/intsimplex/cut"
	"q.log/intsimplex/instance"
	"q.log/intsimplex/model"
	"q.log/intsimplex/sensitivity"
	"q.log/intsimplex/simplex"
	"q.log/intsimplex/tableau"
)

func main() {
	method := flag.String("method", "primal", "primal, revised, bnb, cut or sensitivity")
	prune := flag.Bool("prune", true, "prune branch and bound nodes that cannot beat the incumbent")
	showTrace := flag.Bool("trace", true, "print every tableau")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] problem-file\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	defer glog.Flush()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	p, err := instance.NewReader(flag.Arg(0)).Read()
	if err != nil {
		glog.Exitf("%v", err)
	}
	m, err := model.Standardize(p)
	if err != nil {
		glog.Exitf("%v", err)
	}
	fmt.Print(p, "\n\n", m, "\n")

	cfg := tableau.DefaultConfig()
	printTrace := func(tr tableau.Trace) {
		if *showTrace {
			fmt.Print(tr)
		}
	}

	if *method == "revised" {
		res, err := simplex.Revised(m, cfg)
		if res != nil {
			for _, s := range res.Steps {
				fmt.Println(s)
			}
		}
		if err != nil {
			glog.Exitf("revised simplex: %v", err)
		}
		t, err := res.Tableau()
		if err != nil {
			glog.Exitf("%v", err)
		}
		printTrace(tableau.Trace{t.Snapshot("Final tableau")})
		report(m, res.X, res.Z)
		return
	}

	lp, err := simplex.SolveLP(m, cfg)
	if lp != nil {
		printTrace(lp.Trace)
	}
	if err != nil {
		glog.Exitf("lp: %s: %v", simplex.StatusOf(err), err)
	}

	switch *method {
	case "primal":
		report(m, lp.X, lp.Z)

	case "bnb":
		opts := branch.Options{Pruning: *prune}
		if mask := m.Integer(); slices.Contains(mask, true) {
			opts.Integer = mask
		}
		res, err := branch.Solve(lp.Tableau, opts, cfg)
		if res != nil {
			printTrace(res.Trace)
			for _, n := range res.Nodes {
				fmt.Println(n)
			}
		}
		if err != nil {
			glog.Exitf("branch and bound: %v", err)
		}
		if !res.Found {
			fmt.Println("no integer solution found")
			return
		}
		fmt.Printf("best node %s, %d branches\n", res.Path, res.Branches)
		report(m, res.X, res.Z)

	case "cut":
		var opts cut.Options
		if mask := m.Integer(); slices.Contains(mask, true) {
			opts.Integer = mask
		}
		res, err := cut.Solve(lp.Tableau, opts, cfg)
		if res != nil {
			printTrace(res.Trace)
		}
		if err != nil {
			glog.Exitf("cutting planes: %v", err)
		}
		fmt.Printf("%d cuts\n", res.Cuts)
		report(m, res.X, res.Z)

	case "sensitivity":
		report(m, lp.X, lp.Z)
		if err := analyze(lp.Tableau, cfg); err != nil {
			glog.Exitf("sensitivity: %v", err)
		}

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func report(m *model.Model, x []float64, z float64) {
	fmt.Printf("z = %g\n", z)
	for j, v := range m.Recover(x) {
		fmt.Printf("x%d = %g\n", j+1, v)
	}
}

func analyze(t *tableau.Tableau, cfg tableau.Config) error {
	a, err := sensitivity.New(t, cfg)
	if err != nil {
		return err
	}

	fmt.Println("shadow prices:", a.ShadowPrices())
	for j := range t.NumVars() {
		iv, err := a.CostRange(j)
		if err != nil {
			return err
		}
		fmt.Printf("cost of %s: change in [%g, %g]\n", tableau.Label(j, t.NumVars()), iv.Lo, iv.Hi)
	}
	for k := range a.NumConstraints() {
		iv, err := a.RHSRange(k)
		if err != nil {
			return err
		}
		fmt.Printf("rhs of row %d: change in [%g, %g]\n", k+1, iv.Lo, iv.Hi)
	}

	d, err := a.Duality()
	if err != nil {
		return err
	}
	fmt.Print(d)
	return nil
}
