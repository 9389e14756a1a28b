package tableau

// Config is the single set of numeric knobs shared by every engine.
type Config struct {
	// Epsilon is the pivot tolerance: entries with |v| <= Epsilon are zero.
	Epsilon float64

	// IntTolerance is how far a value may sit from an integer and still
	// count as integral.
	IntTolerance float64

	// MaxIterations bounds the pivots of a single simplex run.
	MaxIterations int

	// MaxBranches bounds the nodes popped by branch and bound.
	MaxBranches int

	// MaxCuts bounds the Gomory cuts added by the cutting plane engine.
	MaxCuts int

	// BigM is the penalty on artificial columns in the revised engine.
	BigM float64
}

func DefaultConfig() Config {
	return Config{
		Epsilon:       1e-9,
		IntTolerance:  1e-6,
		MaxIterations: 10000,
		MaxBranches:   1000,
		MaxCuts:       50,
		BigM:          1e6,
	}
}
