package model

// Allocator produces an allocation satisfying every hard invariant, or
// reports why none could be found.
type Allocator interface {
	Build(input ModelInput) (Allocation, error)

	Verify(allocation Allocation, input ModelInput) bool
}

// Config carries the solve bounds and soft-objective weights. The engine is
// deterministic for a fixed config, which keeps test fixtures reproducible.
type Config struct {
	// MaxBacktracks bounds the search before BudgetExceededError is
	// reported instead of an exhaustive infeasibility proof.
	MaxBacktracks int

	// RefinementBudget bounds the number of local-search passes.
	RefinementBudget int

	ContigWeight     float64
	PreferenceWeight float64

	// Seed, when non-nil, is validated and refined instead of searching
	// from scratch.
	Seed Allocation
}

func DefaultConfig() Config {
	return Config{
		MaxBacktracks:    100000,
		RefinementBudget: 1000,
		ContigWeight:     1,
		PreferenceWeight: 1,
	}
}
