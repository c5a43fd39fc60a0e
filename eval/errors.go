package eval

import "errors"

// ErrHasMissingData is returned by NewSmart when the dataset has any missing
// cell; callers must use a missing-data evaluator instead (spec.md §4.5
// "Complete-data fast path").
var ErrHasMissingData = errors.New("eval: cannot use the complete-data evaluator with missing data")

// ErrCannotRandomize is returned by RandomizeNetwork when no acyclic
// candidate was found within the bounded number of density-halving attempts
// (spec.md §4.5 "randomize_network... fails after a bounded number of
// attempts").
var ErrCannotRandomize = errors.New("eval: exhausted randomize attempts without finding an acyclic network")
