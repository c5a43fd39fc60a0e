package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is spec.md §7's "Invalid-config": an unknown parameter, a
// failed validator, or a failed datatype coercion. Always fatal to the
// driver.
var ErrInvalid = errors.New("config: invalid parameter")

// validator is a pure predicate over a coerced parameter value, mirroring
// the source's between_min_and_max/one_of/at_least/at_most combinators
// (original_source/src/pebl/config.py) but returning a bool rather than
// raising; Validate checks them in order and reports the first failure.
type validator func() bool

func between(min, max, v float64) validator { return func() bool { return v >= min && v <= max } }

func oneOf(v string, values ...string) validator {
	return func() bool {
		for _, candidate := range values {
			if v == candidate {
				return true
			}
		}
		return false
	}
}

func atLeast(min, v int) validator { return func() bool { return v >= min } }

// Validate runs every parameter's validator and returns the first failure
// wrapped in ErrInvalid, or nil if the whole config is valid.
func Validate(c *Config) error {
	checks := []struct {
		name string
		v    validator
	}{
		{"learner.type", func() bool {
			return oneOf(c.Learner.Type, "greedy", "simanneal", "exhaustive", "pc")() || isCustomLearnerPath(c.Learner.Type)
		}},
		{"learner.numtasks", atLeast(0, c.Learner.NumTasks)},
		{"data.discretize", atLeast(0, c.Data.Discretize)},
		{"greedy.max_iterations", atLeast(0, c.Greedy.MaxIterations)},
		{"greedy.max_unimproved_iterations", atLeast(0, c.Greedy.MaxUnimprovedIters)},
		{"simanneal.max_iters_at_temp", atLeast(0, c.SimAnn.MaxItersAtTemp)},
		{"gibbs.burnin", atLeast(1, c.Gibbs.Burnin)},
		{"evaluator.missingdata_evaluator", oneOf(c.Eval.MissingDataEvaluator, "gibbs", "exact", "maxentropy_gibbs")},
		{"result.size", atLeast(0, c.Result.Size)},
	}

	for _, check := range checks {
		if !check.v() {
			return fmt.Errorf("%w: %s = invalid value", ErrInvalid, check.name)
		}
	}

	if c.Data.Filename == "" && c.Data.Text == "" {
		return fmt.Errorf("%w: one of data.filename or data.text must be set", ErrInvalid)
	}
	if c.SimAnn.StartTemp != 0 && !between(0, 1e9, c.SimAnn.StartTemp)() {
		return fmt.Errorf("%w: simanneal.start_temp must be positive", ErrInvalid)
	}
	if c.Learner.Type == "exhaustive" && c.Exhaustive.Networks == "" {
		return fmt.Errorf("%w: exhaustive.networks must be set when learner.type = exhaustive", ErrInvalid)
	}

	return nil
}

// isCustomLearnerPath recognizes the "<path>:<symbol>" custom-learner form
// of spec.md §6 "learner.type".
func isCustomLearnerPath(learnerType string) bool {
	for i, r := range learnerType {
		if r == ':' && i > 0 && i < len(learnerType)-1 {
			return true
		}
	}
	return false
}
