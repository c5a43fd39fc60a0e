package learner

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/bnstruct/pebl/cpd"
	"github.com/bnstruct/pebl/dag"
	"github.com/bnstruct/pebl/data"
	"github.com/bnstruct/pebl/eval"
	"github.com/bnstruct/pebl/prior"
	"github.com/bnstruct/pebl/result"
)

// Exhaustive scores every network in a user-supplied list (spec.md §4.7
// "Exhaustive / list"). It supports splitting the list across workers for
// parallel dispatch, and is the one learner that can score a dataset with
// missing cells directly (Greedy and SimulatedAnnealing cannot, since their
// proposal loop depends on SmartEvaluator's AlterNetwork/RestoreNetwork,
// which the missing-data evaluators don't implement).
type Exhaustive struct {
	Dataset  *data.Dataset
	Prior    *prior.Prior
	Networks []*dag.DAG

	// MissingDataEvaluator selects the scorer used when Dataset has missing
	// cells: "gibbs" | "exact" | "maxentropy_gibbs" (spec.md §6
	// "evaluator.missingdata_evaluator"). Ignored when Dataset has no
	// missing cells (eval.NewSmart is always used then). Empty defaults to
	// "gibbs".
	MissingDataEvaluator string
	Burnin               int // Gibbs/max-entropy-Gibbs burn-in multiplier, spec.md §6 "gibbs.burnin"
	RNG                  cpd.Rand
	RNGSeed              int64 // reconstructs RNG after Marshal/Unmarshal, see Greedy.RNGSeed

	ResultSize int
}

// Run scores every network in Networks and returns the accumulated result.
func (x *Exhaustive) Run() (*result.Result, error) {
	scorer, err := x.scorer()
	if err != nil {
		return nil, err
	}

	res := result.New(x.Dataset.NumVariables(), x.ResultSize)
	res.StartRun(hostname(), time.Now())

	for _, net := range x.Networks {
		score, err := scorer.ScoreNetwork(net)
		if err != nil {
			return nil, err
		}
		res.AddNetwork(net, score)
	}

	res.StopRun(time.Now())
	return res, nil
}

func (x *Exhaustive) scorer() (eval.Scorer, error) {
	seed := dag.New(x.Dataset.NumVariables())

	if !x.Dataset.HasMissing() {
		return eval.NewSmart(x.Dataset, seed, x.Prior)
	}

	if x.RNG == nil {
		x.RNG = rand.New(rand.NewSource(x.RNGSeed))
	}
	burnin := x.Burnin
	if burnin <= 0 {
		burnin = 10
	}

	switch x.MissingDataEvaluator {
	case "exact":
		return eval.NewExact(x.Dataset, seed, x.Prior), nil
	case "maxentropy_gibbs":
		return eval.NewMaxEntropyGibbs(x.Dataset, seed, x.Prior, x.RNG, burnin, nil).Scorer(), nil
	case "", "gibbs":
		return eval.NewGibbs(x.Dataset, seed, x.Prior, x.RNG, burnin, nil).Scorer(), nil
	default:
		return nil, fmt.Errorf("learner: unknown missing-data evaluator %q", x.MissingDataEvaluator)
	}
}

// Split divides the network list into count roughly-equal Exhaustive
// learners for parallel dispatch (spec.md §4.7 "Supports splitting the list
// across workers"), grounded on pebl's ListLearner.split.
func (x *Exhaustive) Split(count int) []*Exhaustive {
	if count <= 0 || count > len(x.Networks) {
		count = len(x.Networks)
	}
	if count == 0 {
		return nil
	}

	perTask := len(x.Networks) / count
	if perTask == 0 {
		perTask = 1
	}

	var parts []*Exhaustive
	for i := 0; i < len(x.Networks); i += perTask {
		end := i + perTask
		if end > len(x.Networks) || len(x.Networks)-end < perTask {
			end = len(x.Networks)
		}
		parts = append(parts, &Exhaustive{
			Dataset:              x.Dataset,
			Prior:                x.Prior,
			Networks:             x.Networks[i:end],
			MissingDataEvaluator: x.MissingDataEvaluator,
			Burnin:               x.Burnin,
			RNGSeed:              x.RNGSeed,
			ResultSize:           x.ResultSize,
		})
		if end == len(x.Networks) {
			break
		}
	}
	return parts
}
