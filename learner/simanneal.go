package learner

import (
	"math"
	"math/rand"
	"time"

	"github.com/bnstruct/pebl/cpd"
	"github.com/bnstruct/pebl/dag"
	"github.com/bnstruct/pebl/data"
	"github.com/bnstruct/pebl/eval"
	"github.com/bnstruct/pebl/logging"
	"github.com/bnstruct/pebl/prior"
	"github.com/bnstruct/pebl/result"
)

// SimulatedAnnealingStats is the running statistics of a SimulatedAnnealing
// run.
type SimulatedAnnealingStats struct {
	Temp             float64
	IterationsAtTemp int
	Iterations       int
	BestScore        float64
	CurrentScore     float64
}

// SimulatedAnnealing is the Metropolis-acceptance learner of spec.md §4.7
// "Simulated annealing": same local-edit proposal as Greedy, accepted with
// probability min(1, exp((new-cur)/T)); temperature decays by DeltaTemp
// every MaxItersAtTemp iterations; the run halts once T < 1.
type SimulatedAnnealing struct {
	Dataset *data.Dataset
	Prior   *prior.Prior
	Seed    *dag.DAG
	RNG     cpd.Rand
	RNGSeed int64 // reconstructs RNG after Marshal/Unmarshal, see Greedy.RNGSeed

	StartTemp      float64
	DeltaTemp      float64
	MaxItersAtTemp int
	ResultSize     int

	Log *logging.Logger // optional; nil disables tracing

	Stats SimulatedAnnealingStats
}

// Run executes the annealing schedule to completion and returns the
// accumulated result.
func (sa *SimulatedAnnealing) Run() (*result.Result, error) {
	if sa.RNG == nil {
		sa.RNG = rand.New(rand.NewSource(sa.RNGSeed))
	}

	seed := sa.Seed
	if seed == nil {
		seed = dag.New(sa.Dataset.NumVariables())
	} else {
		seed = seed.Copy()
	}

	ev, err := eval.NewSmart(sa.Dataset, seed, sa.Prior)
	if err != nil {
		return nil, err
	}

	sa.Stats = SimulatedAnnealingStats{
		Temp:         sa.StartTemp,
		CurrentScore: ev.Score(),
		BestScore:    ev.Score(),
	}

	res := result.New(sa.Dataset.NumVariables(), sa.ResultSize)
	start := time.Now()
	res.StartRun(hostname(), start)

	for sa.Stats.Temp >= 1 {
		score, err := proposeAndScore(ev, sa.RNG)
		if err != nil {
			if err == ErrCannotAlterNetwork {
				if sa.Log != nil {
					sa.Log.Info().Int("iterations", sa.Stats.Iterations).Msg("simulated annealing stopped: exhausted proposal budget")
				}
				break
			}
			return nil, err
		}

		res.AddNetwork(ev.Network(), score)

		if sa.accept(score) {
			sa.Stats.CurrentScore = score
			if sa.Stats.CurrentScore > sa.Stats.BestScore {
				sa.Stats.BestScore = sa.Stats.CurrentScore
			}
		} else {
			ev.RestoreNetwork()
		}

		sa.Stats.Iterations++
		sa.Stats.IterationsAtTemp++
		if sa.Stats.IterationsAtTemp >= sa.MaxItersAtTemp {
			sa.Stats.Temp *= sa.DeltaTemp
			sa.Stats.IterationsAtTemp = 0
		}
	}

	res.StopRun(time.Now())
	return res, nil
}

// accept implements the Metropolis criterion: always accept an improvement,
// otherwise accept with probability exp((new-old)/T).
func (sa *SimulatedAnnealing) accept(newScore float64) bool {
	old := sa.Stats.CurrentScore
	if newScore >= old {
		return true
	}
	return sa.RNG.Float64() < math.Exp((newScore-old)/sa.Stats.Temp)
}
