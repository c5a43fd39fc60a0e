package learner

import (
	"math/rand"
	"os"
	"time"

	"github.com/bnstruct/pebl/cpd"
	"github.com/bnstruct/pebl/dag"
	"github.com/bnstruct/pebl/data"
	"github.com/bnstruct/pebl/eval"
	"github.com/bnstruct/pebl/logging"
	"github.com/bnstruct/pebl/prior"
	"github.com/bnstruct/pebl/result"
)

// GreedyStats is the running statistics of a Greedy run (spec.md §4.7).
type GreedyStats struct {
	Restarts             int
	Iterations           int
	UnimprovedIterations int
	BestScore            float64
	StartTime            time.Time
}

// Runtime reports elapsed wall-clock time since the run started.
func (s GreedyStats) Runtime() time.Duration { return time.Since(s.StartTime) }

// Greedy is the hill-climbing learner of spec.md §4.7 "Greedy": propose a
// local edit, adopt it only on strict improvement (equal scores do not
// adopt — spec.md §9 Open Question), otherwise undo and count toward a
// restart threshold.
//
// MaxIterations and MaxTime bound the run (0 means unbounded for that
// dimension, but at least one must be set or Run never halts).
// MaxUnimproved is the restart threshold: a restart triggers once
// UnimprovedIterations exceeds it (strict >, per spec.md §9).
//
// Greedy always drives a SmartEvaluator: its proposal loop depends on
// AlterNetwork's transactional cycle check and RestoreNetwork's undo,
// neither of which the missing-data evaluators implement (they only share
// ScoreNetwork, per spec.md §4.6). Datasets with missing cells should be
// learned with a missing-data evaluator directly, or via Exhaustive against
// a supplied candidate list.
type Greedy struct {
	Dataset *data.Dataset
	Prior   *prior.Prior
	Seed    *dag.DAG // nil means start from an edgeless network
	RNG     cpd.Rand

	// RNGSeed reconstructs RNG after a Marshal/Unmarshal round trip (spec.md
	// §5 "a learner is serializable... so it can be shipped to a remote
	// worker"): cpd.Rand is an interface and does not survive gob encoding,
	// so taskctl.Remote ships RNGSeed instead and Run seeds a fresh
	// *math/rand.Rand from it when RNG is nil.
	RNGSeed int64

	MaxIterations int
	MaxTime       time.Duration
	MaxUnimproved int
	ResultSize    int // 0 = retain all

	Log *logging.Logger // optional; nil disables tracing

	Stats GreedyStats
}

// Run executes the greedy search to a stopping criterion and returns the
// accumulated result.
func (g *Greedy) Run() (*result.Result, error) {
	if g.RNG == nil {
		g.RNG = rand.New(rand.NewSource(g.RNGSeed))
	}

	seed := g.Seed
	if seed == nil {
		seed = dag.New(g.Dataset.NumVariables())
	} else {
		seed = seed.Copy()
	}

	ev, err := eval.NewSmart(g.Dataset, seed, g.Prior)
	if err != nil {
		return nil, err
	}

	g.Stats = GreedyStats{StartTime: time.Now(), BestScore: ev.Score()}
	res := result.New(g.Dataset.NumVariables(), g.ResultSize)
	res.StartRun(hostname(), g.Stats.StartTime)

	for !g.stoppingCriteria() {
		g.Stats.Iterations++

		score, err := proposeAndScore(ev, g.RNG)
		if err != nil {
			if err == ErrCannotAlterNetwork {
				if g.Log != nil {
					g.Log.Info().Int("iterations", g.Stats.Iterations).Msg("greedy stopped: exhausted proposal budget")
				}
				break
			}
			return nil, err
		}

		res.AddNetwork(ev.Network(), score)

		if score > g.Stats.BestScore {
			g.Stats.BestScore = score
			g.Stats.UnimprovedIterations = 0
		} else {
			ev.RestoreNetwork()
			g.Stats.UnimprovedIterations++
		}

		if g.Stats.UnimprovedIterations > g.MaxUnimproved {
			if _, err := ev.RandomizeNetwork(g.RNG); err != nil {
				return nil, err
			}
			g.Stats.Restarts++
			g.Stats.UnimprovedIterations = 0
		}
	}

	res.StopRun(time.Now())
	return res, nil
}

func (g *Greedy) stoppingCriteria() bool {
	if g.MaxIterations > 0 && g.Stats.Iterations > g.MaxIterations {
		return true
	}
	if g.MaxTime > 0 && g.Stats.Runtime() > g.MaxTime {
		return true
	}
	return false
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
