// Command peblctl is the CLI driver of spec.md §6 "CLI surface": read a
// configuration file, build a dataset, construct the configured learner
// type, dispatch numtasks independent runs through a task controller, merge
// the results, and write the output artifact. Exit code 0 on success,
// non-zero on parse or learner error (spec.md §6/§7), grounded on
// original_source/src/pebl/pebl_script.py's runpebl.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/bnstruct/pebl/config"
	"github.com/bnstruct/pebl/dag"
	"github.com/bnstruct/pebl/data"
	"github.com/bnstruct/pebl/datafile"
	"github.com/bnstruct/pebl/learner"
	"github.com/bnstruct/pebl/logging"
	"github.com/bnstruct/pebl/prior"
	"github.com/bnstruct/pebl/result"
	"github.com/bnstruct/pebl/taskctl"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s configfile\n", os.Args[0])
		os.Exit(1)
	}

	log := logging.New(logging.Options{Debug: os.Getenv("PEBL_DEBUG") != ""})

	if err := run(os.Args[1], log); err != nil {
		log.Error().Err(err).Msg("peblctl: run failed")
		os.Exit(1)
	}
}

func run(configPath string, log *logging.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ds, err := buildDataset(cfg)
	if err != nil {
		return err
	}

	tasks, err := buildTasks(cfg, ds, log)
	if err != nil {
		return err
	}

	controller := buildController(cfg)
	results, err := controller.Run(tasks)
	if err != nil {
		return err
	}

	merged := result.New(ds.NumVariables(), cfg.Result.Size)
	for _, res := range results {
		merged.Merge(res)
	}

	return writeResult(cfg, merged)
}

// buildDataset constructs a dataset from data.text (if set, takes
// precedence) or data.filename, applying data.discretize to every
// continuous column when requested (spec.md §6 "data.discretize").
func buildDataset(cfg *config.Config) (*data.Dataset, error) {
	var (
		ds  *data.Dataset
		err error
	)
	switch {
	case cfg.Data.Text != "":
		ds, err = datafile.Parse(strings.NewReader(cfg.Data.Text))
	case cfg.Data.Filename != "":
		f, openErr := os.Open(cfg.Data.Filename)
		if openErr != nil {
			return nil, fmt.Errorf("%w: %v", datafile.ErrParse, openErr)
		}
		defer f.Close()
		ds, err = datafile.Parse(f)
	default:
		return nil, fmt.Errorf("peblctl: neither data.text nor data.filename set")
	}
	if err != nil {
		return nil, err
	}

	if cfg.Data.Discretize > 0 {
		var continuous []int
		for i, v := range ds.Variables {
			if v.Kind == data.Continuous {
				continuous = append(continuous, i)
			}
		}
		if err := ds.Discretize(continuous, cfg.Data.Discretize); err != nil {
			return nil, err
		}
	}

	return ds, nil
}

// buildTasks constructs cfg.Learner.NumTasks independent instances of the
// configured learner type (original_source/src/pebl/pebl_script.py's
// "tasks = [learner.fromconfig() for i in xrange(numtasks)]"), each
// satisfying taskctl.Task.
func buildTasks(cfg *config.Config, ds *data.Dataset, log *logging.Logger) ([]taskctl.Task, error) {
	numTasks := cfg.Learner.NumTasks
	if numTasks <= 0 {
		numTasks = 1
	}

	tasks := make([]taskctl.Task, numTasks)
	for i := 0; i < numTasks; i++ {
		t, err := buildTask(cfg, ds, log, i)
		if err != nil {
			return nil, err
		}
		tasks[i] = t
	}
	return tasks, nil
}

func buildTask(cfg *config.Config, ds *data.Dataset, log *logging.Logger, taskIndex int) (taskctl.Task, error) {
	p := prior.Null()

	switch cfg.Learner.Type {
	case "greedy":
		seed := cfg.Greedy.Seed
		if seed != 0 {
			seed += int64(taskIndex)
		}
		return &learner.Greedy{
			Dataset:       ds,
			Prior:         p,
			RNGSeed:       seed,
			MaxIterations: cfg.Greedy.MaxIterations,
			MaxTime:       cfg.Greedy.MaxTime,
			MaxUnimproved: cfg.Greedy.MaxUnimprovedIters,
			ResultSize:    cfg.Result.Size,
			Log:           log.SpawnForComponent("greedy"),
		}, nil
	case "simanneal":
		seed := cfg.SimAnn.Seed
		if seed != 0 {
			seed += int64(taskIndex)
		}
		return &learner.SimulatedAnnealing{
			Dataset:        ds,
			Prior:          p,
			RNGSeed:        seed,
			StartTemp:      cfg.SimAnn.StartTemp,
			DeltaTemp:      cfg.SimAnn.DeltaTemp,
			MaxItersAtTemp: cfg.SimAnn.MaxItersAtTemp,
			ResultSize:     cfg.Result.Size,
			Log:            log.SpawnForComponent("simanneal"),
		}, nil
	case "exhaustive":
		networks, err := parseNetworkList(ds.NumVariables(), cfg.Exhaustive.Networks)
		if err != nil {
			return nil, err
		}
		return &learner.Exhaustive{
			Dataset:              ds,
			Prior:                p,
			Networks:             networks,
			MissingDataEvaluator: cfg.Eval.MissingDataEvaluator,
			Burnin:               cfg.Gibbs.Burnin,
			RNGSeed:              int64(taskIndex),
			ResultSize:           cfg.Result.Size,
		}, nil
	default:
		return nil, fmt.Errorf("peblctl: learner type %q is not a built-in (custom learners are loaded by the caller, not peblctl)", cfg.Learner.Type)
	}
}

// parseNetworkList parses exhaustive.networks: one "src,dst;..." network
// string (spec.md §6 "Network string format") per entry, entries separated
// by "|" so the whole list stays a single-line config value (a sectioned
// key/value file has no standard multi-line-value syntax to lean on).
func parseNetworkList(numVariables int, raw string) ([]*dag.DAG, error) {
	var nets []*dag.DAG
	for _, entry := range strings.Split(raw, "|") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		d, err := dag.FromEdgeString(numVariables, entry)
		if err != nil {
			return nil, fmt.Errorf("peblctl: exhaustive.networks: %w", err)
		}
		nets = append(nets, d)
	}
	return nets, nil
}

// buildController picks Serial for a single task and Pool otherwise,
// sized to the task count (spec.md §5 "independent learner runs... are
// dispatched to separate workers").
func buildController(cfg *config.Config) taskctl.Controller {
	if cfg.Learner.NumTasks <= 1 {
		return taskctl.Serial{}
	}
	return taskctl.Pool{Size: cfg.Learner.NumTasks}
}

func writeResult(cfg *config.Config, res *result.Result) error {
	if cfg.Result.Filename == "" {
		return res.Encode(os.Stdout)
	}

	f, err := os.Create(cfg.Result.Filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return res.Encode(f)
}
