package learner

import (
	"bytes"
	"encoding/gob"
	"time"

	"github.com/bnstruct/pebl/dag"
	"github.com/bnstruct/pebl/data"
	"github.com/bnstruct/pebl/prior"
	"github.com/bnstruct/pebl/result"
)

// Portable is the serializable-learner contract of spec.md §5 ("a learner
// is serializable... so it can be shipped to a remote worker and the result
// shipped back"). Greedy, SimulatedAnnealing and Exhaustive all implement
// it. taskctl.Remote does not import this package: it needs only the Marshal
// half, through its own taskctl.Marshaler interface.
type Portable interface {
	Run() (*result.Result, error)
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

// priorSnapshot carries everything in a *prior.Prior except Predicates,
// which are Go closures and cannot survive gob encoding. A remote-shipped
// learner whose Prior uses predicates loses them on the far side; this is a
// known limitation of the wire contract, not silently papered over — see
// DESIGN.md.
type priorSnapshot struct {
	N            int
	EnergyMatrix [][]float64
	Required     []dag.Edge
	Prohibited   []dag.Edge
	Weight       float64
}

func snapshotPrior(p *prior.Prior) *priorSnapshot {
	if p == nil {
		return nil
	}
	return &priorSnapshot{N: p.N, EnergyMatrix: p.EnergyMatrix, Required: p.Required, Prohibited: p.Prohibited, Weight: p.Weight}
}

func (s *priorSnapshot) restore() *prior.Prior {
	if s == nil {
		return nil
	}
	return prior.New(s.N, s.EnergyMatrix, s.Required, s.Prohibited, nil, s.Weight)
}

type greedyWire struct {
	Dataset       *data.Dataset
	Prior         *priorSnapshot
	Seed          *dag.DAG
	RNGSeed       int64
	MaxIterations int
	MaxTime       time.Duration
	MaxUnimproved int
	ResultSize    int
}

// Marshal gob-encodes everything needed to reconstruct this Greedy on a
// remote worker, except RNG (see RNGSeed) and Prior.Predicates (see
// priorSnapshot).
func (g *Greedy) Marshal() ([]byte, error) {
	w := greedyWire{
		Dataset: g.Dataset, Prior: snapshotPrior(g.Prior), Seed: g.Seed, RNGSeed: g.RNGSeed,
		MaxIterations: g.MaxIterations, MaxTime: g.MaxTime, MaxUnimproved: g.MaxUnimproved, ResultSize: g.ResultSize,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal restores a Greedy from Marshal's output. RNG is left nil; Run
// reseeds it from RNGSeed.
func (g *Greedy) Unmarshal(b []byte) error {
	var w greedyWire
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&w); err != nil {
		return err
	}
	g.Dataset, g.Prior, g.Seed, g.RNGSeed = w.Dataset, w.Prior.restore(), w.Seed, w.RNGSeed
	g.MaxIterations, g.MaxTime, g.MaxUnimproved, g.ResultSize = w.MaxIterations, w.MaxTime, w.MaxUnimproved, w.ResultSize
	g.RNG = nil
	return nil
}

type simAnnWire struct {
	Dataset        *data.Dataset
	Prior          *priorSnapshot
	Seed           *dag.DAG
	RNGSeed        int64
	StartTemp      float64
	DeltaTemp      float64
	MaxItersAtTemp int
	ResultSize     int
}

// Marshal gob-encodes a SimulatedAnnealing the same way Greedy.Marshal does.
func (sa *SimulatedAnnealing) Marshal() ([]byte, error) {
	w := simAnnWire{
		Dataset: sa.Dataset, Prior: snapshotPrior(sa.Prior), Seed: sa.Seed, RNGSeed: sa.RNGSeed,
		StartTemp: sa.StartTemp, DeltaTemp: sa.DeltaTemp, MaxItersAtTemp: sa.MaxItersAtTemp, ResultSize: sa.ResultSize,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal restores a SimulatedAnnealing from Marshal's output.
func (sa *SimulatedAnnealing) Unmarshal(b []byte) error {
	var w simAnnWire
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&w); err != nil {
		return err
	}
	sa.Dataset, sa.Prior, sa.Seed, sa.RNGSeed = w.Dataset, w.Prior.restore(), w.Seed, w.RNGSeed
	sa.StartTemp, sa.DeltaTemp, sa.MaxItersAtTemp, sa.ResultSize = w.StartTemp, w.DeltaTemp, w.MaxItersAtTemp, w.ResultSize
	sa.RNG = nil
	return nil
}

type exhaustiveWire struct {
	Dataset              *data.Dataset
	Prior                *priorSnapshot
	Networks             []*dag.DAG
	MissingDataEvaluator string
	Burnin               int
	RNGSeed              int64
	ResultSize           int
}

// Marshal gob-encodes an Exhaustive learner's dataset, prior and network
// list.
func (x *Exhaustive) Marshal() ([]byte, error) {
	w := exhaustiveWire{
		Dataset: x.Dataset, Prior: snapshotPrior(x.Prior), Networks: x.Networks,
		MissingDataEvaluator: x.MissingDataEvaluator, Burnin: x.Burnin, RNGSeed: x.RNGSeed,
		ResultSize: x.ResultSize,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal restores an Exhaustive learner from Marshal's output.
func (x *Exhaustive) Unmarshal(b []byte) error {
	var w exhaustiveWire
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&w); err != nil {
		return err
	}
	x.Dataset, x.Prior, x.Networks, x.ResultSize = w.Dataset, w.Prior.restore(), w.Networks, w.ResultSize
	x.MissingDataEvaluator, x.Burnin, x.RNGSeed = w.MissingDataEvaluator, w.Burnin, w.RNGSeed
	x.RNG = nil
	return nil
}
