// Package result implements the output artifact of spec.md §6: a
// deduplicated, size-capped, ascending-by-score list of scored networks plus
// per-run statistics, serialized with encoding/gob.
package result

import (
	"bytes"
	"encoding/gob"
	"io"
	"sort"
	"time"

	"github.com/bnstruct/pebl/dag"
	"github.com/google/uuid"
)

// Entry is one scored network in the posterior. Edges is stored rather than
// a *dag.DAG to make edge-set equality (Result.Merge's dedup key) a plain
// slice comparison instead of a DAG-aware one; dag.DAG has its own
// GobEncode/GobDecode (see dag/gob.go) so either shape would serialize fine.
type Entry struct {
	Edges []dag.Edge
	Score float64
}

// Stats is the per-run bookkeeping of spec.md §6 "per-run statistics".
type Stats struct {
	Host  string
	Start time.Time
	End   time.Time
}

// Result is the output artifact: a reference to the dataset's variable
// count (the dataset itself travels alongside this artifact, not inside it,
// per the driver's responsibility), the deduplicated top-scoring networks,
// and the statistics of every run merged into it.
type Result struct {
	ID           string
	NumVariables int
	MaxSize      int // 0 means unbounded
	Entries      []Entry
	Runs         []Stats

	currentRun *Stats
}

// New creates an empty Result for a dataset with numVariables columns,
// retaining at most maxSize networks (0 = retain all). ID is a fresh uuid,
// the artifact identifier report.Server and MemoryStore look results up by.
func New(numVariables, maxSize int) *Result {
	return &Result{ID: uuid.NewString(), NumVariables: numVariables, MaxSize: maxSize}
}

// StartRun begins a new run's statistics; if a run was left open (e.g. a
// panic skipped StopRun), it is closed first.
func (r *Result) StartRun(host string, start time.Time) {
	if r.currentRun != nil {
		r.StopRun(start)
	}
	r.Runs = append(r.Runs, Stats{Host: host, Start: start})
	r.currentRun = &r.Runs[len(r.Runs)-1]
}

// StopRun closes the currently open run.
func (r *Result) StopRun(end time.Time) {
	if r.currentRun == nil {
		return
	}
	r.currentRun.End = end
	r.currentRun = nil
}

// AddNetwork records a scored network, deduplicating by edge set (the last
// score recorded for a given edge set wins) and keeping the list sorted
// ascending by score. If MaxSize > 0 and the list would exceed it, the
// lowest-scoring entry is dropped.
func (r *Result) AddNetwork(net *dag.DAG, score float64) {
	edges := net.Edges()

	for i, e := range r.Entries {
		if edgesEqual(e.Edges, edges) {
			r.Entries[i].Score = score
			r.resort()
			return
		}
	}

	r.Entries = append(r.Entries, Entry{Edges: append([]dag.Edge(nil), edges...), Score: score})
	r.resort()

	if r.MaxSize > 0 && len(r.Entries) > r.MaxSize {
		r.Entries = r.Entries[len(r.Entries)-r.MaxSize:]
	}
}

func (r *Result) resort() {
	sort.Slice(r.Entries, func(i, j int) bool { return r.Entries[i].Score < r.Entries[j].Score })
}

func edgesEqual(a, b []dag.Edge) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Best returns the highest-scoring entry, if any.
func (r *Result) Best() (Entry, bool) {
	if len(r.Entries) == 0 {
		return Entry{}, false
	}
	return r.Entries[len(r.Entries)-1], true
}

// Merge folds another Result's entries and runs into r, deduplicating by
// edge set exactly as AddNetwork does, then re-sorting and re-capping.
func (r *Result) Merge(other *Result) {
	for _, e := range other.Entries {
		merged := false
		for i, existing := range r.Entries {
			if edgesEqual(existing.Edges, e.Edges) {
				r.Entries[i].Score = e.Score
				merged = true
				break
			}
		}
		if !merged {
			r.Entries = append(r.Entries, e)
		}
	}
	r.resort()
	if r.MaxSize > 0 && len(r.Entries) > r.MaxSize {
		r.Entries = r.Entries[len(r.Entries)-r.MaxSize:]
	}
	r.Runs = append(r.Runs, other.Runs...)
}

// Encode gob-serializes the result.
func (r *Result) Encode(w io.Writer) error {
	return gob.NewEncoder(w).Encode(r)
}

// Decode gob-deserializes a result.
func Decode(rd io.Reader) (*Result, error) {
	var r Result
	if err := gob.NewDecoder(rd).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// EncodeBytes is a convenience wrapper around Encode for callers (e.g. the
// taskctl remote worker contract) that need a byte slice rather than a
// writer.
func (r *Result) EncodeBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
