package dag

import "errors"

// ErrCyclic is returned by code that proposes a structural edit which would
// make the graph cyclic. It is the dag package's half of spec.md §7's
// "Cyclic-network" error kind; eval.SmartEvaluator.AlterNetwork wraps this
// (or returns it directly) when its post-edit Acyclic check fails.
var ErrCyclic = errors.New("dag: edit would create a cycle")
