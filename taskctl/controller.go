// Package taskctl implements spec.md §5's dispatch layer: a Controller runs
// a batch of learner.Portable tasks and collects their results, in-process,
// across a bounded worker pool, or over HTTP to a remote runner.
package taskctl

import "github.com/bnstruct/pebl/result"

// Task is the unit of work a Controller dispatches. learner.Greedy,
// learner.SimulatedAnnealing and learner.Exhaustive all satisfy it.
type Task interface {
	Run() (*result.Result, error)
}

// Controller runs a batch of tasks and returns one Result per task, in the
// same order tasks were given, or the first error encountered.
type Controller interface {
	Run(tasks []Task) ([]*result.Result, error)
}
