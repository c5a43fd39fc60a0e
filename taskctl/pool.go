package taskctl

import (
	"fmt"
	"sync"

	"github.com/bnstruct/pebl/result"
)

// Pool runs tasks across a fixed number of worker goroutines (spec.md §5
// "numtasks > 1"), grounded on kegliz-qplay's RunParallelChan: a buffered
// jobs channel fanned out to Size workers, a mutex-guarded results slice,
// and a buffered error channel collecting the first failure per worker
// rather than one shared error variable written by many goroutines.
type Pool struct {
	Size int // worker goroutines; <= 0 means one worker per task
}

type indexedTask struct {
	index int
	task  Task
}

// Run dispatches tasks across Size workers and returns results in the same
// order tasks were given. If any task fails, Run returns the first error
// observed across all workers (not necessarily the first task by index).
func (p Pool) Run(tasks []Task) ([]*result.Result, error) {
	if len(tasks) == 0 {
		return nil, nil
	}

	workers := p.Size
	if workers <= 0 || workers > len(tasks) {
		workers = len(tasks)
	}

	jobs := make(chan indexedTask, len(tasks))
	for i, t := range tasks {
		jobs <- indexedTask{index: i, task: t}
	}
	close(jobs)

	results := make([]*result.Result, len(tasks))
	var mu sync.Mutex
	errs := make(chan error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for job := range jobs {
				res, err := job.task.Run()
				if err != nil {
					select {
					case errs <- fmt.Errorf("taskctl: worker %d task %d: %w", id, job.index, err):
					default:
					}
					continue
				}
				mu.Lock()
				results[job.index] = res
				mu.Unlock()
			}
		}(w)
	}

	wg.Wait()
	close(errs)

	if err, ok := <-errs; ok {
		return nil, err
	}
	return results, nil
}
