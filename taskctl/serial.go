package taskctl

import "github.com/bnstruct/pebl/result"

// Serial runs every task in the calling goroutine, one after another. It is
// the default controller (spec.md §5 "numtasks=1"), grounded directly on
// original_source/src/pebl/taskcontroller/serial.py's SerialController,
// whose entire run method is "return [t.run() for t in tasks]".
type Serial struct{}

// Run executes tasks in order, stopping at the first error.
func (Serial) Run(tasks []Task) ([]*result.Result, error) {
	results := make([]*result.Result, len(tasks))
	for i, t := range tasks {
		res, err := t.Run()
		if err != nil {
			return nil, err
		}
		results[i] = res
	}
	return results, nil
}
