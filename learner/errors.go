package learner

import "errors"

// ErrCannotAlterNetwork is returned when a learner exhausts its proposal
// budget for a single step without finding an acyclic edit (spec.md §7
// "Cannot-alter... surfaces as a normal learner stop, not a crash").
var ErrCannotAlterNetwork = errors.New("learner: exhausted proposal budget for this step")
