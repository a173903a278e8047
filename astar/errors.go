package astar

import "errors"

// ErrStepLimitExceeded is the StepLimitExceeded error kind: the search
// popped more states off its open set than the configured step limit
// without reaching the goal.
var ErrStepLimitExceeded = errors.New("astar: step limit exceeded")

// DefaultStepLimit is the step limit used when none is supplied via
// WithStepLimit.
const DefaultStepLimit = 1_000_000
