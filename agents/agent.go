package agents

import (
	"context"

	"solveragent/types"
)

// LearningAgent guides learning via interaction with the environment:
// it decides when to start a new problem, which states to expand and
// when to train. Any agent can be combined with any value function.
type LearningAgent interface {
	// LearnFromEnvironment interacts until the environment reports the
	// budget is exhausted (types.ErrBudgetExhausted) or a fault occurs.
	LearnFromEnvironment(ctx context.Context, env types.Environment) error

	// LearnFromExperience optionally consolidates past experience one
	// last time after the budget ends.
	LearnFromExperience() error

	// Stats returns a short buffer-occupancy snapshot for logging.
	Stats() string

	// Name identifies the strategy variant.
	Name() string

	// QFunction exposes the value function being trained, for evaluation
	// and checkpointing.
	QFunction() types.QFunction
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
