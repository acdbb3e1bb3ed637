package types

import (
	"context"
	"errors"
)

// ErrBudgetExhausted signals that the interaction budget with the
// environment has run out. It is normal control flow, not a failure:
// the outer loop stops learning and runs a final evaluation.
var ErrBudgetExhausted = errors.New("environment interaction budget exhausted")

// NoSeed asks the environment for an unseeded problem.
const NoSeed int64 = -1

// StepResult is the environment's answer for one state of a batch.
type StepResult struct {
	// 1 if the state satisfies its goals, 0 otherwise.
	Reward float64
	// Legal moves out of the state. Empty means dead end.
	Actions []*Action
}

// Environment generates problems and expands states. Step takes the
// whole beam in one batched call; one round trip per search round.
type Environment interface {
	GenerateNew(ctx context.Context, seed int64) (*State, error)
	Step(ctx context.Context, states []*State) ([]StepResult, error)
}
